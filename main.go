package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/database"
	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/web"
	"github.com/authsvc/auth-service/web/job"
	"github.com/authsvc/auth-service/web/service"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func openDB(cfg *config.Config) {
	if err := database.InitDB(&cfg.Database); err != nil {
		log.Fatal(err)
	}
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	cfg := loadConfig()
	initLogger()
	defer logger.CloseLogger()

	logger.Debug("config:", cfg)
	openDB(cfg)
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close db err:", err)
		}
	}()

	server := web.NewServer(cfg, database.GetDB())
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(cfg, database.GetDB())
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Infof("Received %s signal. Shutting down...", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	cfg := loadConfig()
	fmt.Println("Start migrating database...")
	openDB(cfg)
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func purgeRefreshTokens() {
	cfg := loadConfig()
	openDB(cfg)
	defer database.CloseDB()

	tokenService, err := service.NewTokenService(database.GetDB(), cfg.Auth)
	if err != nil {
		log.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := job.NewRefreshTokenPurgeJob(tokenService).Purge(ctx)
	if err != nil {
		fmt.Println("purge refresh tokens failed:", err)
		return
	}
	fmt.Printf("purged %d expired refresh tokens\n", n)
}

func showUser(email string) {
	cfg := loadConfig()
	openDB(cfg)
	defer database.CloseDB()

	user, err := service.NewUserService(database.GetDB()).FindByEmail(context.Background(), email)
	if err != nil {
		fmt.Println("get user failed:", err)
		return
	}
	out, err := json.MarshalIndent(user, "", "  ")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(out))
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "User registration and authentication API",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Refresh token maintenance",
	}
	var purgeCmd = &cobra.Command{
		Use:   "purge",
		Short: "Delete expired refresh tokens",
		Run: func(cmd *cobra.Command, args []string) {
			purgeRefreshTokens()
		},
	}
	tokenCmd.AddCommand(purgeCmd)

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "User administration",
	}
	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show a user by email",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			showUser(email)
		},
	}
	showCmd.Flags().String("email", "", "email of the user to show")
	_ = showCmd.MarkFlagRequired("email")
	userCmd.AddCommand(showCmd)

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetVersion())
		},
	}

	rootCmd.AddCommand(runCmd, migrateCmd, tokenCmd, userCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
