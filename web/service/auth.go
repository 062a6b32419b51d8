package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/util/crypto"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Message ids reported by the auth service.
const (
	MsgValidationFailed    = "validation.failed"
	MsgEmailTaken          = "auth.emailTaken"
	MsgCredentialsMismatch = "auth.credentialsMismatch"
	MsgUnauthorized        = "auth.unauthorized"
)

type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func (in *RegisterInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (in *LoginInput) normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

// AuthResult is the outcome of a successful register, login or refresh.
type AuthResult struct {
	User   *model.User
	Tokens TokenPair
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so clients can match errors to their payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput returns a 400 HTTPError listing every invalid field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	httpErr := common.BadRequest(MsgValidationFailed)
	for _, fe := range fieldErrs {
		httpErr.WithField(fe.Field(), fe.Tag(), fe.Param())
	}
	return httpErr
}

type AuthService struct {
	db         *gorm.DB
	users      *UserService
	tokens     *TokenService
	bcryptCost int
}

func NewAuthService(db *gorm.DB, users *UserService, tokens *TokenService, bcryptCost int) *AuthService {
	return &AuthService{
		db:         db,
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register creates a customer account and issues its first token pair.
// The user row and the refresh-token row are written in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.BadRequest(MsgEmailTaken)
	}

	hash, err := crypto.HashPasswordAsBcrypt(in.Password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, common.BadRequest(MsgValidationFailed).WithField("password", "max", "72").Wrap(err)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &model.User{
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Email:     in.Email,
			Password:  hash,
			Role:      model.DefaultRole,
		}
		if err := s.users.WithDB(tx).Create(ctx, user); err != nil {
			return err
		}
		tokens, err := s.tokens.WithDB(tx).IssueTokens(ctx, user)
		if err != nil {
			return err
		}
		result = &AuthResult{User: user, Tokens: tokens}
		return nil
	})
	if errors.Is(err, ErrEmailTaken) {
		return nil, common.BadRequest(MsgEmailTaken).Wrap(err)
	}
	if err != nil {
		return nil, err
	}

	logger.Infof("user %d registered", result.User.Id)
	return result, nil
}

// Login checks the credentials and issues a new token pair. Unknown email and
// wrong password are reported identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, common.BadRequest(MsgCredentialsMismatch)
	}
	if err != nil {
		return nil, err
	}
	if !crypto.CheckPasswordHash(user.Password, in.Password) {
		logger.Debugf("password mismatch for user %d", user.Id)
		return nil, common.BadRequest(MsgCredentialsMismatch)
	}

	tokens, err := s.tokens.IssueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Self returns the user an access token was issued to.
func (s *AuthService) Self(ctx context.Context, userID int) (*model.User, error) {
	user, err := s.users.FindById(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, common.Unauthorized(MsgUnauthorized).Wrap(err)
	}
	return user, err
}

// Refresh rotates a refresh token: its row is deleted and a new pair is issued.
// A token whose row is already gone is rejected.
func (s *AuthService) Refresh(ctx context.Context, claims *TokenClaims) (*AuthResult, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, common.Unauthorized(MsgUnauthorized).Wrap(err)
	}
	tokenID, err := claims.TokenID()
	if err != nil {
		return nil, common.Unauthorized(MsgUnauthorized).Wrap(err)
	}

	var result *AuthResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens := s.tokens.WithDB(tx)
		deleted, err := tokens.DeleteRefreshToken(ctx, tokenID)
		if err != nil {
			return err
		}
		if !deleted {
			return common.Unauthorized(MsgUnauthorized)
		}

		user, err := s.users.WithDB(tx).FindById(ctx, userID)
		if errors.Is(err, ErrUserNotFound) {
			return common.Unauthorized(MsgUnauthorized).Wrap(err)
		}
		if err != nil {
			return err
		}

		pair, err := tokens.IssueTokens(ctx, user)
		if err != nil {
			return err
		}
		result = &AuthResult{User: user, Tokens: pair}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout deletes the refresh-token row. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, claims *TokenClaims) error {
	tokenID, err := claims.TokenID()
	if err != nil {
		return common.Unauthorized(MsgUnauthorized).Wrap(err)
	}
	if _, err := s.tokens.DeleteRefreshToken(ctx, tokenID); err != nil {
		return err
	}
	return nil
}
