// Package job provides scheduled background jobs for the auth service.
package job

import (
	"context"
	"time"

	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/service"

	"go.uber.org/atomic"
)

const purgeTimeout = time.Minute

// RefreshTokenPurgeJob deletes expired refresh-token rows. A run is skipped
// while the previous one is still going.
type RefreshTokenPurgeJob struct {
	tokenService *service.TokenService
	running      atomic.Bool
	now          func() time.Time
}

func NewRefreshTokenPurgeJob(tokenService *service.TokenService) *RefreshTokenPurgeJob {
	return &RefreshTokenPurgeJob{
		tokenService: tokenService,
		now:          time.Now,
	}
}

// Run is called by the cron scheduler.
func (j *RefreshTokenPurgeJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		logger.Debug("refresh token purge still running, skipping")
		return
	}
	defer j.running.Store(false)
	defer common.Recover("refresh token purge job")

	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	if _, err := j.Purge(ctx); err != nil {
		logger.Warning("refresh token purge failed:", err)
	}
}

// Purge removes expired rows now and returns how many were deleted.
func (j *RefreshTokenPurgeJob) Purge(ctx context.Context) (int64, error) {
	n, err := j.tokenService.PurgeExpired(ctx, j.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Infof("purged %d expired refresh tokens", n)
	}
	return n, nil
}
