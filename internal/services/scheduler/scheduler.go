// Package services содержит фоновые задачи сервиса субаккаунтов.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/metrics"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
)

// DaemonKeyRepository определяет методы хранилища, нужные планировщику.
type DaemonKeyRepository interface {
	FindDaemonKeysExpiringBefore(ctx context.Context, before time.Time) ([]*models.DaemonKey, error)
	RenewDaemonKey(ctx context.Context, id int, secret string, expiresAt time.Time) (int, error)
}

// SchedulerService периодически перевыпускает ключи демона, срок которых подходит к концу.
type SchedulerService struct {
	repo     DaemonKeyRepository
	log      *slog.Logger
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo DaemonKeyRepository, log *slog.Logger, ttl, interval time.Duration) *SchedulerService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return &SchedulerService{
		repo:     repo,
		log:      log,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
	}
}

// RenewExpiringDaemonKeys запускает перевыпуск сразу и затем раз в interval, пока не отменён ctx.
func (s *SchedulerService) RenewExpiringDaemonKeys(ctx context.Context) {
	s.runRenewExpiringDaemonKeys(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runRenewExpiringDaemonKeys(ctx)
		}
	}
}

// runRenewExpiringDaemonKeys перевыпускает ключи, которые истекут до следующего запуска.
// Возвращает количество перевыпущенных ключей.
func (s *SchedulerService) runRenewExpiringDaemonKeys(ctx context.Context) int {
	s.log.Info("starting renewal of expiring daemon keys")
	now := s.now()
	keys, err := s.repo.FindDaemonKeysExpiringBefore(ctx, now.Add(s.interval))
	if err != nil {
		s.log.Error("failed to find daemon keys", sl.Err(err))
		return 0
	}
	if len(keys) == 0 {
		s.log.Info("no expiring daemon keys found")
		return 0
	}
	s.log.Info("found expiring daemon keys", "count", len(keys))

	renewed := 0
	for _, key := range keys {
		n, err := s.repo.RenewDaemonKey(ctx, key.ID, models.NewDaemonKeySecret(), now.Add(s.ttl))
		if err != nil {
			s.log.Error("failed to renew daemon key", slog.Int("id", key.ID), sl.Err(err))
			continue
		}
		if n == 0 {
			// ключ отозван между выборкой и обновлением
			continue
		}
		renewed++
		metrics.DaemonKeysRenewed.Inc()
	}
	s.log.Info("daemon keys renewed", "count", renewed)
	return renewed
}
