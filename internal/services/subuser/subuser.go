// Package services содержит бизнес-логику выдачи доступа субаккаунтам к серверам:
// проверку ссылок перед сохранением, права, ключи демона, кеширование и уведомления.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/metrics"
	"github.com/magabrotheeeer/panel-subusers/internal/models"
	"github.com/magabrotheeeer/panel-subusers/internal/storage"
)

// Repository определяет методы хранилища, нужные сервису.
type Repository interface {
	UserExists(ctx context.Context, id int) (bool, error)
	ServerExists(ctx context.Context, id int) (bool, error)
	FindUser(ctx context.Context, id int) (*models.User, error)
	FindServer(ctx context.Context, id int) (*models.Server, error)

	CreateSubuser(ctx context.Context, sub models.Subuser, permissions []string) (*models.Subuser, error)
	ReadSubuser(ctx context.Context, id int) (*models.Subuser, error)
	FindSubuser(ctx context.Context, userID, serverID int) (*models.Subuser, error)
	ListSubusers(ctx context.Context, serverID int) ([]*models.Subuser, error)
	RevokeSubuser(ctx context.Context, id int) (int, error)

	ListPermissions(ctx context.Context, subuserID int) ([]string, error)
	ReplacePermissions(ctx context.Context, subuserID int, permissions []string) error

	FindDaemonKey(ctx context.Context, serverID, userID int) (*models.DaemonKey, error)
	CreateDaemonKey(ctx context.Context, key models.DaemonKey) (*models.DaemonKey, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Notifier доставляет владельцу учётной записи события о выдаче и отзыве доступа.
type Notifier interface {
	Notify(ctx context.Context, event models.SubuserEvent) error
}

// Encoder переводит ID записи в публичный идентификатор и обратно.
type Encoder interface {
	Encode(id int) (string, error)
	Decode(hash string) (int, error)
}

// Settings: настраиваемые сроки сервиса.
type Settings struct {
	CacheTTL     time.Duration
	DaemonKeyTTL time.Duration
}

// SubuserService реализует бизнес-логику работы с субаккаунтами.
type SubuserService struct {
	repo     Repository
	cache    Cache
	notifier Notifier
	encoder  Encoder
	log      *slog.Logger
	settings Settings
	now      func() time.Time
}

// NewSubuserService создает новый экземпляр SubuserService.
func NewSubuserService(repo Repository, cache Cache, notifier Notifier, encoder Encoder, log *slog.Logger, settings Settings) *SubuserService {
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = time.Hour
	}
	if settings.DaemonKeyTTL <= 0 {
		settings.DaemonKeyTTL = 30 * 24 * time.Hour
	}
	return &SubuserService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		encoder:  encoder,
		log:      log,
		settings: settings,
		now:      time.Now,
	}
}

// Create выдаёт пользователю userID доступ к серверу serverID с набором прав permissions.
//
// Все ссылки проверяются до сохранения: неположительные ID, несуществующие пользователь
// или сервер и неизвестные права дают *ValidationError, и ничего не сохраняется.
// Повторная выдача той же пары даёт ErrSubuserExists.
func (s *SubuserService) Create(ctx context.Context, userID, serverID int, permissions []string) (*models.Subuser, error) {
	const op = "services.subuser.Create"
	log := s.log.With(sl.Op(op), slog.Int("user_id", userID), slog.Int("server_id", serverID))

	if err := validateIDs(userID, serverID); err != nil {
		return nil, s.rejected(err)
	}
	perms, err := validatePermissions(permissions)
	if err != nil {
		return nil, s.rejected(err)
	}

	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, s.rejected(&ValidationError{Field: "user_id", Rule: RuleExists, Value: strconv.Itoa(userID)})
	}

	server, err := s.repo.FindServer(ctx, serverID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, s.rejected(&ValidationError{Field: "server_id", Rule: RuleExists, Value: strconv.Itoa(serverID)})
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if server.OwnerID == userID {
		return nil, ErrServerOwner
	}

	_, err = s.repo.FindSubuser(ctx, userID, serverID)
	switch {
	case err == nil:
		return nil, ErrSubuserExists
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sub, err := s.repo.CreateSubuser(ctx, models.Subuser{UserID: userID, ServerID: serverID}, perms)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyExists):
			return nil, ErrSubuserExists
		case errors.Is(err, storage.ErrReferenceMissing):
			// строку удалили между проверкой и вставкой
			field := "user_id"
			if storage.ViolatedConstraint(err) == storage.ConstraintSubuserServer {
				field = "server_id"
			}
			return nil, s.rejected(&ValidationError{Field: field, Rule: RuleExists})
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("created new subuser", slog.Int("id", sub.ID), slog.Int("permissions", len(perms)))
	metrics.SubusersCreated.Inc()

	if err := s.ensureDaemonKey(ctx, sub); err != nil {
		log.Error("failed to issue daemon key", sl.Err(err))
	}

	s.cacheSubuser(ctx, sub)
	s.notify(ctx, models.EventSubuserAdded, sub)

	return sub, nil
}

// PublicID возвращает публичный идентификатор записи. Одинаковые ID дают одинаковую строку.
func (s *SubuserService) PublicID(sub *models.Subuser) (string, error) {
	const op = "services.subuser.PublicID"
	id, err := s.encoder.Encode(sub.ID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Read возвращает выдачу доступа по ID, используя кеш или репозиторий.
func (s *SubuserService) Read(ctx context.Context, id int) (*models.Subuser, error) {
	const op = "services.subuser.Read"
	cacheKey := subuserCacheKey(id)

	var cached models.Subuser
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	sub, err := s.repo.ReadSubuser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSubuserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheSubuser(ctx, sub)
	return sub, nil
}

// Authorize проверяет, что actorID может управлять субаккаунтами сервера:
// это владелец сервера или администратор панели.
func (s *SubuserService) Authorize(ctx context.Context, serverID, actorID int, admin bool) error {
	const op = "services.subuser.Authorize"
	server, err := s.repo.FindServer(ctx, serverID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrServerNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if admin || server.OwnerID == actorID {
		return nil
	}
	return ErrForbidden
}

// ReadByPublicID возвращает выдачу доступа по публичному идентификатору.
// Строка, которую нельзя декодировать, считается несуществующей записью.
func (s *SubuserService) ReadByPublicID(ctx context.Context, publicID string) (*models.Subuser, error) {
	id, err := s.encoder.Decode(publicID)
	if err != nil {
		return nil, ErrSubuserNotFound
	}
	return s.Read(ctx, id)
}

// List возвращает выдачи доступа к серверу.
func (s *SubuserService) List(ctx context.Context, serverID int) ([]*models.Subuser, error) {
	const op = "services.subuser.List"
	exists, err := s.repo.ServerExists(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, ErrServerNotFound
	}
	subs, err := s.repo.ListSubusers(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// GrantedPermissions возвращает текущий набор прав. Пустой набор допустим.
func (s *SubuserService) GrantedPermissions(ctx context.Context, sub *models.Subuser) ([]string, error) {
	const op = "services.subuser.GrantedPermissions"
	perms, err := s.repo.ListPermissions(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}

// UpdatePermissions заменяет набор прав субаккаунта и возвращает сохранённый набор.
func (s *SubuserService) UpdatePermissions(ctx context.Context, id int, permissions []string) ([]string, error) {
	const op = "services.subuser.UpdatePermissions"
	perms, err := validatePermissions(permissions)
	if err != nil {
		return nil, s.rejected(err)
	}

	err = s.repo.ReplacePermissions(ctx, id, perms)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSubuserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.PermissionUpdates.Inc()
	s.log.Info("updated subuser permissions", slog.Int("id", id), slog.Int("permissions", len(perms)))

	// updated_at изменился, кешированная запись устарела
	cacheKey := subuserCacheKey(id)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return perms, nil
}

// ResolveCredential ищет ключ демона, принадлежащий пользователю записи на её сервере.
// Отсутствие ключа: обычное состояние: возвращается nil, false, nil.
func (s *SubuserService) ResolveCredential(ctx context.Context, sub *models.Subuser) (*models.DaemonKey, bool, error) {
	const op = "services.subuser.ResolveCredential"
	key, err := s.repo.FindDaemonKey(ctx, sub.ServerID, sub.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		metrics.CredentialLookups.WithLabelValues("absent").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CredentialLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	metrics.CredentialLookups.WithLabelValues("found").Inc()
	return key, true, nil
}

// Revoke отзывает доступ: одной транзакцией удаляет запись и ключ демона пользователя
// на сервере. Права удаляются вместе с записью; пользователь и сервер остаются.
func (s *SubuserService) Revoke(ctx context.Context, id int) error {
	const op = "services.subuser.Revoke"
	sub, err := s.Read(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.RevokeSubuser(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cacheKey := subuserCacheKey(id)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if count == 0 {
		return ErrSubuserNotFound
	}

	metrics.SubusersRevoked.Inc()
	s.log.Info("revoked subuser", slog.Int("id", id), slog.Int("user_id", sub.UserID), slog.Int("server_id", sub.ServerID))
	s.notify(ctx, models.EventSubuserRemoved, sub)
	return nil
}

// ensureDaemonKey выдаёт ключ демона для пары (сервер, пользователь), если его ещё нет.
func (s *SubuserService) ensureDaemonKey(ctx context.Context, sub *models.Subuser) error {
	_, err := s.repo.FindDaemonKey(ctx, sub.ServerID, sub.UserID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	_, err = s.repo.CreateDaemonKey(ctx, models.DaemonKey{
		ServerID:  sub.ServerID,
		UserID:    sub.UserID,
		Secret:    models.NewDaemonKeySecret(),
		ExpiresAt: s.now().Add(s.settings.DaemonKeyTTL),
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return nil
	}
	return err
}

func (s *SubuserService) cacheSubuser(ctx context.Context, sub *models.Subuser) {
	cacheKey := subuserCacheKey(sub.ID)
	if err := s.cache.Set(ctx, cacheKey, sub, s.settings.CacheTTL); err != nil {
		s.log.Warn("failed to cache subuser", slog.String("key", cacheKey), sl.Err(err))
	}
}

// notify публикует событие; ошибки доставки не отменяют операцию.
func (s *SubuserService) notify(ctx context.Context, eventType string, sub *models.Subuser) {
	if s.notifier == nil {
		return
	}
	log := s.log.With(slog.String("event", eventType), slog.Int("subuser_id", sub.ID))

	user, err := s.repo.FindUser(ctx, sub.UserID)
	if err != nil {
		log.Warn("failed to load user for notification", sl.Err(err))
		return
	}
	server, err := s.repo.FindServer(ctx, sub.ServerID)
	if err != nil {
		log.Warn("failed to load server for notification", sl.Err(err))
		return
	}

	event := models.SubuserEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		SubuserID:  sub.ID,
		UserID:     user.ID,
		Email:      user.Email,
		Username:   user.Username,
		ServerID:   server.ID,
		ServerName: server.Name,
		OccurredAt: s.now().UTC(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		log.Warn("failed to publish notification", sl.Err(err))
	}
}

func (s *SubuserService) rejected(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		metrics.ValidationFailures.WithLabelValues(ve.Field).Inc()
	}
	return err
}

func subuserCacheKey(id int) string {
	return fmt.Sprintf("subuser:%d", id)
}

func validateIDs(userID, serverID int) error {
	if userID <= 0 {
		return &ValidationError{Field: "user_id", Rule: RulePositive, Value: strconv.Itoa(userID)}
	}
	if serverID <= 0 {
		return &ValidationError{Field: "server_id", Rule: RulePositive, Value: strconv.Itoa(serverID)}
	}
	return nil
}

func validatePermissions(permissions []string) ([]string, error) {
	for _, p := range permissions {
		if !models.IsKnownPermission(p) {
			return nil, &ValidationError{Field: "permissions", Rule: RulePermission, Value: p}
		}
	}
	return models.NormalizePermissions(permissions), nil
}
