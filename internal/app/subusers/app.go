package subusers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/panel-subusers/internal/cache"
	"github.com/magabrotheeeer/panel-subusers/internal/config"
	grpcserver "github.com/magabrotheeeer/panel-subusers/internal/grpc/server"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/hashid"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/jwt"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
	"github.com/magabrotheeeer/panel-subusers/internal/migrations"
	scheduler "github.com/magabrotheeeer/panel-subusers/internal/services/scheduler"
	services "github.com/magabrotheeeer/panel-subusers/internal/services/subuser"
	"github.com/magabrotheeeer/panel-subusers/internal/storage"
)

// App: процесс HTTP API субаккаунтов вместе с gRPC health-сервером и перевыпуском ключей демона.
type App struct {
	server     *http.Server
	grpcServer *grpc.Server
	grpcAddr   string
	health     *grpcserver.HealthServer
	scheduler  *scheduler.SchedulerService
	logger     *slog.Logger
	db         *storage.Storage
	cache      *cache.Cache
	amqpConn   *amqp.Connection
	amqpCh     *amqp.Channel
}

// New подключает хранилище, применяет миграции и собирает серверы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.subusers.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = storage.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.SubuserQueues(cfg.Queue))
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	encoder, err := hashid.New(cfg.Salt, cfg.MinLength, cfg.Alphabet)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subuserService := services.NewSubuserService(
		db,
		cacheRedis,
		rabbitmq.NewPublisher(ch, cfg.Exchange),
		encoder,
		logger,
		services.Settings{CacheTTL: cfg.CacheTTL, DaemonKeyTTL: cfg.DaemonKeys.TTL},
	)
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, subuserService, tokens, db)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	health := grpcserver.NewHealthServer(db, cfg.HealthInterval, logger)
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.LoggingInterceptor(logger)))
	health.Register(grpcSrv)

	return &App{
		server:     srv,
		grpcServer: grpcSrv,
		grpcAddr:   cfg.AddressGRPC,
		health:     health,
		scheduler:  scheduler.NewSchedulerService(db, logger, cfg.DaemonKeys.TTL, cfg.RenewInterval),
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		amqpConn:   conn,
		amqpCh:     ch,
	}, nil
}

// Run запускает серверы и останавливает их при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.grpcAddr)
	if err != nil {
		a.close()
		return fmt.Errorf("app.subusers.Run: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopBackground := runBackground(ctx, a.health.Run, a.scheduler.RenewExpiringDaemonKeys)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("gRPC health server starting on", slog.String("address", a.grpcAddr))
		errCh <- grpcserver.Serve(ctx, a.grpcServer, lis)
	}()
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	// фоновые задачи работают с базой, поэтому останавливаются до её закрытия
	stopBackground()

	timeoutCtx, cancelTimeout := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelTimeout()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.grpcServer.GracefulStop()
	a.close()
	return runErr
}

// runBackground запускает задачи на ctx, производном от переданного. Возвращаемая
// функция отменяет его и ждёт завершения всех задач.
func runBackground(ctx context.Context, tasks ...func(context.Context)) func() {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(task func(context.Context)) {
			defer wg.Done()
			task(ctx)
		}(task)
	}
	return func() {
		cancel()
		wg.Wait()
	}
}

func (a *App) close() {
	if err := a.amqpCh.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.amqpConn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
