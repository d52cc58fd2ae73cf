// Package server реализует gRPC-сервер проверки здоровья сервиса субаккаунтов.
//
// HealthServer публикует стандартный grpc.health.v1 и периодически проверяет базу:
// пока база отвечает, сервис SERVING, иначе NOT_SERVING.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/panel-subusers/internal/lib/sl"
)

// ServiceName: имя сервиса в ответах health-проверки.
const ServiceName = "panel.subusers"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer обновляет статус здоровья по результатам проверки базы.
type HealthServer struct {
	health   *health.Server
	db       Pinger
	interval time.Duration
	log      *slog.Logger
}

// NewHealthServer создает HealthServer. До первой проверки статус NOT_SERVING.
func NewHealthServer(db Pinger, interval time.Duration, log *slog.Logger) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{
		health:   h,
		db:       db,
		interval: interval,
		log:      log,
	}
}

// Register регистрирует health-сервис на gRPC сервере.
func (s *HealthServer) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, s.health)
}

// Check выполняет одну проверку базы и обновляет статус.
func (s *HealthServer) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		s.log.Warn("health check failed", sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Run проверяет базу каждые interval до отмены ctx, затем переводит сервис в NOT_SERVING.
func (s *HealthServer) Run(ctx context.Context) {
	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// LoggingInterceptor пишет в лог метод и длительность каждого unary вызова.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.Warn("grpc call failed", slog.String("method", info.FullMethod), slog.Duration("duration", time.Since(start)), sl.Err(err))
			return resp, err
		}
		log.Debug("grpc call", slog.String("method", info.FullMethod), slog.Duration("duration", time.Since(start)))
		return resp, nil
	}
}

// Serve запускает gRPC сервер на lis и останавливает его при отмене ctx.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
