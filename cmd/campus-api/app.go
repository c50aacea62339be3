package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	campusapi "github.com/BearBump/CampusCars/internal/api/campus_api"
	"github.com/BearBump/CampusCars/internal/api/mid"
	"github.com/BearBump/CampusCars/internal/broker/kafka"
	"github.com/BearBump/CampusCars/internal/broker/messages"
	"github.com/BearBump/CampusCars/internal/cache"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const serviceName = "campus-api"

type campusAPIOpts struct {
	grpcAddr     string
	httpAddr     string
	grpcDialAddr string
	swaggerPath  string

	topic         string
	consumerGroup string

	corsOrigin         string
	rateLimitPerMinute int64

	onListen func(grpcAddr, httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler kafka.Handler) error
}

type heroProjection interface {
	ApplySlideChanged(ctx context.Context, msg messages.SlideChanged) error
}

type catalogRefresher interface {
	Run(ctx context.Context) error
}

type campusAPIDeps struct {
	api       *campusapi.CampusAPI
	hero      heroProjection
	limiter   cache.RateLimiter
	consumer  kafkaConsumer
	refresher catalogRefresher
}

func runCampusAPI(ctx context.Context, opts campusAPIOpts, d campusAPIDeps) error {
	if opts.swaggerPath == "" {
		return fmt.Errorf("swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("swagger file not found: %s", opts.swaggerPath)
	}

	grpcLis, err := net.Listen("tcp", opts.grpcAddr)
	if err != nil {
		return err
	}
	httpLis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		_ = grpcLis.Close()
		return err
	}

	if opts.onListen != nil {
		opts.onListen(grpcLis.Addr().String(), httpLis.Addr().String())
	}

	dialAddr := opts.grpcDialAddr
	if dialAddr == "" || strings.HasSuffix(dialAddr, ":0") {
		dialAddr = grpcLis.Addr().String()
	}

	hs := health.NewServer()
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- runGRPCServer(ctx, grpcLis, hs)
	}()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runGatewayServer(ctx, httpLis, dialAddr, opts, d)
	}()

	if d.consumer != nil {
		go func() {
			slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
			if err := d.consumer.Consume(ctx, slideChangedHandler(d.hero)); err != nil && ctx.Err() == nil {
				// Без консьюмера /api/hero отдаёт последний известный или статический слайдер.
				slog.Error("kafka consumer stopped", "topic", opts.topic, "error", err.Error())
			}
		}()
	}

	if d.refresher != nil {
		go func() {
			if err := d.refresher.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("catalog refresher stopped", "error", err.Error())
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-grpcErr:
		return err
	case err := <-httpErr:
		return err
	}
}

// slideChangedHandler skips malformed messages so they get committed instead
// of blocking the partition.
func slideChangedHandler(h heroProjection) kafka.Handler {
	return func(ctx context.Context, key, value []byte) error {
		var m messages.SlideChanged
		if err := json.Unmarshal(value, &m); err != nil {
			slog.Warn("skip malformed slide_changed", "key", string(key), "error", err.Error())
			return nil
		}
		if err := h.ApplySlideChanged(ctx, m); err != nil {
			slog.Warn("skip slide_changed", "event_id", m.EventID, "showroom", m.Showroom, "error", err.Error())
		}
		return nil
	}
}

func runGRPCServer(ctx context.Context, lis net.Listener, hs *health.Server) error {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	go func() {
		<-ctx.Done()
		hs.Shutdown()
		stopped := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(2 * time.Second):
			s.Stop()
		}
		_ = lis.Close()
	}()

	slog.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.Serve(lis)
}

func runGatewayServer(ctx context.Context, lis net.Listener, grpcAddr string, opts campusAPIOpts, d campusAPIDeps) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(mid.Logger(slog.Default()), mid.OTel(serviceName), mid.CORS(opts.corsOrigin))

	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.swaggerPath)
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger.json"),
	))

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return err
	}
	defer conn.Close()

	// /healthz проксирует grpc.health.v1 через gateway.
	mux := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	r.Handle("/healthz", mux)

	r.Group(func(r chi.Router) {
		r.Use(mid.RateLimit(d.limiter, opts.rateLimitPerMinute, slog.Default()))
		d.api.Register(r)
	})

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP gateway listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
