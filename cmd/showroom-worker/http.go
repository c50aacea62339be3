package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/BearBump/CampusCars/internal/api/mid"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/rotator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cast"
	httpSwagger "github.com/swaggo/http-swagger"
)

type workerHTTPOpts struct {
	httpAddr    string
	swaggerPath string
	onListen    func(httpAddr string)

	rotator  *rotator.Rotator
	settings workerSettings
}

func runWorkerHTTPServer(ctx context.Context, opts workerHTTPOpts) error {
	if opts.httpAddr == "" {
		opts.httpAddr = ":8082"
	}
	if opts.swaggerPath == "" {
		return fmt.Errorf("worker swaggerPath env var is required")
	}
	if _, err := os.Stat(opts.swaggerPath); os.IsNotExist(err) {
		return fmt.Errorf("worker swagger file not found: %s", opts.swaggerPath)
	}

	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, mid.Logger(slog.Default()))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.rotator == nil || !opts.rotator.Running() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		if opts.rotator == nil {
			writeJSON(w, http.StatusOK, map[string]string{"error": "rotator not wired"})
			return
		}
		writeJSON(w, http.StatusOK, opts.rotator.Stats())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"showroom":   opts.settings.showroom,
			"topic":      opts.settings.topic,
			"intervalMs": opts.settings.interval.Milliseconds(),
			"slides":     len(opts.settings.slides),
		})
	})

	if opts.rotator != nil {
		r.Route("/carousel", carouselRoutes(opts.rotator.Carousel()))
	}

	// Serve swagger with no-cache + cachebuster.
	r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, opts.swaggerPath)
	})

	swaggerURL := "/swagger.json"
	if fi, err := os.Stat(opts.swaggerPath); err == nil {
		swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
	}
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))

	srv := &http.Server{Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	slog.Info("worker HTTP listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}

// carouselRoutes mirrors the slider's interaction handlers. Every route
// answers with the resulting snapshot, including no-op commands.
func carouselRoutes(car *carousel.Carousel) func(r chi.Router) {
	return func(r chi.Router) {
		state := func(w http.ResponseWriter) {
			writeJSON(w, http.StatusOK, car.Snapshot())
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) { state(w) })
		r.Post("/next", func(w http.ResponseWriter, r *http.Request) { car.Next(); state(w) })
		r.Post("/prev", func(w http.ResponseWriter, r *http.Request) { car.Prev(); state(w) })
		r.Post("/pause", func(w http.ResponseWriter, r *http.Request) { car.Pause(); state(w) })
		r.Post("/resume", func(w http.ResponseWriter, r *http.Request) { car.Resume(); state(w) })

		r.Post("/goto/{index}", func(w http.ResponseWriter, r *http.Request) {
			// нечисловой индекс игнорируем: ответ с неизменным состоянием
			if i, err := cast.ToIntE(chi.URLParam(r, "index")); err == nil {
				car.GoTo(i)
			}
			state(w)
		})

		r.Post("/key/{key}", func(w http.ResponseWriter, r *http.Request) {
			car.HandleKey(chi.URLParam(r, "key"))
			state(w)
		})

		r.Put("/slides", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Slides []models.Slide `json:"slides"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid slides payload"})
				return
			}
			car.SetSlides(body.Slides)
			state(w)
		})

		r.Put("/interval", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid interval payload"})
				return
			}
			ms, err := cast.ToInt64E(body["intervalMs"])
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "intervalMs must be a number"})
				return
			}
			// 0, отрицательное или отсутствующее значение возвращает интервал по умолчанию
			car.SetInterval(time.Duration(ms) * time.Millisecond)
			state(w)
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
