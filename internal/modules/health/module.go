package health

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
	"trade_assistant/internal/modules/config"
	"trade_assistant/internal/modules/health/service"
	"trade_assistant/pkg/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/fx"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	port := cfg.Service.AdminPort
	if port == 0 {
		port = 8080
	}
	return Config{Addr: fmt.Sprintf("%s:%d", cfg.Service.Host, port)}
}

func NewMux(state *service.State) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: бот получает апдейты
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		var lastPoll int64
		if t := state.LastPoll(); !t.IsZero() {
			lastPoll = t.Unix()
		}
		body, err := sonic.Marshal(map[string]any{
			"ready":         state.Ready(),
			"activeRunners": state.Runners(),
			"uptimeSec":     int64(state.Uptime().Seconds()),
			"lastPollUnix":  lastPoll,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	})

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("admin http: %v", err)
				}
			}()
			logger.Info("admin http on %s", cfg.Addr)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			service.NewState,
			NewConfig,
			NewMux,
		),
		fx.Invoke(RunHTTP),
	)
}
