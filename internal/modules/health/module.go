package health

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"spot_bot/internal/models"
	"spot_bot/internal/modules/config"
	"spot_bot/internal/modules/health/service"
	"spot_bot/internal/runner"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.AdminPort)}
}

// Strategies: то, чем HTTP управляет; реализует *runner.Registry.
type Strategies interface {
	Start(ctx context.Context, cfg models.StrategyConfig) error
	Stop(symbol string) error
	State(symbol string) (models.StrategyState, error)
	States() []models.StrategyState
}

// Configs отдаёт конфиг запуска по символу; реализует *config.Config.
type Configs interface {
	StrategyConfig(symbol string) (models.StrategyConfig, error)
}

func NewMux(state *service.State, strategies Strategies, configs Configs, log *zap.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	h := &handlers{strategies: strategies, configs: configs, log: log.Named("http")}

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: сервис готов обслуживать трафик
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		// полезный JSON для отладки
		running := 0
		for _, st := range strategies.States() {
			if st.Running {
				running++
			}
		}
		resp := map[string]any{
			"ready":       state.Ready(),
			"wsConnected": state.WSConnected(),
			"uptimeSec":   int64(state.Uptime().Seconds()),
			"lastTickUnix": func() int64 {
				t := state.LastTick()
				if t.IsZero() {
					return 0
				}
				return t.Unix()
			}(),
			"prices":     state.Prices(),
			"strategies": running,
		}
		writeJSON(w, http.StatusOK, resp)
	})

	mux.HandleFunc("GET /strategies", h.list)
	mux.HandleFunc("GET /strategies/{symbol}", h.get)
	mux.HandleFunc("POST /strategies/{symbol}/start", h.start)
	mux.HandleFunc("POST /strategies/{symbol}/stop", h.stop)

	return mux
}

func RunHTTP(lc fx.Lifecycle, cfg Config, mux *http.ServeMux, log *zap.Logger) {
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
			log.Info("admin http listening", zap.String("addr", cfg.Addr))
			go func() { _ = srv.Serve(ln) }()
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
			func(r *runner.Registry) Strategies { return r },
			func(c *config.Config) Configs { return c },
		),
		fx.Invoke(RunHTTP),
	)
}
