package health

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"spot_bot/internal/models"
	"spot_bot/internal/modules/config"
	"spot_bot/internal/runner"
)

type handlers struct {
	strategies Strategies
	configs    Configs
	log        *zap.Logger
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeYAML(w http.ResponseWriter, status int, v any) {
	body, err := yaml.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// render picks YAML when ?format=yaml, JSON otherwise.
func render(w http.ResponseWriter, r *http.Request, status int, v any) {
	if r.URL.Query().Get("format") == "yaml" {
		writeYAML(w, status, v)
		return
	}
	writeJSON(w, status, v)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, runner.ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, runner.ErrNotRunning), errors.Is(err, config.ErrUnknownStrategy):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, runner.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	h.log.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, h.strategies.States())
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	st, err := h.strategies.State(r.PathValue("symbol"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render(w, r, http.StatusOK, st)
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.StrategyConfig(r.PathValue("symbol"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.strategies.Start(r.Context(), cfg); err != nil {
		h.fail(w, r, err)
		return
	}
	st, err := h.strategies.State(cfg.Symbol)
	if err != nil {
		// остановилась сразу после старта
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.strategies.Stop(r.PathValue("symbol")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
