package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"classical-music-quiz/internal/app"
	"go.uber.org/zap"
)

var (
	errInvalidPayload     = errors.New("invalid payload")
	errUnsupportedMessage = errors.New("unsupported message type")
)

// ScoresHandler serves the home-screen score summary over plain HTTP.
type ScoresHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewScoresHandler(service *app.QuizService, logger *zap.Logger) *ScoresHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoresHandler{service: service, logger: logger}
}

func (h *ScoresHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	summary, err := h.service.Scores(r.Context(), playerID)
	if err != nil {
		h.logger.Error("load scores", zap.String("player", playerID), zap.Error(err))
		http.Error(w, "could not load scores", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}
