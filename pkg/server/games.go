package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"arcade/internal/aggregate"
	"arcade/pkg/logger"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type gamesHandler struct {
	source GameSource
	logger *logger.Logger
}

// list serves GET /api/games?full=true&limit=N
func (h *gamesHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			respondError(w, http.StatusBadRequest, "invalid limit parameter, must be between 1 and 1000")
			return
		}
		limit = n
	}

	full := r.URL.Query().Get("full") == "true"

	if full {
		games, err := h.source.ListFull(r.Context(), limit)
		if err != nil {
			h.logger.Error("full aggregation failed", err)
			respondError(w, http.StatusInternalServerError, "aggregation failed")
			return
		}
		respondJSON(w, http.StatusOK, games)
		return
	}

	games, err := h.source.ListBasic(r.Context(), limit)
	if err != nil {
		h.logger.Error("basic aggregation failed", err)
		respondError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	respondJSON(w, http.StatusOK, games)
}

// get serves GET /api/games/{gameID}
func (h *gamesHandler) get(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, "game id is required")
		return
	}

	game, err := h.source.Get(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, aggregate.ErrNotFound) {
			respondError(w, http.StatusNotFound, "game not found")
			return
		}
		h.logger.Error("game aggregation failed", err, zap.String("game_id", gameID))
		respondError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
