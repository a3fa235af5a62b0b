package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/quizflag/pkg/repository"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

// storeError maps repository sentinels to HTTP statuses; anything else is a 500.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrDuplicateSlug):
		http.Error(w, "slug already in use", http.StatusConflict)
	case errors.Is(err, repository.ErrQuestionNotFound):
		http.Error(w, "question does not belong to challenge", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
