package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tasklist/internal/models"
	"tasklist/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store store.Store
}

// New creates a new Handlers instance.
func New(s store.Store) *Handlers {
	return &Handlers{store: s}
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorBody{Error: message})
}

func respondServerError(w http.ResponseWriter, err error) {
	log.Printf("internal server error: %v", err)
	respondError(w, http.StatusInternalServerError, "Internal server error")
}

// respondStoreError maps a store outcome onto a status code. Only the
// validation message reaches the client; storage detail is logged.
func respondStoreError(w http.ResponseWriter, err error) {
	var validation *models.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, "Task not found")
	default:
		respondServerError(w, err)
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
