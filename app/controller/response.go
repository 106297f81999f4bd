package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ar-model-dashboard/models"
	"ar-model-dashboard/service"
)

// internalErrorMessage is the body of every 5xx; details only go to the log
const internalErrorMessage = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

// writeServiceError maps an error of the lower layers onto a status code.
// Validation errors are descriptive; everything else is answered generically.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		log.Printf("❌ %s: %v", op, err)
		writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}

	var upstreamErr *service.UpstreamFetchError
	if errors.As(err, &upstreamErr) {
		log.Printf("❌ %s: catalog upstream failed: %v", op, err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch catalog")
		return
	}

	log.Printf("❌ %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, internalErrorMessage)
}

func methodNotAllowed(w http.ResponseWriter, op string, r *http.Request) {
	log.Printf("❌ %s: Method not allowed: %s", op, r.Method)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
