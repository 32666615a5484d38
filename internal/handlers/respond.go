package handlers

import (
	"encoding/json"
	"net/http"

	"aeriesbridge/internal/models"
)

func writeJSONResp(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeStatusMessage(w http.ResponseWriter, status int, state, message string) {
	writeJSONResp(w, status, models.BaseResponse{Status: state, Message: message})
}
