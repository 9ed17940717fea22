package http

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to the boundary; BUSINESS_RULE marks a conflict the
// client can act on, not a server fault.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeNotFound         = "NOT_FOUND"
	codeBusinessRule     = "BUSINESS_RULE"
	codeUnavailable      = "TEMPORARILY_UNAVAILABLE"
	codeServerError      = "SERVER_ERROR"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
