package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mikey/lead-vetting/internal/core"
)

// Response headers carrying vetting metadata
const (
	HeaderProcessingID  = "X-Processing-ID"
	HeaderVerdictSource = "X-Verdict-Source"
)

// Error codes returned in ErrorResponse.Error
const (
	CodeBadRequest   = "bad_request"
	CodeInvalidInput = "invalid_input"
	CodeInvalidLead  = "invalid_lead"
	CodeInternal     = "internal_error"
)

// VerdictResponse is the HTTP representation of a verdict.
type VerdictResponse struct {
	Spam       string `json:"spam"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason"`
	Result     string `json:"result"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// FromVerdict converts a domain verdict to an HTTP response.
func FromVerdict(v core.Verdict) VerdictResponse {
	return VerdictResponse{
		Spam:       string(v.Spam),
		Confidence: string(v.Confidence),
		Reason:     v.Reason,
		Result:     string(v.Result),
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes an error body. Internal errors omit the description.
func writeError(w http.ResponseWriter, status int, code, description string) {
	if status >= http.StatusInternalServerError {
		description = ""
	}
	writeJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}
