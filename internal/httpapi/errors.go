package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kittclouds/gokitt-search/internal/apperr"
	"github.com/kittclouds/gokitt-search/pkg/federation"
)

// errorEnvelope is the status-400 error body spec §6.1 defines:
// `{ "message", "code", "type":"invalid_request", "link" }`.
type errorEnvelope struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Type    string `json:"type"`
	Link    string `json:"link"`
}

const errorLinkBase = "https://docs.gokitt.dev/errors#"

func writeError(w http.ResponseWriter, status int, code apperr.Code, message string) {
	writeJSON(w, status, errorEnvelope{
		Message: message,
		Code:    string(code),
		Type:    "invalid_request",
		Link:    errorLinkBase + string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeSearchError maps a pipeline/federation error to the HTTP error
// envelope, prefixing per-query failures with "Inside `.queries[i]`: "
// (spec §6.1) and unwrapping *federation.QueryError to find which query
// index actually failed.
func writeSearchError(w http.ResponseWriter, err error) {
	var qErr *federation.QueryError
	if errors.As(err, &qErr) {
		writeQueryError(w, qErr.Index, qErr.Err)
		return
	}

	appErr, ok := apperr.AsAppError(err)
	if !ok {
		writeError(w, http.StatusBadRequest, apperr.CodeBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, appErr.Code, appErr.Message)
}

func writeQueryError(w http.ResponseWriter, index int, err error) {
	message := fmt.Sprintf("Inside `.queries[%d]`: %s", index, err.Error())
	appErr, ok := apperr.AsAppError(err)
	code := apperr.CodeBadRequest
	if ok {
		code = appErr.Code
	}
	writeError(w, http.StatusBadRequest, code, message)
}
