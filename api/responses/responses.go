package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/syncwire"
)

// SuccessEnvelope wraps non-sync endpoint payloads.
type SuccessEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope wraps non-sync endpoint failures.
type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// APIError is the public error shape.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, SuccessEnvelope{Success: true, Data: data})
}

// WriteError maps a coded error onto its HTTP status and public message.
// Internal causes are logged, never exposed.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta, msg := classify(err)

	payload := ErrorEnvelope{
		Error: APIError{
			Code:    string(typed.Code()),
			Message: msg,
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	logFailure(ctx, logg, typed, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, payload)
}

// WriteSyncResponse renders a reconciled mutation in the sync wire shape.
func WriteSyncResponse(w http.ResponseWriter, resp *syncwire.MutationResponse) {
	writeJSON(w, http.StatusOK, resp)
}

// WriteSyncError renders a failed mutation in the sync wire shape: the
// success flag drops and the public message rides the error field.
func WriteSyncError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed, meta, msg := classify(err)
	logFailure(ctx, logg, typed, meta.HTTPStatus)
	writeJSON(w, meta.HTTPStatus, syncwire.MutationResponse{
		Success: false,
		Error:   msg,
	})
}

func classify(err error) (*pkgerrors.Error, pkgerrors.Metadata, string) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodeForbidden,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict:
		if m := typed.Message(); m != "" {
			msg = m
		}
	}
	return typed, meta, msg
}

func logFailure(ctx context.Context, logg *logger.Logger, typed *pkgerrors.Error, status int) {
	if logg == nil {
		return
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"error_code": string(typed.Code()),
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		logg.Error(logCtx, "request.failed", typed)
		return
	}
	logg.Warn(logCtx, "request.rejected")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already gone; nothing useful left to do.
		_ = err
	}
}
