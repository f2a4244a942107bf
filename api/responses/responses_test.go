package responses

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/syncwire"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestWriteSuccessWrapsPayload(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"deviceId": "till-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}
	var envelope SuccessEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatal("expected success flag")
	}
}

func TestWriteErrorExposesSafeMessageOnly(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeForbidden, "device belongs to another tenant")
	WriteError(context.Background(), testLogger(), w, err)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeForbidden) {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "device belongs to another tenant" {
		t.Fatalf("expected client-visible message, got %q", envelope.Error.Message)
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("pq: connection refused"), "loading tenant")
	WriteError(context.Background(), testLogger(), w, err)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal cause leaked: %q", envelope.Error.Message)
	}
}

func TestWriteErrorWrapsPlainErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), testLogger(), w, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
}

func TestWriteErrorIncludesValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{"recordId": "is required"})
	WriteError(context.Background(), testLogger(), w, err)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var envelope struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if envelope.Error.Details["recordId"] != "is required" {
		t.Fatalf("details missing: %+v", envelope.Error.Details)
	}
}

func TestWriteSyncErrorUsesWireShape(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeNotFound, "unknown sync table")
	WriteSyncError(context.Background(), testLogger(), w, err)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	var resp syncwire.MutationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Success {
		t.Fatal("sync errors must clear the success flag")
	}
	if resp.Error != "unknown sync table" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}
