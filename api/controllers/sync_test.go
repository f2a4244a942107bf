package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warungpos/backend/api/middleware"
	"github.com/warungpos/backend/internal/reconcile"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/syncwire"
)

type testReconcileService struct {
	submitFn func(ctx context.Context, sub reconcile.Submission) (*syncwire.MutationResponse, error)
}

func (s *testReconcileService) Submit(ctx context.Context, sub reconcile.Submission) (*syncwire.MutationResponse, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, sub)
	}
	return &syncwire.MutationResponse{Success: true}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func newSyncRequest(t *testing.T, table string, tenantID uuid.UUID, deviceID string, body syncwire.MutationRequest) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/"+table, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), tenantID, deviceID))
	return addRouteParam(req, "table", table)
}

func TestSyncMutationRoutesTableFromPath(t *testing.T) {
	tenantID := uuid.New()
	var gotSub reconcile.Submission
	svc := &testReconcileService{
		submitFn: func(_ context.Context, sub reconcile.Submission) (*syncwire.MutationResponse, error) {
			gotSub = sub
			return &syncwire.MutationResponse{
				Success: true,
				Data:    &syncwire.MutationResult{ServerID: "srv-1", Synced: true},
			}, nil
		},
	}

	req := newSyncRequest(t, "daily-report", tenantID, "till-1", syncwire.MutationRequest{
		Action:   enums.MutationActionCreate,
		RecordID: "2026-08-30",
		DeviceID: "till-1",
	})
	resp := httptest.NewRecorder()
	SyncMutation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotSub.Table != enums.SyncTableDailyReport {
		t.Fatalf("expected daily report table, got %s", gotSub.Table)
	}
	if gotSub.TenantID != tenantID {
		t.Fatalf("tenant id not taken from context")
	}
	if gotSub.DeviceID != "till-1" {
		t.Fatalf("device id not taken from context")
	}

	var envelope syncwire.MutationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Success || envelope.Data == nil || envelope.Data.ServerID != "srv-1" {
		t.Fatalf("unexpected envelope %+v", envelope)
	}
}

func TestSyncMutationUnknownTableIsValidationError(t *testing.T) {
	req := newSyncRequest(t, "mystery", uuid.New(), "till-1", syncwire.MutationRequest{
		Action:   enums.MutationActionCreate,
		RecordID: "local-1",
		DeviceID: "till-1",
	})
	resp := httptest.NewRecorder()
	SyncMutation(&testReconcileService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var envelope syncwire.MutationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Success {
		t.Fatal("unknown table must not report success")
	}
	if envelope.Error == "" {
		t.Fatal("expected error message in envelope")
	}
}

func TestSyncMutationMalformedBodyIs400(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/pesanan", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithIdentity(req.Context(), uuid.New(), "till-1"))
	req = addRouteParam(req, "table", "pesanan")

	resp := httptest.NewRecorder()
	SyncMutation(&testReconcileService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSyncMutationConflictIsStillOK(t *testing.T) {
	svc := &testReconcileService{
		submitFn: func(_ context.Context, _ reconcile.Submission) (*syncwire.MutationResponse, error) {
			return &syncwire.MutationResponse{
				Success:    true,
				Conflict:   true,
				ServerData: json.RawMessage(`{"version":7}`),
				Data:       &syncwire.MutationResult{ServerID: "srv-1", Synced: true},
			}, nil
		},
	}

	req := newSyncRequest(t, "menu", uuid.New(), "till-1", syncwire.MutationRequest{
		Action:   enums.MutationActionUpdate,
		RecordID: "local-9",
		DeviceID: "till-1",
	})
	resp := httptest.NewRecorder()
	SyncMutation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("conflict must ride a 200, got %d", resp.Code)
	}
	var envelope syncwire.MutationResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Conflict {
		t.Fatal("conflict flag not propagated")
	}
	if string(envelope.ServerData) == "" {
		t.Fatal("server data not propagated")
	}
}

func TestSyncMutationServiceErrorUsesCodeStatus(t *testing.T) {
	svc := &testReconcileService{
		submitFn: func(_ context.Context, _ reconcile.Submission) (*syncwire.MutationResponse, error) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "device belongs to another tenant")
		},
	}

	req := newSyncRequest(t, "pesanan", uuid.New(), "till-1", syncwire.MutationRequest{
		Action:   enums.MutationActionCreate,
		RecordID: "local-1",
		DeviceID: "till-1",
	})
	resp := httptest.NewRecorder()
	SyncMutation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}
