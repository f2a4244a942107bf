package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/warungpos/backend/pkg/config"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/syncwire"
)

// pathByTable maps logical table tags to their wire endpoints.
var pathByTable = map[enums.SyncTable]string{
	enums.SyncTableOrders:      "pesanan",
	enums.SyncTableMenu:        "menu",
	enums.SyncTableInventory:   "inventory",
	enums.SyncTableDailyReport: "daily-report",
}

// Client speaks the sync wire protocol to the server. It satisfies both the
// dispatcher's Transport and Connectivity interfaces.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a sync client from the local daemon config.
func New(cfg config.LocalConfig) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		token:   cfg.BearerToken,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Submit posts one mutation to its table endpoint. HTTP conflict responses
// are not errors on the wire: they come back as a decoded response with
// Conflict set.
func (c *Client) Submit(ctx context.Context, table enums.SyncTable, req syncwire.MutationRequest) (*syncwire.MutationResponse, error) {
	path, ok := pathByTable[table]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no sync endpoint for table %q", table))
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encoding mutation request")
	}

	url := fmt.Sprintf("%s/api/v1/sync/%s", c.baseURL, path)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building sync request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync server unreachable")
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading sync response")
	}

	var resp syncwire.MutationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("malformed sync response (status %d)", httpResp.StatusCode))
	}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("sync server error (status %d): %s", httpResp.StatusCode, resp.Error))
	}
	return &resp, nil
}

// Online probes the server's liveness endpoint with a short deadline.
func (c *Client) Online(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/health/live", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode == http.StatusOK
}
