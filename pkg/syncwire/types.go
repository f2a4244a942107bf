package syncwire

import (
	"encoding/json"
	"time"

	"github.com/warungpos/backend/pkg/enums"
)

// MutationRequest is one mutation submitted over the sync wire protocol. The
// logical table rides in the URL; the body carries the action and payload.
type MutationRequest struct {
	Action    enums.MutationAction `json:"action" validate:"required"`
	RecordID  string               `json:"recordId" validate:"required"`
	Data      json.RawMessage      `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
	DeviceID  string               `json:"deviceId" validate:"required"`
}

// MutationResult is the success payload returned for an applied mutation.
type MutationResult struct {
	ServerID  string    `json:"serverId"`
	Synced    bool      `json:"synced"`
	Timestamp time.Time `json:"timestamp"`
}

// MutationResponse is the full wire response. A version mismatch is not a
// failure: it arrives with Success=true, Conflict=true and the authoritative
// server state so the device can rebase.
type MutationResponse struct {
	Success    bool            `json:"success"`
	Data       *MutationResult `json:"data,omitempty"`
	Conflict   bool            `json:"conflict,omitempty"`
	ServerData json.RawMessage `json:"serverData,omitempty"`
	Error      string          `json:"error,omitempty"`
}
