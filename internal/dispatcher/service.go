package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/warungpos/backend/internal/queue"
	"github.com/warungpos/backend/pkg/db/models"
	"github.com/warungpos/backend/pkg/enums"
	pkgerrors "github.com/warungpos/backend/pkg/errors"
	"github.com/warungpos/backend/pkg/logger"
	"github.com/warungpos/backend/pkg/metrics"
	"github.com/warungpos/backend/pkg/syncwire"
)

// Transport submits one queued mutation to the sync server.
type Transport interface {
	Submit(ctx context.Context, table enums.SyncTable, req syncwire.MutationRequest) (*syncwire.MutationResponse, error)
}

// Connectivity reports whether the server is reachable. A drain attempt is
// skipped entirely while offline.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// RebaseFunc is invoked when the server answers a drain item with a conflict.
// It receives the authoritative server state so local storage can be rewritten.
type RebaseFunc func(ctx context.Context, table enums.SyncTable, localID string, serverData []byte)

// Options wires a dispatcher.
type Options struct {
	Queue        queue.Repository
	Transport    Transport
	Connectivity Connectivity
	Rebase       RebaseFunc
	DeviceID     string
	// DrainInterval is the periodic drain cadence. Zero disables the timer;
	// TriggerNow and NotifyNetworkUp still work.
	DrainInterval time.Duration
	MaxRetries    int
	BatchLimit    int
	Metrics       *metrics.DispatcherMetrics
	Logger        *logger.Logger
}

// Service drains the local pending queue toward the server. At most one drain
// runs at a time; overlapping triggers collapse into the running pass.
type Service struct {
	opts    Options
	busy    atomic.Bool
	trigger chan struct{}
	netUp   chan struct{}
}

// Drain outcomes reported to metrics.
const (
	drainOutcomeOK      = "ok"
	drainOutcomeSkipped = "skipped"
	drainOutcomeOffline = "offline"
	drainOutcomePartial = "partial"

	itemResultSynced   = "synced"
	itemResultConflict = "conflict"
	itemResultFailed   = "failed"
)

// New builds a dispatcher service.
func New(opts Options) (*Service, error) {
	if opts.Queue == nil {
		return nil, fmt.Errorf("queue repository required")
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport required")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	return &Service{
		opts:    opts,
		trigger: make(chan struct{}, 1),
		netUp:   make(chan struct{}, 1),
	}, nil
}

// Run drains on the configured interval and on demand until ctx is cancelled.
// Cancellation stops scheduling; a drain already in flight finishes its
// current submission.
func (s *Service) Run(ctx context.Context) {
	var tick <-chan time.Time
	if s.opts.DrainInterval > 0 {
		ticker := time.NewTicker(s.opts.DrainInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			s.Drain(ctx)
		case <-s.trigger:
			s.Drain(ctx)
		case <-s.netUp:
			s.Drain(ctx)
		}
	}
}

// TriggerNow requests an immediate drain. Requests arriving while a drain is
// running or already requested are absorbed.
func (s *Service) TriggerNow() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// NotifyNetworkUp signals that connectivity was regained.
func (s *Service) NotifyNetworkUp() {
	select {
	case s.netUp <- struct{}{}:
	default:
	}
}

// ResetFailed clears retry counters on terminally failed entries and kicks a
// drain so they go out immediately.
func (s *Service) ResetFailed(ctx context.Context) (int64, error) {
	reset, err := s.opts.Queue.ResetFailed(ctx, s.opts.MaxRetries)
	if err != nil {
		return 0, err
	}
	if reset > 0 {
		s.TriggerNow()
	}
	return reset, nil
}

// Drain pushes due queue entries to the server in enqueue order. It returns
// the aggregated submission errors of the pass, or nil when every item either
// synced or resolved as a conflict. A second caller while a pass is running
// returns immediately.
func (s *Service) Drain(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		s.incDrain(drainOutcomeSkipped)
		return nil
	}
	defer s.busy.Store(false)

	started := time.Now()
	defer func() {
		if s.opts.Metrics != nil {
			s.opts.Metrics.ObserveDrain(time.Since(started))
		}
	}()

	if s.opts.Connectivity != nil && !s.opts.Connectivity.Online(ctx) {
		s.incDrain(drainOutcomeOffline)
		s.logDebug(ctx, "server unreachable, drain skipped")
		return nil
	}

	entries, err := s.opts.Queue.FetchDue(ctx, s.opts.MaxRetries, s.opts.BatchLimit)
	if err != nil {
		s.incDrain(drainOutcomePartial)
		return err
	}
	if len(entries) == 0 {
		s.incDrain(drainOutcomeOK)
		return nil
	}

	// Stopping the scheduler must not abort a request already on the wire.
	sendCtx := context.WithoutCancel(ctx)

	var errs error
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if err := s.submit(sendCtx, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("mutation %d (%s %s): %w", entry.ID, entry.Action, entry.Table, err))
		}
	}

	if errs != nil {
		s.incDrain(drainOutcomePartial)
		return errs
	}
	s.incDrain(drainOutcomeOK)
	return nil
}

func (s *Service) submit(ctx context.Context, entry models.PendingMutation) error {
	req := syncwire.MutationRequest{
		Action:    entry.Action,
		RecordID:  entry.LocalID,
		Data:      entry.Payload,
		Timestamp: entry.EnqueuedAt,
		DeviceID:  s.opts.DeviceID,
	}
	resp, err := s.opts.Transport.Submit(ctx, entry.Table, req)
	if err != nil {
		s.incItem(itemResultFailed)
		if markErr := s.opts.Queue.MarkFailed(ctx, entry.ID, err); markErr != nil {
			err = multierr.Append(err, markErr)
		}
		s.logWarn(ctx, entry, "sync submission failed")
		return err
	}

	if !resp.Success {
		failure := pkgerrors.New(pkgerrors.CodeDependency, respError(resp))
		s.incItem(itemResultFailed)
		if markErr := s.opts.Queue.MarkFailed(ctx, entry.ID, failure); markErr != nil {
			return multierr.Append(failure, markErr)
		}
		s.logWarn(ctx, entry, "sync submission rejected")
		return failure
	}

	// Conflicts are terminal for the queued item: the server kept its row
	// and handed back the authoritative state to rebase onto.
	if resp.Conflict {
		s.incItem(itemResultConflict)
		if err := s.opts.Queue.MarkSynced(ctx, entry.ID); err != nil {
			return err
		}
		if s.opts.Rebase != nil {
			s.opts.Rebase(ctx, entry.Table, entry.LocalID, resp.ServerData)
		}
		s.logDebug(ctx, "queued mutation resolved by server state")
		return nil
	}

	s.incItem(itemResultSynced)
	return s.opts.Queue.MarkSynced(ctx, entry.ID)
}

func respError(resp *syncwire.MutationResponse) string {
	if resp.Error != "" {
		return resp.Error
	}
	return "server rejected mutation"
}

func (s *Service) incDrain(outcome string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.IncDrain(outcome)
	}
}

func (s *Service) incItem(result string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.IncItem(result)
	}
}

func (s *Service) logDebug(ctx context.Context, msg string) {
	if s.opts.Logger != nil {
		s.opts.Logger.Debug(ctx, msg)
	}
}

func (s *Service) logWarn(ctx context.Context, entry models.PendingMutation, msg string) {
	if s.opts.Logger == nil {
		return
	}
	logCtx := s.opts.Logger.WithFields(ctx, map[string]any{
		"queue_id": entry.ID,
		"table":    string(entry.Table),
		"action":   string(entry.Action),
		"retries":  entry.RetryCount,
	})
	s.opts.Logger.Warn(logCtx, msg)
}
