package progress

import (
	"context"
	"sync"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"
)

// ScanSource is the slice of the backend client the hub needs
type ScanSource interface {
	GetScan(ctx context.Context, token, id string) (*models.Scan, error)
	WebSocketURL(scanID string) string
}

// Hub owns at most one tracker per scan, shared across page requests
// for the lifetime of a running scan.
type Hub struct {
	source ScanSource
	log    *utils.Logger

	// pollInterval overrides the tracker poll cadence (tests)
	pollInterval time.Duration

	mu       sync.Mutex
	trackers map[string]*Tracker
}

// NewHub creates an empty tracker hub
func NewHub(source ScanSource, log *utils.Logger) *Hub {
	return &Hub{
		source:   source,
		log:      log,
		trackers: make(map[string]*Tracker),
	}
}

// Track returns the tracker for a scan, creating one on first sight.
// Terminal scans get no tracker; callers render the fetched scan as-is.
func (h *Hub) Track(scan models.Scan, token string) *Tracker {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.trackers[scan.ID]; ok {
		return t
	}
	if !scan.IsRunning() {
		return nil
	}

	scanID := scan.ID
	fetch := func(ctx context.Context) (*models.Scan, error) {
		return h.source.GetScan(ctx, token, scanID)
	}

	t := NewTracker(scan, fetch, TrackerOptions{
		StreamURL:    h.source.WebSocketURL(scanID),
		PollInterval: h.pollInterval,
		Log:          h.log,
	})
	h.trackers[scanID] = t

	// The poll loop exits once the scan goes terminal; sweep the tracker
	// then instead of waiting for a later page view to read it out.
	go func() {
		t.Wait()
		h.Release(scanID)
	}()

	h.log.WithField("scanID", scanID).Debug("Started progress tracker")
	return t
}

// Snapshot returns the merged state for a scan, if tracked
func (h *Hub) Snapshot(scanID string) (Snapshot, bool) {
	h.mu.Lock()
	t, ok := h.trackers[scanID]
	h.mu.Unlock()

	if !ok {
		return Snapshot{}, false
	}

	snap := t.Snapshot()
	if models.IsTerminal(snap.Scan.Status) {
		h.Release(scanID)
	}
	return snap, true
}

// Release tears down and forgets a scan's tracker
func (h *Hub) Release(scanID string) {
	h.mu.Lock()
	t, ok := h.trackers[scanID]
	delete(h.trackers, scanID)
	h.mu.Unlock()

	if ok {
		t.Stop()
	}
}

// Close stops every tracker; used on server shutdown
func (h *Hub) Close() {
	h.mu.Lock()
	trackers := h.trackers
	h.trackers = make(map[string]*Tracker)
	h.mu.Unlock()

	for _, t := range trackers {
		t.Stop()
	}
}
