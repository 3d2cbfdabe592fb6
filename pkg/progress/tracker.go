package progress

import (
	"context"
	"sync"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"
)

// DefaultPollInterval is the fallback poll cadence while a scan runs
const DefaultPollInterval = 3 * time.Second

// FetchFunc loads the current scan state from the backend
type FetchFunc func(ctx context.Context) (*models.Scan, error)

// Snapshot is the merged view state served to the detail page
type Snapshot struct {
	Scan      models.Scan `json:"scan"`
	Seq       uint64      `json:"seq"`
	Live      bool        `json:"live"`
	Degraded  bool        `json:"degraded"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Tracker merges two writers into one scan snapshot: the live-progress
// watcher and the fixed-interval polling fallback. Both may be active at
// once; every update is stamped with a monotonic sequence taken before
// its I/O starts, and only strictly ascending sequences are applied, so
// a slow stale poll response can never overwrite a fresher live update.
// A terminal status is sticky.
type Tracker struct {
	fetch        FetchFunc
	watcher      *Watcher
	pollInterval time.Duration
	log          *utils.Logger

	mu   sync.Mutex
	seq  uint64
	snap Snapshot

	cancel context.CancelFunc
	done   chan struct{}
}

// TrackerOptions configures a Tracker
type TrackerOptions struct {
	// StreamURL is the websocket progress endpoint; empty disables the
	// live path entirely (poll only)
	StreamURL    string
	PollInterval time.Duration
	// Watcher test hooks, forwarded to the embedded Watcher
	RetryInterval time.Duration
	Dial          DialFunc
	Log           *utils.Logger
}

// NewTracker creates and starts a tracker seeded with the scan's
// current state.
func NewTracker(initial models.Scan, fetch FetchFunc, opts TrackerOptions) *Tracker {
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Log == nil {
		opts.Log = utils.NewLogger(utils.Config{})
	}

	ctx, cancel := context.WithCancel(context.Background())

	t := &Tracker{
		fetch:        fetch,
		pollInterval: opts.PollInterval,
		log:          opts.Log,
		seq:          1,
		snap: Snapshot{
			Scan:      initial,
			Seq:       1,
			UpdatedAt: time.Now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if opts.StreamURL != "" && initial.IsRunning() {
		t.watcher = NewWatcher(opts.StreamURL, Options{
			OnProgress:    t.applyMessage,
			OnDone:        t.applyDone,
			RetryInterval: opts.RetryInterval,
			Dial:          opts.Dial,
			Log:           opts.Log,
		})
		t.watcher.Start()
	}

	go t.pollLoop(ctx)
	return t
}

// Stop halts the poller and tears down the watcher
func (t *Tracker) Stop() {
	t.cancel()
	if t.watcher != nil {
		t.watcher.Stop()
	}
	<-t.done
}

// Wait blocks until the poll loop has exited, either through Stop or
// because the scan reached a terminal status.
func (t *Tracker) Wait() {
	<-t.done
}

// Snapshot returns the current merged state, including the live/degraded
// flags for the status dot.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	snap := t.snap
	t.mu.Unlock()

	if t.watcher != nil {
		snap.Live = t.watcher.Connected()
		snap.Degraded = t.watcher.Degraded()
	} else {
		snap.Degraded = true
	}
	return snap
}

// Terminal reports whether the tracked scan has finished
func (t *Tracker) Terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.IsTerminal(t.snap.Scan.Status)
}

// nextSeq stamps an update before its I/O begins
func (t *Tracker) nextSeq() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	return t.seq
}

func (t *Tracker) pollLoop(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if t.Terminal() {
			return
		}

		seq := t.nextSeq()
		scan, err := t.fetch(ctx)
		if err != nil {
			// Poll failures leave the last snapshot in place
			t.log.WithError(err).Debug("Progress poll failed")
			continue
		}
		t.applyScan(*scan, seq)
	}
}

// applyScan ingests a full scan object from the polling path
func (t *Tracker) applyScan(scan models.Scan, seq uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if models.IsTerminal(t.snap.Scan.Status) && !models.IsTerminal(scan.Status) {
		return
	}
	if seq <= t.snap.Seq {
		// A newer update already landed while this fetch was in flight
		return
	}
	t.snap.Scan = scan
	t.snap.Seq = seq
	t.snap.UpdatedAt = time.Now()
}

// applyMessage ingests an incremental update from the live stream
func (t *Tracker) applyMessage(msg models.ProgressMessage) {
	seq := t.nextSeq()

	t.mu.Lock()
	defer t.mu.Unlock()

	if models.IsTerminal(t.snap.Scan.Status) {
		return
	}
	if seq <= t.snap.Seq {
		return
	}
	if msg.Status != "" {
		t.snap.Scan.Status = msg.Status
	}
	if msg.Progress != nil {
		t.snap.Scan.ProgressPercent = *msg.Progress
	}
	if msg.PagesFound != nil {
		t.snap.Scan.PagesFound = *msg.PagesFound
	}
	if msg.PagesScanned != nil {
		t.snap.Scan.PagesScanned = *msg.PagesScanned
	}
	if msg.Error != "" {
		t.snap.Scan.ErrorMessage = msg.Error
	}
	t.snap.Seq = seq
	t.snap.UpdatedAt = time.Now()
}

// applyDone records the terminal status pushed by the live stream
func (t *Tracker) applyDone(finalStatus string) {
	seq := t.nextSeq()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Sticky across conflicting statuses; the same status may arrive
	// twice when a progress frame carried it ahead of the done callback
	if models.IsTerminal(t.snap.Scan.Status) && t.snap.Scan.Status != finalStatus {
		return
	}
	t.snap.Scan.Status = finalStatus
	if finalStatus == models.ScanStatusCompleted {
		t.snap.Scan.ProgressPercent = 100
	}
	t.snap.Seq = seq
	t.snap.UpdatedAt = time.Now()
}
