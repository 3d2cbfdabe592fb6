package progress

import (
	"context"
	"testing"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/stretchr/testify/assert"
)

// fakeSource serves scans from a map and disables the live stream
type fakeSource struct {
	scans map[string]models.Scan
}

func (f *fakeSource) GetScan(_ context.Context, _, id string) (*models.Scan, error) {
	s := f.scans[id]
	return &s, nil
}

func (f *fakeSource) WebSocketURL(string) string { return "" }

func newTestHub(scans ...models.Scan) *Hub {
	source := &fakeSource{scans: make(map[string]models.Scan)}
	for _, s := range scans {
		source.scans[s.ID] = s
	}
	return NewHub(source, utils.NewLogger(utils.Config{LogLevel: "error"}))
}

func TestHub_TerminalScanGetsNoTracker(t *testing.T) {
	scan := models.Scan{ID: "s1", Status: models.ScanStatusCompleted}
	h := newTestHub(scan)
	defer h.Close()

	assert.Nil(t, h.Track(scan, "tok"))

	_, ok := h.Snapshot("s1")
	assert.False(t, ok)
}

func TestHub_ReusesTrackerPerScan(t *testing.T) {
	scan := models.Scan{ID: "s1", Status: models.ScanStatusScanning}
	h := newTestHub(scan)
	defer h.Close()

	first := h.Track(scan, "tok")
	second := h.Track(scan, "tok")

	assert.NotNil(t, first)
	assert.Same(t, first, second)
}

func TestHub_SnapshotReleasesTerminalTracker(t *testing.T) {
	scan := models.Scan{ID: "s1", Status: models.ScanStatusScanning}
	h := newTestHub(scan)
	defer h.Close()

	tr := h.Track(scan, "tok")
	assert.NotNil(t, tr)

	tr.applyDone(models.ScanStatusCompleted)

	snap, ok := h.Snapshot("s1")
	assert.True(t, ok)
	assert.Equal(t, models.ScanStatusCompleted, snap.Scan.Status)

	// The terminal tracker was torn down on read
	_, ok = h.Snapshot("s1")
	assert.False(t, ok)
}

func TestHub_SweepsTerminalTrackerWithoutReads(t *testing.T) {
	// The backend reports the scan as already completed
	h := newTestHub(models.Scan{ID: "s1", Status: models.ScanStatusCompleted})
	h.pollInterval = 5 * time.Millisecond
	defer h.Close()

	running := models.Scan{ID: "s1", Status: models.ScanStatusScanning}
	assert.NotNil(t, h.Track(running, "tok"))

	// Nobody reads a snapshot, yet the tracker disappears once the poll
	// loop observes the terminal status
	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.trackers) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHub_ReleaseUnknownScanIsNoop(t *testing.T) {
	h := newTestHub()
	defer h.Close()

	h.Release("never-seen")
}
