package progress

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/scanctum/scanctum-web/pkg/models"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gorilla/websocket"
)

// State of the live-progress client
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateRetrying   State = "retrying"
	// StateDegraded means the stream is abandoned; the caller's polling
	// fallback becomes the sole source of truth. Terminal for this scan.
	StateDegraded State = "degraded"
	// StateDone means the scan reached a terminal status. No further
	// connection attempts follow.
	StateDone State = "done"
)

// DefaultRetryInterval is the fixed backoff between reconnect attempts
const DefaultRetryInterval = 3 * time.Second

// Conn is the slice of *websocket.Conn the watcher needs. Narrowed so
// tests can count dials and drive closes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// DialFunc opens a connection to a progress stream URL
type DialFunc func(url string) (Conn, error)

func defaultDial(url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Options configures a Watcher
type Options struct {
	// OnProgress receives each incremental progress message verbatim
	OnProgress func(models.ProgressMessage)
	// OnDone receives the resolved terminal status exactly once
	OnDone func(finalStatus string)
	// RetryInterval overrides the fixed reconnect backoff (tests)
	RetryInterval time.Duration
	// Dial overrides the websocket dialer (tests)
	Dial DialFunc
	Log  *utils.Logger
}

// Watcher keeps a scan-detail view current while a scan runs by
// consuming the backend's per-scan progress stream. It never sends
// frames. One Watcher per scan ID; a new ID means a new Watcher.
type Watcher struct {
	url        string
	onProgress func(models.ProgressMessage)
	onDone     func(string)
	retry      time.Duration
	dial       DialFunc
	log        *utils.Logger

	mu         sync.Mutex
	state      State
	conn       Conn
	retryTimer *time.Timer
	stopped    bool
}

// NewWatcher creates a watcher for one progress stream URL
func NewWatcher(url string, opts Options) *Watcher {
	if opts.RetryInterval == 0 {
		opts.RetryInterval = DefaultRetryInterval
	}
	if opts.Dial == nil {
		opts.Dial = defaultDial
	}
	if opts.Log == nil {
		opts.Log = utils.NewLogger(utils.Config{})
	}

	return &Watcher{
		url:        url,
		onProgress: opts.OnProgress,
		onDone:     opts.OnDone,
		retry:      opts.RetryInterval,
		dial:       opts.Dial,
		log:        opts.Log,
		state:      StateIdle,
	}
}

// Start begins connecting. Safe to call once per Watcher.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.stopped || w.state != StateIdle {
		w.mu.Unlock()
		return
	}
	w.state = StateConnecting
	w.mu.Unlock()

	go w.connect()
}

// Stop tears the watcher down: cancels any pending reconnect timer and
// closes an open connection with a normal-closure frame. No dial may
// happen after Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.retryTimer != nil {
		w.retryTimer.Stop()
		w.retryTimer = nil
	}
	if w.conn != nil {
		w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		w.conn.Close()
		w.conn = nil
	}
	if w.state != StateDone && w.state != StateDegraded {
		w.state = StateIdle
	}
}

// State returns the current state
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Connected reports whether the stream is currently established
func (w *Watcher) Connected() bool {
	return w.State() == StateConnected
}

// Degraded reports whether the stream has been abandoned for polling
func (w *Watcher) Degraded() bool {
	return w.State() == StateDegraded
}

func (w *Watcher) connect() {
	conn, err := w.dial(w.url)

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		// Could not establish a connection at all: degrade immediately
		// rather than retry, the caller's poll takes over
		w.state = StateDegraded
		w.mu.Unlock()
		w.log.WithError(err).WithField("url", w.url).Warn("Progress stream unavailable, degrading to polling")
		return
	}
	w.state = StateConnected
	w.conn = conn
	w.mu.Unlock()

	w.log.WithField("url", w.url).Debug("Progress stream connected")
	w.readLoop(conn)
}

func (w *Watcher) readLoop(conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			w.handleClose(err)
			return
		}

		var msg models.ProgressMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed frames are ignored
			w.log.WithError(err).Debug("Ignoring malformed progress frame")
			continue
		}

		if w.handleMessage(conn, msg) {
			return
		}
	}
}

// handleMessage processes one frame; returns true when the read loop
// must exit without reconnecting.
func (w *Watcher) handleMessage(conn Conn, msg models.ProgressMessage) bool {
	switch {
	case msg.Type == models.ProgressTypePing:
		// Keepalive only
		return false

	case msg.Type == models.ProgressTypeError:
		// Stream not usable on this backend: degrade, no reconnect
		w.mu.Lock()
		w.state = StateDegraded
		w.conn = nil
		w.mu.Unlock()
		conn.Close()
		w.log.WithField("message", msg.Message).Info("Progress stream reported error, degrading to polling")
		return true

	case msg.Type == models.ProgressTypeDone || models.IsTerminal(msg.Status):
		// A progress frame can itself carry the terminal status; its
		// payload still reaches OnProgress before the done callback
		if msg.Type == models.ProgressTypeProgress && w.onProgress != nil {
			w.onProgress(msg)
		}
		status := msg.Status
		if status == "" {
			status = models.ScanStatusCompleted
		}
		w.mu.Lock()
		w.state = StateDone
		w.conn = nil
		w.mu.Unlock()
		if w.onDone != nil {
			w.onDone(status)
		}
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
		w.log.WithField("status", status).Debug("Scan reached terminal state, stream closed")
		return true

	case msg.Type == models.ProgressTypeProgress:
		if w.onProgress != nil {
			w.onProgress(msg)
		}
		return false
	}

	// Unknown types are ignored
	return false
}

// handleClose classifies a read error. Caller-initiated teardown and
// clean closes end the watcher; anything else schedules a reconnect at
// the fixed interval, indefinitely.
func (w *Watcher) handleClose(err error) {
	w.mu.Lock()
	if w.stopped || w.state == StateDone || w.state == StateDegraded {
		w.mu.Unlock()
		return
	}
	w.conn = nil

	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		w.state = StateIdle
		w.mu.Unlock()
		w.log.Debug("Progress stream closed cleanly")
		return
	}

	w.state = StateRetrying
	w.retryTimer = time.AfterFunc(w.retry, w.retryConnect)
	w.mu.Unlock()

	w.log.WithError(err).WithField("retryIn", w.retry).Debug("Progress stream lost, scheduling reconnect")
}

func (w *Watcher) retryConnect() {
	w.mu.Lock()
	if w.stopped || w.state != StateRetrying {
		w.mu.Unlock()
		return
	}
	w.state = StateConnecting
	w.retryTimer = nil
	w.mu.Unlock()

	w.connect()
}
