package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"walletpay-backend/internal/walletpay"
	"walletpay-backend/pkg/logger"
)

// Relay opens redirect frames against the gateway and routes each frame's
// single terminal message back by correlation id. One frame sees exactly
// one result or one error, never both.
type Relay struct {
	baseURL string

	mu     sync.Mutex
	frames map[string]*Frame
}

// New constructs a relay rooted at the gateway base URL.
func New(baseURL string) (*Relay, error) {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return nil, errors.New("relay base URL is required")
	}
	return &Relay{
		baseURL: strings.TrimRight(base, "/"),
		frames:  make(map[string]*Frame),
	}, nil
}

var _ walletpay.FrameOpener = (*Relay)(nil)

// Frame is one open redirect frame. Its channels are buffered so delivery
// never blocks the relay.
type Frame struct {
	id      string
	url     string
	relay   *Relay
	results chan json.RawMessage
	errs    chan error

	closeOnce sync.Once
}

var _ walletpay.Frame = (*Frame)(nil)

// OpenFrame registers a new frame for the given path and payload. The
// payload is encoded into the frame URL's query string along with the
// correlation id.
func (r *Relay) OpenFrame(path string, payload map[string]string) (walletpay.Frame, error) {
	if r == nil {
		return nil, errors.New("relay is not configured")
	}

	id := uuid.New().String()
	query := url.Values{}
	query.Set("relay_id", id)
	for key, value := range payload {
		if value != "" {
			query.Set(key, value)
		}
	}

	frame := &Frame{
		id:      id,
		url:     fmt.Sprintf("%s%s?%s", r.baseURL, path, query.Encode()),
		relay:   r,
		results: make(chan json.RawMessage, 1),
		errs:    make(chan error, 1),
	}

	r.mu.Lock()
	r.frames[id] = frame
	r.mu.Unlock()

	logger.Debug("Relay frame opened", map[string]interface{}{
		"relay_id": id,
		"path":     path,
	})
	return frame, nil
}

// Deliver routes a terminal message to the frame identified by relayID.
// Unknown ids are dropped: the frame may already be closed.
func (r *Relay) Deliver(relayID string, result json.RawMessage, deliveryErr error) {
	r.mu.Lock()
	frame, ok := r.frames[relayID]
	if ok {
		delete(r.frames, relayID)
	}
	r.mu.Unlock()

	if !ok {
		logger.Warn("Relay message for unknown frame dropped", map[string]interface{}{
			"relay_id": relayID,
		})
		return
	}

	if deliveryErr != nil {
		frame.errs <- deliveryErr
		return
	}
	frame.results <- result
}

// URL is the full frame URL including the correlation id.
func (f *Frame) URL() string { return f.url }

// ID is the frame's correlation id.
func (f *Frame) ID() string { return f.id }

func (f *Frame) Results() <-chan json.RawMessage { return f.results }

func (f *Frame) Errors() <-chan error { return f.errs }

// Close deregisters the frame. Safe to call more than once and after a
// message was delivered.
func (f *Frame) Close() {
	f.closeOnce.Do(func() {
		f.relay.mu.Lock()
		delete(f.relay.frames, f.id)
		f.relay.mu.Unlock()
	})
}
