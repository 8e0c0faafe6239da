package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/advancepark/parkterm/pkg/domain"
)

const (
	reconnectBase = time.Second
	reconnectMax  = 30 * time.Second
)

// TokenSource yields the current access token for socket authentication.
// The session manager satisfies this; reconnects pick up rotated tokens.
type TokenSource func() string

// Stream reads live notification frames from the push socket and delivers
// them on Events. It reconnects on failure with exponential backoff, 1s
// doubling up to 30s, and resets the backoff after a successful connect.
type Stream struct {
	url    string
	token  TokenSource
	log    *zap.Logger
	dialer *websocket.Dialer
	events chan domain.StreamEvent
}

// NewStream creates a stream for the given socket URL. A nil logger
// disables logging.
func NewStream(url string, token TokenSource, log *zap.Logger) *Stream {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stream{
		url:    url,
		token:  token,
		log:    log,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		events: make(chan domain.StreamEvent, 16),
	}
}

// Events is the delivery channel. It is closed when Run returns.
func (s *Stream) Events() <-chan domain.StreamEvent {
	return s.events
}

// Run connects and reads frames until ctx is cancelled, reconnecting with
// backoff in between. It closes the event channel on return, so it must be
// called exactly once.
func (s *Stream) Run(ctx context.Context) {
	defer close(s.events)

	delay := reconnectBase
	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := s.dial(ctx)
		if err != nil {
			s.log.Warn("socket dial failed",
				zap.Error(err), zap.Duration("retry_in", delay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > reconnectMax {
				delay = reconnectMax
			}
			continue
		}
		delay = reconnectBase

		s.read(ctx, conn)
		conn.Close() //nolint:errcheck

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectBase):
		}
	}
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	url := s.url + "?token=" + s.token()
	conn, resp, err := s.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close() //nolint:errcheck
	}
	return conn, err
}

// read pumps frames into the event channel until the connection breaks or
// ctx is cancelled. Frames that fail to decode are logged and dropped.
func (s *Stream) read(ctx context.Context, conn *websocket.Conn) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close() //nolint:errcheck
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("socket read failed", zap.Error(err))
			}
			return
		}
		var ev domain.StreamEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			s.log.Warn("dropping malformed socket frame", zap.Error(err))
			continue
		}
		if ev.Type == "" {
			s.log.Warn("dropping untyped socket frame")
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}
