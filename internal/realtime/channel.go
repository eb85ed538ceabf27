package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/umerali06/fixora-pro-sync/internal/api"
	"github.com/umerali06/fixora-pro-sync/internal/common"
	"github.com/umerali06/fixora-pro-sync/internal/domain"
	"github.com/umerali06/fixora-pro-sync/internal/notify"
	"github.com/umerali06/fixora-pro-sync/internal/observability"
)

// State of the reconciliation channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// Status is one state transition, delivered to the status listener.
// Attempt counts reconnect attempts since the last healthy connection.
type Status struct {
	State   State
	Attempt int
	Err     error
}

// Config bounds the reconnect policy.
type Config struct {
	BaseURL     string
	Path        string
	Tokens      api.TokenSource
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = "/v1/events"
	}
	if c.Tokens == nil {
		c.Tokens = api.StaticToken("")
	}
	if c.MinDelay <= 0 {
		c.MinDelay = time.Second
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
}

const maxEventSize = 1 << 20

// Channel owns the single long-lived event-stream connection shared by
// all entity stores. Only the channel opens or closes the transport.
type Channel struct {
	cfg        Config
	dispatcher *Dispatcher
	notes      *notify.Center
	logger     *zap.Logger
	httpClient *http.Client

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	listener func(Status)
}

func NewChannel(cfg Config, d *Dispatcher, notes *notify.Center) *Channel {
	cfg.defaults()
	return &Channel{
		cfg:        cfg,
		dispatcher: d,
		notes:      notes,
		logger:     common.L(),
		// no client timeout: the stream is meant to stay open
		httpClient: &http.Client{},
	}
}

// OnStatus registers the status listener. Must be set before Connect.
func (ch *Channel) OnStatus(fn func(Status)) { ch.listener = fn }

// State reports the current connection state.
func (ch *Channel) State() State {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// Connect starts the connection loop. Calling Connect on a channel
// that is not disconnected is a no-op.
func (ch *Channel) Connect(ctx context.Context) {
	ch.mu.Lock()
	if ch.state != StateDisconnected {
		ch.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ch.cancel = cancel
	ch.done = done
	ch.state = StateConnecting
	ch.mu.Unlock()

	go ch.run(runCtx, done)
}

// Disconnect closes the transport and waits for the loop to stop.
func (ch *Channel) Disconnect() {
	ch.mu.Lock()
	cancel, done := ch.cancel, ch.done
	ch.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (ch *Channel) setState(s State, attempt int, err error) {
	ch.mu.Lock()
	ch.state = s
	listener := ch.listener
	ch.mu.Unlock()
	observability.SetRealtimeState(float64(s))
	if listener != nil {
		listener(Status{State: s, Attempt: attempt, Err: err})
	}
	ch.notifyStatus(s, attempt)
}

func (ch *Channel) notifyStatus(s State, attempt int) {
	if ch.notes == nil {
		return
	}
	var level notify.Level
	var msg string
	switch s {
	case StateConnected:
		level, msg = notify.LevelSuccess, "real-time connection established"
	case StateReconnecting:
		level = notify.LevelWarning
		msg = fmt.Sprintf("real-time connection lost, reconnecting (attempt %d/%d)", attempt, ch.cfg.MaxAttempts)
	case StateDisconnected:
		level, msg = notify.LevelError, "real-time connection closed"
	default:
		return
	}
	ch.notes.Publish(notify.Notification{Level: level, Action: "connectivity", Message: msg})
}

// run is the connect/reconnect loop. A successful stream resets the
// attempt counter; exceeding the cap is terminal until the next
// explicit Connect.
func (ch *Channel) run(ctx context.Context, done chan struct{}) {
	defer func() {
		ch.mu.Lock()
		// the terminal status callback may have started a new session
		// already; tear down only this session's fields
		if ch.done == done {
			ch.cancel = nil
		}
		ch.mu.Unlock()
		close(done)
	}()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = ch.cfg.MinDelay
	bo.MaxInterval = ch.cfg.MaxDelay
	bo.MaxElapsedTime = 0
	bo.Reset()

	attempt := 0
	for {
		connected, err := ch.stream(ctx)
		if ctx.Err() != nil {
			ch.setState(StateDisconnected, attempt, nil)
			return
		}
		if connected {
			// healthy session: the next outage starts a fresh attempt count
			attempt = 0
			bo.Reset()
		}
		attempt++
		observability.ObserveReconnect()
		if attempt > ch.cfg.MaxAttempts {
			ch.logger.Error("reconnect attempts exhausted",
				zap.Int("attempts", ch.cfg.MaxAttempts), zap.Error(err))
			ch.setState(StateDisconnected, attempt, err)
			return
		}
		ch.logger.Warn("event stream dropped",
			zap.Int("attempt", attempt), zap.Error(err))
		ch.setState(StateReconnecting, attempt, err)
		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			ch.setState(StateDisconnected, attempt, nil)
			return
		}
	}
}

// stream opens the event stream and pumps frames until the connection
// drops or ctx is cancelled. Reports whether the handshake succeeded
// and the transport error that ended the stream.
func (ch *Channel) stream(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ch.cfg.BaseURL+ch.cfg.Path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	tok, err := ch.cfg.Tokens.Token(ctx)
	if err != nil {
		return false, fmt.Errorf("obtain credential: %w", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := ch.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("event stream rejected with status %d", resp.StatusCode)
	}

	// handshake ack
	ch.setState(StateConnected, 0, nil)

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), maxEventSize)
	var event string
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			ch.handleFrame(event, data.String())
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// heartbeat comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(line[len("data:"):]))
		}
	}
	if err := sc.Err(); err != nil {
		return true, err
	}
	return true, fmt.Errorf("event stream closed by server")
}

func (ch *Channel) handleFrame(event, data string) {
	if data == "" {
		return
	}
	if event != "" && event != "change" {
		ch.logger.Debug("ignoring unknown event", zap.String("event", event))
		return
	}
	var ev domain.ChangeEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		ch.logger.Warn("malformed change event", zap.Error(err))
		return
	}
	if err := ch.dispatcher.Dispatch(ev); err != nil {
		ch.logger.Warn("dropping change event", zap.Error(err))
	}
}
