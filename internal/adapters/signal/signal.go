package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/CommentClash/internal/app"
	"github.com/dkeye/CommentClash/internal/app/orch"
	"github.com/dkeye/CommentClash/internal/core"
	"github.com/dkeye/CommentClash/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const (
	DefaultReadLimit      = 32768
	DefaultPingPeriod     = 54 * time.Second
	DefaultNextRoundDelay = 5 * time.Second
	writeWait             = 5 * time.Second
	sendBuffer            = 32
)

type Options struct {
	ReadLimit      int64
	PingPeriod     time.Duration
	NextRoundDelay time.Duration
	RateLimit      float64
	RateBurst      int
	// CheckOrigin defaults to accepting every origin.
	CheckOrigin func(r *http.Request) bool
}

type SignalWSController struct {
	Orch  *orch.Orchestrator
	Hub   *Hub
	Clock core.Clock

	limiter        *RateLimiter
	upgrader       websocket.Upgrader
	readLimit      int64
	pingPeriod     time.Duration
	nextRoundDelay time.Duration
}

func NewSignalWSController(o *orch.Orchestrator, hub *Hub, clock core.Clock, opts Options) *SignalWSController {
	if clock == nil {
		clock = app.SystemClock{}
	}
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	if opts.PingPeriod <= 0 {
		opts.PingPeriod = DefaultPingPeriod
	}
	if opts.NextRoundDelay <= 0 {
		opts.NextRoundDelay = DefaultNextRoundDelay
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &SignalWSController{
		Orch:           o,
		Hub:            hub,
		Clock:          clock,
		limiter:        NewRateLimiter(opts.RateLimit, opts.RateBurst),
		upgrader:       websocket.Upgrader{CheckOrigin: checkOrigin},
		readLimit:      opts.ReadLimit,
		pingPeriod:     opts.PingPeriod,
		nextRoundDelay: opts.NextRoundDelay,
	}
}

// WsSignalConn is one websocket with its outbound queue.
type WsSignalConn struct {
	id       domain.PlayerID
	nickname string
	conn     *websocket.Conn
	send     chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request. Every socket gets a fresh player id; the
// session nickname only seeds the default display name.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:       domain.PlayerID(uuid.NewString()),
		nickname: c.GetString(NicknameKey),
		conn:     ws,
		send:     make(chan core.Frame, sendBuffer),
	}
	log.Info().Str("module", "signal").Str("sid", string(conn.id)).Msg("new WS connection")

	ctl.Hub.Attach(conn.id, conn)
	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, conn)
}

// NicknameKey is the gin context key the router fills from the session.
const NicknameKey = "nickname"
