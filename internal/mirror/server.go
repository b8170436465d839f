package mirror

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/messerjon/TetrisClock/hal"
	"github.com/messerjon/TetrisClock/internal/buildinfo"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MIMEMsgpack is the content type of /api/frame responses.
const MIMEMsgpack = "application/msgpack"

const (
	writeWait  = 2 * time.Second
	pingPeriod = 20 * time.Second
	pongWait   = pingPeriod * 2
)

// Server exposes a Hub over HTTP.
type Server struct {
	hub      *Hub
	log      hal.Logger
	echo     *echo.Echo
	upgrader websocket.Upgrader
}

// NewServer builds the echo router for hub. log may be nil.
func NewServer(hub *Hub, log hal.Logger) *Server {
	s := &Server{
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4 * 1024,
		},
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet},
	}))

	e.GET("/health", s.handleHealth)
	api := e.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/frame", s.handleFrame)
	api.GET("/frame.json", s.handleFrameJSON)
	e.GET("/ws", s.handleWebSocket)

	s.echo = e
	return s
}

// Handler returns the router for use with httptest or a custom listener.
func (s *Server) Handler() http.Handler { return s.echo }

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.echo.Listener = ln
	errc := make(chan error, 1)
	go func() { errc <- s.echo.Start("") }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logf("mirror: listening on " + ln.Addr().String())
	return s.Serve(ctx, ln)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Current(),
	})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.hub.Status())
}

func (s *Server) handleFrame(c echo.Context) error {
	_, b, ok := s.hub.Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no frame rendered yet")
	}
	return c.Blob(http.StatusOK, MIMEMsgpack, b)
}

func (s *Server) handleFrameJSON(c echo.Context) error {
	fr, _, ok := s.hub.Latest()
	if !ok {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no frame rendered yet")
	}
	return c.JSON(http.StatusOK, fr)
}

// handleWebSocket streams every published frame as a binary msgpack
// message. Frames are dropped, never queued, for slow viewers.
func (s *Server) handleWebSocket(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	frames, cancel := s.hub.Subscribe()
	defer cancel()
	s.logf("mirror: viewer connected from " + c.RealIP())

	// The read loop only services control frames and notices disconnects.
	done := make(chan struct{})
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-done:
			s.logf("mirror: viewer disconnected")
			return nil
		case b := <-frames:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.BinaryMessage, b); err != nil {
				return nil
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func (s *Server) logf(line string) {
	if s.log != nil {
		s.log.WriteLineString(line)
	}
}
