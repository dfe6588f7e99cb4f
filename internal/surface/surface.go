// Package surface manages the detached browsing surface of a form session:
// one WebSocket peer that receives differential view pushes and relays raw
// input events back to the owning session.
package surface

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrUnavailable signals that the platform refused to create the
	// surface; callers silently continue in embedded mode.
	ErrUnavailable = errors.New("surface: unavailable")
	// ErrAlreadyAttached signals a second attach on a session that already
	// has a live surface.
	ErrAlreadyAttached = errors.New("surface: already attached")
	// ErrClosed signals a push to a surface that has gone away.
	ErrClosed = errors.New("surface: closed")
)

const (
	writeWait      = 5 * time.Second
	sendBufferSize = 64
)

// Sink receives inbound frames and lifecycle notices from the surface.
// Delivery is fire-and-forget; implementations must not block.
type Sink interface {
	HandleFrame(data []byte)
	SurfaceClosed()
}

// Surface is one live detached peer. Pushes are non-blocking: a slow or dead
// peer drops frames rather than stalling the session.
type Surface struct {
	conn   *websocket.Conn
	logger *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSurface(conn *websocket.Conn, logger *slog.Logger) *Surface {
	return &Surface{
		conn:   conn,
		logger: logger,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Start launches the read and write pumps. Frames queued with Push before
// Start are delivered once the write pump spins up.
func (s *Surface) Start(sink Sink) {
	go s.writePump()
	go s.readPump(sink)
}

// readPump relays inbound frames until the peer goes away, then reports the
// closure. A read error is the liveness signal: user-closed window, network
// drop and handshake teardown all land here.
func (s *Surface) readPump(sink Sink) {
	defer func() {
		s.shutdown()
		sink.SurfaceClosed()
	}()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("surface read ended", slog.Any("error", err))
			}
			return
		}
		sink.HandleFrame(data)
	}
}

func (s *Surface) writePump() {
	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.shutdown()
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Push queues a frame for delivery. It never blocks: a full buffer or a
// closed surface drops the frame and reports ErrClosed so the caller can log
// and move on.
func (s *Surface) Push(data []byte) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.send <- data:
		return nil
	case <-s.done:
		return ErrClosed
	default:
		return ErrClosed
	}
}

// Alive reports whether the surface can still receive pushes.
func (s *Surface) Alive() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Close tears the surface down. Safe to call from any goroutine and on every
// session exit path; repeated calls are no-ops.
func (s *Surface) Close() {
	s.shutdown()
}

func (s *Surface) shutdown() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
