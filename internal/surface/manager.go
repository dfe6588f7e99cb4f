package surface

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Manager upgrades attach requests into Surfaces. Peers must present an
// allow-listed Origin; the original relayed messages from any sender, which
// is exactly the gap an explicit allow-list closes.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewManager builds a Manager accepting the given origins (scheme://host
// form). An empty list admits only same-host browsers and non-browser peers.
func NewManager(logger *slog.Logger, allowedOrigins []string) *Manager {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(strings.ToLower(origin)), "/")
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	m := &Manager{logger: logger}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r, allowed)
		},
	}
	return m
}

func originAllowed(r *http.Request, allowed map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser peer; nothing to verify.
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if _, ok := allowed[strings.TrimRight(strings.ToLower(origin), "/")]; ok {
		return true
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Attach upgrades the request into a Surface. The caller registers the
// surface with its session and then calls Start. An upgrade refusal is
// reported as ErrUnavailable; the session stays embedded.
func (m *Manager) Attach(w http.ResponseWriter, r *http.Request) (*Surface, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return newSurface(conn, m.logger), nil
}
