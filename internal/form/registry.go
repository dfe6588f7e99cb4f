package form

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/formdesk/internal/chrome"
	"github.com/retailops/formdesk/internal/draft"
	"github.com/retailops/formdesk/internal/masterdata"
)

// ReferenceData supplies the read-only collaborators captured per session.
type ReferenceData interface {
	Products(ctx context.Context) ([]draft.Product, error)
	Suppliers(ctx context.Context) ([]masterdata.Supplier, error)
}

// RegistryConfig carries shared session collaborators.
type RegistryConfig struct {
	Logger           *slog.Logger
	RefData          ReferenceData
	Submitter        Submitter
	Recorder         Recorder
	InitialPushDelay time.Duration
}

// Registry tracks the live form sessions by id.
type Registry struct {
	cfg RegistryConfig

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry builds an empty registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Registry{cfg: cfg, sessions: make(map[uuid.UUID]*Session)}
}

// Create opens a new form session with a point-in-time snapshot of the
// reference data, mirroring how the form receives its inventory and supplier
// props when it opens.
func (r *Registry) Create(ctx context.Context, role string, viewport chrome.Size) (*Session, error) {
	products, err := r.cfg.RefData.Products(ctx)
	if err != nil {
		return nil, err
	}
	suppliers, err := r.cfg.RefData.Suppliers(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	session := NewSession(id, SessionConfig{
		Logger:           r.cfg.Logger,
		Products:         products,
		Suppliers:        suppliers,
		Role:             role,
		Viewport:         viewport,
		Submitter:        r.cfg.Submitter,
		Recorder:         r.cfg.Recorder,
		InitialPushDelay: r.cfg.InitialPushDelay,
		OnClose:          func() { r.remove(id) },
	})

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
	return session, nil
}

// Get looks up a live session.
func (r *Registry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Count reports the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll tears down every session; used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
