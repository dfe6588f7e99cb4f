package form

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/retailops/formdesk/internal/chrome"
	"github.com/retailops/formdesk/internal/platform/httpx"
	"github.com/retailops/formdesk/internal/surface"
)

// Handler exposes the form session API and the surface attach endpoint.
type Handler struct {
	logger   *slog.Logger
	registry *Registry
	surfaces *surface.Manager
	validate *validator.Validate
}

// NewHandler constructs the HTTP handler.
func NewHandler(logger *slog.Logger, registry *Registry, surfaces *surface.Manager) *Handler {
	return &Handler{
		logger:   logger,
		registry: registry,
		surfaces: surfaces,
		validate: validator.New(),
	}
}

type createFormRequest struct {
	Role     string `json:"role"`
	Viewport struct {
		Width  float64 `json:"width" validate:"gte=0"`
		Height float64 `json:"height" validate:"gte=0"`
	} `json:"viewport"`
}

type createFormResponse struct {
	ID   string    `json:"id"`
	View ViewModel `json:"view"`
}

// Create opens a new form session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFormRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	session, err := h.registry.Create(r.Context(), req.Role, chrome.Size{Width: req.Viewport.Width, Height: req.Viewport.Height})
	if err != nil {
		h.logger.Error("create form session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	view, err := session.View()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, createFormResponse{ID: session.ID().String(), View: view})
}

// Show returns the current view model for the embedded presentation.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := session.View()
	if err != nil {
		h.respondSessionErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

// Dispatch applies one protocol message from the embedded presentation and
// responds with the refreshed view.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var env Envelope
	if err := httpx.DecodeJSON(r, &env); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	msg, err := DecodeEnvelope(env)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}

	if err := session.Dispatch(r.Context(), msg); err != nil {
		h.respondDispatchErr(w, session, err)
		return
	}
	h.respondView(w, session, http.StatusOK)
}

// Submit runs the validation gate from the embedded footer button.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.Submit(r.Context()); err != nil {
		h.respondDispatchErr(w, session, err)
		return
	}
	h.respondView(w, session, http.StatusOK)
}

type chromeRequest struct {
	Action ChromeAction `json:"action" validate:"required,oneof=pointer_down pointer_move pointer_up toggle_minimize toggle_fullscreen viewport"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
}

// Chrome applies an embedded window-chrome event.
func (h *Handler) Chrome(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req chromeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	frame, err := session.ApplyChrome(ChromeEvent{
		Action:   req.Action,
		Pointer:  chrome.Point{X: req.X, Y: req.Y},
		Viewport: chrome.Size{Width: req.Width, Height: req.Height},
	})
	if err != nil {
		h.respondSessionErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, frame)
}

// Attach upgrades the request into the session's detached surface. A refused
// upgrade means the session simply stays embedded; a second surface is a
// conflict.
func (h *Handler) Attach(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	surf, err := h.surfaces.Attach(w, r)
	if err != nil {
		// The upgrader has already written its refusal; embedded mode
		// continues without a user-visible error.
		h.logger.Debug("surface attach refused", slog.Any("error", err))
		return
	}
	if err := session.AttachSurface(surf); err != nil {
		surf.Close()
		h.logger.Warn("surface attach rejected", slog.Any("error", err))
		return
	}
}

// Close tears the session down.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "formID"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid form id", httpx.ErrValidation))
		return nil, false
	}
	session, ok := h.registry.Get(id)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: form %s", httpx.ErrNotFound, id))
		return nil, false
	}
	return session, true
}

func (h *Handler) respondView(w http.ResponseWriter, session *Session, status int) {
	view, err := session.View()
	if err != nil {
		h.respondSessionErr(w, err)
		return
	}
	httpx.JSON(w, status, view)
}

// respondDispatchErr distinguishes gate failures (inline, draft untouched)
// from infrastructure failures.
func (h *Handler) respondDispatchErr(w http.ResponseWriter, session *Session, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		view, viewErr := session.View()
		if viewErr != nil {
			h.respondSessionErr(w, viewErr)
			return
		}
		httpx.JSON(w, http.StatusUnprocessableEntity, view)
		return
	}
	h.respondSessionErr(w, err)
}

func (h *Handler) respondSessionErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrSessionClosed) {
		httpx.RespondError(w, fmt.Errorf("%w: session closed", httpx.ErrNotFound))
		return
	}
	h.logger.Error("form request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}
