package form

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/formdesk/internal/chrome"
	"github.com/retailops/formdesk/internal/draft"
	"github.com/retailops/formdesk/internal/masterdata"
	"github.com/retailops/formdesk/internal/surface"
)

// ErrSessionClosed is returned for operations on a torn-down session.
var ErrSessionClosed = errors.New("form: session closed")

// defaultInitialPushDelay gives the detached surface a moment to finish
// building its static view before the first full data push.
const defaultInitialPushDelay = 50 * time.Millisecond

const inboxSize = 128

// Recorder counts protocol and push activity. Implemented by the
// observability package; nil disables recording.
type Recorder interface {
	MessageReceived(msgType string)
	MessageDropped(reason string)
	PushSent(pushType string)
	SurfaceAttached()
	SurfaceDetached()
}

// SessionConfig carries the collaborators of one form session.
type SessionConfig struct {
	Logger           *slog.Logger
	Products         []draft.Product
	Suppliers        []masterdata.Supplier
	Role             string
	Viewport         chrome.Size
	Submitter        Submitter
	Recorder         Recorder
	OnClose          func()
	InitialPushDelay time.Duration
}

// Session is the primary context of one open purchase form: a single
// goroutine that is the sole writer of the canonical draft and of the
// embedded chrome state. Both presentations funnel their events here; the
// secondary surface only ever relays raw input and renders pushes.
type Session struct {
	id        uuid.UUID
	logger    *slog.Logger
	store     *draft.Store
	chrome    chrome.State
	products  []draft.Product
	suppliers []masterdata.Supplier
	role      string
	message   string
	submitter Submitter
	recorder  Recorder
	onClose   func()
	pushDelay time.Duration

	inbox chan func()
	done  chan struct{}

	// Owned by the session goroutine.
	closed         bool
	surface        *surface.Surface
	initialPush    *time.Timer
	dateFocused    bool
	lastPushedDate string
	datePushed     bool
}

// NewSession builds and starts a session actor.
func NewSession(id uuid.UUID, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	delay := cfg.InitialPushDelay
	if delay <= 0 {
		delay = defaultInitialPushDelay
	}
	s := &Session{
		id:        id,
		logger:    logger.With(slog.String("session", id.String())),
		store:     draft.NewStore(draft.NewCatalogIndex(cfg.Products)),
		chrome:    chrome.New(cfg.Viewport),
		products:  cfg.Products,
		suppliers: cfg.Suppliers,
		role:      cfg.Role,
		submitter: cfg.Submitter,
		recorder:  cfg.Recorder,
		onClose:   cfg.OnClose,
		pushDelay: delay,
		inbox:     make(chan func(), inboxSize),
		done:      make(chan struct{}),
	}
	go s.loop()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) loop() {
	for {
		select {
		case fn := <-s.inbox:
			fn()
		case <-s.done:
			return
		}
	}
}

// post queues work for the session goroutine, blocking until accepted.
func (s *Session) post(fn func()) error {
	select {
	case s.inbox <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// postAsync queues work without blocking; a full inbox or closed session
// drops it. This is the fire-and-forget path for surface frames.
func (s *Session) postAsync(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- fn:
		return true
	default:
		return false
	}
}

// call runs fn on the session goroutine and waits for completion.
func (s *Session) call(fn func()) error {
	ran := make(chan struct{})
	if err := s.post(func() {
		fn()
		close(ran)
	}); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-s.done:
		// Teardown executed by fn itself still counts as completed.
		select {
		case <-ran:
			return nil
		default:
			return ErrSessionClosed
		}
	}
}

// View projects the current state. Used by the embedded presentation on
// every render.
func (s *Session) View() (ViewModel, error) {
	var vm ViewModel
	err := s.call(func() { vm = s.project() })
	return vm, err
}

func (s *Session) project() ViewModel {
	vm := Project(s.store.Snapshot(), s.suppliers, s.products, s.role, s.message)
	if s.surface != nil && s.surface.Alive() {
		vm.Detached = true
		return vm
	}
	frame := s.chrome.Frame()
	vm.Chrome = &frame
	return vm
}

// Dispatch applies one message synchronously on behalf of the embedded
// presentation and returns the resulting validation error, if any.
func (s *Session) Dispatch(ctx context.Context, msg Message) error {
	var result error
	err := s.call(func() { result = s.applyMessage(ctx, msg, false) })
	if err != nil {
		return err
	}
	return result
}

// HandleSurfaceFrame decodes and queues one inbound frame from the detached
// surface. Fire-and-forget: malformed frames and frames arriving after
// teardown are logged and dropped.
func (s *Session) HandleSurfaceFrame(data []byte) {
	msg, err := DecodeMessage(data)
	if err != nil {
		s.logger.Warn("drop surface frame", slog.Any("error", err))
		if s.recorder != nil {
			s.recorder.MessageDropped("malformed")
		}
		return
	}
	if s.recorder != nil {
		s.recorder.MessageReceived(msg.Type)
	}
	if !s.postAsync(func() { _ = s.applyMessage(context.Background(), msg, true) }) {
		s.logger.Debug("drop surface frame", slog.String("type", msg.Type))
		if s.recorder != nil {
			s.recorder.MessageDropped("session_gone")
		}
	}
}

// applyMessage maps one message to its store operation and emits the
// targeted pushes for the regions it changed.
func (s *Session) applyMessage(ctx context.Context, msg Message, fromSurface bool) error {
	if s.closed {
		return ErrSessionClosed
	}
	switch msg.Type {
	case MsgSetDate:
		value := msg.SetDate.Value
		s.store.SetDate(value)
		if fromSurface {
			// The surface's field already shows what it just typed.
			s.lastPushedDate = value
			s.datePushed = true
		}
		s.pushDate()
	case MsgSetSuppliers:
		s.store.SetSuppliers(msg.SetSuppliers.Value)
		s.pushSuppliers()
	case MsgToggleSupplier:
		name, ok := s.supplierName(msg.ToggleSupplier.SupplierID)
		if !ok {
			return nil
		}
		s.store.ToggleSupplier(msg.ToggleSupplier.SupplierID, name, msg.ToggleSupplier.IsChecked)
		s.pushSuppliers()
	case MsgSetItems:
		s.store.SetItems(msg.SetItems.Value)
		s.pushItems()
	case MsgAddItems:
		s.store.AddItems(int(draft.ParseNumber(msg.AddItems.Count)))
		s.pushItems()
	case MsgRemoveItem:
		s.store.RemoveItem(msg.RemoveItem.ItemID)
		s.pushItems()
	case MsgUpdateItem:
		s.store.ApplyUpdates(msg.UpdateItem.ItemID, msg.UpdateItem.Updates)
		s.pushItems()
	case MsgFieldFocus:
		if msg.FieldFocus.Field == "date" {
			s.dateFocused = msg.FieldFocus.Focused
		}
	case MsgSubmit:
		return s.submit(ctx)
	case MsgClose:
		s.teardown()
	}
	return nil
}

func (s *Session) supplierName(id int64) (string, bool) {
	for _, sup := range s.suppliers {
		if sup.ID == id {
			return sup.Name, true
		}
	}
	return "", false
}

// submit runs the validation gate and hands the normalized payload to the
// collaborator. Success resets the draft and clears the inline message.
func (s *Session) submit(ctx context.Context) error {
	snapshot := s.store.Snapshot()
	if verr := ValidateDraft(snapshot); verr != nil {
		s.message = verr.Message
		s.pushMessage()
		return verr
	}
	if s.submitter != nil {
		if err := s.submitter.SubmitPurchase(ctx, BuildSubmission(snapshot)); err != nil {
			s.logger.Error("submit purchase", slog.Any("error", err))
			s.message = msgSubmitFailed
			s.pushMessage()
			return err
		}
	}
	s.store.Reset()
	s.message = ""
	s.pushAll()
	return nil
}

// Submit runs the gate on behalf of the embedded presentation.
func (s *Session) Submit(ctx context.Context) error {
	var result error
	if err := s.call(func() { result = s.submit(ctx) }); err != nil {
		return err
	}
	return result
}

// ChromeAction names an embedded window-chrome event.
type ChromeAction string

const (
	ChromePointerDown      ChromeAction = "pointer_down"
	ChromePointerMove      ChromeAction = "pointer_move"
	ChromePointerUp        ChromeAction = "pointer_up"
	ChromeToggleMinimize   ChromeAction = "toggle_minimize"
	ChromeToggleFullscreen ChromeAction = "toggle_fullscreen"
	ChromeViewport         ChromeAction = "viewport"
)

// ChromeEvent is one embedded chrome interaction.
type ChromeEvent struct {
	Action   ChromeAction
	Pointer  chrome.Point
	Viewport chrome.Size
}

// ApplyChrome advances the window-chrome state machine and returns the new
// frame. Chrome only exists for the embedded presentation; events arriving
// while detached are ignored.
func (s *Session) ApplyChrome(evt ChromeEvent) (chrome.Frame, error) {
	var frame chrome.Frame
	err := s.call(func() {
		if s.surface == nil || !s.surface.Alive() {
			switch evt.Action {
			case ChromePointerDown:
				s.chrome.BeginDrag(evt.Pointer)
			case ChromePointerMove:
				s.chrome.Drag(evt.Pointer)
			case ChromePointerUp:
				s.chrome.EndDrag()
			case ChromeToggleMinimize:
				s.chrome.ToggleMinimize()
			case ChromeToggleFullscreen:
				s.chrome.ToggleFullscreen()
			case ChromeViewport:
				s.chrome.SetViewport(evt.Viewport)
			}
		}
		frame = s.chrome.Frame()
	})
	return frame, err
}

// sessionSink adapts one attached surface to the session. It pins the
// surface it was created for so a stale closure notice from a replaced
// surface cannot detach its successor.
type sessionSink struct {
	session *Session
	surface *surface.Surface
}

func (k sessionSink) HandleFrame(data []byte) {
	k.session.HandleSurfaceFrame(data)
}

func (k sessionSink) SurfaceClosed() {
	// Blocking is fine here: the read pump is exiting and the notice must
	// not be lost. A session mid-teardown rejects it, which is also fine.
	_ = k.session.post(func() { k.session.detach(k.surface) })
}

// AttachSurface registers an upgraded surface with the session, sends the
// one-time INIT view and schedules the deferred first data push. At most one
// surface may be attached.
func (s *Session) AttachSurface(surf *surface.Surface) error {
	var attachErr error
	err := s.call(func() {
		if s.closed {
			attachErr = ErrSessionClosed
			return
		}
		if s.surface != nil && s.surface.Alive() {
			attachErr = surface.ErrAlreadyAttached
			return
		}
		s.surface = surf
		s.dateFocused = false
		s.datePushed = false
		s.lastPushedDate = ""
		if s.recorder != nil {
			s.recorder.SurfaceAttached()
		}
		s.sendPush(PushInit, Project(s.store.Snapshot(), s.suppliers, s.products, s.role, s.message))
		s.initialPush = time.AfterFunc(s.pushDelay, func() {
			_ = s.postAsync(func() { s.pushAll() })
		})
	})
	if err != nil {
		return err
	}
	if attachErr != nil {
		return attachErr
	}
	surf.Start(sessionSink{session: s, surface: surf})
	return nil
}

// detach reverts the session to embedded mode once its surface is gone.
func (s *Session) detach(surf *surface.Surface) {
	if s.surface != surf {
		return
	}
	if s.initialPush != nil {
		s.initialPush.Stop()
		s.initialPush = nil
	}
	s.surface = nil
	s.dateFocused = false
	if s.recorder != nil {
		s.recorder.SurfaceDetached()
	}
	s.logger.Debug("surface detached")
}

// Close tears the session down. Idempotent; every exit path funnels here and
// any still-open surface is closed as part of it.
func (s *Session) Close() {
	_ = s.call(func() { s.teardown() })
}

func (s *Session) teardown() {
	if s.closed {
		return
	}
	s.closed = true
	if s.initialPush != nil {
		s.initialPush.Stop()
		s.initialPush = nil
	}
	if s.surface != nil {
		s.surface.Close()
		s.surface = nil
		if s.recorder != nil {
			s.recorder.SurfaceDetached()
		}
	}
	close(s.done)
	if s.onClose != nil {
		s.onClose()
	}
}
