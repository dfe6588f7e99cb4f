package form

import (
	"encoding/json"
	"log/slog"

	"github.com/retailops/formdesk/internal/draft"
)

// Push frame kinds sent to the detached surface. INIT carries the complete
// view once at attach time; everything after is a targeted update.
const (
	PushInit      = "INIT"
	PushDate      = "PUSH_DATE"
	PushSuppliers = "PUSH_SUPPLIERS"
	PushItems     = "PUSH_ITEMS"
	PushTotal     = "PUSH_TOTAL"
	PushMessage   = "PUSH_MESSAGE"
)

type pushEnvelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type pushDatePayload struct {
	Value string `json:"value"`
}

type pushSuppliersPayload struct {
	SelectedIDs []int64 `json:"selectedIds"`
}

type pushItemsPayload struct {
	Items []draft.LineItem `json:"items"`
}

type pushTotalPayload struct {
	Total float64 `json:"total"`
}

type pushMessagePayload struct {
	Message string `json:"message"`
}

// sendPush encodes and queues one frame on the attached surface. A closed or
// congested surface drops the frame; that is logged and counted, never
// retried, and never stops later pushes.
func (s *Session) sendPush(kind string, payload any) {
	if s.surface == nil || !s.surface.Alive() {
		return
	}
	data, err := json.Marshal(pushEnvelope{Type: kind, Payload: payload})
	if err != nil {
		s.logger.Error("encode push", slog.String("kind", kind), slog.Any("error", err))
		return
	}
	if err := s.surface.Push(data); err != nil {
		s.logger.Debug("push dropped", slog.String("kind", kind), slog.Any("error", err))
		if s.recorder != nil {
			s.recorder.MessageDropped("push_" + kind)
		}
		return
	}
	if s.recorder != nil {
		s.recorder.PushSent(kind)
	}
}

// pushDate updates the surface's date field, skipping while that field holds
// input focus or already shows the value.
func (s *Session) pushDate() {
	if s.surface == nil || !s.surface.Alive() {
		return
	}
	if s.dateFocused {
		return
	}
	value := s.store.Snapshot().Date
	if s.datePushed && value == s.lastPushedDate {
		return
	}
	s.sendPush(PushDate, pushDatePayload{Value: value})
	s.lastPushedDate = value
	s.datePushed = true
}

func (s *Session) pushSuppliers() {
	s.sendPush(PushSuppliers, pushSuppliersPayload{SelectedIDs: SelectedSupplierIDs(s.store.Snapshot())})
}

// pushItems replaces only the item region, keyed by line id, and refreshes
// the dependent total display.
func (s *Session) pushItems() {
	s.sendPush(PushItems, pushItemsPayload{Items: s.store.Snapshot().Items})
	s.sendPush(PushTotal, pushTotalPayload{Total: s.store.ComputeTotal()})
}

func (s *Session) pushMessage() {
	s.sendPush(PushMessage, pushMessagePayload{Message: s.message})
}

// pushAll performs the full data push: the deferred one after attach, and the
// refresh after a successful submission reset.
func (s *Session) pushAll() {
	s.pushSuppliers()
	s.pushItems()
	s.pushDate()
	s.pushMessage()
}
