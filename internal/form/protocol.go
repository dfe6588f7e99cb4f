// Package form hosts the purchase-form session core: the per-session actor
// owning the authoritative draft, the message protocol relayed by the
// detached surface, the differential push renderer and the submission gate.
package form

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/retailops/formdesk/internal/draft"
)

// Message kinds accepted from the secondary surface (and reused verbatim by
// the embedded presentation). The reverse direction uses push frames only.
const (
	MsgSetDate        = "SET_DATE"
	MsgSetSuppliers   = "SET_SUPPLIERS"
	MsgToggleSupplier = "TOGGLE_SUPPLIER"
	MsgSetItems       = "SET_ITEMS"
	MsgAddItems       = "ADD_ITEMS"
	MsgRemoveItem     = "REMOVE_ITEM"
	MsgUpdateItem     = "UPDATE_ITEM"
	MsgSubmit         = "SUBMIT"
	MsgClose          = "CLOSE"
	MsgFieldFocus     = "FIELD_FOCUS"
)

var validate = validator.New()

// Envelope is the wire form of an inbound message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SetDatePayload replaces the draft date.
type SetDatePayload struct {
	Value string `json:"value"`
}

// SetSuppliersPayload replaces the supplier selection wholesale.
type SetSuppliersPayload struct {
	Value []draft.SupplierRef `json:"value"`
}

// ToggleSupplierPayload flips one supplier selection.
type ToggleSupplierPayload struct {
	SupplierID int64 `json:"supplierId" validate:"required"`
	IsChecked  bool  `json:"isChecked"`
}

// SetItemsPayload replaces the line list wholesale.
type SetItemsPayload struct {
	Value []draft.LineItem `json:"value"`
}

// AddItemsPayload appends fresh lines. Count is left loosely typed on
// purpose: non-numeric input is coerced, never rejected.
type AddItemsPayload struct {
	Count any `json:"count"`
}

// RemoveItemPayload deletes one line.
type RemoveItemPayload struct {
	ItemID int64 `json:"itemId" validate:"required"`
}

// UpdateItemPayload applies a partial field update to one line.
type UpdateItemPayload struct {
	ItemID  int64          `json:"itemId" validate:"required"`
	Updates map[string]any `json:"updates" validate:"required"`
}

// FieldFocusPayload reports focus transitions of the secondary surface's
// inputs so date pushes never clobber in-progress typing.
type FieldFocusPayload struct {
	Field   string `json:"field" validate:"required"`
	Focused bool   `json:"focused"`
}

// Message is a decoded inbound message; exactly the field matching Type is
// populated.
type Message struct {
	Type           string
	SetDate        *SetDatePayload
	SetSuppliers   *SetSuppliersPayload
	ToggleSupplier *ToggleSupplierPayload
	SetItems       *SetItemsPayload
	AddItems       *AddItemsPayload
	RemoveItem     *RemoveItemPayload
	UpdateItem     *UpdateItemPayload
	FieldFocus     *FieldFocusPayload
}

// DecodeMessage parses and validates one wire frame. Errors mean the frame
// is dropped at the boundary; they never reach the draft.
func DecodeMessage(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, fmt.Errorf("form: decode envelope: %w", err)
	}
	return DecodeEnvelope(env)
}

// DecodeEnvelope validates an already-parsed envelope; the embedded
// presentation reuses the exact protocol of the detached surface.
func DecodeEnvelope(env Envelope) (Message, error) {
	msg := Message{Type: env.Type}
	var payload any
	switch env.Type {
	case MsgSetDate:
		msg.SetDate = &SetDatePayload{}
		payload = msg.SetDate
	case MsgSetSuppliers:
		msg.SetSuppliers = &SetSuppliersPayload{}
		payload = msg.SetSuppliers
	case MsgToggleSupplier:
		msg.ToggleSupplier = &ToggleSupplierPayload{}
		payload = msg.ToggleSupplier
	case MsgSetItems:
		msg.SetItems = &SetItemsPayload{}
		payload = msg.SetItems
	case MsgAddItems:
		msg.AddItems = &AddItemsPayload{}
		payload = msg.AddItems
	case MsgRemoveItem:
		msg.RemoveItem = &RemoveItemPayload{}
		payload = msg.RemoveItem
	case MsgUpdateItem:
		msg.UpdateItem = &UpdateItemPayload{}
		payload = msg.UpdateItem
	case MsgFieldFocus:
		msg.FieldFocus = &FieldFocusPayload{}
		payload = msg.FieldFocus
	case MsgSubmit, MsgClose:
		return msg, nil
	default:
		return Message{}, fmt.Errorf("form: unknown message type %q", env.Type)
	}
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return Message{}, fmt.Errorf("form: decode %s payload: %w", env.Type, err)
		}
	}
	if err := validate.Struct(payload); err != nil {
		return Message{}, fmt.Errorf("form: invalid %s payload: %w", env.Type, err)
	}
	return msg, nil
}
