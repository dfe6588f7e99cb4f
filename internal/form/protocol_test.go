package form

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeMessageSetDate(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"SET_DATE","payload":{"value":"2025-03-01"}}`))
	require.NoError(t, err)
	require.Equal(t, MsgSetDate, msg.Type)
	require.NotNil(t, msg.SetDate)
	require.Equal(t, "2025-03-01", msg.SetDate.Value)
}

func TestDecodeMessageToggleSupplier(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"TOGGLE_SUPPLIER","payload":{"supplierId":3,"isChecked":true}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.ToggleSupplier)
	require.Equal(t, int64(3), msg.ToggleSupplier.SupplierID)
	require.True(t, msg.ToggleSupplier.IsChecked)
}

func TestDecodeMessageUpdateItem(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"UPDATE_ITEM","payload":{"itemId":2,"updates":{"quantity":"4","productName":"Harina"}}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.UpdateItem)
	require.Equal(t, int64(2), msg.UpdateItem.ItemID)
	require.Len(t, msg.UpdateItem.Updates, 2)
}

func TestDecodeMessageAddItemsCoercesCount(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"ADD_ITEMS","payload":{"count":"3"}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.AddItems)
	require.Equal(t, "3", msg.AddItems.Count)
}

func TestDecodeMessageBareTypes(t *testing.T) {
	for _, typ := range []string{MsgSubmit, MsgClose} {
		msg, err := DecodeMessage([]byte(`{"type":"` + typ + `"}`))
		require.NoError(t, err)
		require.Equal(t, typ, msg.Type)
	}
}

func TestDecodeMessageFieldFocus(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"type":"FIELD_FOCUS","payload":{"field":"date","focused":true}}`))
	require.NoError(t, err)
	require.NotNil(t, msg.FieldFocus)
	require.Equal(t, "date", msg.FieldFocus.Field)
	require.True(t, msg.FieldFocus.Focused)
}

func TestDecodeMessageRejectsUnknownType(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"NAVIGATE","payload":{}}`))
	require.Error(t, err)
}

func TestDecodeMessageRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":`))
	require.Error(t, err)
}

func TestDecodeMessageRejectsInvalidPayload(t *testing.T) {
	// Missing required supplierId.
	_, err := DecodeMessage([]byte(`{"type":"TOGGLE_SUPPLIER","payload":{"isChecked":true}}`))
	require.Error(t, err)

	// Missing required updates map.
	_, err = DecodeMessage([]byte(`{"type":"UPDATE_ITEM","payload":{"itemId":1}}`))
	require.Error(t, err)
}

func TestDecodeMessageRejectsPayloadTypeMismatch(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"REMOVE_ITEM","payload":{"itemId":"two"}}`))
	require.Error(t, err)
}
