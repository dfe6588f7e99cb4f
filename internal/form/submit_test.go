package form

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/retailops/formdesk/internal/draft"
)

func validDraft() draft.PurchaseDraft {
	return draft.PurchaseDraft{
		Date: "2025-03-01",
		SelectedSuppliers: []draft.SupplierRef{
			{ID: 1, Name: "Distribuidora Sur"},
		},
		Items: []draft.LineItem{
			{ID: 1, ProductName: "Harina", Quantity: 2, Unit: draft.UnitKilogram, UnitPrice: 2.5, Total: 5},
		},
	}
}

func TestValidateDraftPasses(t *testing.T) {
	require.Nil(t, ValidateDraft(validDraft()))
}

func TestValidateDraftChecksInOrder(t *testing.T) {
	// Everything is missing: the date check fires first.
	verr := ValidateDraft(draft.PurchaseDraft{})
	require.NotNil(t, verr)
	require.Equal(t, CodeMissingDate, verr.Code)

	d := draft.PurchaseDraft{Date: "2025-03-01"}
	verr = ValidateDraft(d)
	require.NotNil(t, verr)
	require.Equal(t, CodeMissingSupplier, verr.Code)

	d.SelectedSuppliers = []draft.SupplierRef{{ID: 1, Name: "Distribuidora Sur"}}
	verr = ValidateDraft(d)
	require.NotNil(t, verr)
	require.Equal(t, CodeMissingItems, verr.Code)

	d.Items = []draft.LineItem{{ID: 1}}
	verr = ValidateDraft(d)
	require.NotNil(t, verr)
	require.Equal(t, CodeInvalidItem, verr.Code)
}

func TestValidateDraftRejectsIncompleteLine(t *testing.T) {
	d := validDraft()
	d.Items = append(d.Items, draft.LineItem{ID: 2, ProductName: "Leche", Quantity: 0})
	verr := ValidateDraft(d)
	require.NotNil(t, verr)
	require.Equal(t, CodeInvalidItem, verr.Code)

	d.Items[1].Quantity = 3
	d.Items[1].ProductName = ""
	verr = ValidateDraft(d)
	require.NotNil(t, verr)
	require.Equal(t, CodeInvalidItem, verr.Code)
}

func TestBuildSubmission(t *testing.T) {
	d := validDraft()
	d.Items = append(d.Items, draft.LineItem{ID: 2, ProductName: "Leche", Quantity: 3, Unit: draft.UnitLiter, UnitPrice: 1.2, Total: 3.6})
	d.SelectedSuppliers = append(d.SelectedSuppliers, draft.SupplierRef{ID: 4, Name: "Lácteos Norte"})

	sub := BuildSubmission(d)
	require.Equal(t, "2025-03-01", sub.Date)
	require.Equal(t, []int64{1, 4}, sub.SupplierIDs)
	require.Len(t, sub.Items, 2)
	require.InDelta(t, 8.6, sub.TotalAmount, 1e-9)
	require.Equal(t, draft.UnitLiter, sub.Items[1].Unit)
}

func TestValidationErrorMessageIsUserFacing(t *testing.T) {
	verr := ValidateDraft(draft.PurchaseDraft{})
	require.Equal(t, "Por favor, ingrese una fecha.", verr.Message)
	require.Contains(t, verr.Error(), string(CodeMissingDate))
}
