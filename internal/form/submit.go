package form

import (
	"context"

	"github.com/retailops/formdesk/internal/draft"
)

// ValidationCode identifies which gate check failed.
type ValidationCode string

const (
	CodeMissingDate     ValidationCode = "MISSING_DATE"
	CodeMissingSupplier ValidationCode = "MISSING_SUPPLIER"
	CodeMissingItems    ValidationCode = "MISSING_ITEMS"
	CodeInvalidItem     ValidationCode = "INVALID_ITEM"
)

// User-facing messages shown inline on the form.
const (
	msgMissingDate     = "Por favor, ingrese una fecha."
	msgMissingSupplier = "Por favor, seleccione al menos un proveedor."
	msgMissingItems    = "Por favor, agregue al menos un producto."
	msgInvalidItem     = "Por favor, complete todos los productos y cantidades."
	msgSubmitFailed    = "No se pudo registrar la compra. Intente nuevamente."
)

// ValidationError is a non-fatal gate failure; the draft stays editable.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ValidateDraft runs the gate checks in fixed order, short-circuiting at the
// first failure.
func ValidateDraft(d draft.PurchaseDraft) *ValidationError {
	if d.Date == "" {
		return &ValidationError{Code: CodeMissingDate, Message: msgMissingDate}
	}
	if len(d.SelectedSuppliers) == 0 {
		return &ValidationError{Code: CodeMissingSupplier, Message: msgMissingSupplier}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Code: CodeMissingItems, Message: msgMissingItems}
	}
	for _, item := range d.Items {
		if item.ProductName == "" || item.Quantity <= 0 {
			return &ValidationError{Code: CodeInvalidItem, Message: msgInvalidItem}
		}
	}
	return nil
}

// SubmissionItem is one normalized purchase line.
type SubmissionItem struct {
	ProductName string     `json:"productName"`
	Quantity    float64    `json:"quantity"`
	Unit        draft.Unit `json:"unit"`
	UnitPrice   float64    `json:"unitPrice"`
	Total       float64    `json:"total"`
	IsExisting  bool       `json:"isExisting"`
}

// PurchaseSubmission is the validated payload handed to the submission
// collaborator.
type PurchaseSubmission struct {
	Date        string           `json:"date"`
	SupplierIDs []int64          `json:"supplierIds"`
	Items       []SubmissionItem `json:"items"`
	TotalAmount float64          `json:"totalAmount"`
}

// BuildSubmission normalizes a validated draft.
func BuildSubmission(d draft.PurchaseDraft) PurchaseSubmission {
	sub := PurchaseSubmission{
		Date:        d.Date,
		SupplierIDs: SelectedSupplierIDs(d),
		Items:       make([]SubmissionItem, 0, len(d.Items)),
	}
	for _, item := range d.Items {
		sub.Items = append(sub.Items, SubmissionItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			IsExisting:  item.IsExisting,
		})
		sub.TotalAmount += item.Total
	}
	return sub
}

// Submitter receives accepted submissions. Implementations live outside the
// form core; the production one enqueues a background task.
type Submitter interface {
	SubmitPurchase(ctx context.Context, sub PurchaseSubmission) error
}
