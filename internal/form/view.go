package form

import (
	"github.com/retailops/formdesk/internal/chrome"
	"github.com/retailops/formdesk/internal/draft"
	"github.com/retailops/formdesk/internal/masterdata"
)

// RoleManager gets the request wording instead of the register wording.
const RoleManager = "Encargado"

// SupplierOption is one supplier control with its selected state.
type SupplierOption struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

// ViewModel is the single projection of a form session shared by both
// presentations: the embedded view renders it directly, the detached adapter
// derives its push frames from the same projection.
type ViewModel struct {
	Title       string           `json:"title"`
	SubmitLabel string           `json:"submitLabel"`
	Date        string           `json:"date"`
	Suppliers   []SupplierOption `json:"suppliers"`
	Products    []draft.Product  `json:"products"`
	Items       []draft.LineItem `json:"items"`
	Total       float64          `json:"total"`
	Message     string           `json:"message,omitempty"`
	Detached    bool             `json:"detached"`
	Chrome      *chrome.Frame    `json:"chrome,omitempty"`
}

// Project derives the view model from the draft and reference data.
func Project(d draft.PurchaseDraft, suppliers []masterdata.Supplier, products []draft.Product, role, message string) ViewModel {
	selected := make(map[int64]struct{}, len(d.SelectedSuppliers))
	for _, ref := range d.SelectedSuppliers {
		selected[ref.ID] = struct{}{}
	}
	options := make([]SupplierOption, 0, len(suppliers))
	for _, s := range suppliers {
		_, ok := selected[s.ID]
		options = append(options, SupplierOption{ID: s.ID, Name: s.Name, Selected: ok})
	}

	var total float64
	for _, item := range d.Items {
		total += item.Total
	}

	vm := ViewModel{
		Title:       "Registrar Nueva Compra",
		SubmitLabel: "Registrar Compra",
		Date:        d.Date,
		Suppliers:   options,
		Products:    products,
		Items:       d.Items,
		Total:       total,
		Message:     message,
	}
	if role == RoleManager {
		vm.Title = "Solicitar Nueva Compra"
		vm.SubmitLabel = "Enviar Solicitud"
	}
	return vm
}

// SelectedSupplierIDs lists the ids of the current selection, in selection
// order, for the suppliers push.
func SelectedSupplierIDs(d draft.PurchaseDraft) []int64 {
	ids := make([]int64, 0, len(d.SelectedSuppliers))
	for _, ref := range d.SelectedSuppliers {
		ids = append(ids, ref.ID)
	}
	return ids
}
