package taxonomy

import (
	"fmt"

	"github.com/floworx/triage-agent/internal/types"
)

// Supported industries. "generic" is the fallback for businesses outside
// the named trades.
const (
	IndustryHotTubSpa   = "hot_tub_spa"
	IndustryHVAC        = "hvac"
	IndustryPlumbing    = "plumbing"
	IndustryElectrician = "electrician"
	IndustryGeneric     = "generic"
)

// industrySupportExtras adds trade-specific support subcategories on top of
// the common base tree.
var industrySupportExtras = map[string][]string{
	IndustryHotTubSpa:   {"Water Care", "Cover & Parts"},
	IndustryHVAC:        {"Maintenance Plan", "Seasonal Tune-up"},
	IndustryPlumbing:    {"Emergency Callout"},
	IndustryElectrician: {"Inspection"},
	IndustryGeneric:     nil,
}

// Generate builds the label taxonomy for one business: the industry base
// tree plus one dynamic branch per manager and per supplier, plus any custom
// categories. The result is deterministic for identical inputs; provisioning
// relies on that to be idempotent.
func Generate(industry string, team *types.Team, custom []string) (*types.Taxonomy, error) {
	extras, ok := industrySupportExtras[industry]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndustry, industry)
	}

	root := &types.CategoryNode{Name: RootName}

	urgent := ensureChild(root, "Urgent")
	urgent.Color = ColorRed

	sales := ensureChild(root, "Sales")
	sales.Color = ColorGreen
	ensureChild(sales, "New Inquiry")
	ensureChild(sales, "Quote Follow-up")

	support := ensureChild(root, "Support")
	support.Color = ColorBlue
	ensureChild(support, "Service Request")
	ensureChild(support, "Warranty")
	for _, name := range extras {
		ensureChild(support, name)
	}

	billing := ensureChild(root, "Billing")
	billing.Color = ColorYellow
	ensureChild(billing, "Invoices")
	ensureChild(billing, "Payments")

	managers := ensureChild(root, "Managers")
	managers.Color = ColorPurple
	suppliers := ensureChild(root, "Suppliers")
	suppliers.Color = ColorOrange

	misc := ensureChild(root, "Misc")
	misc.Color = ColorGray

	if team != nil {
		for _, m := range team.Managers {
			node := ensureChild(managers, m.Name)
			node.Dynamic = true
			node.Color = ColorPurple
		}
		for _, s := range team.Suppliers {
			node := ensureChild(suppliers, s.Name)
			node.Dynamic = true
			node.Color = ColorOrange
		}
		sortDynamic(managers)
		sortDynamic(suppliers)
	}

	tax := &types.Taxonomy{Industry: industry, Root: root}
	if err := MergeCustom(tax, custom); err != nil {
		return nil, err
	}

	return tax, nil
}

// ManagerCategory returns the label path for a manager's branch.
func ManagerCategory(name string) string {
	return RootName + "/Managers/" + name
}

// SupplierCategory returns the label path for a supplier's branch.
func SupplierCategory(name string) string {
	return RootName + "/Suppliers/" + name
}
