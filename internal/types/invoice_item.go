package types

import (
	"fmt"

	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// InvoiceItemKind is the tagged variant discriminating invoice line
// items. Kind specific data lives in InvoiceItemPayload; there is one
// description dispatch instead of per subtype overrides.
type InvoiceItemKind string

const (
	InvoiceItemFixed          InvoiceItemKind = "fixed"
	InvoiceItemRecurring      InvoiceItemKind = "recurring"
	InvoiceItemUsage          InvoiceItemKind = "usage"
	InvoiceItemTax            InvoiceItemKind = "tax"
	InvoiceItemCreditAdj      InvoiceItemKind = "credit_adj"
	InvoiceItemItemAdj        InvoiceItemKind = "item_adj"
	InvoiceItemRepair         InvoiceItemKind = "repair"
	InvoiceItemExternalCharge InvoiceItemKind = "external_charge"
	InvoiceItemParentSummary  InvoiceItemKind = "parent_summary"
)

var InvoiceItemKindValues = []InvoiceItemKind{
	InvoiceItemFixed,
	InvoiceItemRecurring,
	InvoiceItemUsage,
	InvoiceItemTax,
	InvoiceItemCreditAdj,
	InvoiceItemItemAdj,
	InvoiceItemRepair,
	InvoiceItemExternalCharge,
	InvoiceItemParentSummary,
}

func (k InvoiceItemKind) String() string {
	return string(k)
}

func (k InvoiceItemKind) Validate() error {
	if !lo.Contains(InvoiceItemKindValues, k) {
		return ierr.NewError("invalid invoice item kind").
			WithHint("Invalid invoice item kind").
			WithReportableDetails(map[string]any{
				"kind":           k,
				"allowed_values": InvoiceItemKindValues,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceItemPayload carries the kind specific fields of an invoice
// line item. PlanPrettyName and PhasePrettyName are optional catalog
// resolutions; the raw names are used when they are absent.
type InvoiceItemPayload struct {
	PlanName        string          `json:"plan_name,omitempty"`
	PlanPrettyName  string          `json:"plan_pretty_name,omitempty"`
	PhaseName       string          `json:"phase_name,omitempty"`
	PhasePrettyName string          `json:"phase_pretty_name,omitempty"`
	UsageName       string          `json:"usage_name,omitempty"`
	TaxName         string          `json:"tax_name,omitempty"`
	ChargeLabel     string          `json:"charge_label,omitempty"`
	ChildAccountID  string          `json:"child_account_id,omitempty"`
	CycleCount      decimal.Decimal `json:"cycle_count,omitempty"`
}

// DescribeInvoiceItem computes the human readable description for one
// invoice line item kind and payload.
func DescribeInvoiceItem(kind InvoiceItemKind, payload InvoiceItemPayload) string {
	planName := payload.PlanName
	if payload.PlanPrettyName != "" {
		planName = payload.PlanPrettyName
	}
	phaseName := payload.PhaseName
	if payload.PhasePrettyName != "" {
		phaseName = payload.PhasePrettyName
	}

	switch kind {
	case InvoiceItemFixed:
		if phaseName != "" {
			return fmt.Sprintf("%s (%s) fixed charge", planName, phaseName)
		}
		return fmt.Sprintf("%s fixed charge", planName)
	case InvoiceItemRecurring:
		label := "recurring"
		if payload.CycleCount.LessThan(decimal.NewFromInt(1)) && payload.CycleCount.GreaterThan(decimal.Zero) {
			label = "prorated"
		}
		if phaseName != "" {
			return fmt.Sprintf("%s (%s) %s charge", planName, phaseName, label)
		}
		return fmt.Sprintf("%s %s charge", planName, label)
	case InvoiceItemUsage:
		return fmt.Sprintf("%s usage charge (%s)", planName, payload.UsageName)
	case InvoiceItemTax:
		if payload.TaxName != "" {
			return payload.TaxName
		}
		return "Tax"
	case InvoiceItemCreditAdj:
		return "Invoice level credit adjustment"
	case InvoiceItemItemAdj:
		return "Invoice item adjustment"
	case InvoiceItemRepair:
		return "Adjustment (subscription timeline repair)"
	case InvoiceItemExternalCharge:
		if payload.ChargeLabel != "" {
			return payload.ChargeLabel
		}
		return "External charge"
	case InvoiceItemParentSummary:
		return fmt.Sprintf("Summary for account %s", payload.ChildAccountID)
	default:
		return string(kind)
	}
}
