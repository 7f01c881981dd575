package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInvoiceItemKindValidate(t *testing.T) {
	for _, kind := range InvoiceItemKindValues {
		assert.NoError(t, kind.Validate())
	}
	assert.Error(t, InvoiceItemKind("discount").Validate())
	assert.Error(t, InvoiceItemKind("").Validate())
}

func TestDescribeInvoiceItem(t *testing.T) {
	tests := []struct {
		name     string
		kind     InvoiceItemKind
		payload  InvoiceItemPayload
		expected string
	}{
		{
			name: "fixed_with_phase",
			kind: InvoiceItemFixed,
			payload: InvoiceItemPayload{
				PlanName:  "gold-monthly",
				PhaseName: "gold-monthly-evergreen",
			},
			expected: "gold-monthly (gold-monthly-evergreen) fixed charge",
		},
		{
			name:     "fixed_without_phase",
			kind:     InvoiceItemFixed,
			payload:  InvoiceItemPayload{PlanName: "gold-monthly"},
			expected: "gold-monthly fixed charge",
		},
		{
			name: "pretty_names_win_over_raw",
			kind: InvoiceItemRecurring,
			payload: InvoiceItemPayload{
				PlanName:        "gold-monthly",
				PlanPrettyName:  "Gold Monthly",
				PhaseName:       "gold-monthly-evergreen",
				PhasePrettyName: "Evergreen",
				CycleCount:      decimal.NewFromInt(1),
			},
			expected: "Gold Monthly (Evergreen) recurring charge",
		},
		{
			name: "fractional_cycle_is_prorated",
			kind: InvoiceItemRecurring,
			payload: InvoiceItemPayload{
				PlanName:   "gold-monthly",
				PhaseName:  "evergreen",
				CycleCount: decimal.NewFromFloat(0.5),
			},
			expected: "gold-monthly (evergreen) prorated charge",
		},
		{
			name: "usage",
			kind: InvoiceItemUsage,
			payload: InvoiceItemPayload{
				PlanName:  "gold-monthly",
				UsageName: "api-calls",
			},
			expected: "gold-monthly usage charge (api-calls)",
		},
		{
			name:     "tax_named",
			kind:     InvoiceItemTax,
			payload:  InvoiceItemPayload{TaxName: "VAT 20%"},
			expected: "VAT 20%",
		},
		{
			name:     "tax_unnamed",
			kind:     InvoiceItemTax,
			expected: "Tax",
		},
		{
			name:     "credit_adjustment",
			kind:     InvoiceItemCreditAdj,
			expected: "Invoice level credit adjustment",
		},
		{
			name:     "repair",
			kind:     InvoiceItemRepair,
			expected: "Adjustment (subscription timeline repair)",
		},
		{
			name:     "external_charge_labelled",
			kind:     InvoiceItemExternalCharge,
			payload:  InvoiceItemPayload{ChargeLabel: "Setup fee"},
			expected: "Setup fee",
		},
		{
			name:     "external_charge_unlabelled",
			kind:     InvoiceItemExternalCharge,
			expected: "External charge",
		},
		{
			name:     "parent_summary",
			kind:     InvoiceItemParentSummary,
			payload:  InvoiceItemPayload{ChildAccountID: "acct_child_1"},
			expected: "Summary for account acct_child_1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescribeInvoiceItem(tt.kind, tt.payload))
		})
	}
}
