package flows

import "testing"

func TestFormatIRR(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		expected string
	}{
		{name: "zero", amount: 0, expected: "0"},
		{name: "under a thousand", amount: 950, expected: "950"},
		{name: "exact thousand", amount: 1000, expected: "1,000"},
		{name: "typical plan price", amount: 150000, expected: "150,000"},
		{name: "millions", amount: 2500000, expected: "2,500,000"},
		{name: "negative", amount: -150000, expected: "-150,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatIRR(tt.amount); got != tt.expected {
				t.Errorf("FormatIRR(%d) = %q, want %q", tt.amount, got, tt.expected)
			}
		})
	}
}

func TestFormatToman(t *testing.T) {
	tests := []struct {
		name      string
		amountIRR int64
		expected  string
	}{
		{name: "typical plan price", amountIRR: 150000, expected: "15,000"},
		{name: "rounds down", amountIRR: 1509, expected: "150"},
		{name: "millions", amountIRR: 25000000, expected: "2,500,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatToman(tt.amountIRR); got != tt.expected {
				t.Errorf("FormatToman(%d) = %q, want %q", tt.amountIRR, got, tt.expected)
			}
		})
	}
}

func TestEstimateUSDT(t *testing.T) {
	tests := []struct {
		name     string
		priceIRR float64
		expected float64
	}{
		{name: "quarter", priceIRR: 150000, expected: 0.25},
		{name: "one", priceIRR: 600000, expected: 1},
		{name: "zero", priceIRR: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateUSDT(tt.priceIRR); got != tt.expected {
				t.Errorf("EstimateUSDT(%v) = %v, want %v", tt.priceIRR, got, tt.expected)
			}
		})
	}
}
