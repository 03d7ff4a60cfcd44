package flows

// IRRPerUSDT is the fixed conversion heuristic used to derive USDT estimates
// from IRR prices. It drifts from real exchange rates; the backend stores the
// derived value as an estimate only.
const IRRPerUSDT = 600000

// EstimateUSDT derives the USDT price estimate for an IRR price.
func EstimateUSDT(priceIRR float64) float64 {
	return priceIRR / IRRPerUSDT
}
