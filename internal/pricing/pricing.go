// Package pricing converts token counts into estimated USD costs using
// per-model price tables from configuration.
package pricing

import (
	"fmt"

	"techdocs/internal/port"
)

// EmbeddingCost estimates the cost of embedding numTokens tokens.
func EmbeddingCost(numTokens int, table port.ModelPricing) float64 {
	return float64(numTokens) / 1_000_000 * table.InputPer1M
}

// LLMCost estimates the cost of a chat completion from its input and
// output token counts.
func LLMCost(inputTokens, outputTokens int, table port.ModelPricing) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * table.InputPer1M
	outputCost := float64(outputTokens) / 1_000_000 * table.OutputPer1M
	return inputCost + outputCost
}

// FormatCost renders a cost with enough precision for sub-cent amounts.
func FormatCost(cost float64) string {
	return fmt.Sprintf("USD $%.8f", cost)
}
