package llm

import (
	"math"
	"unicode/utf8"
)

// costPer1K is the blended USD price per 1000 tokens for each provider
var costPer1K = map[string]float64{
	string(ProviderOpenAI):   0.0006,
	string(ProviderGemini):   0.0004,
	string(ProviderGroq):     0.0001,
	string(ProviderDeepSeek): 0.0011,
	string(ProviderClaude):   0.0040,
}

// RatePer1K returns the provider's rate, zero for unknown providers
func RatePer1K(provider string) float64 {
	return costPer1K[provider]
}

// EstimateTokens approximates usage as ceil(chars / 4)
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / 4))
}

// Cost returns tokens/1000 × the provider rate
func Cost(provider string, tokens int) float64 {
	return float64(tokens) / 1000 * RatePer1K(provider)
}
