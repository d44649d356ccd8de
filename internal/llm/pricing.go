package llm

import "math"

// Pricing is a linear price per 1000 tokens in USD.
type Pricing struct {
	Input  float64
	Output float64
}

// Cost prices a call, rounded to six decimal places.
func (p Pricing) Cost(tokensIn, tokensOut int) float64 {
	c := float64(tokensIn)/1000*p.Input + float64(tokensOut)/1000*p.Output
	return math.Round(c*1e6) / 1e6
}
