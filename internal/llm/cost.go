package llm

// Rates price oracle tokens in INR per thousand. Classification runs on a
// heavier model than extraction, hence the separate tariffs.
type Rates struct {
	InputPerK  float64
	OutputPerK float64
}

var (
	ClassifyRates = Rates{InputPerK: 0.05, OutputPerK: 0.15}
	ExtractRates  = Rates{InputPerK: 0.0125, OutputPerK: 0.05}
)

// Cost converts a usage report into rupees.
func (r Rates) Cost(u Usage) float64 {
	return float64(u.PromptTokens)/1000*r.InputPerK + float64(u.CompletionTokens)/1000*r.OutputPerK
}
