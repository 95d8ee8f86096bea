package scorer

import (
	"strings"

	"github.com/jonreiter/govader"
)

// Vader scores text with the VADER compound score, a normalized polarity
// already in [-1, 1].
type Vader struct {
	compound func(text string) float64
}

func NewVader() *Vader {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	return &Vader{compound: func(text string) float64 {
		return analyzer.PolarityScores(text).Compound
	}}
}

// Polarity implements Polarity. Blank text is neutral.
func (v *Vader) Polarity(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return v.compound(text), nil
}
