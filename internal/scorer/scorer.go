// Package scorer turns feedback text into a polarity score in [-1, 1].
//
// The polarity function is pluggable. Whatever it does, Score never fails:
// an error, a panic or a non finite result is logged and scored as 0.
package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"feedtrend/internal/core"
)

// Polarity analyzes a text and returns its raw polarity.
type Polarity interface {
	Polarity(text string) (float64, error)
}

// PolarityFunc adapts a plain function to Polarity.
type PolarityFunc func(text string) (float64, error)

func (f PolarityFunc) Polarity(text string) (float64, error) {
	return f(text)
}

type Scorer struct {
	polarity Polarity
	logger   *slog.Logger
}

// New returns a scorer backed by p. A nil p uses VADER.
func New(p Polarity, logger *slog.Logger) *Scorer {
	if p == nil {
		p = NewVader()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{polarity: p, logger: logger}
}

// Score returns the polarity of text clamped to [-1, 1], or 0 on failure.
func (s *Scorer) Score(ctx context.Context, text string) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.DebugContext(ctx, "Polarity panicked, scoring as neutral", "panic", fmt.Sprint(r))
			score = 0
		}
	}()

	p, err := s.polarity.Polarity(text)
	if err != nil {
		s.logger.DebugContext(ctx, "Polarity failed, scoring as neutral", "error", err)
		return 0
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		s.logger.DebugContext(ctx, "Polarity not finite, scoring as neutral", "value", p)
		return 0
	}
	return clamp(p)
}

// Record scores text and builds the labeled record.
func (s *Scorer) Record(ctx context.Context, text string, fields map[string]string) core.Record {
	return core.NewRecord(text, s.Score(ctx, text), fields)
}

// Label is the threshold classification of a score.
func Label(score float64) core.Label {
	return core.LabelFor(score)
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
