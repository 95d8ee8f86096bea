package scorer

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// negationFactor is applied to a sentiment word preceded by a negation, so
// "not good" is mildly negative rather than the mirror of "good".
const negationFactor = -0.5

var builtinPolarity = map[string]float64{
	// positive
	"amazing":      0.6,
	"awesome":      1.0,
	"best":         1.0,
	"brilliant":    0.9,
	"clean":        0.37,
	"decent":       0.17,
	"delicious":    1.0,
	"easy":         0.43,
	"excellent":    1.0,
	"fantastic":    0.4,
	"fast":         0.2,
	"fine":         0.42,
	"friendly":     0.375,
	"good":         0.7,
	"great":        0.8,
	"happy":        0.8,
	"helpful":      0.5,
	"impressive":   1.0,
	"love":         0.5,
	"loved":        0.7,
	"nice":         0.6,
	"outstanding":  0.5,
	"perfect":      1.0,
	"pleasant":     0.73,
	"polite":       0.5,
	"quick":        0.33,
	"satisfied":    0.5,
	"smooth":       0.4,
	"superb":       1.0,
	"wonderful":    1.0,
	"recommended":  0.3,
	"professional": 0.1,

	// negative
	"angry":         -0.5,
	"annoying":      -0.8,
	"awful":         -1.0,
	"bad":           -0.7,
	"boring":        -1.0,
	"broken":        -0.4,
	"cold":          -0.6,
	"confusing":     -0.3,
	"disappointed":  -0.75,
	"disappointing": -0.6,
	"dirty":         -0.6,
	"expensive":     -0.5,
	"frustrating":   -0.4,
	"hate":          -0.8,
	"horrible":      -1.0,
	"late":          -0.3,
	"poor":          -0.4,
	"rude":          -0.3,
	"sad":           -0.5,
	"slow":          -0.3,
	"terrible":      -1.0,
	"unacceptable":  -0.8,
	"unhelpful":     -0.5,
	"useless":       -0.5,
	"worst":         -1.0,
	"wrong":         -0.5,
}

var intensifiers = map[string]float64{
	"absolutely": 1.5,
	"extremely":  1.5,
	"incredibly": 1.5,
	"really":     1.3,
	"so":         1.3,
	"super":      1.3,
	"too":        1.3,
	"very":       1.3,
	"quite":      1.1,
	"pretty":     1.1,
	"slightly":   0.6,
	"somewhat":   0.7,
}

var negations = map[string]struct{}{
	"not":     {},
	"no":      {},
	"never":   {},
	"hardly":  {},
	"without": {},
}

// Lexicon is a word-list polarity analyzer. The score of a text is the mean
// polarity of its sentiment words after intensifier and negation modifiers.
type Lexicon struct {
	words map[string]float64
}

// NewLexicon returns the built-in lexicon extended (and overridden) by extra.
func NewLexicon(extra map[string]float64) *Lexicon {
	words := make(map[string]float64, len(builtinPolarity)+len(extra))
	for w, p := range builtinPolarity {
		words[w] = p
	}
	for w, p := range extra {
		words[strings.ToLower(strings.TrimSpace(w))] = p
	}
	return &Lexicon{words: words}
}

// Polarity implements Polarity.
func (l *Lexicon) Polarity(text string) (float64, error) {
	var (
		sum, n    float64
		intensity = 1.0
		negate    bool
	)
	for _, tok := range tokenize(text) {
		if strings.HasSuffix(tok, "n't") {
			negate = true
			continue
		}
		if _, ok := negations[tok]; ok {
			negate = true
			continue
		}
		if m, ok := intensifiers[tok]; ok {
			intensity *= m
			continue
		}
		p, ok := l.words[tok]
		if !ok {
			intensity, negate = 1, false
			continue
		}
		p *= intensity
		if negate {
			p *= negationFactor
		}
		sum += p
		n++
		intensity, negate = 1, false
	}
	if n == 0 {
		return 0, nil
	}
	return math.Max(-1, math.Min(1, sum/n)), nil
}

// Size returns the number of sentiment words known to the lexicon.
func (l *Lexicon) Size() int {
	return len(l.words)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

// LoadLexiconFile reads "word<TAB>polarity" lines. Blank lines and lines
// starting with # are skipped. Whitespace other than a tab also separates
// the two fields.
func LoadLexiconFile(path string) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lexicon file: %w", err)
	}
	defer f.Close()

	out := make(map[string]float64)
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("lexicon line %d: want 2 fields, got %d", lineNo, len(fields))
		}
		p, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("lexicon line %d: parse polarity: %w", lineNo, err)
		}
		if p < -1 || p > 1 {
			return nil, fmt.Errorf("lexicon line %d: polarity %v out of range [-1, 1]", lineNo, p)
		}
		out[strings.ToLower(fields[0])] = p
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon file: %w", err)
	}
	return out, nil
}
