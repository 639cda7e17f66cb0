package scorer

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lukasberglund/inspect-ai/pkg/core"
)

// NumericMatch scores responses by comparing the last number found in the
// target and the response, falling back to normalized text comparison when
// either side has no number.
type NumericMatch struct {
	Tolerance float64
}

func (n NumericMatch) Name() string {
	return "numeric"
}

func (n NumericMatch) Score(_ context.Context, sample core.Sample, response core.Response) (core.Score, error) {
	expectedNum, expectedRaw := lastNumber(sample.Target)
	actualNum, actualRaw := lastNumber(response.Content)

	passed := false
	if expectedRaw != "" && actualRaw != "" {
		tolerance := n.Tolerance
		if tolerance <= 0 {
			tolerance = 1e-6
		}
		passed = math.Abs(expectedNum-actualNum) <= tolerance
	} else {
		expected := normalizeText(sample.Target, false, true)
		actual := normalizeText(response.Content, false, true)
		passed = expected == actual
	}

	value := 0.0
	if passed {
		value = 1
	}
	return core.Score{Value: value, Max: 1, Passed: passed}, nil
}

var numberRegex = regexp.MustCompile(`[-+]?\d[\d,]*(?:\.\d+)?`)

func lastNumber(text string) (float64, string) {
	matches := numberRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0, ""
	}
	raw := matches[len(matches)-1]
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, ""
	}
	return value, raw
}
