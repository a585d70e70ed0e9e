// Package imaging provides the condition-estimation capability. The real
// platform plugs a trained classifier in behind Estimator; this package ships
// a filename-heuristic stand-in so the rest of the pipeline is exercisable
// without a model.
package imaging

import (
	"context"
	"hash/fnv"
	"math/rand"
	"path/filepath"
	"strings"
)

// Severity hint buckets.
const (
	SeverityMild        = "mild"
	SeverityModerate    = "moderate"
	SeveritySevere      = "severe"
	SeverityNotAssessed = "not_assessed"
)

// Condition labels the stub classifier knows about.
const (
	ConditionPneumonia    = "pneumonia"
	ConditionCovidSuspect = "covid_suspect"
	ConditionNormal       = "normal"
)

// Estimate is a probability distribution over condition labels plus a coarse
// severity hint. Labels preserves the insertion order of the distribution so
// argmax ties break deterministically on first-seen order.
type Estimate struct {
	Labels   []string           `json:"labels,omitempty"`
	Probs    map[string]float64 `json:"condition_probs,omitempty"`
	Severity string             `json:"severity_hint"`
}

// Empty reports whether no distribution was produced (no-image case).
func (e Estimate) Empty() bool {
	return len(e.Probs) == 0
}

// Top returns the highest-probability label. Ties resolve to the label that
// appears first in Labels.
func (e Estimate) Top() (string, float64) {
	var top string
	var best float64
	for _, label := range e.Labels {
		p := e.Probs[label]
		if top == "" || p > best {
			top = label
			best = p
		}
	}
	return top, best
}

// MaxConfidence returns the highest probability in the distribution, or 0.0
// when the distribution is empty.
func (e Estimate) MaxConfidence() float64 {
	_, best := e.Top()
	return best
}

// Estimator scores an uploaded scan image. Implementations must treat
// imageRef as opaque.
type Estimator interface {
	Estimate(ctx context.Context, imageRef string) (Estimate, error)
}

// FilenameEstimator is the demo classifier: it keys off keywords in the image
// filename for predictable output, and falls back to a distribution seeded
// from the filename hash so repeated calls stay deterministic.
type FilenameEstimator struct{}

// NewFilenameEstimator returns the stub classifier.
func NewFilenameEstimator() *FilenameEstimator {
	return &FilenameEstimator{}
}

// Estimate implements Estimator.
func (f *FilenameEstimator) Estimate(ctx context.Context, imageRef string) (Estimate, error) {
	if imageRef == "" {
		return Estimate{Severity: SeverityNotAssessed}, nil
	}

	name := strings.ToLower(filepath.Base(imageRef))

	switch {
	case strings.Contains(name, "pneumonia"):
		severity := SeverityModerate
		if strings.Contains(name, "severe") {
			severity = SeveritySevere
		}
		return distribution(0.85, 0.10, 0.05, severity), nil
	case strings.Contains(name, "covid"):
		severity := SeverityMild
		if strings.Contains(name, "moderate") {
			severity = SeverityModerate
		}
		return distribution(0.15, 0.20, 0.65, severity), nil
	case strings.Contains(name, "normal"):
		return distribution(0.05, 0.90, 0.05, SeverityMild), nil
	}

	// Unknown filename: pseudo-random distribution seeded from the name.
	h := fnv.New64a()
	h.Write([]byte(name))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vals := []float64{rng.Float64(), rng.Float64(), rng.Float64()}
	total := vals[0] + vals[1] + vals[2]

	pneumonia := round2(vals[0] / total)
	normal := round2(vals[1] / total)
	covid := round2(vals[2] / total)

	severity := SeverityMild
	if pneumonia > 0.65 {
		severity = SeveritySevere
	} else if pneumonia > 0.35 {
		severity = SeverityModerate
	}

	return distribution(pneumonia, normal, covid, severity), nil
}

func distribution(pneumonia, normal, covid float64, severity string) Estimate {
	return Estimate{
		Labels: []string{ConditionPneumonia, ConditionNormal, ConditionCovidSuspect},
		Probs: map[string]float64{
			ConditionPneumonia:    pneumonia,
			ConditionNormal:       normal,
			ConditionCovidSuspect: covid,
		},
		Severity: severity,
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
