// Package metrics derives session coherence metrics from interaction text
// and elapsed session time. The heuristics are deliberately simple keyword
// and frequency analyses; a few components are stochastic within fixed bands.
package metrics

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rcliao/coherence/internal/model"
)

// Phi is the golden ratio, (1+√5)/2, used as the weighting and periodicity
// constant throughout derived scores.
const Phi = math.Phi

// SentenceLengthNorm normalizes average sentence length into [0,1].
const SentenceLengthNorm = 20.0

// Defaults returns the fixed starting metrics assigned at session creation.
// These are constants, not derived values.
func Defaults() model.Metrics {
	return model.Metrics{
		NeuralComplexity:      0.5,
		BrainwaveCoherence:    0.6,
		AutonomicBalance:      0.5,
		ResponseLatency:       1000,
		InteractionPattern:    0.5,
		EmotionalDepth:        0.4,
		PatternRecognition:    0.5,
		SelfReflection:        0.4,
		Creativity:            0.5,
		Empathy:               0.5,
		Intentionality:        0.5,
		InteractionComplexity: 0.4,
		PhaseAlignment:        0.5,
		SpiralResonance:       0.5,
		ConsciousnessDepth:    0.3,
		AttentionFocus:        0.6,
		MemoryConsolidation:   0.5,
		InsightPotential:      0.4,
		TemporalBinding:       0.5,
		PresenceLevel:         0.6,
		Adaptability:          0.5,
	}
}

// keywordDim scores one lexical dimension: distinct keyword hits divided by
// norm (clamped to [0,1]), then mapped through base + raw*scale.
type keywordDim struct {
	field    string
	keywords []string
	norm     float64
	base     float64
	scale    float64
}

var keywordDims = []keywordDim{
	{"emotionalDepth", []string{"feel", "feeling", "heart", "soul", "emotion", "love", "fear", "joy", "grief", "longing"}, 4, 0.2, 0.8},
	{"patternRecognition", []string{"pattern", "cycle", "recurring", "connection", "structure", "mirror", "fractal"}, 3, 0.3, 0.7},
	{"selfReflection", []string{"myself", "aware", "awareness", "realize", "notice", "reflect", "introspect"}, 3, 0.25, 0.75},
	{"creativity", []string{"imagine", "create", "dream", "invent", "possibility", "wonder", "play"}, 3, 0.3, 0.6},
	{"empathy", []string{"you", "understand", "together", "share", "listen", "compassion", "care"}, 3, 0.35, 0.6},
	{"intentionality", []string{"will", "intend", "choose", "purpose", "goal", "commit", "decide"}, 3, 0.3, 0.65},
}

// Deriver computes text-derived metrics. The stochastic components draw from
// an injected random source so tests can pin a seed.
type Deriver struct {
	rng *rand.Rand
}

// NewDeriver returns a Deriver using the given random source; a nil source
// gets a time-seeded one.
func NewDeriver(rng *rand.Rand) *Deriver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Deriver{rng: rng}
}

// DeriveFromText maps free text to a partial metrics record. Only fields
// derivable from lexical content are present; callers merge over defaults.
// brainwaveCoherence, autonomicBalance, and interactionPattern are
// randomized within fixed bands and must be asserted by range, not value.
func (d *Deriver) DeriveFromText(text string) map[string]float64 {
	lowered := strings.ToLower(text)
	tokens := strings.Fields(lowered)

	out := make(map[string]float64, len(keywordDims)+5)
	for _, dim := range keywordDims {
		hits := 0
		for _, kw := range dim.keywords {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}
		raw := clamp01(float64(hits) / dim.norm)
		out[dim.field] = dim.base + raw*dim.scale
	}

	out["neuralComplexity"] = structuralComplexity(lowered, tokens)

	// Stochastic bands: designed variability, not derivation.
	out["brainwaveCoherence"] = 0.55 + d.rng.Float64()*0.35
	out["autonomicBalance"] = 0.45 + d.rng.Float64()*0.40
	out["interactionPattern"] = 0.50 + d.rng.Float64()*0.40

	// Simulated latency stand-in, proportional to length with a floor.
	latency := float64(len(tokens)) * 120
	if latency < 500 {
		latency = 500
	}
	out["responseLatency"] = latency

	return out
}

// structuralComplexity blends vocabulary diversity with length-normalized
// average sentence length.
func structuralComplexity(lowered string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		unique[t] = struct{}{}
	}
	diversity := float64(len(unique)) / float64(len(tokens))

	sentences := 0
	for _, r := range lowered {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	avgLen := float64(len(tokens)) / float64(sentences)

	return clamp01((diversity + math.Min(1, avgLen/SentenceLengthNorm)) / 2)
}

// InteractionComplexity scores a single user input's structural complexity.
// Pure in its input; used when a metrics update carries the raw text.
func InteractionComplexity(text string) float64 {
	lowered := strings.ToLower(text)
	return structuralComplexity(lowered, strings.Fields(lowered))
}

// DeriveTemporal maps elapsed session duration (milliseconds) to the three
// duration-derived metrics. Pure: the same duration always yields identical
// results, and duration 0 is well-defined.
func DeriveTemporal(durationMs float64) map[string]float64 {
	minutes := durationMs / 60000.0
	return map[string]float64{
		"phaseAlignment":     clamp01(0.5 + 0.5*math.Sin(minutes*Phi)),
		"spiralResonance":    clamp01(math.Abs(math.Cos(minutes / Phi))),
		"consciousnessDepth": clamp01(math.Log(1+minutes*Phi) / 10),
	}
}

// Coherence is the arithmetic mean over a numeric record's values: the full
// 21-field metrics map at the session boundary, or only the touched fields
// for an update response. Empty records score 0.
func Coherence(record map[string]float64) float64 {
	if len(record) == 0 {
		return 0
	}
	var sum float64
	for _, v := range record {
		sum += v
	}
	return sum / float64(len(record))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
