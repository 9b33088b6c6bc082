package model

// Metrics is the fixed-shape record of derived coherence signals.
// All fields are nominally in [0,1] except ResponseLatency, which is an
// unbounded simulated duration in milliseconds.
type Metrics struct {
	NeuralComplexity      float64 `json:"neuralComplexity"`
	BrainwaveCoherence    float64 `json:"brainwaveCoherence"`
	AutonomicBalance      float64 `json:"autonomicBalance"`
	ResponseLatency       float64 `json:"responseLatency"`
	InteractionPattern    float64 `json:"interactionPattern"`
	EmotionalDepth        float64 `json:"emotionalDepth"`
	PatternRecognition    float64 `json:"patternRecognition"`
	SelfReflection        float64 `json:"selfReflection"`
	Creativity            float64 `json:"creativity"`
	Empathy               float64 `json:"empathy"`
	Intentionality        float64 `json:"intentionality"`
	InteractionComplexity float64 `json:"interactionComplexity"`
	PhaseAlignment        float64 `json:"phaseAlignment"`
	SpiralResonance       float64 `json:"spiralResonance"`
	ConsciousnessDepth    float64 `json:"consciousnessDepth"`
	AttentionFocus        float64 `json:"attentionFocus"`
	MemoryConsolidation   float64 `json:"memoryConsolidation"`
	InsightPotential      float64 `json:"insightPotential"`
	TemporalBinding       float64 `json:"temporalBinding"`
	PresenceLevel         float64 `json:"presenceLevel"`
	Adaptability          float64 `json:"adaptability"`
}

// MetricFields lists every metric field name in declaration order.
// Partial metric records are maps keyed by these names.
var MetricFields = []string{
	"neuralComplexity",
	"brainwaveCoherence",
	"autonomicBalance",
	"responseLatency",
	"interactionPattern",
	"emotionalDepth",
	"patternRecognition",
	"selfReflection",
	"creativity",
	"empathy",
	"intentionality",
	"interactionComplexity",
	"phaseAlignment",
	"spiralResonance",
	"consciousnessDepth",
	"attentionFocus",
	"memoryConsolidation",
	"insightPotential",
	"temporalBinding",
	"presenceLevel",
	"adaptability",
}

// field returns a pointer to the named field, or nil for unknown names.
func (m *Metrics) field(name string) *float64 {
	switch name {
	case "neuralComplexity":
		return &m.NeuralComplexity
	case "brainwaveCoherence":
		return &m.BrainwaveCoherence
	case "autonomicBalance":
		return &m.AutonomicBalance
	case "responseLatency":
		return &m.ResponseLatency
	case "interactionPattern":
		return &m.InteractionPattern
	case "emotionalDepth":
		return &m.EmotionalDepth
	case "patternRecognition":
		return &m.PatternRecognition
	case "selfReflection":
		return &m.SelfReflection
	case "creativity":
		return &m.Creativity
	case "empathy":
		return &m.Empathy
	case "intentionality":
		return &m.Intentionality
	case "interactionComplexity":
		return &m.InteractionComplexity
	case "phaseAlignment":
		return &m.PhaseAlignment
	case "spiralResonance":
		return &m.SpiralResonance
	case "consciousnessDepth":
		return &m.ConsciousnessDepth
	case "attentionFocus":
		return &m.AttentionFocus
	case "memoryConsolidation":
		return &m.MemoryConsolidation
	case "insightPotential":
		return &m.InsightPotential
	case "temporalBinding":
		return &m.TemporalBinding
	case "presenceLevel":
		return &m.PresenceLevel
	case "adaptability":
		return &m.Adaptability
	}
	return nil
}

// Get returns the named field's value. Unknown names return 0, false.
func (m *Metrics) Get(name string) (float64, bool) {
	p := m.field(name)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set assigns the named field. Unknown names are ignored and reported false.
func (m *Metrics) Set(name string, v float64) bool {
	p := m.field(name)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Apply merges a partial record field-by-field. Fields absent from the
// partial retain their prior values; unknown keys are ignored.
func (m *Metrics) Apply(partial map[string]float64) {
	for name, v := range partial {
		m.Set(name, v)
	}
}

// Map returns all fields as a name-keyed map in a fresh allocation.
func (m *Metrics) Map() map[string]float64 {
	out := make(map[string]float64, len(MetricFields))
	for _, name := range MetricFields {
		out[name] = *m.field(name)
	}
	return out
}
