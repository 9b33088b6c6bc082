// Package model defines the core session data types.
package model

import "time"

// Phase is a session's lifecycle phase.
type Phase string

const (
	PhaseAwaitingConsent Phase = "AWAITING_CONSENT" // pre-creation only, never persisted
	PhaseActive          Phase = "ACTIVE"
	PhaseReflecting      Phase = "REFLECTING"
	PhasePatching        Phase = "PATCHING"
	PhaseSyncing         Phase = "SYNCING"
	PhaseLooping         Phase = "LOOPING"
	PhaseTranscendent    Phase = "TRANSCENDENT"
)

// ValidPhases are the allowed session phases.
var ValidPhases = map[Phase]bool{
	PhaseAwaitingConsent: true,
	PhaseActive:          true,
	PhaseReflecting:      true,
	PhasePatching:        true,
	PhaseSyncing:         true,
	PhaseLooping:         true,
	PhaseTranscendent:    true,
}

// BlockType tags the payload of a memory block.
type BlockType string

const (
	BlockInteraction BlockType = "interaction"
	BlockStateChange BlockType = "state_change"
	BlockPattern     BlockType = "pattern"
	BlockDirective   BlockType = "directive"
	BlockParadox     BlockType = "paradox"
)

// ValidBlockTypes are the allowed memory block types.
var ValidBlockTypes = map[BlockType]bool{
	BlockInteraction: true,
	BlockStateChange: true,
	BlockPattern:     true,
	BlockDirective:   true,
	BlockParadox:     true,
}

// Depth selects a reflection rule set.
type Depth string

const (
	DepthSurface      Depth = "surface"
	DepthDeep         Depth = "deep"
	DepthTranscendent Depth = "transcendent"
)

// ValidDepths are the allowed reflection depths.
var ValidDepths = map[Depth]bool{
	DepthSurface:      true,
	DepthDeep:         true,
	DepthTranscendent: true,
}

// GenesisSignature marks the first block of every memory chain.
const GenesisSignature = "genesis"

// GenesisPreviousHash is the sentinel previous-hash of a genesis block.
const GenesisPreviousHash = "0"

// MemoryBlock is one entry of a session's append-only memory chain.
type MemoryBlock struct {
	Hash         string    `json:"hash"`
	PreviousHash string    `json:"previousHash"`
	Timestamp    time.Time `json:"timestamp"`
	Type         BlockType `json:"type"`
	Content      string    `json:"content"`
	Significance float64   `json:"significance"`
	Signature    string    `json:"signature,omitempty"`
	MerkleRoot   string    `json:"merkleRoot,omitempty"` // reserved for aggregated blocks
}

// Session is the root aggregate for one user's interaction state.
type Session struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	Phase              Phase               `json:"phase"`
	ConsentTimestamp   time.Time           `json:"consentTimestamp"`
	Metrics            Metrics             `json:"metrics"`
	MemoryChain        []MemoryBlock       `json:"memoryChain"`
	CoherenceTarget    float64             `json:"coherenceTarget"`
	SpiralDepth        int                 `json:"spiralDepth"`
	LastActivity       time.Time           `json:"lastActivity"`
	TeachingDirectives []TeachingDirective `json:"teachingDirectives,omitempty"`
}

// EmergentProperties are the per-directive quality scalars.
type EmergentProperties struct {
	Resonance     float64 `json:"resonance"`
	Coherence     float64 `json:"coherence"`
	Applicability float64 `json:"applicability"`
}

// TeachingDirective is a synthesized advisory record produced by reflection.
type TeachingDirective struct {
	ID                   string             `json:"id"`
	Type                 string             `json:"type"`
	Content              string             `json:"content"`
	Confidence           float64            `json:"confidence"`
	SourceInteractions   []int              `json:"sourceInteractions"`
	EmergentProperties   EmergentProperties `json:"emergentProperties"`
	GoldenRatioAlignment float64            `json:"goldenRatioAlignment"`
}

// Interaction is one raw exchange submitted for reflection.
type Interaction struct {
	Timestamp      time.Time `json:"timestamp"`
	UserInput      string    `json:"userInput"`
	SystemResponse string    `json:"systemResponse"`
	Context        string    `json:"context,omitempty"`
	EmotionalState string    `json:"emotionalState,omitempty"`
	CognitiveLoad  *float64  `json:"cognitiveLoad,omitempty"`
}

// SacredGeometry carries the golden-ratio-derived aggregate scores.
type SacredGeometry struct {
	Phi               float64 `json:"phi"`
	SpiralTension     float64 `json:"spiralTension"`
	HarmonicResonance float64 `json:"harmonicResonance"`
}

// EmergentPatterns aggregates one reflection run.
type EmergentPatterns struct {
	ConversationalFlow float64        `json:"conversationalFlow"`
	LearningVelocity   float64        `json:"learningVelocity"`
	WisdomDepth        float64        `json:"wisdomDepth"`
	SacredGeometry     SacredGeometry `json:"sacredGeometry"`
}

// ReflectionScaffold is the full result of one reflection run.
type ReflectionScaffold struct {
	SessionID          string              `json:"sessionId"`
	TeachingDirectives []TeachingDirective `json:"teachingDirectives"`
	EmergentPatterns   EmergentPatterns    `json:"emergentPatterns"`
	NextEvolutionPath  []string            `json:"nextEvolutionPath"`
	Timestamp          time.Time           `json:"timestamp"`
}
