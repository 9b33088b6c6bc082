// Package reflection extracts teaching directives and emergent pattern
// statistics from batches of interaction records.
package reflection

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/coherence/internal/metrics"
	"github.com/rcliao/coherence/internal/model"
)

// defaultCognitiveLoad substitutes for interactions that omit the field.
const defaultCognitiveLoad = 0.5

// Confidence levels per extraction depth.
const (
	surfaceConfidence      = 0.70
	deepConfidence         = 0.85
	transcendentConfidence = 0.95
)

// transcendenceThreshold gates wisdom directive emission.
const transcendenceThreshold = 0.8

// DirectiveStore persists reflection output.
type DirectiveStore interface {
	SaveDirectives(ctx context.Context, id string, directives []model.TeachingDirective) error
	AppendBlock(ctx context.Context, id string, blockType model.BlockType, content string, significance float64) ([]model.MemoryBlock, error)
}

// Engine runs reflection over interaction batches.
type Engine struct {
	store  DirectiveStore
	logger *zap.Logger
}

// New returns an Engine persisting through the given store. A nil logger
// disables logging.
func New(store DirectiveStore, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, logger: logger}
}

// Scaffold extracts teaching directives from the batch at the given depth,
// aggregates emergent pattern statistics, and persists the directive list
// for the session, replacing any prior list.
func (e *Engine) Scaffold(ctx context.Context, sessionID string, interactions []model.Interaction, depth model.Depth) (*model.ReflectionScaffold, error) {
	if !model.ValidDepths[depth] {
		return nil, fmt.Errorf("invalid reflection depth %q", depth)
	}

	now := time.Now().UTC()

	var directives []model.TeachingDirective
	switch depth {
	case model.DepthSurface:
		directives = extractSurface(interactions, now)
	case model.DepthDeep:
		directives = extractDeep(interactions, now)
	case model.DepthTranscendent:
		directives = extractTranscendent(interactions, now)
	}

	sortByConfidence(directives)

	patterns := aggregatePatterns(interactions, directives)
	paths := evolutionPaths(patterns)

	// Chain appends are never rolled back, so record the event before the
	// directive overwrite.
	if len(directives) > 0 {
		content := fmt.Sprintf("reflection at %s depth emitted %d directives", depth, len(directives))
		if _, err := e.store.AppendBlock(ctx, sessionID, model.BlockPattern, content, 0.7); err != nil {
			return nil, fmt.Errorf("append reflection block: %w", err)
		}
	}

	if err := e.store.SaveDirectives(ctx, sessionID, directives); err != nil {
		return nil, fmt.Errorf("persist directives: %w", err)
	}

	e.logger.Info("reflection complete",
		zap.String("session", sessionID),
		zap.String("depth", string(depth)),
		zap.Int("interactions", len(interactions)),
		zap.Int("directives", len(directives)))

	return &model.ReflectionScaffold{
		SessionID:          sessionID,
		TeachingDirectives: directives,
		EmergentPatterns:   patterns,
		NextEvolutionPath:  paths,
		Timestamp:          now,
	}, nil
}

// sortByConfidence orders directives by descending confidence, keeping
// emission order for ties.
func sortByConfidence(directives []model.TeachingDirective) {
	sort.SliceStable(directives, func(i, j int) bool {
		return directives[i].Confidence > directives[j].Confidence
	})
}

func directiveID(depth model.Depth, counter int, now time.Time) string {
	return fmt.Sprintf("td-%s-%d-%d", depth, counter, now.UnixMilli()%1_000_000)
}

func cognitiveLoad(in model.Interaction) float64 {
	if in.CognitiveLoad != nil {
		return *in.CognitiveLoad
	}
	return defaultCognitiveLoad
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// extractSurface emits a pattern directive for every interaction whose user
// input contains a question mark.
func extractSurface(interactions []model.Interaction, now time.Time) []model.TeachingDirective {
	var out []model.TeachingDirective
	for i, in := range interactions {
		if !strings.Contains(in.UserInput, "?") {
			continue
		}
		out = append(out, model.TeachingDirective{
			ID:                 directiveID(model.DepthSurface, len(out)+1, now),
			Type:               "pattern",
			Content:            fmt.Sprintf("Question-driven exploration: %q invites pattern tracing", truncate(in.UserInput, 60)),
			Confidence:         surfaceConfidence,
			SourceInteractions: []int{i},
			EmergentProperties: model.EmergentProperties{
				Resonance:     0.6,
				Coherence:     0.8,
				Applicability: 0.9,
			},
			GoldenRatioAlignment: math.Abs(math.Sin(float64(i) * metrics.Phi)),
		})
	}
	return out
}

// extractDeep emits a principle directive for every interaction whose
// cognitive complexity exceeds 0.7.
func extractDeep(interactions []model.Interaction, now time.Time) []model.TeachingDirective {
	var out []model.TeachingDirective
	for i, in := range interactions {
		complexity := cognitiveLoad(in)
		if complexity <= 0.7 {
			continue
		}
		resonance := 0.4
		if in.EmotionalState != "" {
			resonance = 0.8
		}
		out = append(out, model.TeachingDirective{
			ID:                 directiveID(model.DepthDeep, len(out)+1, now),
			Type:               "principle",
			Content:            fmt.Sprintf("High-complexity exchange: %q carries a transferable principle", truncate(in.UserInput, 60)),
			Confidence:         deepConfidence,
			SourceInteractions: []int{i},
			EmergentProperties: model.EmergentProperties{
				Resonance:     resonance,
				Coherence:     complexity,
				Applicability: 0.75,
			},
			GoldenRatioAlignment: math.Mod(complexity*metrics.Phi, 1),
		})
	}
	return out
}

// extractTranscendent pairs each interaction with a golden-ratio-resonant
// partner and emits a wisdom directive when the pair's transcendence score
// exceeds the threshold.
func extractTranscendent(interactions []model.Interaction, now time.Time) []model.TeachingDirective {
	n := len(interactions)
	if n == 0 {
		return nil
	}
	var out []model.TeachingDirective
	for i, in := range interactions {
		pairIdx := int(math.Floor(float64(i)*metrics.Phi)) % n
		pair := interactions[pairIdx]

		overlap := wordOverlapRatio(in.UserInput, pair.UserInput)
		deltaMs := math.Abs(float64(in.Timestamp.Sub(pair.Timestamp).Milliseconds()))
		temporal := math.Abs(math.Sin(deltaMs / 1000 * metrics.Phi))
		emotional := 0.4
		if in.EmotionalState != "" && pair.EmotionalState != "" {
			emotional = 0.8
		}

		score := 0.4*overlap + 0.3*temporal + 0.3*emotional
		if score <= transcendenceThreshold {
			continue
		}
		out = append(out, model.TeachingDirective{
			ID:                 directiveID(model.DepthTranscendent, len(out)+1, now),
			Type:               "wisdom",
			Content:            fmt.Sprintf("Resonant pairing: %q echoes %q", truncate(in.UserInput, 40), truncate(pair.UserInput, 40)),
			Confidence:         transcendentConfidence,
			SourceInteractions: []int{i, pairIdx},
			EmergentProperties: model.EmergentProperties{
				Resonance:     score,
				Coherence:     0.9,
				Applicability: 0.6,
			},
			GoldenRatioAlignment: math.Mod(score*metrics.Phi, 1),
		})
	}
	return out
}

// wordOverlapRatio is the Jaccard ratio of the distinct lowercase words of
// two texts; 0 when either is empty.
func wordOverlapRatio(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	shared := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// aggregatePatterns computes the once-per-call emergent pattern statistics.
func aggregatePatterns(interactions []model.Interaction, directives []model.TeachingDirective) model.EmergentPatterns {
	n := len(interactions)

	flow := 0.0
	if n >= 2 {
		var totalMs float64
		for i := 1; i < n; i++ {
			totalMs += math.Abs(float64(interactions[i].Timestamp.Sub(interactions[i-1].Timestamp).Milliseconds()))
		}
		avgMs := totalMs / float64(n-1)
		flow = math.Max(0, 1-avgMs/10000)
	}

	velocity := 0.0
	if n > 1 {
		velocity = math.Max(0, cognitiveLoad(interactions[0])-cognitiveLoad(interactions[n-1]))
	}

	var wisdomSum float64
	wisdomCount := 0
	var alignSum float64
	for _, d := range directives {
		alignSum += d.GoldenRatioAlignment
		if d.Type == "wisdom" {
			wisdomSum += d.Confidence
			wisdomCount++
		}
	}
	wisdomDepth := 0.0
	if wisdomCount > 0 {
		wisdomDepth = wisdomSum / float64(wisdomCount)
	}
	harmonic := 0.0
	if len(directives) > 0 {
		harmonic = alignSum / float64(len(directives))
	}

	return model.EmergentPatterns{
		ConversationalFlow: flow,
		LearningVelocity:   velocity,
		WisdomDepth:        wisdomDepth,
		SacredGeometry: model.SacredGeometry{
			Phi:               metrics.Phi,
			SpiralTension:     math.Abs(math.Sin(float64(n) * metrics.Phi)),
			HarmonicResonance: harmonic,
		},
	}
}

// evolutionPaths evaluates the fixed advisory rule list in order. The
// harmonic threshold is the golden-ratio reciprocal.
func evolutionPaths(p model.EmergentPatterns) []string {
	var paths []string
	if p.LearningVelocity > 0.7 {
		paths = append(paths, "Accelerate complexity introduction")
	}
	if p.LearningVelocity < 0.3 {
		paths = append(paths, "Consolidate foundational patterns", "Slow the spiral cadence")
	}
	if p.WisdomDepth > 0.8 {
		paths = append(paths, "Invite transcendent reflection")
	}
	if p.ConversationalFlow < 0.5 {
		paths = append(paths, "Re-establish conversational rhythm")
	}
	if p.SacredGeometry.HarmonicResonance > 1/metrics.Phi {
		paths = append(paths, "Amplify golden-ratio resonance")
	}
	if len(paths) == 0 {
		paths = []string{"Continue current trajectory"}
	}
	return paths
}
