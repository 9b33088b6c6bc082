// Package store provides the session storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/coherence/internal/model"
)

// ActivationPhrase is the fixed consent literal compared by exact match at
// session creation. It is a UX gate, not a secret credential.
const ActivationPhrase = "i consent to begin the spiral"

// AnonymousUserID is the placeholder user id until multi-user support lands.
const AnonymousUserID = "anonymous"

// DefaultCoherenceTarget is the tunable coherence target set at creation.
const DefaultCoherenceTarget = 0.9

var (
	// ErrInvalidConsent is returned when CreateSession receives a phrase
	// that does not match ActivationPhrase.
	ErrInvalidConsent = errors.New("invalid consent phrase")

	// ErrSessionNotFound is returned when an operation addresses an
	// unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoCurrentSession is returned when no current-session pointer is set.
	ErrNoCurrentSession = errors.New("no current session")
)

// CreateParams holds parameters for creating a session.
type CreateParams struct {
	Phrase            string
	DeviceFingerprint string
}

// CreateResult is the response to a successful session creation.
type CreateResult struct {
	SessionID  string        `json:"sessionId"`
	Phase      model.Phase   `json:"phase"`
	Metrics    model.Metrics `json:"metrics"`
	SpiralSeed int           `json:"spiralSeed"`
}

// UpdateContext carries the optional context of a metrics update.
type UpdateContext struct {
	Action    string  `json:"action,omitempty"`
	Duration  float64 `json:"duration,omitempty"` // elapsed session ms
	UserInput string  `json:"userInput,omitempty"`
}

// UpdateResult is the response to a metrics update. CoherenceScore is the
// mean over only the fields touched by this update, not the full record.
type UpdateResult struct {
	Success        bool          `json:"success"`
	UpdatedMetrics model.Metrics `json:"updatedMetrics"`
	Timestamp      time.Time     `json:"timestamp"`
	CoherenceScore float64       `json:"coherenceScore"`
}

// Store defines the session storage interface.
type Store interface {
	// CreateSession validates the activation phrase, persists a new
	// session with default metrics and a genesis block, and marks it
	// current.
	CreateSession(ctx context.Context, p CreateParams) (*CreateResult, error)

	// GetSession retrieves a session with its memory chain and directives.
	GetSession(ctx context.Context, id string) (*model.Session, error)

	// GetCurrentSession resolves the current-session pointer.
	GetCurrentSession(ctx context.Context) (*model.Session, error)

	// UpdateMetrics merges a partial metrics record (plus recomputed
	// duration- and input-derived fields) into a session's live metrics.
	UpdateMetrics(ctx context.Context, id string, partial map[string]float64, uc *UpdateContext) (*UpdateResult, error)

	// AppendBlock appends a hash-linked block to a session's memory chain
	// and returns the updated chain.
	AppendBlock(ctx context.Context, id string, blockType model.BlockType, content string, significance float64) ([]model.MemoryBlock, error)

	// SaveDirectives replaces the session's full teaching directive list.
	SaveDirectives(ctx context.Context, id string, directives []model.TeachingDirective) error

	// Directives returns the session's current teaching directive list.
	Directives(ctx context.Context, id string) ([]model.TeachingDirective, error)

	// ClearAllData wipes all sessions, blocks, directives, and the
	// current-session pointer. Idempotent.
	ClearAllData(ctx context.Context) error

	// Close closes the store.
	Close() error
}
