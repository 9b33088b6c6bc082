package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/rcliao/coherence/internal/hashchain"
	"github.com/rcliao/coherence/internal/metrics"
	"github.com/rcliao/coherence/internal/model"
)

// SQLiteStore implements Store using SQLite.
//
// A single mutex serializes the read-modify-write operations (UpdateMetrics,
// AppendBlock, SaveDirectives) so concurrent callers cannot lose updates;
// everything else assumes the documented single-logical-writer model.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// A nil logger disables logging.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id               TEXT PRIMARY KEY,
		user_id          TEXT NOT NULL,
		phase            TEXT NOT NULL,
		consent_at       TEXT NOT NULL,
		metrics          TEXT NOT NULL,
		coherence_target REAL NOT NULL,
		spiral_depth     INTEGER NOT NULL,
		last_activity    TEXT NOT NULL,
		fingerprint      TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_activity ON sessions(last_activity DESC);

	CREATE TABLE IF NOT EXISTS memory_blocks (
		session_id    TEXT NOT NULL REFERENCES sessions(id),
		seq           INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		previous_hash TEXT NOT NULL,
		created_at    TEXT NOT NULL,
		block_type    TEXT NOT NULL,
		content       TEXT NOT NULL,
		significance  REAL NOT NULL,
		signature     TEXT NOT NULL DEFAULT '',
		merkle_root   TEXT,
		PRIMARY KEY (session_id, seq)
	);

	CREATE TABLE IF NOT EXISTS teaching_directives (
		session_id TEXT NOT NULL,
		position   INTEGER NOT NULL,
		directive  TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (session_id, position)
	);

	CREATE TABLE IF NOT EXISTS current_session (
		slot       INTEGER PRIMARY KEY CHECK (slot = 0),
		session_id TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateSession validates the activation phrase and persists a new session
// with default metrics and a genesis memory block.
func (s *SQLiteStore) CreateSession(ctx context.Context, p CreateParams) (*CreateResult, error) {
	if p.Phrase != ActivationPhrase {
		return nil, ErrInvalidConsent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	id := s.newID()

	defaults := metrics.Defaults()
	metricsJSON, err := json.Marshal(&defaults)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}

	genesis := hashchain.Genesis(id, now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var fingerprint *string
	if p.DeviceFingerprint != "" {
		fingerprint = &p.DeviceFingerprint
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, phase, consent_at, metrics, coherence_target, spiral_depth, last_activity, fingerprint)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, AnonymousUserID, string(model.PhaseActive), now.Format(time.RFC3339Nano),
		string(metricsJSON), DefaultCoherenceTarget, 1, now.Format(time.RFC3339Nano), fingerprint)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := insertBlock(ctx, tx, id, 0, genesis); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO current_session (slot, session_id) VALUES (0, ?)
		 ON CONFLICT(slot) DO UPDATE SET session_id = excluded.session_id`, id)
	if err != nil {
		return nil, fmt.Errorf("set current session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	seed := s.entropy.Intn(1_000_000)
	s.logger.Info("session created",
		zap.String("session", id),
		zap.Int("spiralSeed", seed))

	return &CreateResult{
		SessionID:  id,
		Phase:      model.PhaseActive,
		Metrics:    defaults,
		SpiralSeed: seed,
	}, nil
}

func insertBlock(ctx context.Context, tx *sql.Tx, sessionID string, seq int, b model.MemoryBlock) error {
	var merkle *string
	if b.MerkleRoot != "" {
		merkle = &b.MerkleRoot
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO memory_blocks (session_id, seq, hash, previous_hash, created_at, block_type, content, significance, signature, merkle_root)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, b.Hash, b.PreviousHash, b.Timestamp.Format(time.RFC3339Nano),
		string(b.Type), b.Content, b.Significance, b.Signature, merkle)
	if err != nil {
		return fmt.Errorf("insert block: %w", err)
	}
	return nil
}

// querier abstracts *sql.DB and *sql.Tx for session loads.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadSession(ctx context.Context, q querier, id string) (*model.Session, error) {
	var sess model.Session
	var consentAt, metricsJSON, lastActivity, phase string
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, phase, consent_at, metrics, coherence_target, spiral_depth, last_activity
		 FROM sessions WHERE id = ?`, id).Scan(
		&sess.ID, &sess.UserID, &phase, &consentAt, &metricsJSON,
		&sess.CoherenceTarget, &sess.SpiralDepth, &lastActivity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess.Phase = model.Phase(phase)
	sess.ConsentTimestamp, _ = time.Parse(time.RFC3339Nano, consentAt)
	sess.LastActivity, _ = time.Parse(time.RFC3339Nano, lastActivity)
	if err := json.Unmarshal([]byte(metricsJSON), &sess.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshal metrics: %w", err)
	}

	chain, err := loadChain(ctx, q, id)
	if err != nil {
		return nil, err
	}
	sess.MemoryChain = chain

	directives, err := loadDirectives(ctx, q, id)
	if err != nil {
		return nil, err
	}
	sess.TeachingDirectives = directives

	return &sess, nil
}

func loadChain(ctx context.Context, q querier, id string) ([]model.MemoryBlock, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT hash, previous_hash, created_at, block_type, content, significance, signature, merkle_root
		 FROM memory_blocks WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load chain: %w", err)
	}
	defer rows.Close()

	var chain []model.MemoryBlock
	for rows.Next() {
		var b model.MemoryBlock
		var createdAt, blockType string
		var merkle sql.NullString
		if err := rows.Scan(&b.Hash, &b.PreviousHash, &createdAt, &blockType,
			&b.Content, &b.Significance, &b.Signature, &merkle); err != nil {
			return nil, err
		}
		b.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		b.Type = model.BlockType(blockType)
		if merkle.Valid {
			b.MerkleRoot = merkle.String
		}
		chain = append(chain, b)
	}
	return chain, rows.Err()
}

func loadDirectives(ctx context.Context, q querier, id string) ([]model.TeachingDirective, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT directive FROM teaching_directives WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load directives: %w", err)
	}
	defer rows.Close()

	var directives []model.TeachingDirective
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d model.TeachingDirective
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("unmarshal directive: %w", err)
		}
		directives = append(directives, d)
	}
	return directives, rows.Err()
}

// GetSession retrieves a session with its memory chain and directives.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return loadSession(ctx, s.db, id)
}

// GetCurrentSession resolves the current-session pointer.
func (s *SQLiteStore) GetCurrentSession(ctx context.Context) (*model.Session, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id FROM current_session WHERE slot = 0`).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNoCurrentSession
	}
	if err != nil {
		return nil, fmt.Errorf("load current pointer: %w", err)
	}
	return loadSession(ctx, s.db, id)
}

// UpdateMetrics recomputes the duration-derived metrics (and interaction
// complexity when user input is present), merges them over the caller's
// partial record with derived values winning on overlap, applies the result
// to the session's live metrics, and persists atomically. The returned
// coherence score covers only this update's cleaned partial record.
func (s *SQLiteStore) UpdateMetrics(ctx context.Context, id string, partial map[string]float64, uc *UpdateContext) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sess, err := loadSession(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	cleaned := make(map[string]float64, len(partial)+4)
	probe := &model.Metrics{}
	for name, v := range partial {
		if _, known := probe.Get(name); known && !math.IsNaN(v) && !math.IsInf(v, 0) {
			cleaned[name] = v
		}
	}

	var duration float64
	if uc != nil {
		duration = uc.Duration
	}
	for name, v := range metrics.DeriveTemporal(duration) {
		cleaned[name] = v
	}
	if uc != nil && uc.UserInput != "" {
		cleaned["interactionComplexity"] = metrics.InteractionComplexity(uc.UserInput)
	}

	now := time.Now().UTC()
	sess.Metrics.Apply(cleaned)

	metricsJSON, err := json.Marshal(&sess.Metrics)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE sessions SET metrics = ?, last_activity = ? WHERE id = ?`,
		string(metricsJSON), now.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	// A context action is a state-affecting event; record it on the chain.
	if uc != nil && uc.Action != "" {
		chain := hashchain.Append(sess.MemoryChain, model.BlockStateChange, uc.Action, 0.5, now)
		if err := insertBlock(ctx, tx, id, len(chain)-1, chain[len(chain)-1]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	score := metrics.Coherence(cleaned)
	s.logger.Debug("metrics updated",
		zap.String("session", id),
		zap.Int("fields", len(cleaned)),
		zap.Float64("coherence", score))

	return &UpdateResult{
		Success:        true,
		UpdatedMetrics: sess.Metrics,
		Timestamp:      now,
		CoherenceScore: score,
	}, nil
}

// AppendBlock appends a hash-linked block to a session's chain and returns
// the updated chain. Blocks already appended are never mutated.
func (s *SQLiteStore) AppendBlock(ctx context.Context, id string, blockType model.BlockType, content string, significance float64) ([]model.MemoryBlock, error) {
	if !model.ValidBlockTypes[blockType] {
		return nil, fmt.Errorf("invalid block type %q", blockType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	chain, err := loadChain(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	chain = hashchain.Append(chain, blockType, content, significance, time.Now().UTC())
	if err := insertBlock(ctx, tx, id, len(chain)-1, chain[len(chain)-1]); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return chain, nil
}

// SaveDirectives replaces the session's full directive list in one
// transaction (overwrite semantics, never a merge).
func (s *SQLiteStore) SaveDirectives(ctx context.Context, id string, directives []model.TeachingDirective) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM teaching_directives WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear directives: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for i, d := range directives {
		raw, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal directive: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO teaching_directives (session_id, position, directive, created_at) VALUES (?, ?, ?, ?)`,
			id, i, string(raw), now)
		if err != nil {
			return fmt.Errorf("insert directive: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Debug("directives saved",
		zap.String("session", id),
		zap.Int("count", len(directives)))
	return nil
}

// Directives returns the session's current teaching directive list.
func (s *SQLiteStore) Directives(ctx context.Context, id string) ([]model.TeachingDirective, error) {
	return loadDirectives(ctx, s.db, id)
}

// ClearAllData wipes every persisted session, memory block, directive, and
// the current-session pointer. Idempotent; missing rows are not an error.
func (s *SQLiteStore) ClearAllData(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"teaching_directives", "memory_blocks", "current_session", "sessions"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Info("all data cleared")
	return nil
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
