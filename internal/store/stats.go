package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string       `json:"db_path"`
	DBSizeBytes     int64        `json:"db_size_bytes"`
	Sessions        int          `json:"sessions"`
	MemoryBlocks    int          `json:"memory_blocks"`
	Directives      int          `json:"directives"`
	CurrentSession  string       `json:"current_session,omitempty"`
	Phases          []PhaseStats `json:"phases,omitempty"`
	LongestChainLen int          `json:"longest_chain"`
}

// PhaseStats holds per-phase session counts.
type PhaseStats struct {
	Phase string `json:"phase"`
	Count int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memory_blocks`).Scan(&st.MemoryBlocks)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teaching_directives`).Scan(&st.Directives)
	s.db.QueryRowContext(ctx, `SELECT session_id FROM current_session WHERE slot = 0`).Scan(&st.CurrentSession)
	s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(cnt), 0) FROM (SELECT COUNT(*) AS cnt FROM memory_blocks GROUP BY session_id)`).
		Scan(&st.LongestChainLen)

	rows, err := s.db.QueryContext(ctx, `
		SELECT phase, COUNT(*) as cnt
		FROM sessions
		GROUP BY phase ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var p PhaseStats
		rows.Scan(&p.Phase, &p.Count)
		st.Phases = append(st.Phases, p)
	}

	return st, nil
}
