// Package sqlite persists the semantic memory service in a SQLite database so
// oracle memories survive restarts. Ranking happens in Go over the agent's
// candidate rows; SQLite only filters by agent and importance floor.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/astraeum/oraclecore/core"
	"github.com/astraeum/oraclecore/gateway"
	"github.com/astraeum/oraclecore/logging"
	"github.com/astraeum/oraclecore/memory"
)

// Options configure a Store.
type Options struct {
	// Embedder produces vectors for semantic ranking. Optional; without it
	// retrieval ranks lexically.
	Embedder gateway.Gateway
	Logger   logging.Logger
}

// Store is a persistent core.MemoryStore backed by SQLite.
type Store struct {
	db   *sql.DB
	opts Options
}

// New creates or opens the memory database at path.
func New(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create memory db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process memory service. One shared connection avoids writer
	// lock contention with SQLite under concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, opts: opts}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS memory_records (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			category TEXT NOT NULL,
			content TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			importance REAL NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS memory_agent_idx ON memory_records(agent, importance, created_at_ms DESC);`,
		`CREATE TABLE IF NOT EXISTS memory_embeddings (
			record_id TEXT PRIMARY KEY REFERENCES memory_records(id),
			vector_json TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init memory schema: %w", err)
		}
	}
	return nil
}

// Store persists a record and returns its ID. Embedding failures degrade the
// record to lexical ranking instead of failing the write.
func (s *Store) Store(ctx context.Context, agent, category, content, contextText string, importance float64, metadata map[string]string) (string, error) {
	id := core.NewID()
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}

	metaJSON := "{}"
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return "", fmt.Errorf("marshal memory metadata: %w", err)
		}
		metaJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memory_records (id, agent, category, content, context, importance, metadata_json, created_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, agent, category, content, contextText, importance, metaJSON, time.Now().UTC().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("insert memory record: %w", err)
	}

	if s.opts.Embedder != nil {
		vec, err := s.opts.Embedder.Embed(ctx, content)
		if err != nil {
			s.opts.Logger.Warn("memory embedding failed, record degrades to lexical ranking", "agent", agent, "error", err)
		} else if b, err := json.Marshal(vec); err == nil {
			if _, err := s.db.ExecContext(ctx,
				`INSERT INTO memory_embeddings (record_id, vector_json) VALUES (?, ?)`, id, string(b)); err != nil {
				s.opts.Logger.Warn("memory embedding persist failed", "agent", agent, "error", err)
			}
		}
	}
	return id, nil
}

// RetrieveRelevant loads the agent's candidate rows above the importance floor
// and ranks them in Go, cosine over stored vectors when a query embedding is
// available, lexical overlap otherwise.
func (s *Store) RetrieveRelevant(ctx context.Context, agent, query string, limit int, minImportance float64) ([]core.MemoryRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var queryVec []float64
	if s.opts.Embedder != nil {
		if v, err := s.opts.Embedder.Embed(ctx, query); err == nil {
			queryVec = v
		}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.agent, r.category, r.content, r.context, r.importance, r.metadata_json, r.created_at_ms,
		        COALESCE(e.vector_json, '')
		 FROM memory_records r
		 LEFT JOIN memory_embeddings e ON e.record_id = r.id
		 WHERE r.agent = ? AND r.importance >= ?`,
		agent, minImportance)
	if err != nil {
		return nil, fmt.Errorf("query memory records: %w", err)
	}
	defer rows.Close()

	var matches []core.MemoryRecord
	for rows.Next() {
		var (
			rec       core.MemoryRecord
			metaJSON  string
			createdMS int64
			vecJSON   string
		)
		if err := rows.Scan(&rec.ID, &rec.Agent, &rec.Category, &rec.Content, &rec.Context, &rec.Importance, &metaJSON, &createdMS, &vecJSON); err != nil {
			return nil, fmt.Errorf("scan memory record: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdMS).UTC()
		if metaJSON != "" && metaJSON != "{}" {
			_ = json.Unmarshal([]byte(metaJSON), &rec.Metadata)
		}

		scored := false
		if queryVec != nil && vecJSON != "" {
			var vec []float64
			if err := json.Unmarshal([]byte(vecJSON), &vec); err == nil {
				rec.Score = memory.Cosine(queryVec, vec)
				scored = true
			}
		}
		if !scored {
			rec.Score = memory.LexicalScore(query, rec.Content+" "+rec.Context)
		}
		matches = append(matches, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory records: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
