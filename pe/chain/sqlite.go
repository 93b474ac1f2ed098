package chain

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-gwpe/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS layout (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	walkers INTEGER NOT NULL,
	dim INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS steps (
	iteration INTEGER NOT NULL,
	walker INTEGER NOT NULL,
	params BLOB NOT NULL,
	log_prob REAL NOT NULL,
	accepted INTEGER NOT NULL,
	PRIMARY KEY (iteration, walker)
);
`

// SQLiteOption configures [OpenSQLite].
type SQLiteOption func(*SQLite)

// WithLogger sets the logger that records store failures.
func WithLogger(l *zap.Logger) SQLiteOption {
	return func(s *SQLite) { s.logger = l }
}

// SQLite is a [Backend] in a single SQLite file. Rows are keyed by
// (iteration, walker); parameters are little-endian float64 blobs.
type SQLite struct {
	db      *sql.DB
	path    string
	walkers int
	dim     int
	logger  *zap.Logger
}

// OpenSQLite opens or creates the store at path.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	s := &SQLite{path: path}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = logging.OrNop(s.logger).With(zap.String("store", path))

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, s.fail("create directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, s.fail("open", err)
	}
	db.SetMaxOpenConns(1)
	s.db = db

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, s.fail("initialize schema", err)
		}
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLite) Path() string { return s.path }

func (s *SQLite) fail(op string, err error) error {
	s.logger.Error("chain store failure", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

func (s *SQLite) Init(ctx context.Context, walkers, dim int) error {
	if walkers <= 0 || dim <= 0 {
		return fmt.Errorf("%w: walkers=%d dim=%d", ErrShape, walkers, dim)
	}

	var w, d int
	err := s.db.QueryRowContext(ctx, `SELECT walkers, dim FROM layout WHERE id = 1`).Scan(&w, &d)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, `INSERT INTO layout (id, walkers, dim) VALUES (1, ?, ?)`, walkers, dim); err != nil {
			return s.fail("record layout", err)
		}
	case err != nil:
		return s.fail("read layout", err)
	case w != walkers || d != dim:
		return fmt.Errorf("%w: store holds %dx%d, want %dx%d", ErrShape, w, d, walkers, dim)
	}

	s.walkers, s.dim = walkers, dim
	return nil
}

// layout adopts the recorded walker count and dimension when the store was
// reopened without Init.
func (s *SQLite) layout(ctx context.Context, op string) error {
	if s.walkers != 0 {
		return nil
	}
	var w, d int
	err := s.db.QueryRowContext(ctx, `SELECT walkers, dim FROM layout WHERE id = 1`).Scan(&w, &d)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %s before init", ErrPersistence, op)
	case err != nil:
		return s.fail("read layout", err)
	}
	s.walkers, s.dim = w, d
	return nil
}

// Layout returns the walker count and dimension recorded in the store.
func (s *SQLite) Layout(ctx context.Context) (walkers, dim int, err error) {
	if err := s.layout(ctx, "layout"); err != nil {
		return 0, 0, err
	}
	return s.walkers, s.dim, nil
}

func (s *SQLite) Append(ctx context.Context, step Step) (err error) {
	if err := s.layout(ctx, "append"); err != nil {
		return err
	}
	if err := step.check(s.walkers, s.dim); err != nil {
		return err
	}
	n, err := s.Len(ctx)
	if err != nil {
		return err
	}
	if step.Iteration != n {
		return fmt.Errorf("%w: iteration %d, want %d", ErrShape, step.Iteration, n)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.fail("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO steps (iteration, walker, params, log_prob, accepted) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return s.fail("prepare", err)
	}
	defer stmt.Close()

	for w, p := range step.Positions {
		if _, err = stmt.ExecContext(ctx, step.Iteration, w, encodeParams(p), step.LogProb[w], step.Accepted[w]); err != nil {
			return s.fail(fmt.Sprintf("insert iteration %d walker %d", step.Iteration, w), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return s.fail("commit", err)
	}
	return nil
}

func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(iteration) + 1, 0) FROM steps`).Scan(&n); err != nil {
		return 0, s.fail("count", err)
	}
	return n, nil
}

func (s *SQLite) Last(ctx context.Context) (Step, error) {
	if err := s.layout(ctx, "last"); err != nil {
		return Step{}, err
	}
	n, err := s.Len(ctx)
	if err != nil {
		return Step{}, err
	}
	if n == 0 {
		return Step{}, fmt.Errorf("%w: empty store", ErrPersistence)
	}

	steps, err := s.query(ctx, `WHERE iteration = ?`, n-1)
	if err != nil {
		return Step{}, err
	}
	return steps[0], nil
}

func (s *SQLite) Load(ctx context.Context) (*Chain, error) {
	if err := s.layout(ctx, "load"); err != nil {
		return nil, err
	}
	c, err := New(s.walkers, s.dim)
	if err != nil {
		return nil, err
	}

	steps, err := s.query(ctx, "")
	if err != nil {
		return nil, err
	}
	c.steps = steps
	return c, nil
}

// query reads rows ordered by (iteration, walker) and groups them into steps.
func (s *SQLite) query(ctx context.Context, where string, args ...any) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, walker, params, log_prob, accepted FROM steps `+where+` ORDER BY iteration, walker`, args...)
	if err != nil {
		return nil, s.fail("query", err)
	}
	defer rows.Close()

	var out []Step
	for rows.Next() {
		var (
			it, w    int
			blob     []byte
			logProb  float64
			accepted bool
		)
		if err := rows.Scan(&it, &w, &blob, &logProb, &accepted); err != nil {
			return nil, s.fail("scan", err)
		}

		if len(out) == 0 || out[len(out)-1].Iteration != it {
			out = append(out, Step{Iteration: it})
		}
		cur := &out[len(out)-1]
		if w != len(cur.Positions) {
			return nil, s.fail("scan", fmt.Errorf("iteration %d: walker %d out of order", it, w))
		}

		p, err := decodeParams(blob, s.dim)
		if err != nil {
			return nil, s.fail("decode", err)
		}
		cur.Positions = append(cur.Positions, p)
		cur.LogProb = append(cur.LogProb, logProb)
		cur.Accepted = append(cur.Accepted, accepted)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("iterate", err)
	}

	for _, st := range out {
		if err := st.check(s.walkers, s.dim); err != nil {
			return nil, s.fail("incomplete iteration", err)
		}
	}
	return out, nil
}

func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return s.fail("close", err)
	}
	return nil
}

func encodeParams(p []float64) []byte {
	buf := make([]byte, 0, 8*len(p))
	for _, v := range p {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return buf
}

func decodeParams(b []byte, dim int) ([]float64, error) {
	if len(b) != 8*dim {
		return nil, fmt.Errorf("params blob has %d bytes, want %d", len(b), 8*dim)
	}
	out := make([]float64, dim)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out, nil
}
