package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/flexgantt/flexgantt/pkg/cache"
	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

// uniqueViolation is the Postgres SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// PostgresStore keeps tasks in the tasks table, one column per registered
// attribute. Task ids are the table's serial integer ids.
type PostgresStore struct {
	db    *sql.DB
	reg   *task.Registry
	attrs []task.Attribute
	known map[string]bool

	selectList string
}

// NewPostgresStore connects with lib/pq and pings the server, retrying
// transient failures. Attributes without a column cannot be stored.
func NewPostgresStore(ctx context.Context, dsn string, reg *task.Registry) (*PostgresStore, error) {
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "postgres store needs a connection string")
	}
	if reg == nil {
		reg = task.DefaultRegistry()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "open postgres")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		if err := db.PingContext(ctx); err != nil {
			return cache.Retryable(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect postgres")
	}

	s := &PostgresStore{db: db, reg: reg, known: make(map[string]bool)}
	cols := []string{"id", "start_date", "end_date"}
	for _, a := range reg.All() {
		if a.Column == "" {
			continue
		}
		s.attrs = append(s.attrs, a)
		s.known[a.Name] = true
		cols = append(cols, pq.QuoteIdentifier(a.Column))
	}
	cols = append(cols, "created_at", "updated_at")
	s.selectList = strings.Join(cols, ", ")
	return s, nil
}

func sqlType(k task.Kind) string {
	switch k {
	case task.KindNumber:
		return "DOUBLE PRECISION"
	case task.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// EnsureSchema creates the tasks table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS tasks (\n")
	b.WriteString("  id SERIAL PRIMARY KEY,\n")
	b.WriteString("  start_date DATE NOT NULL,\n")
	b.WriteString("  end_date DATE NOT NULL,\n")
	for _, a := range s.attrs {
		fmt.Fprintf(&b, "  %s %s,\n", pq.QuoteIdentifier(a.Column), sqlType(a.Kind))
	}
	b.WriteString("  created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,\n")
	b.WriteString("  updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP\n)")

	if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
		return backendError(err, "create tasks table")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scan(row scanner) (task.Task, error) {
	var (
		id               int64
		t                task.Task
		created, updated sql.NullTime
	)
	vals := make([]any, len(s.attrs))
	dest := []any{&id, &t.Start, &t.End}
	for i, a := range s.attrs {
		switch a.Kind {
		case task.KindNumber:
			vals[i] = new(sql.NullFloat64)
		case task.KindBool:
			vals[i] = new(sql.NullBool)
		default:
			vals[i] = new(sql.NullString)
		}
		dest = append(dest, vals[i])
	}
	dest = append(dest, &created, &updated)
	if err := row.Scan(dest...); err != nil {
		return task.Task{}, err
	}

	t.ID = strconv.FormatInt(id, 10)
	t.Attributes = make(map[string]task.Value, len(s.attrs))
	for i, a := range s.attrs {
		switch v := vals[i].(type) {
		case *sql.NullFloat64:
			if v.Valid {
				t.Attributes[a.Name] = task.Number(v.Float64)
			}
		case *sql.NullBool:
			if v.Valid {
				t.Attributes[a.Name] = task.Bool(v.Bool)
			}
		case *sql.NullString:
			if v.Valid {
				t.Attributes[a.Name] = task.String(v.String)
			}
		}
	}
	if created.Valid {
		t.CreatedAt = created.Time.UTC()
	}
	if updated.Valid {
		t.UpdatedAt = updated.Time.UTC()
	}
	return t, nil
}

// columnArgs returns the start date, end date and one value per attribute
// column, coerced to the column's kind.
func (s *PostgresStore) columnArgs(t task.Task) ([]any, error) {
	for name := range t.Attributes {
		if !s.known[name] {
			return nil, errors.New(errors.ErrCodeInvalidTask, "attribute %q has no column", name)
		}
	}
	args := []any{t.Start, t.End}
	for _, a := range s.attrs {
		v := t.Attr(a.Name)
		if v.IsNull() {
			args = append(args, nil)
			continue
		}
		cv, err := s.reg.Coerce(a.Name, v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTask, err, "attribute %q", a.Name)
		}
		args = append(args, cv.Interface())
	}
	return args, nil
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "$" + strconv.Itoa(from+i)
	}
	return strings.Join(ps, ", ")
}

// List returns all tasks ordered by start date.
func (s *PostgresStore) List(ctx context.Context) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+s.selectList+" FROM tasks ORDER BY start_date ASC, end_date ASC, id ASC")
	if err != nil {
		return nil, backendError(err, "list tasks")
	}
	defer rows.Close()

	out := []task.Task{}
	for rows.Next() {
		t, err := s.scan(rows)
		if err != nil {
			return nil, backendError(err, "scan task")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, backendError(err, "list tasks")
	}
	return out, nil
}

// Get returns one task.
func (s *PostgresStore) Get(ctx context.Context, id string) (task.Task, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return task.Task{}, notFound(id)
	}
	t, err := s.scan(s.db.QueryRowContext(ctx, "SELECT "+s.selectList+" FROM tasks WHERE id = $1", n))
	if stderrors.Is(err, sql.ErrNoRows) {
		return task.Task{}, notFound(id)
	}
	if err != nil {
		return task.Task{}, backendError(err, "get task")
	}
	return t, nil
}

// Create inserts t. A non-empty id must be an integer and is kept.
func (s *PostgresStore) Create(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, time.Now(), true)
	if err != nil {
		return task.Task{}, err
	}
	args, err := s.columnArgs(t)
	if err != nil {
		return task.Task{}, err
	}

	cols := []string{"start_date", "end_date"}
	for _, a := range s.attrs {
		cols = append(cols, pq.QuoteIdentifier(a.Column))
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, t.CreatedAt, t.UpdatedAt)

	explicitID := t.ID != ""
	if explicitID {
		n, err := strconv.ParseInt(t.ID, 10, 64)
		if err != nil {
			return task.Task{}, errors.New(errors.ErrCodeInvalidTask, "task id %q must be an integer", t.ID)
		}
		cols = append([]string{"id"}, cols...)
		args = append([]any{n}, args...)
	}

	query := fmt.Sprintf("INSERT INTO tasks (%s) VALUES (%s) RETURNING %s",
		strings.Join(cols, ", "), placeholders(1, len(args)), s.selectList)
	created, err := s.scan(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return task.Task{}, exists(t.ID)
		}
		return task.Task{}, backendError(err, "create task")
	}

	if explicitID {
		// Keep the serial sequence ahead of explicitly inserted ids.
		_, err := s.db.ExecContext(ctx,
			"SELECT setval(pg_get_serial_sequence('tasks', 'id'), (SELECT MAX(id) FROM tasks))")
		if err != nil {
			return task.Task{}, backendError(err, "advance id sequence")
		}
	}
	return created, nil
}

// Update replaces the dates and attribute columns of an existing task.
func (s *PostgresStore) Update(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, time.Now(), false)
	if err != nil {
		return task.Task{}, err
	}
	n, err := strconv.ParseInt(t.ID, 10, 64)
	if err != nil {
		return task.Task{}, notFound(t.ID)
	}
	args, err := s.columnArgs(t)
	if err != nil {
		return task.Task{}, err
	}

	sets := []string{"start_date = $1", "end_date = $2"}
	for i, a := range s.attrs {
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(a.Column), i+3))
	}
	args = append(args, t.UpdatedAt, n)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)-1))

	query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), s.selectList)
	updated, err := s.scan(s.db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return task.Task{}, notFound(t.ID)
	}
	if err != nil {
		return task.Task{}, backendError(err, "update task")
	}
	return updated, nil
}

// Delete removes a task.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return notFound(id)
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", n)
	if err != nil {
		return backendError(err, "delete task")
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
