package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/task"
)

func sample(id, start, end string) task.Task {
	return task.New(id, task.MustParseDate(start), task.MustParseDate(end)).
		With("productType", task.String("DRAM")).
		With("numberOfStack", task.Number(4)).
		With("isNPI", task.Bool(true))
}

// testContract exercises the behavior every backend must share. newStore
// must return an empty store.
func testContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		s := newStore(t)
		got, err := s.Create(ctx, sample("", "2022-01-01", "2022-02-01"))
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		if got.ID == "" {
			t.Error("Create() did not assign an id")
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Error("Create() did not set timestamps")
		}
		back, err := s.Get(ctx, got.ID)
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if back.Start.String() != "2022-01-01" || back.End.String() != "2022-02-01" {
			t.Errorf("Get() dates = %s..%s", back.Start, back.End)
		}
		if back.Attr("productType") != task.String("DRAM") ||
			back.Attr("numberOfStack") != task.Number(4) ||
			back.Attr("isNPI") != task.Bool(true) {
			t.Errorf("Get() attributes = %v", back.Attributes)
		}
	})

	t.Run("list ordered by start", func(t *testing.T) {
		s := newStore(t)
		for _, d := range [][2]string{
			{"2022-03-01", "2022-04-01"},
			{"2022-01-01", "2022-05-01"},
			{"2022-02-01", "2022-02-02"},
		} {
			if _, err := s.Create(ctx, sample("", d[0], d[1])); err != nil {
				t.Fatal(err)
			}
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List() error: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("List() = %d tasks, want 3", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i].Start.Before(list[i-1].Start) {
				t.Errorf("List() not sorted: %s before %s", list[i-1].Start, list[i].Start)
			}
		}
	})

	t.Run("update keeps created time", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, sample("", "2022-01-01", "2022-02-01"))
		if err != nil {
			t.Fatal(err)
		}
		changed := created.With("productType", task.String("NAND"))
		changed.End = task.MustParseDate("2022-03-01")
		updated, err := s.Update(ctx, changed)
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if updated.End.String() != "2022-03-01" || updated.Attr("productType") != task.String("NAND") {
			t.Errorf("Update() = %+v", updated)
		}
		if d := updated.CreatedAt.Sub(created.CreatedAt); d < -time.Millisecond || d > time.Millisecond {
			t.Errorf("Update() CreatedAt moved by %v", d)
		}
	})

	t.Run("missing task", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, "424242"); !errors.IsNotFound(err) {
			t.Errorf("Get() error = %v, want not found", err)
		}
		if _, err := s.Update(ctx, sample("424242", "2022-01-01", "2022-01-02")); !errors.IsNotFound(err) {
			t.Errorf("Update() error = %v, want not found", err)
		}
		if err := s.Delete(ctx, "424242"); !errors.IsNotFound(err) {
			t.Errorf("Delete() error = %v, want not found", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		s := newStore(t)
		created, err := s.Create(ctx, sample("", "2022-01-01", "2022-02-01"))
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if _, err := s.Get(ctx, created.ID); !errors.IsNotFound(err) {
			t.Errorf("Get() after Delete() error = %v", err)
		}
	})

	t.Run("invalid dates rejected", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Create(ctx, sample("", "2022-02-01", "2022-01-01"))
		if !errors.Is(err, errors.ErrCodeInvalidTask) {
			t.Errorf("Create() error = %v, want INVALID_TASK", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	testContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreExplicitID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.Create(ctx, sample("t-1", "2022-01-01", "2022-01-02")); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(ctx, sample("t-1", "2022-01-01", "2022-01-02"))
	if !errors.Is(err, errors.ErrCodeInvalidTask) {
		t.Errorf("duplicate Create() error = %v, want INVALID_TASK", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	created, err := s.Create(ctx, sample("t-1", "2022-01-01", "2022-01-02"))
	if err != nil {
		t.Fatal(err)
	}
	created.Attributes["productType"] = task.String("changed")

	got, _ := s.Get(ctx, "t-1")
	if got.Attr("productType") != task.String("DRAM") {
		t.Error("mutating a returned task changed the stored one")
	}
}

func TestMemoryStoreClock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	created, _ := s.Create(ctx, sample("t-1", "2022-01-01", "2022-01-02"))
	now = now.Add(time.Hour)
	updated, err := s.Update(ctx, created)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("CreatedAt = %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, now)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{})
	if err != nil {
		t.Fatalf("Open(memory) error: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	if _, err := Open(ctx, Config{Backend: "sqlite"}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Open(sqlite) error = %v", err)
	}
	if _, err := Open(ctx, Config{Backend: BackendPostgres}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Open(postgres, no dsn) error = %v", err)
	}
	if _, err := Open(ctx, Config{Backend: BackendMongo}); !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
		t.Errorf("Open(mongo, no uri) error = %v", err)
	}
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	testContract(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := Open(ctx, Config{Backend: BackendPostgres, PostgresDSN: dsn})
		if err != nil {
			t.Fatalf("Open(postgres) error: %v", err)
		}
		ps := s.(*PostgresStore)
		if _, err := ps.db.ExecContext(ctx, "TRUNCATE tasks RESTART IDENTITY"); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestPostgresStoreUnknownAttribute(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, Config{Backend: BackendPostgres, PostgresDSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Create(ctx, sample("", "2022-01-01", "2022-01-02").With("colour", task.String("red")))
	if !errors.Is(err, errors.ErrCodeInvalidTask) {
		t.Errorf("Create() error = %v, want INVALID_TASK", err)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	testContract(t, func(t *testing.T) Store {
		ctx := context.Background()
		s, err := NewMongoStore(ctx, uri, "flexgantt_test")
		if err != nil {
			t.Fatalf("NewMongoStore() error: %v", err)
		}
		if err := s.coll.Drop(ctx); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestMongoDocumentRoundTrip(t *testing.T) {
	in := sample("t-1", "2022-01-01", "2022-02-01")
	in.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out, err := toDocument(in).toTask()
	if err != nil {
		t.Fatal(err)
	}
	if out.ID != "t-1" || out.Start.String() != "2022-01-01" || !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("toTask() = %+v", out)
	}
	for _, name := range []string{"productType", "numberOfStack", "isNPI"} {
		if out.Attr(name) != in.Attr(name) {
			t.Errorf("attribute %s = %v, want %v", name, out.Attr(name), in.Attr(name))
		}
	}
}
