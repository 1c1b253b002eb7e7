package postgres

import (
	"context"
	"errors"
	"testing"

	"peopleetl/internal/storage"
)

// TestFactoryWiring verifies the "postgres" kind is registered and that the
// factory passes config through to NewRepository. The newRepository hook is
// stubbed so no real connection is attempted.
func TestFactoryWiring(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() {}, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind:       "postgres",
		DSN:        "postgres://u:p@db:5432/codetest",
		Table:      "people",
		Columns:    []string{"first_name", "last_name", "date_of_birth", "place_of_birth_id"},
		KeyColumns: nil,
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if gotCfg.DSN != "postgres://u:p@db:5432/codetest" {
		t.Errorf("DSN = %q", gotCfg.DSN)
	}
	if gotCfg.Table != "people" || len(gotCfg.Columns) != 4 {
		t.Errorf("cfg = %+v", gotCfg)
	}
}

func TestFactoryPropagatesError(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	want := errors.New("connect refused")
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		return nil, nil, want
	}

	_, err := storage.New(context.Background(), storage.Config{Kind: "postgres"})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestNewRepositoryRejectsEmptyDSN(t *testing.T) {
	_, _, err := NewRepository(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
