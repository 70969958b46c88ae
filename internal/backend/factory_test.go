package backend

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"pokerledger/internal/core"
	"pokerledger/internal/store"
)

type stubBackend struct{ name string }

func (s stubBackend) Name() string { return s.name }
func (s stubBackend) Load(context.Context, string) ([]core.Tournament, int64, error) {
	return nil, 1, nil
}
func (s stubBackend) Save(context.Context, string, []core.Tournament, int64) error { return nil }

type stubFactory struct {
	fail map[Type]error
}

func (f stubFactory) CreateBackend(_ context.Context, t Type, _ Config) (*Result, error) {
	if err := f.fail[t]; err != nil {
		return nil, err
	}
	return &Result{Backend: stubBackend{name: t.String()}}, nil
}

func TestSelectPrefersFirstWorkingBackend(t *testing.T) {
	factory := stubFactory{fail: map[Type]error{
		SheetDBBackend: errors.New("gateway down"),
	}}
	cfg := Config{Types: []Type{SheetDBBackend, SheetsBackend, LocalBackend}}

	result, err := Select(context.Background(), factory, cfg, slog.Default())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if result.Backend.Name() != "sheets" {
		t.Fatalf("selected %q, want sheets", result.Backend.Name())
	}
}

func TestSelectFailsWhenChainExhausted(t *testing.T) {
	factory := stubFactory{fail: map[Type]error{
		SheetsBackend: errors.New("no credentials"),
		LocalBackend:  errors.New("disk full"),
	}}
	cfg := Config{Types: []Type{SheetsBackend, LocalBackend}}

	if _, err := Select(context.Background(), factory, cfg, nil); err == nil {
		t.Fatal("expected error when every backend fails")
	}
}

func TestCreateLocalBackend(t *testing.T) {
	factory := NewFactory(slog.Default())
	cfg := Config{
		Types:        []Type{LocalBackend},
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
	}

	result, err := factory.CreateBackend(context.Background(), LocalBackend, cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer result.Cleanup()

	var _ store.Backend = result.Backend
	if result.Backend.Name() != "local" {
		t.Fatalf("name = %q", result.Backend.Name())
	}
}

func TestTypeValidation(t *testing.T) {
	for _, valid := range []Type{LocalBackend, SheetsBackend, SheetDBBackend} {
		if !valid.IsValid() {
			t.Errorf("%s should be valid", valid)
		}
	}
	if Type("memory").IsValid() {
		t.Error("unknown type should be invalid")
	}
}
