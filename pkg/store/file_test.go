package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jllopis/agentdir/pkg/agentcard"
	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"
)

func testCard(name string) agentcard.Card {
	return agentcard.Card{
		"name":               name,
		"description":        "test agent",
		"url":                "https://example.com/" + name,
		"version":            "1.0.0",
		"capabilities":       map[string]any{},
		"defaultInputModes":  []any{"text/plain"},
		"defaultOutputModes": []any{"text/plain"},
		"skills":             []any{},
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	s := NewFileStore(path)
	ctx := context.Background()

	card := testCard("alpha")
	if _, err := s.Create(ctx, card); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, ok, err := s.Get(ctx, "alpha")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(map[string]any(got), map[string]any(card)) {
		t.Fatalf("round-trip mismatch: %v != %v", got, card)
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	ctx := context.Background()

	if _, err := NewFileStore(path).Create(ctx, testCard("alpha")); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, ok, err := NewFileStore(path).Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("card not persisted to disk")
	}
}

func TestFileStore_FileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	ctx := context.Background()
	if _, err := NewFileStore(path).Create(ctx, testCard("alpha")); err != nil {
		t.Fatalf("create: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var byName map[string]map[string]any
	if err := json.Unmarshal(data, &byName); err != nil {
		t.Fatalf("file is not an object keyed by name: %v", err)
	}
	if _, ok := byName["alpha"]; !ok {
		t.Fatal("expected key \"alpha\" in store file")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("expected pretty-printed output")
	}
}

func TestFileStore_CreateDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	s := NewFileStore(path)
	ctx := context.Background()

	original := testCard("alpha")
	if _, err := s.Create(ctx, original); err != nil {
		t.Fatalf("create: %v", err)
	}

	dupe := testCard("alpha")
	dupe["version"] = "9.9.9"
	_, err := s.Create(ctx, dupe)
	if !agentdirerrors.IsAlreadyExists(err) {
		t.Fatalf("expected ALREADY_EXISTS, got %v", err)
	}

	got, _, err := s.Get(ctx, "alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Version() != "1.0.0" {
		t.Fatalf("failed create mutated stored card: version %q", got.Version())
	}
}

func TestFileStore_ReplaceAbsent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "agents.json"))
	_, ok, err := s.Replace(context.Background(), "ghost", testCard("ghost"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if ok {
		t.Fatal("replace of absent name must report absent")
	}
}

func TestFileStore_DeleteIdempotent(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "agents.json"))
	ctx := context.Background()

	if deleted, err := s.Delete(ctx, "alpha"); err != nil || deleted {
		t.Fatalf("delete absent: deleted=%v err=%v", deleted, err)
	}
	if _, err := s.Create(ctx, testCard("alpha")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if deleted, err := s.Delete(ctx, "alpha"); err != nil || !deleted {
		t.Fatalf("first delete: deleted=%v err=%v", deleted, err)
	}
	if deleted, err := s.Delete(ctx, "alpha"); err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cards, err := NewFileStore(path).List(context.Background())
	if err != nil {
		t.Fatalf("expected lenient load, got %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected empty store, got %d cards", len(cards))
	}
}

func TestFileStore_CorruptFileStrict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agents.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := NewFileStore(path, WithStrictLoad()).List(context.Background())
	if err == nil {
		t.Fatal("expected strict load to fail on corrupt file")
	}
	if agentdirerrors.Code(err) != agentdirerrors.CodeStorage {
		t.Fatalf("expected STORAGE_ERROR, got %v", err)
	}
}

func TestFileStore_MissingFileStartsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", "agents.json"))
	cards, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(cards) != 0 {
		t.Fatalf("expected empty store, got %d", len(cards))
	}
}

func TestFileStore_GetReturnsCopy(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "agents.json"))
	ctx := context.Background()
	if _, err := s.Create(ctx, testCard("alpha")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _, _ := s.Get(ctx, "alpha")
	got["version"] = "tampered"

	again, _, _ := s.Get(ctx, "alpha")
	if again.Version() != "1.0.0" {
		t.Fatal("caller mutation leaked into the store cache")
	}
}
