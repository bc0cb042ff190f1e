package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jllopis/agentdir/pkg/agentcard"
	agentdirerrors "github.com/jllopis/agentdir/pkg/errors"

	_ "modernc.org/sqlite"
)

const agentTable = "agents"

// SQLiteStore persists agent cards in a SQLite database, one row per agent
// with the card serialized as compact JSON text. Name uniqueness rides on the
// primary-key constraint.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store and ensures the schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureSQLiteSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLiteStore opens (or creates) the database at path and returns a store
// over it. Use ":memory:" for an ephemeral database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "opening database "+path, err)
	}
	return NewSQLiteStore(db)
}

func ensureSQLiteSchema(db *sql.DB) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		agent_card TEXT NOT NULL
	);`, agentTable)
	if _, err := db.Exec(stmt); err != nil {
		return agentdirerrors.New(agentdirerrors.CodeStorage, "ensuring schema", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]agentcard.Card, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT agent_card FROM %s", agentTable))
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "listing agents", err)
	}
	defer rows.Close()

	out := make([]agentcard.Card, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "scanning agent row", err)
		}
		card, err := unmarshalCard(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	if err := rows.Err(); err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "listing agents", err)
	}
	return out, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, name string) (agentcard.Card, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT agent_card FROM %s WHERE name = ?", agentTable), name).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, agentdirerrors.New(agentdirerrors.CodeStorage, "loading agent "+name, err)
	}
	card, err := unmarshalCard(payload)
	if err != nil {
		return nil, false, err
	}
	return card, true, nil
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, card agentcard.Card) (agentcard.Card, error) {
	name := card.Name()
	payload, err := json.Marshal(card)
	if err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "encoding agent "+name, err)
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (name, agent_card) VALUES (?, ?)", agentTable),
		name, payload)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, agentdirerrors.Newf(agentdirerrors.CodeAlreadyExists,
				"agent %q is already registered", name)
		}
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "storing agent "+name, err)
	}
	return card, nil
}

// Replace implements Store.
func (s *SQLiteStore) Replace(ctx context.Context, name string, card agentcard.Card) (agentcard.Card, bool, error) {
	payload, err := json.Marshal(card)
	if err != nil {
		return nil, false, agentdirerrors.New(agentdirerrors.CodeStorage, "encoding agent "+name, err)
	}
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET agent_card = ? WHERE name = ?", agentTable),
		payload, name)
	if err != nil {
		return nil, false, agentdirerrors.New(agentdirerrors.CodeStorage, "replacing agent "+name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, agentdirerrors.New(agentdirerrors.CodeStorage, "replacing agent "+name, err)
	}
	if affected == 0 {
		return nil, false, nil
	}
	return card, true, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, name string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE name = ?", agentTable), name)
	if err != nil {
		return false, agentdirerrors.New(agentdirerrors.CodeStorage, "deleting agent "+name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, agentdirerrors.New(agentdirerrors.CodeStorage, "deleting agent "+name, err)
	}
	return affected > 0, nil
}

// isUniqueViolation reports whether err is a SQLite primary-key collision.
// modernc.org/sqlite surfaces these as text, so the match is on the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func unmarshalCard(payload []byte) (agentcard.Card, error) {
	var card agentcard.Card
	if err := json.Unmarshal(payload, &card); err != nil {
		return nil, agentdirerrors.New(agentdirerrors.CodeStorage, "decoding stored agent card", err)
	}
	return card, nil
}

var _ Store = (*SQLiteStore)(nil)
