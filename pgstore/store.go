package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peter-xbs/FSM/logger"
	"github.com/peter-xbs/FSM/types"
	"github.com/rs/zerolog"
)

const schema = `
CREATE TABLE IF NOT EXISTS relationships (
  id BIGSERIAL PRIMARY KEY,
  doc_id TEXT NOT NULL,
  chunk_id TEXT NOT NULL,
  config TEXT NOT NULL,
  sentence INTEGER NOT NULL,
  relation_id TEXT NOT NULL,
  trigger_id TEXT NOT NULL,
  trigger_text TEXT NOT NULL,
  trigger_label TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  receiver_text TEXT NOT NULL,
  receiver_label TEXT NOT NULL,
  relation_type TEXT NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_relationships_doc_id ON relationships (doc_id);
CREATE INDEX IF NOT EXISTS idx_relationships_chunk_config ON relationships (chunk_id, config);
`

// Store keeps extracted relationships in PostgreSQL.
type Store struct {
	db          *sql.DB
	relexLogger zerolog.Logger

	schemaMu    sync.Mutex
	schemaReady bool
}

// Row is one stored relationship.
type Row struct {
	DocID         string
	ChunkID       string
	Config        string
	Sentence      int
	RelationID    string
	TriggerID     string
	TriggerText   string
	TriggerLabel  string
	ReceiverID    string
	ReceiverText  string
	ReceiverLabel string
	Type          string
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach relationship store: %w", err)
	}
	return New(db), nil
}

func New(db *sql.DB) *Store {
	return &Store{
		db:          db,
		relexLogger: logger.NewLogger("Relationship store"),
	}
}

// EnsureSchema creates the relationships table. A failed attempt is retried
// by the next call.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		s.relexLogger.Err(err).Msg("Could not create relationships schema")
		return fmt.Errorf("failed to create relationships schema: %w", err)
	}
	s.schemaReady = true
	return nil
}

// SaveRelationships replaces the stored rows of every (chunk, configuration)
// pair found in responses inside one transaction, so a retried chunk does not
// duplicate its rows.
func (s *Store) SaveRelationships(ctx context.Context, docID string, responses map[string]types.RelationResponse) (err error) {
	if err = s.EnsureSchema(ctx); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, name := range configNames(responses) {
		if _, err = tx.ExecContext(ctx,
			`DELETE FROM relationships WHERE chunk_id = $1 AND config = $2`,
			responses[name].DocId, name); err != nil {
			return err
		}
	}

	rows := Flatten(docID, responses)
	for _, row := range rows {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO relationships (
  doc_id, chunk_id, config, sentence, relation_id,
  trigger_id, trigger_text, trigger_label,
  receiver_id, receiver_text, receiver_label, relation_type
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			row.DocID, row.ChunkID, row.Config, row.Sentence, row.RelationID,
			row.TriggerID, row.TriggerText, row.TriggerLabel,
			row.ReceiverID, row.ReceiverText, row.ReceiverLabel, row.Type); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	s.relexLogger.Debug().Str("document_id", docID).Int("rows", len(rows)).Msg("Stored relationships")
	return nil
}

// Relationships lists the stored rows of a document ordered as they were
// inserted.
func (s *Store) Relationships(ctx context.Context, docID string) ([]Row, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT doc_id, chunk_id, config, sentence, relation_id,
  trigger_id, trigger_text, trigger_label,
  receiver_id, receiver_text, receiver_label, relation_type
FROM relationships WHERE doc_id = $1 ORDER BY id`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.DocID, &row.ChunkID, &row.Config, &row.Sentence, &row.RelationID,
			&row.TriggerID, &row.TriggerText, &row.TriggerLabel,
			&row.ReceiverID, &row.ReceiverText, &row.ReceiverLabel, &row.Type,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Flatten turns responses into rows ordered by configuration name, keeping
// the relation order of each response.
func Flatten(docID string, responses map[string]types.RelationResponse) []Row {
	var rows []Row
	for _, name := range configNames(responses) {
		response := responses[name]
		for _, rel := range response.Relations {
			rows = append(rows, Row{
				DocID:         docID,
				ChunkID:       response.DocId,
				Config:        name,
				Sentence:      rel.Sentence,
				RelationID:    rel.Id,
				TriggerID:     rel.Trigger.ID,
				TriggerText:   rel.Trigger.Text,
				TriggerLabel:  rel.Trigger.Label,
				ReceiverID:    rel.Receiver.ID,
				ReceiverText:  rel.Receiver.Text,
				ReceiverLabel: rel.Receiver.Label,
				Type:          rel.Type,
			})
		}
	}
	return rows
}

func configNames(responses map[string]types.RelationResponse) []string {
	names := make([]string, 0, len(responses))
	for name := range responses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
