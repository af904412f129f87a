package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tourney/internal/game/battle"
	"github.com/cory-johannsen/tourney/internal/report"
)

// ReportRepository persists the report of one tournament in the
// tournament_battles table. It implements report.Persister.
type ReportRepository struct {
	db           *pgxpool.Pool
	tournamentID uuid.UUID
}

// NewReportRepository creates a ReportRepository for tournamentID.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool, tournamentID uuid.UUID) *ReportRepository {
	return &ReportRepository{db: db, tournamentID: tournamentID}
}

// TournamentID returns the tournament this repository reads and writes.
func (r *ReportRepository) TournamentID() uuid.UUID {
	return r.tournamentID
}

// Save replaces every stored battle of the tournament with the entries of rep
// inside one transaction.
//
// Postcondition: on success the table holds exactly rep.Entries() for this
// tournament, numbered by record order in seq.
func (r *ReportRepository) Save(ctx context.Context, rep *report.Report) error {
	entries := rep.Entries()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning report transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM tournament_battles WHERE tournament_id = $1`,
		r.tournamentID,
	); err != nil {
		return fmt.Errorf("clearing tournament %s: %w", r.tournamentID, err)
	}

	batch := &pgx.Batch{}
	for i, e := range entries {
		summary, err := json.Marshal(e.Summary)
		if err != nil {
			return fmt.Errorf("encoding battle %d of stage %d: %w", e.Battle, e.Stage, err)
		}
		batch.Queue(
			`INSERT INTO tournament_battles (tournament_id, seq, stage, battle, summary)
			 VALUES ($1, $2, $3, $4, $5)`,
			r.tournamentID, i+1, e.Stage, e.Battle, summary,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting battles for tournament %s: %w", r.tournamentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing report: %w", err)
	}
	return nil
}

// Load rebuilds the tournament's report in record order. A tournament with no
// stored battles yields an empty Report.
func (r *ReportRepository) Load(ctx context.Context) (*report.Report, error) {
	rows, err := r.db.Query(ctx,
		`SELECT stage, battle, summary
		   FROM tournament_battles
		  WHERE tournament_id = $1
		  ORDER BY seq`,
		r.tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying tournament %s: %w", r.tournamentID, err)
	}
	defer rows.Close()

	var entries []report.Entry
	for rows.Next() {
		var (
			e   report.Entry
			raw []byte
		)
		if err := rows.Scan(&e.Stage, &e.Battle, &raw); err != nil {
			return nil, fmt.Errorf("scanning battle: %w", err)
		}
		var summary battle.Outcome
		if err := json.Unmarshal(raw, &summary); err != nil {
			return nil, fmt.Errorf("decoding battle %d of stage %d: %w", e.Battle, e.Stage, err)
		}
		e.Summary = summary
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating battles: %w", err)
	}

	return report.FromEntries(entries), nil
}
