// Package history stores report summaries of past runs so coverage can be
// compared over time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chriserin/stepcov/internal/db"
	"github.com/chriserin/stepcov/internal/logging"
	"github.com/chriserin/stepcov/internal/report"
)

var ErrRunNotFound = errors.New("run not found")

// Store is the run history backed by SQLite.
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline run.
type Run struct {
	ID               string
	Root             string
	Timestamp        string
	TotalFeatures    int
	TotalScenarios   int
	TotalSteps       int
	TotalDefinitions int
	UniqueSteps      int
	MatchedSteps     int
	Coverage         int
	MissingCount     int
}

// FeatureCount is the per-feature row stored with a run.
type FeatureCount struct {
	Path          string
	Name          string
	ScenarioCount int
}

// Delta compares the missing steps of two runs.
type Delta struct {
	NewlyMissing []string
	NewlyCovered []string
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool {
	return len(d.NewlyMissing) == 0 && len(d.NewlyCovered) == 0
}

func Open(path string) (*Store, error) {
	sqlDB, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: sqlDB}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores rep's summary, per-feature counts and missing steps in one
// transaction and returns the new run id.
func (s *Store) Record(ctx context.Context, rep *report.Report, root string) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	sum := rep.Summary
	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, root, report_timestamp, total_features, total_scenarios,
		total_steps, total_definitions, unique_steps, matched_steps, coverage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, root, rep.Timestamp, sum.TotalFeatures, sum.TotalScenarios,
		sum.TotalSteps, sum.TotalStepDefinitions, sum.UniqueSteps, sum.MatchedSteps, sum.StepCoverage)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, f := range rep.Features {
		_, err := tx.ExecContext(ctx, `INSERT INTO run_features (run_id, file_path, name, scenario_count) VALUES (?, ?, ?, ?)`,
			id, f.Path, f.Name, f.ScenarioCount)
		if err != nil {
			return "", fmt.Errorf("inserting feature %s: %w", f.Path, err)
		}
	}

	for _, step := range rep.MissingSteps {
		if _, err := tx.ExecContext(ctx, `INSERT INTO run_missing_steps (run_id, step) VALUES (?, ?)`, id, step); err != nil {
			return "", fmt.Errorf("inserting missing step: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	logging.Info("history", "recorded run %s (%d%% coverage)", id, sum.StepCoverage)
	return id, nil
}

// Runs returns up to limit runs, newest first. A limit of zero or less returns
// every run.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.root, r.report_timestamp, r.total_features, r.total_scenarios, r.total_steps,
			r.total_definitions, r.unique_steps, r.matched_steps, r.coverage,
			(SELECT COUNT(*) FROM run_missing_steps m WHERE m.run_id = r.id)
		FROM runs r
		ORDER BY r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Root, &r.Timestamp, &r.TotalFeatures, &r.TotalScenarios, &r.TotalSteps,
			&r.TotalDefinitions, &r.UniqueSteps, &r.MatchedSteps, &r.Coverage, &r.MissingCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// MissingSteps returns the missing steps stored for runID in report order.
func (s *Store) MissingSteps(ctx context.Context, runID string) ([]string, error) {
	if err := s.exists(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT step FROM run_missing_steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying missing steps: %w", err)
	}
	defer rows.Close()

	steps := []string{}
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			return nil, fmt.Errorf("scanning missing step: %w", err)
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Features returns the per-feature counts stored for runID.
func (s *Store) Features(ctx context.Context, runID string) ([]FeatureCount, error) {
	if err := s.exists(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT file_path, name, scenario_count FROM run_features WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	var out []FeatureCount
	for rows.Next() {
		var f FeatureCount
		if err := rows.Scan(&f.Path, &f.Name, &f.ScenarioCount); err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// LastDelta compares the two most recent runs. ok is false when fewer than two
// runs are recorded.
func (s *Store) LastDelta(ctx context.Context) (delta Delta, ok bool, err error) {
	runs, err := s.Runs(ctx, 2)
	if err != nil {
		return Delta{}, false, err
	}
	if len(runs) < 2 {
		return Delta{}, false, nil
	}
	cur, err := s.MissingSteps(ctx, runs[0].ID)
	if err != nil {
		return Delta{}, false, err
	}
	prev, err := s.MissingSteps(ctx, runs[1].ID)
	if err != nil {
		return Delta{}, false, err
	}
	return Diff(prev, cur), true, nil
}

func (s *Store) exists(ctx context.Context, runID string) error {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs WHERE id = ?`, runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return fmt.Errorf("querying run %s: %w", runID, err)
	}
	return nil
}

// Diff returns the steps missing in cur but not prev, and the steps missing in
// prev but no longer in cur. Both keep the order of their source list.
func Diff(prev, cur []string) Delta {
	inPrev := make(map[string]bool, len(prev))
	for _, s := range prev {
		inPrev[s] = true
	}
	inCur := make(map[string]bool, len(cur))
	for _, s := range cur {
		inCur[s] = true
	}

	d := Delta{NewlyMissing: []string{}, NewlyCovered: []string{}}
	for _, s := range cur {
		if !inPrev[s] {
			d.NewlyMissing = append(d.NewlyMissing, s)
		}
	}
	for _, s := range prev {
		if !inCur[s] {
			d.NewlyCovered = append(d.NewlyCovered, s)
		}
	}
	return d
}
