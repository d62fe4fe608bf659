package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the run history listing
type RunSummary struct {
	ID                   string                `json:"id"`
	PlanName             string                `json:"plan_name"`
	Mode                 domain.SimulationMode `json:"mode"`
	Seed                 int64                 `json:"seed"`
	CreatedAt            time.Time             `json:"created_at"`
	SuccessRate          decimal.NullDecimal   `json:"success_rate"`
	MedianEndingNetWorth decimal.NullDecimal   `json:"median_ending_net_worth"`
}

// AnnualRow is the stored slice of an annual result
type AnnualRow struct {
	Year        int             `json:"year"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	TaxTotal    decimal.Decimal `json:"tax_total"`
	Withdrawals decimal.Decimal `json:"withdrawals"`
	NetWorthEnd decimal.Decimal `json:"net_worth_end"`
	Insolvent   bool            `json:"insolvent"`
}

// ScenarioRow is the stored slice of a scenario outcome
type ScenarioRow struct {
	Index          int             `json:"index"`
	Label          string          `json:"label"`
	EndingNetWorth decimal.Decimal `json:"ending_net_worth"`
	InsolventYears int             `json:"insolvent_years"`
}

// RunRecord is a stored run with its rows and the original report
type RunRecord struct {
	RunSummary
	Annual    []AnnualRow       `json:"annual"`
	Scenarios []ScenarioRow     `json:"scenarios"`
	Report    *domain.RunReport `json:"report,omitempty"`
}

// SaveRun stores report in one transaction and returns the new run id
func (s *SQLiteStore) SaveRun(ctx context.Context, report *domain.RunReport) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is required")
	}
	doc, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	id := uuid.New().String()
	var (
		seed          int64
		success, mean decimal.NullDecimal
	)
	if sim := report.Simulation; sim != nil {
		seed = sim.Seed
		success = decimal.NewNullDecimal(sim.SuccessRate)
		mean = decimal.NewNullDecimal(sim.MedianEndingNetWorth)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, plan_name, mode, seed, created_at, success_rate, median_ending_net_worth, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, report.PlanName, string(report.Mode), seed, s.now().UTC(), success, mean, string(doc))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	if det := report.Deterministic; det != nil {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO annual_results (run_id, year, income, expenses, tax_total, withdrawals, net_worth_end, insolvent)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("failed to prepare annual insert: %w", err)
		}
		defer stmt.Close()
		for _, a := range det.Annual {
			if _, err := stmt.ExecContext(ctx, id, a.Year, a.Income, a.TotalExpenses(), a.TaxTotal,
				a.Withdrawals, a.NetWorthEnd, a.Insolvent); err != nil {
				return "", fmt.Errorf("failed to insert annual result %d: %w", a.Year, err)
			}
		}
	}

	if sim := report.Simulation; sim != nil {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO scenario_outcomes (run_id, idx, label, ending_net_worth, insolvent_years)
			 VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return "", fmt.Errorf("failed to prepare scenario insert: %w", err)
		}
		defer stmt.Close()
		for _, o := range sim.Scenarios {
			if _, err := stmt.ExecContext(ctx, id, o.Index, o.Label, o.EndingNetWorth, len(o.InsolvencyYears)); err != nil {
				return "", fmt.Errorf("failed to insert scenario %d: %w", o.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// GetRun loads a run with its rows and decoded report
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	var (
		rec  RunRecord
		mode string
		doc  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, plan_name, mode, seed, created_at, success_rate, median_ending_net_worth, report_json
		 FROM runs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.PlanName, &mode, &rec.Seed, &rec.CreatedAt, &rec.SuccessRate, &rec.MedianEndingNetWorth, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	rec.Mode = domain.SimulationMode(mode)

	if doc.Valid && doc.String != "" {
		var report domain.RunReport
		if err := json.Unmarshal([]byte(doc.String), &report); err != nil {
			return nil, fmt.Errorf("failed to decode report: %w", err)
		}
		rec.Report = &report
	}

	if rec.Annual, err = s.annualRows(ctx, id); err != nil {
		return nil, err
	}
	if rec.Scenarios, err = s.scenarioRows(ctx, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLiteStore) annualRows(ctx context.Context, id string) ([]AnnualRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year, income, expenses, tax_total, withdrawals, net_worth_end, insolvent
		 FROM annual_results WHERE run_id = ? ORDER BY year`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual results: %w", err)
	}
	defer rows.Close()

	var out []AnnualRow
	for rows.Next() {
		var r AnnualRow
		if err := rows.Scan(&r.Year, &r.Income, &r.Expenses, &r.TaxTotal, &r.Withdrawals, &r.NetWorthEnd, &r.Insolvent); err != nil {
			return nil, fmt.Errorf("failed to scan annual result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) scenarioRows(ctx context.Context, id string) ([]ScenarioRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, label, ending_net_worth, insolvent_years
		 FROM scenario_outcomes WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario outcomes: %w", err)
	}
	defer rows.Close()

	var out []ScenarioRow
	for rows.Next() {
		var r ScenarioRow
		if err := rows.Scan(&r.Index, &r.Label, &r.EndingNetWorth, &r.InsolventYears); err != nil {
			return nil, fmt.Errorf("failed to scan scenario outcome: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns up to limit runs, newest first. A non-positive limit returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plan_name, mode, seed, created_at, success_rate, median_ending_net_worth
		 FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			r    RunSummary
			mode string
		)
		if err := rows.Scan(&r.ID, &r.PlanName, &mode, &r.Seed, &r.CreatedAt, &r.SuccessRate, &r.MedianEndingNetWorth); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Mode = domain.SimulationMode(mode)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and its rows
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	for _, table := range []string{"annual_results", "scenario_outcomes"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}
