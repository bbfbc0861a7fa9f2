package db

import (
	"fmt"
	"time"
)

// Run statuses recorded in the runs table.
const (
	RunStatusRunning   = "running"
	RunStatusFinished  = "finished"
	RunStatusCancelled = "cancelled"
	RunStatusFailed    = "failed"
)

// StartRun records a new run with the given external run id (a ULID).
func (db *DB) StartRun(runID string) error {
	if _, err := db.Exec(
		`INSERT INTO runs (run_id, status) VALUES (?, ?)`,
		runID, RunStatusRunning,
	); err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun stamps the run's final status and finish time.
func (db *DB) FinishRun(runID, status string) error {
	if _, err := db.Exec(
		`UPDATE runs SET status = ?, finished_at = ? WHERE run_id = ?`,
		status, time.Now().UTC(), runID,
	); err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}
	return nil
}

// RunStatus returns the recorded status for a run id.
func (db *DB) RunStatus(runID string) (string, error) {
	var status string
	err := db.QueryRow(`SELECT status FROM runs WHERE run_id = ?`, runID).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to query run status: %w", err)
	}
	return status, nil
}
