package datastore

import (
	"context"
	"time"
)

const tableImportRuns = "import_runs"

// RunJournal records one row per imported file
type RunJournal struct {
	s *Session
}

// NewRunJournal returns a run journal on s
func NewRunJournal(s *Session) *RunJournal {
	return &RunJournal{s: s}
}

// Start writes a running entry for file
func (j *RunJournal) Start(ctx context.Context, runID, file string) (run *ImportRun, err error) {
	start := time.Now()
	defer func() { j.s.observe(opInsert, tableImportRuns, start, err) }()

	tx, err := j.s.Tx()
	if err != nil {
		return nil, err
	}

	run = &ImportRun{
		RunID:     runID,
		File:      file,
		StartedAt: time.Now(),
		Status:    RunRunning,
	}
	if err := tx.WithContext(ctx).Create(run).Error; err != nil {
		return nil, dbError(err, "start_run", "run_id", runID, "file", file)
	}
	return run, nil
}

// Finish stores the final counters and status of run. A non-nil cause marks
// the run failed.
func (j *RunJournal) Finish(ctx context.Context, run *ImportRun, cause error) (err error) {
	start := time.Now()
	defer func() { j.s.observe(opUpdate, tableImportRuns, start, err) }()

	tx, err := j.s.Tx()
	if err != nil {
		return err
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = RunCompleted
	if cause != nil {
		run.Status = RunFailed
		run.Error = cause.Error()
	}
	if err := tx.WithContext(ctx).Save(run).Error; err != nil {
		return dbError(err, "finish_run", "run_id", run.RunID)
	}
	return nil
}

// Runs returns the journal entries of one run, oldest first
func (j *RunJournal) Runs(ctx context.Context, runID string) (runs []ImportRun, err error) {
	start := time.Now()
	defer func() { j.s.observe(opQuery, tableImportRuns, start, err) }()

	tx, err := j.s.Tx()
	if err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&runs).Error; err != nil {
		return nil, dbError(err, "list_runs", "run_id", runID)
	}
	return runs, nil
}
