// Package importer runs PGN archives through the record gates, the notation
// id cache and the opening book.
//
// One Importer serves one run. Records are handled synchronously as the
// detector emits them and nothing is shared between goroutines.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
	"github.com/tphakala/openingbook/internal/notation"
	"github.com/tphakala/openingbook/internal/observability/metrics"
	"github.com/tphakala/openingbook/internal/openings"
	"github.com/tphakala/openingbook/internal/pgn"
)

// NotationIDs hands out surrogate ids for move notation
type NotationIDs interface {
	GetOrCreate(ctx context.Context, text string) (uint, error)
	Stats() notation.Stats
}

// Deduper remembers every main line imported so far
type Deduper interface {
	InsertIfNew(ctx context.Context, line *datastore.MainLine) (bool, error)
}

// Archive stores imported games
type Archive interface {
	Save(ctx context.Context, game *datastore.Game) (bool, error)
}

// HandlerFinder picks the opening book of a record
type HandlerFinder interface {
	Find(rec *pgn.Record) (*openings.Handler, bool)
}

// StatsConsumer aggregates the moves of imported games
type StatsConsumer interface {
	StoreMoves(ctx context.Context, handler string, triples []openings.Triple, result pgn.Result) error
	CommitAll() error
	RollbackAll() error
}

// Committer makes batched store writes durable or drops them
type Committer interface {
	Commit() error
	Rollback() error
}

// Journal records the start and end of each imported file
type Journal interface {
	Start(ctx context.Context, runID, file string) (*datastore.ImportRun, error)
	Finish(ctx context.Context, run *datastore.ImportRun, cause error) error
}

// Recorder receives import metrics
type Recorder interface {
	metrics.Recorder
	RecordPlies(plies int)
}

type nopRecorder struct {
	metrics.NopRecorder
}

func (nopRecorder) RecordPlies(int) {}

// Deps are the collaborators of an Importer. Archive, Journal, Recorder and
// Logger may be nil.
type Deps struct {
	Notations NotationIDs
	Deduper   Deduper
	Archive   Archive
	Handlers  HandlerFinder
	Book      StatsConsumer
	Store     Committer
	Journal   Journal
	Recorder  Recorder
	Logger    logger.Logger
}

// Importer is the import orchestrator of one run
type Importer struct {
	settings conf.ImportSettings
	deps     Deps
	log      logger.Logger
	runID    string

	total       Stats
	file        Stats // counters of the file in progress
	durable     Stats // file counters as of its last commit
	sinceCommit int
	started     time.Time
	progress    rate.Sometimes

	closers []func() error
}

// New returns an importer with a fresh run id
func New(settings conf.ImportSettings, deps Deps) *Importer {
	if settings.CommitInterval <= 0 {
		settings.CommitInterval = conf.DefaultCommitInterval
	}
	if settings.MaxPlies <= 0 {
		settings.MaxPlies = conf.DefaultMaxPlies
	}
	if settings.ProgressInterval <= 0 {
		settings.ProgressInterval = conf.DefaultProgressInterval
	}
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}

	runID := uuid.New().String()
	log := deps.Logger
	if log == nil {
		log = logger.Global().Module("importer")
	}

	imp := &Importer{
		settings: settings,
		deps:     deps,
		log:      log.With(logger.String("run_id", runID)),
		runID:    runID,
	}
	if settings.ProgressThrottle > 0 {
		imp.progress.Interval = settings.ProgressThrottle
	} else {
		imp.progress.Every = 1
	}
	return imp
}

// RunID returns the identifier written to the journal and to archived games
func (i *Importer) RunID() string {
	return i.runID
}

// Stats returns the counters of all files imported so far
func (i *Importer) Stats() Stats {
	return i.total
}

// Run imports every path in order. Missing files are skipped. The context is
// checked between files; a file in progress always runs to its end, so
// cancelling never leaves a half-written file behind.
func (i *Importer) Run(ctx context.Context, paths []string) (Stats, error) {
	i.started = time.Now()
	i.log.Info("Import started", logger.Int("files", len(paths)))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			i.logSummary("Import interrupted")
			return i.total, err
		}
		if _, err := i.ImportFile(ctx, path); err != nil {
			i.logSummary("Import failed")
			return i.total, err
		}
	}

	i.logSummary("Import finished")
	return i.total, nil
}

// ImportFile imports one archive and commits at its end. A path that cannot
// be found, even under the base directory, is logged and skipped.
//
// Cancellation of ctx does not reach the store writes of the file; callers
// check ctx between files.
func (i *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	if i.started.IsZero() {
		i.started = time.Now()
	}

	resolved, found := conf.ResolveInputPath(path, i.settings.BaseDir)
	if !found {
		i.log.Warn("Input file not found, skipping", logger.String("file", path))
		i.deps.Recorder.RecordOperation(metrics.OpFile, "skipped")
		return Stats{}, nil
	}

	work := context.WithoutCancel(ctx)
	fileStart := time.Now()
	log := i.log.With(logger.String("file", resolved))
	log.Info("Importing file")

	var run *datastore.ImportRun
	if i.deps.Journal != nil {
		var err error
		if run, err = i.deps.Journal.Start(work, i.runID, resolved); err != nil {
			return Stats{}, err
		}
		if err := i.deps.Store.Commit(); err != nil {
			return Stats{}, err
		}
	}

	i.file, i.durable = Stats{}, Stats{}
	err := i.readFile(work, resolved)
	if err == nil {
		err = i.commit()
	}
	if err != nil {
		i.rollback()
	}

	// Records of a rolled back batch are not counted.
	fileStats := i.durable
	i.total.Merge(fileStats)
	if run != nil {
		fillRun(run, fileStats)
		if jerr := i.deps.Journal.Finish(work, run, err); jerr != nil && err == nil {
			err = jerr
		}
		if cerr := i.deps.Store.Commit(); cerr != nil && err == nil {
			err = cerr
		}
	}

	elapsed := time.Since(fileStart)
	i.deps.Recorder.RecordDuration(metrics.OpFile, elapsed.Seconds())
	if err != nil {
		i.deps.Recorder.RecordOperation(metrics.OpFile, metrics.StatusError)
		log.Error("File import failed", logger.Error(err))
		return fileStats, err
	}
	i.deps.Recorder.RecordOperation(metrics.OpFile, metrics.StatusSuccess)

	fields := append(fileStats.Fields(), logger.Duration("duration", elapsed))
	log.Info("File imported", fields...)
	return fileStats, nil
}

func (i *Importer) readFile(ctx context.Context, path string) error {
	src, err := pgn.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			i.log.Warn("Failed to close input file", logger.String("file", path), logger.Error(cerr))
		}
	}()

	det := pgn.NewDetector(pgn.ListenerFunc(func(rec *pgn.Record) error {
		return i.handleRecord(ctx, rec)
	}))
	if err := det.Run(src); err != nil {
		return errors.New(err).
			Component("importer").
			Category(errors.CategoryProcessing).
			FileContext(path).
			Context("line", src.LineNumber()).
			Build()
	}
	return nil
}

// handleRecord runs one record through the gates and counts its outcome.
// Only store failures are returned; they abort the run.
func (i *Importer) handleRecord(ctx context.Context, rec *pgn.Record) error {
	outcome, err := i.process(ctx, rec)
	if err != nil {
		i.deps.Recorder.RecordError(metrics.OpRecord, string(errors.CategoryDatabase))
		return err
	}

	i.file.Add(outcome)
	i.deps.Recorder.RecordOperation(metrics.OpRecord, string(outcome))

	i.sinceCommit++
	if i.sinceCommit >= i.settings.CommitInterval {
		if err := i.commit(); err != nil {
			return err
		}
	}

	if processed := i.total.Records + i.file.Records; processed%i.settings.ProgressInterval == 0 {
		i.progress.Do(func() { i.logProgress(processed) })
	}
	return nil
}

// commit flushes the store and the book
func (i *Importer) commit() error {
	if err := i.deps.Store.Commit(); err != nil {
		return err
	}
	if err := i.deps.Book.CommitAll(); err != nil {
		return err
	}
	i.sinceCommit = 0
	i.durable = i.file
	i.deps.Recorder.RecordOperation(metrics.OpTransaction, metrics.StatusSuccess)
	return nil
}

// rollback drops the writes of the current batch, which may end in a
// partially stored record
func (i *Importer) rollback() {
	if err := i.deps.Store.Rollback(); err != nil {
		i.log.Warn("Store rollback failed", logger.Error(err))
	}
	if err := i.deps.Book.RollbackAll(); err != nil {
		i.log.Warn("Book rollback failed", logger.Error(err))
	}
	i.sinceCommit = 0
}

func (i *Importer) logProgress(processed int) {
	elapsed := time.Since(i.started)
	perSecond := 0.0
	if elapsed > 0 {
		perSecond = float64(processed) / elapsed.Seconds()
	}
	i.log.Info("Import progress",
		logger.Int("records", processed),
		logger.Float64("records_per_second", perSecond),
		logger.Duration("elapsed", elapsed))
}

func (i *Importer) logSummary(msg string) {
	fields := append(i.total.Fields(), logger.Duration("duration", time.Since(i.started)))
	i.log.Info(msg, fields...)
	i.logCacheStats()
	i.logResources()
}

func (i *Importer) logCacheStats() {
	st := i.deps.Notations.Stats()
	i.log.Info("Notation cache",
		logger.Int("forward_size", st.Forward.Size),
		logger.Uint64("forward_hits", st.Forward.Hits),
		logger.Uint64("forward_misses", st.Forward.Misses),
		logger.Int("reverse_size", st.Reverse.Size),
		logger.Uint64("reverse_hits", st.Reverse.Hits),
		logger.Uint64("reverse_misses", st.Reverse.Misses))
}

func fillRun(run *datastore.ImportRun, s Stats) {
	run.Records = s.Records
	run.Imported = s.Imported
	run.Duplicates = s.Duplicates
	run.InvalidPlayer = s.InvalidPlayer
	run.InvalidECO = s.InvalidECO
	run.NoHandler = s.NoHandler
	run.InvalidPGN = s.InvalidPGN
}
