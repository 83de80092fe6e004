package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
	"github.com/tphakala/openingbook/internal/observability/metrics"
	"github.com/tphakala/openingbook/internal/openings"
	"github.com/tphakala/openingbook/internal/pgn"
)

const (
	minPlayerNameLength = 2
	minECOLength        = 3
	snippetLength       = 100
)

// process applies the record gates in order and stores an accepted record.
// A non-nil error means a store failed and the record may be half written.
func (i *Importer) process(ctx context.Context, rec *pgn.Record) (Outcome, error) {
	if rec.Result == pgn.ResultOngoing {
		return OutcomeDuplicate, nil
	}
	if !validPlayer(rec.White) || !validPlayer(rec.Black) {
		return OutcomeInvalidPlayer, nil
	}
	if utf8.RuneCountInString(strings.TrimSpace(rec.ECO)) < minECOLength {
		return OutcomeInvalidECO, nil
	}
	handler, ok := i.deps.Handlers.Find(rec)
	if !ok {
		return OutcomeNoHandler, nil
	}

	if !i.parse(rec) {
		return OutcomeInvalidPGN, nil
	}
	line := rec.MainLine()

	ml := &datastore.MainLine{
		Fingerprint: Fingerprint(line),
		Moves:       line.Notation(),
		Plies:       line.Len(),
	}
	if !line.Start.IsStandard() {
		ml.StartFEN = line.Start.Key()
	}
	wasNew, err := i.deps.Deduper.InsertIfNew(ctx, ml)
	if err != nil {
		return "", err
	}
	if !wasNew {
		return OutcomeDuplicate, nil
	}

	triples, err := i.triples(ctx, line)
	if err != nil {
		return "", err
	}
	if err := i.deps.Book.StoreMoves(ctx, handler.Name, triples, rec.Result); err != nil {
		return "", err
	}

	if i.settings.StoreGames && i.deps.Archive != nil {
		if _, err := i.deps.Archive.Save(ctx, i.game(rec, ml.ID, handler.Name)); err != nil {
			return "", err
		}
	}

	i.deps.Recorder.RecordPlies(line.Len())
	return OutcomeImported, nil
}

// parse triggers the movetext parse and logs a failure with a snippet
func (i *Importer) parse(rec *pgn.Record) bool {
	if !rec.HasMoveText() {
		i.log.Debug("Record has no movetext", logger.String("record", rec.ID))
		return false
	}

	start := time.Now()
	err := rec.ParseMoveText()
	i.deps.Recorder.RecordDuration(metrics.OpParse, time.Since(start).Seconds())
	if err == nil {
		return true
	}

	i.deps.Recorder.RecordError(metrics.OpParse, string(errors.CategoryMoveText))
	i.log.Warn("Invalid movetext",
		logger.String("record", rec.ID),
		logger.String("snippet", rec.Snippet(snippetLength)),
		logger.Error(err))
	return false
}

// triples replays line and returns the book steps, capped at MaxPlies moves
func (i *Importer) triples(ctx context.Context, line *board.Line) ([]openings.Triple, error) {
	plies := min(line.Len(), i.settings.MaxPlies)

	pos := line.Start
	out := make([]openings.Triple, 0, plies+1)
	out = append(out, openings.Triple{To: pos.Key()})

	for _, m := range line.Moves[:plies] {
		id, err := i.deps.Notations.GetOrCreate(ctx, m.SAN())
		if err != nil {
			return nil, err
		}
		next := pos.Apply(m)
		out = append(out, openings.Triple{From: pos.Key(), NotationID: id, To: next.Key()})
		pos = next
	}
	return out, nil
}

func (i *Importer) game(rec *pgn.Record, mainLineID uint, handler string) *datastore.Game {
	return &datastore.Game{
		MainLineID: mainLineID,
		White:      rec.White,
		Black:      rec.Black,
		Result:     rec.Result.String(),
		EventDate:  rec.Date,
		WhiteElo:   rec.WhiteElo,
		BlackElo:   rec.BlackElo,
		ECO:        rec.ECO,
		Opening:    rec.Opening,
		Handler:    handler,
		MoveText:   rec.MoveText,
		RunID:      i.runID,
	}
}

// Fingerprint is the hex SHA-256 of the canonical main line notation. Lines
// from a non-standard start are prefixed with the start position.
func Fingerprint(line *board.Line) string {
	h := sha256.New()
	if !line.Start.IsStandard() {
		h.Write([]byte(line.Start.Key()))
		h.Write([]byte{'|'})
	}
	h.Write([]byte(line.Notation()))
	return hex.EncodeToString(h.Sum(nil))
}

// validPlayer rejects missing names, single letters and "?" placeholders
func validPlayer(name string) bool {
	name = strings.TrimSpace(name)
	return utf8.RuneCountInString(name) >= minPlayerNameLength && !strings.HasPrefix(name, "?")
}
