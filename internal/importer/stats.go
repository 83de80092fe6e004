package importer

import (
	"github.com/tphakala/openingbook/internal/logger"
)

// Outcome is what happened to one record
type Outcome string

const (
	OutcomeImported      Outcome = "imported"
	OutcomeDuplicate     Outcome = "duplicate"
	OutcomeInvalidPlayer Outcome = "invalid_player"
	OutcomeInvalidECO    Outcome = "invalid_eco"
	OutcomeNoHandler     Outcome = "no_handler"
	OutcomeInvalidPGN    Outcome = "invalid_pgn"
)

// Stats counts record outcomes. Games with an ongoing result are counted as
// duplicates.
type Stats struct {
	Records       int
	Imported      int
	Duplicates    int
	InvalidPlayer int
	InvalidECO    int
	NoHandler     int
	InvalidPGN    int
}

// Add counts one record with outcome o
func (s *Stats) Add(o Outcome) {
	s.Records++
	switch o {
	case OutcomeImported:
		s.Imported++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeInvalidPlayer:
		s.InvalidPlayer++
	case OutcomeInvalidECO:
		s.InvalidECO++
	case OutcomeNoHandler:
		s.NoHandler++
	case OutcomeInvalidPGN:
		s.InvalidPGN++
	}
}

// Merge adds the counters of other to s
func (s *Stats) Merge(other Stats) {
	s.Records += other.Records
	s.Imported += other.Imported
	s.Duplicates += other.Duplicates
	s.InvalidPlayer += other.InvalidPlayer
	s.InvalidECO += other.InvalidECO
	s.NoHandler += other.NoHandler
	s.InvalidPGN += other.InvalidPGN
}

// Fields returns the counters as log fields
func (s Stats) Fields() []logger.Field {
	return []logger.Field{
		logger.Int("records", s.Records),
		logger.Int("imported", s.Imported),
		logger.Int("duplicates", s.Duplicates),
		logger.Int("invalid_player", s.InvalidPlayer),
		logger.Int("invalid_eco", s.InvalidECO),
		logger.Int("no_handler", s.NoHandler),
		logger.Int("invalid_pgn", s.InvalidPGN),
	}
}
