// Package pgn reads chess game archives in Portable Game Notation.
//
// A Source yields lines from a file, a Detector groups those lines into Records
// and hands each completed Record to its listeners, and Record.ParseMoveText turns
// the raw movetext of one record into a main line, a tree of variations, and the
// comments and annotation glyphs attached to it.
package pgn

import (
	"strings"

	"github.com/tphakala/openingbook/internal/board"
)

// Result is the declared outcome of a game
type Result int

const (
	ResultOngoing Result = iota
	ResultWhiteWins
	ResultBlackWins
	ResultDraw
)

// Terminal result tokens as they appear in tags and at the end of movetext
const (
	TokenWhiteWins = "1-0"
	TokenBlackWins = "0-1"
	TokenDraw      = "1/2-1/2"
	TokenOngoing   = "*"
)

var resultTokens = []string{TokenWhiteWins, TokenBlackWins, TokenDraw, TokenOngoing}

// ParseResult maps a Result tag value to a Result. Unknown values are ongoing.
func ParseResult(s string) Result {
	switch strings.TrimSpace(s) {
	case TokenWhiteWins:
		return ResultWhiteWins
	case TokenBlackWins:
		return ResultBlackWins
	case TokenDraw:
		return ResultDraw
	default:
		return ResultOngoing
	}
}

// String returns the PGN token for the result
func (r Result) String() string {
	switch r {
	case ResultWhiteWins:
		return TokenWhiteWins
	case ResultBlackWins:
		return TokenBlackWins
	case ResultDraw:
		return TokenDraw
	default:
		return TokenOngoing
	}
}

// NoParent marks a variation that branches directly off the main line
const NoParent = -1

// Variation is an alternate line. Branch is the variant index current when the
// variation opened; Parent is the branch index of the enclosing variation, or
// NoParent.
type Variation struct {
	Branch int
	Parent int
	Line   *board.Line
}

// Record is one game: its tags, raw movetext and, once parsed, its move tree.
type Record struct {
	ID       string
	Date     string
	White    string
	Black    string
	Result   Result
	PlyCount string
	WhiteElo int
	BlackElo int
	ECO      string
	Opening  string
	FEN      string // empty means the standard start position
	Tags     map[string]string

	MoveText    string
	hasMoveText bool

	parsed      bool
	parseErr    error
	mainLine    *board.Line
	variations  map[int]*Variation
	comments    map[int]string
	annotations map[int][]string
}

// NewRecord returns a record with empty containers
func NewRecord(id, date string) *Record {
	return &Record{
		ID:          id,
		Date:        date,
		Tags:        make(map[string]string),
		variations:  make(map[int]*Variation),
		comments:    make(map[int]string),
		annotations: make(map[int][]string),
	}
}

// HasMoveText reports whether a movetext block was attached
func (r *Record) HasMoveText() bool {
	return r.hasMoveText
}

// SetMoveText attaches raw movetext
func (r *Record) SetMoveText(text string) {
	r.MoveText = text
	r.hasMoveText = true
}

// Parsed reports whether ParseMoveText has run
func (r *Record) Parsed() bool {
	return r.parsed
}

// MainLine returns the resolved main line, nil before a successful parse
func (r *Record) MainLine() *board.Line {
	return r.mainLine
}

// Variations returns the variation tree keyed by branch index
func (r *Record) Variations() map[int]*Variation {
	return r.variations
}

// Comments returns comment text keyed by variant index
func (r *Record) Comments() map[int]string {
	return r.comments
}

// Annotations returns numeric annotation glyphs keyed by variant index
func (r *Record) Annotations() map[int][]string {
	return r.annotations
}

// StartPosition returns the declared start position or the standard one
func (r *Record) StartPosition() (board.Position, error) {
	if r.FEN == "" {
		return board.StartingPosition(), nil
	}
	return board.ParseFEN(r.FEN)
}

// Snippet returns at most limit characters of the movetext with newlines
// replaced by "--", for log lines.
func (r *Record) Snippet(limit int) string {
	s := strings.ReplaceAll(strings.TrimSpace(r.MoveText), "\n", "--")
	runes := []rune(s)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return s
}
