// Package board applies algebraic move notation to chess positions.
//
// It is the move-application component of the importer: the PGN tokenizer only
// splits movetext into notation tokens, and this package decides whether a token
// is a legal move from a given position and what position results.
package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"github.com/tphakala/openingbook/internal/errors"
)

// StandardFEN is the standard starting position
const StandardFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Position is an immutable chess position
type Position struct {
	pos *chess.Position
}

// Move is a notation token resolved against the position it was played from
type Move struct {
	move *chess.Move
	san  string
}

// SAN returns the move in standard algebraic notation as produced by the encoder,
// which is the canonical form used for notation ids and fingerprints.
func (m Move) SAN() string {
	return m.san
}

// String implements fmt.Stringer
func (m Move) String() string {
	return m.san
}

// StartingPosition returns the standard initial position
func StartingPosition() Position {
	return Position{pos: chess.StartingPosition()}
}

// ParseFEN decodes a position in Forsyth-Edwards notation
func ParseFEN(fen string) (Position, error) {
	fen = strings.TrimSpace(fen)
	if fen == "" {
		return StartingPosition(), nil
	}

	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return Position{}, errors.New(err).
			Component("board").
			Category(errors.CategoryValidation).
			Context("fen", fen).
			Build()
	}
	return Position{pos: pos}, nil
}

// FEN returns the full FEN of the position, including move counters
func (p Position) FEN() string {
	return p.pos.String()
}

// Key returns the FEN without the half-move clock and full-move number, so
// transpositions reached at different move numbers share one key.
func (p Position) Key() string {
	return PositionKey(p.pos.String())
}

// PositionKey strips the move counters from a FEN string
func PositionKey(fen string) string {
	fields := strings.Fields(fen)
	if len(fields) > 4 {
		fields = fields[:4]
	}
	return strings.Join(fields, " ")
}

// IsStandard reports whether p is the standard starting position
func (p Position) IsStandard() bool {
	return p.Key() == PositionKey(StandardFEN)
}

// Decode resolves a notation token from this position
func (p Position) Decode(notation string) (Move, error) {
	token := normalizeNotation(notation)
	m, err := chess.AlgebraicNotation{}.Decode(p.pos, token)
	if err != nil {
		return Move{}, fmt.Errorf("illegal or unparseable move %q: %w", notation, err)
	}
	return Move{move: m, san: chess.AlgebraicNotation{}.Encode(p.pos, m)}, nil
}

// Apply returns the position after m. m must have been decoded from p.
func (p Position) Apply(m Move) Position {
	return Position{pos: p.pos.Update(m.move)}
}

// normalizeNotation accepts the common zero-castling spelling and drops
// trailing annotation glyphs such as "!?" that are glued to the move.
func normalizeNotation(s string) string {
	s = strings.TrimRight(s, "!?")
	switch strings.TrimRight(s, "+#") {
	case "0-0":
		return "O-O" + s[len("0-0"):]
	case "0-0-0":
		return "O-O-O" + s[len("0-0-0"):]
	}
	return s
}
