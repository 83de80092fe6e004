package board

import (
	"fmt"
	"strings"
)

// Line is a sequence of moves resolved from a start position
type Line struct {
	Start Position
	Moves []Move
}

// ResolveError reports the first token of a sequence that could not be applied
type ResolveError struct {
	Index int    // zero-based position of the failing token
	Token string // the failing token
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("move %s at ply %d: %v", e.Token, e.Index+1, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Resolve replays tokens from start, stopping at the first one that is not a
// legal move. The returned line always has one move per token on success.
func Resolve(start Position, tokens []string) (*Line, error) {
	line := &Line{Start: start, Moves: make([]Move, 0, len(tokens))}

	pos := start
	for i, tok := range tokens {
		m, err := pos.Decode(tok)
		if err != nil {
			return nil, &ResolveError{Index: i, Token: tok, Err: err}
		}
		line.Moves = append(line.Moves, m)
		pos = pos.Apply(m)
	}
	return line, nil
}

// Len returns the number of half-moves in the line
func (l *Line) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Moves)
}

// SANs returns the canonical notation of every move
func (l *Line) SANs() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.Moves))
	for i, m := range l.Moves {
		out[i] = m.SAN()
	}
	return out
}

// Notation joins the canonical notation with single spaces
func (l *Line) Notation() string {
	return strings.Join(l.SANs(), " ")
}

// End replays the line and returns the final position
func (l *Line) End() Position {
	pos := l.Start
	for _, m := range l.Moves {
		pos = pos.Apply(m)
	}
	return pos
}
