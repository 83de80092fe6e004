package pgn

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/errors"
)

const newlineToken = "\n"

var structuralSpacer = strings.NewReplacer(
	"{", " { ",
	"}", " } ",
	"(", " ( ",
	")", " ) ",
	"\n", " \n ",
)

// MoveTextError reports a sequence of the movetext that could not be resolved
// into legal moves.
type MoveTextError struct {
	RecordID string
	Branch   int    // variant index of the failing variation, NoParent for the main line
	Token    string // first token that did not resolve
	Fragment string // the notation sequence being resolved
	Context  string // main line, or the variation and its parent
	Err      error
}

func (e *MoveTextError) Error() string {
	return fmt.Sprintf("record %s: %s: %v", e.RecordID, e.Context, e.Err)
}

func (e *MoveTextError) Unwrap() error {
	return e.Err
}

// ErrorCategory implements errors.CategorizedError
func (e *MoveTextError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryMoveText
}

// frame is one open variation: where it branched and the arena slots it owns
type frame struct {
	branch int
	moves  []int
}

// closedFrame is a finished variation waiting for resolution
type closedFrame struct {
	branch int
	parent int
	prefix []int // arena slots replayed from the start position before moves
	moves  []int
}

// scanner is the lexical pass over one movetext buffer. Every notation token
// goes into a single arena; the main line and variations refer to it by index.
type scanner struct {
	arena  []string
	main   []int
	stack  []frame
	closed []closedFrame

	vi int // variant index

	inBrace bool
	inLine  bool
	comment strings.Builder

	comments    map[int]string
	annotations map[int][]string
}

// tokenize splits movetext on whitespace, keeping braces, parentheses and
// newlines as tokens of their own.
func tokenize(text string) []string {
	return strings.FieldsFunc(structuralSpacer.Replace(text), func(r rune) bool {
		return r != '\n' && unicode.IsSpace(r)
	})
}

func (s *scanner) inComment() bool {
	return s.inBrace || s.inLine
}

// storeComment keeps the last comment of a move
func (s *scanner) storeComment() {
	s.comments[s.vi] = s.comment.String()
	s.comment.Reset()
}

func (s *scanner) scan(tokens []string) {
	for _, tok := range tokens {
		if !s.inComment() {
			tok = stripMoveNumber(tok)
			if tok == "" {
				continue
			}
		}

		switch {
		case !s.inComment() && strings.HasPrefix(tok, "$"):
			s.annotations[s.vi] = append(s.annotations[s.vi], tok)
		case tok == "{" && !s.inComment():
			s.inBrace = true
			s.comment.Reset()
		case tok == "}" && s.inBrace:
			s.inBrace = false
			s.storeComment()
		case tok == ";" && !s.inComment():
			s.inLine = true
			s.comment.Reset()
		case tok == newlineToken && s.inLine:
			s.inLine = false
			s.storeComment()
		case tok == newlineToken:
			// plain whitespace everywhere else
		case tok == "(" && !s.inComment():
			s.stack = append(s.stack, frame{branch: s.vi})
		case tok == ")" && !s.inComment() && len(s.stack) > 0:
			s.closeFrame()
		case s.inComment():
			s.comment.WriteString(tok)
			s.comment.WriteByte(' ')
		case len(s.stack) > 0:
			top := &s.stack[len(s.stack)-1]
			top.moves = append(top.moves, s.push(tok))
			s.vi++
		default:
			s.main = append(s.main, s.push(tok))
			s.vi++
		}
	}

	if s.inLine {
		s.inLine = false
		s.storeComment()
	}
}

func (s *scanner) push(tok string) int {
	s.arena = append(s.arena, tok)
	return len(s.arena) - 1
}

// closeFrame pops the innermost variation. The variation replaces the last ply
// of every enclosing line, so its prefix is each ancestor minus its final move.
func (s *scanner) closeFrame() {
	f := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]

	prefix := append([]int(nil), dropLast(s.main)...)
	for _, anc := range s.stack {
		prefix = append(prefix, dropLast(anc.moves)...)
	}

	parent := NoParent
	if len(s.stack) > 0 {
		parent = s.stack[len(s.stack)-1].branch
	}

	s.closed = append(s.closed, closedFrame{
		branch: f.branch,
		parent: parent,
		prefix: prefix,
		moves:  f.moves,
	})
}

func (s *scanner) tokens(slots []int) []string {
	out := make([]string, len(slots))
	for i, slot := range slots {
		out[i] = s.arena[slot]
	}
	return out
}

func dropLast(slots []int) []int {
	if len(slots) == 0 {
		return nil
	}
	return slots[:len(slots)-1]
}

// stripMoveNumber removes a leading "12." or "12..." marker
func stripMoveNumber(tok string) string {
	if i := strings.Index(tok, "..."); i >= 0 {
		return tok[i+3:]
	}
	if i := strings.Index(tok, "."); i >= 0 {
		return tok[i+1:]
	}
	return tok
}

// ParseMoveText builds the main line, variations, comments and annotations
// from the raw movetext. It runs once; later calls return the first outcome.
func (r *Record) ParseMoveText() error {
	if r.parsed {
		return r.parseErr
	}
	r.parsed = true
	r.parseErr = r.parseMoveText()
	return r.parseErr
}

func (r *Record) parseMoveText() error {
	start, err := r.StartPosition()
	if err != nil {
		return errors.New(err).
			Component("pgn").
			Category(errors.CategoryMoveText).
			Context("record", r.ID).
			Context("fen", r.FEN).
			Build()
	}

	s := &scanner{
		comments:    r.comments,
		annotations: r.annotations,
	}
	s.scan(tokenize(r.MoveText))

	mainTokens := s.tokens(s.main)
	mainLine, err := board.Resolve(start, mainTokens)
	if err != nil {
		return r.moveTextError(NoParent, "main line", mainTokens, err)
	}

	variations := make(map[int]*Variation, len(s.closed))
	for _, cf := range s.closed {
		ctx := fmt.Sprintf("variation %d", cf.branch)
		if cf.parent != NoParent {
			ctx = fmt.Sprintf("variation %d of %d", cf.branch, cf.parent)
		}

		prefixTokens := s.tokens(cf.prefix)
		prefix, err := board.Resolve(start, prefixTokens)
		if err != nil {
			return r.moveTextError(cf.branch, ctx+" prefix", prefixTokens, err)
		}

		moveTokens := s.tokens(cf.moves)
		line, err := board.Resolve(prefix.End(), moveTokens)
		if err != nil {
			return r.moveTextError(cf.branch, ctx, moveTokens, err)
		}

		variations[cf.branch] = &Variation{
			Branch: cf.branch,
			Parent: cf.parent,
			Line:   line,
		}
	}

	r.mainLine = mainLine
	r.variations = variations
	return nil
}

func (r *Record) moveTextError(branch int, context string, tokens []string, err error) error {
	mte := &MoveTextError{
		RecordID: r.ID,
		Branch:   branch,
		Fragment: strings.Join(tokens, " "),
		Context:  context,
		Err:      err,
	}
	var re *board.ResolveError
	if errors.As(err, &re) {
		mte.Token = re.Token
	}

	return errors.New(mte).
		Component("pgn").
		Category(errors.CategoryMoveText).
		Context("record", r.ID).
		Context("branch", branch).
		Context("token", mte.Token).
		Build()
}
