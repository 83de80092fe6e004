package pgn

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/openingbook/internal/errors"
)

func parsed(t *testing.T, moveText string) *Record {
	t.Helper()

	rec := NewRecord("t", "")
	rec.SetMoveText(moveText)
	require.NoError(t, rec.ParseMoveText())
	return rec
}

func TestParseVariationBranch(t *testing.T) {
	t.Parallel()

	recs := collect(t, "[Event \"v\"]\n\n1. e4 e5 2. Nf3 (2. Bc4 Nc6 3. Qh5) Nc6 *\n")
	require.Len(t, recs, 1)
	rec := recs[0]
	require.NoError(t, rec.ParseMoveText())

	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, rec.MainLine().SANs())
	require.Len(t, rec.Variations(), 1)

	v := rec.Variations()[3]
	require.NotNil(t, v, "variation is keyed by the variant index at the opening parenthesis")
	assert.Equal(t, 3, v.Branch)
	assert.Equal(t, NoParent, v.Parent)
	assert.Equal(t, []string{"Bc4", "Nc6", "Qh5"}, v.Line.SANs())
}

func TestParseBraceComment(t *testing.T) {
	t.Parallel()

	recs := collect(t, "[Event \"c\"]\n\n1. e4 {good move} e5 1-0\n")
	require.Len(t, recs, 1)
	rec := recs[0]
	require.NoError(t, rec.ParseMoveText())

	assert.Equal(t, []string{"e4", "e5"}, rec.MainLine().SANs())
	assert.Equal(t, map[int]string{1: "good move "}, rec.Comments())
}

func TestParseLineCommentEndsAtNewline(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 ; best by test\ne5 2. Nf3\n")

	assert.Equal(t, []string{"e4", "e5", "Nf3"}, rec.MainLine().SANs())
	assert.Equal(t, "best by test ", rec.Comments()[1])
}

func TestParseLaterCommentReplacesEarlier(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 {first} {second} e5\n")

	assert.Equal(t, map[int]string{1: "second "}, rec.Comments())
}

func TestParseBraceCommentSpansLines(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. d4 {a quiet\nstart} d5\n")

	assert.Equal(t, "a quiet start ", rec.Comments()[1])
	assert.Equal(t, 2, rec.MainLine().Len())
}

func TestParseAnnotationGlyphs(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 $1 $14 e5 $2 2. Nf3\n")

	assert.Equal(t, []string{"$1", "$14"}, rec.Annotations()[1])
	assert.Equal(t, []string{"$2"}, rec.Annotations()[2])
	assert.Equal(t, 3, rec.MainLine().Len())
}

func TestParseNestedVariations(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 e5 2. Nf3 Nc6 (2... d6 3. d4 (3. Bc4 Be7) exd4) 3. Bb5 a6\n")

	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, rec.MainLine().SANs())
	require.Len(t, rec.Variations(), 2)

	outer := rec.Variations()[4]
	require.NotNil(t, outer)
	assert.Equal(t, NoParent, outer.Parent)
	assert.Equal(t, []string{"d6", "d4", "exd4"}, outer.Line.SANs())

	inner := rec.Variations()[6]
	require.NotNil(t, inner)
	assert.Equal(t, 4, inner.Parent)
	assert.Equal(t, []string{"Bc4", "Be7"}, inner.Line.SANs())
}

func TestParseSiblingVariations(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 (1. d4) (1. c4) e5\n")

	require.Len(t, rec.Variations(), 2)
	assert.Equal(t, []string{"d4"}, rec.Variations()[1].Line.SANs())
	assert.Equal(t, []string{"c4"}, rec.Variations()[2].Line.SANs())
	assert.True(t, rec.Variations()[2].Line.Start.IsStandard())
}

func TestParseFromDeclaredPosition(t *testing.T) {
	t.Parallel()

	rec := NewRecord("fen", "")
	rec.FEN = "8/8/8/4k3/8/8/4P3/4K3 w - - 0 40"
	rec.SetMoveText("40. e4 Kd6 41. Kd2\n")

	require.NoError(t, rec.ParseMoveText())
	assert.Equal(t, 3, rec.MainLine().Len())
	assert.False(t, rec.MainLine().Start.IsStandard())
}

func TestParseMainLineLengthMatchesTokens(t *testing.T) {
	t.Parallel()

	tests := []string{
		"1. d4 Nf6 2. c4 e6 3. Nc3 Bb4",
		"1.e4 c5 2.Nf3 d6 3.d4 cxd4 4.Nxd4 Nf6 5.Nc3 a6",
		"1. c4 e5\n2. Nc3 Nf6\n3. g3 d5 4. cxd5 Nxd5",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			t.Parallel()

			moves := 0
			for _, f := range strings.Fields(text) {
				if stripMoveNumber(f) != "" {
					moves++
				}
			}

			rec := parsed(t, text)
			assert.Equal(t, moves, rec.MainLine().Len())
		})
	}
}

func TestParseIllegalMove(t *testing.T) {
	t.Parallel()

	rec := NewRecord("7", "")
	rec.SetMoveText("1. e4 e5 2. Ke3 Nc6\n")

	err := rec.ParseMoveText()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMoveText))

	var mte *MoveTextError
	require.True(t, stderrors.As(err, &mte))
	assert.Equal(t, "7", mte.RecordID)
	assert.Equal(t, NoParent, mte.Branch)
	assert.Equal(t, "Ke3", mte.Token)
	assert.Equal(t, "e4 e5 Ke3 Nc6", mte.Fragment)
	assert.Nil(t, rec.MainLine())
}

func TestParseIllegalVariationMove(t *testing.T) {
	t.Parallel()

	rec := NewRecord("v", "")
	rec.SetMoveText("1. e4 (1. Ke2) e5\n")

	err := rec.ParseMoveText()
	require.Error(t, err)

	var mte *MoveTextError
	require.True(t, stderrors.As(err, &mte))
	assert.Equal(t, 1, mte.Branch)
	assert.Equal(t, "Ke2", mte.Token)
}

func TestParseUnmatchedCloseFails(t *testing.T) {
	t.Parallel()

	rec := NewRecord("u", "")
	rec.SetMoveText("1. e4 ) e5\n")

	err := rec.ParseMoveText()
	require.Error(t, err)

	var mte *MoveTextError
	require.True(t, stderrors.As(err, &mte))
	assert.Equal(t, ")", mte.Token)
}

func TestParseUnclosedVariationIsDiscarded(t *testing.T) {
	t.Parallel()

	rec := parsed(t, "1. e4 e5 (1... c5 2. Nf3\n")

	assert.Equal(t, []string{"e4", "e5"}, rec.MainLine().SANs())
	assert.Empty(t, rec.Variations())
}

func TestParseRunsOnce(t *testing.T) {
	t.Parallel()

	rec := NewRecord("once", "")
	rec.SetMoveText("1. e4 e5 2. Ke3\n")

	first := rec.ParseMoveText()
	require.Error(t, first)
	assert.True(t, rec.Parsed())

	rec.SetMoveText("1. e4 e5\n")
	assert.Equal(t, first, rec.ParseMoveText())
	assert.Nil(t, rec.MainLine())
}

func TestSnippetCollapsesNewlines(t *testing.T) {
	t.Parallel()

	rec := NewRecord("s", "")
	rec.SetMoveText("1. e4 e5\n2. Nf3 Nc6\n")
	assert.Equal(t, "1. e4 e5--2. Nf3 Nc6", rec.Snippet(100))
	assert.Equal(t, "1. e4", rec.Snippet(5))
}

func TestTokenizeKeepsStructure(t *testing.T) {
	t.Parallel()

	got := tokenize("1.e4 {x}(1.d4)\n; c\td5")
	assert.Equal(t, []string{"1.e4", "{", "x", "}", "(", "1.d4", ")", "\n", ";", "c", "d5"}, got)
}
