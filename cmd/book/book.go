// Package book provides the book command listing the most played moves
package book

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/notation"
	"github.com/tphakala/openingbook/internal/openings"
)

const defaultLimit = 10

type options struct {
	handler string
	limit   int
}

// Command creates the book command
func Command(settings *conf.Settings) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "book [fen]",
		Short: "Show the most played moves of a position",
		Long:  "Lists the moves played from a position, most played first, with the results of the games that followed. Without a FEN the standard start position is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fen := board.StandardFEN
			if len(args) == 1 {
				fen = args[0]
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return show(ctx, cmd.OutOrStdout(), settings, opts, fen)
		},
	}

	cmd.Flags().StringVar(&opts.handler, "handler", "", "Opening handler (default: first configured)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", defaultLimit, "Maximum number of moves")

	return cmd
}

func show(ctx context.Context, out io.Writer, settings *conf.Settings, opts *options, fen string) error {
	start, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	key := start.Key()

	handler := opts.handler
	if handler == "" {
		if len(settings.Openings.Handlers) == 0 {
			return fmt.Errorf("no opening handlers configured")
		}
		handler = settings.Openings.Handlers[0].Name
	}

	store, err := datastore.Open(datastore.StoreConfig(settings), nil, datastore.Models()...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	bk, err := openings.OpenBook(datastore.BookConfig(settings), nil)
	if err != nil {
		return fmt.Errorf("failed to open book: %w", err)
	}
	defer func() { _ = bk.Close() }()

	pos, found, err := bk.Position(ctx, handler, key)
	if err != nil {
		return err
	}
	if !found {
		_, _ = fmt.Fprintf(out, "position not in book %q\n", handler)
		return nil
	}

	moves, err := bk.TopMoves(ctx, handler, key, opts.limit)
	if err != nil {
		return err
	}

	cache := notation.New(datastore.NewNotationStore(store), nil)

	_, _ = fmt.Fprintf(out, "%s: %d games (+%d =%d -%d)\n\n", handler, pos.Games(), pos.WhiteWins, pos.Draws, pos.BlackWins)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	// result columns count every game through the resulting position
	_, _ = fmt.Fprintln(w, "MOVE\tGAMES\tWHITE\tDRAW\tBLACK")
	for _, m := range moves {
		san, ok, err := cache.ReverseLookup(ctx, m.NotationID)
		if err != nil {
			return err
		}
		if !ok {
			san = fmt.Sprintf("#%d", m.NotationID)
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", san, m.Games, m.WhiteWins, m.Draws, m.BlackWins)
	}
	return w.Flush()
}
