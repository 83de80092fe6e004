// Package moves provides the moves command for notation id lookups
package moves

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/notation"
)

// Command creates the moves command
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moves [id|notation ...]",
		Short: "Look up notation ids",
		Long:  "Prints the notation of numeric ids and the id of each notation. Unknown notation is not added.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return lookup(ctx, cmd.OutOrStdout(), settings, args)
		},
	}

	return cmd
}

func lookup(ctx context.Context, out io.Writer, settings *conf.Settings, args []string) error {
	store, err := datastore.Open(datastore.StoreConfig(settings), nil, datastore.Models()...)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	notations := datastore.NewNotationStore(store)
	cache := notation.New(notations, nil)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNOTATION")

	for _, arg := range args {
		if id, err := strconv.ParseUint(arg, 10, 0); err == nil {
			text, found, err := cache.ReverseLookup(ctx, uint(id))
			if err != nil {
				return err
			}
			if !found {
				text = "-"
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\n", id, text)
			continue
		}

		id, found, err := notations.LookupByText(ctx, arg)
		if err != nil {
			return err
		}
		if !found {
			_, _ = fmt.Fprintf(w, "-\t%s\n", arg)
			continue
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\n", id, arg)
	}
	return w.Flush()
}
