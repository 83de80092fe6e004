package importer

import (
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/notation"
	"github.com/tphakala/openingbook/internal/observability"
	"github.com/tphakala/openingbook/internal/observability/metrics"
	"github.com/tphakala/openingbook/internal/openings"
)

// Open connects the store and the book described by settings and returns an
// importer wired to them. Close releases both; it must be called on every
// path once Open succeeds. A nil m disables metrics.
func Open(settings *conf.Settings, m *observability.Metrics) (*Importer, error) {
	var (
		storeRec  metrics.Recorder
		cacheRec  metrics.CacheRecorder
		importRec Recorder
	)
	if m != nil {
		storeRec, cacheRec, importRec = m.Datastore, m.Notation, m.Import
	}

	registry, err := openings.NewRegistry(settings.Openings)
	if err != nil {
		return nil, err
	}

	store, err := datastore.Open(datastore.StoreConfig(settings), storeRec, datastore.Models()...)
	if err != nil {
		return nil, err
	}

	book, err := openings.OpenBook(datastore.BookConfig(settings), storeRec)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	imp := New(settings.Import, Deps{
		Notations: notation.New(datastore.NewNotationStore(store), cacheRec),
		Deduper:   datastore.NewMainLineStore(store),
		Archive:   datastore.NewGameStore(store),
		Handlers:  registry,
		Book:      book,
		Store:     store,
		Journal:   datastore.NewRunJournal(store),
		Recorder:  importRec,
	})
	imp.closers = []func() error{book.Close, store.Close}
	return imp, nil
}

// Close commits pending writes and releases the databases opened by Open.
// It is safe to call more than once.
func (i *Importer) Close() error {
	var errs []error
	for _, c := range i.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
