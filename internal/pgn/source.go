package pgn

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tphakala/openingbook/internal/errors"
)

const (
	initialLineBuffer = 64 * 1024
	maxLineLength     = 16 * 1024 * 1024
)

// LineReader is the subset of bufio.Scanner the Detector consumes
type LineReader interface {
	Scan() bool
	Text() string
	Err() error
}

// Source yields the lines of one archive file. It reads lazily and cannot be
// rewound; open the file again for a second pass.
type Source struct {
	path    string
	scanner *bufio.Scanner
	closers []func() error
	line    int
}

// Open opens path for line reading. Files ending in .zst or .gz are
// decompressed on the fly. A leading byte-order mark is removed.
func Open(path string) (*Source, error) {
	f, err := os.Open(path) //nolint:gosec // archive paths come from the command line
	if err != nil {
		category := errors.CategoryFileIO
		if os.IsNotExist(err) {
			category = errors.CategoryNotFound
		}
		return nil, errors.New(err).
			Component("pgn").
			Category(category).
			FileContext(path).
			Build()
	}

	s := &Source{path: path, closers: []func() error{f.Close}}

	var r io.Reader = f
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, s.wrap(err)
		}
		s.closers = append(s.closers, func() error { dec.Close(); return nil })
		r = dec
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, s.wrap(err)
		}
		s.closers = append(s.closers, gz.Close)
		r = gz
	}

	r = transform.NewReader(r, unicode.BOMOverride(transform.Nop))

	s.scanner = bufio.NewScanner(r)
	s.scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineLength)
	return s, nil
}

// Scan advances to the next line
func (s *Source) Scan() bool {
	if s.scanner.Scan() {
		s.line++
		return true
	}
	return false
}

// Text returns the current line without its terminator
func (s *Source) Text() string {
	return s.scanner.Text()
}

// Err returns the first read error, if any
func (s *Source) Err() error {
	if err := s.scanner.Err(); err != nil {
		return s.wrap(err)
	}
	return nil
}

// LineNumber returns the 1-based number of the current line
func (s *Source) LineNumber() int {
	return s.line
}

// Path returns the file path
func (s *Source) Path() string {
	return s.path
}

// Close releases the file and any decompressor, innermost first
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	if len(errs) > 0 {
		return s.wrap(errors.Join(errs...))
	}
	return nil
}

func (s *Source) wrap(err error) error {
	return errors.New(err).
		Component("pgn").
		Category(errors.CategoryFileIO).
		FileContext(s.path).
		Context("line", s.line).
		Build()
}
