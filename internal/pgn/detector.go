package pgn

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
)

const utf8BOM = "\ufeff"

var (
	tagPattern  = regexp.MustCompile(`^\[.* ".*"\]$`)
	tagStripper = strings.NewReplacer("[", "", "]", "", `"`, "")
)

// Listener receives each completed record. A non-nil error stops the load.
type Listener interface {
	OnRecord(rec *Record) error
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(rec *Record) error

// OnRecord calls f(rec)
func (f ListenerFunc) OnRecord(rec *Record) error {
	return f(rec)
}

// Detector groups lines into records. It holds at most one record and one
// movetext buffer at a time, so archives of any size stream through it.
type Detector struct {
	listeners []Listener
	log       logger.Logger

	size    int // event tags seen
	date    string
	current *Record

	moveText    strings.Builder
	moveTextOn  bool
	moveTextLen int // lines appended to the open buffer
}

// NewDetector creates a detector notifying the given listeners
func NewDetector(listeners ...Listener) *Detector {
	return &Detector{
		listeners: listeners,
		log:       logger.Global().Module("pgn"),
	}
}

// Size returns the number of event tags seen so far
func (d *Detector) Size() int {
	return d.size
}

// Run feeds every line of src and finishes the stream
func (d *Detector) Run(src LineReader) error {
	for src.Scan() {
		if err := d.Feed(src.Text()); err != nil {
			return err
		}
	}
	if err := src.Err(); err != nil {
		return err
	}
	return d.Finish()
}

// Feed processes one line
func (d *Detector) Feed(raw string) error {
	line := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), utf8BOM))

	if tagPattern.MatchString(line) {
		return d.handleTag(line)
	}

	if line == "" || !d.moveTextOn {
		return nil
	}

	d.moveText.WriteString(line)
	d.moveText.WriteByte('\n')
	d.moveTextLen++

	if endsWithResult(line) {
		d.closeMoveText()
	}
	return nil
}

// Finish emits the last record. The detector can be reused afterwards.
func (d *Detector) Finish() error {
	if d.moveTextOn && d.moveTextLen > 0 {
		d.closeMoveText()
	}
	d.moveTextOn = false
	d.moveText.Reset()
	d.moveTextLen = 0

	if d.current == nil {
		return nil
	}
	rec := d.current
	d.current = nil
	return d.emit(rec)
}

func (d *Detector) handleTag(line string) error {
	name, value, ok := parseTag(line)
	if !ok {
		return nil
	}

	switch strings.ToLower(name) {
	case "event":
		if d.moveTextOn && d.moveTextLen > 0 && d.current != nil && !d.current.HasMoveText() {
			d.closeMoveText()
		}
		if d.current != nil {
			if err := d.emit(d.current); err != nil {
				return err
			}
		}
		d.size++
		d.current = NewRecord(strconv.Itoa(d.size-1), d.date)
		d.moveText.Reset()
		d.moveTextOn = true
		d.moveTextLen = 0
	case "date":
		d.date = value
		if d.current != nil {
			d.current.Date = value
		}
	case "white":
		d.ensureRecord().White = value
	case "black":
		d.ensureRecord().Black = value
	case "result":
		if d.current != nil {
			d.current.Result = ParseResult(value)
		}
	case "plycount":
		if d.current != nil {
			d.current.PlyCount = value
		}
	case "fen":
		if d.current != nil {
			d.current.FEN = value
		}
	case "eco":
		if d.current != nil {
			d.current.ECO = value
		}
	case "opening":
		if d.current != nil {
			d.current.Opening = value
		}
	case "whiteelo":
		if d.current != nil {
			d.current.WhiteElo = parseElo(value)
		}
	case "blackelo":
		if d.current != nil {
			d.current.BlackElo = parseElo(value)
		}
	default:
		if d.current != nil {
			d.current.Tags[name] = value
		}
	}
	return nil
}

// ensureRecord creates a record for player tags that arrive before any event tag
func (d *Detector) ensureRecord() *Record {
	if d.current == nil {
		d.current = NewRecord(strconv.Itoa(d.size), d.date)
	}
	return d.current
}

// closeMoveText strips result tokens from the buffer and attaches it
func (d *Detector) closeMoveText() {
	text := d.moveText.String()
	for _, tok := range resultTokens {
		text = strings.ReplaceAll(text, tok, "")
	}
	if d.current != nil {
		d.current.SetMoveText(text)
	}
	d.moveText.Reset()
	d.moveTextOn = false
	d.moveTextLen = 0
}

func (d *Detector) emit(rec *Record) error {
	d.log.Trace("record complete",
		logger.String("record", rec.ID),
		logger.Bool("movetext", rec.HasMoveText()))

	for _, l := range d.listeners {
		if err := l.OnRecord(rec); err != nil {
			return errors.New(err).
				Component("pgn").
				Category(errors.CategoryProcessing).
				Context("record", rec.ID).
				Build()
		}
	}
	return nil
}

// parseTag splits `[Name "Value"]`. Brackets and quotes are removed from the
// whole line first, so they never survive inside values.
func parseTag(line string) (name, value string, ok bool) {
	stripped := tagStripper.Replace(line)
	name, value, ok = strings.Cut(stripped, " ")
	if !ok || name == "" {
		return "", "", false
	}
	return name, value, true
}

func parseElo(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func endsWithResult(line string) bool {
	for _, tok := range resultTokens {
		if strings.HasSuffix(line, tok) {
			return true
		}
	}
	return false
}
