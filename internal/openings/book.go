package openings

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
	"github.com/tphakala/openingbook/internal/observability/metrics"
	"github.com/tphakala/openingbook/internal/pgn"
)

// Triple is one step of a game: the position before, the move id and the
// position after. The first triple of a game has only To set.
type Triple struct {
	From       string
	NotationID uint
	To         string
}

// IsRoot reports whether t is the start-position triple
func (t Triple) IsRoot() bool {
	return t.From == "" && t.NotationID == 0
}

// BookPosition holds the results of all games that reached a position
type BookPosition struct {
	ID        uint   `gorm:"primaryKey"`
	Handler   string `gorm:"type:varchar(64);uniqueIndex:idx_book_position"`
	Key       string `gorm:"column:position_key;type:varchar(100);uniqueIndex:idx_book_position"`
	WhiteWins int
	Draws     int
	BlackWins int
}

// Games returns the number of games through the position
func (p BookPosition) Games() int {
	return p.WhiteWins + p.Draws + p.BlackWins
}

// BookMove counts how often a move was played from a position
type BookMove struct {
	ID         uint   `gorm:"primaryKey"`
	Handler    string `gorm:"type:varchar(64);uniqueIndex:idx_book_move"`
	FromKey    string `gorm:"type:varchar(100);uniqueIndex:idx_book_move;index:idx_book_move_from"`
	NotationID uint   `gorm:"uniqueIndex:idx_book_move"`
	ToKey      string `gorm:"type:varchar(100);uniqueIndex:idx_book_move"`
	Games      int
}

// Book is the statistics consumer. Writes are batched in its session and
// become durable on CommitAll.
type Book struct {
	s   *datastore.Session
	log logger.Logger
}

// OpenBook opens the book database described by cfg
func OpenBook(cfg datastore.Config, recorder metrics.Recorder) (*Book, error) {
	s, err := datastore.Open(cfg, recorder, &BookPosition{}, &BookMove{})
	if err != nil {
		return nil, err
	}
	return &Book{s: s, log: logger.Global().Module("openings")}, nil
}

// StoreMoves adds one game to the book of handler
func (b *Book) StoreMoves(ctx context.Context, handler string, triples []Triple, result pgn.Result) error {
	w, d, l := resultCounts(result)

	tx, err := b.s.Tx()
	if err != nil {
		return err
	}
	tx = tx.WithContext(ctx)

	for _, t := range triples {
		if err := upsertPosition(tx, handler, t.To, w, d, l); err != nil {
			return bookError(err, "store_position", handler, t.To)
		}
		if t.IsRoot() {
			continue
		}
		if err := upsertMove(tx, handler, t); err != nil {
			return bookError(err, "store_move", handler, t.From)
		}
	}
	return nil
}

// CommitAll makes the stored games durable
func (b *Book) CommitAll() error {
	start := time.Now()
	if err := b.s.Commit(); err != nil {
		return err
	}
	b.log.Debug("Book committed", logger.Duration("duration", time.Since(start)))
	return nil
}

// RollbackAll drops the games stored since the last commit
func (b *Book) RollbackAll() error {
	return b.s.Rollback()
}

// Close commits and closes the book database
func (b *Book) Close() error {
	return b.s.Close()
}

func upsertPosition(tx *gorm.DB, handler, key string, w, d, l int) error {
	row := BookPosition{Handler: handler, Key: key, WhiteWins: w, Draws: d, BlackWins: l}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "handler"}, {Name: "position_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"white_wins": gorm.Expr("white_wins + ?", w),
			"draws":      gorm.Expr("draws + ?", d),
			"black_wins": gorm.Expr("black_wins + ?", l),
		}),
	}).Create(&row).Error
}

func upsertMove(tx *gorm.DB, handler string, t Triple) error {
	row := BookMove{Handler: handler, FromKey: t.From, NotationID: t.NotationID, ToKey: t.To, Games: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "handler"}, {Name: "from_key"}, {Name: "notation_id"}, {Name: "to_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"games": gorm.Expr("games + 1"),
		}),
	}).Create(&row).Error
}

func resultCounts(r pgn.Result) (white, draw, black int) {
	switch r {
	case pgn.ResultWhiteWins:
		return 1, 0, 0
	case pgn.ResultBlackWins:
		return 0, 0, 1
	case pgn.ResultDraw:
		return 0, 1, 0
	default:
		return 0, 0, 0
	}
}

func bookError(err error, operation, handler, key string) error {
	return errors.New(err).
		Component("openings").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Context("handler", handler).
		Context("position", key).
		Build()
}

// MoveStat is one move of a position with the results of the games that
// continued with it
type MoveStat struct {
	NotationID uint
	ToKey      string
	Games      int
	WhiteWins  int
	Draws      int
	BlackWins  int
}

// minMoveShareDivisor drops moves played in less than a tenth of the games
// through the position
const minMoveShareDivisor = 10

// TopMoves returns the most played moves from fen in handler's book, most
// played first. Moves seen in fewer than a tenth of the position's games are
// left out. The position counters of fen are ignored.
func (b *Book) TopMoves(ctx context.Context, handler, fen string, limit int) ([]MoveStat, error) {
	key := board.PositionKey(fen)
	if limit <= 0 {
		limit = -1 // no limit
	}

	tx, err := b.s.Tx()
	if err != nil {
		return nil, err
	}
	tx = tx.WithContext(ctx)

	var from BookPosition
	res := tx.Where("handler = ? AND position_key = ?", handler, key).Limit(1).Find(&from)
	if res.Error != nil {
		return nil, bookError(res.Error, "top_moves", handler, key)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var stats []MoveStat
	err = tx.Table("book_moves AS m").
		Select("m.notation_id, m.to_key, m.games, p.white_wins, p.draws, p.black_wins").
		Joins("JOIN book_positions AS p ON p.handler = m.handler AND p.position_key = m.to_key").
		Where("m.handler = ? AND m.from_key = ? AND m.games >= ?", handler, key, from.Games()/minMoveShareDivisor).
		Order("m.games DESC, m.notation_id").
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, bookError(err, "top_moves", handler, key)
	}
	return stats, nil
}

// Position returns the counters of fen in handler's book
func (b *Book) Position(ctx context.Context, handler, fen string) (BookPosition, bool, error) {
	key := board.PositionKey(fen)

	tx, err := b.s.Tx()
	if err != nil {
		return BookPosition{}, false, err
	}

	var pos BookPosition
	res := tx.WithContext(ctx).Where("handler = ? AND position_key = ?", handler, key).Limit(1).Find(&pos)
	if res.Error != nil {
		return BookPosition{}, false, bookError(res.Error, "position", handler, key)
	}
	return pos, res.RowsAffected > 0, nil
}
