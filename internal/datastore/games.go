package datastore

import (
	"context"
	"time"
	"unicode/utf8"

	"gorm.io/gorm/clause"
)

const tableGames = "games"

// GameStore archives imported games
type GameStore struct {
	s *Session
}

// NewGameStore returns a game archive on s
func NewGameStore(s *Session) *GameStore {
	return &GameStore{s: s}
}

// Save archives g. A game with the same main line, players and result is kept
// once; saved reports whether g was written.
func (g *GameStore) Save(ctx context.Context, game *Game) (saved bool, err error) {
	start := time.Now()
	defer func() { g.s.observe(opInsert, tableGames, start, err) }()

	tx, err := g.s.Tx()
	if err != nil {
		return false, err
	}

	game.MoveText = truncateRunes(game.MoveText, MaxArchivedMoveText)

	res := tx.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(game)
	if res.Error != nil {
		return false, dbError(res.Error, "save_game", "main_line_id", game.MainLineID)
	}
	return res.RowsAffected == 1, nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
