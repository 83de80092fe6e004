package datastore

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

const tableMainLines = "main_lines"

// MainLineStore de-duplicates games by main-line fingerprint
type MainLineStore struct {
	s *Session
}

// NewMainLineStore returns a main-line store on s
func NewMainLineStore(s *Session) *MainLineStore {
	return &MainLineStore{s: s}
}

// InsertIfNew stores line unless its fingerprint exists. line.ID is set in
// both cases; wasNew reports whether this call created the row.
func (m *MainLineStore) InsertIfNew(ctx context.Context, line *MainLine) (wasNew bool, err error) {
	start := time.Now()
	defer func() { m.s.observe(opInsert, tableMainLines, start, err) }()

	tx, err := m.s.Tx()
	if err != nil {
		return false, err
	}

	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "fingerprint"}}, DoNothing: true}).
		Create(line)
	if res.Error != nil {
		return false, dbError(res.Error, "insert_main_line", "fingerprint", line.Fingerprint)
	}
	if res.RowsAffected == 1 && line.ID != 0 {
		return true, nil
	}

	var existing MainLine
	if err := tx.WithContext(ctx).Where("fingerprint = ?", line.Fingerprint).First(&existing).Error; err != nil {
		return false, dbError(err, "insert_main_line", "fingerprint", line.Fingerprint)
	}
	*line = existing
	return false, nil
}
