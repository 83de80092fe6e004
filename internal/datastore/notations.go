package datastore

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const tableNotations = "notations"

// NotationStore is the backing store of the notation id cache
type NotationStore struct {
	s *Session
}

// NewNotationStore returns a notation store on s
func NewNotationStore(s *Session) *NotationStore {
	return &NotationStore{s: s}
}

// UpsertGetID inserts text if it is new and returns its id either way
func (n *NotationStore) UpsertGetID(ctx context.Context, text string) (id uint, err error) {
	start := time.Now()
	defer func() { n.s.observe(opInsert, tableNotations, start, err) }()

	tx, err := n.s.Tx()
	if err != nil {
		return 0, err
	}

	row := Notation{Text: text}
	res := tx.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "text"}}, DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return 0, dbError(res.Error, "upsert_notation", "notation", text)
	}
	if res.RowsAffected == 1 && row.ID != 0 {
		return row.ID, nil
	}

	if err := tx.WithContext(ctx).Where("text = ?", text).First(&row).Error; err != nil {
		return 0, dbError(err, "upsert_notation", "notation", text)
	}
	return row.ID, nil
}

// LookupByID returns the notation text for id. A missing id is not an error.
func (n *NotationStore) LookupByID(ctx context.Context, id uint) (text string, found bool, err error) {
	start := time.Now()
	defer func() { n.s.observe(opQuery, tableNotations, start, err) }()

	tx, err := n.s.Tx()
	if err != nil {
		return "", false, err
	}

	var row Notation
	if err := tx.WithContext(ctx).First(&row, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, dbError(err, "lookup_notation", "id", id)
	}
	return row.Text, true, nil
}

// LookupByText returns the id of text without inserting it
func (n *NotationStore) LookupByText(ctx context.Context, text string) (id uint, found bool, err error) {
	start := time.Now()
	defer func() { n.s.observe(opQuery, tableNotations, start, err) }()

	tx, err := n.s.Tx()
	if err != nil {
		return 0, false, err
	}

	var row Notation
	if err := tx.WithContext(ctx).Where("text = ?", text).First(&row).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, dbError(err, "lookup_notation", "notation", text)
	}
	return row.ID, true, nil
}
