// model.go defines the tables of the importer store
package datastore

import "time"

// Notation maps a move in standard algebraic notation to a compact id
type Notation struct {
	ID   uint   `gorm:"primaryKey"`
	Text string `gorm:"type:varchar(16);uniqueIndex;not null"`
}

// MainLine is one distinct main line, identified by its fingerprint
type MainLine struct {
	ID          uint   `gorm:"primaryKey"`
	Fingerprint string `gorm:"type:char(64);uniqueIndex;not null"` // hex SHA-256
	Moves       string `gorm:"type:text"`                          // space-joined canonical notation
	Plies       int
	StartFEN    string `gorm:"type:varchar(100)"` // empty for the standard start
	CreatedAt   time.Time
}

// Game archives an imported record. A main line may appear in several games
// only with different players or results.
type Game struct {
	ID         uint   `gorm:"primaryKey"`
	MainLineID uint   `gorm:"uniqueIndex:idx_games_identity;not null"`
	White      string `gorm:"type:varchar(191);uniqueIndex:idx_games_identity"`
	Black      string `gorm:"type:varchar(191);uniqueIndex:idx_games_identity"`
	Result     string `gorm:"type:varchar(8);uniqueIndex:idx_games_identity"`
	EventDate  string `gorm:"type:varchar(16);index"`
	WhiteElo   int
	BlackElo   int
	ECO        string `gorm:"type:varchar(8);index"`
	Opening    string `gorm:"type:varchar(191)"`
	Handler    string `gorm:"type:varchar(64)"`
	MoveText   string `gorm:"type:text"` // truncated to MaxArchivedMoveText
	RunID      string `gorm:"type:char(36);index"`
	CreatedAt  time.Time
}

// MaxArchivedMoveText caps the movetext stored per game
const MaxArchivedMoveText = 4096

// ImportRun journals one imported file
type ImportRun struct {
	ID            uint   `gorm:"primaryKey"`
	RunID         string `gorm:"type:char(36);index;not null"`
	File          string `gorm:"type:varchar(512)"`
	StartedAt     time.Time
	FinishedAt    *time.Time
	Status        string `gorm:"type:varchar(16)"` // running, completed, failed
	Records       int
	Imported      int
	Duplicates    int
	InvalidPlayer int
	InvalidECO    int
	NoHandler     int
	InvalidPGN    int
	Error         string `gorm:"type:text"`
}

// Run status values
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Models lists every table owned by the importer store
func Models() []any {
	return []any{&Notation{}, &MainLine{}, &Game{}, &ImportRun{}}
}
