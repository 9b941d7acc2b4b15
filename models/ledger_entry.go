package models

import "time"

// LedgerEntry is one key of the ledger store persisted through gorm.
type LedgerEntry struct {
	Namespace string    `gorm:"primaryKey;type:varchar(64)" json:"namespace"`
	EntryKey  string    `gorm:"primaryKey;column:entry_key;type:varchar(191)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Height    uint64    `gorm:"not null;index" json:"height"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// LedgerMeta holds the committed height. There is a single row with ID 1.
type LedgerMeta struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Height    uint64    `gorm:"not null" json:"height"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LedgerMeta) TableName() string {
	return "ledger_meta"
}
