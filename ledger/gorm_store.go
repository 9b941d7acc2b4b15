package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Henryno111/deposit-stx/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const metaID = 1

// GormStore persists the ledger in the ledger_entries and ledger_meta tables.
// Writers lock the meta row (SELECT ... FOR UPDATE) so updates are serialized
// across processes; the in-process mutex covers drivers without row locks.
type GormStore struct {
	db *gorm.DB
	mu sync.Mutex
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Models returns the tables the store needs, for use with AutoMigrate.
func (s *GormStore) Models() []interface{} {
	return []interface{}{&models.LedgerEntry{}, &models.LedgerMeta{}}
}

func (s *GormStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var meta models.LedgerMeta
		err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&meta, metaID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			meta = models.LedgerMeta{ID: metaID}
			err = db.Create(&meta).Error
		}
		if err != nil {
			return fmt.Errorf("ledger: lock meta: %w", err)
		}

		tx := &gormTx{db: db, height: meta.Height + 1}
		if err := fn(tx); err != nil {
			return err
		}
		if err := db.Model(&meta).Update("height", tx.height).Error; err != nil {
			return fmt.Errorf("ledger: advance height: %w", err)
		}
		return nil
	})
}

func (s *GormStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		height, err := readHeight(db)
		if err != nil {
			return err
		}
		return fn(&gormTx{db: db, height: height, readOnly: true})
	})
}

func (s *GormStore) Height(ctx context.Context) (uint64, error) {
	return readHeight(s.db.WithContext(ctx))
}

func readHeight(db *gorm.DB) (uint64, error) {
	var meta models.LedgerMeta
	err := db.First(&meta, metaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ledger: read height: %w", err)
	}
	return meta.Height, nil
}

type gormTx struct {
	db       *gorm.DB
	height   uint64
	readOnly bool
}

func (tx *gormTx) Height() uint64 { return tx.height }

func (tx *gormTx) Get(ns, key string, dst any) (bool, error) {
	var entry models.LedgerEntry
	err := tx.db.Where("namespace = ? AND entry_key = ?", ns, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ledger: read %s/%s: %w", ns, key, err)
	}
	if err := json.Unmarshal([]byte(entry.Value), dst); err != nil {
		return true, fmt.Errorf("ledger: decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (tx *gormTx) Put(ns, key string, v any) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: encode %s/%s: %w", ns, key, err)
	}
	entry := models.LedgerEntry{Namespace: ns, EntryKey: key, Value: string(raw), Height: tx.height}
	err = tx.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "height", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("ledger: write %s/%s: %w", ns, key, err)
	}
	return nil
}

func (tx *gormTx) Keys(ns, prefix string) ([]string, error) {
	var all []string
	if err := tx.db.Model(&models.LedgerEntry{}).Where("namespace = ?", ns).Pluck("entry_key", &all).Error; err != nil {
		return nil, fmt.Errorf("ledger: list %s: %w", ns, err)
	}
	// Filter and order in Go so the result is bytewise regardless of the
	// database collation.
	keys := all[:0]
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
