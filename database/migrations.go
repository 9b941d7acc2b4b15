package database

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// BackupDatabase writes a SQL dump using mysqldump if it's available on PATH.
// Extra arguments come from DB_BACKUP_FLAGS.
func BackupDatabase(ctx context.Context, outPath string) error {
	if _, err := exec.LookPath("mysqldump"); err != nil {
		return fmt.Errorf("mysqldump not found in PATH: %w", err)
	}

	args := strings.Fields(os.Getenv("DB_BACKUP_FLAGS"))
	cmd := exec.CommandContext(ctx, "mysqldump", args...)
	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	cmd.Stdout = outFile
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mysqldump failed: %w", err)
	}
	return nil
}

// RunMigrationsWithBackup runs AutoMigrate for the given models. On MySQL a
// best-effort backup is taken first when DB_BACKUP_PATH is set, and tables are
// created with a binary collation so ledger keys compare bytewise.
func RunMigrationsWithBackup(db *gorm.DB, models ...interface{}) error {
	if IsMySQL(db) {
		if backupPath := os.Getenv("DB_BACKUP_PATH"); backupPath != "" {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
				defer cancel()
				if err := BackupDatabase(ctx, backupPath); err != nil {
					log.Warn().Err(err).Msg("database backup failed")
				}
			}()
			// allow a small window for the backup to start
			time.Sleep(500 * time.Millisecond)
		}
		db = db.Set("gorm:table_options", "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.AutoMigrate(models...); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}
	log.Info().Int("models", len(models)).Msg("migrations applied")
	return nil
}
