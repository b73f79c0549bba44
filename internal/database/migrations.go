package database

import (
	"errors"
	"time"

	"github.com/paperlane/notes-backend/internal/notes"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationRepairTimestampOrder = "2026-06-30_repair_timestamp_order"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationRepairTimestampOrder, apply: repairTimestampOrder},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// Rows written by builds that predate service-owned timestamps could end up
// with updated_at behind created_at. Clamp them so the ordering invariant
// holds for every stored row.
func repairTimestampOrder(db *gorm.DB) error {
	return db.Model(&notes.Note{}).
		Where("updated_at < created_at").
		UpdateColumn("updated_at", gorm.Expr("created_at")).Error
}
