package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Tables lists the collections in the order they are migrated.
var Tables = []string{"questions", "active", "responses"}

// InitSchema creates or updates the questions, active and responses tables.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&questionRecord{},
		&activeRecord{},
		&responseRecord{},
	); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// NewGormStore wires the gorm repositories over one connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Questions: NewQuestionRepository(db),
		Active:    NewActiveRepository(db),
		Responses: NewResponseRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}
