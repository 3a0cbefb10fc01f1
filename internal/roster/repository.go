package roster

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jstittsworth/roster-optimizer/internal/models"
	"github.com/jstittsworth/roster-optimizer/pkg/database"
)

// SelectionRepository persists the single active selection.
type SelectionRepository interface {
	// Load returns nil, nil when nothing has been saved yet.
	Load(ctx context.Context) (*models.SelectionRecord, error)
	Save(ctx context.Context, record *models.SelectionRecord) error
}

const defaultSelectionName = "default"

type GormSelectionRepository struct {
	db   *database.DB
	name string
}

func NewGormSelectionRepository(db *database.DB) *GormSelectionRepository {
	return &GormSelectionRepository{db: db, name: defaultSelectionName}
}

func (r *GormSelectionRepository) Load(ctx context.Context) (*models.SelectionRecord, error) {
	var record models.SelectionRecord
	err := r.db.WithContext(ctx).Where("name = ?", r.name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}
	return &record, nil
}

func (r *GormSelectionRepository) Save(ctx context.Context, record *models.SelectionRecord) error {
	record.Name = r.name
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"players", "budget", "preferences", "filters", "sort", "updated_at"}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save selection: %w", err)
	}
	return nil
}
