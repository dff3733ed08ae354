package moderation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"modguard/internal/common"
	"modguard/internal/dbmysql"
)

// Repository is the GORM-backed Store. Multi-row writes (content plus
// verdict plus flags plus audit entry) happen in one transaction, so a
// content row never exists without its status or its audit trail.
type Repository struct {
	db *gorm.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateProcessed(ctx context.Context, content *dbmysql.Content, status *dbmysql.ModerationStatus, flags []dbmysql.ContentFlag, action *dbmysql.ModerationAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(content).Error; err != nil {
			return fmt.Errorf("create content: %w", err)
		}

		status.ContentID = content.ContentID
		if err := tx.Create(status).Error; err != nil {
			return fmt.Errorf("create status: %w", err)
		}

		for i := range flags {
			flags[i].ContentID = content.ContentID
		}
		if len(flags) > 0 {
			if err := tx.Create(&flags).Error; err != nil {
				return fmt.Errorf("create flags: %w", err)
			}
		}

		action.ContentID = content.ContentID
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		return nil
	})
}

func (r *Repository) GetContent(ctx context.Context, contentID uint64) (*dbmysql.Content, error) {
	var content dbmysql.Content
	err := r.db.WithContext(ctx).
		Preload("Status").
		Preload("Flags").
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&content, "content_id = ?", contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get content %d: %w", contentID, err)
	}
	return &content, nil
}

func (r *Repository) GetStatus(ctx context.Context, contentID uint64) (*dbmysql.ModerationStatus, error) {
	var status dbmysql.ModerationStatus
	err := r.db.WithContext(ctx).
		First(&status, "content_id = ?", contentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get status for content %d: %w", contentID, err)
	}
	return &status, nil
}

func (r *Repository) SaveStatusWithAction(ctx context.Context, status *dbmysql.ModerationStatus, action *dbmysql.ModerationAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(status).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("create action: %w", err)
		}
		return nil
	})
}

func (r *Repository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]dbmysql.Content, error) {
	var contents []dbmysql.Content
	err := r.db.WithContext(ctx).
		Joins("JOIN moderation_statuses ON moderation_statuses.content_id = contents.content_id").
		Where("moderation_statuses.status = ?", status).
		Preload("Status").
		Preload("Flags").
		Order("contents.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&contents).Error
	if err != nil {
		return nil, fmt.Errorf("list %s content: %w", status, err)
	}
	return contents, nil
}

func (r *Repository) DistinctFlagTypes(ctx context.Context) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).
		Model(&dbmysql.ContentFlag{}).
		Distinct("flag_type").
		Order("flag_type ASC").
		Pluck("flag_type", &types).Error
	if err != nil {
		return nil, fmt.Errorf("list flag types: %w", err)
	}
	return types, nil
}
