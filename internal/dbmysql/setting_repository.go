package dbmysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"modguard/internal/common"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, name string) (*ModerationSetting, error) {
	var setting ModerationSetting
	err := r.db.WithContext(ctx).First(&setting, "setting_name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	return &setting, err
}

func (r *SettingRepository) List(ctx context.Context) ([]ModerationSetting, error) {
	var settings []ModerationSetting
	err := r.db.WithContext(ctx).Order("setting_name").Find(&settings).Error
	return settings, err
}

// Upsert creates the named setting or updates its value and description.
func (r *SettingRepository) Upsert(ctx context.Context, name, value, description string) error {
	now := time.Now().UTC()
	setting := ModerationSetting{
		SettingName:        name,
		SettingValue:       value,
		SettingDescription: description,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "setting_description", "updated_at"}),
	}).Create(&setting).Error
}

// SeedDefaults records the fixed moderation policy constants so operators can
// see them next to any future tunables. Existing rows are left untouched.
func (r *SettingRepository) SeedDefaults(ctx context.Context) error {
	defaults := []ModerationSetting{
		{SettingName: "auto_reject_threshold", SettingValue: "0.8", SettingDescription: "Overall score above which content is auto-rejected"},
		{SettingName: "auto_approve_threshold", SettingValue: "0.3", SettingDescription: "Overall score below which content is auto-approved"},
		{SettingName: "flag_threshold", SettingValue: "0.3", SettingDescription: "Minimum category score for a content flag to be recorded"},
	}

	now := time.Now().UTC()
	for i := range defaults {
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_name"}},
		DoNothing: true,
	}).Create(&defaults).Error
}
