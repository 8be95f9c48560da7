package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/cache"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
)

type LibraryMembershipPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLibraryMembershipPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.LibraryMembershipRepository {
	return &LibraryMembershipPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (l *LibraryMembershipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

// Create inserts a membership; a second membership for the same student fails on the unique index
func (l *LibraryMembershipPostgreSQL) Create(ctx context.Context, tx *gorm.DB, membership *models.LibraryMembership) error {
	if err := l.getDB(tx).WithContext(ctx).Create(membership).Error; err != nil {
		return fmt.Errorf("failed to create library membership: %w", repositories.TranslateError(err))
	}
	// student projections carry the membership id
	cache.SafeDelete(ctx, l.cacheManager.Student, cache.StudentListKey, cache.StudentEnrichedListKey)

	return nil
}

func (l *LibraryMembershipPostgreSQL) GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.LibraryMembership, error) {
	var membership models.LibraryMembership
	err := l.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&membership).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get library membership: %w", repositories.TranslateError(err))
	}
	return &membership, nil
}

func (l *LibraryMembershipPostgreSQL) ExistsForStudent(ctx context.Context, tx *gorm.DB, studentID string) (bool, error) {
	var count int64
	err := l.getDB(tx).WithContext(ctx).
		Model(&models.LibraryMembership{}).
		Where("student_id = ?", studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check library membership: %w", err)
	}
	return count > 0, nil
}

func (l *LibraryMembershipPostgreSQL) UpdateByStudentID(ctx context.Context, tx *gorm.DB, studentID string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	result := l.getDB(tx).WithContext(ctx).
		Model(&models.LibraryMembership{}).
		Where("student_id = ?", studentID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update library membership: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update library membership: %w", repositories.ErrNotFound)
	}
	cache.SafeDelete(ctx, l.cacheManager.Student, cache.StudentEnrichedListKey)

	return nil
}

func (l *LibraryMembershipPostgreSQL) DeleteByStudentID(ctx context.Context, tx *gorm.DB, studentID string) error {
	result := l.getDB(tx).WithContext(ctx).
		Where("student_id = ?", studentID).
		Delete(&models.LibraryMembership{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete library membership: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete library membership: %w", repositories.ErrNotFound)
	}
	cache.SafeDelete(ctx, l.cacheManager.Student, cache.StudentListKey, cache.StudentEnrichedListKey)

	return nil
}
