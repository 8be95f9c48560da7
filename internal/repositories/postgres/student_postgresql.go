package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/campus-records-service/internal/cache"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Create inserts the student row only; associations are written by their own repositories
func (s *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := s.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", repositories.TranslateError(err))
	}
	cache.InvalidateStudentCache(ctx, s.cacheManager)

	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Student, error) {
	var student models.Student
	err := s.getDB(tx).WithContext(ctx).
		Preload("Proctor").
		Preload("LibraryMembership").
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", repositories.TranslateError(err))
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string) (*models.Student, error) {
	var student models.Student
	err := s.getDB(tx).WithContext(ctx).
		Where("aadhar_number = ?", aadharNumber).
		First(&student).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get student by national id: %w", repositories.TranslateError(err))
	}
	return &student, nil
}

func (s *StudentPostgreSQL) ExistsByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string, excludeID *string) (bool, error) {
	var count int64
	query := s.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("aadhar_number = ?", aadharNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check student national id: %w", err)
	}
	return count > 0, nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Student, error) {
	var students []models.Student
	err := s.cacheManager.Student.CacheOrExecute(ctx, cache.StudentListKey, &students, s.cacheManager.TTL(cache.StudentCacheConfig), func() (interface{}, error) {
		var rows []models.Student
		err := s.getDB(tx).WithContext(ctx).
			Preload("LibraryMembership").
			Order("name ASC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list students: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (s *StudentPostgreSQL) ListEnriched(ctx context.Context, tx *gorm.DB) ([]models.Student, error) {
	var students []models.Student
	err := s.cacheManager.Student.CacheOrExecute(ctx, cache.StudentEnrichedListKey, &students, s.cacheManager.TTL(cache.StudentCacheConfig), func() (interface{}, error) {
		var rows []models.Student
		err := s.getDB(tx).WithContext(ctx).
			Preload("Proctor").
			Preload("LibraryMembership").
			Order("name ASC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list enriched students: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (s *StudentPostgreSQL) ListByProctor(ctx context.Context, tx *gorm.DB, professorID string) ([]models.Student, error) {
	var students []models.Student
	err := s.cacheManager.Proctorship.CacheOrExecute(ctx, cache.ProctorshipKey(professorID), &students, s.cacheManager.TTL(cache.ProctorshipCacheConfig), func() (interface{}, error) {
		var rows []models.Student
		err := s.getDB(tx).WithContext(ctx).
			Where("proctor_id = ?", professorID).
			Order("name ASC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list students by proctor: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// Update applies column updates and reports ErrNotFound when no row matched
func (s *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update student: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update student: %w", repositories.ErrNotFound)
	}
	cache.InvalidateStudentCache(ctx, s.cacheManager)

	return nil
}

func (s *StudentPostgreSQL) AssignProctor(ctx context.Context, tx *gorm.DB, studentID, professorID string) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("id = ?", studentID).
		Update("proctor_id", professorID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign proctor: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to assign proctor: %w", repositories.ErrNotFound)
	}
	cache.InvalidateStudentCache(ctx, s.cacheManager)

	return nil
}

// Delete removes the student; the membership row goes with it through the cascade
func (s *StudentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := s.getDB(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Student{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete student: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete student: %w", repositories.ErrNotFound)
	}
	cache.InvalidateStudentCache(ctx, s.cacheManager)

	return nil
}
