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

type ProfessorPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProfessorPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ProfessorRepository {
	return &ProfessorPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (p *ProfessorPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProfessorPostgreSQL) Create(ctx context.Context, tx *gorm.DB, professor *models.Professor) error {
	if err := p.getDB(tx).WithContext(ctx).Omit(clause.Associations).Create(professor).Error; err != nil {
		return fmt.Errorf("failed to create professor: %w", repositories.TranslateError(err))
	}
	cache.SafeDelete(ctx, p.cacheManager.Professor, cache.ProfessorListKey)

	return nil
}

func (p *ProfessorPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Professor, error) {
	var professor models.Professor
	if err := p.getDB(tx).WithContext(ctx).Where("id = ?", id).First(&professor).Error; err != nil {
		return nil, fmt.Errorf("failed to get professor: %w", repositories.TranslateError(err))
	}
	return &professor, nil
}

func (p *ProfessorPostgreSQL) GetByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string) (*models.Professor, error) {
	var professor models.Professor
	if err := p.getDB(tx).WithContext(ctx).Where("aadhar_number = ?", aadharNumber).First(&professor).Error; err != nil {
		return nil, fmt.Errorf("failed to get professor by national id: %w", repositories.TranslateError(err))
	}
	return &professor, nil
}

func (p *ProfessorPostgreSQL) ExistsByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string, excludeID *string) (bool, error) {
	var count int64
	query := p.getDB(tx).WithContext(ctx).
		Model(&models.Professor{}).
		Where("aadhar_number = ?", aadharNumber)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check professor national id: %w", err)
	}
	return count > 0, nil
}

func (p *ProfessorPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]models.Professor, error) {
	var professors []models.Professor
	err := p.cacheManager.Professor.CacheOrExecute(ctx, cache.ProfessorListKey, &professors, p.cacheManager.TTL(cache.ProfessorCacheConfig), func() (interface{}, error) {
		var rows []models.Professor
		if err := p.getDB(tx).WithContext(ctx).Order("name ASC, id ASC").Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list professors: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return professors, nil
}

func (p *ProfessorPostgreSQL) Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	result := p.getDB(tx).WithContext(ctx).
		Model(&models.Professor{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update professor: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update professor: %w", repositories.ErrNotFound)
	}
	cache.InvalidateProfessorCache(ctx, p.cacheManager, id)

	return nil
}

// Delete removes the professor; students keep their rows with proctor_id cleared
func (p *ProfessorPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	result := p.getDB(tx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Professor{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete professor: %w", repositories.TranslateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete professor: %w", repositories.ErrNotFound)
	}
	cache.InvalidateProfessorCache(ctx, p.cacheManager, id)
	cache.InvalidateStudentCache(ctx, p.cacheManager)

	return nil
}
