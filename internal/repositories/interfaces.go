package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/models"
)

// Every method takes the gorm handle it must run on; services pass either the
// root DB or the transaction opened for the current check-then-act sequence.

type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	// GetByID loads the student with its proctor and library membership
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Student, error)
	GetByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string) (*models.Student, error)
	ExistsByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string, excludeID *string) (bool, error)
	// List returns students with their membership only, ordered by name
	List(ctx context.Context, tx *gorm.DB) ([]models.Student, error)
	// ListEnriched returns students with proctor and membership, ordered by name
	ListEnriched(ctx context.Context, tx *gorm.DB) ([]models.Student, error)
	ListByProctor(ctx context.Context, tx *gorm.DB, professorID string) ([]models.Student, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	AssignProctor(ctx context.Context, tx *gorm.DB, studentID, professorID string) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type ProfessorRepository interface {
	Create(ctx context.Context, tx *gorm.DB, professor *models.Professor) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Professor, error)
	GetByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string) (*models.Professor, error)
	ExistsByNationalID(ctx context.Context, tx *gorm.DB, aadharNumber string, excludeID *string) (bool, error)
	List(ctx context.Context, tx *gorm.DB) ([]models.Professor, error)
	Update(ctx context.Context, tx *gorm.DB, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type LibraryMembershipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, membership *models.LibraryMembership) error
	GetByStudentID(ctx context.Context, tx *gorm.DB, studentID string) (*models.LibraryMembership, error)
	ExistsForStudent(ctx context.Context, tx *gorm.DB, studentID string) (bool, error)
	UpdateByStudentID(ctx context.Context, tx *gorm.DB, studentID string, updates map[string]interface{}) error
	DeleteByStudentID(ctx context.Context, tx *gorm.DB, studentID string) error
}
