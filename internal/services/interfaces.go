package services

import (
	"context"
	"io"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

// ===== RESPONSE TYPES =====

// StudentSummary is the list projection with the membership flattened to its id
type StudentSummary struct {
	ID                  string         `json:"id"`
	Name                string         `json:"name"`
	DateOfBirth         datatypes.Date `json:"dateofbirth"`
	AadharNumber        string         `json:"aadharNumber"`
	ProctorID           *string        `json:"proctorId"`
	LibraryMembershipID *string        `json:"libraryMembershipId"`
}

// StudentResponse is a student with its relations and the flattened membership id
type StudentResponse struct {
	*models.Student
	LibraryMembershipID *string `json:"libraryMembershipId"`
}

type ProfessorSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Seniority string `json:"seniority"`
}

type ProctorshipResponse struct {
	Professor ProfessorSummary `json:"professor"`
	Students  []models.Student `json:"students"`
}

// ===== SERVICES =====

type StudentService interface {
	List(ctx context.Context) ([]StudentSummary, error)
	ListEnriched(ctx context.Context) ([]StudentResponse, error)
	GetByID(ctx context.Context, id string) (*StudentResponse, error)
	Create(ctx context.Context, req *validator.StudentCreateRequest) (*StudentResponse, error)
	Update(ctx context.Context, id string, req *validator.StudentUpdateRequest) (*StudentResponse, error)
	Delete(ctx context.Context, id string) error
}

type ProfessorService interface {
	List(ctx context.Context) ([]models.Professor, error)
	GetByID(ctx context.Context, id string) (*models.Professor, error)
	Create(ctx context.Context, req *validator.ProfessorCreateRequest) (*models.Professor, error)
	Update(ctx context.Context, id string, req *validator.ProfessorUpdateRequest) (*models.Professor, error)
	Delete(ctx context.Context, id string) error

	// Proctorship
	GetProctorships(ctx context.Context, professorID string) (*ProctorshipResponse, error)
	AssignProctor(ctx context.Context, professorID string, req *validator.AssignProctorRequest) error
}

type LibraryMembershipService interface {
	Get(ctx context.Context, studentID string) (*models.LibraryMembership, error)
	Create(ctx context.Context, studentID string, req *validator.LibraryMembershipCreateRequest) (*models.LibraryMembership, error)
	Update(ctx context.Context, studentID string, req *validator.LibraryMembershipUpdateRequest) (*models.LibraryMembership, error)
	Delete(ctx context.Context, studentID string) error
}

type ExportService interface {
	ExportStudents(ctx context.Context, w io.Writer) error
	ExportProfessors(ctx context.Context, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Student() StudentService
	Professor() ProfessorService
	LibraryMembership() LibraryMembershipService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
