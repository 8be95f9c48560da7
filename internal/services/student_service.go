package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) StudentService {
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== QUERIES =====

func (s *studentService) List(ctx context.Context) ([]StudentSummary, error) {
	students, err := s.repo.Student().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	summaries := make([]StudentSummary, 0, len(students))
	for i := range students {
		summaries = append(summaries, toStudentSummary(&students[i]))
	}
	return summaries, nil
}

func (s *studentService) ListEnriched(ctx context.Context) ([]StudentResponse, error) {
	students, err := s.repo.Student().ListEnriched(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list enriched students: %w", err)
	}

	responses := make([]StudentResponse, 0, len(students))
	for i := range students {
		responses = append(responses, *toStudentResponse(&students[i]))
	}
	return responses, nil
}

func (s *studentService) GetByID(ctx context.Context, id string) (*StudentResponse, error) {
	student, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return toStudentResponse(student), nil
}

// ===== COMMANDS =====

// Create inserts the student and, when supplied, its library membership in one transaction.
// An unknown proctorId surfaces as a store error.
func (s *studentService) Create(ctx context.Context, req *validator.StudentCreateRequest) (*StudentResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateStudentCreate(req); len(errs) > 0 {
		return nil, errs
	}

	dob, err := toDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	var created *models.Student
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Student().ExistsByNationalID(ctx, nil, req.AadharNumber, nil)
		if err != nil {
			return err
		}
		if exists {
			return ErrStudentExists
		}

		proctorID := req.ProctorID
		student := &models.Student{
			Name:         req.Name,
			DateOfBirth:  dob,
			AadharNumber: req.AadharNumber,
			ProctorID:    &proctorID,
		}
		if err := txRepo.Student().Create(ctx, nil, student); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrStudentExists
			}
			return err
		}

		if req.LibraryMembership != nil {
			membership, err := buildMembership(student.ID, req.LibraryMembership)
			if err != nil {
				return err
			}
			if err := txRepo.LibraryMembership().Create(ctx, nil, membership); err != nil {
				return err
			}
		}

		created, err = txRepo.Student().GetByID(ctx, nil, student.ID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrStudentExists):
		case repositories.IsForeignKeyError(err):
			s.logger.WarnContext(ctx, "Student references an unknown proctor", "proctor_id", req.ProctorID, "error", err)
		default:
			s.logger.ErrorContext(ctx, "Failed to create student", "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Student created", "student_id", created.ID)
	publish(ctx, s.publisher, s.logger, events.StudentCreated, map[string]interface{}{
		"studentId": created.ID,
		"proctorId": created.ProctorID,
	})

	return toStudentResponse(created), nil
}

// Update applies the supplied fields only
func (s *studentService) Update(ctx context.Context, id string, req *validator.StudentUpdateRequest) (*StudentResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateStudentUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	updates, err := studentUpdates(req)
	if err != nil {
		return nil, err
	}

	var updated *models.Student
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Student().GetByID(ctx, nil, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return err
		}

		if req.AadharNumber != nil {
			taken, err := txRepo.Student().ExistsByNationalID(ctx, nil, *req.AadharNumber, &id)
			if err != nil {
				return err
			}
			if taken {
				return ErrStudentExists
			}
		}

		if err := txRepo.Student().Update(ctx, nil, id, updates); err != nil {
			switch {
			case repositories.IsDuplicateKeyError(err):
				return ErrStudentExists
			case repositories.IsNotFoundError(err):
				return ErrStudentNotFound
			}
			return err
		}

		updated, err = txRepo.Student().GetByID(ctx, nil, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Student updated", "student_id", id, "fields", len(updates))
	publish(ctx, s.publisher, s.logger, events.StudentUpdated, map[string]interface{}{"studentId": id})

	return toStudentResponse(updated), nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Student().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.logger.InfoContext(ctx, "Student deleted", "student_id", id)
	publish(ctx, s.publisher, s.logger, events.StudentDeleted, map[string]interface{}{"studentId": id})

	return nil
}

func studentUpdates(req *validator.StudentUpdateRequest) (map[string]interface{}, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.DateOfBirth != nil {
		dob, err := toDate(*req.DateOfBirth)
		if err != nil {
			return nil, err
		}
		updates["date_of_birth"] = dob
	}
	if req.AadharNumber != nil {
		updates["aadhar_number"] = *req.AadharNumber
	}
	if req.ProctorID != nil {
		updates["proctor_id"] = *req.ProctorID
	}
	return updates, nil
}

func buildMembership(studentID string, req *validator.LibraryMembershipCreateRequest) (*models.LibraryMembership, error) {
	issue, err := toDate(req.IssueDate)
	if err != nil {
		return nil, err
	}
	expiry, err := toDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	return &models.LibraryMembership{
		StudentID:  studentID,
		IssueDate:  issue,
		ExpiryDate: expiry,
	}, nil
}
