package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type professorService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewProfessorService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ProfessorService {
	return &professorService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *professorService) List(ctx context.Context) ([]models.Professor, error) {
	professors, err := s.repo.Professor().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list professors: %w", err)
	}
	return professors, nil
}

func (s *professorService) GetByID(ctx context.Context, id string) (*models.Professor, error) {
	professor, err := s.repo.Professor().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProfessorNotFound
		}
		return nil, fmt.Errorf("failed to get professor: %w", err)
	}
	return professor, nil
}

func (s *professorService) Create(ctx context.Context, req *validator.ProfessorCreateRequest) (*models.Professor, error) {
	if errs := s.validator.GetBusinessValidator().ValidateProfessorCreate(req); len(errs) > 0 {
		return nil, errs
	}

	professor := &models.Professor{
		Name:         req.Name,
		Seniority:    req.Seniority,
		AadharNumber: req.AadharNumber,
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		exists, err := txRepo.Professor().ExistsByNationalID(ctx, nil, req.AadharNumber, nil)
		if err != nil {
			return err
		}
		if exists {
			return ErrProfessorExists
		}

		if err := txRepo.Professor().Create(ctx, nil, professor); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrProfessorExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Professor created", "professor_id", professor.ID)
	publish(ctx, s.publisher, s.logger, events.ProfessorCreated, map[string]interface{}{"professorId": professor.ID})

	return professor, nil
}

func (s *professorService) Update(ctx context.Context, id string, req *validator.ProfessorUpdateRequest) (*models.Professor, error) {
	if errs := s.validator.GetBusinessValidator().ValidateProfessorUpdate(req); len(errs) > 0 {
		return nil, errs
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Seniority != nil {
		updates["seniority"] = *req.Seniority
	}
	if req.AadharNumber != nil {
		updates["aadhar_number"] = *req.AadharNumber
	}

	var updated *models.Professor
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Professor().GetByID(ctx, nil, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrProfessorNotFound
			}
			return err
		}

		if req.AadharNumber != nil {
			taken, err := txRepo.Professor().ExistsByNationalID(ctx, nil, *req.AadharNumber, &id)
			if err != nil {
				return err
			}
			if taken {
				return ErrProfessorExists
			}
		}

		if err := txRepo.Professor().Update(ctx, nil, id, updates); err != nil {
			switch {
			case repositories.IsDuplicateKeyError(err):
				return ErrProfessorExists
			case repositories.IsNotFoundError(err):
				return ErrProfessorNotFound
			}
			return err
		}

		var err error
		updated, err = txRepo.Professor().GetByID(ctx, nil, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Professor updated", "professor_id", id)
	publish(ctx, s.publisher, s.logger, events.ProfessorUpdated, map[string]interface{}{"professorId": id})

	return updated, nil
}

// Delete removes the professor; proctored students are kept with their proctor cleared
func (s *professorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Professor().Delete(ctx, s.db, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrProfessorNotFound
		}
		return fmt.Errorf("failed to delete professor: %w", err)
	}

	s.logger.InfoContext(ctx, "Professor deleted", "professor_id", id)
	publish(ctx, s.publisher, s.logger, events.ProfessorDeleted, map[string]interface{}{"professorId": id})

	return nil
}

// ===== PROCTORSHIP =====

func (s *professorService) GetProctorships(ctx context.Context, professorID string) (*ProctorshipResponse, error) {
	professor, err := s.GetByID(ctx, professorID)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Student().ListByProctor(ctx, s.db, professorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proctored students: %w", err)
	}
	if students == nil {
		students = []models.Student{}
	}

	return &ProctorshipResponse{
		Professor: ProfessorSummary{
			ID:        professor.ID,
			Name:      professor.Name,
			Seniority: professor.Seniority,
		},
		Students: students,
	}, nil
}

// AssignProctor points the student at the professor, replacing any previous proctor
func (s *professorService) AssignProctor(ctx context.Context, professorID string, req *validator.AssignProctorRequest) error {
	if errs := s.validator.GetBusinessValidator().ValidateAssignProctor(req); len(errs) > 0 {
		return errs
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Professor().GetByID(ctx, nil, professorID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrProfessorNotFound
			}
			return err
		}

		if err := txRepo.Student().AssignProctor(ctx, nil, req.StudentID, professorID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Proctor assigned", "professor_id", professorID, "student_id", req.StudentID)
	publish(ctx, s.publisher, s.logger, events.ProctorAssigned, map[string]interface{}{
		"professorId": professorID,
		"studentId":   req.StudentID,
	})

	return nil
}
