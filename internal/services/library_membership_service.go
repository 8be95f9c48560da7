package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type libraryMembershipService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewLibraryMembershipService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) LibraryMembershipService {
	return &libraryMembershipService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *libraryMembershipService) Get(ctx context.Context, studentID string) (*models.LibraryMembership, error) {
	var membership *models.LibraryMembership
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		membership, err = s.loadMembership(ctx, txRepo, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (s *libraryMembershipService) Create(ctx context.Context, studentID string, req *validator.LibraryMembershipCreateRequest) (*models.LibraryMembership, error) {
	if errs := s.validator.GetBusinessValidator().ValidateMembershipCreate(req); len(errs) > 0 {
		return nil, errs
	}

	membership, err := buildMembership(studentID, req)
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.ensureStudent(ctx, txRepo, studentID); err != nil {
			return err
		}

		exists, err := txRepo.LibraryMembership().ExistsForStudent(ctx, nil, studentID)
		if err != nil {
			return err
		}
		if exists {
			return ErrMembershipExists
		}

		if err := txRepo.LibraryMembership().Create(ctx, nil, membership); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrMembershipExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Library membership created", "student_id", studentID, "membership_id", membership.ID)
	publish(ctx, s.publisher, s.logger, events.LibraryMembershipCreated, map[string]interface{}{
		"studentId":    studentID,
		"membershipId": membership.ID,
	})

	return membership, nil
}

// Update changes only the supplied dates; the resulting window is validated against the stored one
func (s *libraryMembershipService) Update(ctx context.Context, studentID string, req *validator.LibraryMembershipUpdateRequest) (*models.LibraryMembership, error) {
	var updated *models.LibraryMembership
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		current, err := s.loadMembership(ctx, txRepo, studentID)
		if err != nil {
			return err
		}

		if errs := s.validator.GetBusinessValidator().ValidateMembershipUpdate(req, time.Time(current.IssueDate), time.Time(current.ExpiryDate)); len(errs) > 0 {
			return errs
		}

		updates := make(map[string]interface{})
		if req.IssueDate != nil {
			issue, err := toDate(*req.IssueDate)
			if err != nil {
				return err
			}
			updates["issue_date"] = issue
		}
		if req.ExpiryDate != nil {
			expiry, err := toDate(*req.ExpiryDate)
			if err != nil {
				return err
			}
			updates["expiry_date"] = expiry
		}

		if err := txRepo.LibraryMembership().UpdateByStudentID(ctx, nil, studentID, updates); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMembershipNotFound
			}
			return err
		}

		updated, err = txRepo.LibraryMembership().GetByStudentID(ctx, nil, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Library membership updated", "student_id", studentID,
		"issue_date", formatDate(updated.IssueDate), "expiry_date", formatDate(updated.ExpiryDate))
	publish(ctx, s.publisher, s.logger, events.LibraryMembershipUpdated, map[string]interface{}{
		"studentId":    studentID,
		"membershipId": updated.ID,
	})

	return updated, nil
}

func (s *libraryMembershipService) Delete(ctx context.Context, studentID string) error {
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := s.ensureStudent(ctx, txRepo, studentID); err != nil {
			return err
		}
		if err := txRepo.LibraryMembership().DeleteByStudentID(ctx, nil, studentID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrMembershipNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Library membership deleted", "student_id", studentID)
	publish(ctx, s.publisher, s.logger, events.LibraryMembershipDeleted, map[string]interface{}{"studentId": studentID})

	return nil
}

func (s *libraryMembershipService) ensureStudent(ctx context.Context, repo repositories.Repository, studentID string) error {
	if _, err := repo.Student().GetByID(ctx, nil, studentID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to load student: %w", err)
	}
	return nil
}

// loadMembership distinguishes a missing student from a student without a membership
func (s *libraryMembershipService) loadMembership(ctx context.Context, repo repositories.Repository, studentID string) (*models.LibraryMembership, error) {
	if err := s.ensureStudent(ctx, repo, studentID); err != nil {
		return nil, err
	}

	membership, err := repo.LibraryMembership().GetByStudentID(ctx, nil, studentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to load library membership: %w", err)
	}
	return membership, nil
}
