package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

// publish sends an event after commit. Delivery failures are logged, never returned.
func publish(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data map[string]interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events.NewEvent(eventType, data)); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "event_type", eventType, "error", err)
	}
}

// toDate converts an already validated date string
func toDate(raw string) (datatypes.Date, error) {
	t, err := validator.ParseDate(raw)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

func formatDate(d datatypes.Date) string {
	return time.Time(d).UTC().Format(validator.DateLayout)
}

func toStudentResponse(student *models.Student) *StudentResponse {
	resp := &StudentResponse{Student: student}
	if student.LibraryMembership != nil {
		id := student.LibraryMembership.ID
		resp.LibraryMembershipID = &id
	}
	return resp
}

func toStudentSummary(student *models.Student) StudentSummary {
	summary := StudentSummary{
		ID:           student.ID,
		Name:         student.Name,
		DateOfBirth:  student.DateOfBirth,
		AadharNumber: student.AadharNumber,
		ProctorID:    student.ProctorID,
	}
	if student.LibraryMembership != nil {
		id := student.LibraryMembership.ID
		summary.LibraryMembershipID = &id
	}
	return summary
}
