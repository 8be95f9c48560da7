package validator

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format accepted and echoed in validation messages
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar day at UTC midnight
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

// StudentCreateRequest is the body of POST /students
type StudentCreateRequest struct {
	Name              string                          `json:"name" validate:"required,min=1,max=200"`
	DateOfBirth       string                          `json:"dateofbirth" validate:"required,calendar_date,past_date"`
	AadharNumber      string                          `json:"aadharNumber" validate:"required,national_id"`
	ProctorID         string                          `json:"proctorId" validate:"required,max=36"`
	LibraryMembership *LibraryMembershipCreateRequest `json:"libraryMembership"`
}

// StudentUpdateRequest lists the mutable student fields; nil means unchanged
type StudentUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	DateOfBirth  *string `json:"dateofbirth" validate:"omitempty,calendar_date,past_date"`
	AadharNumber *string `json:"aadharNumber" validate:"omitempty,national_id"`
	ProctorID    *string `json:"proctorId" validate:"omitempty,min=1,max=36"`
}

func (r *StudentUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.DateOfBirth == nil && r.AadharNumber == nil && r.ProctorID == nil
}

// ProfessorCreateRequest is the body of POST /professors
type ProfessorCreateRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Seniority    string `json:"seniority" validate:"required,seniority,max=50"`
	AadharNumber string `json:"aadharNumber" validate:"required,national_id"`
}

type ProfessorUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Seniority    *string `json:"seniority" validate:"omitempty,seniority,max=50"`
	AadharNumber *string `json:"aadharNumber" validate:"omitempty,national_id"`
}

func (r *ProfessorUpdateRequest) IsEmpty() bool {
	return r.Name == nil && r.Seniority == nil && r.AadharNumber == nil
}

// AssignProctorRequest is the body of POST /professors/:professorId/proctorships
type AssignProctorRequest struct {
	StudentID string `json:"studentId" validate:"required,max=36"`
}

type LibraryMembershipCreateRequest struct {
	IssueDate  string `json:"issueDate" validate:"required,calendar_date"`
	ExpiryDate string `json:"expiryDate" validate:"required,calendar_date"`
}

type LibraryMembershipUpdateRequest struct {
	IssueDate  *string `json:"issueDate" validate:"omitempty,calendar_date"`
	ExpiryDate *string `json:"expiryDate" validate:"omitempty,calendar_date"`
}

func (r *LibraryMembershipUpdateRequest) IsEmpty() bool {
	return r.IssueDate == nil && r.ExpiryDate == nil
}
