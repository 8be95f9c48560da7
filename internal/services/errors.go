package services

import "errors"

// Service errors surfaced to handlers
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrProfessorNotFound  = errors.New("professor not found")
	ErrMembershipNotFound = errors.New("library membership not found")

	ErrStudentExists    = errors.New("student already exists")
	ErrProfessorExists  = errors.New("professor already exists")
	ErrMembershipExists = errors.New("library membership already exists")
)
