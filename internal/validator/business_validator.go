package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var nationalIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,32}$`)

// BusinessValidator handles request validation for the record service
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate runs struct tag validation
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (bv *BusinessValidator) ValidateStudentCreate(req *StudentCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.LibraryMembership != nil && len(errors) == 0 {
		errors = append(errors, validateMembershipWindow(req.LibraryMembership.IssueDate, req.LibraryMembership.ExpiryDate)...)
	}

	return errors
}

func (bv *BusinessValidator) ValidateStudentUpdate(req *StudentUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.IsEmpty() {
		errors = append(errors, emptyPatchError())
	}

	return errors
}

func (bv *BusinessValidator) ValidateProfessorCreate(req *ProfessorCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateProfessorUpdate(req *ProfessorUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.IsEmpty() {
		errors = append(errors, emptyPatchError())
	}

	return errors
}

func (bv *BusinessValidator) ValidateAssignProctor(req *AssignProctorRequest) ValidationErrors {
	return bv.Validate(req)
}

func (bv *BusinessValidator) ValidateMembershipCreate(req *LibraryMembershipCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if len(errors) == 0 {
		errors = append(errors, validateMembershipWindow(req.IssueDate, req.ExpiryDate)...)
	}

	return errors
}

// ValidateMembershipUpdate checks the patch and the window that results from applying it
func (bv *BusinessValidator) ValidateMembershipUpdate(req *LibraryMembershipUpdateRequest, currentIssue, currentExpiry time.Time) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	if req.IsEmpty() {
		errors = append(errors, emptyPatchError())
	}
	if len(errors) > 0 {
		return errors
	}

	issue, expiry := currentIssue, currentExpiry
	if req.IssueDate != nil {
		issue, _ = ParseDate(*req.IssueDate)
	}
	if req.ExpiryDate != nil {
		expiry, _ = ParseDate(*req.ExpiryDate)
	}
	if expiry.Before(issue) {
		errors = append(errors, ValidationError{
			Field:   "expiryDate",
			Message: "must not be before issueDate",
			Value:   expiry.Format(DateLayout),
			Rule:    "membership_window",
		})
	}

	return errors
}

func validateMembershipWindow(issueRaw, expiryRaw string) ValidationErrors {
	issue, err := ParseDate(issueRaw)
	if err != nil {
		return nil
	}
	expiry, err := ParseDate(expiryRaw)
	if err != nil {
		return nil
	}
	if expiry.Before(issue) {
		return ValidationErrors{{
			Field:   "expiryDate",
			Message: "must not be before issueDate",
			Value:   expiryRaw,
			Rule:    "membership_window",
		}}
	}
	return nil
}

func emptyPatchError() ValidationError {
	return ValidationError{
		Field:   "body",
		Message: "at least one updatable field must be supplied",
		Rule:    "non_empty_patch",
	}
}

// registerBusinessRules registers the custom tags used by the request DTOs
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterValidation("national_id", func(fl validator.FieldLevel) bool {
		return nationalIDPattern.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})

	bv.validate.RegisterValidation("past_date", func(fl validator.FieldLevel) bool {
		d, err := ParseDate(fl.Field().String())
		if err != nil {
			// calendar_date reports the format problem
			return true
		}
		return !d.After(time.Now().UTC())
	})

	bv.validate.RegisterValidation("seniority", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
