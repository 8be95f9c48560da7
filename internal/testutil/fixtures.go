package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qawatake/fixify"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/campus-records-service/internal/models"
)

var sequence atomic.Int64

func nextNationalID(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, sequence.Add(1))
}

// Date builds a calendar date at UTC midnight
func Date(year int, month time.Month, day int) datatypes.Date {
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Professor returns a professor fixture; setters adjust fields before insertion
func Professor(setters ...func(*models.Professor)) *fixify.Model[models.Professor] {
	p := &models.Professor{
		Name:         "Professor",
		Seniority:    "Senior",
		AadharNumber: nextNationalID("P"),
	}
	for _, set := range setters {
		set(p)
	}
	return fixify.NewModel(p)
}

// Student returns a student fixture that connects to a proctoring professor
func Student(setters ...func(*models.Student)) *fixify.Model[models.Student] {
	s := &models.Student{
		Name:         "Student",
		DateOfBirth:  Date(2001, time.March, 14),
		AadharNumber: nextNationalID("S"),
	}
	for _, set := range setters {
		set(s)
	}
	return fixify.NewModel(s,
		fixify.ConnectorFunc(func(_ testing.TB, student *models.Student, professor *models.Professor) {
			student.ProctorID = &professor.ID
		}),
	)
}

// LibraryMembership returns a membership fixture that connects to its student
func LibraryMembership(setters ...func(*models.LibraryMembership)) *fixify.Model[models.LibraryMembership] {
	m := &models.LibraryMembership{
		IssueDate:  Date(2024, time.January, 1),
		ExpiryDate: Date(2025, time.January, 1),
	}
	for _, set := range setters {
		set(m)
	}
	return fixify.NewModel(m,
		fixify.ConnectorFunc(func(_ testing.TB, membership *models.LibraryMembership, student *models.Student) {
			membership.StudentID = student.ID
		}),
	)
}

// Insert writes the fixture graph parents first
func Insert(t testing.TB, db *gorm.DB, models ...fixify.IModel) *fixify.Fixture {
	t.Helper()

	f := fixify.New(t, models...)
	f.Iterate(func(v any) error {
		return db.Omit(clause.Associations).Create(v).Error
	})
	require.NotEmpty(t, f.All())

	return f
}
