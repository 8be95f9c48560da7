package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/models"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/campus-records-service/internal/testutil"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type testEnv struct {
	ctx       context.Context
	db        *gorm.DB
	manager   ServiceManager
	publisher *testutil.MockEventPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	publisher := testutil.NewMockEventPublisher(logger)

	manager := NewServiceManager(db, repo, logger, validator.New(), publisher)
	require.NoError(t, manager.Initialize(context.Background()))

	return &testEnv{
		ctx:       context.Background(),
		db:        db,
		manager:   manager,
		publisher: publisher,
	}
}

func ptr[T any](v T) *T { return &v }

func (e *testEnv) createProfessor(t *testing.T, name, aadhar string) *models.Professor {
	t.Helper()
	p, err := e.manager.Professor().Create(e.ctx, &validator.ProfessorCreateRequest{
		Name: name, Seniority: "Senior", AadharNumber: aadhar,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) createStudent(t *testing.T, name, aadhar, proctorID string) *StudentResponse {
	t.Helper()
	s, err := e.manager.Student().Create(e.ctx, &validator.StudentCreateRequest{
		Name: name, DateOfBirth: "2000-01-01", AadharNumber: aadhar, ProctorID: proctorID,
	})
	require.NoError(t, err)
	return s
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestStudentCreateRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")

	created := env.createStudent(t, "S1", "999", prof.ID)
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.Proctor)
	assert.Equal(t, "Dr. A", created.Proctor.Name)

	fetched, err := env.manager.Student().GetByID(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)
	assert.Equal(t, created.AadharNumber, fetched.AadharNumber)
	assert.Equal(t, *created.ProctorID, *fetched.ProctorID)
	assert.Equal(t, "2000-01-01", formatDate(fetched.DateOfBirth))
	assert.Nil(t, fetched.LibraryMembershipID)

	assert.Len(t, env.publisher.EventsOfType(events.StudentCreated), 1)
}

func TestStudentCreateWithInlineMembership(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")

	created, err := env.manager.Student().Create(env.ctx, &validator.StudentCreateRequest{
		Name: "S1", DateOfBirth: "2000-01-01", AadharNumber: "999", ProctorID: prof.ID,
		LibraryMembership: &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"},
	})
	require.NoError(t, err)
	require.NotNil(t, created.LibraryMembership)
	require.NotNil(t, created.LibraryMembershipID)
	assert.Equal(t, created.LibraryMembership.ID, *created.LibraryMembershipID)

	summaries, err := env.manager.Student().List(env.ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, created.LibraryMembership.ID, *summaries[0].LibraryMembershipID)
}

func TestDuplicateNationalIDIsRejectedWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	env.createStudent(t, "S1", "999", prof.ID)

	_, err := env.manager.Professor().Create(env.ctx, &validator.ProfessorCreateRequest{
		Name: "Dr. B", Seniority: "Junior", AadharNumber: "123",
	})
	assert.ErrorIs(t, err, ErrProfessorExists)

	_, err = env.manager.Student().Create(env.ctx, &validator.StudentCreateRequest{
		Name: "S2", DateOfBirth: "2001-01-01", AadharNumber: "999", ProctorID: prof.ID,
		LibraryMembership: &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"},
	})
	assert.ErrorIs(t, err, ErrStudentExists)

	assert.EqualValues(t, 1, count(t, env.db, &models.Professor{}))
	assert.EqualValues(t, 1, count(t, env.db, &models.Student{}))
	assert.EqualValues(t, 0, count(t, env.db, &models.LibraryMembership{}))

	stored, err := env.manager.Professor().GetByID(env.ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", stored.Name)
}

func TestStudentCreateWithUnknownProctorIsStoreError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.manager.Student().Create(env.ctx, &validator.StudentCreateRequest{
		Name: "S1", DateOfBirth: "2000-01-01", AadharNumber: "999", ProctorID: "no-such-professor",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrForeignKey)
	assert.True(t, repositories.IsForeignKeyError(err))
	assert.NotErrorIs(t, err, ErrProfessorNotFound)
	assert.EqualValues(t, 0, count(t, env.db, &models.Student{}))
}

func TestStudentCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.manager.Student().Create(env.ctx, &validator.StudentCreateRequest{Name: "S1"})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := map[string]string{}
	for _, v := range verrs {
		fields[v.Field] = v.Rule
	}
	assert.Equal(t, "required", fields["dateofbirth"])
	assert.Equal(t, "required", fields["aadharNumber"])
	assert.Equal(t, "required", fields["proctorId"])
}

func TestDeleteMissingRecordsReturnNotFound(t *testing.T) {
	env := newTestEnv(t)

	for _, id := range []string{"missing", "00000000-0000-0000-0000-000000000000"} {
		assert.ErrorIs(t, env.manager.Student().Delete(env.ctx, id), ErrStudentNotFound)
		assert.ErrorIs(t, env.manager.Professor().Delete(env.ctx, id), ErrProfessorNotFound)
		assert.ErrorIs(t, env.manager.LibraryMembership().Delete(env.ctx, id), ErrStudentNotFound)
	}

	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)
	assert.ErrorIs(t, env.manager.LibraryMembership().Delete(env.ctx, student.ID), ErrMembershipNotFound)
}

func TestStudentUpdate(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	s1 := env.createStudent(t, "S1", "999", prof.ID)
	env.createStudent(t, "S2", "888", prof.ID)

	updated, err := env.manager.Student().Update(env.ctx, s1.ID, &validator.StudentUpdateRequest{Name: ptr("S1 renamed")})
	require.NoError(t, err)
	assert.Equal(t, "S1 renamed", updated.Name)
	assert.Equal(t, "999", updated.AadharNumber)

	_, err = env.manager.Student().Update(env.ctx, s1.ID, &validator.StudentUpdateRequest{AadharNumber: ptr("888")})
	assert.ErrorIs(t, err, ErrStudentExists)

	// keeping its own national id is not a conflict
	_, err = env.manager.Student().Update(env.ctx, s1.ID, &validator.StudentUpdateRequest{AadharNumber: ptr("999")})
	assert.NoError(t, err)

	_, err = env.manager.Student().Update(env.ctx, "missing", &validator.StudentUpdateRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = env.manager.Student().Update(env.ctx, s1.ID, &validator.StudentUpdateRequest{})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = env.manager.Student().Update(env.ctx, s1.ID, &validator.StudentUpdateRequest{DateOfBirth: ptr("01/02/2000")})
	assert.ErrorAs(t, err, &verrs)
}

func TestProfessorUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	other := env.createProfessor(t, "Dr. B", "456")
	student := env.createStudent(t, "S1", "999", prof.ID)

	updated, err := env.manager.Professor().Update(env.ctx, prof.ID, &validator.ProfessorUpdateRequest{Seniority: ptr("Emeritus")})
	require.NoError(t, err)
	assert.Equal(t, "Emeritus", updated.Seniority)
	assert.Equal(t, "Dr. A", updated.Name)

	_, err = env.manager.Professor().Update(env.ctx, prof.ID, &validator.ProfessorUpdateRequest{AadharNumber: ptr(other.AadharNumber)})
	assert.ErrorIs(t, err, ErrProfessorExists)

	require.NoError(t, env.manager.Professor().Delete(env.ctx, prof.ID))
	assert.Len(t, env.publisher.EventsOfType(events.ProfessorDeleted), 1)

	fetched, err := env.manager.Student().GetByID(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Nil(t, fetched.ProctorID)
}

func TestAssignProctorAppearsInProctorships(t *testing.T) {
	env := newTestEnv(t)
	profA := env.createProfessor(t, "Dr. A", "123")
	profB := env.createProfessor(t, "Dr. B", "456")
	student := env.createStudent(t, "S1", "999", profA.ID)

	require.NoError(t, env.manager.Professor().AssignProctor(env.ctx, profB.ID, &validator.AssignProctorRequest{StudentID: student.ID}))

	fetched, err := env.manager.Student().GetByID(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, profB.ID, *fetched.ProctorID)

	proctorships, err := env.manager.Professor().GetProctorships(env.ctx, profB.ID)
	require.NoError(t, err)
	assert.Equal(t, ProfessorSummary{ID: profB.ID, Name: "Dr. B", Seniority: "Senior"}, proctorships.Professor)
	require.Len(t, proctorships.Students, 1)
	assert.Equal(t, "S1", proctorships.Students[0].Name)

	previous, err := env.manager.Professor().GetProctorships(env.ctx, profA.ID)
	require.NoError(t, err)
	assert.NotNil(t, previous.Students)
	assert.Empty(t, previous.Students)

	assert.Len(t, env.publisher.EventsOfType(events.ProctorAssigned), 1)
}

func TestAssignProctorNotFound(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)

	err := env.manager.Professor().AssignProctor(env.ctx, "missing", &validator.AssignProctorRequest{StudentID: student.ID})
	assert.ErrorIs(t, err, ErrProfessorNotFound)

	err = env.manager.Professor().AssignProctor(env.ctx, prof.ID, &validator.AssignProctorRequest{StudentID: "missing"})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = env.manager.Professor().GetProctorships(env.ctx, "missing")
	assert.ErrorIs(t, err, ErrProfessorNotFound)
}

func TestLibraryMembershipLifecycle(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)
	svc := env.manager.LibraryMembership()

	_, err := svc.Get(env.ctx, student.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)
	_, err = svc.Get(env.ctx, "missing")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	created, err := svc.Create(env.ctx, student.ID, &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, student.ID, created.StudentID)

	_, err = svc.Create(env.ctx, student.ID, &validator.LibraryMembershipCreateRequest{IssueDate: "2024-06-01", ExpiryDate: "2025-06-01"})
	assert.ErrorIs(t, err, ErrMembershipExists)
	assert.EqualValues(t, 1, count(t, env.db, &models.LibraryMembership{}))

	_, err = svc.Create(env.ctx, "missing", &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"})
	assert.ErrorIs(t, err, ErrStudentNotFound)

	updated, err := svc.Update(env.ctx, student.ID, &validator.LibraryMembershipUpdateRequest{IssueDate: ptr("2024-03-01")})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", formatDate(updated.IssueDate))
	assert.Equal(t, "2025-01-01", formatDate(updated.ExpiryDate))
	assert.Equal(t, created.ID, updated.ID)

	require.NoError(t, svc.Delete(env.ctx, student.ID))
	_, err = svc.Get(env.ctx, student.ID)
	assert.ErrorIs(t, err, ErrMembershipNotFound)

	assert.Len(t, env.publisher.EventsOfType(events.LibraryMembershipCreated), 1)
	assert.Len(t, env.publisher.EventsOfType(events.LibraryMembershipUpdated), 1)
	assert.Len(t, env.publisher.EventsOfType(events.LibraryMembershipDeleted), 1)
}

func TestLibraryMembershipUpdateRejectsInvertedWindow(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)
	svc := env.manager.LibraryMembership()

	_, err := svc.Create(env.ctx, student.ID, &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"})
	require.NoError(t, err)

	_, err = svc.Update(env.ctx, student.ID, &validator.LibraryMembershipUpdateRequest{IssueDate: ptr("2026-01-01")})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "membership_window", verrs[0].Rule)

	stored, err := svc.Get(env.ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", formatDate(stored.IssueDate))
}

func TestStudentDeleteRemovesMembership(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)
	_, err := env.manager.LibraryMembership().Create(env.ctx, student.ID, &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"})
	require.NoError(t, err)

	require.NoError(t, env.manager.Student().Delete(env.ctx, student.ID))
	assert.EqualValues(t, 0, count(t, env.db, &models.LibraryMembership{}))
}

func TestListEnrichedIncludesRelations(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	student := env.createStudent(t, "S1", "999", prof.ID)
	membership, err := env.manager.LibraryMembership().Create(env.ctx, student.ID, &validator.LibraryMembershipCreateRequest{IssueDate: "2024-01-01", ExpiryDate: "2025-01-01"})
	require.NoError(t, err)

	enriched, err := env.manager.Student().ListEnriched(env.ctx)
	require.NoError(t, err)
	require.Len(t, enriched, 1)
	require.NotNil(t, enriched[0].Proctor)
	assert.Equal(t, prof.ID, enriched[0].Proctor.ID)
	require.NotNil(t, enriched[0].LibraryMembershipID)
	assert.Equal(t, membership.ID, *enriched[0].LibraryMembershipID)
}

func TestEventPublishFailureDoesNotFailCommand(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.FailWith(errors.New("broker down"))

	prof := env.createProfessor(t, "Dr. A", "123")
	assert.NotEmpty(t, prof.ID)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestExportWorkbooks(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")
	env.createStudent(t, "S1", "999", prof.ID)

	var buf bytes.Buffer
	require.NoError(t, env.manager.Export().ExportStudents(env.ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(studentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Name", rows[0][1])
	assert.Equal(t, "S1", rows[1][1])
	assert.Equal(t, "2000-01-01", rows[1][2])
	assert.Equal(t, "Dr. A", rows[1][5])

	buf.Reset()
	require.NoError(t, env.manager.Export().ExportProfessors(env.ctx, &buf))
	pf, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer pf.Close()
	prow, err := pf.GetRows(professorsSheet)
	require.NoError(t, err)
	require.Len(t, prow, 2)
	assert.Equal(t, []string{prof.ID, "Dr. A", "Senior", "123"}, prow[1])
}

func TestServiceManagerLifecycle(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.manager.HealthCheck(env.ctx))
	require.NoError(t, env.manager.Shutdown(env.ctx))
	assert.Error(t, env.manager.HealthCheck(env.ctx))

	uninitialized := NewServiceManager(env.db, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), validator.New(), nil)
	assert.Panics(t, func() { uninitialized.Student() })
	assert.Error(t, uninitialized.HealthCheck(env.ctx))
}

func TestDateInputAcceptsRFC3339(t *testing.T) {
	env := newTestEnv(t)
	prof := env.createProfessor(t, "Dr. A", "123")

	created, err := env.manager.Student().Create(env.ctx, &validator.StudentCreateRequest{
		Name: "S1", DateOfBirth: "2000-01-01T15:30:00Z", AadharNumber: "999", ProctorID: prof.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Time(created.DateOfBirth).UTC())
}
