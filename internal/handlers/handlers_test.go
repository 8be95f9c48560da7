package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/events"
	"github.com/SAP-F-2025/campus-records-service/internal/metrics"
	"github.com/SAP-F-2025/campus-records-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/campus-records-service/internal/services"
	"github.com/SAP-F-2025/campus-records-service/internal/testutil"
	"github.com/SAP-F-2025/campus-records-service/internal/utils"
	"github.com/SAP-F-2025/campus-records-service/internal/validator"
)

type HandlerSuite struct {
	suite.Suite
	router    *gin.Engine
	db        *gorm.DB
	publisher *testutil.MockEventPublisher
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(s.T())
	s.db = db
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	s.publisher = testutil.NewMockEventPublisher(slogger)

	manager := services.NewServiceManager(db, repo, slogger, validator.New(), s.publisher)
	s.Require().NoError(manager.Initialize(context.Background()))

	logger := utils.NewSlogLogger(slogger)
	m := metrics.New()

	s.router = gin.New()
	SetupMiddleware(s.router, logger, MiddlewareConfig{Metrics: m})
	NewHandlerManager(manager, logger, m).SetupRoutes(s.router)
}

func (s *HandlerSuite) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, dst interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (s *HandlerSuite) createProfessor(name, aadhar string) map[string]interface{} {
	w := s.do(http.MethodPost, "/professors", gin.H{"name": name, "seniority": "Senior", "aadharNumber": aadhar})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var out map[string]interface{}
	s.decode(w, &out)
	return out
}

func (s *HandlerSuite) createStudent(name, aadhar, proctorID string) map[string]interface{} {
	w := s.do(http.MethodPost, "/students", gin.H{
		"name": name, "dateofbirth": "2000-01-01", "aadharNumber": aadhar, "proctorId": proctorID,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var out map[string]interface{}
	s.decode(w, &out)
	return out
}

func (s *HandlerSuite) TestEndToEndScenario() {
	prof := s.createProfessor("Dr. A", "123")
	profID, _ := prof["id"].(string)
	s.Require().NotEmpty(profID)

	student := s.createStudent("S1", "999", profID)
	studentID := student["id"].(string)
	proctor, ok := student["proctor"].(map[string]interface{})
	s.Require().True(ok, "student should embed its proctor")
	s.Equal("Dr. A", proctor["name"])

	w := s.do(http.MethodGet, "/professors/"+profID+"/proctorships", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var proctorships struct {
		Professor map[string]interface{}   `json:"professor"`
		Students  []map[string]interface{} `json:"students"`
	}
	s.decode(w, &proctorships)
	s.Equal(profID, proctorships.Professor["id"])
	s.Equal("Senior", proctorships.Professor["seniority"])
	s.Require().Len(proctorships.Students, 1)
	s.Equal("S1", proctorships.Students[0]["name"])

	w = s.do(http.MethodDelete, "/students/"+studentID+"/library-membership", nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"error":"Library membership not found"}`, w.Body.String())
}

func (s *HandlerSuite) TestDuplicateNationalIDIsRejected() {
	prof := s.createProfessor("Dr. A", "123")

	w := s.do(http.MethodPost, "/professors", gin.H{"name": "Dr. B", "seniority": "Junior", "aadharNumber": "123"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Professor already exists"}`, w.Body.String())

	s.createStudent("S1", "999", prof["id"].(string))
	w = s.do(http.MethodPost, "/students", gin.H{
		"name": "S2", "dateofbirth": "2001-01-01", "aadharNumber": "999", "proctorId": prof["id"],
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Student already exists"}`, w.Body.String())

	w = s.do(http.MethodGet, "/students", nil)
	var list []map[string]interface{}
	s.decode(w, &list)
	s.Require().Len(list, 1)
	s.Equal("S1", list[0]["name"])
}

func (s *HandlerSuite) TestCreateStudentRoundTrip() {
	prof := s.createProfessor("Dr. A", "123")
	created := s.createStudent("S1", "999", prof["id"].(string))

	w := s.do(http.MethodGet, "/students/"+created["id"].(string), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var fetched map[string]interface{}
	s.decode(w, &fetched)

	for _, field := range []string{"id", "name", "dateofbirth", "aadharNumber", "proctorId"} {
		s.Equal(created[field], fetched[field], field)
	}
}

func (s *HandlerSuite) TestUnknownProctorIsStoreError() {
	w := s.do(http.MethodPost, "/students", gin.H{
		"name": "S1", "dateofbirth": "2000-01-01", "aadharNumber": "999", "proctorId": "missing",
	})
	s.Equal(http.StatusInternalServerError, w.Code)
	s.JSONEq(`{"error":"Internal server error"}`, w.Body.String())
}

func (s *HandlerSuite) TestInvalidBodies() {
	w := s.do(http.MethodPost, "/students", "{not json")
	s.Equal(http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	s.decode(w, &resp)
	s.Equal("Invalid request payload", resp.Error)

	w = s.do(http.MethodPost, "/professors", gin.H{"name": "", "seniority": "Senior", "aadharNumber": "1"})
	s.Equal(http.StatusBadRequest, w.Code)
	var validation struct {
		Error   string                      `json:"error"`
		Details []validator.ValidationError `json:"details"`
	}
	s.decode(w, &validation)
	s.Equal("Validation failed", validation.Error)
	s.Require().NotEmpty(validation.Details)
	s.Equal("name", validation.Details[0].Field)
}

func (s *HandlerSuite) TestMalformedBodiesDoNotLeakDecoderErrors() {
	for _, body := range []string{
		`{"name": 5}`,
		`{"name": "S1", "dateofbirth": "2000-01-01"`,
		`{"name": "S1", "libraryMembership": []}`,
	} {
		w := s.do(http.MethodPost, "/students", body)
		s.Equal(http.StatusBadRequest, w.Code, body)
		s.JSONEq(`{"error":"Invalid request payload"}`, w.Body.String(), body)
		for _, leak := range []string{"json:", "StudentCreateRequest", "unexpected EOF", "Go struct"} {
			s.NotContains(w.Body.String(), leak, body)
		}
	}

	prof := s.createProfessor("Dr. A", "123")
	w := s.do(http.MethodPatch, "/professors/"+prof["id"].(string), `{"seniority": true}`)
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Invalid request payload"}`, w.Body.String())
}

func (s *HandlerSuite) TestDeleteMissingRecordsIs404() {
	for _, path := range []string{
		"/students/does-not-exist",
		"/professors/does-not-exist",
		"/students/does-not-exist/library-membership",
	} {
		w := s.do(http.MethodDelete, path, nil)
		s.Equal(http.StatusNotFound, w.Code, path)
	}
}

func (s *HandlerSuite) TestLibraryMembershipLifecycle() {
	prof := s.createProfessor("Dr. A", "123")
	studentID := s.createStudent("S1", "999", prof["id"].(string))["id"].(string)
	path := "/students/" + studentID + "/library-membership"

	w := s.do(http.MethodPost, path, gin.H{"issueDate": "2024-01-01", "expiryDate": "2025-01-01"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, path, gin.H{"issueDate": "2024-02-01", "expiryDate": "2025-02-01"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"error":"Library membership already exists"}`, w.Body.String())

	w = s.do(http.MethodPatch, path, gin.H{"issueDate": "2024-06-01"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated map[string]interface{}
	s.decode(w, &updated)
	s.Equal("2024-06-01T00:00:00Z", updated["issueDate"])
	s.Equal("2025-01-01T00:00:00Z", updated["expiryDate"])

	w = s.do(http.MethodGet, "/students/enriched", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var enriched []map[string]interface{}
	s.decode(w, &enriched)
	s.Require().Len(enriched, 1)
	s.Equal(updated["id"], enriched[0]["libraryMembershipId"])

	w = s.do(http.MethodDelete, path, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, path, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestMembershipForMissingStudent() {
	w := s.do(http.MethodPost, "/students/missing/library-membership", gin.H{"issueDate": "2024-01-01", "expiryDate": "2025-01-01"})
	s.Equal(http.StatusNotFound, w.Code)
	s.JSONEq(`{"error":"Student not found"}`, w.Body.String())
}

func (s *HandlerSuite) TestAssignProctor() {
	first := s.createProfessor("Dr. A", "123")
	second := s.createProfessor("Dr. B", "456")
	studentID := s.createStudent("S1", "999", first["id"].(string))["id"].(string)

	w := s.do(http.MethodPost, "/professors/"+second["id"].(string)+"/proctorships", gin.H{"studentId": studentID})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/students/"+studentID, nil)
	var student map[string]interface{}
	s.decode(w, &student)
	s.Equal(second["id"], student["proctorId"])

	w = s.do(http.MethodPost, "/professors/"+second["id"].(string)+"/proctorships", gin.H{"studentId": "missing"})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/professors/missing/proctorships", gin.H{"studentId": studentID})
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/professors/missing/proctorships", nil)
	s.Equal(http.StatusNotFound, w.Code)

	s.Len(s.publisher.EventsOfType(events.ProctorAssigned), 1)
}

func (s *HandlerSuite) TestUpdateStudentAndProfessor() {
	prof := s.createProfessor("Dr. A", "123")
	profID := prof["id"].(string)
	studentID := s.createStudent("S1", "999", profID)["id"].(string)

	w := s.do(http.MethodPut, "/students/"+studentID, gin.H{"name": "S1 renamed"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var studentResp struct {
		Message string                 `json:"message"`
		Student map[string]interface{} `json:"student"`
	}
	s.decode(w, &studentResp)
	s.NotEmpty(studentResp.Message)
	s.Equal("S1 renamed", studentResp.Student["name"])
	s.Equal("999", studentResp.Student["aadharNumber"])

	w = s.do(http.MethodPatch, "/students/"+studentID, gin.H{})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/professors/"+profID, gin.H{"seniority": "Emeritus"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var profResp struct {
		Professor map[string]interface{} `json:"professor"`
	}
	s.decode(w, &profResp)
	s.Equal("Emeritus", profResp.Professor["seniority"])

	w = s.do(http.MethodPatch, "/professors/missing", gin.H{"seniority": "Emeritus"})
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestDeleteProfessorUnassignsStudents() {
	prof := s.createProfessor("Dr. A", "123")
	studentID := s.createStudent("S1", "999", prof["id"].(string))["id"].(string)

	w := s.do(http.MethodDelete, "/professors/"+prof["id"].(string), nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/students/"+studentID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var student map[string]interface{}
	s.decode(w, &student)
	s.Nil(student["proctorId"])
	s.Contains(student, "proctor")
	s.Nil(student["proctor"])
}

func (s *HandlerSuite) TestMissingRelationsAreNull() {
	prof := s.createProfessor("Dr. A", "123")
	created := s.createStudent("S1", "999", prof["id"].(string))
	s.Contains(created, "libraryMembership")
	s.Nil(created["libraryMembership"])

	w := s.do(http.MethodGet, "/students/enriched", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var enriched []map[string]interface{}
	s.decode(w, &enriched)
	s.Require().Len(enriched, 1)
	s.Contains(enriched[0], "libraryMembership")
	s.Nil(enriched[0]["libraryMembership"])
	s.NotNil(enriched[0]["proctor"])
}

func (s *HandlerSuite) TestExportStudents() {
	prof := s.createProfessor("Dr. A", "123")
	s.createStudent("S1", "999", prof["id"].(string))

	w := s.do(http.MethodGet, "/exports/students.xlsx", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(xlsxContentType, w.Header().Get("Content-Type"))

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	s.Require().NoError(err)
	defer book.Close()
	rows, err := book.GetRows("Students")
	s.Require().NoError(err)
	s.Len(rows, 2)
}

func (s *HandlerSuite) TestHealthAndMetrics() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))

	w = s.do(http.MethodGet, "/metrics", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `route="/health"`)
}

func (s *HandlerSuite) TestHealthFailureHidesCause() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	s.Require().NoError(sqlDB.Close())

	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.JSONEq(`{"status":"unhealthy","service":"campus-records-service"}`, w.Body.String())
	s.NotContains(w.Body.String(), "sql")
}

func TestRecoveryMiddlewareReturnsGenericError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	SetupMiddleware(router, logger, MiddlewareConfig{})
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestHandleServiceErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewBaseHandler(utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	cases := []struct {
		err    error
		status int
		body   string
	}{
		{services.ErrStudentNotFound, http.StatusNotFound, "Student not found"},
		{services.ErrProfessorNotFound, http.StatusNotFound, "Professor not found"},
		{services.ErrMembershipNotFound, http.StatusNotFound, "Library membership not found"},
		{services.ErrStudentExists, http.StatusBadRequest, "Student already exists"},
		{services.ErrProfessorExists, http.StatusBadRequest, "Professor already exists"},
		{services.ErrMembershipExists, http.StatusBadRequest, "Library membership already exists"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		h.handleServiceError(c, tc.err)

		require.Equal(t, tc.status, w.Code, tc.err.Error())
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.body, resp.Error)
		assert.NotContains(t, w.Body.String(), "connection reset")
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://campus.example"}))
	router.GET("/students", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Origin", "https://campus.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://campus.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/students", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
