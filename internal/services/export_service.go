package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/campus-records-service/internal/repositories"
)

const (
	studentsSheet   = "Students"
	professorsSheet = "Professors"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportStudents writes the enriched student list as an XLSX workbook
func (s *exportService) ExportStudents(ctx context.Context, w io.Writer) error {
	students, err := s.repo.Student().ListEnriched(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to load students for export: %w", err)
	}

	header := []interface{}{"ID", "Name", "Date of Birth", "Aadhar Number", "Proctor ID", "Proctor Name", "Membership Issue", "Membership Expiry"}
	rows := make([][]interface{}, 0, len(students))
	for _, st := range students {
		proctorID, proctorName := "", ""
		if st.ProctorID != nil {
			proctorID = *st.ProctorID
		}
		if st.Proctor != nil {
			proctorName = st.Proctor.Name
		}
		issue, expiry := "", ""
		if st.LibraryMembership != nil {
			issue = formatDate(st.LibraryMembership.IssueDate)
			expiry = formatDate(st.LibraryMembership.ExpiryDate)
		}
		rows = append(rows, []interface{}{st.ID, st.Name, formatDate(st.DateOfBirth), st.AadharNumber, proctorID, proctorName, issue, expiry})
	}

	if err := writeWorkbook(w, studentsSheet, header, rows); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Students exported", "count", len(students))
	return nil
}

// ExportProfessors writes the professor list as an XLSX workbook
func (s *exportService) ExportProfessors(ctx context.Context, w io.Writer) error {
	professors, err := s.repo.Professor().List(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to load professors for export: %w", err)
	}

	header := []interface{}{"ID", "Name", "Seniority", "Aadhar Number"}
	rows := make([][]interface{}, 0, len(professors))
	for _, p := range professors {
		rows = append(rows, []interface{}{p.ID, p.Name, p.Seniority, p.AadharNumber})
	}

	if err := writeWorkbook(w, professorsSheet, header, rows); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Professors exported", "count", len(professors))
	return nil
}

func writeWorkbook(w io.Writer, sheet string, header []interface{}, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
