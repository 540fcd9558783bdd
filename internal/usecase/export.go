package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"ID", "FULL NAME", "DEPARTMENT", "YEARS OF EXPERIENCE", "STATUS", "REGISTERED AT",
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

func (u *candidateUsecase) ExportCandidates(ctx context.Context, departments []domain.Department, format string) (*domain.ExportFile, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return nil, apperror.Validation("Invalid export request", map[string]string{"format": "Must be one of: xlsx, csv."})
	}

	rows, err := u.collectForExport(ctx, departments)
	if err != nil {
		return nil, err
	}

	stamp := u.now().Format("20060102_150405")
	var file *domain.ExportFile
	switch format {
	case "csv":
		data, err := exportCSV(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		file = &domain.ExportFile{Filename: "candidates_" + stamp + ".csv", ContentType: contentTypeCSV, Data: data}
	default:
		data, err := exportExcel(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		file = &domain.ExportFile{Filename: "candidates_" + stamp + ".xlsx", ContentType: contentTypeXLSX, Data: data}
	}

	u.audit.LogDataExport(ctx, admin.Username, format, len(rows))
	return file, nil
}

// collectForExport walks every listing page so the export follows the same
// ordering and filter as the admin list.
func (u *candidateUsecase) collectForExport(ctx context.Context, departments []domain.Department) ([]domain.CandidateSummary, error) {
	for _, d := range departments {
		if !domain.IsValidDepartment(string(d)) {
			return nil, apperror.Validation("Invalid filter", map[string]string{"department": "Must be one of: IT, HR, FINANCE."})
		}
	}

	var out []domain.CandidateSummary
	filter := domain.CandidateFilter{Page: 1, PageSize: exportBatchSize, Departments: departments}
	for {
		batch, total, err := u.repo.List(ctx, filter)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		for i := range batch {
			out = append(out, domain.NewCandidateSummary(&batch[i]))
		}
		if len(batch) == 0 || int64(filter.Page*filter.PageSize) >= total {
			return out, nil
		}
		filter.Page++
	}
}

func exportRow(c domain.CandidateSummary) []string {
	return []string{
		c.ID,
		c.FullName,
		c.DepartmentDisplay,
		strconv.Itoa(c.YearsOfExperience),
		c.CurrentStatusDisplay,
		c.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// exportExcel generates an Excel file from candidate data
func exportExcel(rows []domain.CandidateSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Candidates"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, c := range rows {
		for colIdx, value := range exportRow(c) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if colIdx == 3 {
				f.SetCellValue(sheetName, cell, c.YearsOfExperience)
				continue
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// exportCSV generates a CSV file from candidate data
func exportCSV(rows []domain.CandidateSummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, c := range rows {
		record := exportRow(c)
		for i, v := range record {
			record[i] = neutralizeFormula(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// Spreadsheet apps evaluate cells starting with these characters.
func neutralizeFormula(v string) string {
	if v != "" && strings.ContainsRune("=+-@", rune(v[0])) {
		return "'" + v
	}
	return v
}
