package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cafestaff/apperr"
	"cafestaff/model"
)

const employeeSheet = "Sheet1"

var exportHeader = []interface{}{"Employee ID", "Name", "Email", "Phone", "Gender", "Cafe", "Location", "Start Date", "Days Worked"}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Created []model.Employee `json:"created"`
	Skipped []RowError       `json:"skipped"`
}

// Import creates one employee per data row of Sheet1. Columns: name, email, phone,
// gender and an optional cafe id. Rows that fail validation, reference an unknown
// cafe or collide are skipped and reported; a storage failure stops the import.
func (s *EmployeeService) Import(ctx context.Context, r io.Reader) (*ImportResult, error) {
	const op = "employee.import"
	xl, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperr.Validation(op, "failed to parse Excel file", err)
	}
	defer xl.Close()

	rows, err := xl.GetRows(employeeSheet)
	if err != nil || len(rows) < 2 {
		return nil, apperr.Validation(op, "Excel must have at least one row of data", err)
	}

	res := &ImportResult{Created: []model.Employee{}, Skipped: []RowError{}}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < 4 {
			res.Skipped = append(res.Skipped, RowError{Row: rowNum, Error: "incomplete row"})
			continue
		}
		emp, err := s.Create(ctx, EmployeeInput{
			Name:   cell(row, 0),
			Email:  cell(row, 1),
			Phone:  cell(row, 2),
			Gender: cell(row, 3),
			CafeID: cell(row, 4),
		})
		if err != nil {
			if apperr.KindOf(err) == apperr.KindStorage {
				return res, err
			}
			res.Skipped = append(res.Skipped, RowError{Row: rowNum, Error: apperr.Message(err)})
			continue
		}
		res.Created = append(res.Created, *emp)
	}
	s.log.Info("Employee import finished", "created", len(res.Created), "skipped", len(res.Skipped))
	return res, nil
}

// Export renders the tenure view as a workbook.
func (s *EmployeeService) Export(ctx context.Context, cafeName string) (*excelize.File, error) {
	views, err := s.reports.EmployeesWithTenure(ctx, cafeName)
	if err != nil {
		return nil, err
	}
	return EmployeesWorkbook(views)
}

func EmployeesWorkbook(views []EmployeeView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetRow(employeeSheet, "A1", &exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, v := range views {
		row := []interface{}{v.ID, v.Name, v.Email, v.Phone, v.Gender, "", "", "", ""}
		if v.Cafe != nil {
			row[5] = v.Cafe.Name
			row[6] = v.Cafe.Location
		}
		if v.StartDate != nil {
			row[7] = v.StartDate.UTC().Format("2006-01-02")
		}
		if v.DaysWorked != nil {
			row[8] = *v.DaysWorked
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(employeeSheet, axis, &row); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
