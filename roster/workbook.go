package roster

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amonks/cohort/attendance"
	"github.com/amonks/cohort/schedule"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the roster.
const SheetName = "Roster"

const fixedColumns = 2 // Name, Email

// Workbook is a roster persisted as an .xlsx file. Edits happen in memory;
// Save rewrites the whole file.
type Workbook struct {
	*Memory
	path string
}

// OpenWorkbook loads the roster at path. A missing file yields an empty
// roster that will be created on Save.
func OpenWorkbook(path string) (*Workbook, error) {
	wb := &Workbook{Memory: NewMemory(), path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return wb, nil
	} else if err != nil {
		return nil, fmt.Errorf("stat roster %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("read roster sheet %q: %w", SheetName, err)
	}
	if err := wb.load(rows); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return wb, nil
}

var _ Store = (*Workbook)(nil)

// Path returns the workbook location.
func (wb *Workbook) Path() string {
	return wb.path
}

func (wb *Workbook) load(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	if len(header) < fixedColumns {
		return fmt.Errorf("header must start with Name, Email")
	}
	dates := make([]schedule.Date, 0, len(header)-fixedColumns)
	for i, label := range header[fixedColumns:] {
		date, err := schedule.ParseDate(label)
		if err != nil {
			col, _ := excelize.ColumnNumberToName(i + fixedColumns + 1)
			return fmt.Errorf("column %s header: %w", col, err)
		}
		dates = append(dates, date)
	}

	for _, row := range rows[1:] {
		if len(row) < fixedColumns || row[1] == "" {
			continue
		}
		if _, err := wb.AddStudent(Student{Name: row[0], Email: row[1]}); err != nil {
			return err
		}
	}

	for i, date := range dates {
		if err := wb.AddColumn(date); err != nil {
			return err
		}
		column := make([]attendance.Status, wb.Len())
		student := 0
		for _, row := range rows[1:] {
			if len(row) < fixedColumns || row[1] == "" {
				continue
			}
			cellIdx := i + fixedColumns
			if cellIdx < len(row) {
				status, err := attendance.ParseStatus(row[cellIdx])
				if err != nil {
					cell, _ := excelize.CoordinatesToCellName(cellIdx+1, student+2)
					return fmt.Errorf("cell %s: %w", cell, err)
				}
				column[student] = status
			}
			student++
		}
		if err := wb.SetColumn(date, column); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the roster to disk, replacing the previous file.
func (wb *Workbook) Save() error {
	if err := os.MkdirAll(filepath.Dir(wb.path), 0755); err != nil {
		return fmt.Errorf("create roster dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name roster sheet: %w", err)
	}

	dates := wb.DateColumns()
	header := []any{"Name", "Email"}
	for _, date := range dates {
		header = append(header, date.String())
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write roster header: %w", err)
	}

	columns := make([][]attendance.Status, len(dates))
	for i, date := range dates {
		column, err := wb.GetColumn(date)
		if err != nil {
			return err
		}
		columns[i] = column
	}

	for row, student := range wb.Students() {
		values := []any{student.Name, student.Email}
		for _, column := range columns {
			values = append(values, column[row].Code())
		}
		cell, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write roster row %d: %w", row+2, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create roster header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style roster header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "B", 28); err != nil {
		return fmt.Errorf("size roster columns: %w", err)
	}

	tmp := wb.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write roster: %w", err)
	}
	if err := os.Rename(tmp, wb.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename roster: %w", err)
	}
	return nil
}
