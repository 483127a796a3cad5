// Package audit renders reminder history into downloadable Excel reports.
package audit

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"napominator/internal/models"
	"napominator/internal/recurrence"
)

// ExcelWriter is the minimal spreadsheet surface the exporter needs.
type ExcelWriter interface {
	AddSheet(name string) error
	WriteHeader(columns []string) error
	WriteRow(row []interface{}) error
	Save(w io.Writer) error
	Close() error
}

// ExcelizeWriter implements ExcelWriter using the excelize library.
type ExcelizeWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func NewExcelizeWriter() ExcelWriter {
	return &ExcelizeWriter{file: excelize.NewFile()}
}

// AddSheet adds a new sheet with the given name.
func (w *ExcelizeWriter) AddSheet(name string) error {
	// Excel caps sheet names at 31 chars.
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *ExcelizeWriter) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *ExcelizeWriter) WriteRow(row []interface{}) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

// Save writes the workbook to the writer.
func (w *ExcelizeWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

// Close releases resources.
func (w *ExcelizeWriter) Close() error {
	return w.file.Close()
}

var historyColumns = []string{
	"ID", "Название", "Частота", "Даты", "Время", "Завершено (UTC)", "Действие",
}

// Exporter builds the history workbook the bot sends as a document.
type Exporter struct {
	newWriter func() ExcelWriter
}

func NewExporter() *Exporter {
	return &Exporter{newWriter: NewExcelizeWriter}
}

// ExportHistory renders the entries, one sheet per action, and returns the
// workbook as bytes.
func (e *Exporter) ExportHistory(entries []models.HistoryEntry) ([]byte, error) {
	w := e.newWriter()
	defer w.Close()

	byAction := map[string][]models.HistoryEntry{}
	order := []string{}
	for _, entry := range entries {
		if _, ok := byAction[entry.Action]; !ok {
			order = append(order, entry.Action)
		}
		byAction[entry.Action] = append(byAction[entry.Action], entry)
	}

	for _, action := range order {
		if err := w.AddSheet(sheetName(action)); err != nil {
			return nil, err
		}
		if err := w.WriteHeader(historyColumns); err != nil {
			return nil, err
		}
		for _, entry := range byAction[action] {
			row := []interface{}{
				entry.ReminderID,
				entry.Label,
				entry.Frequency,
				strings.Join(entry.Dates, ","),
				strings.Join(entry.Times, ","),
				entry.CompletedAt.UTC().Format(recurrence.StampFormat),
				actionLabel(entry.Action),
			}
			if err := w.WriteRow(row); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := w.Save(&buf); err != nil {
		return nil, fmt.Errorf("save history workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(action string) string {
	switch action {
	case models.ActionCompleted:
		return "Выполненные"
	case models.ActionDeleted:
		return "Удаленные"
	default:
		return action
	}
}

func actionLabel(action string) string {
	switch action {
	case models.ActionCompleted:
		return "выполнено"
	case models.ActionDeleted:
		return "удалено"
	default:
		return action
	}
}
