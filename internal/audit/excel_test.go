package audit

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"napominator/internal/models"
)

type recordingWriter struct {
	sheets  []string
	headers [][]string
	rows    [][]interface{}
	saved   bool
}

func (w *recordingWriter) AddSheet(name string) error {
	w.sheets = append(w.sheets, name)
	return nil
}

func (w *recordingWriter) WriteHeader(columns []string) error {
	w.headers = append(w.headers, columns)
	return nil
}

func (w *recordingWriter) WriteRow(row []interface{}) error {
	w.rows = append(w.rows, row)
	return nil
}

func (w *recordingWriter) Save(io.Writer) error {
	w.saved = true
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestExportHistoryGroupsByAction(t *testing.T) {
	rec := &recordingWriter{}
	e := &Exporter{newWriter: func() ExcelWriter { return rec }}

	completed := time.Date(2025, 10, 15, 9, 30, 0, 0, time.UTC)
	entries := []models.HistoryEntry{
		{ReminderID: 1, Label: "таблетки", Frequency: "1d", Dates: []string{"15.10.2025"},
			Times: []string{"09:00"}, CompletedAt: completed, Action: models.ActionCompleted},
		{ReminderID: 2, Label: "отчет", Frequency: "0", Dates: []string{"16.10.2025"},
			Times: []string{"12:00"}, CompletedAt: completed, Action: models.ActionDeleted},
		{ReminderID: 3, Label: "вода", Frequency: "1h", Dates: []string{"15.10.2025"},
			Times: []string{"10:00", "11:00"}, CompletedAt: completed, Action: models.ActionCompleted},
	}

	_, err := e.ExportHistory(entries)
	require.NoError(t, err)

	assert.Equal(t, []string{"Выполненные", "Удаленные"}, rec.sheets)
	require.Len(t, rec.headers, 2)
	require.Len(t, rec.rows, 3)
	assert.Equal(t, int64(1), rec.rows[0][0])
	assert.Equal(t, "10:00,11:00", rec.rows[1][4])
	assert.Equal(t, "2025-10-15 09:30", rec.rows[0][5])
	assert.Equal(t, "удалено", rec.rows[2][6])
	assert.True(t, rec.saved)
}

func TestExportHistoryRealWorkbook(t *testing.T) {
	e := NewExporter()
	data, err := e.ExportHistory([]models.HistoryEntry{
		{ReminderID: 7, Label: "зарядка", Frequency: "1d", Dates: []string{"01.11.2025"},
			Times: []string{"07:00"}, CompletedAt: time.Now().UTC(), Action: models.ActionCompleted},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
