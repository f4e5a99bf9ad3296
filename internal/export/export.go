package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"armar/internal/database"
	"armar/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const (
	SheetAppointments = "Appointments"
	SheetQuotes       = "Quotes"
)

type column struct {
	header string
	field  string
	width  float64
}

var (
	appointmentColumns = []column{
		{"ID", "", 26},
		{"Received", "created_at", 22},
		{"Name", "name", 24},
		{"Phone", "phone", 18},
		{"Email", "email", 28},
		{"Service", "service", 24},
		{"Preferred date", "preferred_date", 16},
		{"Preferred time", "preferred_time", 16},
		{"Message", "message", 40},
	}
	quoteColumns = []column{
		{"ID", "", 26},
		{"Received", "created_at", 22},
		{"Name", "name", 24},
		{"Phone", "phone", 18},
		{"Email", "email", 28},
		{"Requirement", "requirement", 40},
		{"Budget", "budget", 16},
	}
)

// Exporter writes stored leads to an xlsx workbook.
type Exporter struct {
	store  database.Store
	dir    string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewExporter(store database.Store, dir string, logger *zerolog.Logger) *Exporter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Exporter{store: store, dir: dir, logger: logger, now: time.Now}
}

// Export writes appointments and quote requests to a new workbook in the export
// directory and returns its path.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	appointments, err := e.store.GetDocuments(ctx, models.CollectionAppointment, 0)
	if err != nil {
		return "", fmt.Errorf("read appointments: %w", err)
	}
	quotes, err := e.store.GetDocuments(ctx, models.CollectionQuoteRequest, 0)
	if err != nil {
		return "", fmt.Errorf("read quote requests: %w", err)
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return "", fmt.Errorf("error creating style: %w", err)
	}

	if err := writeSheet(f, SheetAppointments, appointmentColumns, appointments, headerStyle); err != nil {
		return "", err
	}
	if err := writeSheet(f, SheetQuotes, quoteColumns, quotes, headerStyle); err != nil {
		return "", err
	}

	if idx, err := f.GetSheetIndex(SheetAppointments); err == nil {
		f.SetActiveSheet(idx)
	}
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("leads_%s.xlsx", e.now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.dir, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().
		Str("file_path", filePath).
		Int("appointments", len(appointments)).
		Int("quotes", len(quotes)).
		Msg("Excel file created")
	return filePath, nil
}

func writeSheet(f *excelize.File, sheet string, columns []column, docs []database.Document, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("error creating sheet %s: %w", sheet, err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col.header); err != nil {
			return err
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, name, name, col.width)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for r, doc := range docs {
		for c, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, cellValue(doc, col.field)); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellValue(doc database.Document, field string) any {
	if field == "" {
		return doc.ID
	}
	switch v := doc.Fields[field].(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil && field == "created_at" {
			return t.UTC().Format("2006-01-02 15:04:05")
		}
		return v
	default:
		return v
	}
}
