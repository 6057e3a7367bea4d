package appointment

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jwalitptl/health-navigator/internal/model"
	apperrors "github.com/jwalitptl/health-navigator/pkg/errors"
)

const exportSheet = "Appointments"

var exportHeaders = []string{"Date", "Time", "Patient", "Doctor", "Status", "Reason"}

var exportWidths = []float64{14, 10, 28, 28, 14, 40}

// Export writes the hospital's appointments as an XLSX workbook to w.
func (s *Service) Export(ctx context.Context, profile *model.Profile, w io.Writer) error {
	if profile.Role != model.RoleHospital {
		return apperrors.Forbidden("only hospitals can export appointments")
	}
	list, err := s.List(ctx, profile)
	if err != nil {
		return err
	}
	return writeWorkbook(list, w)
}

func writeWorkbook(list []*model.AppointmentDetails, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(exportSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, width := range exportWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, a := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			a.AppointmentDate,
			a.AppointmentTime,
			model.Deref(a.PatientName),
			model.Deref(a.DoctorName),
			string(a.Status),
			model.Deref(a.Reason),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
