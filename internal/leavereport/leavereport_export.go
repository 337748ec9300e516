package leavereport

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	leavereporterrors "go-oms/internal/leavereport/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	FormatXLSX      = "xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var groupHeader = []any{"Name", "Total", "Approved", "Pending", "Rejected", "Cancelled"}

// Export renders the report as a workbook with Summary, By Type and By User sheets.
func (s *service) Export(ctx context.Context, format string) ([]byte, string, error) {
	if format == "" {
		format = FormatXLSX
	}
	if !strings.EqualFold(format, FormatXLSX) {
		return nil, "", leavereporterrors.ErrUnsupportedFormat
	}

	report, err := s.Report(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, report.Summary); err != nil {
		s.logger.Error("leave report export summary failed", zap.Error(err))
		return nil, "", leavereporterrors.ErrExportFailed.WithCause(err)
	}
	if err := writeGroups(f, "By Type", report.ByType); err != nil {
		s.logger.Error("leave report export by type failed", zap.Error(err))
		return nil, "", leavereporterrors.ErrExportFailed.WithCause(err)
	}
	if err := writeGroups(f, "By User", report.ByUser); err != nil {
		s.logger.Error("leave report export by user failed", zap.Error(err))
		return nil, "", leavereporterrors.ErrExportFailed.WithCause(err)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("leave report export write failed", zap.Error(err))
		return nil, "", leavereporterrors.ErrExportFailed.WithCause(err)
	}

	filename := fmt.Sprintf("leave_report_%s.xlsx", s.now().Format("20060102"))
	s.logger.Info("leave report exported", zap.String("filename", filename), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), filename, nil
}

func writeSummary(f *excelize.File, sum Summary) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Status", "Requests"},
		{"Total", sum.Total},
		{"Pending", sum.Pending},
		{"Approved", sum.Approved},
		{"Rejected", sum.Rejected},
		{"Cancelled", sum.Cancelled},
	}
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cell(1, i+1), &row); err != nil {
			return err
		}
	}
	return styleHeader(f, sheet, 2)
}

func writeGroups(f *excelize.File, sheet string, groups []GroupRow) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &groupHeader); err != nil {
		return err
	}
	for i, g := range groups {
		row := []any{g.Name, g.Total, g.Approved, g.Pending, g.Rejected, g.Cancelled}
		if err := f.SetSheetRow(sheet, cell(1, i+2), &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return styleHeader(f, sheet, len(groupHeader))
}

func styleHeader(f *excelize.File, sheet string, cols int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", cell(cols, 1), style)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
