package leavequota

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	leavequotaerrors "go-oms/internal/leavequota/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var importHeader = []string{"user", "leaveType", "year", "allocated", "carriedOver"}

// ImportRow is one parsed CSV line. Line is 1-based and counts the header.
type ImportRow struct {
	Line        int
	UserID      uuid.UUID
	LeaveTypeID uuid.UUID
	Year        int
	Allocated   decimal.Decimal
	CarriedOver decimal.Decimal
}

// ParseImportCSV reads every row in order. Malformed rows are returned as row
// errors; only an unreadable file or a bad header fails the whole import.
func ParseImportCSV(r io.Reader) ([]ImportRow, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, leavequotaerrors.ErrInvalidCSVHeader
		}
		return nil, nil, leavequotaerrors.ErrInvalidCSVHeader.WithCause(err)
	}
	if !validHeader(header) {
		return nil, nil, leavequotaerrors.ErrInvalidCSVHeader
	}

	var (
		rows    []ImportRow
		rowErrs []RowError
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(err, &parseErr) {
				line = parseErr.StartLine
			}
			rowErrs = append(rowErrs, RowError{Line: line, Error: err.Error()})
			continue
		}
		if isBlank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)

		row, err := parseRow(record)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Error: err.Error()})
			continue
		}
		row.Line = line
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

func validHeader(header []string) bool {
	if len(header) < len(importHeader) {
		return false
	}
	for i, want := range importHeader {
		got := strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		if !strings.EqualFold(got, want) {
			return false
		}
	}
	return true
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(record []string) (ImportRow, error) {
	if len(record) < 4 {
		return ImportRow{}, fmt.Errorf("expected %d columns, got %d", len(importHeader), len(record))
	}

	var row ImportRow
	var err error

	if row.UserID, err = uuid.Parse(strings.TrimSpace(record[0])); err != nil {
		return ImportRow{}, fmt.Errorf("invalid user %q", record[0])
	}
	if row.LeaveTypeID, err = uuid.Parse(strings.TrimSpace(record[1])); err != nil {
		return ImportRow{}, fmt.Errorf("invalid leaveType %q", record[1])
	}
	if row.Year, err = strconv.Atoi(strings.TrimSpace(record[2])); err != nil || !validYear(row.Year) {
		return ImportRow{}, fmt.Errorf("invalid year %q", record[2])
	}
	if row.Allocated, err = decimal.NewFromString(strings.TrimSpace(record[3])); err != nil || row.Allocated.IsNegative() {
		return ImportRow{}, fmt.Errorf("invalid allocated %q", record[3])
	}

	row.CarriedOver = decimal.Zero
	if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
		if row.CarriedOver, err = decimal.NewFromString(strings.TrimSpace(record[4])); err != nil || row.CarriedOver.IsNegative() {
			return ImportRow{}, fmt.Errorf("invalid carriedOver %q", record[4])
		}
	}

	return row, nil
}

func validYear(year int) bool {
	return year >= 2000 && year <= 2100
}
