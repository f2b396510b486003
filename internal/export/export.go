// Package export renders goal listings as CSV or XLSX.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/ttahub/ttahub/internal/lifecycle"
	"github.com/ttahub/ttahub/internal/model"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnknownFormat = errors.New("unknown export format")

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

const sheetName = "Goals"

var Header = []string{
	"Goal Number",
	"Goal",
	"Status",
	"Timeframe",
	"End Date",
	"Grant",
	"Recipient",
	"Template ID",
	"First Not Started",
	"First In Progress",
	"Last Suspended",
	"Last Closed",
	"Close/Suspend Reason",
	"Created",
}

// Rows flattens goals into table rows. grants must contain every goal's
// grant; goals whose grant is missing are skipped.
func Rows(goals []*model.Goal, grants map[int64]*model.Grant) [][]string {
	rows := make([][]string, 0, len(goals))
	for _, goal := range goals {
		grant, ok := grants[goal.GrantID]
		if !ok {
			continue
		}

		rows = append(rows, []string{
			model.GoalNumber(grant.RegionID, goal.ID),
			goal.Name,
			lifecycle.Status(goal.Status).Label(),
			goal.Timeframe,
			date(goal.EndDate),
			grant.Number,
			grant.RecipientName,
			strconv.FormatInt(goal.GoalTemplateID, 10),
			timestamp(goal.FirstNotStartedAt),
			timestamp(goal.FirstInProgressAt),
			timestamp(goal.LastSuspendedAt),
			timestamp(goal.LastClosedAt),
			goal.CloseSuspendReason,
			goal.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

func Write(w io.Writer, format Format, rows [][]string) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	err := writer.Write(Header)
	if err != nil {
		return err
	}

	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName("Sheet1", sheetName)
	if err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	err = writeRow(f, 1, Header)
	if err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return err
	}
	err = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	if err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		err = writeRow(f, i+2, row)
		if err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return err
	}
	err = f.SetColWidth(sheetName, "A", lastCol, 20)
	if err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	_, err = f.WriteTo(w)
	if err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	err = f.SetSheetRow(sheetName, cell, &values)
	if err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func timestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
