package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// CSVFormatter outputs rows as CSV format
type CSVFormatter struct {
	writer io.Writer
}

// NewCSVFormatter creates a new CSV formatter
func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{writer: w}
}

// SetOutput sets the output writer
func (c *CSVFormatter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes a header row and one record per row. The header is written
// even when there are no rows.
func (c *CSVFormatter) Format(schema expression.Schema, rows []value.Tuple) error {
	csvWriter := csv.NewWriter(c.writer)

	header := Header(schema)
	if err := csvWriter.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i := range header {
			record[i] = formatValue(cell(row, i))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return errors.Wrap(err, "failed to flush CSV writer")
	}
	return nil
}

// formatValue converts a value to a CSV field. NULL and MISSING are empty.
func formatValue(v value.ExprValue) string {
	if value.IsAbsent(v) {
		return ""
	}

	switch val := v.Value().(type) {
	case string:
		// Sanitize against CSV injection by prefixing characters that
		// trigger formula execution in spreadsheet applications
		if len(val) > 0 {
			switch val[0] {
			case '=', '+', '-', '@', '\t', '\r', '\n', '|':
				return "'" + strings.ReplaceAll(val, "'", "''")
			}
		}
		return val
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case float32, float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		// Nested values are written as JSON
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(raw)
	}
}
