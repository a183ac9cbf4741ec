package output

import (
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// TableFormatter outputs rows as an aligned text table with a row count
// footer
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{writer: w}
}

// SetOutput sets the output writer
func (t *TableFormatter) SetOutput(w io.Writer) {
	t.writer = w
}

// Format renders every row. Unlike csv, strings are not sanitized and NULL
// is spelled out.
func (t *TableFormatter) Format(schema expression.Schema, rows []value.Tuple) error {
	header := Header(schema)
	table := tablewriter.NewWriter(t.writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)

	for _, row := range rows {
		record := make([]string, len(header))
		for i := range header {
			record[i] = tableValue(cell(row, i))
		}
		table.Append(record)
	}
	table.Render()

	unit := "rows"
	if len(rows) == 1 {
		unit = "row"
	}
	_, err := io.WriteString(t.writer, "("+humanize.Comma(int64(len(rows)))+" "+unit+")\n")
	return err
}

func tableValue(v value.ExprValue) string {
	switch {
	case value.IsMissing(v):
		return ""
	case value.IsNull(v):
		return "NULL"
	}
	if s, ok := v.Value().(string); ok {
		return s
	}
	return formatValue(v)
}
