package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/value"
)

// JSONFormatter outputs rows as JSON Lines format
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Keys keep the column order, which
// encoding/json does not do for maps.
func (j *JSONFormatter) Format(schema expression.Schema, rows []value.Tuple) error {
	header := Header(schema)
	keys := make([][]byte, len(header))
	for i, name := range header {
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	w := bufio.NewWriter(j.writer)
	var line []byte
	for n, row := range rows {
		line = append(line[:0], '{')
		first := true
		for i := range header {
			v := cell(row, i)
			if value.IsMissing(v) {
				continue
			}
			raw, err := json.Marshal(v.Value())
			if err != nil {
				return errors.Wrapf(err, "row %d column %s", n, header[i])
			}
			if !first {
				line = append(line, ',')
			}
			first = false
			line = append(line, keys[i]...)
			line = append(line, ':')
			line = append(line, raw...)
		}
		line = append(line, '}', '\n')
		if _, err := w.Write(line); err != nil {
			return errors.Wrapf(err, "writing row %d", n)
		}
	}
	return w.Flush()
}
