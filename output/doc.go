// Package output renders query results.
//
// Supported formats:
//   - jsonl: one JSON object per row, keys in column order
//   - csv: a header row followed by one record per row
//   - table: an aligned text table for terminals
//
// Example usage:
//
//	f, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := f.Format(resp.Schema, resp.Rows); err != nil {
//	    log.Fatal(err)
//	}
//
// Column names are the plain column names unless two columns share one, in
// which case the qualified names are used. NULL renders as JSON null or an
// empty field. MISSING fields are omitted from JSON objects.
package output
