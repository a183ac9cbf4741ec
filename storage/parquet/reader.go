// Package parquet is a storage adapter over Apache Parquet files.
//
// A table is a single file or a glob of files sharing one schema. Rows are
// streamed file by file as maps and converted to the column types of the
// table schema. The adapter honors projection hints; filter, sort and limit
// hints are left to the scan operator.
package parquet

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	pq "github.com/parquet-go/parquet-go"
)

// maxFiles bounds how many files a glob pattern may expand to
const maxFiles = 1000

// fileReader streams the rows of one parquet file.
//
// It keeps both the OS file handle and the parquet handles so Close can
// release everything.
type fileReader struct {
	path   string
	file   *os.File
	pqFile *pq.File
	rows   *pq.Reader
}

// openFile opens path and validates it as a parquet file.
//
// Returns an error if the file doesn't exist or is not a valid parquet file.
func openFile(path string) (*fileReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "failed to stat file")
	}

	pqFile, err := pq.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "failed to open parquet file %s", path)
	}

	return &fileReader{path: path, file: file, pqFile: pqFile}, nil
}

// Schema returns the parquet schema of the file
func (r *fileReader) Schema() *pq.Schema {
	return r.pqFile.Schema()
}

// next reads one row as a map keyed by top-level column name. It returns
// io.EOF after the last row.
func (r *fileReader) next() (map[string]interface{}, error) {
	if r.rows == nil {
		r.rows = pq.NewReader(r.pqFile)
	}
	row := make(map[string]interface{})
	if err := r.rows.Read(&row); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "failed to read row from %s", r.path)
	}
	return row, nil
}

// Close releases the file. It is safe to call Close multiple times.
func (r *fileReader) Close() error {
	if r.rows != nil {
		_ = r.rows.Close()
		r.rows = nil
	}
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// IsGlob reports whether pattern contains glob wildcards
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// Expand resolves pattern to the files it names.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// Examples:
//   - "data/*.parquet" - all parquet files in data directory
//   - "data/2024-*.parquet" - parquet files starting with 2024- in data directory
//
// A plain path is returned as is. Returns an error if no files match the
// pattern or if it matches more than maxFiles files.
func Expand(pattern string) ([]string, error) {
	if !IsGlob(pattern) {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "invalid glob pattern")
	}
	if len(matches) == 0 {
		return nil, errors.Newf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, errors.Newf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}
	return matches, nil
}
