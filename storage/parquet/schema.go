package parquet

import (
	"time"

	pq "github.com/parquet-go/parquet-go"

	"github.com/vegasq/sqlcore/expression"
	"github.com/vegasq/sqlcore/types"
)

// ColumnInfo describes one leaf column of a parquet file
type ColumnInfo struct {
	Name         string         `json:"name"`
	Type         types.ExprType `json:"-"`
	TypeName     string         `json:"type"`
	PhysicalType string         `json:"physical_type"`
	LogicalType  string         `json:"logical_type"`
	Required     bool           `json:"required"`
	Optional     bool           `json:"optional"`
	Repeated     bool           `json:"repeated"`
}

// Columns extracts the leaf columns of the parquet file at path.
//
// For nested types, column names use dot notation (e.g., "address.street").
// A column is reported as repeated when it or any of its parents repeats.
func Columns(path string) ([]ColumnInfo, error) {
	r, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var infos []ColumnInfo
	for _, field := range r.Schema().Fields() {
		infos = append(infos, leafColumns(field, "", false)...)
	}
	return infos, nil
}

func leafColumns(field pq.Field, prefix string, parentRepeated bool) []ColumnInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if !field.Leaf() {
		var infos []ColumnInfo
		for _, child := range field.Fields() {
			infos = append(infos, leafColumns(child, name, repeated)...)
		}
		return infos
	}

	t := exprType(field)
	return []ColumnInfo{{
		Name:         name,
		Type:         t,
		TypeName:     t.String(),
		PhysicalType: physicalType(field),
		LogicalType:  logicalType(field),
		Required:     field.Required(),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}}
}

// tableSchema maps the top-level fields of a parquet schema to columns. It
// also returns, per column, the unit of integer encoded TIME and TIMESTAMP
// values.
func tableSchema(schema *pq.Schema) (expression.Schema, []time.Duration) {
	fields := schema.Fields()
	cols := make(expression.Schema, len(fields))
	units := make([]time.Duration, len(fields))
	for i, f := range fields {
		cols[i] = expression.Column{Name: f.Name(), Type: exprType(f)}
		units[i] = timeUnit(f)
	}
	return cols, units
}

// exprType returns the column type values of field convert to
func exprType(field pq.Field) types.ExprType {
	if field.Repeated() {
		return types.Array
	}
	if !field.Leaf() {
		if lt := field.Type().LogicalType(); lt != nil && lt.List != nil {
			return types.Array
		}
		return types.Struct
	}

	if lt := field.Type().LogicalType(); lt != nil {
		switch {
		case lt.Date != nil:
			return types.Date
		case lt.Time != nil:
			return types.Time
		case lt.Timestamp != nil:
			return types.Timestamp
		case lt.Integer != nil:
			switch lt.Integer.BitWidth {
			case 8:
				return types.Byte
			case 16:
				return types.Short
			case 32:
				return types.Integer
			}
			return types.Long
		case lt.UTF8 != nil, lt.Enum != nil, lt.Json != nil, lt.UUID != nil:
			return types.String
		}
	}

	switch field.Type().Kind() {
	case pq.Boolean:
		return types.Boolean
	case pq.Int32:
		return types.Integer
	case pq.Int64:
		return types.Long
	case pq.Float:
		return types.Float
	case pq.Double:
		return types.Double
	}
	return types.String
}

// timeUnit returns the duration of one tick of an integer encoded TIME or
// TIMESTAMP field, or zero for any other field
func timeUnit(field pq.Field) time.Duration {
	if !field.Leaf() {
		return 0
	}
	lt := field.Type().LogicalType()
	if lt == nil {
		return 0
	}
	switch {
	case lt.Timestamp != nil:
		return unitOf(lt.Timestamp.Unit.Millis != nil, lt.Timestamp.Unit.Micros != nil)
	case lt.Time != nil:
		return unitOf(lt.Time.Unit.Millis != nil, lt.Time.Unit.Micros != nil)
	}
	return 0
}

func unitOf(millis, micros bool) time.Duration {
	switch {
	case millis:
		return time.Millisecond
	case micros:
		return time.Microsecond
	}
	return time.Nanosecond
}

// physicalType returns the physical type name of a parquet field
func physicalType(field pq.Field) string {
	if !field.Leaf() {
		return "GROUP"
	}

	switch field.Type().Kind() {
	case pq.Boolean:
		return "BOOLEAN"
	case pq.Int32:
		return "INT32"
	case pq.Int64:
		return "INT64"
	case pq.Int96:
		return "INT96"
	case pq.Float:
		return "FLOAT"
	case pq.Double:
		return "DOUBLE"
	case pq.ByteArray:
		return "BYTE_ARRAY"
	case pq.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// logicalType returns the logical type name of a parquet field
func logicalType(field pq.Field) string {
	if !field.Leaf() {
		return ""
	}
	lt := field.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}
