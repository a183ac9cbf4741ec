package types

import (
	"math"
	"strings"
)

// ExprType is a member of the closed core type set
type ExprType int

const (
	Undefined ExprType = iota
	Byte
	Short
	Integer
	Long
	Float
	Double
	Boolean
	String
	Date
	Time
	Datetime
	Timestamp
	Struct
	Array
)

// ImpossibleWidening is returned by Distance when no widening path exists
const ImpossibleWidening = math.MaxInt32

var typeNames = [...]string{
	Undefined: "UNDEFINED",
	Byte:      "BYTE",
	Short:     "SHORT",
	Integer:   "INTEGER",
	Long:      "LONG",
	Float:     "FLOAT",
	Double:    "DOUBLE",
	Boolean:   "BOOLEAN",
	String:    "STRING",
	Date:      "DATE",
	Time:      "TIME",
	Datetime:  "DATETIME",
	Timestamp: "TIMESTAMP",
	Struct:    "STRUCT",
	Array:     "ARRAY",
}

// widensFrom lists, for each type, the types that widen into it in one step
var widensFrom = map[ExprType][]ExprType{
	Byte:      {Undefined},
	Short:     {Byte},
	Integer:   {Short},
	Long:      {Integer},
	Float:     {Long},
	Double:    {Float},
	String:    {Undefined},
	Boolean:   {String},
	Date:      {String},
	Time:      {String},
	Datetime:  {String, Date},
	Timestamp: {String, Datetime},
	Struct:    {Undefined},
	Array:     {Undefined},
}

// String returns the upper-case type name
func (t ExprType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "UNKNOWN"
	}
	return typeNames[t]
}

// All returns every type in declaration order
func All() []ExprType {
	out := make([]ExprType, 0, len(typeNames))
	for i := range typeNames {
		out = append(out, ExprType(i))
	}
	return out
}

// Parse looks up a type by name, case-insensitively. INT is accepted for INTEGER.
func Parse(name string) (ExprType, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if upper == "INT" {
		return Integer, true
	}
	for i, n := range typeNames {
		if n == upper {
			return ExprType(i), true
		}
	}
	return Undefined, false
}

// IsNumeric reports whether t is one of the numeric types
func (t ExprType) IsNumeric() bool {
	return t >= Byte && t <= Double
}

// IsIntegral reports whether t is an integral numeric type
func (t ExprType) IsIntegral() bool {
	return t >= Byte && t <= Long
}

// IsTemporal reports whether t is a date or time type
func (t ExprType) IsTemporal() bool {
	return t >= Date && t <= Timestamp
}
