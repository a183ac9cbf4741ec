// Package value implements the runtime values evaluated by the engine.
//
// ExprValue is a closed set of variants: one per core type, plus the NULL and
// MISSING markers. NULL is a present but unknown value; MISSING is the absence
// of a field.
package value

import (
	"strconv"

	"github.com/vegasq/sqlcore/types"
)

// ExprValue is a typed runtime value
type ExprValue interface {
	// Type returns the core type of the value. NULL and MISSING report UNDEFINED.
	Type() types.ExprType
	// Value returns the canonical Go payload
	Value() interface{}
	// String renders the value as a SQL literal
	String() string

	exprValue()
}

type nullValue struct{}

func (nullValue) Type() types.ExprType { return types.Undefined }
func (nullValue) Value() interface{}   { return nil }
func (nullValue) String() string       { return "NULL" }
func (nullValue) exprValue()           {}

type missingValue struct{}

func (missingValue) Type() types.ExprType { return types.Undefined }
func (missingValue) Value() interface{}   { return nil }
func (missingValue) String() string       { return "MISSING" }
func (missingValue) exprValue()           {}

var (
	// Null is the present-but-unknown value
	Null ExprValue = nullValue{}
	// Missing marks an absent field
	Missing ExprValue = missingValue{}
)

// IsNull reports whether v is NULL
func IsNull(v ExprValue) bool {
	_, ok := v.(nullValue)
	return ok
}

// IsMissing reports whether v is MISSING
func IsMissing(v ExprValue) bool {
	_, ok := v.(missingValue)
	return ok
}

// IsAbsent reports whether v is NULL or MISSING
func IsAbsent(v ExprValue) bool {
	return v == nil || IsNull(v) || IsMissing(v)
}

// Byte is a BYTE value
type Byte int8

func (v Byte) Type() types.ExprType { return types.Byte }
func (v Byte) Value() interface{}   { return int8(v) }
func (v Byte) String() string       { return strconv.FormatInt(int64(v), 10) }
func (Byte) exprValue()             {}

// Short is a SHORT value
type Short int16

func (v Short) Type() types.ExprType { return types.Short }
func (v Short) Value() interface{}   { return int16(v) }
func (v Short) String() string       { return strconv.FormatInt(int64(v), 10) }
func (Short) exprValue()             {}

// Integer is an INTEGER value
type Integer int32

func (v Integer) Type() types.ExprType { return types.Integer }
func (v Integer) Value() interface{}   { return int32(v) }
func (v Integer) String() string       { return strconv.FormatInt(int64(v), 10) }
func (Integer) exprValue()             {}

// Long is a LONG value
type Long int64

func (v Long) Type() types.ExprType { return types.Long }
func (v Long) Value() interface{}   { return int64(v) }
func (v Long) String() string       { return strconv.FormatInt(int64(v), 10) }
func (Long) exprValue()             {}

// Float is a FLOAT value
type Float float32

func (v Float) Type() types.ExprType { return types.Float }
func (v Float) Value() interface{}   { return float32(v) }
func (v Float) String() string       { return FormatFloat(float64(v), 32) }
func (Float) exprValue()             {}

// Double is a DOUBLE value
type Double float64

func (v Double) Type() types.ExprType { return types.Double }
func (v Double) Value() interface{}   { return float64(v) }
func (v Double) String() string       { return FormatFloat(float64(v), 64) }
func (Double) exprValue()             {}

// Boolean is a BOOLEAN value
type Boolean bool

func (v Boolean) Type() types.ExprType { return types.Boolean }
func (v Boolean) Value() interface{}   { return bool(v) }
func (v Boolean) String() string       { return strconv.FormatBool(bool(v)) }
func (Boolean) exprValue()             {}

// String is a STRING value
type String string

func (v String) Type() types.ExprType { return types.String }
func (v String) Value() interface{}   { return string(v) }
func (v String) String() string       { return strconv.Quote(string(v)) }
func (String) exprValue()             {}

// True and False are the boolean singletons
var (
	True  ExprValue = Boolean(true)
	False ExprValue = Boolean(false)
)
