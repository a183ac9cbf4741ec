package function

import (
	"strings"
	"unicode/utf8"

	"github.com/vegasq/sqlcore/types"
	"github.com/vegasq/sqlcore/value"
)

func str(v value.ExprValue) string { return string(v.(value.String)) }

func stringOp(fn func(string) string) func([]value.ExprValue) (value.ExprValue, error) {
	return unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.String(fn(str(v))), nil
	})
}

func registerStrings(g *registrar) {
	s := types.String

	g.add("upper", s, stringOp(strings.ToUpper), s)
	g.add("lower", s, stringOp(strings.ToLower), s)
	g.add("trim", s, stringOp(strings.TrimSpace), s)
	g.add("ltrim", s, stringOp(func(x string) string { return strings.TrimLeft(x, " \t\n\r") }), s)
	g.add("rtrim", s, stringOp(func(x string) string { return strings.TrimRight(x, " \t\n\r") }), s)
	g.add("reverse", s, stringOp(func(x string) string {
		runes := []rune(x)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	}), s)

	g.add("length", types.Integer, unary(func(v value.ExprValue) (value.ExprValue, error) {
		return value.Integer(utf8.RuneCountInString(str(v))), nil
	}), s)

	g.add("concat", s, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		return value.String(str(a) + str(b)), nil
	}), s, s)

	g.add("substring", s, binary(func(v, start value.ExprValue) (value.ExprValue, error) {
		from, _ := value.AsInteger(start)
		return value.String(substring(str(v), int(from), -1)), nil
	}), s, types.Integer)
	g.add("substring", s, func(args []value.ExprValue) (value.ExprValue, error) {
		from, _ := value.AsInteger(args[1])
		length, _ := value.AsInteger(args[2])
		if length < 0 {
			return value.String(""), nil
		}
		return value.String(substring(str(args[0]), int(from), int(length))), nil
	}, s, types.Integer, types.Integer)

	g.add("replace", s, func(args []value.ExprValue) (value.ExprValue, error) {
		return value.String(strings.ReplaceAll(str(args[0]), str(args[1]), str(args[2]))), nil
	}, s, s, s)

	g.add("starts_with", types.Boolean, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		return value.Boolean(strings.HasPrefix(str(a), str(b))), nil
	}), s, s)
	g.add("ends_with", types.Boolean, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		return value.Boolean(strings.HasSuffix(str(a), str(b))), nil
	}), s, s)
	g.add("contains", types.Boolean, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		return value.Boolean(strings.Contains(str(a), str(b))), nil
	}), s, s)

	g.add("like", types.Boolean, binary(func(a, b value.ExprValue) (value.ExprValue, error) {
		return value.Boolean(MatchLike(str(a), str(b))), nil
	}), s, s)
}

// substring returns length runes of s starting at the 1-based position
// from. A negative length takes the rest of the string.
func substring(s string, from, length int) string {
	runes := []rune(s)
	start := from - 1
	if start < 0 {
		start = 0
	}
	if start >= len(runes) {
		return ""
	}
	end := len(runes)
	if length >= 0 && start+length < end {
		end = start + length
	}
	return string(runes[start:end])
}

// MatchLike matches s against a SQL LIKE pattern where % matches any run of
// characters and _ matches exactly one
func MatchLike(s, pattern string) bool {
	segments := strings.Split(pattern, "%")
	text := []rune(s)

	if len(segments) == 1 {
		return len(text) == utf8.RuneCountInString(pattern) && segmentAt(text, []rune(pattern), 0)
	}

	first, last := []rune(segments[0]), []rune(segments[len(segments)-1])
	if len(first)+len(last) > len(text) || !segmentAt(text, first, 0) || !segmentAt(text, last, len(text)-len(last)) {
		return false
	}

	pos, end := len(first), len(text)-len(last)
	for _, seg := range segments[1 : len(segments)-1] {
		if seg == "" {
			continue
		}
		idx := findSegment(text[pos:end], []rune(seg))
		if idx < 0 {
			return false
		}
		pos += idx + len([]rune(seg))
	}
	return true
}

// segmentAt reports whether seg matches str at offset, with _ as a wildcard
func segmentAt(str, seg []rune, offset int) bool {
	if offset < 0 || offset+len(seg) > len(str) {
		return false
	}
	for i, r := range seg {
		if r != '_' && str[offset+i] != r {
			return false
		}
	}
	return true
}

// findSegment returns the first offset where seg matches in str, or -1
func findSegment(str, seg []rune) int {
	for i := 0; i+len(seg) <= len(str); i++ {
		if segmentAt(str, seg, i) {
			return i
		}
	}
	return -1
}
