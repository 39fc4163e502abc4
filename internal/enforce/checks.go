package enforce

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

func checkMinLength(r Rules, value any) *Violation {
	if r.MinLength == nil {
		return nil
	}
	n, measurable := lengthOf(value)
	if !measurable {
		return nil
	}
	if passes(value, fmt.Sprintf("min=%d", *r.MinLength)) {
		return nil
	}
	if _, isString := value.(string); isString {
		return &Violation{
			Code:    CodeStringTooShort,
			Message: fmt.Sprintf("String should have at least %d character%s", *r.MinLength, plural(*r.MinLength)),
			Ctx:     map[string]any{"min_length": *r.MinLength},
		}
	}
	return &Violation{
		Code:    CodeTooShort,
		Message: fmt.Sprintf("List should have at least %d item%s after validation, not %d", *r.MinLength, plural(*r.MinLength), n),
		Ctx:     map[string]any{"min_length": *r.MinLength, "actual_length": n},
	}
}

func checkMaxLength(r Rules, value any) *Violation {
	if r.MaxLength == nil {
		return nil
	}
	n, measurable := lengthOf(value)
	if !measurable {
		return nil
	}
	if passes(value, fmt.Sprintf("max=%d", *r.MaxLength)) {
		return nil
	}
	if _, isString := value.(string); isString {
		return &Violation{
			Code:    CodeStringTooLong,
			Message: fmt.Sprintf("String should have at most %d character%s", *r.MaxLength, plural(*r.MaxLength)),
			Ctx:     map[string]any{"max_length": *r.MaxLength},
		}
	}
	return &Violation{
		Code:    CodeTooLong,
		Message: fmt.Sprintf("List should have at most %d item%s after validation, not %d", *r.MaxLength, plural(*r.MaxLength), n),
		Ctx:     map[string]any{"max_length": *r.MaxLength, "actual_length": n},
	}
}

func checkPattern(r Rules, value any) *Violation {
	if r.Pattern == "" {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	re, err := compiled(r.Pattern)
	if err != nil {
		return nil
	}
	if re.MatchString(s) {
		return nil
	}
	return &Violation{
		Code:    CodePatternMismatch,
		Message: fmt.Sprintf("String should match pattern '%s'", r.Pattern),
		Ctx:     map[string]any{"pattern": r.Pattern},
	}
}

func checkFormat(r Rules, value any) *Violation {
	if r.Format == "" {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil
	}
	switch r.Format {
	case "email":
		if passes(s, "email") {
			return nil
		}
		return &Violation{
			Code:    CodeValueError,
			Message: "value is not a valid email address",
			Ctx:     map[string]any{"format": "email"},
		}
	case "url":
		if passes(s, "url") {
			return nil
		}
		return &Violation{
			Code:    CodeValueError,
			Message: "Input should be a valid URL",
			Ctx:     map[string]any{"format": "url"},
		}
	case "uuid":
		if passes(s, "uuid") {
			return nil
		}
		return &Violation{
			Code:    CodeUUIDParsing,
			Message: "Input should be a valid UUID, invalid character or length",
			Ctx:     map[string]any{"format": "uuid"},
		}
	case "ipaddr":
		if passes(s, "ip") {
			return nil
		}
		return &Violation{
			Code:    CodeValueError,
			Message: "Input should be a valid IP address",
			Ctx:     map[string]any{"format": "ipaddr"},
		}
	case "slug":
		if slugPattern.MatchString(s) {
			return nil
		}
		return &Violation{
			Code:    CodeValueError,
			Message: "Input should be a valid slug consisting of letters, numbers, underscores or hyphens",
			Ctx:     map[string]any{"format": "slug"},
		}
	}
	return nil
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type boundOp struct {
	tag    string
	code   string
	phrase string
	key    string
	holds  func(cmp int) bool
}

var (
	opGT = boundOp{"gt", CodeGreaterThan, "greater than", "gt", func(c int) bool { return c > 0 }}
	opGE = boundOp{"gte", CodeGreaterOrEqual, "greater than or equal to", "ge", func(c int) bool { return c >= 0 }}
	opLT = boundOp{"lt", CodeLessThan, "less than", "lt", func(c int) bool { return c < 0 }}
	opLE = boundOp{"lte", CodeLessOrEqual, "less than or equal to", "le", func(c int) bool { return c <= 0 }}
)

func checkGreaterThan(r Rules, value any) *Violation {
	return checkBound(value, r.GreaterThan, opGT)
}

func checkGreaterOrEqual(r Rules, value any) *Violation {
	return checkBound(value, r.GreaterOrEqual, opGE)
}

func checkLessThan(r Rules, value any) *Violation {
	return checkBound(value, r.LessThan, opLT)
}

func checkLessOrEqual(r Rules, value any) *Violation {
	return checkBound(value, r.LessOrEqual, opLE)
}

func checkBound(value, bound any, op boundOp) *Violation {
	if bound == nil {
		return nil
	}
	holds, known := boundHolds(value, bound, op)
	if !known || holds {
		return nil
	}
	return &Violation{
		Code:    op.code,
		Message: fmt.Sprintf("Input should be %s %v", op.phrase, bound),
		Ctx:     map[string]any{op.key: bound},
	}
}

// boundHolds compares value against bound. Plain integer and float pairs go
// through the validator backend; decimals, times and durations are compared
// directly. Unsupported pairings report known=false and are skipped.
func boundHolds(value, bound any, op boundOp) (holds, known bool) {
	switch v := value.(type) {
	case int64:
		if b, ok := boundAsInt(bound); ok {
			return passes(v, fmt.Sprintf("%s=%d", op.tag, b)), true
		}
		if f, ok := boundAsFloat(bound); ok {
			return passes(float64(v), fmt.Sprintf("%s=%v", op.tag, f)), true
		}
	case float64:
		if f, ok := boundAsFloat(bound); ok {
			return passes(v, fmt.Sprintf("%s=%v", op.tag, f)), true
		}
	case decimal.Decimal:
		if d, ok := boundAsDecimal(bound); ok {
			return op.holds(v.Cmp(d)), true
		}
	case time.Time:
		if b, ok := bound.(time.Time); ok {
			return op.holds(v.Compare(b)), true
		}
	case time.Duration:
		if b, ok := bound.(time.Duration); ok {
			return op.holds(compareInt64(int64(v), int64(b))), true
		}
	}
	return false, false
}

func checkMultipleOf(r Rules, value any) *Violation {
	if r.MultipleOf == nil {
		return nil
	}
	holds, known := multipleHolds(value, r.MultipleOf)
	if !known || holds {
		return nil
	}
	return &Violation{
		Code:    CodeMultipleOf,
		Message: fmt.Sprintf("Input should be a multiple of %v", r.MultipleOf),
		Ctx:     map[string]any{"multiple_of": r.MultipleOf},
	}
}

func multipleHolds(value, step any) (holds, known bool) {
	switch v := value.(type) {
	case int64:
		if b, ok := boundAsInt(step); ok && b != 0 {
			return v%b == 0, true
		}
		if f, ok := boundAsFloat(step); ok && f != 0 {
			return math.Mod(float64(v), f) == 0, true
		}
	case float64:
		if f, ok := boundAsFloat(step); ok && f != 0 {
			return math.Mod(v, f) == 0, true
		}
	case decimal.Decimal:
		if d, ok := boundAsDecimal(step); ok && !d.IsZero() {
			return v.Mod(d).IsZero(), true
		}
	}
	return false, false
}

func checkMaxDigits(r Rules, value any) *Violation {
	if r.MaxDigits == nil {
		return nil
	}
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil
	}
	digits, _ := decimalShape(d)
	if digits <= *r.MaxDigits {
		return nil
	}
	return &Violation{
		Code:    CodeMaxDigits,
		Message: fmt.Sprintf("Decimal input should have no more than %d digit%s in total", *r.MaxDigits, plural(*r.MaxDigits)),
		Ctx:     map[string]any{"max_digits": *r.MaxDigits},
	}
}

func checkDecimalPlaces(r Rules, value any) *Violation {
	if r.DecimalPlaces == nil {
		return nil
	}
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil
	}
	_, places := decimalShape(d)
	if places <= *r.DecimalPlaces {
		return nil
	}
	return &Violation{
		Code:    CodeDecimalPlaces,
		Message: fmt.Sprintf("Decimal input should have no more than %d decimal place%s", *r.DecimalPlaces, plural(*r.DecimalPlaces)),
		Ctx:     map[string]any{"decimal_places": *r.DecimalPlaces},
	}
}

// decimalShape reports the total digit count and decimal places of d. A
// value like 0.001 occupies three digits even though its coefficient is a
// single 1.
func decimalShape(d decimal.Decimal) (digits, places int) {
	n := len(strings.TrimPrefix(d.Coefficient().String(), "-"))
	exp := int(d.Exponent())
	if exp >= 0 {
		return n + exp, 0
	}
	places = -exp
	if places > n {
		return places, places
	}
	return n, places
}

func lengthOf(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v), true
	case []byte:
		return len(v), true
	case []any:
		return len(v), true
	}
	return 0, false
}

func boundAsInt(bound any) (int64, bool) {
	switch b := bound.(type) {
	case int:
		return int64(b), true
	case int8:
		return int64(b), true
	case int16:
		return int64(b), true
	case int32:
		return int64(b), true
	case int64:
		return b, true
	case uint:
		if uint64(b) <= math.MaxInt64 {
			return int64(b), true
		}
	case uint64:
		if b <= math.MaxInt64 {
			return int64(b), true
		}
	}
	return 0, false
}

func boundAsFloat(bound any) (float64, bool) {
	switch b := bound.(type) {
	case float32:
		return float64(b), true
	case float64:
		return b, true
	case int:
		return float64(b), true
	case int64:
		return float64(b), true
	case uint64:
		return float64(b), true
	case decimal.Decimal:
		f, _ := b.Float64()
		return f, true
	}
	return 0, false
}

func boundAsDecimal(bound any) (decimal.Decimal, bool) {
	switch b := bound.(type) {
	case decimal.Decimal:
		return b, true
	case int:
		return decimal.NewFromInt(int64(b)), true
	case int64:
		return decimal.NewFromInt(b), true
	case float64:
		return decimal.NewFromFloat(b), true
	case string:
		d, err := decimal.NewFromString(b)
		if err == nil {
			return d, true
		}
	}
	return decimal.Decimal{}, false
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

var patterns = struct {
	sync.RWMutex
	m map[string]*regexp.Regexp
}{m: map[string]*regexp.Regexp{}}

func compiled(pattern string) (*regexp.Regexp, error) {
	patterns.RLock()
	re, ok := patterns.m[pattern]
	patterns.RUnlock()
	if ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Lock()
	patterns.m[pattern] = re
	patterns.Unlock()
	return re, nil
}

// CompilePattern validates that pattern is a legal RE2 expression and warms
// the shared cache. Schema construction calls this so malformed patterns
// surface as configuration errors instead of silently skipped checks.
func CompilePattern(pattern string) error {
	_, err := compiled(pattern)
	return err
}
