package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// coerce normalizes raw into the canonical Go representation for t: string,
// int64, float64, bool, decimal.Decimal, time.Time, time.Duration, []byte,
// []any or *Object. Failures return records with locations relative to the
// field.
func coerce(ctx context.Context, t TypeRef, native NativeSpec, raw any) (any, []Error) {
	switch t.Kind {
	case TypeString:
		return coerceString(t, native, raw)
	case TypeInt:
		return coerceInt(native, raw)
	case TypeFloat:
		return coerceFloat(native, raw)
	case TypeBool:
		return coerceBool(native, raw)
	case TypeDecimal:
		return coerceDecimal(native, raw)
	case TypeDate:
		return coerceDate(native, raw)
	case TypeTime:
		return coerceClock(native, raw)
	case TypeDateTime:
		return coerceDateTime(native, raw)
	case TypeDuration:
		return coerceDuration(native, raw)
	case TypeBytes:
		return coerceBytes(raw)
	case TypeList:
		return coerceList(ctx, t, native, raw)
	case TypeObject:
		return coerceObject(ctx, t, raw)
	default:
		return raw, nil
	}
}

func fail(code, message string, input any) []Error {
	return []Error{{Code: code, Message: message, Input: input}}
}

func coerceString(t TypeRef, native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case uuid.UUID:
		return v.String(), nil
	case []byte:
		if native.Strict {
			break
		}
		return string(v), nil
	case json.Number:
		if native.Strict || !native.CoerceNumberToString {
			break
		}
		return v.String(), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		if native.Strict || !native.CoerceNumberToString {
			break
		}
		return fmt.Sprintf("%v", v), nil
	}
	return nil, fail(CodeStringType, "Input should be a valid string", raw)
}

func coerceInt(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fail(CodeIntParsing, "Input integer is out of range", raw)
		}
		return int64(v), nil
	case float32:
		return intFromFloat(float64(v), native, raw)
	case float64:
		return intFromFloat(v, native, raw)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		if f, err := v.Float64(); err == nil {
			return intFromFloat(f, native, raw)
		}
	case string:
		if native.Strict {
			break
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, nil
		}
		return nil, fail(CodeIntParsing, "Input should be a valid integer, unable to parse string as an integer", raw)
	}
	return nil, fail(CodeIntType, "Input should be a valid integer", raw)
}

func intFromFloat(f float64, native NativeSpec, raw any) (any, []Error) {
	if native.Strict {
		return nil, fail(CodeIntType, "Input should be a valid integer", raw)
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fail(CodeIntParsing, "Input should be a valid integer, got a number with a fractional part", raw)
	}
	return int64(f), nil
}

func coerceFloat(native NativeSpec, raw any) (any, []Error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		if native.Strict {
			return nil, fail(CodeFloatParsing, "Input should be a valid number", raw)
		}
		parsed, err := v.Float64()
		if err != nil {
			return nil, fail(CodeFloatParsing, "Input should be a valid number", raw)
		}
		f = parsed
	case string:
		if native.Strict {
			return nil, fail(CodeFloatParsing, "Input should be a valid number", raw)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fail(CodeFloatParsing, "Input should be a valid number, unable to parse string as a number", raw)
		}
		f = parsed
	default:
		return nil, fail(CodeFloatParsing, "Input should be a valid number", raw)
	}
	if !native.AllowInfNaN && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil, fail(CodeFiniteNumber, "Input should be a finite number", raw)
	}
	return f, nil
}

func coerceBool(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		if native.Strict {
			break
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	case int, int64, json.Number:
		if native.Strict {
			break
		}
		s := fmt.Sprintf("%v", v)
		if s == "1" {
			return true, nil
		}
		if s == "0" {
			return false, nil
		}
	}
	return nil, fail(CodeBoolParsing, "Input should be a valid boolean", raw)
}

func coerceDecimal(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fail(CodeDecimalParsing, "Input should be a valid decimal", raw)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		if native.Strict {
			break
		}
		return decimal.NewFromFloat(v), nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return nil, fail(CodeDecimalParsing, "Input should be a valid decimal", raw)
		}
		return d, nil
	}
	return nil, fail(CodeDecimalParsing, "Input should be a valid decimal", raw)
}

func coerceDate(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if native.Strict {
			break
		}
		if ts, err := time.Parse("2006-01-02", v); err == nil {
			return ts, nil
		}
	}
	return nil, fail(CodeDateParsing, "Input should be a valid date", raw)
}

func coerceClock(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if native.Strict {
			break
		}
		for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, nil
			}
		}
	}
	return nil, fail(CodeTimeParsing, "Input should be a valid time", raw)
}

func coerceDateTime(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		if native.Strict {
			break
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, nil
			}
		}
	}
	return nil, fail(CodeDateTimeParsing, "Input should be a valid datetime", raw)
}

func coerceDuration(native NativeSpec, raw any) (any, []Error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		if native.Strict {
			break
		}
		return time.Duration(v * float64(time.Second)), nil
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return time.Duration(f * float64(time.Second)), nil
		}
	case string:
		if native.Strict {
			break
		}
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d, nil
		}
		return nil, fail(CodeDurationParsing, "Input should be a valid duration, unable to parse string as a duration", raw)
	}
	return nil, fail(CodeDurationParsing, "Input should be a valid duration", raw)
}

func coerceBytes(raw any) (any, []Error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fail(CodeBytesType, "Input should be a valid bytes value", raw)
}

func coerceList(ctx context.Context, t TypeRef, native NativeSpec, raw any) (any, []Error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []int64:
		items = make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
	case []int:
		items = make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
	case []string:
		items = make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
	default:
		return nil, fail(CodeListType, "Input should be a valid list", raw)
	}
	if t.Elem == nil {
		return append([]any(nil), items...), nil
	}
	out := make([]any, 0, len(items))
	var errs []Error
	for i, item := range items {
		coerced, itemErrs := coerce(ctx, *t.Elem, native, item)
		if len(itemErrs) > 0 {
			for _, rec := range itemErrs {
				rec.Loc = append([]string{strconv.Itoa(i)}, rec.Loc...)
				errs = append(errs, rec)
			}
			continue
		}
		out = append(out, coerced)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func coerceObject(ctx context.Context, t TypeRef, raw any) (any, []Error) {
	switch v := raw.(type) {
	case *Object:
		return v, nil
	case map[string]any:
		if t.Object == nil {
			return nil, fail(CodeModelType, "Input should be a valid object", raw)
		}
		obj, err := t.Object.Validate(ctx, v)
		if err != nil {
			if verr := asValidationError(err); verr != nil {
				return nil, verr.Errors
			}
			return nil, fail(CodeModelType, err.Error(), raw)
		}
		return obj, nil
	}
	return nil, fail(CodeModelType, "Input should be a valid object", raw)
}
