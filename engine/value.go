package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// VALUE — One indicator cell with an explicit "absent" state
// ============================================================================
// Survey exports spell "no data" as null, "", whitespace or "-". Ingestion
// folds all of them into a single absent Value; nothing downstream ever has
// to compare against those spellings again.
// ============================================================================

// ValueKind tells which variant a Value holds.
type ValueKind uint8

const (
	KindAbsent ValueKind = iota
	KindNumber
	KindText
)

// Value is a survey cell: a number, a text, or absent.
type Value struct {
	kind ValueKind
	num  float64
	text string
}

// Absent returns the "no data" value.
func Absent() Value { return Value{} }

// Number wraps a numeric cell. NaN and infinities are absent.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Absent()
	}
	return Value{kind: KindNumber, num: f}
}

// Text wraps a text cell as-is. Use ParseString for raw input.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// ParseString normalizes raw text input: empty, whitespace and "-" are absent.
func ParseString(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" || s == NoData {
		return Absent()
	}
	return Text(s)
}

// ParseNumber parses a numeric cell, returning absent when it does not parse.
func ParseNumber(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" || s == NoData {
		return Absent()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Absent()
	}
	return Number(f)
}

// ParseValue converts a decoded JSON, SQL or BSON value into a Value.
func ParseValue(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return Absent()
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case json.Number:
		return ParseNumber(x.String())
	case string:
		return ParseString(x)
	case []byte:
		return ParseString(string(x))
	case bool:
		if x {
			return Text(LabelAda)
		}
		return Text(LabelTidakAda)
	default:
		return ParseString(fmt.Sprint(x))
	}
}

// Kind reports the variant.
func (v Value) Kind() ValueKind { return v.kind }

// IsAbsent reports whether the cell holds no data.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// IsNumber reports whether the cell was stored as a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric reading of the cell. Text cells that parse as a
// number count as numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.text), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// OrZero returns the numeric reading or 0.
func (v Value) OrZero() float64 {
	f, _ := v.Float()
	return f
}

// Label returns the display text of the cell, "" when absent.
func (v Value) Label() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	}
	return ""
}

// OrDash returns the display text or "-".
func (v Value) OrDash() string {
	if v.IsAbsent() {
		return NoData
	}
	return v.Label()
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.OrDash() }

// MarshalJSON writes numbers as numbers, text as strings and absent as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	}
	return []byte("null"), nil
}

// UnmarshalJSON reads any JSON scalar.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*v = ParseValue(raw)
	return nil
}
