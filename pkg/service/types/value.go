package types

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Value holds a loosely typed scalar reported by the backend: a number, string, bool or null.
// The JSON text of numbers is kept verbatim so no precision is lost.
type Value struct {
	raw   string
	valid bool
}

func NewValue(s string) Value {
	return Value{raw: s, valid: true}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = Value{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = NewValue(s)
		return nil
	}
	*v = NewValue(string(b))
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.valid {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(v.raw, 64); err == nil || v.raw == "true" || v.raw == "false" {
		return []byte(v.raw), nil
	}
	return json.Marshal(v.raw)
}

func (v Value) MarshalCSV() (string, error) {
	return v.String(), nil
}

func (v Value) String() string {
	return v.raw
}

func (v Value) IsNull() bool {
	return !v.valid
}

// Decimal parses the value as a number.
func (v Value) Decimal() (decimal.Decimal, bool) {
	if !v.valid {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
