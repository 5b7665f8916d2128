package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

var defaultColID = json.RawMessage("0")

// ColID is the caller-supplied tenant identifier. It may be a JSON number or
// string and is echoed back exactly as it was received. A missing or null
// value means 0.
type ColID struct {
	raw json.RawMessage
}

// NewColID builds a ColID from an integer.
func NewColID(n int64) ColID {
	return ColID{raw: json.RawMessage(strconv.FormatInt(n, 10))}
}

// ParseColID builds a ColID from raw JSON text.
func ParseColID(raw string) (ColID, error) {
	var c ColID
	if err := c.UnmarshalJSON([]byte(raw)); err != nil {
		return ColID{}, err
	}
	return c, nil
}

func (c *ColID) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		c.raw = nil
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	c.raw = buf.Bytes()
	return nil
}

func (c ColID) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return defaultColID, nil
	}
	return c.raw, nil
}

// Key is the partition key used by conversation stores. Numbers with the
// same value share a key (7, 7.0 and 7e0), while 7 and "7" stay different
// tenants.
func (c ColID) Key() string {
	switch v := c.Value().(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if len(c.raw) == 0 {
		return string(defaultColID)
	}
	return string(c.raw)
}

// Value decodes the identifier into a plain Go value for document stores.
// Integral numbers become int64.
func (c ColID) Value() any {
	raw := c.raw
	if len(raw) == 0 {
		raw = defaultColID
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, err := n.Float64()
	if err != nil {
		return string(raw)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

func (c ColID) String() string {
	return c.Key()
}
