package resgroup

import (
	"bytes"
	"encoding/json"
	"math"
)

// object is a leniently read JSON object.
// Missing or mistyped fields read as zero values.
type object map[string]json.RawMessage

// parseObject decodes data as a JSON object.
// It fails if data is not an object.
func parseObject(data []byte) (object, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, errNotObjectSyntax
	}

	var o object
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, err
	}
	return o, nil
}

func (o object) has(key string) bool {
	_, ok := o[key]
	return ok
}

func (o object) string(key string) string {
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return ""
	}
	return s
}

func (o object) bool(key string) bool {
	var b bool
	if err := json.Unmarshal(o[key], &b); err != nil {
		return false
	}
	return b
}

// int returns the field as an integer,
// or zero if it is not a number with an integral value.
func (o object) int(key string) int {
	var f float64
	if err := json.Unmarshal(o[key], &f); err != nil {
		return 0
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

func (o object) object(key string) object {
	o2, err := parseObject(o[key])
	if err != nil {
		return nil
	}
	return o2
}

func (o object) array(key string) []json.RawMessage {
	raw := bytes.TrimSpace(o[key])
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}

	var a []json.RawMessage
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil
	}
	return a
}
