package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MsgInvalidJSON is returned when the body is not a JSON object.
const MsgInvalidJSON = "Invalid JSON"

// decodeInput parses a JSON object into a ProductInput. Numeric fields accept
// numbers or numeric strings. Unknown keys are ignored. The second result
// reports whether the object had any keys at all.
func decodeInput(body []byte) (ProductInput, bool, error) {
	var in ProductInput
	if len(bytes.TrimSpace(body)) == 0 {
		return in, false, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return in, false, invalid(MsgInvalidJSON, "")
	}

	var err error
	if in.Name, err = stringField(raw, "name"); err != nil {
		return in, true, err
	}
	if in.Category, err = stringField(raw, "category"); err != nil {
		return in, true, err
	}
	if in.Description, err = stringField(raw, "description"); err != nil {
		return in, true, err
	}
	if in.Image, err = stringField(raw, "image"); err != nil {
		return in, true, err
	}
	if in.Price, err = numberField(raw, "price"); err != nil {
		return in, true, err
	}
	if in.Rating, err = numberField(raw, "rating"); err != nil {
		return in, true, err
	}
	if in.Stock, err = intField(raw, "stock"); err != nil {
		return in, true, err
	}
	if in.OldPrice, err = oldPriceField(raw); err != nil {
		return in, true, err
	}
	return in, len(raw) > 0, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func stringField(raw map[string]json.RawMessage, key string) (*string, error) {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, invalid(key+" must be a string", key)
	}
	return &s, nil
}

// coerce converts a JSON scalar to a number the way Number() would, except
// that NaN results are rejected instead of stored.
func coerce(v json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		if b {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func numberField(raw map[string]json.RawMessage, key string) (*float64, error) {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return nil, nil
	}
	f, ok := coerce(v)
	if !ok {
		return nil, invalid(key+" must be a number", key)
	}
	return &f, nil
}

func intField(raw map[string]json.RawMessage, key string) (*int, error) {
	f, err := numberField(raw, key)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil, invalid(key+" must be a non-negative integer", key)
	}
	n := int(*f)
	return &n, nil
}

// oldPriceField maps null, false, 0 and "" to an explicit clear.
func oldPriceField(raw map[string]json.RawMessage) (*OptionalPrice, error) {
	v, ok := raw["oldPrice"]
	if !ok {
		return nil, nil
	}
	if isNull(v) {
		return &OptionalPrice{}, nil
	}
	f, ok := coerce(v)
	if !ok {
		return nil, invalid("oldPrice must be a number", "oldPrice")
	}
	if f == 0 {
		return &OptionalPrice{}, nil
	}
	return &OptionalPrice{Value: &f}, nil
}
