// Package diffengine compares a draft extraction of a contract against
// the canonical (CCA-verified) one, field path by field path. Extraction
// payloads arrive as arbitrary JSON objects; they are first parsed into a
// typed field-path mapping so equality never relies on runtime type
// inspection.
package diffengine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// Kind tags a payload value.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindDate   Kind = "date"
	KindList   Kind = "list"
	KindAbsent Kind = "absent"
)

// Value is one tagged payload value. Exactly the field matching Kind is
// meaningful.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Date time.Time
	List []Value
}

// Payload maps a dotted field path to its typed value.
type Payload map[string]Value

// Absent is the value a field has on the side it is missing from.
var Absent = Value{Kind: KindAbsent}

// ParsePayload converts a raw extraction payload into a typed Payload.
// Nested objects flatten into dotted paths; ISO date strings become date
// values. A payload that is not a JSON object fails with
// model.ErrMalformedPayload.
func ParsePayload(raw json.RawMessage) (Payload, error) {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedPayload, err)
	}

	out := Payload{}
	flatten("", root, out)
	return out, nil
}

func flatten(prefix string, obj map[string]any, out Payload) {
	for key, v := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(path, nested, out)
			continue
		}
		out[path] = toValue(v)
	}
}

func toValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Absent
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case float64:
		return Value{Kind: KindNumber, Num: t}
	case string:
		if d, ok := parseDate(t); ok {
			return Value{Kind: KindDate, Date: d}
		}
		return Value{Kind: KindString, Str: t}
	case []any:
		list := make([]Value, 0, len(t))
		for _, el := range t {
			list = append(list, toValue(el))
		}
		return Value{Kind: KindList, List: list}
	default:
		// Objects inside lists land here; compare them by their
		// canonical JSON rendering.
		b, err := json.Marshal(t)
		if err != nil {
			return Value{Kind: KindString, Str: fmt.Sprintf("%v", t)}
		}
		return Value{Kind: KindString, Str: string(b)}
	}
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// Equal reports structural equality: exact for scalars, instant-based
// for dates, order-insensitive for lists.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindNumber:
		return v.Num == other.Num
	case KindBool:
		return v.Bool == other.Bool
	case KindDate:
		return v.Date.Equal(other.Date)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		a := renderedSorted(v.List)
		b := renderedSorted(other.List)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	case KindAbsent:
		return true
	}
	return false
}

func renderedSorted(list []Value) []string {
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = v.Render()
	}
	sort.Strings(out)
	return out
}

// Render produces the human-readable form stored on Diff records. An
// absent value renders empty.
func (v Value) Render() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		if v.Date.Hour() == 0 && v.Date.Minute() == 0 && v.Date.Second() == 0 {
			return v.Date.Format("2006-01-02")
		}
		return v.Date.Format(time.RFC3339)
	case KindList:
		parts := make([]string, len(v.List))
		for i, el := range v.List {
			parts[i] = el.Render()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return ""
}
