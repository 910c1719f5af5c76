package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind discriminates the property value union.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindList
)

// Value is a tagged property value. Exactly one payload field is
// meaningful, selected by Kind. Each kind carries its own merge rule in
// the fusion engines.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	List []string
}

func String(s string) Value      { return Value{Kind: KindString, Str: s} }
func Number(n float64) Value     { return Value{Kind: KindNumber, Num: n} }
func Boolean(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func List(items ...string) Value { return Value{Kind: KindList, List: items} }

// Properties maps a property key to its tagged value.
type Properties map[string]Value

// Equal compares kind and payload. Lists compare element-wise in order.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	}
	return false
}

// Text renders the value for frequency voting, where values of different
// kinds are compared by their textual form.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindList:
		return "[" + strings.Join(v.List, ",") + "]"
	}
	return ""
}

// MarshalJSON emits the native JSON form: string, number, bool or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindList:
		if v.List == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.List)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.Kind)
}

// UnmarshalJSON infers the kind from the JSON form. Array elements that
// are not strings are kept via their textual rendering.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case string:
		*v = String(x)
	case float64:
		*v = Number(x)
	case bool:
		*v = Boolean(x)
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				items = append(items, s)
			} else {
				items = append(items, fmt.Sprintf("%v", item))
			}
		}
		*v = List(items...)
	default:
		return fmt.Errorf("unsupported property value %s", string(data))
	}
	return nil
}

// Clone returns a copy that shares no mutable state with the receiver.
func (v Value) Clone() Value {
	if v.Kind == KindList && v.List != nil {
		items := make([]string, len(v.List))
		copy(items, v.List)
		v.List = items
	}
	return v
}

// Clone deep-copies the property map.
func (p Properties) Clone() Properties {
	if p == nil {
		return Properties{}
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v.Clone()
	}
	return out
}
