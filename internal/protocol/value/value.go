// Package value defines the tagged application payload carried across the
// stream engine, and a deterministic byte serializer for it. The engine
// treats the serializer as opaque (spec out-of-scope collaborator), but a
// concrete implementation is required for the checksum contract to mean
// anything end to end, so this package ships one: canonical JSON over a
// small tagged sum type.
package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind tags which field of Value is populated.
type Kind uint8

const (
	Null Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	BytesKind
	ListKind
	MapKind
)

// Value is a recursive tagged-sum tree: exactly the fields matching Kind
// are meaningful.
type Value struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Bytes []byte
	List  []Value
	Map   map[string]Value
}

func NewNull() Value                { return Value{Kind: Null} }
func NewBool(v bool) Value          { return Value{Kind: BoolKind, Bool: v} }
func NewInt(v int64) Value          { return Value{Kind: IntKind, Int: v} }
func NewFloat(v float64) Value      { return Value{Kind: FloatKind, Float: v} }
func NewString(v string) Value      { return Value{Kind: StringKind, Str: v} }
func NewBytes(v []byte) Value       { return Value{Kind: BytesKind, Bytes: v} }
func NewList(v ...Value) Value      { return Value{Kind: ListKind, List: v} }
func NewMap(v map[string]Value) Value {
	return Value{Kind: MapKind, Map: v}
}

// Equal reports structural equality, matching the serializer's
// deserialize(serialize(v)) == v round-trip contract.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Null:
		return true
	case BoolKind:
		return a.Bool == b.Bool
	case IntKind:
		return a.Int == b.Int
	case FloatKind:
		return a.Float == b.Float
	case StringKind:
		return a.Str == b.Str
	case BytesKind:
		return bytes.Equal(a.Bytes, b.Bytes)
	case ListKind:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case MapKind:
		if len(a.Map) != len(b.Map) {
			return false
		}
		for k, av := range a.Map {
			bv, ok := b.Map[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// wireNode is the JSON-tagged shape Value marshals through. A one-letter
// type tag keeps the wire format compact relative to a self-describing
// schema, at the cost of readability — acceptable since nothing decodes
// this by hand.
type wireNode struct {
	T string      `json:"t"`
	V interface{} `json:"v,omitempty"`
}

// ErrUnsupportedKind is returned by Serialize for a Value with an
// unrecognized Kind tag.
var ErrUnsupportedKind = errors.New("value: unsupported kind")

// Serialize renders v as canonical JSON bytes: map entries are emitted as
// a list sorted by key (sort.Strings in toWire), which is sufficient for
// the XOR checksum to be a deterministic function of v.
func Serialize(v Value) ([]byte, error) {
	node, err := toWire(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(node)
}

// Deserialize parses bytes produced by Serialize back into a Value.
func Deserialize(data []byte) (Value, error) {
	var node wireNode
	if err := decodeNumberSafe(data, &node); err != nil {
		return Value{}, fmt.Errorf("value: decode: %w", err)
	}
	return fromWire(node)
}

// decodeNumberSafe decodes data with json.Number in effect for every
// interface{} field the target touches, including ones nested arbitrarily
// deep through List/Map wire nodes. Plain json.Unmarshal decodes numbers
// landing in an interface{} as float64, which can't represent the full
// int64 domain Value.Int declares; UseNumber keeps the original digits
// intact until a concrete int64 target parses them directly.
func decodeNumberSafe(data []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

func toWire(v Value) (wireNode, error) {
	switch v.Kind {
	case Null:
		return wireNode{T: "n"}, nil
	case BoolKind:
		return wireNode{T: "b", V: v.Bool}, nil
	case IntKind:
		return wireNode{T: "i", V: v.Int}, nil
	case FloatKind:
		return wireNode{T: "f", V: v.Float}, nil
	case StringKind:
		return wireNode{T: "s", V: v.Str}, nil
	case BytesKind:
		return wireNode{T: "y", V: v.Bytes}, nil
	case ListKind:
		items := make([]wireNode, len(v.List))
		for i, item := range v.List {
			wireItem, err := toWire(item)
			if err != nil {
				return wireNode{}, err
			}
			items[i] = wireItem
		}
		return wireNode{T: "l", V: items}, nil
	case MapKind:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]mapEntry, len(keys))
		for i, k := range keys {
			wireVal, err := toWire(v.Map[k])
			if err != nil {
				return wireNode{}, err
			}
			entries[i] = mapEntry{K: k, V: wireVal}
		}
		return wireNode{T: "m", V: entries}, nil
	default:
		return wireNode{}, ErrUnsupportedKind
	}
}

type mapEntry struct {
	K string   `json:"k"`
	V wireNode `json:"v"`
}

func fromWire(node wireNode) (Value, error) {
	switch node.T {
	case "n":
		return NewNull(), nil
	case "b":
		return decodeAs(node, func(b bool) Value { return NewBool(b) })
	case "i":
		raw, err := json.Marshal(node.V)
		if err != nil {
			return Value{}, err
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, err
		}
		return NewInt(n), nil
	case "f":
		return decodeAs(node, func(f float64) Value { return NewFloat(f) })
	case "s":
		return decodeAs(node, func(s string) Value { return NewString(s) })
	case "y":
		raw, err := json.Marshal(node.V)
		if err != nil {
			return Value{}, err
		}
		var b []byte
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, err
		}
		return NewBytes(b), nil
	case "l":
		raw, err := json.Marshal(node.V)
		if err != nil {
			return Value{}, err
		}
		var items []wireNode
		if err := decodeNumberSafe(raw, &items); err != nil {
			return Value{}, err
		}
		list := make([]Value, len(items))
		for i, item := range items {
			v, err := fromWire(item)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return NewList(list...), nil
	case "m":
		raw, err := json.Marshal(node.V)
		if err != nil {
			return Value{}, err
		}
		var entries []mapEntry
		if err := decodeNumberSafe(raw, &entries); err != nil {
			return Value{}, err
		}
		m := make(map[string]Value, len(entries))
		for _, e := range entries {
			v, err := fromWire(e.V)
			if err != nil {
				return Value{}, err
			}
			m[e.K] = v
		}
		return NewMap(m), nil
	default:
		return Value{}, fmt.Errorf("value: unknown wire tag %q", node.T)
	}
}

func decodeAs[T any](node wireNode, wrap func(T) Value) (Value, error) {
	raw, err := json.Marshal(node.V)
	if err != nil {
		return Value{}, err
	}
	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return Value{}, err
	}
	return wrap(t), nil
}
