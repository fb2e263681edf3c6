// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"fmt"
	"strings"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// DefaultMaxDepth is the nesting limit used when Renderer.MaxDepth is zero.
const DefaultMaxDepth = 32

// Generated xdr enum names repeat the type name before the constant name,
// e.g. ScSpecTypeScSpecTypeBytesN.
const (
	specTypePrefix        = "ScSpecType"
	specTypeDoubledPrefix = specTypePrefix + specTypePrefix
)

// primitiveTokens is the rendered vocabulary callers key input widgets and
// argument conversion on. It must stay stable.
var primitiveTokens = map[xdr.ScSpecType]string{
	xdr.ScSpecTypeScSpecTypeU32:       "u32",
	xdr.ScSpecTypeScSpecTypeI32:       "i32",
	xdr.ScSpecTypeScSpecTypeU64:       "u64",
	xdr.ScSpecTypeScSpecTypeI64:       "i64",
	xdr.ScSpecTypeScSpecTypeU128:      "u128",
	xdr.ScSpecTypeScSpecTypeI128:      "i128",
	xdr.ScSpecTypeScSpecTypeU256:      "u256",
	xdr.ScSpecTypeScSpecTypeI256:      "i256",
	xdr.ScSpecTypeScSpecTypeBool:      "bool",
	xdr.ScSpecTypeScSpecTypeVoid:      "void",
	xdr.ScSpecTypeScSpecTypeSymbol:    "symbol",
	xdr.ScSpecTypeScSpecTypeString:    "string",
	xdr.ScSpecTypeScSpecTypeBytes:     "bytes",
	xdr.ScSpecTypeScSpecTypeAddress:   "address",
	xdr.ScSpecTypeScSpecTypeTimepoint: "timepoint",
}

// Renderer turns type descriptors into canonical signature strings.
type Renderer struct {
	// MaxDepth bounds type nesting; zero means DefaultMaxDepth.
	MaxDepth int
	// OnFallback, when set, receives every token produced by the generic
	// strip-and-lowercase rule.
	OnFallback func(token string)
}

// Render renders t with the default Renderer.
func Render(t TypeDescriptor, entries []SpecEntry) (string, error) {
	return Renderer{}.Render(t, entries)
}

// Render renders t, inlining the fields of any struct in entries that t
// references by name.
func (r Renderer) Render(t TypeDescriptor, entries []SpecEntry) (string, error) {
	return r.bind(entries).render(t, 1)
}

// boundRenderer holds the struct index for one entry set plus the names of
// the structs currently being inlined.
type boundRenderer struct {
	Renderer
	limit    int
	structs  map[string]StructEntry
	inlining map[string]bool
}

func (r Renderer) bind(entries []SpecEntry) *boundRenderer {
	limit := r.MaxDepth
	if limit <= 0 {
		limit = DefaultMaxDepth
	}

	structs := make(map[string]StructEntry)
	for _, e := range entries {
		s, ok := e.(StructEntry)
		if !ok {
			continue
		}
		if _, dup := structs[s.Name]; !dup {
			structs[s.Name] = s
		}
	}

	return &boundRenderer{
		Renderer: r,
		limit:    limit,
		structs:  structs,
		inlining: make(map[string]bool),
	}
}

func (b *boundRenderer) render(t TypeDescriptor, depth int) (string, error) {
	if depth > b.limit {
		return "", errors.WrapTypeTooDeep(b.limit)
	}
	next := depth + 1

	switch v := t.(type) {
	case Primitive:
		if tok, ok := primitiveTokens[v.Tag]; ok {
			return tok, nil
		}
		return b.fallback(v.Tag), nil

	case BytesN:
		return b.fallback(xdr.ScSpecTypeScSpecTypeBytesN), nil

	case Vec:
		inner, err := b.render(v.Elem, next)
		if err != nil {
			return "", err
		}
		return "vec<" + inner + ">", nil

	case Option:
		inner, err := b.render(v.Inner, next)
		if err != nil {
			return "", err
		}
		return "optional<" + inner + ">", nil

	case Map:
		key, err := b.render(v.Key, next)
		if err != nil {
			return "", err
		}
		val, err := b.render(v.Value, next)
		if err != nil {
			return "", err
		}
		return "map<" + key + "," + val + ">", nil

	case Tuple:
		parts, err := b.renderAll(v.Elems, next)
		if err != nil {
			return "", err
		}
		return "tuple<" + strings.Join(parts, ",") + ">", nil

	case Result:
		ok, err := b.renderOrVoid(v.Ok, next)
		if err != nil {
			return "", err
		}
		errType, err := b.renderOrVoid(v.Err, next)
		if err != nil {
			return "", err
		}
		return "result<" + ok + "," + errType + ">", nil

	case UserDefined:
		s, ok := b.structs[v.Name]
		if !ok || b.inlining[v.Name] {
			return v.Name, nil
		}
		fields, err := b.fields(s, next)
		if err != nil {
			return "", err
		}
		parts := make([]string, len(fields))
		for i, f := range fields {
			parts[i] = f.Name + ": " + f.Type
		}
		return v.Name + "{" + strings.Join(parts, ", ") + "}", nil

	case nil:
		return "", fmt.Errorf("nil type descriptor")

	default:
		return "", fmt.Errorf("unsupported type descriptor %T", t)
	}
}

func (b *boundRenderer) renderAll(ts []TypeDescriptor, depth int) ([]string, error) {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		s, err := b.render(t, depth)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return parts, nil
}

func (b *boundRenderer) renderOrVoid(t TypeDescriptor, depth int) (string, error) {
	if t == nil {
		return "void", nil
	}
	return b.render(t, depth)
}

// fields renders a struct's fields in declared order. The struct is marked
// as being inlined so a self reference renders as its bare name.
func (b *boundRenderer) fields(s StructEntry, depth int) ([]FieldSignature, error) {
	b.inlining[s.Name] = true
	defer delete(b.inlining, s.Name)

	out := make([]FieldSignature, 0, len(s.Fields))
	for _, f := range s.Fields {
		typ, err := b.render(f.Type, depth)
		if err != nil {
			return nil, err
		}
		out = append(out, FieldSignature{Name: f.Name, Type: typ, Doc: f.Doc})
	}
	return out, nil
}

func (b *boundRenderer) fallback(tag xdr.ScSpecType) string {
	token := FallbackToken(tag)
	if b.OnFallback != nil {
		b.OnFallback(token)
	}
	return token
}

// FallbackToken strips the ScSpecType prefix from the tag's name and
// lowercases the rest, e.g. SC_SPEC_TYPE_MUXED_ADDRESS becomes
// "muxedaddress". Tags with no known name render as "type<n>".
func FallbackToken(tag xdr.ScSpecType) string {
	name := tag.String()
	if trimmed, ok := strings.CutPrefix(name, specTypeDoubledPrefix); ok {
		name = trimmed
	} else {
		name = strings.TrimPrefix(name, specTypePrefix)
	}
	if name == "" {
		name = fmt.Sprintf("type%d", int32(tag))
	}
	return strings.ToLower(name)
}
