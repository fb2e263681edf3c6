// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"fmt"
	"sort"
)

// Decode builds the full interface description of a contract from its spec
// entries. Any rendering failure fails the whole decode.
func Decode(entries []SpecEntry) (*ContractInterface, error) {
	return Renderer{}.Decode(entries)
}

// Decode is Decode with this renderer's depth limit and fallback hook.
func (r Renderer) Decode(entries []SpecEntry) (*ContractInterface, error) {
	b := r.bind(entries)

	functions, err := b.functions(entries)
	if err != nil {
		return nil, err
	}
	enums := decodeEnums(entries)
	unions, err := b.unions(entries)
	if err != nil {
		return nil, err
	}
	structs, err := b.structList(entries)
	if err != nil {
		return nil, err
	}
	events, err := b.events(entries)
	if err != nil {
		return nil, err
	}

	return &ContractInterface{
		Functions: functions,
		Enums:     enums,
		Unions:    unions,
		Structs:   structs,
		Events:    events,
	}, nil
}

// DecodeFunctions returns every function with rendered parameter types,
// sorted by name in code-point order. Parameter order is preserved.
func DecodeFunctions(entries []SpecEntry) ([]FunctionSignature, error) {
	return Renderer{}.bind(entries).functions(entries)
}

// DecodeEnums returns plain and error enums in declaration order.
func DecodeEnums(entries []SpecEntry) []EnumSignature {
	return decodeEnums(entries)
}

// DecodeUnions returns unions in declaration order. Tuple cases render as
// tuple<...>; void cases carry no type.
func DecodeUnions(entries []SpecEntry) ([]UnionSignature, error) {
	return Renderer{}.bind(entries).unions(entries)
}

// DecodeStructs returns structs in declaration order with rendered fields.
func DecodeStructs(entries []SpecEntry) ([]StructSignature, error) {
	return Renderer{}.bind(entries).structList(entries)
}

// DecodeEvents returns events in declaration order.
func DecodeEvents(entries []SpecEntry) ([]EventSignature, error) {
	return Renderer{}.bind(entries).events(entries)
}

// DecodeUdtFields renders the fields of s against allEntries. A struct with
// no fields yields an empty slice.
func DecodeUdtFields(s StructEntry, allEntries []SpecEntry) ([]FieldSignature, error) {
	b := Renderer{}.bind(allEntries)
	return b.fields(s, 1)
}

func (b *boundRenderer) functions(entries []SpecEntry) ([]FunctionSignature, error) {
	out := []FunctionSignature{}
	for _, e := range entries {
		fn, ok := e.(FunctionEntry)
		if !ok {
			continue
		}

		sig := FunctionSignature{
			Name:       fn.Name,
			Doc:        fn.Doc,
			Parameters: make([]Parameter, 0, len(fn.Params)),
		}
		for _, p := range fn.Params {
			typ, err := b.render(p.Type, 1)
			if err != nil {
				return nil, fmt.Errorf("function %s: parameter %s: %w", fn.Name, p.Name, err)
			}
			sig.Parameters = append(sig.Parameters, Parameter{Name: p.Name, Type: typ})
		}
		for i, o := range fn.Outputs {
			typ, err := b.render(o, 1)
			if err != nil {
				return nil, fmt.Errorf("function %s: output %d: %w", fn.Name, i, err)
			}
			sig.Outputs = append(sig.Outputs, typ)
		}
		out = append(out, sig)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func decodeEnums(entries []SpecEntry) []EnumSignature {
	out := []EnumSignature{}
	for _, e := range entries {
		en, ok := e.(EnumEntry)
		if !ok {
			continue
		}

		sig := EnumSignature{
			Name:        en.Name,
			Doc:         en.Doc,
			IsErrorEnum: en.IsErrorEnum,
			Variants:    make([]EnumVariantSignature, 0, len(en.Variants)),
		}
		for _, v := range en.Variants {
			sig.Variants = append(sig.Variants, EnumVariantSignature{Name: v.Name, Value: v.Value, Doc: v.Doc})
		}
		out = append(out, sig)
	}
	return out
}

func (b *boundRenderer) unions(entries []SpecEntry) ([]UnionSignature, error) {
	out := []UnionSignature{}
	for _, e := range entries {
		u, ok := e.(UnionEntry)
		if !ok {
			continue
		}

		sig := UnionSignature{
			Name:  u.Name,
			Doc:   u.Doc,
			Cases: make([]UnionCaseSignature, 0, len(u.Cases)),
		}
		for _, c := range u.Cases {
			cs := UnionCaseSignature{Name: c.Name, Doc: c.Doc}
			if !c.Void && len(c.Types) > 0 {
				typ, err := b.render(Tuple{Elems: c.Types}, 1)
				if err != nil {
					return nil, fmt.Errorf("union %s: case %s: %w", u.Name, c.Name, err)
				}
				cs.Type = typ
			}
			sig.Cases = append(sig.Cases, cs)
		}
		out = append(out, sig)
	}
	return out, nil
}

func (b *boundRenderer) structList(entries []SpecEntry) ([]StructSignature, error) {
	var out []StructSignature
	for _, e := range entries {
		s, ok := e.(StructEntry)
		if !ok {
			continue
		}
		fields, err := b.fields(s, 1)
		if err != nil {
			return nil, fmt.Errorf("struct %s: %w", s.Name, err)
		}
		out = append(out, StructSignature{Name: s.Name, Doc: s.Doc, Fields: fields})
	}
	return out, nil
}

func (b *boundRenderer) events(entries []SpecEntry) ([]EventSignature, error) {
	var out []EventSignature
	for _, e := range entries {
		ev, ok := e.(EventEntry)
		if !ok {
			continue
		}

		sig := EventSignature{Name: ev.Name, Doc: ev.Doc, Params: make([]EventParamSignature, 0, len(ev.Params))}
		for _, p := range ev.Params {
			typ, err := b.render(p.Type, 1)
			if err != nil {
				return nil, fmt.Errorf("event %s: param %s: %w", ev.Name, p.Name, err)
			}
			sig.Params = append(sig.Params, EventParamSignature{Name: p.Name, Type: typ, Location: p.Location})
		}
		out = append(out, sig)
	}
	return out, nil
}
