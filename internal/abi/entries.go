// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// MaxWireDepth bounds recursion while converting XDR type definitions.
const MaxWireDepth = 256

// DecodeSpecEntries reads concatenated XDR-encoded ScSpecEntry values, as
// stored in the contractspecv0 custom section.
func DecodeSpecEntries(data []byte) ([]xdr.ScSpecEntry, error) {
	var entries []xdr.ScSpecEntry
	reader := bytes.NewReader(data)

	for reader.Len() > 0 {
		var entry xdr.ScSpecEntry
		if _, err := xdr.Unmarshal(reader, &entry); err != nil {
			return nil, fmt.Errorf("decoding spec entry %d: %w", len(entries), err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ParseEntries decodes a contractspecv0 payload straight into SpecEntry
// values.
func ParseEntries(data []byte) ([]SpecEntry, error) {
	raw, err := DecodeSpecEntries(data)
	if err != nil {
		return nil, err
	}
	return FromXDR(raw)
}

// FromXDR converts wire entries into SpecEntry values. The first malformed
// entry aborts the conversion with a *errors.MalformedEntryError.
func FromXDR(raw []xdr.ScSpecEntry) ([]SpecEntry, error) {
	entries := make([]SpecEntry, 0, len(raw))
	for i, e := range raw {
		entry, err := entryFromXDR(i, e)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func entryFromXDR(i int, e xdr.ScSpecEntry) (SpecEntry, error) {
	switch e.Kind {
	case xdr.ScSpecEntryKindScSpecEntryFunctionV0:
		return functionFromXDR(i, e.FunctionV0)
	case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
		return structFromXDR(i, e.UdtStructV0)
	case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
		return unionFromXDR(i, e.UdtUnionV0)
	case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
		return enumFromXDR(i, e.UdtEnumV0)
	case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
		return errorEnumFromXDR(i, e.UdtErrorEnumV0)
	case xdr.ScSpecEntryKindScSpecEntryEventV0:
		return eventFromXDR(i, e.EventV0)
	default:
		return OtherEntry{Kind: e.Kind}, nil
	}
}

func checkName(i int, kind, name string) error {
	if name == "" {
		return errors.WrapMalformedEntry(i, kind, "", "missing name", nil)
	}
	if !utf8.ValidString(name) {
		return errors.WrapMalformedEntry(i, kind, "", "name is not valid UTF-8", nil)
	}
	return nil
}

func functionFromXDR(i int, fn *xdr.ScSpecFunctionV0) (SpecEntry, error) {
	const kind = "function"
	if fn == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing function body", nil)
	}
	name := string(fn.Name)
	if err := checkName(i, kind, name); err != nil {
		return nil, err
	}

	out := FunctionEntry{
		Name:   name,
		Doc:    fn.Doc,
		Params: make([]Param, 0, len(fn.Inputs)),
	}
	for j, in := range fn.Inputs {
		t, err := typeFromXDR(in.Type, 0)
		if err != nil {
			return nil, errors.WrapMalformedEntry(i, kind, name, fmt.Sprintf("input %d (%s)", j, in.Name), err)
		}
		out.Params = append(out.Params, Param{Name: in.Name, Doc: in.Doc, Type: t})
	}
	for j, o := range fn.Outputs {
		t, err := typeFromXDR(o, 0)
		if err != nil {
			return nil, errors.WrapMalformedEntry(i, kind, name, fmt.Sprintf("output %d", j), err)
		}
		out.Outputs = append(out.Outputs, t)
	}
	return out, nil
}

func structFromXDR(i int, s *xdr.ScSpecUdtStructV0) (SpecEntry, error) {
	const kind = "struct"
	if s == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing struct body", nil)
	}
	if err := checkName(i, kind, s.Name); err != nil {
		return nil, err
	}

	out := StructEntry{Name: s.Name, Doc: s.Doc, Lib: s.Lib}
	for j, f := range s.Fields {
		t, err := typeFromXDR(f.Type, 0)
		if err != nil {
			return nil, errors.WrapMalformedEntry(i, kind, s.Name, fmt.Sprintf("field %d (%s)", j, f.Name), err)
		}
		out.Fields = append(out.Fields, Field{Name: f.Name, Doc: f.Doc, Type: t})
	}
	return out, nil
}

func unionFromXDR(i int, u *xdr.ScSpecUdtUnionV0) (SpecEntry, error) {
	const kind = "union"
	if u == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing union body", nil)
	}
	if err := checkName(i, kind, u.Name); err != nil {
		return nil, err
	}

	out := UnionEntry{Name: u.Name, Doc: u.Doc, Lib: u.Lib}
	for j, c := range u.Cases {
		switch c.Kind {
		case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseVoidV0:
			if c.VoidCase == nil {
				return nil, errors.WrapMalformedEntry(i, kind, u.Name, fmt.Sprintf("case %d has no void body", j), nil)
			}
			out.Cases = append(out.Cases, UnionCase{Name: c.VoidCase.Name, Doc: c.VoidCase.Doc, Void: true})
		case xdr.ScSpecUdtUnionCaseV0KindScSpecUdtUnionCaseTupleV0:
			if c.TupleCase == nil {
				return nil, errors.WrapMalformedEntry(i, kind, u.Name, fmt.Sprintf("case %d has no tuple body", j), nil)
			}
			uc := UnionCase{Name: c.TupleCase.Name, Doc: c.TupleCase.Doc}
			for k, td := range c.TupleCase.Type {
				t, err := typeFromXDR(td, 0)
				if err != nil {
					return nil, errors.WrapMalformedEntry(i, kind, u.Name, fmt.Sprintf("case %d (%s) type %d", j, c.TupleCase.Name, k), err)
				}
				uc.Types = append(uc.Types, t)
			}
			out.Cases = append(out.Cases, uc)
		default:
			// Unknown case kinds keep their position with no payload type.
			out.Cases = append(out.Cases, UnionCase{})
		}
	}
	return out, nil
}

func enumFromXDR(i int, e *xdr.ScSpecUdtEnumV0) (SpecEntry, error) {
	const kind = "enum"
	if e == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing enum body", nil)
	}
	if err := checkName(i, kind, e.Name); err != nil {
		return nil, err
	}

	out := EnumEntry{Name: e.Name, Doc: e.Doc, Lib: e.Lib}
	for _, c := range e.Cases {
		out.Variants = append(out.Variants, EnumVariant{Name: c.Name, Value: uint32(c.Value), Doc: c.Doc})
	}
	return out, nil
}

func errorEnumFromXDR(i int, e *xdr.ScSpecUdtErrorEnumV0) (SpecEntry, error) {
	const kind = "error_enum"
	if e == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing error enum body", nil)
	}
	if err := checkName(i, kind, e.Name); err != nil {
		return nil, err
	}

	out := EnumEntry{Name: e.Name, Doc: e.Doc, Lib: e.Lib, IsErrorEnum: true}
	for _, c := range e.Cases {
		out.Variants = append(out.Variants, EnumVariant{Name: c.Name, Value: uint32(c.Value), Doc: c.Doc})
	}
	return out, nil
}

func eventFromXDR(i int, ev *xdr.ScSpecEventV0) (SpecEntry, error) {
	const kind = "event"
	if ev == nil {
		return nil, errors.WrapMalformedEntry(i, kind, "", "missing event body", nil)
	}
	name := string(ev.Name)
	if err := checkName(i, kind, name); err != nil {
		return nil, err
	}

	out := EventEntry{Name: name, Doc: ev.Doc}
	for j, p := range ev.Params {
		t, err := typeFromXDR(p.Type, 0)
		if err != nil {
			return nil, errors.WrapMalformedEntry(i, kind, name, fmt.Sprintf("param %d (%s)", j, p.Name), err)
		}
		loc := "data"
		if p.Location == xdr.ScSpecEventParamLocationV0ScSpecEventParamLocationTopicList {
			loc = "topic"
		}
		out.Params = append(out.Params, EventParam{Name: p.Name, Doc: p.Doc, Type: t, Location: loc})
	}
	return out, nil
}

// TypeFromXDR converts a single wire type definition.
func TypeFromXDR(td xdr.ScSpecTypeDef) (TypeDescriptor, error) {
	return typeFromXDR(td, 0)
}

// typeFromXDR converts a wire type definition. Composite tags with a nil
// arm are rejected, except Result whose sides render as void.
func typeFromXDR(td xdr.ScSpecTypeDef, depth int) (TypeDescriptor, error) {
	if depth >= MaxWireDepth {
		return nil, errors.WrapTypeTooDeep(MaxWireDepth)
	}
	next := depth + 1

	switch td.Type {
	case xdr.ScSpecTypeScSpecTypeVec:
		if td.Vec == nil {
			return nil, fmt.Errorf("vec type without element type")
		}
		elem, err := typeFromXDR(td.Vec.ElementType, next)
		if err != nil {
			return nil, err
		}
		return Vec{Elem: elem}, nil

	case xdr.ScSpecTypeScSpecTypeOption:
		if td.Option == nil {
			return nil, fmt.Errorf("option type without value type")
		}
		inner, err := typeFromXDR(td.Option.ValueType, next)
		if err != nil {
			return nil, err
		}
		return Option{Inner: inner}, nil

	case xdr.ScSpecTypeScSpecTypeMap:
		if td.Map == nil {
			return nil, fmt.Errorf("map type without key/value types")
		}
		key, err := typeFromXDR(td.Map.KeyType, next)
		if err != nil {
			return nil, err
		}
		val, err := typeFromXDR(td.Map.ValueType, next)
		if err != nil {
			return nil, err
		}
		return Map{Key: key, Value: val}, nil

	case xdr.ScSpecTypeScSpecTypeTuple:
		if td.Tuple == nil {
			return nil, fmt.Errorf("tuple type without value types")
		}
		elems := make([]TypeDescriptor, 0, len(td.Tuple.ValueTypes))
		for _, vt := range td.Tuple.ValueTypes {
			t, err := typeFromXDR(vt, next)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return Tuple{Elems: elems}, nil

	case xdr.ScSpecTypeScSpecTypeResult:
		if td.Result == nil {
			return Result{}, nil
		}
		ok, err := typeFromXDR(td.Result.OkType, next)
		if err != nil {
			return nil, err
		}
		errType, err := typeFromXDR(td.Result.ErrorType, next)
		if err != nil {
			return nil, err
		}
		return Result{Ok: ok, Err: errType}, nil

	case xdr.ScSpecTypeScSpecTypeBytesN:
		if td.BytesN == nil {
			return nil, fmt.Errorf("bytesN type without length")
		}
		return BytesN{N: uint32(td.BytesN.N)}, nil

	case xdr.ScSpecTypeScSpecTypeUdt:
		if td.Udt == nil || td.Udt.Name == "" {
			return nil, fmt.Errorf("user-defined type without name")
		}
		return UserDefined{Name: td.Udt.Name}, nil

	default:
		return Primitive{Tag: td.Type}, nil
	}
}
