// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"testing"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_PrimitiveTable(t *testing.T) {
	tests := []struct {
		tag  xdr.ScSpecType
		want string
	}{
		{xdr.ScSpecTypeScSpecTypeU32, "u32"},
		{xdr.ScSpecTypeScSpecTypeI32, "i32"},
		{xdr.ScSpecTypeScSpecTypeU64, "u64"},
		{xdr.ScSpecTypeScSpecTypeI64, "i64"},
		{xdr.ScSpecTypeScSpecTypeU128, "u128"},
		{xdr.ScSpecTypeScSpecTypeI128, "i128"},
		{xdr.ScSpecTypeScSpecTypeU256, "u256"},
		{xdr.ScSpecTypeScSpecTypeI256, "i256"},
		{xdr.ScSpecTypeScSpecTypeBool, "bool"},
		{xdr.ScSpecTypeScSpecTypeVoid, "void"},
		{xdr.ScSpecTypeScSpecTypeSymbol, "symbol"},
		{xdr.ScSpecTypeScSpecTypeString, "string"},
		{xdr.ScSpecTypeScSpecTypeBytes, "bytes"},
		{xdr.ScSpecTypeScSpecTypeAddress, "address"},
		{xdr.ScSpecTypeScSpecTypeTimepoint, "timepoint"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := Render(Primitive{Tag: tt.tag}, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_Composites(t *testing.T) {
	tests := []struct {
		name string
		in   TypeDescriptor
		want string
	}{
		{"vec of map", Vec{Elem: Map{Key: address(), Value: i128()}}, "vec<map<address,i128>>"},
		{"optional", Option{Inner: u32()}, "optional<u32>"},
		{"tuple", Tuple{Elems: []TypeDescriptor{address(), i128(), u32()}}, "tuple<address,i128,u32>"},
		{"empty tuple", Tuple{}, "tuple<>"},
		{"result", Result{Ok: u32(), Err: UserDefined{Name: "Error"}}, "result<u32,Error>"},
		{"result missing ok", Result{Err: u32()}, "result<void,u32>"},
		{"result missing both", Result{}, "result<void,void>"},
		{"bare udt", UserDefined{Name: "DataKey"}, "DataKey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.in, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_StructInlining(t *testing.T) {
	entries := []SpecEntry{
		StructEntry{Name: "Point", Fields: []Field{{Name: "x", Type: u32()}, {Name: "y", Type: u32()}}},
	}

	got, err := Render(UserDefined{Name: "Point"}, entries)
	require.NoError(t, err)
	assert.Equal(t, "Point{x: u32, y: u32}", got)

	got, err = Render(Vec{Elem: UserDefined{Name: "Point"}}, entries)
	require.NoError(t, err)
	assert.Equal(t, "vec<Point{x: u32, y: u32}>", got)
}

func TestRender_NestedStructs(t *testing.T) {
	entries := []SpecEntry{
		StructEntry{Name: "Point", Fields: []Field{{Name: "x", Type: u32()}, {Name: "y", Type: u32()}}},
		StructEntry{Name: "Line", Fields: []Field{
			{Name: "from", Type: UserDefined{Name: "Point"}},
			{Name: "to", Type: UserDefined{Name: "Point"}},
		}},
	}

	got, err := Render(UserDefined{Name: "Line"}, entries)
	require.NoError(t, err)
	assert.Equal(t, "Line{from: Point{x: u32, y: u32}, to: Point{x: u32, y: u32}}", got)
}

func TestRender_EmptyStruct(t *testing.T) {
	entries := []SpecEntry{StructEntry{Name: "Unit"}}

	got, err := Render(UserDefined{Name: "Unit"}, entries)
	require.NoError(t, err)
	assert.Equal(t, "Unit{}", got)
}

func TestRender_SelfReferentialStruct(t *testing.T) {
	entries := []SpecEntry{
		StructEntry{Name: "Node", Fields: []Field{
			{Name: "value", Type: u32()},
			{Name: "next", Type: Option{Inner: UserDefined{Name: "Node"}}},
		}},
	}

	got, err := Render(UserDefined{Name: "Node"}, entries)
	require.NoError(t, err)
	assert.Equal(t, "Node{value: u32, next: optional<Node>}", got)
}

func TestRender_EnumAndUnionRenderBare(t *testing.T) {
	entries := []SpecEntry{
		EnumEntry{Name: "Status"},
		UnionEntry{Name: "DataKey"},
	}

	got, err := Render(Tuple{Elems: []TypeDescriptor{UserDefined{Name: "Status"}, UserDefined{Name: "DataKey"}}}, entries)
	require.NoError(t, err)
	assert.Equal(t, "tuple<Status,DataKey>", got)
}

func TestRender_Fallback(t *testing.T) {
	var seen []string
	r := Renderer{OnFallback: func(token string) { seen = append(seen, token) }}

	got, err := r.Render(Primitive{Tag: xdr.ScSpecTypeScSpecTypeDuration}, nil)
	require.NoError(t, err)
	assert.Equal(t, "duration", got)

	got, err = r.Render(Primitive{Tag: xdr.ScSpecTypeScSpecTypeMuxedAddress}, nil)
	require.NoError(t, err)
	assert.Equal(t, "muxedaddress", got)

	got, err = r.Render(BytesN{N: 32}, nil)
	require.NoError(t, err)
	assert.Equal(t, "bytesn", got)

	assert.Equal(t, []string{"duration", "muxedaddress", "bytesn"}, seen)
}

func TestFallbackToken_StripsGeneratedPrefix(t *testing.T) {
	assert.Equal(t, "ScSpecTypeScSpecTypeMuxedAddress", xdr.ScSpecTypeScSpecTypeMuxedAddress.String())
	assert.Equal(t, "muxedaddress", FallbackToken(xdr.ScSpecTypeScSpecTypeMuxedAddress))
	assert.Equal(t, "bytesn", FallbackToken(xdr.ScSpecTypeScSpecTypeBytesN))

	got, err := Render(Vec{Elem: Primitive{Tag: xdr.ScSpecTypeScSpecTypeMuxedAddress}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "vec<muxedaddress>", got)
}

func TestFallbackToken_UnknownTag(t *testing.T) {
	assert.Equal(t, "type9999", FallbackToken(xdr.ScSpecType(9999)))
}

func TestRender_DepthGuard(t *testing.T) {
	nest := func(n int) TypeDescriptor {
		var td TypeDescriptor = u32()
		for i := 0; i < n; i++ {
			td = Vec{Elem: td}
		}
		return td
	}

	// 31 vecs plus the leaf is exactly 32 levels
	_, err := Render(nest(DefaultMaxDepth-1), nil)
	require.NoError(t, err)

	_, err = Render(nest(DefaultMaxDepth), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrTypeTooDeep))

	_, err = Renderer{MaxDepth: 4}.Render(nest(4), nil)
	assert.True(t, errors.Is(err, errors.ErrTypeTooDeep))
}

func TestRender_DepthGuardCountsInlinedFields(t *testing.T) {
	entries := []SpecEntry{
		StructEntry{Name: "Wrap", Fields: []Field{{Name: "inner", Type: Vec{Elem: u32()}}}},
	}

	got, err := Renderer{MaxDepth: 3}.Render(UserDefined{Name: "Wrap"}, entries)
	require.NoError(t, err)
	assert.Equal(t, "Wrap{inner: vec<u32>}", got)

	_, err = Renderer{MaxDepth: 2}.Render(UserDefined{Name: "Wrap"}, entries)
	assert.True(t, errors.Is(err, errors.ErrTypeTooDeep))
}

func TestRender_NilDescriptor(t *testing.T) {
	_, err := Render(Vec{}, nil)
	require.Error(t, err)
}
