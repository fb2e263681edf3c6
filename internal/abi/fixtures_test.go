// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"testing"

	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/require"
)

func marshalEntries(t *testing.T, entries ...xdr.ScSpecEntry) []byte {
	t.Helper()
	var out []byte
	for _, e := range entries {
		b, err := e.MarshalBinary()
		require.NoError(t, err)
		out = append(out, b...)
	}
	return out
}

func marshalMeta(t *testing.T, kv ...string) []byte {
	t.Helper()
	var out []byte
	for i := 0; i+1 < len(kv); i += 2 {
		entry := xdr.ScMetaEntry{
			Kind: xdr.ScMetaKindScMetaV0,
			V0:   &xdr.ScMetaV0{Key: kv[i], Val: kv[i+1]},
		}
		b, err := entry.MarshalBinary()
		require.NoError(t, err)
		out = append(out, b...)
	}
	return out
}

func marshalEnvMeta(t *testing.T, protocol, preRelease uint32) []byte {
	t.Helper()
	entry := xdr.ScEnvMetaEntry{
		Kind: xdr.ScEnvMetaKindScEnvMetaKindInterfaceVersion,
		InterfaceVersion: &xdr.ScEnvMetaEntryInterfaceVersion{
			Protocol:   xdr.Uint32(protocol),
			PreRelease: xdr.Uint32(preRelease),
		},
	}
	b, err := entry.MarshalBinary()
	require.NoError(t, err)
	return b
}

func simple(tag xdr.ScSpecType) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{Type: tag}
}

func udt(name string) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{Type: xdr.ScSpecTypeScSpecTypeUdt, Udt: &xdr.ScSpecTypeUdt{Name: name}}
}

func vecOf(elem xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{Type: xdr.ScSpecTypeScSpecTypeVec, Vec: &xdr.ScSpecTypeVec{ElementType: elem}}
}

func input(name string, td xdr.ScSpecTypeDef) xdr.ScSpecFunctionInputV0 {
	return xdr.ScSpecFunctionInputV0{Name: name, Type: td}
}

func fnEntry(name string, inputs ...xdr.ScSpecFunctionInputV0) xdr.ScSpecEntry {
	return xdr.ScSpecEntry{
		Kind: xdr.ScSpecEntryKindScSpecEntryFunctionV0,
		FunctionV0: &xdr.ScSpecFunctionV0{
			Name:   xdr.ScSymbol(name),
			Inputs: inputs,
		},
	}
}

func structEntry(name string, fields ...xdr.ScSpecUdtStructFieldV0) xdr.ScSpecEntry {
	return xdr.ScSpecEntry{
		Kind:        xdr.ScSpecEntryKindScSpecEntryUdtStructV0,
		UdtStructV0: &xdr.ScSpecUdtStructV0{Name: name, Fields: fields},
	}
}

func u32() TypeDescriptor     { return Primitive{Tag: xdr.ScSpecTypeScSpecTypeU32} }
func i128() TypeDescriptor    { return Primitive{Tag: xdr.ScSpecTypeScSpecTypeI128} }
func address() TypeDescriptor { return Primitive{Tag: xdr.ScSpecTypeScSpecTypeAddress} }
