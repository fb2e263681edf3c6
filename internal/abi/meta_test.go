// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContractMeta(t *testing.T) {
	data := marshalMeta(t,
		"rsver", "1.81.0",
		"rssdkver", "22.0.7#211569aa49c8d896877dfca1f2eb4fe9071121c8",
		"home_domain", "example.org",
	)

	meta, err := DecodeContractMeta(data)
	require.NoError(t, err)
	assert.Len(t, meta.Entries, 3)
	assert.Equal(t, "1.81.0", meta.RustVersion)
	assert.Equal(t, "22.0.7", meta.SDKVersion)
	assert.Equal(t, "211569aa49c8d896877dfca1f2eb4fe9071121c8", meta.SDKCommit)
	assert.Equal(t, MetaEntry{Key: "home_domain", Val: "example.org"}, meta.Entries[2])
}

func TestDecodeContractMeta_UnparsableVersion(t *testing.T) {
	meta, err := DecodeContractMeta(marshalMeta(t, "rssdkver", "not-a-version#abc"))
	require.NoError(t, err)
	assert.Empty(t, meta.SDKVersion)
	assert.Equal(t, "abc", meta.SDKCommit)
}

func TestDecodeContractMeta_Corrupt(t *testing.T) {
	_, err := DecodeContractMeta([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
}

func TestSDKAtLeast(t *testing.T) {
	meta := &ContractMeta{SDKVersion: "22.0.7"}

	ok, err := meta.SDKAtLeast("22.0.0")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = meta.SDKAtLeast("23.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = meta.SDKAtLeast("bogus")
	require.Error(t, err)

	var none *ContractMeta
	ok, err = none.SDKAtLeast("1.0.0")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadMeta(t *testing.T) {
	wasm := buildWasm(
		section{SectionMeta, marshalMeta(t, "rssdkver", "21.7.6")},
		section{SectionEnvMeta, marshalEnvMeta(t, 22, 0)},
	)

	meta, err := ReadMeta(wasm)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "21.7.6", meta.SDKVersion)
	assert.Equal(t, uint32(22), meta.Protocol)
}

func TestReadMeta_EnvOnly(t *testing.T) {
	meta, err := ReadMeta(buildWasm(section{SectionEnvMeta, marshalEnvMeta(t, 23, 1)}))
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Empty(t, meta.Entries)
	assert.Equal(t, uint32(23), meta.Protocol)
	assert.Equal(t, uint32(1), meta.PreRelease)
}

func TestReadMeta_Absent(t *testing.T) {
	meta, err := ReadMeta(buildWasm(section{SectionSpec, nil}))
	require.NoError(t, err)
	assert.Nil(t, meta)
}
