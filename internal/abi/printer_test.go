// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInterface(t *testing.T) *ContractInterface {
	t.Helper()
	ci, err := Decode(tokenEntries())
	require.NoError(t, err)
	return ci
}

func TestFormatText(t *testing.T) {
	color.NoColor = true

	out := FormatText(sampleInterface(t))

	assert.Contains(t, out, "Functions (4):")
	assert.Contains(t, out, "  transfer(from: address, to: address, amount: i128) -> void")
	assert.Contains(t, out, "  balance(id: address) -> i128")
	assert.Contains(t, out, "Structs (1):")
	assert.Contains(t, out, "    x: u32")
	assert.Contains(t, out, "Enums (1):")
	assert.Contains(t, out, "    Paused = 7")
	assert.Contains(t, out, "Error Enums (1):")
	assert.Contains(t, out, "    NotFound = 404")
	assert.Contains(t, out, "Unions (1):")
	assert.Contains(t, out, "    Admin\n")
	assert.Contains(t, out, "    Balance: tuple<address,i128>")
	assert.NotContains(t, out, "Decimals")
}

func TestFormatText_DecimalsAndMeta(t *testing.T) {
	color.NoColor = true

	ci := &ContractInterface{
		Functions: []FunctionSignature{{Name: "decimals", Doc: "Returns the number of decimals.\nMore text.", Outputs: []string{"u32"}}},
		Decimals:  7,
		Meta:      &ContractMeta{Entries: []MetaEntry{{Key: "rsver", Val: "1.81.0"}}, Protocol: 22},
	}

	out := FormatText(ci)
	assert.Contains(t, out, "  decimals() -> u32\n    Returns the number of decimals.\n")
	assert.NotContains(t, out, "More text.")
	assert.Contains(t, out, "Decimals: 7")
	assert.Contains(t, out, "  rsver = 1.81.0")
	assert.Contains(t, out, "  protocol = 22")
}

func TestFormatText_Empty(t *testing.T) {
	assert.Empty(t, FormatText(&ContractInterface{}))
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(sampleInterface(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded["functions"], 4)
	assert.Contains(t, out, `"isErrorEnum": true`)
	assert.Contains(t, out, `"type": "tuple<address,i128>"`)
	assert.NotContains(t, out, `"decimals"`)
	assert.NotContains(t, out, `\u003c`)
	assert.False(t, strings.HasSuffix(out, "\n"))
}
