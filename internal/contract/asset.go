// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package contract

import (
	"fmt"
	"strings"

	"github.com/JoseCToscano/policies-playground-sub000/internal/abi"
	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// NativeAddress names the native asset contract.
const NativeAddress = "native"

// AssetDecimals is the fixed precision of every Stellar asset contract.
const AssetDecimals = 7

// IsVirtual reports whether address names an asset contract whose interface
// is known without decoding: "native" or a CODE-ISSUER pair.
func IsVirtual(address string) bool {
	return address == NativeAddress || strings.Contains(address, "-")
}

// AssetInterface returns the token interface shared by the native asset and
// every issued asset. The function order is fixed.
func AssetInterface() *abi.ContractInterface {
	return &abi.ContractInterface{
		Functions: []abi.FunctionSignature{
			{
				Name: "allowance",
				Doc:  "Returns the allowance for `spender` to transfer from `from`.",
				Parameters: []abi.Parameter{
					{Name: "from", Type: "address"},
					{Name: "spender", Type: "address"},
				},
				Outputs: []string{"i128"},
			},
			{
				Name: "approve",
				Doc:  "Set the allowance by `amount` for `spender` to transfer/burn from `from`.",
				Parameters: []abi.Parameter{
					{Name: "from", Type: "address"},
					{Name: "spender", Type: "address"},
					{Name: "amount", Type: "i128"},
					{Name: "expiration_ledger", Type: "u32"},
				},
			},
			{
				Name:       "balance",
				Doc:        "Returns the balance of `id`.",
				Parameters: []abi.Parameter{{Name: "id", Type: "address"}},
				Outputs:    []string{"i128"},
			},
			{
				Name: "transfer",
				Doc:  "Transfer `amount` from `from` to `to`.",
				Parameters: []abi.Parameter{
					{Name: "from", Type: "address"},
					{Name: "to", Type: "address"},
					{Name: "amount", Type: "i128"},
				},
			},
			{
				Name: "transfer_from",
				Doc:  "Transfer `amount` from `from` to `to`, consuming the allowance of `spender`.",
				Parameters: []abi.Parameter{
					{Name: "spender", Type: "address"},
					{Name: "from", Type: "address"},
					{Name: "to", Type: "address"},
					{Name: "amount", Type: "i128"},
				},
			},
			{
				Name: "burn",
				Doc:  "Burn `amount` from `from`.",
				Parameters: []abi.Parameter{
					{Name: "from", Type: "address"},
					{Name: "amount", Type: "i128"},
				},
			},
			{
				Name: "burn_from",
				Doc:  "Burn `amount` from `from`, consuming the allowance of `spender`.",
				Parameters: []abi.Parameter{
					{Name: "spender", Type: "address"},
					{Name: "from", Type: "address"},
					{Name: "amount", Type: "i128"},
				},
			},
			{
				Name:       "decimals",
				Doc:        "Returns the number of decimals used to represent amounts of this token.",
				Parameters: []abi.Parameter{},
				Outputs:    []string{"u32"},
			},
			{
				Name:       "name",
				Doc:        "Returns the name for this token.",
				Parameters: []abi.Parameter{},
				Outputs:    []string{"string"},
			},
			{
				Name:       "symbol",
				Doc:        "Returns the symbol for this token.",
				Parameters: []abi.Parameter{},
				Outputs:    []string{"string"},
			},
		},
		Enums:    []abi.EnumSignature{},
		Unions:   []abi.UnionSignature{},
		Decimals: AssetDecimals,
	}
}

// ParseAsset turns "native" or "CODE-ISSUER" into an XDR asset.
func ParseAsset(address string) (xdr.Asset, error) {
	if address == NativeAddress {
		return xdr.MustNewNativeAsset(), nil
	}
	code, issuer, ok := strings.Cut(address, "-")
	if !ok || code == "" || issuer == "" {
		return xdr.Asset{}, errors.WrapValidationError(fmt.Sprintf("asset %q is not CODE-ISSUER", address))
	}
	asset, err := xdr.NewCreditAsset(code, issuer)
	if err != nil {
		return xdr.Asset{}, errors.WrapValidationError(fmt.Sprintf("asset %q: %v", address, err))
	}
	return asset, nil
}

// AssetContractID derives the strkey of the Stellar asset contract for
// address on the network identified by passphrase.
func AssetContractID(address, passphrase string) (string, error) {
	asset, err := ParseAsset(address)
	if err != nil {
		return "", err
	}
	id, err := asset.ContractID(passphrase)
	if err != nil {
		return "", fmt.Errorf("deriving contract id for %s: %w", address, err)
	}
	return strkey.Encode(strkey.VersionByteContract, id[:])
}
