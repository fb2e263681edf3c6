// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// Re-export standard errors functions so callers need a single import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors for comparison with errors.Is
var (
	ErrMalformedEntry      = errors.New("malformed spec entry")
	ErrTypeTooDeep         = errors.New("type nesting too deep")
	ErrSpecNotFound        = errors.New("contract spec not found")
	ErrWasmInvalid         = errors.New("invalid WASM binary")
	ErrInvalidContractID   = errors.New("invalid contract id")
	ErrContractNotFound    = errors.New("contract not found")
	ErrAssetContract       = errors.New("contract is a Stellar asset contract")
	ErrRPCConnectionFailed = errors.New("RPC connection failed")
	ErrInvalidNetwork      = errors.New("invalid network")
	ErrValidation          = errors.New("validation error")
	ErrConfig              = errors.New("configuration error")
	ErrMarshalFailed       = errors.New("failed to marshal request")
	ErrUnmarshalFailed     = errors.New("failed to unmarshal response")
	ErrCache               = errors.New("cache error")
	ErrUnauthorized        = errors.New("unauthorized")
)

// MalformedEntryError reports a spec entry whose payload does not match its
// tag. It unwraps to ErrMalformedEntry.
type MalformedEntryError struct {
	Index  int
	Kind   string
	Name   string
	Reason string
	Err    error
}

func (e *MalformedEntryError) Error() string {
	where := fmt.Sprintf("entry %d (%s", e.Index, e.Kind)
	if e.Name != "" {
		where += fmt.Sprintf(" %q", e.Name)
	}
	where += ")"

	msg := fmt.Sprintf("%s: %s: %s", ErrMalformedEntry, where, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedEntryError) Is(target error) bool {
	return target == ErrMalformedEntry
}

func (e *MalformedEntryError) Unwrap() error {
	return e.Err
}

// Wrap functions for consistent error wrapping
func WrapMalformedEntry(index int, kind, name, reason string, cause error) error {
	return &MalformedEntryError{
		Index:  index,
		Kind:   kind,
		Name:   name,
		Reason: reason,
		Err:    cause,
	}
}

func WrapTypeTooDeep(limit int) error {
	return fmt.Errorf("%w: exceeds %d levels", ErrTypeTooDeep, limit)
}

func WrapSpecNotFound() error {
	return fmt.Errorf("%w: WASM has no contractspecv0 custom section", ErrSpecNotFound)
}

func WrapWasmInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrWasmInvalid, msg)
}

func WrapInvalidContractID(id string, err error) error {
	return fmt.Errorf("%w %q: %w", ErrInvalidContractID, id, err)
}

func WrapContractNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrContractNotFound, id)
}

func WrapAssetContract(id string) error {
	return fmt.Errorf("%w: %s", ErrAssetContract, id)
}

func WrapRPCConnectionFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrRPCConnectionFailed, err)
}

func WrapInvalidNetwork(network string) error {
	return fmt.Errorf("%w: %s. Must be one of: public, testnet, futurenet, standalone", ErrInvalidNetwork, network)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapConfigError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfig, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapMarshalFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
}

func WrapUnmarshalFailed(err error, output string) error {
	return fmt.Errorf("%w: %w, output: %s", ErrUnmarshalFailed, err, output)
}

func WrapCacheError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCache, msg, err)
}

func WrapUnauthorized() error {
	return fmt.Errorf("%w: missing or invalid bearer token", ErrUnauthorized)
}
