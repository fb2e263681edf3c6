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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotNil(t, ErrMalformedEntry)
	assert.NotNil(t, ErrTypeTooDeep)
	assert.NotNil(t, ErrSpecNotFound)
	assert.NotNil(t, ErrWasmInvalid)
	assert.NotNil(t, ErrInvalidContractID)
	assert.NotNil(t, ErrContractNotFound)
	assert.NotNil(t, ErrRPCConnectionFailed)
	assert.NotNil(t, ErrInvalidNetwork)
}

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")

	wrappedErr := WrapRPCConnectionFailed(baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrRPCConnectionFailed))
	assert.True(t, errors.Is(wrappedErr, baseErr))

	wrappedErr = WrapInvalidContractID("Cxyz", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrInvalidContractID))
	assert.True(t, errors.Is(wrappedErr, baseErr))
	assert.Contains(t, wrappedErr.Error(), "Cxyz")

	wrappedErr = WrapTypeTooDeep(32)
	assert.True(t, errors.Is(wrappedErr, ErrTypeTooDeep))
	assert.Contains(t, wrappedErr.Error(), "32")

	wrappedErr = WrapInvalidNetwork("moonnet")
	assert.True(t, errors.Is(wrappedErr, ErrInvalidNetwork))
	assert.Contains(t, wrappedErr.Error(), "moonnet")

	wrappedErr = WrapConfigError("bad file", nil)
	assert.True(t, errors.Is(wrappedErr, ErrConfig))

	wrappedErr = WrapCacheError("open", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrCache))
	assert.True(t, errors.Is(wrappedErr, baseErr))
}

func TestMalformedEntryError(t *testing.T) {
	cause := fmt.Errorf("name is empty")
	err := WrapMalformedEntry(3, "function", "", "missing name", cause)

	assert.True(t, errors.Is(err, ErrMalformedEntry))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "entry 3")
	assert.Contains(t, err.Error(), "function")
	assert.Contains(t, err.Error(), "missing name")

	var me *MalformedEntryError
	assert.True(t, errors.As(err, &me))
	assert.Equal(t, 3, me.Index)
}

func TestMalformedEntryError_WithName(t *testing.T) {
	err := WrapMalformedEntry(0, "struct", "Point", "field 1 has no name", nil)
	assert.Contains(t, err.Error(), `"Point"`)
	assert.True(t, errors.Is(err, ErrMalformedEntry))
}
