// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"fmt"
	"io"

	"github.com/JoseCToscano/policies-playground-sub000/internal/errors"
)

// Custom sections Soroban compilers embed in contract WASM.
const (
	SectionSpec    = "contractspecv0"
	SectionMeta    = "contractmetav0"
	SectionEnvMeta = "contractenvmetav0"
)

var wasmMagic = [4]byte{0x00, 0x61, 0x73, 0x6d} // \0asm

// ExtractCustomSection returns the payload of the named custom section, or
// (nil, nil) when the module has no such section. When a name appears more
// than once the first section wins.
func ExtractCustomSection(wasm []byte, name string) ([]byte, error) {
	sections, err := customSections(wasm)
	if err != nil {
		return nil, err
	}
	payload, ok := sections[name]
	if !ok {
		return nil, nil
	}
	return payload, nil
}

// ExtractSpec returns the contractspecv0 payload or ErrSpecNotFound.
func ExtractSpec(wasm []byte) ([]byte, error) {
	spec, err := ExtractCustomSection(wasm, SectionSpec)
	if err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, errors.WrapSpecNotFound()
	}
	return spec, nil
}

// customSections walks the module once and collects every custom section
// payload by name.
func customSections(wasm []byte) (map[string][]byte, error) {
	if len(wasm) < 8 {
		return nil, errors.WrapWasmInvalid("file too short")
	}
	if [4]byte(wasm[:4]) != wasmMagic {
		return nil, errors.WrapWasmInvalid("bad magic bytes")
	}
	// bytes 4-7 carry the version; any version is accepted

	sections := make(map[string][]byte)
	offset := 8
	for offset < len(wasm) {
		sectionID := wasm[offset]
		offset++

		sectionLen, n, err := decodeLEB128(wasm, offset)
		if err != nil {
			return nil, errors.WrapWasmInvalid(fmt.Sprintf("bad section length at offset %d: %v", offset, err))
		}
		offset += n

		if offset+int(sectionLen) > len(wasm) {
			return nil, errors.WrapWasmInvalid("section extends past end of file")
		}
		sectionEnd := offset + int(sectionLen)

		if sectionID == 0 {
			nameLen, nn, err := decodeLEB128(wasm, offset)
			if err != nil {
				return nil, errors.WrapWasmInvalid(fmt.Sprintf("bad custom section name length: %v", err))
			}
			nameStart := offset + nn
			if nameStart+int(nameLen) > sectionEnd {
				return nil, errors.WrapWasmInvalid("custom section name extends past section")
			}

			name := string(wasm[nameStart : nameStart+int(nameLen)])
			if _, seen := sections[name]; !seen {
				payload := make([]byte, sectionEnd-(nameStart+int(nameLen)))
				copy(payload, wasm[nameStart+int(nameLen):sectionEnd])
				sections[name] = payload
			}
		}

		offset = sectionEnd
	}

	return sections, nil
}

// decodeLEB128 decodes an unsigned LEB128 u32 at offset and returns the
// value and the number of bytes consumed.
func decodeLEB128(data []byte, offset int) (uint32, int, error) {
	var result uint32
	var shift uint
	for i := 0; i < 5; i++ {
		if offset+i >= len(data) {
			return 0, 0, io.ErrUnexpectedEOF
		}
		b := data[offset+i]
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, fmt.Errorf("LEB128 integer too large")
}

// DecodeWasm extracts, parses and decodes the spec embedded in a contract
// module, attaching build metadata when the module carries it.
func (r Renderer) DecodeWasm(wasm []byte) (*ContractInterface, error) {
	specBytes, err := ExtractSpec(wasm)
	if err != nil {
		return nil, err
	}
	entries, err := ParseEntries(specBytes)
	if err != nil {
		return nil, err
	}
	ci, err := r.Decode(entries)
	if err != nil {
		return nil, err
	}
	if ci.Meta, err = ReadMeta(wasm); err != nil {
		return nil, err
	}
	return ci, nil
}
