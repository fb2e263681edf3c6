// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import "github.com/stellar/go-stellar-sdk/xdr"

// SpecEntry is one decoded contract spec entry. The concrete types are
// FunctionEntry, StructEntry, EnumEntry, UnionEntry, EventEntry and
// OtherEntry.
type SpecEntry interface {
	specEntry()
}

// FunctionEntry is a callable contract function.
type FunctionEntry struct {
	Name    string
	Doc     string
	Params  []Param
	Outputs []TypeDescriptor
}

// Param is a function input, in positional order.
type Param struct {
	Name string
	Doc  string
	Type TypeDescriptor
}

// StructEntry is a user-defined struct.
type StructEntry struct {
	Name   string
	Doc    string
	Lib    string
	Fields []Field
}

type Field struct {
	Name string
	Doc  string
	Type TypeDescriptor
}

// EnumEntry covers both plain and error enums.
type EnumEntry struct {
	Name        string
	Doc         string
	Lib         string
	IsErrorEnum bool
	Variants    []EnumVariant
}

type EnumVariant struct {
	Name  string
	Value uint32
	Doc   string
}

// UnionEntry is a user-defined tagged union.
type UnionEntry struct {
	Name  string
	Doc   string
	Lib   string
	Cases []UnionCase
}

// UnionCase is either a void case (Void set, no Types) or a tuple case
// carrying Types.
type UnionCase struct {
	Name  string
	Doc   string
	Void  bool
	Types []TypeDescriptor
}

// EventEntry is a contract event declaration.
type EventEntry struct {
	Name   string
	Doc    string
	Params []EventParam
}

type EventParam struct {
	Name     string
	Doc      string
	Type     TypeDescriptor
	Location string // "topic" or "data"
}

// OtherEntry stands for an entry kind this package does not interpret.
type OtherEntry struct {
	Kind xdr.ScSpecEntryKind
}

func (FunctionEntry) specEntry() {}
func (StructEntry) specEntry()   {}
func (EnumEntry) specEntry()     {}
func (UnionEntry) specEntry()    {}
func (EventEntry) specEntry()    {}
func (OtherEntry) specEntry()    {}

// TypeDescriptor is a decoded spec type. The concrete types are Primitive,
// Vec, Option, Map, Tuple, Result, BytesN and UserDefined.
type TypeDescriptor interface {
	typeDescriptor()
}

// Primitive is any scalar type identified only by its tag.
type Primitive struct {
	Tag xdr.ScSpecType
}

type Vec struct {
	Elem TypeDescriptor
}

type Option struct {
	Inner TypeDescriptor
}

type Map struct {
	Key   TypeDescriptor
	Value TypeDescriptor
}

type Tuple struct {
	Elems []TypeDescriptor
}

// Result renders a nil side as void.
type Result struct {
	Ok  TypeDescriptor
	Err TypeDescriptor
}

type BytesN struct {
	N uint32
}

type UserDefined struct {
	Name string
}

func (Primitive) typeDescriptor()   {}
func (Vec) typeDescriptor()         {}
func (Option) typeDescriptor()      {}
func (Map) typeDescriptor()         {}
func (Tuple) typeDescriptor()       {}
func (Result) typeDescriptor()      {}
func (BytesN) typeDescriptor()      {}
func (UserDefined) typeDescriptor() {}

// ContractInterface is the human-readable interface of a contract.
type ContractInterface struct {
	Functions []FunctionSignature `json:"functions"`
	Enums     []EnumSignature     `json:"enums"`
	Unions    []UnionSignature    `json:"unions"`
	Structs   []StructSignature   `json:"structs,omitempty"`
	Events    []EventSignature    `json:"events,omitempty"`
	Decimals  uint32              `json:"decimals,omitempty"`
	Meta      *ContractMeta       `json:"meta,omitempty"`
}

type FunctionSignature struct {
	Name       string      `json:"name"`
	Doc        string      `json:"doc,omitempty"`
	Parameters []Parameter `json:"parameters"`
	Outputs    []string    `json:"outputs,omitempty"`
}

type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type EnumSignature struct {
	Name        string                 `json:"name"`
	Doc         string                 `json:"doc,omitempty"`
	IsErrorEnum bool                   `json:"isErrorEnum"`
	Variants    []EnumVariantSignature `json:"variants"`
}

type EnumVariantSignature struct {
	Name  string `json:"name"`
	Value uint32 `json:"value"`
	Doc   string `json:"doc,omitempty"`
}

type UnionSignature struct {
	Name  string               `json:"name"`
	Doc   string               `json:"doc,omitempty"`
	Cases []UnionCaseSignature `json:"cases"`
}

// UnionCaseSignature leaves Type empty for void cases.
type UnionCaseSignature struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Doc  string `json:"doc,omitempty"`
}

type StructSignature struct {
	Name   string           `json:"name"`
	Doc    string           `json:"doc,omitempty"`
	Fields []FieldSignature `json:"fields"`
}

type FieldSignature struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Doc  string `json:"doc,omitempty"`
}

type EventSignature struct {
	Name   string                `json:"name"`
	Doc    string                `json:"doc,omitempty"`
	Params []EventParamSignature `json:"params"`
}

type EventParamSignature struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
}
