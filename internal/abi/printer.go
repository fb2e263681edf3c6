// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var heading = color.New(color.Bold, color.FgCyan)

// FormatText returns a human-readable text representation of a contract
// interface.
func FormatText(ci *ContractInterface) string {
	var b strings.Builder

	section := func(title string, n int) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(heading.Sprintf("%s (%d):", title, n))
		b.WriteString("\n")
	}

	if len(ci.Functions) > 0 {
		section("Functions", len(ci.Functions))
		for _, fn := range ci.Functions {
			fmt.Fprintf(&b, "  %s\n", formatFunction(fn))
			if fn.Doc != "" {
				fmt.Fprintf(&b, "    %s\n", firstLine(fn.Doc))
			}
		}
	}

	if len(ci.Structs) > 0 {
		section("Structs", len(ci.Structs))
		for _, s := range ci.Structs {
			fmt.Fprintf(&b, "  %s\n", s.Name)
			for _, f := range s.Fields {
				fmt.Fprintf(&b, "    %s: %s\n", f.Name, f.Type)
			}
		}
	}

	var enums, errorEnums []EnumSignature
	for _, e := range ci.Enums {
		if e.IsErrorEnum {
			errorEnums = append(errorEnums, e)
		} else {
			enums = append(enums, e)
		}
	}
	for _, group := range []struct {
		title string
		list  []EnumSignature
	}{{"Enums", enums}, {"Error Enums", errorEnums}} {
		if len(group.list) == 0 {
			continue
		}
		section(group.title, len(group.list))
		for _, e := range group.list {
			fmt.Fprintf(&b, "  %s\n", e.Name)
			for _, v := range e.Variants {
				fmt.Fprintf(&b, "    %s = %d\n", v.Name, v.Value)
			}
		}
	}

	if len(ci.Unions) > 0 {
		section("Unions", len(ci.Unions))
		for _, u := range ci.Unions {
			fmt.Fprintf(&b, "  %s\n", u.Name)
			for _, c := range u.Cases {
				if c.Type == "" {
					fmt.Fprintf(&b, "    %s\n", c.Name)
				} else {
					fmt.Fprintf(&b, "    %s: %s\n", c.Name, c.Type)
				}
			}
		}
	}

	if len(ci.Events) > 0 {
		section("Events", len(ci.Events))
		for _, ev := range ci.Events {
			fmt.Fprintf(&b, "  %s\n", ev.Name)
			for _, p := range ev.Params {
				fmt.Fprintf(&b, "    %s: %s (%s)\n", p.Name, p.Type, p.Location)
			}
		}
	}

	if ci.Decimals > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Decimals: %d\n", ci.Decimals)
	}

	if m := ci.Meta; m != nil {
		section("Meta", len(m.Entries))
		for _, e := range m.Entries {
			fmt.Fprintf(&b, "  %s = %s\n", e.Key, e.Val)
		}
		if m.Protocol > 0 {
			fmt.Fprintf(&b, "  protocol = %d\n", m.Protocol)
		}
	}

	return b.String()
}

// FormatJSON returns the indented JSON form of a contract interface. Type
// strings keep their angle brackets unescaped.
func FormatJSON(ci *ContractInterface) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ci); err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func formatFunction(fn FunctionSignature) string {
	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = p.Name + ": " + p.Type
	}

	ret := "void"
	if len(fn.Outputs) > 0 {
		ret = fn.Outputs[0]
	}

	return fmt.Sprintf("%s(%s) -> %s", fn.Name, strings.Join(params, ", "), ret)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
