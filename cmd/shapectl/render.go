package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"
	"go.bytecodealliance.org/wit"
	"golang.org/x/term"

	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	leafStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer renders value trees, with colors when styled is set.
type printer struct {
	styled bool
}

// colorEnabled decides whether output to w gets ANSI styling.
func colorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

// Tree renders v as an indented tree, one node per line.
func (p printer) Tree(v *dynamic.Value) string {
	return p.node("", v).String()
}

func (p printer) node(label string, v *dynamic.Value) *tree.Tree {
	t := tree.Root(p.label(label, v)).Enumerator(tree.RoundedEnumerator)
	if p.styled {
		t = t.EnumeratorStyle(helpStyle)
	}
	for i := 0; i < v.Len(); i++ {
		child, l := v.Child(i)
		if child != nil && child.Len() > 0 {
			t.Child(p.node(l, child))
		} else {
			t.Child(p.label(l, child))
		}
	}
	return t
}

func (p printer) label(label string, v *dynamic.Value) string {
	var b strings.Builder
	if label != "" {
		b.WriteString(p.render(keyStyle, label))
		b.WriteString(": ")
	}
	switch {
	case v == nil:
		b.WriteString(p.render(errorStyle, "<nil>"))
	case v.Len() > 0:
		b.WriteString(p.render(nameStyle, header(v)))
	default:
		b.WriteString(p.render(leafStyle, v.String()))
		b.WriteString(" ")
		b.WriteString(p.render(helpStyle, v.Kind().String()))
	}
	return b.String()
}

// header names an aggregate node.
func header(v *dynamic.Value) string {
	if v.Name() != "" {
		return v.Name()
	}
	return fmt.Sprintf("%s(%d)", v.Kind(), v.Len())
}

// formatSchema renders s in one of the supported formats.
func formatSchema(s *schema.Schema, format string) (string, error) {
	switch format {
	case "", "text":
		return s.String(), nil
	case "json":
		b, err := schema.MarshalIndentJSON(s)
		return string(b), err
	case "yaml":
		b, err := schema.MarshalYAMLBytes(s)
		return strings.TrimRight(string(b), "\n"), err
	case "wit":
		t, err := schema.ToWIT(s)
		if err != nil {
			return "", err
		}
		defs := witDefs(t, nil)
		if len(defs) == 0 {
			return witRef(t), nil
		}
		return strings.Join(defs, "\n"), nil
	}
	return "", fmt.Errorf("unknown format %q (text, json, yaml, wit)", format)
}

// witRef is how t is referenced from another definition.
func witRef(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if tup, ok := v.Kind.(*wit.Tuple); ok {
			return "tuple<" + witRefs(tup.Types) + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func witRefs(types []wit.Type) string {
	refs := make([]string, len(types))
	for i, t := range types {
		refs[i] = witRef(t)
	}
	return strings.Join(refs, ", ")
}

// witDefs returns the definitions of every named type reachable from t,
// dependencies first.
func witDefs(t wit.Type, seen map[string]bool) []string {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return nil
	}
	if seen == nil {
		seen = make(map[string]bool)
	}

	var defs []string
	var body string
	switch kind := td.Kind.(type) {
	case *wit.Record:
		fields := make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			defs = append(defs, witDefs(f.Type, seen)...)
			fields[i] = f.Name + ": " + witRef(f.Type)
		}
		body = "record %s { " + strings.Join(fields, ", ") + " }"
	case *wit.Tuple:
		for _, et := range kind.Types {
			defs = append(defs, witDefs(et, seen)...)
		}
		body = "type %s = tuple<" + witRefs(kind.Types) + ">"
	case *wit.Enum:
		cases := make([]string, len(kind.Cases))
		for i, c := range kind.Cases {
			cases[i] = c.Name
		}
		body = "enum %s { " + strings.Join(cases, ", ") + " }"
	case wit.Type:
		defs = append(defs, witDefs(kind, seen)...)
		body = "type %s = " + witRef(kind)
	}

	if td.Name == nil || seen[*td.Name] {
		return defs
	}
	seen[*td.Name] = true
	return append(defs, strings.Replace(body, "%s", *td.Name, 1))
}
