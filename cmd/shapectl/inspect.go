package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-json"

	"github.com/wippyai/dynshape"
	"github.com/wippyai/dynshape/bincode"
	"github.com/wippyai/dynshape/dynamic"
	"github.com/wippyai/dynshape/schema"
)

// row is one line of the flattened value tree.
type row struct {
	schema *schema.Schema
	value  *dynamic.Value
	label  string
	index  []int
	depth  int
}

func (r row) editable() bool {
	switch r.schema.Kind() {
	case schema.KindUnit, schema.KindUnitStruct:
		return false
	}
	return r.value.Len() == 0
}

type inspectModel struct {
	err      error
	schema   *schema.Schema
	root     *dynamic.Value
	encode   func(*dynamic.Value) ([]byte, error)
	save     func([]byte) error
	filename string
	status   string
	rows     []row
	input    textinput.Model
	selected int
	editing  bool
	dirty    bool
}

func newInspectModel(filename string, s *schema.Schema, v *dynamic.Value,
	encode func(*dynamic.Value) ([]byte, error), save func([]byte) error) *inspectModel {
	m := &inspectModel{
		filename: filename,
		schema:   s,
		root:     v,
		encode:   encode,
		save:     save,
	}
	m.rows = flatten(s, v)
	return m
}

// flatten lists every node of v depth first.
func flatten(s *schema.Schema, v *dynamic.Value) []row {
	var rows []row
	var walk func(s *schema.Schema, v *dynamic.Value, label string, index []int)
	walk = func(s *schema.Schema, v *dynamic.Value, label string, index []int) {
		rows = append(rows, row{schema: s, value: v, label: label, index: index, depth: len(index)})
		for i := 0; i < v.Len(); i++ {
			cv, l := v.Child(i)
			cs, _ := s.Child(i)
			walk(cs, cv, l, append(append([]int(nil), index...), i))
		}
	}
	walk(s, v, "", nil)
	return rows
}

// replace returns v with the node at index swapped for nv.
func replace(v *dynamic.Value, index []int, nv *dynamic.Value) *dynamic.Value {
	if len(index) == 0 {
		return nv
	}
	child, _ := v.Child(index[0])
	return v.With(index[0], replace(child, index[1:], nv))
}

// parseLeaf reads a leaf from its JSON projection. Bare text is accepted
// for strings, chars and enum variants.
func parseLeaf(s *schema.Schema, text string) (*dynamic.Value, error) {
	v, err := dynamic.FromJSON(s, []byte(text))
	if err == nil {
		return v, nil
	}
	switch s.Kind() {
	case schema.KindString, schema.KindChar, schema.KindEnum:
		quoted, qerr := json.Marshal(text)
		if qerr != nil {
			return nil, err
		}
		if qv, qerr := dynamic.FromJSON(s, quoted); qerr == nil {
			return qv, nil
		}
	}
	return nil, err
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.editing = false
			m.input.Blur()
			return m, nil
		case "enter":
			m.commit()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.rows)-1 {
			m.selected++
		}

	case "enter":
		r := m.rows[m.selected]
		if !r.editable() {
			m.status = fmt.Sprintf("%s is not editable", r.schema.Kind())
			return m, nil
		}
		text, err := r.value.MarshalJSON()
		if err != nil {
			m.err = err
			return m, nil
		}
		ti := textinput.New()
		ti.Prompt = r.label + ": "
		ti.Placeholder = r.schema.String()
		ti.Width = 40
		ti.SetValue(string(text))
		ti.Focus()
		m.input = ti
		m.editing = true
		m.err = nil
		m.status = ""

	case "w":
		data, err := m.encode(m.root)
		if err == nil {
			err = m.save(data)
		}
		if err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = false
		m.err = nil
		m.status = fmt.Sprintf("wrote %d bytes", len(data))
	}
	return m, nil
}

func (m *inspectModel) commit() {
	r := m.rows[m.selected]
	nv, err := parseLeaf(r.schema, m.input.Value())
	if err != nil {
		m.err = err
		return
	}
	m.root = replace(m.root, r.index, nv)
	m.rows = flatten(m.schema, m.root)
	m.editing = false
	m.dirty = true
	m.err = nil
	m.status = "modified " + pathLabel(m.rows, m.selected)
}

// pathLabel is the dotted path of row i.
func pathLabel(rows []row, i int) string {
	parts := make([]string, 0, rows[i].depth)
	depth := rows[i].depth
	for j := i; j > 0 && depth > 0; j-- {
		if rows[j].depth == depth {
			parts = append(parts, rows[j].label)
			depth--
		}
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ".")
}

func (m *inspectModel) View() string {
	p := printer{styled: true}
	var b strings.Builder

	b.WriteString(titleStyle.Render("shapectl inspect"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	if m.dirty {
		b.WriteString(" [modified]")
	}
	b.WriteString("\n\n")

	for i, r := range m.rows {
		line := strings.Repeat("  ", r.depth) + p.label(r.label, r.value)
		if i == m.selected {
			line = selectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • w write • q quit"))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
	}
	return b.String()
}

func runInspect(s *schema.Schema, filename string, opts bincode.Options) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	v, err := dynshape.Decode(s, data, dynshape.WithOptions(opts))
	if err != nil {
		return err
	}

	encode := func(v *dynamic.Value) ([]byte, error) {
		return dynshape.Encode(v, dynshape.WithOptions(opts))
	}
	save := func(out []byte) error {
		if bytes.Equal(out, data) {
			return nil
		}
		if err := os.WriteFile(filename, out, 0o644); err != nil {
			return err
		}
		data = out
		return nil
	}

	p := tea.NewProgram(newInspectModel(filename, s, v, encode, save), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
