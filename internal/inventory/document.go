package inventory

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Group is a named collection of hosts, optionally with child groups.
type Group struct {
	Hosts    []string
	Children []string
}

// AddChild registers a child group once, preserving insertion order.
func (g *Group) AddChild(name string) {
	for _, c := range g.Children {
		if c == name {
			return
		}
	}
	g.Children = append(g.Children, name)
}

// MarshalJSON renders a plain group as an array of hosts and a group
// with children as an object, both accepted by Ansible.
func (g *Group) MarshalJSON() ([]byte, error) {
	hosts := g.Hosts
	if hosts == nil {
		hosts = []string{}
	}
	if len(g.Children) == 0 {
		return json.Marshal(hosts)
	}
	return json.Marshal(struct {
		Hosts    []string `json:"hosts"`
		Children []string `json:"children"`
	}{hosts, g.Children})
}

// Document is a dynamic inventory: groups at the top level plus the
// reserved _meta key carrying per-host variables.
type Document struct {
	Groups   map[string]*Group
	Hostvars map[string]map[string]any
}

// NewDocument creates an empty inventory document.
func NewDocument() *Document {
	return &Document{
		Groups:   make(map[string]*Group),
		Hostvars: make(map[string]map[string]any),
	}
}

// Group returns the named group, creating it when needed.
func (d *Document) Group(name string) *Group {
	g, ok := d.Groups[name]
	if !ok {
		g = &Group{}
		d.Groups[name] = g
	}
	return g
}

// HostVariables returns the variable record for a host, or an empty
// record for an unknown host.
func (d *Document) HostVariables(host string) map[string]any {
	if rec, ok := d.Hostvars[host]; ok {
		return rec
	}
	return map[string]any{}
}

// MarshalJSON emits group names in sorted order followed by _meta.
// The output is deterministic: marshaling the same document twice
// yields identical bytes.
func (d *Document) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(d.Groups))
	for name := range d.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range names {
		if err := writePair(&buf, name, d.Groups[name]); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}

	hostvars := d.Hostvars
	if hostvars == nil {
		hostvars = map[string]map[string]any{}
	}
	meta := map[string]any{"hostvars": hostvars}
	if err := writePair(&buf, "_meta", meta); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writePair(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
