package message

import (
	"fmt"
	"strings"

	"github.com/oy3o/serial"
)

// ConfigParam is one named value of a configuration object.
//
// Wire layout: string Name, string Value.
type ConfigParam struct {
	Name  string
	Value string
}

func (p *ConfigParam) WriteObject(w *serial.Writer) error {
	w.WriteString(p.Name)
	w.WriteString(p.Value)
	return w.Err()
}

func (p *ConfigParam) ReadObject(r *serial.Reader) error {
	var out ConfigParam
	r.ReadString(&out.Name)
	r.ReadString(&out.Value)
	if err := r.Err(); err != nil {
		return err
	}
	*p = out
	return nil
}

// ConfigObject is a node of a run configuration tree as stored in the
// configuration database and pushed to nodes on LOAD.
//
// Wire layout:
//
//	string       Node
//	string       Table
//	int32        Revision
//	int32        len(Params)
//	ConfigParam  Params...
//	int32        len(Children)
//	ConfigObject Children... (recursively)
type ConfigObject struct {
	Node     string
	Table    string
	Revision int32
	Params   []ConfigParam
	Children []ConfigObject
}

var _ serial.Serializable = (*ConfigObject)(nil)

// Get returns the value of a parameter of this object.
func (c *ConfigObject) Get(name string) (string, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Set replaces or appends a parameter.
func (c *ConfigObject) Set(name, value string) {
	for i := range c.Params {
		if c.Params[i].Name == name {
			c.Params[i].Value = value
			return
		}
	}
	c.Params = append(c.Params, ConfigParam{Name: name, Value: value})
}

// Child returns the direct child whose Node is name.
func (c *ConfigObject) Child(name string) *ConfigObject {
	for i := range c.Children {
		if c.Children[i].Node == name {
			return &c.Children[i]
		}
	}
	return nil
}

// Lookup resolves a dotted path such as "ecl.collector.threshold": every
// element but the last names a child, the last names a parameter.
func (c *ConfigObject) Lookup(path string) (string, error) {
	parts := strings.Split(path, ".")
	obj := c
	for _, name := range parts[:len(parts)-1] {
		if obj = obj.Child(name); obj == nil {
			return "", fmt.Errorf("%w: %s", ErrNoSuchParam, path)
		}
	}
	v, ok := obj.Get(parts[len(parts)-1])
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSuchParam, path)
	}
	return v, nil
}

func (c *ConfigObject) WriteObject(w *serial.Writer) error {
	w.WriteString(c.Node)
	w.WriteString(c.Table)
	w.WriteInt32(c.Revision)
	if err := serial.WriteSeq(w, c.Params); err != nil {
		return err
	}
	return serial.WriteSeq(w, c.Children)
}

func (c *ConfigObject) ReadObject(r *serial.Reader) error {
	var (
		out ConfigObject
		err error
	)
	r.ReadString(&out.Node)
	r.ReadString(&out.Table)
	r.ReadInt32(&out.Revision)
	if out.Params, err = serial.ReadSeq[ConfigParam](r); err != nil {
		return err
	}
	if out.Children, err = serial.ReadSeq[ConfigObject](r); err != nil {
		return err
	}
	*c = out
	return nil
}
