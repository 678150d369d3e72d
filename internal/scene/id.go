package scene

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ID is an optional material ID. The zero value is unset, which is
// distinct from a set ID of 0.
type ID struct {
	value int
	set   bool
}

// NoID is the unset ID.
var NoID = ID{}

// IDOf returns a set ID holding v.
func IDOf(v int) ID {
	return ID{value: v, set: true}
}

// Get returns the value and whether the ID is set.
func (id ID) Get() (int, bool) {
	return id.value, id.set
}

// IsSet reports whether the ID holds a value.
func (id ID) IsSet() bool {
	return id.set
}

// Int returns the value, or 0 when unset.
func (id ID) Int() int {
	return id.value
}

// String renders the ID for display. Unset renders as "".
func (id ID) String() string {
	if !id.set {
		return ""
	}
	return strconv.Itoa(id.value)
}

// MarshalYAML encodes unset as null.
func (id ID) MarshalYAML() (interface{}, error) {
	if !id.set {
		return nil, nil
	}
	return id.value, nil
}

// UnmarshalYAML decodes null (or a missing key) as unset.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*id = NoID
		return nil
	}
	var v int
	if err := node.Decode(&v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("line %d: negative material id %d", node.Line, v)
	}
	*id = IDOf(v)
	return nil
}

// MarshalJSON encodes unset as null.
func (id ID) MarshalJSON() ([]byte, error) {
	if !id.set {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON decodes null as unset.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = NoID
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("negative material id %d", v)
	}
	*id = IDOf(v)
	return nil
}
