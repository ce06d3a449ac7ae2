package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// definitionFile is the YAML layout of a model definition file. Entries may
// be plain names or mappings with a name field.
type definitionFile struct {
	Models []definition `yaml:"models"`
}

type definition struct {
	Name string `yaml:"name"`
}

func (d *definition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Name = node.Value
		return nil
	}
	type plain definition
	return node.Decode((*plain)(d))
}

// LoadFile reads a model definition file and registers every model it lists
// into reg. Files ending in .json are read as JSON, anything else as YAML.
func LoadFile(reg *Registry, path string) ([]Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading model file: %w", err)
	}

	var names []string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		names, err = parseJSONDefinitions(data)
	} else {
		names, err = parseYAMLDefinitions(data)
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing model file %s: %w", path, err)
	}

	loaded := make([]Model, 0, len(names))
	for _, name := range names {
		m, err := reg.Register(name)
		if err != nil {
			return loaded, fmt.Errorf("error registering model from %s: %w", path, err)
		}
		loaded = append(loaded, m)
	}
	return loaded, nil
}

func parseYAMLDefinitions(data []byte) ([]string, error) {
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(file.Models))
	for _, d := range file.Models {
		names = append(names, d.Name)
	}
	return names, nil
}

func parseJSONDefinitions(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	list := gjson.GetBytes(data, "models")
	if !list.IsArray() {
		return nil, fmt.Errorf("models must be an array")
	}

	var names []string
	for _, item := range list.Array() {
		if item.IsObject() {
			names = append(names, item.Get("name").String())
			continue
		}
		names = append(names, item.String())
	}
	return names, nil
}
