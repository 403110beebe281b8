package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Op names an edit a script step performs.
type Op string

const (
	OpSetProperty       Op = "set_property"
	OpRemoveProperty    Op = "remove_property"
	OpAddItem           Op = "add_item"
	OpRemoveItem        Op = "remove_item"
	OpSetMetadata       Op = "set_metadata"
	OpAddImport         Op = "add_import"
	OpRemoveImport      Op = "remove_import"
	OpAddPropertyGroup  Op = "add_property_group"
	OpAddItemGroup      Op = "add_item_group"
	OpAddTarget         Op = "add_target"
	OpRemoveTarget      Op = "remove_target"
	OpSetAttr           Op = "set_attr"
	OpSetCondition      Op = "set_condition"
	OpSetExtension      Op = "set_extension"
	OpRemoveExtension   Op = "remove_extension"
	OpSetDefaultTargets Op = "set_default_targets"
	OpSetToolsVersion   Op = "set_tools_version"
)

// Script is an edit script: a starting document, the steps applied to it
// and what the result must look like.
type Script struct {
	// Name identifies the script and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Document is the starting text. Exactly one of Document and File is set.
	Document string `yaml:"document"`

	// File is a project file to start from. LoadScript resolves it against
	// the directory of the script.
	File string `yaml:"file"`

	// Engine is the engine kind used for expectations on the evaluated
	// view. Defaults to "legacy".
	Engine string `yaml:"engine"`

	Steps []Step `yaml:"steps"`

	Expect *Expect `yaml:"expect"`
}

// Step is one edit. Which fields apply depends on Op.
type Step struct {
	Op Op `yaml:"op"`

	Name      string `yaml:"name"`
	Value     string `yaml:"value"`
	Type      string `yaml:"type"`
	Include   string `yaml:"include"`
	Project   string `yaml:"project"`
	Condition string `yaml:"condition"`

	// Select addresses an existing node, see resolve.
	Select string `yaml:"select"`

	Metadata map[string]string `yaml:"metadata"`
	Fragment string            `yaml:"fragment"`

	RemoveEmptyGroup bool `yaml:"remove_empty_group"`
}

// Expect describes the edited document.
type Expect struct {
	// Version is the expected document version after all steps.
	Version *int64 `yaml:"version"`

	// Contains and NotContains are substrings of the serialized text.
	Contains    []string `yaml:"contains"`
	NotContains []string `yaml:"not_contains"`

	// Properties are expected evaluated property values.
	Properties map[string]string `yaml:"properties"`

	// Items are expected counts of evaluated items by type.
	Items map[string]int `yaml:"items"`
}

// LoadScript reads and validates an edit script from a YAML file.
//
// Unknown fields are rejected so typos fail loudly.
func LoadScript(path string) (*Script, error) {
	s, err := decodeScript(path)
	if err != nil {
		return nil, err
	}
	if err := validateScript(s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}

	if s.File != "" && !filepath.IsAbs(s.File) {
		s.File = filepath.Join(filepath.Dir(path), s.File)
	}
	return s, nil
}

// LoadSteps reads only the steps of an edit script, for applying them to a
// document chosen by the caller. Document, file and expectations are
// ignored.
func LoadSteps(path string) ([]Step, error) {
	s, err := decodeScript(path)
	if err != nil {
		return nil, err
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return nil, fmt.Errorf("invalid script: steps[%d]: %w", i, err)
		}
	}
	return s.Steps, nil
}

func decodeScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}

	var s Script
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse script YAML: %w", err)
	}
	return &s, nil
}

var opFields = map[Op][]string{
	OpSetProperty:       {"name"},
	OpRemoveProperty:    {"name"},
	OpAddItem:           {"type", "include"},
	OpRemoveItem:        {"type", "include"},
	OpSetMetadata:       {"select", "name"},
	OpAddImport:         {"project"},
	OpRemoveImport:      {"project"},
	OpAddPropertyGroup:  nil,
	OpAddItemGroup:      nil,
	OpAddTarget:         {"name"},
	OpRemoveTarget:      {"name"},
	OpSetAttr:           {"select", "name"},
	OpSetCondition:      {"select"},
	OpSetExtension:      {"name"},
	OpRemoveExtension:   {"name"},
	OpSetDefaultTargets: nil,
	OpSetToolsVersion:   {"value"},
}

func validateScript(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Document == "" && s.File == "" {
		return fmt.Errorf("document or file is required")
	}
	if s.Document != "" && s.File != "" {
		return fmt.Errorf("document and file are mutually exclusive")
	}
	switch s.Engine {
	case "", "legacy", "full":
	default:
		return fmt.Errorf("engine must be legacy or full, got %q", s.Engine)
	}
	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	fields, ok := opFields[step.Op]
	if !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	for _, f := range fields {
		if stepField(step, f) == "" {
			return fmt.Errorf("%s requires %s", step.Op, f)
		}
	}
	return nil
}

func stepField(step Step, name string) string {
	switch name {
	case "name":
		return step.Name
	case "value":
		return step.Value
	case "type":
		return step.Type
	case "include":
		return step.Include
	case "project":
		return step.Project
	case "select":
		return step.Select
	}
	return ""
}
