package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlowSpec is a state machine described in YAML:
//
//	name: app
//	initial: main
//	states:
//	  - name: main
//	    behaviours:
//	      - type: view
//	        args: {view: main}
//	    transitions: [about, work]
type FlowSpec struct {
	Name    string          `yaml:"name"`
	Initial string          `yaml:"initial"`
	States  []FlowStateSpec `yaml:"states"`
}

type FlowStateSpec struct {
	Name        string          `yaml:"name"`
	Behaviours  []BehaviourSpec `yaml:"behaviours"`
	Transitions []string        `yaml:"transitions"`
}

// BehaviourSpec names a behaviour factory and the arguments passed to it.
type BehaviourSpec struct {
	Type string         `yaml:"type"`
	Args map[string]any `yaml:"args"`
}

// State returns the state called name.
func (f FlowSpec) State(name string) (FlowStateSpec, bool) {
	for _, s := range f.States {
		if s.Name == name {
			return s, true
		}
	}
	return FlowStateSpec{}, false
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadFlowSpec loads a flow file. A missing name defaults to the file name
// without its extension.
func LoadFlowSpec(filename string) (FlowSpec, error) {
	spec, err := LoadSpec[FlowSpec](filename)
	if err != nil {
		return FlowSpec{}, err
	}
	if spec.Name == "" {
		base := cleanFlowPath(filename)
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		spec.Name = strings.TrimSuffix(strings.TrimSuffix(base, ".yaml"), ".yml")
	}
	return spec, nil
}

// DecodeArgs re-decodes loosely typed behaviour args into T using its yaml
// tags. Nil args yield the zero T.
func DecodeArgs[T any](raw map[string]any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// Or returns c, or fallback when c was never set.
func (c *YAMLColor) Or(fallback color.Color) color.Color {
	if c == nil || c.Color == nil {
		return fallback
	}
	return c.Color
}
