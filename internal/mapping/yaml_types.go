package mapping

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- CaptureList YAML methods ---

// UnmarshalYAML implements yaml.Unmarshaler for CaptureList.
func (c *CaptureList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		// Single string: "minTotal"
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}

		if name == "" {
			*c = nil
			return nil
		}

		*c = CaptureList{{Name: name}}

		return nil

	case yaml.MappingNode:
		// Typed map: {minTotal: int64, limit: int}
		captures, err := parseCapturesFromMap(node)
		if err != nil {
			return err
		}

		*c = captures

		return nil

	case yaml.SequenceNode:
		var captures CaptureList

		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				var name string
				if err := item.Decode(&name); err != nil {
					return err
				}

				captures = append(captures, Capture{Name: name})

			case yaml.MappingNode:
				typed, err := parseCapturesFromMap(item)
				if err != nil {
					return err
				}

				captures = append(captures, typed...)

			default:
				return fmt.Errorf("line %d: expected capture name or {name: type}, got %v", item.Line, item.Kind)
			}
		}

		*c = captures

		return nil

	default:
		return fmt.Errorf("line %d: expected string, map, or list for capture, got %v", node.Line, node.Kind)
	}
}

// parseCapturesFromMap parses {name: type} pairs in document order.
func parseCapturesFromMap(node *yaml.Node) (CaptureList, error) {
	if len(node.Content)%2 != 0 {
		return nil, errors.New("malformed capture map")
	}

	captures := make(CaptureList, 0, len(node.Content)/2)

	for i := 0; i < len(node.Content); i += 2 {
		var name, typ string

		if err := node.Content[i].Decode(&name); err != nil {
			return nil, fmt.Errorf("invalid capture name: %w", err)
		}

		if err := node.Content[i+1].Decode(&typ); err != nil {
			return nil, fmt.Errorf("invalid type of capture %s: %w", name, err)
		}

		captures = append(captures, Capture{Name: name, Type: typ})
	}

	return captures, nil
}

// MarshalYAML implements custom YAML marshaling for CaptureList.
// Outputs:
//   - Single string if length is 1 and untyped
//   - Array otherwise, typed items as {name: type}
func (c CaptureList) MarshalYAML() (any, error) {
	if len(c) == 0 {
		return nil, nil
	}

	if len(c) == 1 && c[0].Type == "" {
		return c[0].Name, nil
	}

	result := make([]any, len(c))

	for i, capture := range c {
		if capture.Type == "" {
			result[i] = capture.Name
		} else {
			result[i] = map[string]string{capture.Name: capture.Type}
		}
	}

	return result, nil
}

// --- StringArray YAML methods ---

// UnmarshalYAML implements yaml.Unmarshaler for StringArray.
func (s *StringArray) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var multi []string
	if err := unmarshal(&multi); err == nil {
		*s = multi
		return nil
	}

	return errors.New("expected string or list of strings")
}
