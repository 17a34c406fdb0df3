package commands

import (
	"fmt"
	"strings"
)

// InputType represents the type of a command input parameter.
type InputType string

const (
	InputTypeString InputType = "string" // Text input (single word if rest=false, multi-word if rest=true)
	InputTypeNumber InputType = "number" // Integer
)

// InputSpec defines an input parameter that a command accepts from user input.
type InputSpec struct {
	Name     string    `json:"name"`
	Type     InputType `json:"type"`
	Required bool      `json:"required"`
	Rest     bool      `json:"rest"`    // If true, captures all remaining input
	Missing  string    `json:"missing"` // Shown instead of the generic error when a required input is absent
}

// Command defines a command loaded from JSON.
type Command struct {
	Handler     string         `json:"handler"`
	Aliases     []string       `json:"aliases,omitempty"`
	Category    string         `json:"category,omitempty"`
	Description string         `json:"description,omitempty"`
	Config      map[string]any `json:"config"` // Config passed to handler, may contain templates
	Inputs      []InputSpec    `json:"inputs"`
}

func (c *Command) Validate() error {
	if c.Handler == "" {
		return fmt.Errorf("command handler not set")
	}

	for i, input := range c.Inputs {
		if input.Name == "" {
			return fmt.Errorf("input %d: name is required", i)
		}
		if input.Type == "" {
			return fmt.Errorf("input %q: type is required", input.Name)
		}
		switch input.Type {
		case InputTypeString, InputTypeNumber:
		default:
			return fmt.Errorf("input %q: unknown type %q", input.Name, input.Type)
		}
		// Only the last input can have rest=true
		if input.Rest && i != len(c.Inputs)-1 {
			return fmt.Errorf("input %q: only the last input can have rest=true", input.Name)
		}
	}

	for _, alias := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return fmt.Errorf("aliases cannot be blank")
		}
	}

	for key, v := range c.Config {
		if _, ok := v.(string); !ok {
			return fmt.Errorf("config %q: must be a string", key)
		}
	}

	return nil
}

// Usage renders the command line a player would type.
func (c *Command) Usage(name string) string {
	parts := []string{name}
	for _, input := range c.Inputs {
		if input.Required {
			parts = append(parts, fmt.Sprintf("<%s>", input.Name))
		} else {
			parts = append(parts, fmt.Sprintf("[%s]", input.Name))
		}
	}
	return strings.Join(parts, " ")
}
