// Package prompts manages the text sent to the language model at each
// analysis stage: stored instruction overrides, the fixed output
// specifications, and the user prompt templates.
package prompts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prompt is a named instruction override for one stage. At most one
// prompt per stage is active.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// Validate requires a name, a known stage, and non-blank instructions.
func (c CreateCommand) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalid)
	case strings.TrimSpace(c.Instructions) == "":
		return fmt.Errorf("%w: instructions are required", ErrInvalid)
	}
	_, err := ParseStage(string(c.Stage))
	return err
}

// UpdateCommand replaces every editable field of an override.
type UpdateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

func (c UpdateCommand) Validate() error {
	return CreateCommand(c).Validate()
}

// Effective is the system prompt material in force for a stage. Override
// is nil when the built-in instructions apply.
type Effective struct {
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Spec         string  `json:"spec"`
	Override     *Prompt `json:"override"`
}
