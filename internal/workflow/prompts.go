package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JaimeStill/inquest/internal/prompts"
)

var builtin = prompts.NewResolver("", slog.New(slog.DiscardHandler))

// Composed is the system and user prompt for one stage call. Override
// names the stored instructions used in place of the built-in ones.
type Composed struct {
	System   string
	User     string
	Override string
}

// ComposePrompt builds the system prompt from the stage instructions and
// its fixed output specification, and renders the user prompt template
// with vars.
func ComposePrompt(
	ctx context.Context,
	rt *Runtime,
	stage prompts.Stage,
	vars map[string]string,
) (Composed, error) {
	var c Composed

	instructions, err := prompts.Instructions(stage)
	if err != nil {
		return c, fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	if rt.Prompts != nil {
		p, err := rt.Prompts.Active(ctx, stage)
		switch {
		case err == nil:
			instructions = p.Instructions
			c.Override = p.Name
		case !errors.Is(err, prompts.ErrNotFound):
			return c, fmt.Errorf("load override for %s: %w", stage, err)
		}
	}

	spec, err := prompts.Spec(stage)
	if err != nil {
		return c, fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	c.System = sb.String()

	templates := rt.Templates
	if templates == nil {
		templates = builtin
	}
	c.User, err = templates.Render(stage, vars)
	if err != nil {
		return c, fmt.Errorf("render template for %s: %w", stage, err)
	}

	return c, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
