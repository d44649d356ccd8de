package prompts

import (
	"fmt"
	"slices"
)

// Stage names one step of the analysis pipeline an override can target.
type Stage string

const (
	StageClassify     Stage = "classify"
	StageExtract      Stage = "extract"
	StageHumanFactors Stage = "human_factors"
	StageDraft        Stage = "draft"
)

// builtin is the system prompt material shipped for a stage. Overrides
// replace instructions only; the output spec is fixed.
type builtin struct {
	instructions string
	spec         string
}

var builtins = map[Stage]builtin{
	StageClassify:     {classifyInstructions, classifySpec},
	StageExtract:      {extractInstructions, extractSpec},
	StageHumanFactors: {humanFactorsInstructions, humanFactorsSpec},
	StageDraft:        {draftInstructions, draftSpec},
}

// Stages lists the pipeline stages in execution order.
func Stages() []Stage {
	return []Stage{StageClassify, StageExtract, StageHumanFactors, StageDraft}
}

func ParseStage(s string) (Stage, error) {
	if st := Stage(s); slices.Contains(Stages(), st) {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

// UnmarshalText rejects unknown stages while decoding commands.
func (s *Stage) UnmarshalText(text []byte) error {
	v, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Instructions returns the built-in system instructions for stage.
func Instructions(stage Stage) (string, error) {
	b, ok := builtins[stage]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	return b.instructions, nil
}

// Spec returns the output format the model must follow for stage.
func Spec(stage Stage) (string, error) {
	b, ok := builtins[stage]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, stage)
	}
	return b.spec, nil
}
