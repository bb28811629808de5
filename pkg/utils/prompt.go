package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cast"

	"github.com/picogrid/reionsim/pkg/params"
)

// SkipPromptsEnv makes PromptForFields answer every prompt with its default.
const SkipPromptsEnv = "REIONSIM_SKIP_PROMPTS"

// PromptForFields prompts the user for every field and returns the answers
// as options. Fields left empty whose default is derived are omitted.
func PromptForFields(fields []params.Field) (params.Options, error) {
	result := params.Options{}
	skip := os.Getenv(SkipPromptsEnv) == "true"

	for _, field := range fields {
		if skip {
			if field.Default != nil {
				result[field.Name] = field.Default
			}
			continue
		}

		value, set, err := promptForField(field)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", field.Name, err)
		}
		if set {
			result[field.Name] = value
		}
	}

	return result, nil
}

// promptForField prompts for a single field
func promptForField(field params.Field) (interface{}, bool, error) {
	message := fieldMessage(field)

	switch field.Type {
	case params.TypeBoolean:
		prompt := &survey.Confirm{
			Message: message,
			Default: cast.ToBool(field.Default),
		}
		var result bool
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, false, err
		}
		return result, true, nil

	case params.TypeChoice:
		prompt := &survey.Select{
			Message: message,
			Options: field.Options,
			Default: DefaultString(field),
		}
		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return nil, false, err
		}
		return result, true, nil

	default:
		prompt := &survey.Input{
			Message: message,
			Default: DefaultString(field),
		}
		var result string
		validator := func(val interface{}) error {
			_, _, err := ParseAnswer(field, cast.ToString(val))
			return err
		}
		if err := survey.AskOne(prompt, &result, survey.WithValidator(validator)); err != nil {
			return nil, false, err
		}
		return ParseAnswer(field, result)
	}
}

func fieldMessage(field params.Field) string {
	message := field.Name
	if field.Description != "" {
		message += ": " + field.Description
	}
	if field.Log {
		message += " (log10)"
	}
	return message
}

// DefaultString renders the default of field for a prompt. Choice defaults
// are shown by name; derived defaults are empty.
func DefaultString(field params.Field) string {
	if field.Default == nil {
		return ""
	}
	if field.Type == params.TypeChoice {
		code := cast.ToInt(field.Default)
		if code >= 0 && code < len(field.Options) {
			return field.Options[code]
		}
	}
	return fmt.Sprintf("%v", field.Default)
}

// ParseAnswer converts a typed answer to the field's value type. It reports
// false for an empty answer to a field whose default is derived.
func ParseAnswer(field params.Field, answer string) (interface{}, bool, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		if field.Default == nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("a value is required")
	}

	switch field.Type {
	case params.TypeInteger:
		value, err := cast.ToIntE(answer)
		if err != nil {
			return nil, false, fmt.Errorf("invalid integer: %w", err)
		}
		return value, true, nil
	case params.TypeFloat:
		value, err := cast.ToFloat64E(answer)
		if err != nil {
			return nil, false, fmt.Errorf("invalid number: %w", err)
		}
		return value, true, nil
	case params.TypeBoolean:
		value, err := cast.ToBoolE(answer)
		if err != nil {
			return nil, false, fmt.Errorf("invalid boolean: %w", err)
		}
		return value, true, nil
	default:
		return answer, true, nil
	}
}
