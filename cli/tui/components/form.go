package components

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Option pairs a value with its display label.
type Option struct {
	Key   string
	Label string
}

// SelectOne prompts for a single choice and returns the chosen key.
func SelectOne(title string, options []Option, current string) (string, error) {
	selected := current
	fields := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		fields = append(fields, huh.NewOption(opt.Label, opt.Key))
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(fields...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("selection canceled: %w", err)
	}
	return selected, nil
}

// SelectMany prompts for zero or more choices and returns the chosen
// keys.
func SelectMany(title string, options []Option, current []string) ([]string, error) {
	selected := append([]string{}, current...)
	fields := make([]huh.Option[string], 0, len(options))
	for _, opt := range options {
		fields = append(fields, huh.NewOption(opt.Label, opt.Key))
	}
	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title(title).
			Options(fields...).
			Value(&selected),
	))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection canceled: %w", err)
	}
	return selected, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(title string) (bool, error) {
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("confirmation canceled: %w", err)
	}
	return confirmed, nil
}
