package ui

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/snapview/pkg/workspace"

	"github.com/charmbracelet/huh"
)

// ErrPickerCanceled is returned when the user leaves the picker.
var ErrPickerCanceled = errors.New("snapshot selection canceled")

// pickerOptions lists the readable entries in scan order.
func pickerOptions(entries []workspace.Entry) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(entries))
	for _, e := range entries {
		if e.Err != nil {
			continue
		}
		opts = append(opts, huh.NewOption(e.Describe(), e.Path))
	}
	return opts
}

// PickSnapshot asks the user to choose one of entries and returns its
// path. A single readable entry is returned without prompting. Accessible
// mode replaces the TUI form with plain prompts.
func PickSnapshot(dir string, entries []workspace.Entry, accessible bool) (string, error) {
	opts := pickerOptions(entries)
	switch len(opts) {
	case 0:
		return "", fmt.Errorf("%s: %w", dir, workspace.ErrNoSnapshots)
	case 1:
		return opts[0].Value, nil
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select a snapshot").
				Description(dir).
				Options(opts...).
				Value(&choice),
		),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", ErrPickerCanceled
		}
		return "", fmt.Errorf("snapshot picker: %w", err)
	}
	return choice, nil
}
