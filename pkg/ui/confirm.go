// SPDX-License-Identifier: Apache-2.0
package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// Confirm asks a yes/no question. description may be empty.
func Confirm(title, description string) (bool, error) {
	var confirmed bool

	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed)
	if description != "" {
		field = field.Description(description)
	}

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return confirmed, nil
}

// TypedConfirm requires the user to type expected back, e.g. the
// identifier of the distribution about to be removed
func TypedConfirm(title, expected string) (bool, error) {
	var input string

	field := huh.NewInput().
		Title(title).
		Placeholder(expected).
		Value(&input).
		Validate(func(s string) error {
			if s != expected {
				return fmt.Errorf("type %s to confirm", expected)
			}
			return nil
		})

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return input == expected, nil
}
