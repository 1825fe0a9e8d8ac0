package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

type prompter struct {
	stdin  io.Reader
	stdout io.Writer
}

func newPrompter(stdin io.Reader, stdout io.Writer) *prompter {
	return &prompter{stdin: stdin, stdout: stdout}
}

func (p *prompter) runField(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithShowHelp(false).
		WithInput(p.stdin).
		WithOutput(p.stdout)
	return form.Run()
}

func (p *prompter) optional(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value)
	if err := p.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *prompter) required(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value).
		Validate(func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("input required")
			}
			return nil
		})
	if err := p.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *prompter) requiredSecret(prompt string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(prompt).
		Prompt("> ").
		Value(&value).
		EchoMode(huh.EchoModePassword).
		Validate(func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("input required")
			}
			return nil
		})
	if err := p.runField(field); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
