package api

import (
	"fmt"
	"strings"
)

// Command is the definitions of metadata for a command.
type Command struct {
	ID      int
	User    string
	Content string
}

// NewCommand creates a new command from the given arguments.
func NewCommand(id int, user string, args ...string) Command {
	return Command{
		ID:      id,
		User:    user,
		Content: strings.Join(args, " "),
	}
}

// Text returns the normalised content of the command.
func (c Command) Text() string {
	return strings.ToLower(strings.TrimSpace(c.Content))
}

// Validator is a validation function that checks the string for the given type.
type Validator func(string) error

// Validate validates the command with the given arguments.
func (c Command) Validate(user map[string]struct{}, exe map[string]struct{}, args ...Validator) error {
	if _, ok := user[c.User]; !ok && len(user) > 0 {
		return fmt.Errorf("command cannot be executed: %s", c.User)
	}
	cmd := strings.Fields(c.Content)
	if len(cmd) == 0 {
		return fmt.Errorf("cannot parse empty command: %s", c.Content)
	}
	exec := cmd[0]
	if _, ok := exe[exec]; !ok && len(exe) > 0 {
		return fmt.Errorf("unknown command: %s", exec)
	}

	options := cmd[1:]
	if len(args) > len(options) {
		return fmt.Errorf("not enough arguments: %d of %d", len(options), len(args))
	}

	for i, arg := range args {
		err := arg(options[i])
		if err != nil {
			return fmt.Errorf("error for argument '%s' at %d: %w", options[i], i, err)
		}
	}
	return nil
}

// Any is a predefined validator for any value.
func Any() map[string]struct{} {
	return map[string]struct{}{}
}

// Contains is a predefined validator for the argument being one of the given values.
func Contains(arg ...string) map[string]struct{} {
	args := make(map[string]struct{})
	for _, a := range arg {
		args[a] = struct{}{}
	}
	return args
}

// OneOf is a predefined Validator checking that the value is on of the provided arguments.
// it passes the reference to the value to the given interface argument.
func OneOf(v *string, args ...string) Validator {
	return func(s string) error {
		var isOneOf bool
		for _, arg := range args {
			if arg == s {
				isOneOf = true
			}
		}
		if !isOneOf {
			return fmt.Errorf("must be one of %v", args)
		}
		if v != nil {
			*v = s
		}
		return nil
	}
}
