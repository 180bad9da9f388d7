// Package script parses the textual command grammar used to drive mock
// services. The first whitespace-delimited token names a property or action
// (case-insensitive); the remaining tokens are its values.
package script

import (
	"fmt"
	"strconv"
	"strings"

	"avtopology/internal/models"
)

// Command is one parsed line.
type Command struct {
	Name string
	Args []string
}

// Parse splits a line into a Command. The name is lower-cased.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command: %w", models.ErrNotSupported)
	}
	return FromArgs(fields), nil
}

// FromArgs builds a Command from already split tokens. args must not be empty.
func FromArgs(args []string) Command {
	return Command{
		Name: strings.ToLower(args[0]),
		Args: args[1:],
	}
}

// Shift returns the command formed by the remaining arguments, used when a
// command routes to a nested target (device -> service -> property).
func (c Command) Shift() (Command, error) {
	if len(c.Args) == 0 {
		return Command{}, fmt.Errorf("%s: missing command: %w", c.Name, models.ErrNotSupported)
	}
	return FromArgs(c.Args), nil
}

// Unsupported returns the error for a command nothing recognised.
func Unsupported(c Command) error {
	return fmt.Errorf("command %q: %w", c.Name, models.ErrNotSupported)
}

func (c Command) arg() (string, error) {
	if len(c.Args) == 0 {
		return "", fmt.Errorf("%s: missing value", c.Name)
	}
	return c.Args[0], nil
}

// Value returns the first argument.
func (c Command) Value() (string, error) {
	return c.arg()
}

// Text joins all arguments with single spaces.
func (c Command) Text() string {
	return strings.Join(c.Args, " ")
}

func (c Command) Uint() (uint32, error) {
	s, err := c.arg()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.Name, err)
	}
	return uint32(v), nil
}

func (c Command) Int() (int32, error) {
	s, err := c.arg()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", c.Name, err)
	}
	return int32(v), nil
}

func (c Command) Bool() (bool, error) {
	s, err := c.arg()
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false, fmt.Errorf("%s: %w", c.Name, err)
	}
	return v, nil
}

// Uints parses every argument. An empty argument list yields an empty slice.
func (c Command) Uints() ([]uint32, error) {
	out := make([]uint32, 0, len(c.Args))
	for _, s := range c.Args {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}
