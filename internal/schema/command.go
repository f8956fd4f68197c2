package schema

import (
	"maps"
	"slices"
	"strings"
)

// Command is the structured form of a command specification.
type Command struct {
	Args []string          `json:"args"`
	Dir  string            `json:"dir,omitempty"`
	Env  map[string]string `json:"env,omitempty"`
}

// Resolve returns the command itself; a structured command is never re-tokenized.
func (c Command) Resolve() Command {
	return c
}

// Name returns the executable part of the command, or "" if there is none.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}

	return c.Args[0]
}

func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// EnvKeys returns the keys of the environment mapping in sorted order.
func (c Command) EnvKeys() []string {
	return slices.Sorted(maps.Keys(c.Env))
}

// Environ returns the environment mapping as sorted KEY=value pairs.
func (c Command) Environ() []string {
	env := make([]string, 0, len(c.Env))
	for _, k := range c.EnvKeys() {
		env = append(env, k+"="+c.Env[k])
	}

	return env
}

// Clone returns a deep copy of the command.
func (c Command) Clone() Command {
	return Command{
		Args: slices.Clone(c.Args),
		Dir:  c.Dir,
		Env:  maps.Clone(c.Env),
	}
}
