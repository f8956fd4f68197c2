package command

import (
	"unicode"

	"github.com/desertwitch/execwalk/internal/schema"
)

// Specifier is a command specification in either of its forms: a raw
// [Line] or a structured [schema.Command].
type Specifier interface {
	Resolve() schema.Command
}

var (
	_ Specifier = Line("")
	_ Specifier = schema.Command{}
)

// Line is the raw string form of a command.
type Line string

// Resolve tokenizes the line into the structured form.
func (l Line) Resolve() schema.Command {
	return schema.Command{Args: Tokenize(string(l))}
}

// Tokenize splits a command line into arguments. A token is either a run of
// characters that are neither whitespace nor a double quote, or the contents
// of a double-quoted run with the quotes removed. There is no escaping and
// single quotes carry no meaning. An unterminated quote takes the rest of the
// line as one token.
func Tokenize(s string) []string {
	tokens := []string{}
	runes := []rune(s)

	for i := 0; i < len(runes); {
		switch r := runes[i]; {
		case unicode.IsSpace(r):
			i++

		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			tokens = append(tokens, string(runes[i+1:j]))
			i = j + 1

		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '"' {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		}
	}

	return tokens
}
