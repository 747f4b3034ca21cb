package command

import (
	"strings"
)

// Field defines a positional command argument.
type Field struct {
	Name     string
	Prompt   string
	Required bool
	Choices  []string
}

// Command defines a REPL command binding.
type Command struct {
	Name    string
	Aliases []string
	Summary string
	Fields  []Field
	// Async commands are dispatched on a goroutine and report on completion.
	Async bool
}

// Usage renders "name <field> [field]" with choices spelled out.
func (c Command) Usage() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, field := range c.Fields {
		label := field.Name
		if len(field.Choices) > 0 {
			label = strings.Join(field.Choices, "|")
		}
		if field.Required {
			b.WriteString(" <" + label + ">")
		} else {
			b.WriteString(" [" + label + "]")
		}
	}
	return b.String()
}

// Invocation is a parsed command line.
type Invocation struct {
	Command Command
	Params  Params
}

// Arg returns the value bound to field name.
func (inv Invocation) Arg(name string) string {
	return inv.Params.Get(name)
}

// Missing lists required fields with no value yet.
func (inv Invocation) Missing() []Field {
	var missing []Field
	for _, field := range inv.Command.Fields {
		if field.Required && inv.Params.Get(field.Name) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Params holds parsed input params.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}
