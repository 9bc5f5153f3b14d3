package notifier

import "strings"

// Message is a rendered notification ready for transport.
type Message struct {
	Subject    string
	Greeting   string
	Lines      []string
	ActionText string
	ActionURL  string
}

// Body renders the message as plain text.
func (m Message) Body() string {
	var b strings.Builder
	if m.Greeting != "" {
		b.WriteString(m.Greeting)
		b.WriteString("\n\n")
	}
	for _, line := range m.Lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.ActionText != "" && m.ActionURL != "" {
		b.WriteString("\n")
		b.WriteString(m.ActionText)
		b.WriteString(": ")
		b.WriteString(m.ActionURL)
		b.WriteString("\n")
	}
	return b.String()
}
