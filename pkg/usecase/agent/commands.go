package agent

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/rosetta/pkg/model"
)

var personaStyles = map[string]string{
	"academic": "scholarly, precise mode",
	"casual":   "friendly, conversational mode",
	"mystical": "ethereal, poetic mode (default)",
}

const helpText = `Rosetta Stone Agent Commands:

Persona Control:
  /persona           Show current persona and available options
  /persona academic  Switch to scholarly, precise mode
  /persona casual    Switch to friendly, conversational mode
  /persona mystical  Switch to ethereal, poetic mode (default)

General:
  /help              Show this help message

Just ask me anything about:
  - Ancient Egyptian history and culture
  - Hieroglyph translation and interpretation
  - Historical timelines and events
  - Archaeological discoveries

I remember our conversations and adapt to your preferred style.`

// handleCommand processes slash commands. It reports whether the input
// was a command.
func (x *Agent) handleCommand(input string) (*model.Response, bool) {
	trimmed := strings.TrimSpace(input)
	lower := strings.ToLower(trimmed)

	switch {
	case strings.HasPrefix(lower, "/persona"):
		return x.handlePersona(trimmed), true
	case lower == "/help" || lower == "help":
		return &model.Response{
			Reply:      helpText,
			Confidence: 1.0,
			Metadata:   map[string]any{"command": "help"},
		}, true
	}
	return nil, false
}

func (x *Agent) handlePersona(input string) *model.Response {
	parts := strings.Fields(input)

	var reply string
	switch len(parts) {
	case 1:
		current := x.memory.InteractionStyle()
		if current == "" {
			current = "unknown"
		}
		var options []string
		for _, style := range []string{"academic", "casual", "mystical"} {
			options = append(options, fmt.Sprintf("  %s - %s", style, personaStyles[style]))
		}
		reply = fmt.Sprintf("Current persona: %s\nAvailable personas:\n%s\nUsage: /persona [academic/casual/mystical]",
			current, strings.Join(options, "\n"))

	case 2:
		style := strings.ToLower(parts[1])
		if _, ok := personaStyles[style]; !ok {
			reply = "Usage: /persona [academic/casual/mystical]"
			break
		}
		if x.memory.SetInteractionStyle(style) {
			reply = fmt.Sprintf("Very well. I shall speak in %s from now on.", personaStyles[style])
		} else {
			reply = "No session active. Start a conversation first."
		}

	default:
		reply = "Usage: /persona [academic/casual/mystical]"
	}

	return &model.Response{
		Reply:      reply,
		Confidence: 1.0,
		Metadata:   map[string]any{"command": "persona_switch"},
	}
}
