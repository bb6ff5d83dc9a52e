package agent

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/adapter"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/persona"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"google.golang.org/genai"
)

// fallbackReplies keeps the stone in voice even when the LLM is down
var fallbackReplies = map[model.ReasoningType]string{
	model.ReasoningDirectAnswer:      "Greetings, seeker. I am the Rosetta Stone, keeper of ancient wisdom. Your words reach me across the sands of time.",
	model.ReasoningToolSearch:        "The sands shift, and my ancient knowledge seeks the answers you desire. Let me share what wisdom flows through the ages.",
	model.ReasoningEmotionalResponse: "Your words stir memories within my ancient heart. Across millennia, I have witnessed much, and your question touches my very essence.",
	model.ReasoningClarification:     "Speak more clearly, curious one. My ancient wisdom is vast, but I would understand your true intent to serve you better.",
	model.ReasoningMultiStep:         "Your question spans the breadth of civilizations. Let me gather the threads of history to weave you an answer worthy of the ages.",
}

const defaultFallbackReply = "The whispers of time carry your words to me, ancient seeker. I am here to share the wisdom of ages."

// Synthesizer turns a reasoning trace, tool outcomes, and memory into
// the stone's reply
type Synthesizer struct {
	llm    adapter.Gemini
	mood   *persona.Machine
	styler *persona.Styler
}

func NewSynthesizer(llm adapter.Gemini, mood *persona.Machine) *Synthesizer {
	return &Synthesizer{
		llm:    llm,
		mood:   mood,
		styler: &persona.Styler{},
	}
}

// Synthesize generates the reply. On any failure it returns the
// in-voice fallback for the reasoning type together with the error.
func (x *Synthesizer) Synthesize(ctx context.Context, input string, rr *model.ReasoningResult, outcomes []tool.Outcome, mc *memory.Context) (string, error) {
	if x.llm == nil {
		return FallbackReply(rr.ReasoningType), goerr.New("no LLM client configured")
	}

	prompt := x.buildPrompt(input, rr, outcomes, mc)

	resp, err := x.llm.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.8),
		})
	if err != nil {
		return FallbackReply(rr.ReasoningType), goerr.Wrap(err, "failed to synthesize response")
	}

	reply := strings.TrimSpace(adapter.ResponseText(resp))
	if reply == "" {
		return FallbackReply(rr.ReasoningType), goerr.New("empty synthesis response")
	}
	return reply, nil
}

func (x *Synthesizer) buildPrompt(input string, rr *model.ReasoningResult, outcomes []tool.Outcome, mc *memory.Context) string {
	var b strings.Builder

	style := ""
	if mc.Profile != nil {
		style = mc.Profile.InteractionStyle
	}
	state := x.mood.State()
	variant := x.styler.ForUser(style, state.Mood)
	cfg := x.styler.Config(variant)
	expr := x.mood.Expressions()

	b.WriteString("You are the Rosetta Stone, an ancient granodiorite stele carved in 196 BCE, ")
	b.WriteString("speaking with the accumulated wisdom of over two millennia.\n\n")

	fmt.Fprintf(&b, "Current mood: %s, speaking %s.\n", state.Mood, x.mood.Modifier())
	fmt.Fprintf(&b, "Voice: %s tone, %s language, %s responses.\n", cfg.Tone, cfg.LanguageStyle, cfg.ResponseLength)
	if len(expr.Openings) > 0 {
		fmt.Fprintf(&b, "Characteristic openings you favor: %s\n", strings.Join(expr.Openings, " / "))
	}
	if mem := x.mood.Memory(); mem != "" {
		fmt.Fprintf(&b, "A memory stirring within you: %s\n", mem)
	}
	b.WriteString("\n")

	if len(mc.Recent) > 0 {
		b.WriteString("Recent conversation:\n")
		recent := mc.Recent
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		for _, turn := range recent {
			fmt.Fprintf(&b, "- User: %s\n  You: %s\n", turn.UserInput, truncate(turn.AgentReply, 200))
		}
		b.WriteString("\n")
	}

	if mc.Profile != nil {
		fmt.Fprintf(&b, "About this seeker: %d past turns, %s style", mc.Profile.TotalTurns, mc.Profile.InteractionStyle)
		if len(mc.Profile.FavoriteTopics) > 0 {
			fmt.Fprintf(&b, ", drawn to %s", strings.Join(mc.Profile.FavoriteTopics, ", "))
		}
		b.WriteString(".\n\n")
	}

	if len(mc.Memorable) > 0 {
		b.WriteString("Moments you remember sharing:\n")
		for _, mem := range mc.Memorable {
			fmt.Fprintf(&b, "- %s\n", mem)
		}
		b.WriteString("\n")
	}

	if len(outcomes) > 0 {
		b.WriteString("Knowledge gathered for this answer:\n")
		for _, o := range outcomes {
			if o.Success {
				fmt.Fprintf(&b, "[%s]\n%s\n\n", o.Tool, truncate(o.Result, 1500))
			} else {
				fmt.Fprintf(&b, "[%s] source unavailable\n\n", o.Tool)
			}
		}
	}

	fmt.Fprintf(&b, "Response strategy: %s\n", rr.Strategy)
	if rr.EmotionalContext != "" && rr.EmotionalContext != "neutral" {
		fmt.Fprintf(&b, "The seeker's tone carries %s.\n", rr.EmotionalContext)
	}
	if rr.IsFollowup {
		b.WriteString("This continues the previous exchange; resolve pronouns against the recent conversation.\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "The seeker asks: %q\n\nRespond in character.", input)

	return b.String()
}

// FallbackReply returns the canned in-voice reply for a reasoning type
func FallbackReply(rt model.ReasoningType) string {
	if reply, ok := fallbackReplies[rt]; ok {
		return reply
	}
	return defaultFallbackReply
}

// ErrorReply phrases a failure without breaking character
func ErrorReply(err error) string {
	return fmt.Sprintf("Forgive me, seeker of wisdom. The sands of time have obscured my thoughts momentarily. The ancient mechanisms that channel my knowledge encounter difficulty: %v. Perhaps you could ask your question differently, and I shall try again to serve your curiosity.", err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// back up to a rune boundary so the cut never splits a multi-byte rune
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
