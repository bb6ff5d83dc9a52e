package agent_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/persona"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/usecase/agent"
	"google.golang.org/genai"
)

// captureGemini records the prompt it was given and returns a fixed reply
type captureGemini struct {
	prompt string
}

func (x *captureGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	for _, c := range contents {
		for _, p := range c.Parts {
			x.prompt += p.Text
		}
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Role: genai.RoleModel,
					Parts: []*genai.Part{
						{Text: "The stone speaks."},
					},
				},
			},
		},
	}, nil
}

func TestSynthesizePromptStaysValidUTF8(t *testing.T) {
	ctx := context.Background()
	machine, err := persona.New()
	gt.NoError(t, err)

	llm := &captureGemini{}
	syn := agent.NewSynthesizer(llm, machine)

	// Long enough to be cut for the prompt, with the cut point landing
	// inside a four-byte rune
	excerpt := "x" + strings.Repeat("𓂀", 500)
	outcomes := []tool.Outcome{
		{Tool: tool.NameEgypt, Result: excerpt, Success: true},
	}
	rr := &model.ReasoningResult{
		ReasoningType: model.ReasoningToolSearch,
		Strategy:      "share gathered knowledge",
	}

	reply, err := syn.Synthesize(ctx, "what is the eye of horus", rr, outcomes, &memory.Context{})
	gt.NoError(t, err)
	gt.Equal(t, reply, "The stone speaks.")

	gt.True(t, utf8.ValidString(llm.prompt))
	gt.S(t, llm.prompt).Contains("𓂀")
}
