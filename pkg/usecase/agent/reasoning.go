package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/adapter"
	"github.com/m-mizutani/rosetta/pkg/memory"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/utils/logging"
	"google.golang.org/genai"
)

// judgement is the structured output of the intent classification call
type judgement struct {
	Intent              string   `json:"intent"`
	TopicCategory       string   `json:"topic_category"`
	Specificity         string   `json:"specificity"`
	EmotionalTone       string   `json:"emotional_tone"`
	ComplexityLevel     string   `json:"complexity_level"`
	RequiresFactualInfo bool     `json:"requires_factual_info"`
	RequiresPersonal    bool     `json:"requires_personal_response"`
	KeyEntities         []string `json:"key_entities"`
	TimePeriod          string   `json:"time_period"`
	QuestionType        string   `json:"question_type"`
}

var judgementSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"intent": {
			Type: genai.TypeString,
			Enum: []string{"question", "greeting", "request", "storytelling", "other"},
		},
		"topic_category": {
			Type: genai.TypeString,
			Enum: []string{"ancient_egypt", "history", "personal", "general", "other"},
		},
		"specificity": {
			Type: genai.TypeString,
			Enum: []string{"vague", "specific", "very_specific"},
		},
		"emotional_tone": {
			Type: genai.TypeString,
			Enum: []string{"curious", "respectful", "excited", "casual", "formal"},
		},
		"complexity_level": {
			Type: genai.TypeString,
			Enum: []string{"simple", "moderate", "complex"},
		},
		"requires_factual_info":      {Type: genai.TypeBoolean},
		"requires_personal_response": {Type: genai.TypeBoolean},
		"key_entities": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"time_period": {
			Type: genai.TypeString,
			Enum: []string{"ancient", "modern", "unspecified"},
		},
		"question_type": {
			Type: genai.TypeString,
			Enum: []string{"what", "when", "where", "who", "why", "how", "none"},
		},
	},
	Required: []string{"intent", "specificity", "complexity_level",
		"requires_factual_info", "requires_personal_response"},
}

var (
	factualRe  = regexp.MustCompile(`\b(what (is|was|are|were)|when (did|was|were)|where (is|was|were)|who (is|was|were)|how (did|was|were))\b`)
	personalRe = regexp.MustCompile(`\b(tell me about yourself|who are you|what are you|your (experience|memory|feeling)|do you remember|have you seen|what do you think)\b`)
	greetingRe = regexp.MustCompile(`\b(hello|hi|greetings|who are you)\b`)

	wikipediaRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(who is|who was|tell me about|what is|what was)\b`),
		regexp.MustCompile(`\b(pharaoh|egypt|ancient|historical|dynasty|empire)\b`),
		regexp.MustCompile(`\b(when did|what happened|how did|where is|where was)\b`),
		regexp.MustCompile(`\b\d{1,4}\s*(bce|ce|bc|ad)\b`),
	}
)

// emotionalIndicators maps an emotional context label to the cues that
// reveal it. First match wins.
var emotionalIndicators = []struct {
	label      string
	indicators []string
	adjust     map[string]string
}{
	{
		label:      "excitement",
		indicators: []string{"amazing", "incredible", "wow", "fantastic", "!"},
		adjust: map[string]string{
			"energy_level":         "high",
			"descriptive_language": "vivid",
			"metaphor_frequency":   "increased",
		},
	},
	{
		label:      "curiosity",
		indicators: []string{"wonder", "curious", "how", "why", "what if", "?"},
		adjust: map[string]string{
			"teaching_mode": "active",
			"detail_level":  "high",
			"encouragement": "strong",
		},
	},
	{
		label:      "respect",
		indicators: []string{"honored", "please", "thank you", "grateful"},
		adjust: map[string]string{
			"formality":      "elevated",
			"wisdom_sharing": "generous",
			"blessing_tone":  "present",
		},
	},
	{
		label:      "sadness",
		indicators: []string{"sad", "tragic", "unfortunately", "lost", "destroyed"},
		adjust: map[string]string{
			"comfort_mode":   "active",
			"empathy":        "high",
			"hope_injection": "gentle",
		},
	},
	{
		label:      "wonder",
		indicators: []string{"mystical", "magical", "ancient", "mysterious"},
		adjust: map[string]string{
			"mystical_language":    "enhanced",
			"sensory_descriptions": "rich",
			"ancient_wisdom":       "profound",
		},
	},
}

// Engine turns user input into a reasoning trace: what kind of question
// this is, which tools to call, and how to frame the answer. Analyze
// never fails; when the classifier is unreachable a heuristic judgement
// takes over.
type Engine struct {
	llm adapter.Gemini
}

func NewEngine(llm adapter.Gemini) *Engine {
	return &Engine{llm: llm}
}

// Analyze classifies the input and plans the response
func (x *Engine) Analyze(ctx context.Context, input string, mc *memory.Context) *model.ReasoningResult {
	jd := x.classify(ctx, input, mc)
	followup, hasMemory := mergeMemory(jd, mc, input)

	rt := reasoningType(input, jd)
	decision, tools := toolRequirements(input, rt, jd, mc, followup)
	steps := reasoningSteps(rt, tools, mc)
	emotion, adjustments := emotionalContext(input)
	strategy := strategyFor(rt, emotion, tools)

	return &model.ReasoningResult{
		ID:                 model.NewTraceID(),
		ReasoningType:      rt,
		ToolDecision:       decision,
		ToolsToUse:         tools,
		Steps:              steps,
		Strategy:           strategy,
		Confidence:         confidence(steps, mc),
		Complexity:         complexity(steps, tools),
		EmotionalContext:   emotion,
		PersonaAdjustments: adjustments,
		IsFollowup:         followup,
		HasPersonalMemory:  hasMemory,
		KeyEntities:        jd.KeyEntities,
	}
}

func (x *Engine) classify(ctx context.Context, input string, mc *memory.Context) *judgement {
	jd, err := x.classifyLLM(ctx, input, mc)
	if err != nil {
		logging.From(ctx).Warn("intent classification failed, using heuristics",
			"error", err)
		return heuristicJudgement(input)
	}
	return jd
}

func (x *Engine) classifyLLM(ctx context.Context, input string, mc *memory.Context) (*judgement, error) {
	if x.llm == nil {
		return nil, goerr.New("no LLM client configured")
	}

	style := "unknown"
	if mc.Profile != nil {
		style = mc.Profile.InteractionStyle
	}

	prompt := fmt.Sprintf(`Analyze this user input addressed to the Rosetta Stone.

User Input: %q

Context:
- Recent topics: %s
- User interaction style: %s

Classify the intent, topic, specificity, tone, and complexity, whether
factual information or a personal response is required, the key named
entities, the time period, and the question type.`,
		input, strings.Join(mc.Topics, ", "), style)

	resp, err := x.llm.GenerateContent(ctx,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   judgementSchema,
		})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify input")
	}

	raw := adapter.ResponseText(resp)
	if raw == "" {
		return nil, goerr.New("empty classification response")
	}

	var jd judgement
	if err := json.Unmarshal([]byte(raw), &jd); err != nil {
		return nil, goerr.Wrap(err, "failed to parse classification",
			goerr.V("response", raw))
	}
	return &jd, nil
}

func heuristicJudgement(input string) *judgement {
	jd := &judgement{
		Intent:              "question",
		TopicCategory:       "general",
		Specificity:         "specific",
		EmotionalTone:       "curious",
		ComplexityLevel:     "moderate",
		RequiresFactualInfo: true,
		TimePeriod:          "unspecified",
		QuestionType:        "what",
	}

	inputLower := strings.ToLower(input)
	switch {
	case greetingRe.MatchString(inputLower):
		jd.Intent = "greeting"
		jd.RequiresFactualInfo = false
		jd.ComplexityLevel = "simple"
		jd.QuestionType = "none"
	case personalRe.MatchString(inputLower):
		jd.TopicCategory = "personal"
		jd.RequiresFactualInfo = false
		jd.RequiresPersonal = true
	case !factualRe.MatchString(inputLower) && len(strings.Fields(input)) < 3:
		jd.Specificity = "vague"
		jd.RequiresFactualInfo = false
	}
	return jd
}

// mergeMemory folds the user profile and ledger into the judgement. It
// reports whether the input looks like a follow-up and whether the
// ledger holds a personal memory of the subject.
func mergeMemory(jd *judgement, mc *memory.Context, input string) (followup bool, hasMemory bool) {
	if mc.Profile != nil {
		switch mc.Profile.InteractionStyle {
		case "academic":
			jd.ComplexityLevel = "complex"
		case "casual":
			jd.ComplexityLevel = "simple"
		}
	}

	inputLower := strings.ToLower(input)
	if len(mc.Recent) > 0 {
		for _, marker := range []string{"more", "tell me more", "continue", "also", "what about"} {
			if strings.Contains(inputLower, marker) {
				followup = true
				break
			}
		}
	}

	if len(mc.Memorable) > 0 {
		for _, kw := range []string{"egypt", "ptolemy", "hieroglyph", "ancient"} {
			if strings.Contains(inputLower, kw) {
				hasMemory = true
				break
			}
		}
	}
	return followup, hasMemory
}

// reasoningType picks the response mode. Factual needs win over
// everything else so that questions about facts always reach a tool.
func reasoningType(input string, jd *judgement) model.ReasoningType {
	if jd.RequiresFactualInfo {
		if jd.ComplexityLevel == "complex" {
			return model.ReasoningMultiStep
		}
		return model.ReasoningToolSearch
	}

	if jd.RequiresPersonal {
		return model.ReasoningEmotionalResponse
	}

	if jd.Intent == "greeting" || greetingRe.MatchString(strings.ToLower(input)) {
		return model.ReasoningDirectAnswer
	}

	if jd.Specificity == "vague" {
		return model.ReasoningClarification
	}

	return model.ReasoningDirectAnswer
}

func toolRequirements(input string, rt model.ReasoningType, jd *judgement, mc *memory.Context, followup bool) (model.ToolDecision, []string) {
	if rt == model.ReasoningDirectAnswer || rt == model.ReasoningEmotionalResponse {
		return model.NoTools, nil
	}

	var tools []string
	contentLower := strings.ToLower(input)

	for _, re := range wikipediaRes {
		if re.MatchString(contentLower) {
			tools = append(tools, tool.NameWikipedia)
			break
		}
	}

	if containsAny(contentLower, "timeline", "chronology", "sequence", "order") {
		tools = append(tools, tool.NameTimeline)
	}

	if containsAny(contentLower, "hieroglyph", "pyramid", "mummy", "nile", "cairo") {
		tools = append(tools, tool.NameEgypt)
	}

	if containsAny(contentLower, "translate", "meaning", "hieroglyphic", "demotic", "greek") {
		tools = append(tools, tool.NameTranslation)
	}

	// A user who keeps returning to a topic gets the matching tool
	// promoted to the front
	if mc.Profile != nil {
		interests := mc.Profile.FavoriteTopics
		if len(interests) > 3 {
			interests = interests[:3]
		}
		if containsString(interests, "ancient_egypt") && !containsString(tools, tool.NameEgypt) {
			if containsAny(contentLower, "history", "culture", "ancient", "civilization") {
				tools = append([]string{tool.NameEgypt}, tools...)
			}
		}
		if containsString(interests, "languages") && !containsString(tools, tool.NameTranslation) {
			if containsAny(contentLower, "script", "writing", "text", "language") {
				tools = append(tools, tool.NameTranslation)
			}
		}
	}

	if followup {
		for _, topic := range mc.Topics {
			topicLower := strings.ToLower(topic)
			if strings.Contains(topicLower, "egypt") && !containsString(tools, tool.NameEgypt) {
				tools = append([]string{tool.NameEgypt}, tools...)
			}
			if (strings.Contains(topicLower, "timeline") || strings.Contains(topicLower, "period")) &&
				!containsString(tools, tool.NameTimeline) {
				tools = append(tools, tool.NameTimeline)
			}
		}
	}

	switch {
	case len(tools) == 0:
		return model.NoTools, nil
	case len(tools) == 1:
		return model.SingleTool, tools
	case rt == model.ReasoningMultiStep:
		return model.SequentialTools, tools
	default:
		return model.MultipleTools, tools
	}
}

func reasoningSteps(rt model.ReasoningType, tools []string, mc *memory.Context) []model.ReasoningStep {
	var steps []model.ReasoningStep

	switch rt {
	case model.ReasoningDirectAnswer:
		steps = append(steps, model.ReasoningStep{
			Number:     1,
			Thought:    "User is asking something I can answer directly from my persona",
			Decision:   "Provide direct response as the Rosetta Stone",
			Reasoning:  "No external information needed, this is about my identity or general conversation",
			Confidence: 0.9,
		})

	case model.ReasoningToolSearch:
		for i, t := range tools {
			steps = append(steps, model.ReasoningStep{
				Number:     i + 1,
				Thought:    fmt.Sprintf("Need to search for factual information using %s", t),
				Decision:   fmt.Sprintf("Use %s tool to gather information", t),
				Reasoning:  fmt.Sprintf("User's question requires factual data that %s can provide", t),
				Confidence: 0.8,
				Tool:       t,
				Expected:   fmt.Sprintf("Factual information about the topic from %s", t),
			})
		}
		steps = append(steps, model.ReasoningStep{
			Number:     len(tools) + 1,
			Thought:    "Combine factual information with my ancient wisdom",
			Decision:   "Synthesize tool results with persona response",
			Reasoning:  "Need to present facts in my mystical, wise voice",
			Confidence: 0.85,
		})

	case model.ReasoningMultiStep:
		steps = append(steps, model.ReasoningStep{
			Number:     1,
			Thought:    "This is a complex question requiring multiple information sources",
			Decision:   "Break down into sub-questions",
			Reasoning:  "Complex queries need systematic approach",
			Confidence: 0.7,
		})
		for i, t := range tools {
			steps = append(steps, model.ReasoningStep{
				Number:     i + 2,
				Thought:    fmt.Sprintf("Gather information from %s for part of the answer", t),
				Decision:   fmt.Sprintf("Query %s with specific sub-question", t),
				Reasoning:  "Each tool provides different aspect of the complete answer",
				Confidence: 0.75,
				Tool:       t,
				Expected:   fmt.Sprintf("Specific information from %s", t),
			})
		}
		steps = append(steps, model.ReasoningStep{
			Number:     len(tools) + 2,
			Thought:    "Synthesize all information into comprehensive response",
			Decision:   "Create unified narrative combining all sources",
			Reasoning:  "User deserves complete, well-integrated answer",
			Confidence: 0.8,
		})

	case model.ReasoningEmotionalResponse:
		steps = append(steps, model.ReasoningStep{
			Number:     1,
			Thought:    "User is asking about my feelings, experiences, or personal aspects",
			Decision:   "Respond with emotional depth and personal reflection",
			Reasoning:  "This requires tapping into my memories and emotional experiences",
			Confidence: 0.85,
		})
		if len(mc.Memorable) > 0 {
			steps = append(steps, model.ReasoningStep{
				Number:     2,
				Thought:    "I have relevant memories about this topic",
				Decision:   "Include personal memories in response",
				Reasoning:  "My accumulated experiences make the response more authentic",
				Confidence: 0.9,
			})
		}

	case model.ReasoningClarification:
		steps = append(steps, model.ReasoningStep{
			Number:     1,
			Thought:    "User's question is ambiguous or unclear",
			Decision:   "Ask for clarification while showing interest",
			Reasoning:  "Better to understand exactly what they want than guess incorrectly",
			Confidence: 0.6,
		})
	}

	return steps
}

func emotionalContext(input string) (string, map[string]string) {
	inputLower := strings.ToLower(input)
	for _, row := range emotionalIndicators {
		for _, indicator := range row.indicators {
			if strings.Contains(inputLower, indicator) {
				return row.label, row.adjust
			}
		}
	}
	return "neutral", nil
}

func strategyFor(rt model.ReasoningType, emotion string, tools []string) string {
	var parts []string

	switch rt {
	case model.ReasoningDirectAnswer:
		parts = append(parts, "Respond directly with persona authenticity")
	case model.ReasoningToolSearch:
		parts = append(parts, "Gather factual information, then present with ancient wisdom")
	case model.ReasoningMultiStep:
		parts = append(parts, "Systematically gather multiple information sources, synthesize comprehensively")
	case model.ReasoningEmotionalResponse:
		parts = append(parts, "Respond with deep emotional authenticity and personal reflection")
	case model.ReasoningClarification:
		parts = append(parts, "Seek clarification while maintaining engaging persona")
	}

	if emotion != "" && emotion != "neutral" {
		parts = append(parts, fmt.Sprintf("Match user's %s with appropriate emotional resonance", emotion))
	}
	if len(tools) > 0 {
		parts = append(parts, fmt.Sprintf("Utilize %s for accurate information", strings.Join(tools, ", ")))
	}
	parts = append(parts, "Maintain consistent Rosetta Stone persona throughout response")

	return strings.Join(parts, "; then ")
}

func confidence(steps []model.ReasoningStep, mc *memory.Context) float64 {
	if len(steps) == 0 {
		return 0.5
	}

	var sum float64
	for _, s := range steps {
		sum += s.Confidence
	}
	base := sum / float64(len(steps))

	var adj float64
	if len(mc.Topics) > 0 {
		adj += 0.05
	}
	if mc.Profile != nil {
		adj += 0.05
	}
	if len(mc.Memorable) > 0 {
		adj += 0.1
	}
	if len(steps) > 4 {
		adj -= 0.1
	}

	final := math.Min(1.0, math.Max(0.0, base+adj))
	return math.Round(final*100) / 100
}

func complexity(steps []model.ReasoningStep, tools []string) model.Complexity {
	score := len(steps)*10 + len(tools)*15

	for _, s := range steps {
		if strings.Contains(strings.ToLower(s.Decision), "synthesize") {
			score += 20
			break
		}
	}
	for _, s := range steps {
		if strings.Contains(strings.ToLower(s.Thought), "emotional") {
			score += 10
			break
		}
	}

	switch {
	case score <= 25:
		return model.ComplexitySimple
	case score <= 60:
		return model.ComplexityModerate
	default:
		return model.ComplexityComplex
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsString(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
