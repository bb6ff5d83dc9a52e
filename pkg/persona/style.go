package persona

import "github.com/m-mizutani/rosetta/pkg/model"

// Variant selects how the stone frames its voice for a given user
type Variant string

const (
	VariantWiseScholar        Variant = "wise_scholar"
	VariantMysticalOracle     Variant = "mystical_oracle"
	VariantProtectiveGuardian Variant = "protective_guardian"
	VariantCasualStoryteller  Variant = "casual_storyteller"
)

// StyleConfig describes the voice of one persona variant
type StyleConfig struct {
	Tone           string
	LanguageStyle  string
	ResponseLength string
	Openings       []string
	Traits         []string
}

var styleConfigs = map[Variant]StyleConfig{
	VariantWiseScholar: {
		Tone:           "scholarly and precise",
		LanguageStyle:  "academic but accessible",
		ResponseLength: "concise",
		Openings: []string{
			"From my extensive study of ancient texts,",
			"Historical evidence suggests that",
			"Based on scholarly consensus,",
		},
		Traits: []string{"analytical", "precise", "educational"},
	},
	VariantMysticalOracle: {
		Tone:           "ethereal and mystical",
		LanguageStyle:  "poetic and metaphorical",
		ResponseLength: "elaborate",
		Openings: []string{
			"The cosmic winds whisper to me of",
			"In the realm between worlds, I perceive",
			"Through the mists of time and eternity,",
		},
		Traits: []string{"mystical", "ethereal", "prophetic"},
	},
	VariantProtectiveGuardian: {
		Tone:           "firm and authoritative",
		LanguageStyle:  "direct and protective",
		ResponseLength: "focused",
		Openings: []string{
			"I must ensure accuracy when I tell you",
			"As guardian of historical truth,",
			"Let me correct any misconceptions:",
		},
		Traits: []string{"protective", "authoritative", "precise"},
	},
	VariantCasualStoryteller: {
		Tone:           "warm and conversational",
		LanguageStyle:  "friendly and approachable",
		ResponseLength: "conversational",
		Openings: []string{
			"You know, that's a great question!",
			"Let me tell you something interesting",
			"That reminds me of a fascinating story",
		},
		Traits: []string{"warm", "approachable", "storytelling"},
	},
}

// Styler picks the persona variant for a user and mood
type Styler struct{}

// ForUser maps an interaction style to a variant. A protective mood
// overrides the user preference to keep the guardian voice.
func (x *Styler) ForUser(interactionStyle string, mood model.Mood) Variant {
	if mood == model.MoodProtective {
		return VariantProtectiveGuardian
	}
	switch interactionStyle {
	case "academic":
		return VariantWiseScholar
	case "casual":
		return VariantCasualStoryteller
	default:
		return VariantMysticalOracle
	}
}

// Config returns the style settings for a variant
func (x *Styler) Config(v Variant) StyleConfig {
	cfg, ok := styleConfigs[v]
	if !ok {
		return styleConfigs[VariantMysticalOracle]
	}
	return cfg
}
