package translate

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/urfave/cli/v3"
)

// lexeme is one term attested across the three scripts of the stone
type lexeme struct {
	Term         string
	Hieroglyphic string
	Demotic      string
	Greek        string
	Notes        string
}

type translate struct {
	lexicon []lexeme
}

// New creates the script/translation lookup adapter
func New() *translate {
	return &translate{lexicon: lexicon}
}

func (x *translate) Flags() []cli.Flag { return nil }

func (x *translate) Init(ctx context.Context) (bool, error) {
	return len(x.lexicon) > 0, nil
}

func (x *translate) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:         tool.NameTranslation,
		Description:  "translates terms between hieroglyphic demotic and greek scripts with linguistic notes",
		Category:     tool.CategoryLinguistic,
		Keywords:     []string{"translate", "translation", "meaning", "hieroglyphic", "demotic", "greek", "script", "language", "writing"},
		Reliability:  0.8,
		CostClass:    "free",
		LatencyClass: "fast",
	}
}

func (x *translate) Execute(ctx context.Context, query string) (string, error) {
	queryLower := strings.ToLower(query)

	var parts []string
	for _, lx := range x.lexicon {
		if strings.Contains(queryLower, lx.Term) {
			parts = append(parts, x.describe(lx))
		}
	}

	// Fall back to word-level matching against the notes
	if len(parts) == 0 {
		for _, lx := range x.lexicon {
			for _, w := range strings.Fields(queryLower) {
				if len(w) > 3 && strings.Contains(strings.ToLower(lx.Notes), w) {
					parts = append(parts, x.describe(lx))
					break
				}
			}
		}
	}

	if len(parts) == 0 {
		return "", goerr.New("no lexicon entries matched", goerr.V("query", query))
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "\n\n"), nil
}

func (x *translate) describe(lx lexeme) string {
	return lx.Term + " - hieroglyphic: " + lx.Hieroglyphic +
		"; demotic: " + lx.Demotic +
		"; greek: " + lx.Greek +
		". " + lx.Notes
}

var lexicon = []lexeme{
	{
		Term:         "king",
		Hieroglyphic: "nsw-bity (sedge and bee)",
		Demotic:      "pr-aa",
		Greek:        "basileus",
		Notes:        "The royal titulary opens the decree in all three scripts; 'pharaoh' derives from pr-aa, 'great house'.",
	},
	{
		Term:         "pharaoh",
		Hieroglyphic: "pr-aa (great house)",
		Demotic:      "pr-aa",
		Greek:        "pharao",
		Notes:        "Originally the palace itself, later the ruler; the Greek transliteration entered European languages.",
	},
	{
		Term:         "god",
		Hieroglyphic: "ntr (flag pole)",
		Demotic:      "ntr",
		Greek:        "theos",
		Notes:        "The epithet 'Epiphanes' marks Ptolemy V as a god made manifest.",
	},
	{
		Term:         "temple",
		Hieroglyphic: "hwt-ntr (mansion of the god)",
		Demotic:      "irpy",
		Greek:        "hieron",
		Notes:        "The decree grants the temples tax remissions, which is why the priests had it carved.",
	},
	{
		Term:         "priest",
		Hieroglyphic: "hm-ntr (servant of the god)",
		Demotic:      "wab",
		Greek:        "hiereus",
		Notes:        "The synod of priests at Memphis issued the Rosetta decree in 196 BCE.",
	},
	{
		Term:         "life",
		Hieroglyphic: "ankh (looped cross)",
		Demotic:      "anx",
		Greek:        "zoe",
		Notes:        "Among the most recognized hieroglyphs; granted eternally to the king in royal formulas.",
	},
	{
		Term:         "decree",
		Hieroglyphic: "wD-nsw (royal command)",
		Demotic:      "wt",
		Greek:        "psephisma",
		Notes:        "The Rosetta text is a sacerdotal decree: the same proclamation repeated in three scripts.",
	},
	{
		Term:         "egypt",
		Hieroglyphic: "kmt (the black land)",
		Demotic:      "kmy",
		Greek:        "aigyptos",
		Notes:        "Named for the dark fertile silt of the Nile, in contrast to dSrt, the red desert.",
	},
}
