package egypt

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/urfave/cli/v3"
)

type entry struct {
	Title        string
	Category     string
	Description  string
	Period       string
	Related      []string
	Significance string
}

type egypt struct {
	entries []entry
}

// New creates the curated Egyptian knowledge adapter. All data is local,
// so the adapter is always enabled and effectively instant.
func New() *egypt {
	return &egypt{entries: knowledgeBase}
}

func (x *egypt) Flags() []cli.Flag { return nil }

func (x *egypt) Init(ctx context.Context) (bool, error) {
	return len(x.entries) > 0, nil
}

func (x *egypt) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:         tool.NameEgypt,
		Description:  "curated facts about ancient egypt pharaohs dynasties religion culture and the rosetta stone",
		Category:     tool.CategoryHistorical,
		Keywords:     []string{"egypt", "egyptian", "pharaoh", "pyramid", "nile", "hieroglyph", "ptolemy", "mummy", "cairo"},
		Reliability:  0.9,
		CostClass:    "free",
		LatencyClass: "fast",
	}
}

func (x *egypt) Execute(ctx context.Context, query string) (string, error) {
	queryLower := strings.ToLower(query)
	queryWords := strings.Fields(queryLower)

	type scored struct {
		e     entry
		score float64
	}
	var hits []scored

	for _, e := range x.entries {
		score := 0.0
		titleLower := strings.ToLower(e.Title)
		if strings.Contains(queryLower, titleLower) || strings.Contains(titleLower, queryLower) {
			score += 1.0
		}
		for _, w := range queryWords {
			if strings.Contains(titleLower, w) {
				score += 0.4
			}
			if strings.Contains(strings.ToLower(e.Description), w) {
				score += 0.1
			}
			for _, rel := range e.Related {
				if strings.Contains(rel, w) {
					score += 0.2
				}
			}
		}
		if score > 0.1 {
			hits = append(hits, scored{e, score})
		}
	}

	if len(hits) == 0 {
		return "", goerr.New("no curated knowledge matched", goerr.V("query", query))
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > 3 {
		hits = hits[:3]
	}

	var sb strings.Builder
	for i, h := range hits {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(h.e.Title + " [" + h.e.Period + "]: " + h.e.Description)
		if h.e.Significance != "" {
			sb.WriteString(" Significance: " + h.e.Significance)
		}
	}
	return sb.String(), nil
}

var knowledgeBase = []entry{
	{
		Title:        "Ptolemy V Epiphanes",
		Category:     "pharaoh",
		Description:  "Ptolemy V Epiphanes ruled Egypt from 204-180 BCE. During his reign, the Rosetta Stone was created in 196 BCE to commemorate his coronation and religious policies. His decree is inscribed on the stone in three scripts.",
		Period:       "ptolemaic",
		Related:      []string{"rosetta stone", "decree", "coronation", "trilingual inscription"},
		Significance: "His reign produced one of history's most important archaeological artifacts.",
	},
	{
		Title:        "Cleopatra VII",
		Category:     "pharaoh",
		Description:  "The last active pharaoh of Egypt (69-30 BCE), a member of the Ptolemaic dynasty, known for her intelligence, political acumen, and alliances with Julius Caesar and Mark Antony.",
		Period:       "ptolemaic",
		Related:      []string{"alexandria", "library", "roman alliance", "last pharaoh"},
		Significance: "Her death marked the end of pharaonic rule and Egyptian independence.",
	},
	{
		Title:        "Tutankhamun",
		Category:     "pharaoh",
		Description:  "Boy pharaoh of the 18th dynasty (1332-1323 BCE), famous for his intact tomb discovered by Howard Carter in 1922. He restored traditional Egyptian religion after Akhenaten's reforms.",
		Period:       "new kingdom",
		Related:      []string{"valley of the kings", "tomb discovery", "golden mask"},
		Significance: "His tomb gave unprecedented insight into New Kingdom burial practices.",
	},
	{
		Title:        "Ptolemaic Dynasty",
		Category:     "dynasty",
		Description:  "Greek dynasty that ruled Egypt from 305-30 BCE, founded by Ptolemy I, a general of Alexander the Great. The dynasty blended Greek and Egyptian traditions with Alexandria as its capital.",
		Period:       "ptolemaic",
		Related:      []string{"alexandria", "greek culture", "bilingual administration"},
		Significance: "The Hellenistic period in Egypt and a deep cultural synthesis.",
	},
	{
		Title:        "Egyptian Hieroglyphs",
		Category:     "language",
		Description:  "Sacred writing system of ancient Egypt using pictographic and ideographic elements, in use for over 3,000 years. Hieroglyphs were deciphered using the Rosetta Stone.",
		Period:       "all periods",
		Related:      []string{"rosetta stone", "champollion", "demotic", "coptic"},
		Significance: "The key to understanding ancient Egyptian civilization.",
	},
	{
		Title:        "The Rosetta Stone",
		Category:     "artifact",
		Description:  "A granodiorite stele inscribed in 196 BCE with a decree of Ptolemy V in hieroglyphic, demotic, and ancient Greek. Rediscovered in 1799 near the town of Rosetta, it enabled Champollion's decipherment of hieroglyphs in 1822.",
		Period:       "ptolemaic",
		Related:      []string{"ptolemy v", "champollion", "decipherment", "british museum", "1799"},
		Significance: "The foundation stone of modern Egyptology.",
	},
	{
		Title:        "Egyptian Afterlife Beliefs",
		Category:     "religion",
		Description:  "A complex belief system centered on the journey through the underworld, judgment by Osiris, and eternal life, shaping mummification practices and tomb construction.",
		Period:       "all periods",
		Related:      []string{"osiris", "mummification", "book of the dead"},
		Significance: "Drove much of Egypt's monumental architecture and funerary art.",
	},
	{
		Title:        "The Great Pyramid of Giza",
		Category:     "architecture",
		Description:  "Built for pharaoh Khufu around 2560 BCE, the only surviving wonder of the ancient world. Constructed from roughly 2.3 million stone blocks over about two decades.",
		Period:       "old kingdom",
		Related:      []string{"khufu", "giza", "wonder of the world"},
		Significance: "The pinnacle of Old Kingdom engineering and royal power.",
	},
	{
		Title:        "The Nile River",
		Category:     "geography",
		Description:  "The lifeline of Egyptian civilization. Its annual flooding deposited fertile silt along its banks, enabling agriculture in the desert and shaping the Egyptian calendar and religion.",
		Period:       "all periods",
		Related:      []string{"flooding", "agriculture", "inundation"},
		Significance: "Egypt was called the gift of the Nile for good reason.",
	},
}
