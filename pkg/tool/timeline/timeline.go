package timeline

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/urfave/cli/v3"
)

// period is one span of the chronology. Years use astronomical sign
// convention: BCE years are negative.
type period struct {
	Name   string
	From   int
	To     int
	Events []string
}

type timeline struct {
	periods []period
}

// New creates the chronology lookup adapter
func New() *timeline {
	return &timeline{periods: chronology}
}

func (x *timeline) Flags() []cli.Flag { return nil }

func (x *timeline) Init(ctx context.Context) (bool, error) {
	return len(x.periods) > 0, nil
}

func (x *timeline) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:         tool.NameTimeline,
		Description:  "chronology of ancient mediterranean history with periods sequences and dated events",
		Category:     tool.CategoryHistorical,
		Keywords:     []string{"timeline", "chronology", "sequence", "period", "when", "date", "year", "era"},
		Reliability:  0.7,
		CostClass:    "free",
		LatencyClass: "fast",
	}
}

var yearRe = regexp.MustCompile(`(\d{1,4})\s*(bce|ce|bc|ad)`)

func parseYear(num, era string) int {
	n, _ := strconv.Atoi(num)
	if era == "bce" || era == "bc" {
		return -n
	}
	return n
}

func (x *timeline) Execute(ctx context.Context, query string) (string, error) {
	queryLower := strings.ToLower(query)

	// Dated queries resolve to the periods covering each mentioned year
	if matches := yearRe.FindAllStringSubmatch(queryLower, -1); len(matches) > 0 {
		var parts []string
		for _, m := range matches {
			year := parseYear(m[1], m[2])
			for _, p := range x.periods {
				if year >= p.From && year <= p.To {
					parts = append(parts, x.describe(p))
					break
				}
			}
		}
		if len(parts) == 0 {
			return "", goerr.New("no period covers the given dates", goerr.V("query", query))
		}
		return strings.Join(parts, "\n\n"), nil
	}

	// Otherwise match period names and event text
	var parts []string
	for _, p := range x.periods {
		if strings.Contains(queryLower, strings.ToLower(p.Name)) {
			parts = append(parts, x.describe(p))
			continue
		}
		for _, ev := range p.Events {
			for _, w := range strings.Fields(queryLower) {
				if len(w) > 3 && strings.Contains(strings.ToLower(ev), w) {
					parts = append(parts, x.describe(p))
					goto next
				}
			}
		}
	next:
	}

	if len(parts) == 0 {
		return "", goerr.New("no chronology entries matched", goerr.V("query", query))
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, "\n\n"), nil
}

func formatYear(y int) string {
	if y < 0 {
		return strconv.Itoa(-y) + " BCE"
	}
	return strconv.Itoa(y) + " CE"
}

func (x *timeline) describe(p period) string {
	var sb strings.Builder
	sb.WriteString(p.Name + " (" + formatYear(p.From) + " - " + formatYear(p.To) + "):")
	for _, ev := range p.Events {
		sb.WriteString("\n- " + ev)
	}
	return sb.String()
}

var chronology = []period{
	{
		Name: "Old Kingdom",
		From: -2686, To: -2181,
		Events: []string{
			"c. 2560 BCE: Great Pyramid of Giza completed for pharaoh Khufu",
			"Age of the great pyramid builders and centralized royal power",
		},
	},
	{
		Name: "Middle Kingdom",
		From: -2055, To: -1650,
		Events: []string{
			"Reunification of Egypt under Mentuhotep II",
			"Flowering of classical Egyptian literature",
		},
	},
	{
		Name: "New Kingdom",
		From: -1550, To: -1069,
		Events: []string{
			"1332-1323 BCE: reign of Tutankhamun",
			"c. 1279-1213 BCE: reign of Ramesses II, height of imperial power",
			"Valley of the Kings serves as royal necropolis",
		},
	},
	{
		Name: "Late Period",
		From: -664, To: -332,
		Events: []string{
			"Persian conquests and the last native dynasties",
			"332 BCE: Alexander the Great conquers Egypt",
		},
	},
	{
		Name: "Ptolemaic Period",
		From: -305, To: -30,
		Events: []string{
			"305 BCE: Ptolemy I founds the Ptolemaic dynasty",
			"204-180 BCE: reign of Ptolemy V Epiphanes",
			"196 BCE: the Rosetta Stone decree is inscribed",
			"30 BCE: death of Cleopatra VII ends pharaonic Egypt",
		},
	},
	{
		Name: "Modern Rediscovery",
		From: 1798, To: 1922,
		Events: []string{
			"1799: the Rosetta Stone is rediscovered at Rosetta (Rashid)",
			"1822: Champollion announces the decipherment of hieroglyphs",
			"1922: Howard Carter opens the tomb of Tutankhamun",
		},
	},
}
