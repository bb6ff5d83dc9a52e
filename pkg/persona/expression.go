package persona

import (
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/model"
	"gopkg.in/yaml.v3"
)

//go:embed data/expressions.yml
var expressionsRaw []byte

// Expressions holds the phrasing patterns for one mood
type Expressions struct {
	Openings []string `yaml:"openings"`
	Phrases  []string `yaml:"phrases"`
	Closings []string `yaml:"closings"`
}

type modifierPair struct {
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

type expressionData struct {
	Expressions map[model.Mood]Expressions  `yaml:"expressions"`
	Memories    map[model.Mood][]string     `yaml:"memories"`
	Modifiers   map[model.Mood]modifierPair `yaml:"modifiers"`
}

func loadExpressionData() (*expressionData, error) {
	var data expressionData
	if err := yaml.Unmarshal(expressionsRaw, &data); err != nil {
		return nil, goerr.Wrap(err, "failed to parse embedded expression data")
	}
	if len(data.Expressions) == 0 {
		return nil, goerr.New("embedded expression data has no moods")
	}
	return &data, nil
}
