package agent

import "strings"

var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"ancient_egypt", []string{"egypt", "pharaoh", "pyramid", "nile", "cairo", "hieroglyph"}},
	{"ptolemy", []string{"ptolemy", "ptolemaic", "dynasty"}},
	{"rosetta_stone", []string{"rosetta", "stone", "discovery", "1799"}},
	{"languages", []string{"hieroglyph", "demotic", "greek", "translation"}},
	{"history", []string{"ancient", "historical", "civilization", "empire"}},
	{"archaeology", []string{"discovery", "excavation", "artifact", "museum"}},
}

// extractTopics finds the conversation topics present in the exchange
func extractTopics(userInput, reply string) []string {
	combined := strings.ToLower(userInput + " " + reply)

	var found []string
	for _, row := range topicKeywords {
		for _, kw := range row.keywords {
			if strings.Contains(combined, kw) {
				found = append(found, row.topic)
				break
			}
		}
	}
	return found
}
