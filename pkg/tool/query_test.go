package tool_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/model"
	"github.com/m-mizutani/rosetta/pkg/tool"
)

func TestPrepareQueryWikipediaUsesKeyEntities(t *testing.T) {
	rr := &model.ReasoningResult{
		KeyEntities: []string{"Ptolemy V", "Rosetta Stone", "Memphis", "Egypt"},
	}
	query := tool.PrepareQuery(tool.NameWikipedia, "who was ptolemy v?", rr)
	gt.Equal(t, query, "Ptolemy V Rosetta Stone Memphis")
}

func TestPrepareQueryWikipediaFallsBackToKeyTerms(t *testing.T) {
	query := tool.PrepareQuery(tool.NameWikipedia, "who was the pharaoh Ptolemy", nil)
	gt.Equal(t, query, "pharaoh ptolemy")
}

func TestPrepareQueryEgyptFiltersByVocabulary(t *testing.T) {
	query := tool.PrepareQuery(tool.NameEgypt, "tell me about pyramid construction in egypt", nil)
	gt.Equal(t, query, "pyramid egypt")
}

func TestPrepareQueryEgyptKeepsInputWithoutMatches(t *testing.T) {
	query := tool.PrepareQuery(tool.NameEgypt, "what happened next", nil)
	gt.Equal(t, query, "what happened next")
}

func TestPrepareQueryTimelineExtractsDates(t *testing.T) {
	query := tool.PrepareQuery(tool.NameTimeline, "what happened in 196 BCE and 1799 CE", nil)
	gt.Equal(t, query, "timeline 196 bce 1799 ce")
}

func TestPrepareQueryTranslation(t *testing.T) {
	query := tool.PrepareQuery(tool.NameTranslation, "translate this demotic script", nil)
	gt.Equal(t, query, "translate demotic script")
}

func TestPrepareQueryUnknownToolPassesThrough(t *testing.T) {
	query := tool.PrepareQuery("something_else", "raw input", nil)
	gt.Equal(t, query, "raw input")
}

func TestPrepareQueryIsPure(t *testing.T) {
	rr := &model.ReasoningResult{KeyEntities: []string{"Cleopatra"}}
	first := tool.PrepareQuery(tool.NameWikipedia, "tell me about cleopatra", rr)
	for i := 0; i < 5; i++ {
		gt.Equal(t, tool.PrepareQuery(tool.NameWikipedia, "tell me about cleopatra", rr), first)
	}
}
