package translate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/m-mizutani/rosetta/pkg/tool/translate"
)

func TestExecuteLooksUpTerm(t *testing.T) {
	ctx := context.Background()
	tr := translate.New()

	result, err := tr.Execute(ctx, "translate pharaoh")
	gt.NoError(t, err)
	gt.S(t, result).Contains("pharaoh - hieroglyphic: pr-aa")
	gt.S(t, result).Contains("greek: pharao")
}

func TestExecuteMultipleTerms(t *testing.T) {
	ctx := context.Background()
	tr := translate.New()

	result, err := tr.Execute(ctx, "what do king and god mean")
	gt.NoError(t, err)
	gt.S(t, result).Contains("nsw-bity")
	gt.S(t, result).Contains("theos")
	gt.Equal(t, strings.Count(result, "\n\n"), 1)
}

func TestExecuteFallsBackToNotes(t *testing.T) {
	ctx := context.Background()
	tr := translate.New()

	result, err := tr.Execute(ctx, "what was inscribed at memphis")
	gt.NoError(t, err)
	gt.S(t, result).Contains("priest")
}

func TestExecuteCapsResults(t *testing.T) {
	ctx := context.Background()
	tr := translate.New()

	result, err := tr.Execute(ctx, "king pharaoh god temple priest")
	gt.NoError(t, err)
	gt.Equal(t, strings.Count(result, "\n\n"), 2)
}

func TestExecuteNoMatch(t *testing.T) {
	ctx := context.Background()
	tr := translate.New()

	_, err := tr.Execute(ctx, "xylophone")
	gt.Error(t, err)
}

func TestMetadata(t *testing.T) {
	tr := translate.New()

	meta := tr.Metadata()
	gt.Equal(t, meta.Name, tool.NameTranslation)
	gt.Equal(t, meta.Category, tool.CategoryLinguistic)
}
