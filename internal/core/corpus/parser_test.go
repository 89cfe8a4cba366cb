package corpus

import (
	"strings"
	"testing"

	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bangsilogDoc = "BANGSILOG\nIngredients: bangus, egg, rice\nInstructions: Fry the bangus. Cook the egg. Serve with rice.\n"

const referenceDoc = `FILIPINO DISHES REFERENCE


1. Chicken Adobo
Ingredients: chicken, soy sauce, vinegar, garlic, bay leaf
Instructions: Marinate the chicken in soy sauce and vinegar. Simmer for 45 minutes. Serve with rice.
Serves 6

2. Sinigang Na Hipon
Ingredients: shrimp, tamarind, kangkong, radish
Procedure: Boil water with tamarind. Add the shrimp and vegetables. Season with patis.


TINOLANG MANOK
A ginger-based soup with chicken and green papaya. Difficulty: medium.
Ingredients:
- manok
- ginger
- green papaya
Method: Saute ginger and onion. Add the chicken and simmer for 1 hour.


Pinakbet
Ingredients: squash, eggplant, ampalaya, okra, bagoong
Instructions: Saute garlic and bagoong. Add vegetables and cook until tender.
`

func TestParseDocumentBangsilog(t *testing.T) {
	records := ParseDocument(bangsilogDoc, "bangus")
	require.Len(t, records, 1)

	dish := records[0]
	assert.Equal(t, "Bangsilog", dish.Name)
	assert.Contains(t, dish.Ingredients, "bangus")
	assert.Equal(t, []string{"bangus", "egg", "rice"}, dish.Ingredients)
	assert.Equal(t, "Fry the bangus. Cook the egg. Serve with rice.", dish.InstructionsRaw)
	assert.Equal(t, common.TierDocument, dish.SourceTier)
	assert.Equal(t, 30, dish.CookingTimeMinutes)
	assert.Equal(t, 4, dish.Servings)
	assert.Equal(t, common.DifficultyEasy, dish.Difficulty)
	assert.Equal(t, 10, dish.RelevanceScore)
}

func TestParseDocumentScoresAndOrders(t *testing.T) {
	records := ParseDocument(referenceDoc, "chicken")
	require.Len(t, records, 2)

	tinola := records[0]
	assert.Equal(t, "Tinolang Manok", tinola.Name)
	assert.Equal(t, 22, tinola.RelevanceScore)
	assert.Equal(t, []string{"manok", "ginger", "green papaya"}, tinola.Ingredients)
	assert.Equal(t, 60, tinola.CookingTimeMinutes)
	assert.Equal(t, common.DifficultyMedium, tinola.Difficulty)
	assert.Equal(t, "A ginger-based soup with chicken and green papaya. Difficulty: medium.", tinola.Description)

	adobo := records[1]
	assert.Equal(t, "Chicken Adobo", adobo.Name)
	assert.Equal(t, 20, adobo.RelevanceScore)
	assert.Equal(t, 45, adobo.CookingTimeMinutes)
	assert.Equal(t, 6, adobo.Servings)
}

func TestParseDocumentSynonymFocus(t *testing.T) {
	records := ParseDocument(referenceDoc, "hipon")
	require.Len(t, records, 1)
	assert.Equal(t, "Sinigang Na Hipon", records[0].Name)
	assert.Equal(t, "shrimp", records[0].Ingredients[0])
}

func TestParseDocumentNoMatch(t *testing.T) {
	assert.Empty(t, ParseDocument(referenceDoc, "bangus"))
	assert.Empty(t, ParseDocument("", "bangus"))
	assert.Empty(t, ParseDocument(referenceDoc, ""))
}

func TestParseDocumentIsDeterministic(t *testing.T) {
	first := ParseDocument(referenceDoc, "garlic")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ParseDocument(referenceDoc, "garlic"))
	}
}

func TestParseDocumentParagraphFallback(t *testing.T) {
	doc := `our family cookbook notes, collected over many years from relatives in the province and written down here.

when cooking bangus at home we usually marinate it in vinegar, garlic and pepper overnight. fry the bangus until golden and serve with garlic rice and a fried egg for breakfast.

short bangus note.
`
	records := ParseDocument(doc, "bangus")
	require.Len(t, records, 1)
	assert.Equal(t, "Bangus dish", records[0].Name)
	// 推得的標題不加標題分，只計兩次出現
	assert.Equal(t, 2*occurrenceScore, records[0].RelevanceScore)
	assert.Equal(t, "bangus", records[0].Ingredients[0])
	assert.Contains(t, records[0].Ingredients, "vinegar")
	assert.Contains(t, records[0].InstructionsRaw, "fry the bangus until golden")
}

func TestParseDocumentSplitsRepeatedSections(t *testing.T) {
	doc := `bangus belly is grilled over charcoal until the skin blisters and the flesh flakes apart easily.
Ingredients: bangus, calamansi, salt
Instructions: Grill the bangus and serve with rice.
Ingredients: bangus, tamarind, radish, kangkong
Instructions: Simmer the bangus belly in the sour broth for twenty minutes.
`
	blocks := segment(NormalizeText(doc), ingredient.Expand("bangus"))
	require.Len(t, blocks, 2)
	assert.False(t, blocks[0].span.overlaps(blocks[1].span))

	records := ParseDocument(doc, "bangus")
	require.Len(t, records, 2)
	assert.Contains(t, records[0].Ingredients, "calamansi")
	assert.NotContains(t, records[0].Ingredients, "tamarind")
	assert.Contains(t, records[1].Ingredients, "tamarind")
	assert.Equal(t, "Simmer the bangus belly in the sour broth for twenty minutes.", records[1].InstructionsRaw)
}

func TestSegmentsNeverOverlap(t *testing.T) {
	doc := NormalizeText(`BANGUS SISIG
Ingredients: bangus, onion, calamansi, chili
Instructions: Grill the bangus, flake the meat and mix with onion and calamansi juice. Serve sizzling.


some people also like to make a sinigang with bangus belly, cooking it slowly with tamarind, tomato, radish and kangkong until the broth turns sour.
`)
	blocks := segment(doc, ingredient.Expand("bangus"))
	require.Len(t, blocks, 2)
	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			assert.False(t, blocks[i].span.overlaps(blocks[j].span))
		}
	}

	records := ParseDocument(doc, "bangus")
	require.Len(t, records, 2)
	assert.Equal(t, "Bangus Sisig", records[0].Name)
	assert.Greater(t, records[0].RelevanceScore, records[1].RelevanceScore)
}

func TestNormalizeTextCollapsesBlankRuns(t *testing.T) {
	got := NormalizeText("A\r\n\r\n\r\n\r\n\r\n\r\nB  \nC")
	assert.Equal(t, "A\n\n\nB\nC", got)
	assert.False(t, strings.Contains(NormalizeText("x\n\n\n\n\n\n\ny"), "\n\n\n\n"))
}

func TestClassifyTitle(t *testing.T) {
	cases := []struct {
		line      string
		inSection bool
		prevBlank bool
		want      string
		ok        bool
	}{
		{"1. Chicken Adobo", false, false, "Chicken Adobo", true},
		{"3) LECHON KAWALI", false, true, "LECHON KAWALI", true},
		{"2. Add the chicken", false, true, "", false},
		{"KARE-KARE", true, true, "KARE-KARE", true},
		{"KARE-KARE", true, false, "", false},
		{"Ginataang Kalabasa at Sitaw", false, true, "Ginataang Kalabasa at Sitaw", true},
		{"Ginataang Kalabasa at Sitaw", false, false, "", false},
		{"Pancit Canton:", false, false, "Pancit Canton", true},
		{"Ingredients:", false, true, "", false},
		{"Serve hot.", false, true, "", false},
	}
	for _, tc := range cases {
		got, ok := classifyTitle(tc.line, tc.inSection, tc.prevBlank)
		assert.Equal(t, tc.ok, ok, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}
