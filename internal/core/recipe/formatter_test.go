package recipe

import (
	"testing"

	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInstructionsSentences(t *testing.T) {
	got := FormatInstructions("Heat oil. Add garlic. Simmer for ten minutes.")
	assert.Equal(t, "1. Heat oil.\n2. Add garlic.\n3. Simmer for ten minutes.", got)
}

func TestFormatInstructionsCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty",
			raw:  "   ",
			want: "",
		},
		{
			name: "already numbered keeps steps",
			raw:  "1. Wash the rice.\n2.   Cook it   in water.",
			want: "1. Wash the rice.\n2. Cook it in water.",
		},
		{
			name: "continuation lines join previous step",
			raw:  "1. Marinate the chicken\nfor one hour.\n2. Grill until charred.",
			want: "1. Marinate the chicken for one hour.\n2. Grill until charred.",
		},
		{
			name: "gap in numbering is renumbered",
			raw:  "1. Heat oil.\n3. Add garlic.",
			want: "1. Heat oil.\n2. Add garlic.",
		},
		{
			name: "step prefixes and bullets stripped",
			raw:  "Step 1: Boil water.\n- Add noodles\n* Drain well",
			want: "1. Boil water.\n2. Add noodles\n3. Drain well",
		},
		{
			name: "inline numbering split",
			raw:  "1. Heat oil. 2. Add garlic.",
			want: "1. Heat oil.\n2. Add garlic.",
		},
		{
			name: "parenthesis numbering",
			raw:  "1) Slice the eggplant.\n2) Fry both sides.",
			want: "1. Slice the eggplant.\n2. Fry both sides.",
		},
		{
			name: "short fragments dropped",
			raw:  "Mix. Stir everything well. OK!",
			want: "1. Stir everything well.",
		},
		{
			name: "numbered step with leftover step label",
			raw:  "1. Step 1: Heat the pan.\n2. Step 2: Serve hot.",
			want: "1. Heat the pan.\n2. Serve hot.",
		},
		{
			name: "inline parenthesis numbering on one line",
			raw:  "1) Boil water 2) Add noodles 3) Serve now",
			want: "1. Boil water\n2. Add noodles\n3. Serve now",
		},
		{
			name: "inline step labels on one line",
			raw:  "Step 1 Heat oil Step 2 Add garlic",
			want: "1. Heat oil\n2. Add garlic",
		},
		{
			name: "decimal quantities are not markers",
			raw:  "Add 1.5 cups water 2) Stir well",
			want: "1. Add 1.5 cups water\n2. Stir well",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInstructions(tt.raw))
		})
	}
}

func TestFormatInstructionsIdempotent(t *testing.T) {
	inputs := []string{
		"Heat oil. Add garlic. Simmer for ten minutes.",
		"Step 1: Boil water.\nStep 2: Add 2 cups of rice!\n\n3) Cover and wait?",
		"1. Heat oil. 2. Add garlic.",
		"• Season with salt\n• Serve with rice",
		"1. Marinate the chicken\nfor one hour.\n2. Grill until charred.",
		"1) Boil water 2) Add noodles 3) Serve now",
		"Step 1 Heat oil Step 2 Add garlic",
	}
	for _, in := range inputs {
		once := FormatInstructions(in)
		assert.Equal(t, once, FormatInstructions(once), "input %q", in)
	}
}

func TestFormat(t *testing.T) {
	records := []common.DishRecord{
		{
			Name:            " Chicken Adobo ",
			Description:     "Braised  in soy sauce.",
			Ingredients:     []string{"soy sauce", "vinegar", "Soy Sauce", " "},
			Difficulty:      "medium",
			InstructionsRaw: "Combine everything. Simmer for 40 minutes.",
			SourceTier:      common.TierDocument,
		},
		{Name: "", SourceTier: common.TierDocument},
		{
			Name:               "Tinola",
			Ingredients:        []string{"manok", "ginger"},
			CookingTimeMinutes: 45,
			Servings:           6,
			Difficulty:         common.DifficultyHard,
			SourceTier:         common.TierDocument,
		},
	}

	results := Format(records, "chicken")
	require.Len(t, results, 2)

	adobo := results[0]
	assert.Equal(t, "doc_1", adobo.ID)
	assert.Equal(t, "Chicken Adobo", adobo.Title)
	assert.Equal(t, "Braised in soy sauce.", adobo.Description)
	assert.Equal(t, "chicken, soy sauce, vinegar", adobo.IngredientsCSV)
	assert.Equal(t, 30, adobo.CookingTimeMinutes)
	assert.Equal(t, 4, adobo.Servings)
	assert.Equal(t, common.DifficultyMedium, adobo.DifficultyLevel)
	assert.Equal(t, "1. Combine everything.\n2. Simmer for 40 minutes.", adobo.Instructions)
	assert.Equal(t, 100, adobo.MatchPercentage)
	assert.False(t, adobo.IsAIGenerated)
	assert.Equal(t, "Filipino Dishes Reference Document", adobo.Attribution)

	tinola := results[1]
	assert.Equal(t, "doc_2", tinola.ID)
	assert.Equal(t, "manok, ginger", tinola.IngredientsCSV, "synonym satisfies the focus")
	assert.Equal(t, 45, tinola.CookingTimeMinutes)
	assert.Equal(t, 6, tinola.Servings)
	assert.Equal(t, common.DifficultyHard, tinola.DifficultyLevel)
	assert.Equal(t, "A Filipino dish made with manok, ginger.", tinola.Description)
}

func TestFormatTierLabels(t *testing.T) {
	results := Format([]common.DishRecord{
		{Name: "Pancit", SourceTier: common.TierGenerative, Difficulty: "impossible"},
		{Name: "Lugaw", SourceTier: common.TierDataset},
		{Name: "Sopas", SourceTier: common.TierGenerative},
	}, "")
	require.Len(t, results, 3)

	assert.Equal(t, "ai_1", results[0].ID)
	assert.True(t, results[0].IsAIGenerated)
	assert.Equal(t, "AI Assistant", results[0].Attribution)
	assert.Equal(t, common.DifficultyEasy, results[0].DifficultyLevel)

	assert.Equal(t, "csv_1", results[1].ID)
	assert.Equal(t, "Filipino Dishes Dataset", results[1].Attribution)
	assert.Equal(t, "A Filipino dish.", results[1].Description)

	assert.Equal(t, "ai_2", results[2].ID)
}
