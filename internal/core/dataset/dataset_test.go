package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dishesCSV = `Dish Name,Category,Notes,Calories,Protein,Carbs,Fat
Chicken Adobo,Main Dish,Chicken braised in soy sauce and vinegar,350,25,10,20
Sinigang na Baboy,Soup,Sour tamarind soup,,,,
Tortang Talong,Vegetable,Eggplant omelette,180,9,8,12
Bangsilog,Breakfast,Fried milkfish with garlic rice and egg,520,30,55,18
Halo-Halo,Dessert,Shaved ice with sweet beans,300,5,60,6
Ginataang Manok,Main Dish,,410,28,12,26
`

func load(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadReader(strings.NewReader(dishesCSV))
	require.NoError(t, err)
	return ds
}

func TestLoadReader(t *testing.T) {
	ds := load(t)
	assert.Equal(t, 6, ds.Len())

	_, err := LoadReader(strings.NewReader(""))
	assert.Error(t, err)

	_, err = LoadReader(strings.NewReader("Name,Notes\nAdobo,x\n"))
	assert.Error(t, err)
}

func TestLoadHeaderCaseInsensitive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dishes.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffDISH NAME,notes\nPancit Bihon,Rice noodles\n"), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)

	records := ds.LookupByIngredient("noodles")
	require.Len(t, records, 1)
	assert.Equal(t, "Pancit Bihon", records[0].Name)
	assert.Equal(t, []string{"noodles", "garlic", "onion", "soy sauce", "cabbage"}, records[0].Ingredients)
}

func TestLookupByIngredientSynonyms(t *testing.T) {
	ds := load(t)

	records := ds.LookupByIngredient("manok")
	require.Len(t, records, 2)
	assert.Equal(t, "Chicken Adobo", records[0].Name)
	assert.Equal(t, "Ginataang Manok", records[1].Name)

	adobo := records[0]
	assert.Equal(t, []string{"manok", "soy sauce", "vinegar", "garlic", "bay leaf", "pepper"}, adobo.Ingredients)
	assert.Equal(t, 30, adobo.CookingTimeMinutes)
	assert.Equal(t, common.DifficultyEasy, adobo.Difficulty)
	assert.Equal(t, 4, adobo.Servings)
	assert.Equal(t, common.TierDataset, adobo.SourceTier)
	assert.Equal(t, "Chicken braised in soy sauce and vinegar. Nutrition: 350 kcal, 25g protein, 10g carbs, 20g fat.", adobo.Description)

	ginataan := records[1]
	assert.Equal(t, "A main dish dish. Nutrition: 410 kcal, 28g protein, 12g carbs, 26g fat.", ginataan.Description)
	assert.Contains(t, ginataan.Ingredients, "coconut milk")
}

func TestLookupMatchesNotes(t *testing.T) {
	ds := load(t)

	records := ds.LookupByIngredient("bangus")
	require.Len(t, records, 1)
	assert.Equal(t, "Bangsilog", records[0].Name)
	assert.Equal(t, []string{"bangus", "rice", "egg", "garlic", "oil"}, records[0].Ingredients)

	eggplant := ds.LookupByIngredient("talong")
	require.Len(t, eggplant, 1)
	assert.Equal(t, "Tortang Talong", eggplant[0].Name)
}

func TestLookupNoMatch(t *testing.T) {
	ds := load(t)
	assert.Empty(t, ds.LookupByIngredient("durian"))

	_, err := ds.Search(context.Background(), "durian")
	assert.Equal(t, common.FailureEmptyResult, common.ReasonOf(err))
}

func TestIngredientsColumnPreferred(t *testing.T) {
	csv := "Dish Name,Category,Notes,Ingredients,People Size\nLechon Kawali,Main,Crispy pork belly,\"Pork belly, Salt, Oil\",6\n"
	ds, err := LoadReader(strings.NewReader(csv))
	require.NoError(t, err)

	records := ds.LookupByIngredient("baboy")
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Pork belly", "Salt", "Oil"}, records[0].Ingredients)
	assert.Equal(t, 6, records[0].Servings)
}

func TestStaples(t *testing.T) {
	assert.Equal(t, []string{"oil", "salt", "pepper", "garlic", "onion"}, Staples("Halo-Halo"))
	assert.Equal(t, []string{"tamarind", "water", "salt", "fish sauce", "vegetables"}, Staples("Sinigang na Hipon"))
	assert.Contains(t, Staples("Kare-Kare"), "peanut")
}
