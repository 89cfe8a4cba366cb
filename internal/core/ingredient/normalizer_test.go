package ingredient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Manok":            "chicken",
		"  CHICKEN  ":      "chicken",
		"chicken-inasal":   "chicken",
		"Chicken   Inasal": "chicken",
		"bitter_gourd":     "bitter gourd",
		"Ampalaya":         "bitter gourd",
		"Bagoong":          "shrimp paste",
		"  Dragon Fruit ":  "Dragon Fruit",
		"":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"manok", " Hipon ", "Kangkong", "mung-beans", "unknown thing", "ÁMPALAYA", "  "}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), in)
	}
}

func TestFoldRemovesDiacritics(t *testing.T) {
	assert.Equal(t, "pinakbet", Fold("Pinakbét"))
	assert.Equal(t, "soy sauce", Fold(" Soy-Sauce "))
}

func TestExpand(t *testing.T) {
	terms := Expand("Bangus")
	assert.Equal(t, "Bangus", terms[0])
	assert.Contains(t, terms, "milkfish")
	assert.Len(t, terms, 2)

	chicken := Expand("manok")
	assert.Equal(t, []string{"manok", "chicken", "chicken inasal"}, chicken)

	assert.Equal(t, []string{"durian"}, Expand(" durian "))
	assert.Nil(t, Expand(""))
}

func TestContainsAnyAndMentions(t *testing.T) {
	assert.True(t, Mentions("Adobong Manok sa Gata", "chicken"))
	assert.True(t, Mentions("Grilled MILKFISH belly", "bangus"))
	assert.False(t, Mentions("Pinakbet with squash", "chicken"))
	assert.False(t, ContainsAny("anything", nil))
}

func TestCountOccurrences(t *testing.T) {
	text := "Fry the bangus. Slice the milkfish belly and season the bangus again."
	assert.Equal(t, 3, CountOccurrences(text, Expand("bangus")))
	assert.Equal(t, 0, CountOccurrences(text, nil))
}

func TestFindKnownMatchesWholeWords(t *testing.T) {
	found := FindKnown("Saute garlic and onion, then add the eggplant and patis.")
	assert.Equal(t, []string{"garlic", "onion", "eggplant", "fish sauce"}, found)
	assert.NotContains(t, found, "egg")
}

func TestVocabularyLongestFirst(t *testing.T) {
	vocab := Vocabulary()
	for i := 1; i < len(vocab); i++ {
		assert.GreaterOrEqual(t, len(vocab[i-1]), len(vocab[i]))
	}
}

func TestSuggest(t *testing.T) {
	assert.Nil(t, Suggest("m", 0))

	got := Suggest("ma", 0)
	assert.NotEmpty(t, got)
	assert.Equal(t, "malunggay", got[0])
	assert.Contains(t, got, "manok")
	assert.LessOrEqual(t, len(got), 10)

	assert.Len(t, Suggest("an", 2), 2)
}
