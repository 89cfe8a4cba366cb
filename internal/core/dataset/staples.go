package dataset

import (
	"strings"

	"recipe-suggester/internal/core/ingredient"

	"github.com/samber/lo"
)

type stapleRule struct {
	keywords []string
	staples  []string
}

// stapleRules 依菜名關鍵字推測的基本食材
var stapleRules = []stapleRule{
	{[]string{"adobo"}, []string{"soy sauce", "vinegar", "garlic", "bay leaf", "pepper"}},
	{[]string{"sinigang"}, []string{"tamarind", "water", "salt", "fish sauce", "vegetables"}},
	{[]string{"ginataan", "ginataang"}, []string{"coconut milk", "garlic", "onion", "ginger"}},
	{[]string{"kare-kare", "kare kare"}, []string{"peanut", "shrimp paste", "eggplant", "string beans"}},
	{[]string{"pancit", "noodles", "mami", "lomi", "batchoy", "sopas"}, []string{"noodles", "garlic", "onion", "soy sauce", "cabbage"}},
	{[]string{"lugaw", "arroz caldo", "goto", "porridge"}, []string{"rice", "ginger", "garlic", "onion", "fish sauce"}},
	{[]string{"torta", "omelette"}, []string{"egg", "garlic", "onion", "oil"}},
	{[]string{"lumpia"}, []string{"lumpia wrapper", "garlic", "onion", "carrot", "oil"}},
	{[]string{"silog", "sinangag"}, []string{"rice", "egg", "garlic", "oil"}},
	{[]string{"tinola"}, []string{"ginger", "onion", "garlic", "fish sauce", "green papaya"}},
	{[]string{"inihaw", "grilled"}, []string{"soy sauce", "calamansi", "garlic", "pepper"}},
	{[]string{"prito", "fried"}, []string{"oil", "salt", "garlic"}},
}

var genericStaples = []string{"oil", "salt", "pepper", "garlic", "onion"}

// Staples 依菜名推測基本食材，沒有符合的關鍵字時回傳通用調味
func Staples(dishName string) []string {
	name := ingredient.Fold(dishName)

	var out []string
	for _, rule := range stapleRules {
		if lo.SomeBy(rule.keywords, func(k string) bool { return strings.Contains(name, ingredient.Fold(k)) }) {
			out = append(out, rule.staples...)
		}
	}
	if len(out) == 0 {
		out = append(out, genericStaples...)
	}
	return lo.Uniq(out)
}
