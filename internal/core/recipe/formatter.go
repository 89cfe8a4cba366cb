package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/pkg/common"

	"github.com/samber/lo"
)

const (
	defaultCookingMinutes = 30
	defaultServings       = 4
	fullMatchPercentage   = 100
	minStepLength         = 5
)

// tierLabel 各層級的 id 前綴與來源說明
var tierLabel = map[common.SourceTier]struct {
	prefix      string
	attribution string
}{
	common.TierGenerative: {"ai", "AI Assistant"},
	common.TierDocument:   {"doc", "Filipino Dishes Reference Document"},
	common.TierDataset:    {"csv", "Filipino Dishes Dataset"},
}

// Format 將各層級的菜色資料轉為對外格式，無名稱的資料會被捨棄
func Format(records []common.DishRecord, focus string) []common.SuggestionResult {
	focus = strings.TrimSpace(focus)
	ordinals := make(map[common.SourceTier]int)

	results := make([]common.SuggestionResult, 0, len(records))
	for _, r := range records {
		title := strings.TrimSpace(r.Name)
		if title == "" {
			continue
		}

		label, ok := tierLabel[r.SourceTier]
		if !ok {
			label = tierLabel[common.TierDataset]
		}
		ordinals[r.SourceTier]++

		ingredients := ingredientList(r.Ingredients, focus)

		results = append(results, common.SuggestionResult{
			ID:                 label.prefix + "_" + strconv.Itoa(ordinals[r.SourceTier]),
			Title:              title,
			Description:        description(r.Description, ingredients),
			IngredientsCSV:     common.JoinIngredients(ingredients),
			CookingTimeMinutes: positive(r.CookingTimeMinutes, defaultCookingMinutes),
			DifficultyLevel:    difficulty(r.Difficulty),
			Servings:           positive(r.Servings, defaultServings),
			Instructions:       FormatInstructions(r.InstructionsRaw),
			MatchPercentage:    fullMatchPercentage,
			IsAIGenerated:      r.SourceTier == common.TierGenerative,
			Attribution:        label.attribution,
		})
	}
	return results
}

// ingredientList 去除空值與重複，主要食材不存在時放到最前面
func ingredientList(items []string, focus string) []string {
	cleaned := lo.FilterMap(items, func(s string, _ int) (string, bool) {
		s = strings.Join(strings.Fields(s), " ")
		return s, s != ""
	})
	cleaned = lo.UniqBy(cleaned, ingredient.Fold)

	if focus != "" && !ingredient.Mentions(common.JoinIngredients(cleaned), focus) {
		cleaned = append([]string{focus}, cleaned...)
	}
	return cleaned
}

func description(desc string, ingredients []string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if desc != "" {
		return desc
	}
	if len(ingredients) == 0 {
		return "A Filipino dish."
	}
	return fmt.Sprintf("A Filipino dish made with %s.", common.JoinIngredients(lo.Slice(ingredients, 0, 3)))
}

func difficulty(d common.Difficulty) common.Difficulty {
	if v, ok := common.LookupDifficulty(string(d)); ok {
		return v
	}
	return common.DifficultyEasy
}

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

var (
	numberedLine   = regexp.MustCompile(`^(\d+)[.)]\s+(.*)$`)
	inlineNumber   = regexp.MustCompile(`\s\d+[.)]\s`)
	inlineMarker   = regexp.MustCompile(`(?i)(?:^|\s)((?:step\s*\d+\s*[:.)\-]?|\d+[.)])\s)`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+\s+`)
	stepPrefix     = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)\-]?|\d+\s*[.)]|[-*•·])\s*`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// FormatInstructions 將烹飪步驟整理為 "1. ..." 格式，重複套用結果不變
func FormatInstructions(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if steps, ok := numberedSteps(raw); ok {
		return joinSteps(steps)
	}

	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		for _, piece := range splitMarkers(line) {
			for _, fragment := range splitSentences(piece) {
				step := stripPrefix(fragment)
				if len([]rune(step)) < minStepLength {
					continue
				}
				steps = append(steps, step)
			}
		}
	}
	return joinSteps(steps)
}

// numberedSteps 文字已是 1..n 連續編號時取出各步驟內容
func numberedSteps(raw string) ([]string, bool) {
	var steps []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := numberedLine.FindStringSubmatch(line)
		if m == nil {
			if len(steps) == 0 {
				return nil, false
			}
			steps[len(steps)-1] += " " + line
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n != len(steps)+1 {
			return nil, false
		}
		steps = append(steps, m[2])
	}
	if len(steps) == 0 {
		return nil, false
	}
	for i, step := range steps {
		step = stripPrefix(step)
		if len([]rune(step)) < minStepLength || inlineNumber.MatchString(" "+step+" ") {
			return nil, false
		}
		steps[i] = step
	}
	return steps, true
}

// splitMarkers 在行內的 "2)"、"Step 2" 等編號前切開
func splitMarkers(line string) []string {
	var out []string
	start := 0
	for _, loc := range inlineMarker.FindAllStringSubmatchIndex(line, -1) {
		if cut := loc[2]; cut > start {
			out = append(out, line[start:cut])
			start = cut
		}
	}
	return append(out, line[start:])
}

func splitSentences(line string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(line, -1) {
		end := loc[0] + len(strings.TrimRightFunc(line[loc[0]:loc[1]], unicode.IsSpace))
		out = append(out, line[start:end])
		start = loc[1]
	}
	if start < len(line) {
		out = append(out, line[start:])
	}
	return out
}

func stripPrefix(fragment string) string {
	step := collapse(fragment)
	for {
		next := strings.TrimSpace(stepPrefix.ReplaceAllString(step, ""))
		if next == step {
			return step
		}
		step = next
	}
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}

func joinSteps(steps []string) string {
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, step)
	}
	return b.String()
}
