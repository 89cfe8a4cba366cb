package common

import (
	"strings"
)

// CookingTimeBucket 烹飪時間區間
type CookingTimeBucket string

const (
	CookingTimeQuick  CookingTimeBucket = "quick"
	CookingTimeMedium CookingTimeBucket = "medium"
	CookingTimeLong   CookingTimeBucket = "long"
)

// Valid 是否為合法的時間區間（空值代表未指定）
func (b CookingTimeBucket) Valid() bool {
	switch b {
	case "", CookingTimeQuick, CookingTimeMedium, CookingTimeLong:
		return true
	}
	return false
}

// Describe 轉成 prompt 使用的描述
func (b CookingTimeBucket) Describe() string {
	switch b {
	case CookingTimeQuick:
		return "quick (under 30 minutes)"
	case CookingTimeMedium:
		return "medium (30 to 60 minutes)"
	case CookingTimeLong:
		return "long (over 60 minutes)"
	}
	return ""
}

// Difficulty 難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty 將任意字串轉為難度，無法辨識時回傳 Easy
func ParseDifficulty(s string) Difficulty {
	d, ok := LookupDifficulty(s)
	if !ok {
		return DifficultyEasy
	}
	return d
}

// LookupDifficulty 辨識難度字串
func LookupDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "simple", "beginner":
		return DifficultyEasy, true
	case "medium", "moderate", "intermediate":
		return DifficultyMedium, true
	case "hard", "difficult", "advanced", "expert":
		return DifficultyHard, true
	}
	return "", false
}

// SourceTier 推薦來源層級
type SourceTier string

const (
	TierGenerative SourceTier = "generative"
	TierDocument   SourceTier = "document"
	TierDataset    SourceTier = "dataset"
)

// IngredientQuery 一次推薦請求的查詢條件，建立後不可修改
type IngredientQuery struct {
	RawIngredients      []string          `json:"ingredients"`
	FocusIngredient     string            `json:"focus_ingredient,omitempty"`
	DietaryPreferences  []string          `json:"dietary_preferences,omitempty"`
	CookingTime         CookingTimeBucket `json:"cooking_time,omitempty"`
	Difficulty          string            `json:"difficulty,omitempty"`
	ForceGenerativeOnly bool              `json:"ai_only,omitempty"`
}

// HasFocus 是否指定主要食材
func (q IngredientQuery) HasFocus() bool {
	return strings.TrimSpace(q.FocusIngredient) != ""
}

// IsEmpty 沒有任何食材可供推薦
func (q IngredientQuery) IsEmpty() bool {
	return len(q.RawIngredients) == 0 && !q.HasFocus()
}

// Normalized 回傳整理過的副本：去除空白、空值與重複項
func (q IngredientQuery) Normalized() IngredientQuery {
	out := q
	out.RawIngredients = cleanList(q.RawIngredients)
	out.DietaryPreferences = cleanList(q.DietaryPreferences)
	out.FocusIngredient = strings.TrimSpace(q.FocusIngredient)
	out.CookingTime = CookingTimeBucket(strings.ToLower(strings.TrimSpace(string(q.CookingTime))))
	out.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
	return out
}

func cleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

// DishRecord 各層級產生的中繼菜色資料，格式化後即丟棄
type DishRecord struct {
	Name               string
	Description        string
	Ingredients        []string
	CookingTimeMinutes int
	Difficulty         Difficulty
	Servings           int
	InstructionsRaw    string
	SourceTier         SourceTier
	RelevanceScore     int
}

// SuggestionResult 對外輸出的推薦結果
type SuggestionResult struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	IngredientsCSV     string     `json:"ingredients"`
	CookingTimeMinutes int        `json:"cooking_time"`
	DifficultyLevel    Difficulty `json:"difficulty_level"`
	Servings           int        `json:"servings"`
	Instructions       string     `json:"instructions"`
	MatchPercentage    int        `json:"match_percentage"`
	IsAIGenerated      bool       `json:"is_ai_generated"`
	Attribution        string     `json:"attribution"`
}

// SuggestResponse 推薦結果回應
type SuggestResponse struct {
	Success bool               `json:"success"`
	Recipes []SuggestionResult `json:"recipes"`
	Message string             `json:"message,omitempty"`
	Reason  FailureReason      `json:"reason,omitempty"`
}

// JoinIngredients 將食材列表轉為以逗號分隔的字串
func JoinIngredients(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return strings.Join(items, ", ")
}
