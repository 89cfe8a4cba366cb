package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// SystemPrompt 要求模型以固定欄位的 JSON 陣列回覆
const SystemPrompt = `You are a helpful cooking assistant. Provide recipe suggestions in JSON format with the following structure: [{"name": "Recipe Name", "description": "Brief description", "ingredients": ["ingredient1", "ingredient2"], "cooking_time": 30, "difficulty": "Easy", "servings": 4, "instructions": "Step-by-step instructions"}]. Respond with exactly one JSON array and nothing else.`

// Service 生成層服務
type Service struct {
	config   config.AIConfig
	provider provider.Provider
	cache    cache.Store
}

// NewService 創建生成服務，store 可為 nil
func NewService(cfg config.AIConfig, p provider.Provider, store cache.Store) *Service {
	return &Service{
		config:   cfg,
		provider: p,
		cache:    store,
	}
}

// BuildPrompt 組合使用者提示
func BuildPrompt(q common.IngredientQuery, count int) string {
	available := q.RawIngredients
	if len(available) == 0 && q.HasFocus() {
		available = []string{q.FocusIngredient}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I have these ingredients available: %s. ", strings.Join(available, ", "))
	if len(q.DietaryPreferences) > 0 {
		fmt.Fprintf(&b, "Dietary preferences: %s. ", strings.Join(q.DietaryPreferences, ", "))
	}
	if d := q.CookingTime.Describe(); d != "" {
		fmt.Fprintf(&b, "Cooking time preference: %s. ", d)
	}
	if q.Difficulty != "" {
		fmt.Fprintf(&b, "Difficulty level: %s. ", common.ParseDifficulty(q.Difficulty))
	}
	if q.ForceGenerativeOnly && q.HasFocus() {
		fmt.Fprintf(&b, "Every suggestion MUST include %q in its ingredients list. ", q.FocusIngredient)
	}
	fmt.Fprintf(&b, "Please suggest %d creative and delicious meal ideas that I can make with these ingredients. ", count)
	b.WriteString("For each suggestion, provide: 1) Recipe name, 2) Brief description, 3) List of ingredients needed (including what I have and what I might need to buy), 4) Cooking time in minutes, 5) Difficulty level (Easy/Medium/Hard), 6) Number of servings, 7) Basic cooking instructions. ")
	b.WriteString("Format the response as a single JSON array of recipe objects with the fields name, description, ingredients, cooking_time, difficulty, servings, instructions.")
	return b.String()
}

// Generate 向生成服務取得菜色建議
func (s *Service) Generate(ctx context.Context, q common.IngredientQuery) ([]common.DishRecord, error) {
	if !s.config.Configured() || s.provider == nil {
		return nil, common.NewTierError(common.TierGenerative, common.FailureConfiguration, 0,
			errors.New("api key is missing or a placeholder"))
	}

	prompt := BuildPrompt(q, s.config.SuggestionCount)
	key := cache.Key(s.provider.GetModel(), SystemPrompt, prompt)

	resp, err := s.complete(ctx, key, &provider.Request{
		Model: s.config.Model,
		Messages: []provider.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return nil, err
	}

	records, err := ParseCompletion(resp.Content, q)
	if err != nil {
		return nil, err
	}

	if resp.CacheHit {
		common.LogInfo("使用快取的生成結果", zap.Int("count", len(records)))
		return records, nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp.Content); err != nil {
			common.LogWarn("生成結果寫入快取失敗", zap.Error(err))
		}
	}
	return records, nil
}

// complete 先查快取，未命中才呼叫生成服務
func (s *Service) complete(ctx context.Context, key string, req *provider.Request) (*provider.Response, error) {
	if content, ok := s.cached(ctx, key); ok {
		return &provider.Response{Content: content, CacheHit: true}, nil
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		var tierErr *common.TierError
		if errors.As(err, &tierErr) {
			return nil, err
		}
		return nil, common.NewTierError(common.TierGenerative, common.FailureUpstream, 0, err)
	}
	return resp, nil
}

func (s *Service) cached(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	content, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
		return "", false
	}
	return content, true
}

// ParseCompletion 從模型輸出取出菜色陣列並轉為 DishRecord
func ParseCompletion(content string, q common.IngredientQuery) ([]common.DishRecord, error) {
	array, ok := common.ExtractJSONArray(content)
	if !ok {
		return nil, common.NewTierError(common.TierGenerative, common.FailureParse, 0,
			fmt.Errorf("no JSON array in response: %s", common.Truncate(content, 120)))
	}

	var records []common.DishRecord
	gjson.Parse(array).ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		record, ok := toDishRecord(item, q.FocusIngredient)
		if ok {
			records = append(records, record)
		}
		return true
	})

	if len(records) == 0 {
		return nil, common.NewTierError(common.TierGenerative, common.FailureEmptyResult, 0,
			errors.New("response array contained no usable recipes"))
	}
	return records, nil
}

func toDishRecord(item gjson.Result, focus string) (common.DishRecord, bool) {
	name := strings.TrimSpace(firstString(item, "name", "title", "recipe_name"))
	if name == "" {
		return common.DishRecord{}, false
	}

	ingredients := stringList(item.Get("ingredients"))
	if focus != "" && !ingredient.ContainsAny(strings.Join(ingredients, ", "), ingredient.Expand(focus)) {
		ingredients = append([]string{focus}, ingredients...)
	}

	return common.DishRecord{
		Name:               name,
		Description:        strings.TrimSpace(item.Get("description").String()),
		Ingredients:        ingredients,
		CookingTimeMinutes: minutes(item.Get("cooking_time")),
		Difficulty:         common.ParseDifficulty(item.Get("difficulty").String()),
		Servings:           number(item.Get("servings")),
		InstructionsRaw:    instructions(item.Get("instructions")),
		SourceTier:         common.TierGenerative,
		RelevanceScore:     1,
	}, true
}

func firstString(item gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// stringList 接受陣列或逗號分隔字串
func stringList(v gjson.Result) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch {
	case v.IsArray():
		v.ForEach(func(_, e gjson.Result) bool {
			if e.IsObject() {
				add(firstString(e, "name", "item", "ingredient"))
			} else {
				add(e.String())
			}
			return true
		})
	case v.Type == gjson.String:
		for _, part := range strings.FieldsFunc(v.String(), func(r rune) bool { return r == ',' || r == ';' || r == '\n' }) {
			add(part)
		}
	}
	return out
}

func minutes(v gjson.Result) int {
	if v.Type == gjson.Number {
		return int(v.Int())
	}
	if m, ok := common.ExtractMinutes(v.String()); ok {
		return m
	}
	return number(v)
}

func number(v gjson.Result) int {
	if v.Type == gjson.Number {
		return int(v.Int())
	}
	n, _ := common.LeadingInt(v.String())
	return n
}

// instructions 接受字串或步驟陣列
func instructions(v gjson.Result) string {
	if !v.IsArray() {
		return strings.TrimSpace(v.String())
	}
	var steps []string
	v.ForEach(func(_, e gjson.Result) bool {
		if s := strings.TrimSpace(e.String()); s != "" {
			steps = append(steps, s)
		}
		return true
	})
	return strings.Join(steps, "\n")
}
