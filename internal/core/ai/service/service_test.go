package service

import (
	"context"
	"testing"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/provider"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
	last    *provider.Request
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string          { return "fake-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

func aiConfig() config.AIConfig {
	return config.AIConfig{
		APIKey:          "sk-live-abcdefghijkl",
		Model:           "fake-model",
		MaxTokens:       500,
		Temperature:     0.7,
		SuggestionCount: 3,
	}
}

const completion = "Sure! Here you go:\n```json\n" + `[
  {"name": "Chicken Adobo", "description": "Braised chicken", "ingredients": ["chicken", "soy sauce", "vinegar"], "cooking_time": "45 minutes", "difficulty": "medium", "servings": "4 servings", "instructions": ["Marinate the chicken.", "Simmer until tender."]},
  {"name": "Garlic Rice", "ingredients": "rice, garlic, oil", "cooking_time": 15, "difficulty": "Easy", "servings": 2, "instructions": "Fry garlic. Add rice."},
  {"description": "nameless entry"}
]` + "\n```"

func TestGenerateParsesFlexibleFields(t *testing.T) {
	p := &fakeProvider{content: completion}
	svc := NewService(aiConfig(), p, nil)

	records, err := svc.Generate(context.Background(), common.IngredientQuery{RawIngredients: []string{"chicken", "rice"}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	adobo := records[0]
	assert.Equal(t, "Chicken Adobo", adobo.Name)
	assert.Equal(t, 45, adobo.CookingTimeMinutes)
	assert.Equal(t, common.DifficultyMedium, adobo.Difficulty)
	assert.Equal(t, 4, adobo.Servings)
	assert.Equal(t, "Marinate the chicken.\nSimmer until tender.", adobo.InstructionsRaw)
	assert.Equal(t, common.TierGenerative, adobo.SourceTier)

	rice := records[1]
	assert.Equal(t, []string{"rice", "garlic", "oil"}, rice.Ingredients)
	assert.Equal(t, 15, rice.CookingTimeMinutes)

	require.Len(t, p.last.Messages, 2)
	assert.Equal(t, "system", p.last.Messages[0].Role)
	assert.Contains(t, p.last.Messages[1].Content, "chicken, rice")
	assert.Contains(t, p.last.Messages[1].Content, "suggest 3")
}

func TestGenerateInjectsFocusIngredient(t *testing.T) {
	p := &fakeProvider{content: completion}
	svc := NewService(aiConfig(), p, nil)

	q := common.IngredientQuery{FocusIngredient: "bangus", ForceGenerativeOnly: true}
	records, err := svc.Generate(context.Background(), q)
	require.NoError(t, err)

	for _, r := range records {
		assert.Equal(t, "bangus", r.Ingredients[0])
	}
	assert.Contains(t, p.last.Messages[1].Content, `MUST include "bangus"`)
}

func TestGenerateDoesNotDuplicateSynonymFocus(t *testing.T) {
	p := &fakeProvider{content: completion}
	svc := NewService(aiConfig(), p, nil)

	records, err := svc.Generate(context.Background(), common.IngredientQuery{FocusIngredient: "manok", ForceGenerativeOnly: true})
	require.NoError(t, err)
	assert.Equal(t, "chicken", records[0].Ingredients[0])
}

func TestGenerateNotConfigured(t *testing.T) {
	p := &fakeProvider{content: completion}
	cfg := aiConfig()
	cfg.APIKey = "your-api-key"
	svc := NewService(cfg, p, nil)

	_, err := svc.Generate(context.Background(), common.IngredientQuery{RawIngredients: []string{"egg"}})
	assert.Equal(t, common.FailureConfiguration, common.ReasonOf(err))
	assert.Zero(t, p.calls)
}

func TestGeneratePassesThroughProviderFailure(t *testing.T) {
	p := &fakeProvider{err: common.NewTierError(common.TierGenerative, common.FailureQuotaExceeded, 429, nil)}
	svc := NewService(aiConfig(), p, nil)

	_, err := svc.Generate(context.Background(), common.IngredientQuery{RawIngredients: []string{"egg"}})
	assert.Equal(t, common.FailureQuotaExceeded, common.ReasonOf(err))
}

func TestGenerateParseAndEmptyFailures(t *testing.T) {
	q := common.IngredientQuery{RawIngredients: []string{"egg"}}

	svc := NewService(aiConfig(), &fakeProvider{content: "I'm sorry, I can't do that."}, nil)
	_, err := svc.Generate(context.Background(), q)
	assert.Equal(t, common.FailureParse, common.ReasonOf(err))

	svc = NewService(aiConfig(), &fakeProvider{content: `[{"description": "no name"}, "text"]`}, nil)
	_, err = svc.Generate(context.Background(), q)
	assert.Equal(t, common.FailureEmptyResult, common.ReasonOf(err))
}

func TestGenerateUsesCache(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{content: completion}
	svc := NewService(aiConfig(), p, store)
	q := common.IngredientQuery{RawIngredients: []string{"chicken"}}

	first, err := svc.Generate(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.Generate(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.calls)
}

func TestCompleteMarksCacheHit(t *testing.T) {
	store := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	p := &fakeProvider{content: completion}
	svc := NewService(aiConfig(), p, store)
	ctx := context.Background()
	req := &provider.Request{Model: "test", Messages: []provider.Message{{Role: "user", Content: "chicken"}}}

	resp, err := svc.complete(ctx, "k", req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)

	require.NoError(t, store.Set(ctx, "k", resp.Content))
	resp, err = svc.complete(ctx, "k", req)
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)
	assert.Equal(t, completion, resp.Content)
	assert.Equal(t, 1, p.calls)
}
