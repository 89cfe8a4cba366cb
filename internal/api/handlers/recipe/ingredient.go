package recipe

import (
	"net/http"
	"strconv"
	"strings"

	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// IngredientSuggestResponse 食材自動完成
type IngredientSuggestResponse struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
}

// SynonymResponse 食材同義字
type SynonymResponse struct {
	Name      string   `json:"name"`
	Canonical string   `json:"canonical"`
	Known     bool     `json:"known"`
	Synonyms  []string `json:"synonyms"`
}

// HandleIngredientSuggest 食材名稱自動完成
func HandleIngredientSuggest(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "limit must be a positive integer",
		})
		return
	}

	suggestions := ingredient.Suggest(query, limit)
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, IngredientSuggestResponse{Query: query, Suggestions: suggestions})
}

// HandleIngredientSynonyms 查詢食材的標準名稱與同義字
func HandleIngredientSynonyms(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "name is required",
		})
		return
	}

	c.JSON(http.StatusOK, SynonymResponse{
		Name:      name,
		Canonical: ingredient.Normalize(name),
		Known:     ingredient.IsKnown(name),
		Synonyms:  ingredient.Expand(name),
	})
}
