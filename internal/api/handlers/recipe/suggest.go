package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"recipe-suggester/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Suggester 食譜推薦服務
type Suggester interface {
	Suggest(ctx context.Context, q common.IngredientQuery) *common.SuggestResponse
}

// IngredientList 接受 JSON 陣列或以逗號分隔的字串
type IngredientList []string

// UnmarshalJSON 實現 json.Unmarshaler
func (l *IngredientList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("ingredients must be a list or a comma separated string")
	}
	*l = strings.Split(text, ",")
	return nil
}

// SuggestRequest 以食材推薦食譜的請求
type SuggestRequest struct {
	Ingredients        IngredientList `json:"ingredients"`
	FocusIngredient    string         `json:"focus_ingredient"`
	DietaryPreferences []string       `json:"dietary_preferences,omitempty"`
	CookingTime        string         `json:"cooking_time,omitempty"` // quick / medium / long
	Difficulty         string         `json:"difficulty,omitempty"`   // easy / medium / hard
	AIOnly             bool           `json:"ai_only,omitempty"`
}

// Query 驗證並轉換為查詢條件
func (r SuggestRequest) Query() (common.IngredientQuery, error) {
	q := common.IngredientQuery{
		RawIngredients:      r.Ingredients,
		FocusIngredient:     r.FocusIngredient,
		DietaryPreferences:  r.DietaryPreferences,
		CookingTime:         common.CookingTimeBucket(r.CookingTime),
		Difficulty:          r.Difficulty,
		ForceGenerativeOnly: r.AIOnly,
	}.Normalized()

	if !q.CookingTime.Valid() {
		return q, common.NewValidationError("cooking_time must be one of quick, medium, long")
	}
	if q.Difficulty != "" {
		if _, ok := common.LookupDifficulty(q.Difficulty); !ok {
			return q, common.NewValidationError("difficulty must be one of easy, medium, hard")
		}
	}
	return q, nil
}

// Handler 食譜推薦處理程序
type Handler struct {
	suggester Suggester
}

// NewHandler 創建新的食譜處理程序
func NewHandler(suggester Suggester) *Handler {
	return &Handler{suggester: suggester}
}

// HandleSuggest 依食材推薦食譜，沒有結果時仍回傳 200 與 success=false
func (h *Handler) HandleSuggest(c *gin.Context) {
	requestID := requestid.Get(c)
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "Invalid request format",
			Details: err.Error(),
		})
		return
	}

	q, err := req.Query()
	if err != nil {
		common.LogWarn("請求參數無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	common.LogInfo("開始處理食譜推薦請求",
		zap.String("request_id", requestID),
		zap.Strings("ingredients", q.RawIngredients),
		zap.String("focus", q.FocusIngredient),
		zap.Bool("ai_only", q.ForceGenerativeOnly),
	)

	resp := h.suggester.Suggest(c.Request.Context(), q)
	c.JSON(http.StatusOK, resp)
}
