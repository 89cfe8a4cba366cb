package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/pkg/common"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	defaultCookingMinutes = 30
	defaultServings       = 4
)

// Row 資料集中的一道菜
type Row struct {
	Name        string
	Category    string
	Notes       string
	Calories    string
	Protein     string
	Carbs       string
	Fat         string
	Ingredients string
	PeopleSize  string
}

// Dataset 只讀的菜色資料集
type Dataset struct {
	rows []Row
}

// Load 讀取 CSV 檔
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := LoadReader(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	common.LogInfo("菜色資料集已載入", zap.String("path", path), zap.Int("rows", ds.Len()))
	return ds, nil
}

// LoadReader 解析 CSV，欄位名稱不分大小寫
func LoadReader(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		columns[key] = i
	}
	if _, ok := columns["dish name"]; !ok {
		return nil, errors.New(`missing "Dish Name" column`)
	}

	get := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	ds := &Dataset{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(ds.rows)+2, err)
		}

		row := Row{
			Name:        get(record, "dish name"),
			Category:    get(record, "category"),
			Notes:       get(record, "notes"),
			Calories:    get(record, "calories"),
			Protein:     get(record, "protein"),
			Carbs:       get(record, "carbs"),
			Fat:         get(record, "fat"),
			Ingredients: get(record, "ingredients"),
			PeopleSize:  get(record, "people size"),
		}
		if row.Name == "" {
			continue
		}
		ds.rows = append(ds.rows, row)
	}
	return ds, nil
}

// Len 資料筆數
func (d *Dataset) Len() int {
	return len(d.rows)
}

// LookupByIngredient 找出名稱、備註或分類提到主要食材（含同義字）的菜色，依原始順序回傳
func (d *Dataset) LookupByIngredient(focus string) []common.DishRecord {
	terms := ingredient.Expand(focus)
	if len(terms) == 0 {
		return nil
	}

	var records []common.DishRecord
	for _, row := range d.rows {
		if !ingredient.ContainsAny(row.Name+"\n"+row.Notes+"\n"+row.Category, terms) {
			continue
		}
		records = append(records, row.toRecord(focus, terms))
	}
	return records
}

// Search 以 TierError 回報沒有結果
func (d *Dataset) Search(ctx context.Context, focus string) ([]common.DishRecord, error) {
	records := d.LookupByIngredient(focus)
	if len(records) == 0 {
		return nil, common.NewTierError(common.TierDataset, common.FailureEmptyResult, 0,
			fmt.Errorf("no dataset rows mention %q", focus))
	}
	return records, nil
}

func (r Row) toRecord(focus string, terms []string) common.DishRecord {
	servings := defaultServings
	if n, ok := common.LeadingInt(r.PeopleSize); ok && n > 0 {
		servings = n
	}

	return common.DishRecord{
		Name:               r.Name,
		Description:        r.description(),
		Ingredients:        r.ingredients(focus, terms),
		CookingTimeMinutes: defaultCookingMinutes,
		Difficulty:         common.DifficultyEasy,
		Servings:           servings,
		SourceTier:         common.TierDataset,
	}
}

// ingredients 資料集已有食材欄位時直接使用，否則依菜名推測
func (r Row) ingredients(focus string, terms []string) []string {
	var items []string
	if r.Ingredients != "" {
		items = lo.FilterMap(strings.Split(r.Ingredients, ","), func(s string, _ int) (string, bool) {
			s = strings.TrimSpace(s)
			return s, s != ""
		})
	} else {
		items = Staples(r.Name)
	}

	if !ingredient.ContainsAny(strings.Join(items, ", "), terms) {
		items = append([]string{focus}, items...)
	}
	return lo.UniqBy(items, ingredient.Fold)
}

func (r Row) description() string {
	desc := r.Notes
	if desc == "" && r.Category != "" {
		desc = fmt.Sprintf("A %s dish.", strings.ToLower(r.Category))
	}
	if line := r.nutrition(); line != "" {
		if desc != "" {
			desc = strings.TrimRight(desc, ". ") + ". "
		}
		desc += line
	}
	return desc
}

func (r Row) nutrition() string {
	if r.Calories == "" {
		return ""
	}
	parts := []string{r.Calories + " kcal"}
	for _, n := range []struct{ value, label string }{
		{r.Protein, "protein"},
		{r.Carbs, "carbs"},
		{r.Fat, "fat"},
	} {
		if n.value != "" {
			parts = append(parts, fmt.Sprintf("%sg %s", strings.TrimSuffix(n.value, "g"), n.label))
		}
	}
	return "Nutrition: " + strings.Join(parts, ", ") + "."
}
