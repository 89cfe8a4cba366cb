package ingredient

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// synonym 標準名稱與其變體（英文 / 菲律賓語 / 常見拼法）
type synonym struct {
	canonical string
	variants  []string
}

// synonymTable 食材同義字表，只讀
var synonymTable = []synonym{
	{"chicken", []string{"manok", "chicken inasal"}},
	{"pork", []string{"baboy", "liempo", "pork belly"}},
	{"beef", []string{"baka"}},
	{"fish", []string{"isda"}},
	{"bangus", []string{"milkfish"}},
	{"tilapia", nil},
	{"galunggong", []string{"round scad"}},
	{"shrimp", []string{"hipon", "prawn", "prawns"}},
	{"squid", []string{"pusit"}},
	{"egg", []string{"itlog", "eggs"}},
	{"tomato", []string{"kamatis", "tomatoes"}},
	{"eggplant", []string{"talong"}},
	{"squash", []string{"kalabasa"}},
	{"string beans", []string{"sitaw"}},
	{"bitter gourd", []string{"ampalaya", "bitter melon"}},
	{"water spinach", []string{"kangkong"}},
	{"cabbage", []string{"repolyo"}},
	{"chayote", []string{"sayote"}},
	{"bottle gourd", []string{"upo"}},
	{"mung bean", []string{"munggo", "monggo", "mung beans"}},
	{"bean sprout", []string{"togue", "bean sprouts"}},
	{"jackfruit", []string{"langka"}},
	{"coconut milk", []string{"gata"}},
	{"taro", []string{"gabi"}},
	{"moringa", []string{"malunggay"}},
	{"rice", []string{"kanin", "bigas"}},
	{"garlic", []string{"bawang"}},
	{"onion", []string{"sibuyas", "onions"}},
	{"ginger", []string{"luya"}},
	{"vinegar", []string{"suka"}},
	{"soy sauce", []string{"toyo"}},
	{"fish sauce", []string{"patis"}},
	{"shrimp paste", []string{"bagoong"}},
	{"noodles", []string{"pancit", "bihon", "canton"}},
	{"banana", []string{"saging", "saba"}},
	{"calamansi", []string{"kalamansi"}},
	{"pepper", []string{"paminta"}},
	{"salt", []string{"asin"}},
	{"potato", []string{"patatas", "potatoes"}},
	{"sausage", []string{"longganisa", "longganiza"}},
	{"tamarind", []string{"sampalok"}},
	{"bay leaf", []string{"laurel", "bay leaves"}},
}

type index struct {
	canonical  map[string]string   // folded term -> canonical
	expansions map[string][]string // canonical -> canonical + variants
	vocabulary []string            // longest first
}

var table = buildIndex(synonymTable)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func buildIndex(entries []synonym) *index {
	idx := &index{
		canonical:  make(map[string]string),
		expansions: make(map[string][]string, len(entries)),
	}
	for _, e := range entries {
		terms := append([]string{e.canonical}, e.variants...)
		idx.expansions[e.canonical] = terms
		for _, term := range terms {
			idx.canonical[Fold(term)] = e.canonical
			idx.vocabulary = append(idx.vocabulary, term)
		}
	}
	sort.SliceStable(idx.vocabulary, func(i, j int) bool {
		if len(idx.vocabulary[i]) != len(idx.vocabulary[j]) {
			return len(idx.vocabulary[i]) > len(idx.vocabulary[j])
		}
		return idx.vocabulary[i] < idx.vocabulary[j]
	})
	return idx
}

// Fold 轉為比較用字串：小寫、去除重音、連字號與空白合併
func Fold(text string) string {
	folded, _, err := transform.String(stripAccents, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	folded = strings.NewReplacer("-", " ", "_", " ").Replace(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Normalize 將食材名稱轉為標準名稱，未知食材去除前後空白後原樣回傳
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := table.canonical[Fold(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// IsKnown 是否在同義字表中
func IsKnown(raw string) bool {
	_, ok := table.canonical[Fold(raw)]
	return ok
}

// Expand 回傳食材的所有同義字，必定包含輸入本身
func Expand(name string) []string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}
	canonical, ok := table.canonical[Fold(trimmed)]
	if !ok {
		return []string{trimmed}
	}
	terms := append([]string{trimmed}, table.expansions[canonical]...)
	return lo.UniqBy(terms, Fold)
}

// ContainsAny 文字中是否出現任一詞（不分大小寫的子字串比對）
func ContainsAny(text string, terms []string) bool {
	folded := Fold(text)
	for _, term := range terms {
		if t := Fold(term); t != "" && strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// Mentions 文字中是否出現食材或其同義字
func Mentions(text, name string) bool {
	return ContainsAny(text, Expand(name))
}

// CountOccurrences 計算任一詞在文字中出現的次數，長詞優先且不重疊
func CountOccurrences(text string, terms []string) int {
	pattern := termPattern(terms)
	if pattern == nil {
		return 0
	}
	return len(pattern.FindAllStringIndex(Fold(text), -1))
}

func termPattern(terms []string) *regexp.Regexp {
	folded := lo.Uniq(lo.FilterMap(terms, func(t string, _ int) (string, bool) {
		f := Fold(t)
		return f, f != ""
	}))
	if len(folded) == 0 {
		return nil
	}
	sort.SliceStable(folded, func(i, j int) bool { return len(folded[i]) > len(folded[j]) })
	quoted := lo.Map(folded, func(t string, _ int) string { return regexp.QuoteMeta(t) })
	return regexp.MustCompile(strings.Join(quoted, "|"))
}

// Vocabulary 所有已知食材詞彙，長詞在前
func Vocabulary() []string {
	out := make([]string, len(table.vocabulary))
	copy(out, table.vocabulary)
	return out
}

// FindKnown 依出現順序回傳文字中提到的標準食材名稱
func FindKnown(text string) []string {
	folded := Fold(text)
	type hit struct {
		canonical string
		pos       int
	}
	var hits []hit
	for _, term := range table.vocabulary {
		if pos := indexWord(folded, Fold(term)); pos >= 0 {
			hits = append(hits, hit{canonical: table.canonical[Fold(term)], pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	return lo.Uniq(lo.Map(hits, func(h hit, _ int) string { return h.canonical }))
}

// indexWord 找出完整單字的位置，"egg" 不會命中 "eggplant"
func indexWord(text, word string) int {
	offset := 0
	for {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			return -1
		}
		start := offset + i
		end := start + len(word)
		if !isLetterAt(text, start-1) && !isLetterAt(text, end) {
			return start
		}
		offset = start + 1
	}
}

func isLetterAt(text string, i int) bool {
	if i < 0 || i >= len(text) {
		return false
	}
	c := text[i]
	return c >= 'a' && c <= 'z'
}

const (
	minSuggestPrefix    = 2
	defaultSuggestLimit = 10
)

// Suggest 食材自動完成：前綴相符優先，其次為包含相符
func Suggest(prefix string, limit int) []string {
	query := Fold(prefix)
	if len([]rune(query)) < minSuggestPrefix {
		return nil
	}
	if limit <= 0 {
		limit = defaultSuggestLimit
	}

	var starts, contains []string
	for _, term := range table.vocabulary {
		f := Fold(term)
		switch {
		case strings.HasPrefix(f, query):
			starts = append(starts, term)
		case strings.Contains(f, query):
			contains = append(contains, term)
		}
	}
	sort.Strings(starts)
	sort.Strings(contains)

	out := append(starts, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
