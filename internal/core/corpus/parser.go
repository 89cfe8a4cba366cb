package corpus

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/pkg/common"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 版面判斷與評分參數，依實際文件調整
const (
	maxTitleLength       = 100
	maxTitleWords        = 8
	minChunkLength       = 100
	dedupPrefixLength    = 100
	maxDescriptionLength = 200
	minPrimaryBlocks     = 2
	sectionBreakBlanks   = 2

	titleScore             = 10
	ingredientSectionScore = 8
	occurrenceScore        = 2
	occurrenceScoreCap     = 6

	defaultCookingMinutes = 30
	defaultServings       = 4
)

var (
	blankRunPattern = regexp.MustCompile(`\n{5,}`)
	paragraphSplit  = regexp.MustCompile(`\n[ \t]*\n+`)
	sectionPattern  = regexp.MustCompile(`^(?i)(ingredients?|instructions?|procedure|method|steps|directions|description|category)\s*(?::|-|–|$)\s*(.*)$`)
	numberedTitle   = regexp.MustCompile(`^\d{1,3}[.)]\s+(\S.*)$`)
	trailingMarker  = regexp.MustCompile(`^(.+?)\s*(?::|-|–|—)$`)
	servingsPattern = regexp.MustCompile(`(?i)\b(?:serves|servings?|yield(?:s)?)\s*:?\s*(\d+)|(\d+)\s+servings?\b`)
	sentenceSplit   = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
	hardPattern     = regexp.MustCompile(`(?i)\b(difficult|advanced|challenging)\b|\bdifficulty\s*:?\s*hard\b`)
	mediumPattern   = regexp.MustCompile(`(?i)\b(moderate|intermediate)\b|\bdifficulty\s*:?\s*medium\b`)
	imperativeVerbs = regexp.MustCompile(`(?i)\b(heat|add|mix|stir|cook|fry|boil|simmer|season|serve|saute|bake|grill|marinate|combine|pour|place|bring|remove|cover|slice|chop)\b`)
	listSeparators  = regexp.MustCompile(`[,;\n]+`)
	bulletPrefix    = regexp.MustCompile(`^(?:[-*•·]+|\d+[.)])\s*`)
)

// connectorWords 標題中允許小寫的連接詞
var connectorWords = map[string]struct{}{
	"na": {}, "sa": {}, "ng": {}, "at": {}, "and": {}, "with": {}, "of": {},
	"the": {}, "a": {}, "an": {}, "in": {}, "de": {}, "y": {}, "or": {}, "con": {},
}

var titleCaser = cases.Title(language.Und)

// span 文件中的位元組區間 [start, end)
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// block 單一菜色的文字區塊
type block struct {
	title string
	lines []string
	span  span

	// inferred 標題由食材推得，不是文件中的標題行
	inferred bool
}

func (b *block) text() string {
	return strings.Join(b.lines, "\n")
}

// NormalizeText 統一換行並壓縮過多的空白行，保留段落結構
func NormalizeText(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	text = strings.Join(lines, "\n")

	return blankRunPattern.ReplaceAllString(text, "\n\n\n")
}

// ParseDocument 將參考文件切成菜色並依主要食材評分，沒有符合時回傳空切片
func ParseDocument(rawText, focus string) []common.DishRecord {
	text := NormalizeText(rawText)
	terms := ingredient.Expand(focus)
	if len(terms) == 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	blocks := segment(text, terms)

	var records []common.DishRecord
	for _, b := range blocks {
		sections := splitSections(b.lines)
		score := relevance(b, sections, terms)
		if score == 0 {
			continue
		}
		record := extract(b, sections, focus, terms)
		record.RelevanceScore = score
		records = append(records, record)
	}

	// 同分維持文件順序
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].RelevanceScore > records[j].RelevanceScore
	})
	return records
}

// segment 先以版面切塊，區塊不足時再以段落補充
func segment(text string, terms []string) []*block {
	blocks := primarySegments(text)
	if len(blocks) < minPrimaryBlocks {
		blocks = append(blocks, secondarySegments(text, terms, blocks)...)
	}
	return blocks
}

// primarySegments 逐行掃描，以標題行開啟新區塊
func primarySegments(text string) []*block {
	var (
		blocks    []*block
		current   *block
		blankRun  int
		prevBlank = true
		inSection bool
		offset    int
	)

	closeBlock := func() {
		if current != nil {
			blocks = append(blocks, current)
			current = nil
		}
		inSection = false
	}

	for _, raw := range strings.SplitAfter(text, "\n") {
		start := offset
		offset += len(raw)
		line := strings.TrimSpace(raw)
		end := start + len(strings.TrimRight(raw, "\n"))

		if line == "" {
			blankRun++
			if blankRun >= sectionBreakBlanks {
				closeBlock()
			}
			prevBlank = true
			continue
		}

		if title, ok := classifyTitle(line, inSection, prevBlank); ok {
			closeBlock()
			current = &block{title: title, span: span{start: start, end: end}}
		} else if current != nil {
			current.lines = append(current.lines, line)
			current.span.end = end
			if sectionPattern.MatchString(line) {
				inSection = true
			}
		}

		blankRun = 0
		prevBlank = false
	}
	closeBlock()
	return blocks
}

// classifyTitle 判斷一行是否為菜名，回傳整理後的標題
func classifyTitle(line string, inSection, prevBlank bool) (string, bool) {
	if len(line) >= maxTitleLength || sectionPattern.MatchString(line) {
		return "", false
	}

	open := !inSection || prevBlank

	if m := numberedTitle.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		if open && !strings.HasSuffix(rest, ".") && (isAllCaps(rest) || isTitleCase(rest)) {
			return cleanTitle(rest), true
		}
		return "", false
	}

	if m := trailingMarker.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		if open && !sectionPattern.MatchString(rest) && (isAllCaps(rest) || isTitleCase(rest)) {
			return rest, true
		}
		return "", false
	}

	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") {
		return "", false
	}
	if isAllCaps(line) && open {
		return line, true
	}
	if isTitleCase(line) && prevBlank {
		return line, true
	}
	return "", false
}

func cleanTitle(title string) string {
	return strings.TrimSpace(strings.TrimRight(title, ":-–— "))
}

// isAllCaps 至少兩個字母且沒有小寫
func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}

// isTitleCase 每個非連接詞都以大寫開頭
func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > maxTitleWords {
		return false
	}
	significant := 0
	for _, w := range words {
		w = strings.Trim(w, `"'()`)
		if w == "" {
			continue
		}
		if _, ok := connectorWords[strings.ToLower(w)]; ok {
			continue
		}
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			return false
		}
		significant++
	}
	return significant > 0
}

// secondarySegments 以空白行與重複出現的段落標籤切段，保留含主要食材且未被佔用的段落
func secondarySegments(text string, terms []string, claimed []*block) []*block {
	taken := make([]span, 0, len(claimed))
	prefixes := make([]string, 0, len(claimed))
	for _, b := range claimed {
		taken = append(taken, b.span)
		prefixes = append(prefixes, prefix(b.title+"\n"+b.text()))
	}

	var chunks []span
	cursor := 0
	bounds := append(paragraphSplit.FindAllStringIndex(text, -1), []int{len(text), len(text)})
	for _, sep := range bounds {
		chunks = append(chunks, sectionSpans(text, span{start: cursor, end: sep[0]})...)
		cursor = sep[1]
	}

	var out []*block
	for _, chunkSpan := range chunks {
		chunk := strings.TrimSpace(text[chunkSpan.start:chunkSpan.end])
		if len(chunk) <= minChunkLength || !ingredient.ContainsAny(chunk, terms) {
			continue
		}
		if overlapsAny(chunkSpan, taken) {
			continue
		}
		p := prefix(chunk)
		if containsPrefix(prefixes, p) {
			continue
		}

		lines := nonEmptyLines(chunk)
		title, body, inferred := chunkTitle(lines, terms)
		out = append(out, &block{title: title, lines: body, span: chunkSpan, inferred: inferred})
		taken = append(taken, chunkSpan)
		prefixes = append(prefixes, p)
	}
	return out
}

// sectionSpans 段落中同一種標籤再次出現時，視為下一道菜的開始
func sectionSpans(text string, s span) []span {
	var out []span
	seen := make(map[string]bool)
	start, offset := s.start, s.start
	for _, raw := range strings.SplitAfter(text[s.start:s.end], "\n") {
		lineStart := offset
		offset += len(raw)
		m := sectionPattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		kind := sectionKind(m[1])
		if seen[kind] && lineStart > start {
			out = append(out, span{start: start, end: lineStart})
			start = lineStart
			seen = make(map[string]bool)
		}
		seen[kind] = true
	}
	return append(out, span{start: start, end: s.end})
}

func sectionKind(label string) string {
	switch label = strings.ToLower(label); {
	case strings.HasPrefix(label, "ingredient"):
		return "ingredients"
	case label == "description", label == "category":
		return label
	}
	return "instructions"
}

func overlapsAny(s span, taken []span) bool {
	for _, t := range taken {
		if s.overlaps(t) {
			return true
		}
	}
	return false
}

func prefix(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > dedupPrefixLength {
		s = s[:dedupPrefixLength]
	}
	return strings.ToLower(s)
}

func containsPrefix(prefixes []string, p string) bool {
	for _, existing := range prefixes {
		if existing == p || strings.HasPrefix(existing, p) || strings.HasPrefix(p, existing) {
			return true
		}
	}
	return false
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// chunkTitle 取段落中第一個像標題的行，找不到時以段落提到的食材命名
func chunkTitle(lines, terms []string) (string, []string, bool) {
	for i, line := range lines {
		if sectionPattern.MatchString(line) {
			break
		}
		if title, ok := classifyTitle(line, false, true); ok {
			body := append(append([]string{}, lines[:i]...), lines[i+1:]...)
			return title, body, false
		}
	}

	text := strings.Join(lines, "\n")
	for _, term := range terms {
		if ingredient.ContainsAny(text, []string{term}) {
			return titleCaser.String(strings.ToLower(term)) + " dish", lines, true
		}
	}
	return "", lines, true
}

// sections 區塊內的標籤段落
type sections struct {
	preamble     []string
	ingredients  string
	instructions string
	description  string
	category     string
	hasIngr      bool
	hasInstr     bool
}

func splitSections(lines []string) sections {
	var s sections
	var current *string
	for _, line := range lines {
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			switch sectionKind(m[1]) {
			case "ingredients":
				current = &s.ingredients
				s.hasIngr = true
			case "description":
				current = &s.description
			case "category":
				current = &s.category
			default:
				current = &s.instructions
				s.hasInstr = true
			}
			appendLine(current, m[2])
			continue
		}
		if current == nil {
			s.preamble = append(s.preamble, line)
			continue
		}
		appendLine(current, line)
	}
	return s
}

func appendLine(dst *string, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if *dst != "" {
		*dst += "\n"
	}
	*dst += line
}

// relevance 標題 +10、食材段落 +8、其他出現次數每次 +2（上限 +6）
func relevance(b *block, s sections, terms []string) int {
	score := 0
	if !b.inferred && ingredient.ContainsAny(b.title, terms) {
		score += titleScore
	}
	if s.hasIngr && ingredient.ContainsAny(s.ingredients, terms) {
		score += ingredientSectionScore
	}

	rest := strings.Join(append(append([]string{}, s.preamble...), s.instructions, s.description, s.category), "\n")
	if extra := ingredient.CountOccurrences(rest, terms) * occurrenceScore; extra > 0 {
		if extra > occurrenceScoreCap {
			extra = occurrenceScoreCap
		}
		score += extra
	}
	return score
}

func extract(b *block, s sections, focus string, terms []string) common.DishRecord {
	full := b.title + "\n" + b.text()

	return common.DishRecord{
		Name:               dishName(b),
		Description:        description(s),
		Ingredients:        ingredientList(b, s, focus, terms),
		CookingTimeMinutes: cookingMinutes(full),
		Difficulty:         difficulty(full),
		Servings:           servings(full),
		InstructionsRaw:    instructionText(b, s),
		SourceTier:         common.TierDocument,
	}
}

func dishName(b *block) string {
	name := cleanTitle(b.title)
	if isAllCaps(name) {
		return titleCaser.String(strings.ToLower(name))
	}
	return name
}

func description(s sections) string {
	desc := s.description
	if desc == "" && len(s.preamble) > 0 {
		desc = strings.Join(s.preamble, " ")
	}
	if desc == "" && s.category != "" {
		desc = "Category: " + s.category
	}
	return common.Truncate(strings.Join(strings.Fields(desc), " "), maxDescriptionLength)
}

func ingredientList(b *block, s sections, focus string, terms []string) []string {
	var items []string
	if s.hasIngr {
		for _, part := range listSeparators.Split(s.ingredients, -1) {
			part = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
			part = strings.TrimSuffix(part, ".")
			if part != "" {
				items = append(items, part)
			}
		}
	} else {
		items = ingredient.FindKnown(b.title + "\n" + b.text())
	}

	if !ingredient.ContainsAny(strings.Join(items, ", "), terms) {
		items = append([]string{focus}, items...)
	}
	return items
}

func instructionText(b *block, s sections) string {
	if s.hasInstr && strings.TrimSpace(s.instructions) != "" {
		return s.instructions
	}

	var steps []string
	for _, line := range append(append([]string{}, s.preamble...), s.description) {
		for _, sentence := range splitSentences(line) {
			if imperativeVerbs.MatchString(sentence) {
				steps = append(steps, sentence)
			}
		}
	}
	return strings.Join(steps, " ")
}

func splitSentences(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			out = append(out, s)
		}
		last = loc[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

func cookingMinutes(text string) int {
	if m, ok := common.ExtractMinutes(text); ok {
		return m
	}
	return defaultCookingMinutes
}

func difficulty(text string) common.Difficulty {
	switch {
	case hardPattern.MatchString(text):
		return common.DifficultyHard
	case mediumPattern.MatchString(text):
		return common.DifficultyMedium
	}
	return common.DifficultyEasy
}

func servings(text string) int {
	m := servingsPattern.FindStringSubmatch(text)
	if m == nil {
		return defaultServings
	}
	for _, g := range m[1:] {
		if n, ok := common.LeadingInt(g); ok && n > 0 {
			return n
		}
	}
	return defaultServings
}
