package common

import (
	"encoding/json"
	"regexp"
	"strings"
)

var unquotedKeyPattern = regexp.MustCompile(`([{\[,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// QuoteJSONKeys 將未加雙引號的鍵補上雙引號
func QuoteJSONKeys(raw string) string {
	return unquotedKeyPattern.ReplaceAllString(raw, `$1"$2":`)
}

var codeFencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*\\s*\n?(.*?)```")

// StripCodeFence 取出 markdown ``` 區塊中的內容，沒有區塊時原樣回傳
func StripCodeFence(text string) string {
	for _, m := range codeFencePattern.FindAllStringSubmatch(text, -1) {
		if strings.Contains(m[1], "[") {
			return strings.TrimSpace(m[1])
		}
	}
	return strings.TrimSpace(text)
}

// ExtractJSONArray 從自由文字中取出第一個合法的 JSON 陣列
func ExtractJSONArray(text string) (string, bool) {
	text = StripCodeFence(text)
	start := strings.IndexByte(text, '[')
	for start != -1 {
		if end := matchingBracket(text, start); end != -1 {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
			// 模型偶爾會漏掉鍵的引號
			if fixed := QuoteJSONKeys(candidate); json.Valid([]byte(fixed)) {
				return fixed, true
			}
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchingBracket 找到與 start 位置 '[' 對應的 ']'，忽略字串內的括號
func matchingBracket(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
