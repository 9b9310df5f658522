package generator

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:html|javascript|typescript|jsx|tsx)?\\n?(.*?)\\n?```")

// ExtractCode 去掉模型输出外层的对话/markdown 围栏，只保留第一个代码块内容；
// 没有围栏时原样返回。
func ExtractCode(raw string) string {
	if !strings.Contains(raw, "```") {
		return raw
	}
	m := fenceRe.FindStringSubmatch(raw)
	if len(m) < 2 {
		return raw
	}
	return m[1]
}

// IsCompleteDocument reports whether html carries a doctype plus opening
// html, head and body tags. It is a substring heuristic, not a parser.
func IsCompleteDocument(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "<!doctype html") &&
		hasOpenTag(lower, "html") &&
		hasOpenTag(lower, "head") &&
		hasOpenTag(lower, "body")
}

// hasOpenTag matches "<name" followed by '>', '/' or whitespace, so that
// <head> is not satisfied by <header>.
func hasOpenTag(lower, name string) bool {
	needle := "<" + name
	for i := 0; ; {
		j := strings.Index(lower[i:], needle)
		if j < 0 {
			return false
		}
		end := i + j + len(needle)
		if end >= len(lower) {
			return false
		}
		switch lower[end] {
		case '>', '/', ' ', '\t', '\n', '\r', '\f':
			return true
		}
		i = end
	}
}

var errNoJSONObject = errors.New("no JSON object in enhancer output")

// ParseBrief 从增强阶段的原始输出中找出第一个顶层 JSON 对象并解析。
func ParseBrief(raw string) (Brief, error) {
	obj, ok := firstJSONObject(raw)
	if !ok {
		return Brief{}, errNoJSONObject
	}
	var b Brief
	if err := json.Unmarshal([]byte(obj), &b); err != nil {
		return Brief{}, err
	}
	b.EnhancedPrompt = strings.TrimSpace(b.EnhancedPrompt)
	return b, nil
}

// firstJSONObject returns the first brace-balanced {...} substring, skipping
// braces inside JSON strings.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
