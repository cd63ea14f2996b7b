// Package binding 负责水印文案中的占位符展开。
// 文案里的 ${path.to.value} 会在渲染前被替换为变量表中的值，
// ${now} 与 ${now:2006-01-02 15:04} 输出当前时间，便于打时间戳水印。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// 时间占位符前缀与默认布局。
const (
	nowPrefix        = "now"
	defaultNowLayout = "2006-01-02"
)

// Interpolate 展开文案中的全部占位符。
// vars 中不存在的路径保留原占位符不动，展开过程永不失败。
func Interpolate(text string, vars map[string]any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		expr := strings.TrimSpace(groups[1])
		if expr == "" {
			return match
		}
		if val, ok := evalBuiltin(expr); ok {
			return val
		}
		if val, ok := resolvePath(vars, expr); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// evalBuiltin 处理内置占位符，目前仅有时间戳 now。
func evalBuiltin(expr string) (string, bool) {
	if expr == nowPrefix {
		return time.Now().Format(defaultNowLayout), true
	}
	if layout, ok := strings.CutPrefix(expr, nowPrefix+":"); ok {
		layout = strings.TrimSpace(layout)
		if layout == "" {
			layout = defaultNowLayout
		}
		return time.Now().Format(layout), true
	}
	return "", false
}

// resolvePath 沿点号路径逐级下钻，段内的 [i] 下标访问数组元素。
func resolvePath(vars map[string]any, path string) (any, bool) {
	if vars == nil {
		return nil, false
	}
	var current any = vars
	for _, segment := range strings.Split(path, ".") {
		name, indexes := splitSegment(segment)
		if name != "" {
			var ok bool
			current, ok = fieldOf(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, raw := range indexes {
			idx, err := strconv.Atoi(raw)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = elementOf(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// splitSegment 把 "items[0][1]" 拆成字段名与下标序列。
func splitSegment(segment string) (string, []string) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil
	}
	name := segment[:i]
	var indexes []string
	rest := segment[i:]
	for strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func fieldOf(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func elementOf(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
