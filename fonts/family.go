package fonts

import "strings"

// FormatFamilyList 把字体族列表拼成 CSS 字体串，含空白的族名加引号。
func FormatFamilyList(stack []string) string {
	parts := make([]string, 0, len(stack))
	for _, name := range stack {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.ContainsAny(name, " \t") {
			name = `"` + name + `"`
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, ", ")
}

// SplitFamilyList 把 CSS 字体串拆回族名列表，去除引号与空白，跳过空项。
func SplitFamilyList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		name = strings.Trim(name, `"'`)
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}
