// Package script 基于 Unicode 码点区间识别文本所属的书写系统，
// 为多语言水印挑选合适的字体栈。识别不依赖任何系统服务，永不失败。
package script

// Script 标识一种书写系统。
type Script string

const (
	Latin      Script = "latin"
	Cyrillic   Script = "cyrillic"
	Greek      Script = "greek"
	Arabic     Script = "arabic"
	Hebrew     Script = "hebrew"
	Devanagari Script = "devanagari"
	Bengali    Script = "bengali"
	Thai       Script = "thai"
	Japanese   Script = "japanese"
	Korean     Script = "korean"
	CJK        Script = "cjk"
)

// Range 是一个闭区间 [Lo, Hi] 的 Unicode 码点范围。
type Range struct {
	Lo rune `json:"lo"`
	Hi rune `json:"hi"`
}

// Contains 判断码点 r 是否落在区间内。
func (rg Range) Contains(r rune) bool { return r >= rg.Lo && r <= rg.Hi }

// Info 是识别结果：书写系统及其推荐字体。
// Fallback 保证非空，且最后一项为通用族名（如 sans-serif）。
type Info struct {
	Script     Script   `json:"script"`
	FontFamily string   `json:"fontFamily"`
	Fallback   []string `json:"fallback"`
}

// entry 是识别表中的一行。行内区间不重叠；行的声明顺序参与两处裁决：
// 单个码点命中多行时首行生效，多行计数打平时先声明者胜。不要随意重排。
type entry struct {
	script   Script
	family   string
	fallback []string
	ranges   []Range
}

var table = []entry{
	{
		script:   Latin,
		family:   "Noto Sans",
		fallback: []string{"Arial", "Helvetica", "sans-serif"},
		ranges: []Range{
			{0x0041, 0x005A}, // A-Z
			{0x0061, 0x007A}, // a-z
			{0x00C0, 0x024F}, // 带变音符的拉丁字母与扩展 A/B
			{0x1E00, 0x1EFF}, // 扩展附加区（越南语等）
		},
	},
	{
		script:   Cyrillic,
		family:   "Noto Sans",
		fallback: []string{"Arial", "Helvetica", "sans-serif"},
		ranges: []Range{
			{0x0400, 0x052F}, // 基本区与补充区
			{0x2DE0, 0x2DFF},
			{0xA640, 0xA69F},
		},
	},
	{
		script:   Greek,
		family:   "Noto Sans",
		fallback: []string{"Arial", "Helvetica", "sans-serif"},
		ranges: []Range{
			{0x0370, 0x03FF},
			{0x1F00, 0x1FFF}, // 多调符希腊文
		},
	},
	{
		script:   Arabic,
		family:   "Noto Naskh Arabic",
		fallback: []string{"Noto Sans Arabic", "Tahoma", "sans-serif"},
		ranges: []Range{
			{0x0600, 0x06FF},
			{0x0750, 0x077F},
			{0xFB50, 0xFDFF}, // 表现形式 A
			{0xFE70, 0xFEFF}, // 表现形式 B
		},
	},
	{
		script:   Hebrew,
		family:   "Noto Sans Hebrew",
		fallback: []string{"Arial Hebrew", "David", "sans-serif"},
		ranges: []Range{
			{0x0590, 0x05FF},
			{0xFB1D, 0xFB4F},
		},
	},
	{
		script:   Devanagari,
		family:   "Noto Sans Devanagari",
		fallback: []string{"Mangal", "sans-serif"},
		ranges: []Range{
			{0x0900, 0x097F},
			{0xA8E0, 0xA8FF},
		},
	},
	{
		script:   Bengali,
		family:   "Noto Sans Bengali",
		fallback: []string{"Vrinda", "sans-serif"},
		ranges: []Range{
			{0x0980, 0x09FF},
		},
	},
	{
		script:   Thai,
		family:   "Noto Sans Thai",
		fallback: []string{"Leelawadee UI", "sans-serif"},
		ranges: []Range{
			{0x0E00, 0x0E7F},
		},
	},
	{
		// 假名先于汉字声明：日文混排在计数打平时归为日文而非中文字体。
		script:   Japanese,
		family:   "Noto Sans JP",
		fallback: []string{"Hiragino Sans", "Yu Gothic", "Meiryo", "sans-serif"},
		ranges: []Range{
			{0x3040, 0x309F}, // 平假名
			{0x30A0, 0x30FF}, // 片假名
			{0x31F0, 0x31FF},
			{0xFF65, 0xFF9F}, // 半角片假名
		},
	},
	{
		script:   Korean,
		family:   "Noto Sans KR",
		fallback: []string{"Malgun Gothic", "Apple SD Gothic Neo", "sans-serif"},
		ranges: []Range{
			{0x1100, 0x11FF}, // 谚文字母
			{0x3130, 0x318F},
			{0xAC00, 0xD7AF}, // 谚文音节
		},
	},
	{
		script:   CJK,
		family:   "Noto Sans SC",
		fallback: []string{"PingFang SC", "Microsoft YaHei", "sans-serif"},
		ranges: []Range{
			{0x4E00, 0x9FFF},   // 统一表意文字
			{0x3400, 0x4DBF},   // 扩展 A
			{0xF900, 0xFAFF},   // 兼容表意文字
			{0x20000, 0x2A6DF}, // 扩展 B（增补平面，需按码点而非 UTF-16 单元遍历）
		},
	},
}

// Default 返回拉丁文的识别信息，是所有无法归类文本的兜底结果。
func Default() Info {
	return infoOf(&table[0])
}

// Classify 统计文本中各书写系统的命中次数并返回得票最高者。
// 空文本、无任何命中（纯数字、标点、表情）时返回拉丁文默认值。
// 按 rune 遍历保证增补平面码点（如 CJK 扩展 B）被完整识别。
func Classify(text string) Info {
	if text == "" {
		return Default()
	}

	counts := make([]int, len(table))
	matched := false
	for _, r := range text {
		for i := range table {
			if containsRune(table[i].ranges, r) {
				counts[i]++
				matched = true
				break
			}
		}
	}
	if !matched {
		return Default()
	}

	// 严格大于才替换：计数相同按声明顺序取先声明者。
	best := 0
	for i := 1; i < len(table); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return infoOf(&table[best])
}

// Scripts 按声明顺序返回所有受支持的书写系统标识。
func Scripts() []Script {
	out := make([]Script, 0, len(table))
	for i := range table {
		out = append(out, table[i].script)
	}
	return out
}

func containsRune(ranges []Range, r rune) bool {
	for _, rg := range ranges {
		if rg.Contains(r) {
			return true
		}
	}
	return false
}

func infoOf(e *entry) Info {
	fb := make([]string, len(e.fallback))
	copy(fb, e.fallback)
	return Info{Script: e.script, FontFamily: e.family, Fallback: fb}
}
