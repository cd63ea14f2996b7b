// Package csscolor 解析选项层传入的 CSS 颜色字符串（填充、描边、阴影颜色）。
// 支持 #hex（3/4/6/8 位）、rgb()/rgba()、hsl()/hsla()（逗号与空格/斜杠两种写法）
// 以及常用颜色关键字。解析结果为非预乘的 color.NRGBA。
package csscolor

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	colorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Hex", Pattern: `#[0-9A-Fa-f]{3,8}`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\.\d+|\d+)%?`},
		{Name: "Ident", Pattern: `[A-Za-z]+`},
		{Name: "Symbol", Pattern: `[(),/]`},
	})

	colorParser = participle.MustBuild[colorValue](
		participle.Lexer(colorLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)

// colorValue 是颜色表达式的根节点：十六进制、函数形式或关键字。
type colorValue struct {
	Hex  *string   `parser:"  @Hex"`
	Func *funcForm `parser:"| @@"`
	Name *string   `parser:"| @Ident"`
}

// funcForm 捕获 rgb(...)/hsl(...) 等函数写法。
// 参数分隔符兼容传统逗号与 CSS Color 4 的空格/斜杠写法。
type funcForm struct {
	Name string   `parser:"@Ident"`
	Args []string `parser:"'(' @Number ( ( ',' | '/' )? @Number )* ')'"`
}

// Parse 将 CSS 颜色字符串解析为非预乘 RGBA。
func Parse(s string) (color.NRGBA, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return color.NRGBA{}, fmt.Errorf("颜色值为空")
	}
	v, err := colorParser.ParseString("", trimmed)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
	}
	c, err := v.resolve()
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("无法解析颜色 %q: %w", s, err)
	}
	return c, nil
}

// MustParse 供默认值等已知合法的颜色使用，解析失败即 panic。
func MustParse(s string) color.NRGBA {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (v *colorValue) resolve() (color.NRGBA, error) {
	switch {
	case v.Hex != nil:
		return parseHex(*v.Hex)
	case v.Func != nil:
		return v.Func.resolve()
	case v.Name != nil:
		name := strings.ToLower(*v.Name)
		if c, ok := named[name]; ok {
			return c, nil
		}
		return color.NRGBA{}, fmt.Errorf("未知的颜色关键字 %s", name)
	default:
		return color.NRGBA{}, fmt.Errorf("颜色表达式为空")
	}
}

func (f *funcForm) resolve() (color.NRGBA, error) {
	switch strings.ToLower(f.Name) {
	case "rgb", "rgba":
		return resolveRGB(f.Args)
	case "hsl", "hsla":
		return resolveHSL(f.Args)
	default:
		return color.NRGBA{}, fmt.Errorf("不支持的颜色函数 %s()", f.Name)
	}
}

// parseHex 支持 #rgb、#rgba、#rrggbb、#rrggbbaa 四种长度。
func parseHex(s string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(s, "#")
	switch len(digits) {
	case 3, 4:
		var expanded strings.Builder
		for _, r := range digits {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		digits = expanded.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("十六进制颜色位数必须为 3/4/6/8")
	}
	val, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return color.NRGBA{}, err
	}
	if len(digits) == 6 {
		return color.NRGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 0xFF}, nil
	}
	return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}

func resolveRGB(args []string) (color.NRGBA, error) {
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("rgb()/rgba() 需要 3 或 4 个参数，收到 %d 个", len(args))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		val, percent, err := parseNumber(args[i])
		if err != nil {
			return color.NRGBA{}, err
		}
		if percent {
			val = val * 255 / 100
		}
		ch[i] = clampByte(val)
	}
	a := uint8(0xFF)
	if len(args) == 4 {
		alpha, err := parseAlpha(args[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		a = alpha
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

func resolveHSL(args []string) (color.NRGBA, error) {
	if len(args) != 3 && len(args) != 4 {
		return color.NRGBA{}, fmt.Errorf("hsl()/hsla() 需要 3 或 4 个参数，收到 %d 个", len(args))
	}
	h, _, err := parseNumber(args[0])
	if err != nil {
		return color.NRGBA{}, err
	}
	s, _, err := parseNumber(args[1])
	if err != nil {
		return color.NRGBA{}, err
	}
	l, _, err := parseNumber(args[2])
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := hslToRGB(h, clamp01(s/100), clamp01(l/100))
	a := uint8(0xFF)
	if len(args) == 4 {
		alpha, err := parseAlpha(args[3])
		if err != nil {
			return color.NRGBA{}, err
		}
		a = alpha
	}
	return color.NRGBA{
		R: clampByte(r * 255),
		G: clampByte(g * 255),
		B: clampByte(b * 255),
		A: a,
	}, nil
}

// parseNumber 解析一个可能带百分号的数值 token。
func parseNumber(tok string) (val float64, percent bool, err error) {
	raw := tok
	if strings.HasSuffix(raw, "%") {
		percent = true
		raw = strings.TrimSuffix(raw, "%")
	}
	val, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("非法数值 %q", tok)
	}
	return val, percent, nil
}

// parseAlpha 解析透明度：百分号按百分比，否则视为 [0,1] 小数。
func parseAlpha(tok string) (uint8, error) {
	val, percent, err := parseNumber(tok)
	if err != nil {
		return 0, err
	}
	if percent {
		val /= 100
	}
	return clampByte(clamp01(val) * 255), nil
}

// hslToRGB 按 CSS 规范将 HSL 转为 [0,1] 区间的 RGB。
func hslToRGB(h, s, l float64) (r, g, b float64) {
	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// named 覆盖水印场景里常见的 CSS 颜色关键字。
var named = map[string]color.NRGBA{
	"transparent": {0, 0, 0, 0},
	"black":       {0, 0, 0, 0xFF},
	"white":       {0xFF, 0xFF, 0xFF, 0xFF},
	"red":         {0xFF, 0, 0, 0xFF},
	"lime":        {0, 0xFF, 0, 0xFF},
	"green":       {0, 0x80, 0, 0xFF},
	"blue":        {0, 0, 0xFF, 0xFF},
	"yellow":      {0xFF, 0xFF, 0, 0xFF},
	"cyan":        {0, 0xFF, 0xFF, 0xFF},
	"aqua":        {0, 0xFF, 0xFF, 0xFF},
	"magenta":     {0xFF, 0, 0xFF, 0xFF},
	"fuchsia":     {0xFF, 0, 0xFF, 0xFF},
	"gray":        {0x80, 0x80, 0x80, 0xFF},
	"grey":        {0x80, 0x80, 0x80, 0xFF},
	"silver":      {0xC0, 0xC0, 0xC0, 0xFF},
	"maroon":      {0x80, 0, 0, 0xFF},
	"olive":       {0x80, 0x80, 0, 0xFF},
	"navy":        {0, 0, 0x80, 0xFF},
	"teal":        {0, 0x80, 0x80, 0xFF},
	"purple":      {0x80, 0, 0x80, 0xFF},
	"orange":      {0xFF, 0xA5, 0, 0xFF},
	"gold":        {0xFF, 0xD7, 0, 0xFF},
	"pink":        {0xFF, 0xC0, 0xCB, 0xFF},
}
