package csscolor

import (
	"image/color"
	"testing"
)

// TestParseHex 三种常用位数与带透明度的十六进制。
func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"#fff", color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}},
		{"#000", color.NRGBA{0, 0, 0, 0xFF}},
		{"#1a2b3c", color.NRGBA{0x1A, 0x2B, 0x3C, 0xFF}},
		{"#11223344", color.NRGBA{0x11, 0x22, 0x33, 0x44}},
		{"#f00a", color.NRGBA{0xFF, 0, 0, 0xAA}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q 期望 %v，实际 %v", tc.in, tc.want, got)
		}
	}
}

// TestParseFunctions rgb/rgba/hsl/hsla 的逗号与空格斜杠两种写法。
func TestParseFunctions(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
	}{
		{"rgb(255, 128, 0)", color.NRGBA{0xFF, 0x80, 0, 0xFF}},
		{"rgb(255 128 0)", color.NRGBA{0xFF, 0x80, 0, 0xFF}},
		{"rgba(255, 255, 255, 0.5)", color.NRGBA{0xFF, 0xFF, 0xFF, 0x80}},
		{"rgb(255 255 255 / 0.5)", color.NRGBA{0xFF, 0xFF, 0xFF, 0x80}},
		{"rgba(100%, 0%, 0%, 50%)", color.NRGBA{0xFF, 0, 0, 0x80}},
		{"hsl(0, 100%, 50%)", color.NRGBA{0xFF, 0, 0, 0xFF}},
		{"hsl(120, 100%, 50%)", color.NRGBA{0, 0xFF, 0, 0xFF}},
		{"hsl(240 100% 50%)", color.NRGBA{0, 0, 0xFF, 0xFF}},
		{"hsla(0, 0%, 100%, 0.25)", color.NRGBA{0xFF, 0xFF, 0xFF, 0x40}},
		{"hsl(-120, 100%, 50%)", color.NRGBA{0, 0, 0xFF, 0xFF}}, // 负角度取模
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q 期望 %v，实际 %v", tc.in, tc.want, got)
		}
	}
}

// TestParseNamed 颜色关键字大小写不敏感。
func TestParseNamed(t *testing.T) {
	got, err := Parse("White")
	if err != nil || got != (color.NRGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Fatalf("White 解析异常: %v %v", got, err)
	}
	got, err = Parse("transparent")
	if err != nil || got.A != 0 {
		t.Fatalf("transparent 透明度应为 0: %v %v", got, err)
	}
}

// TestParseClamping 超出范围的通道值与透明度被夹取。
func TestParseClamping(t *testing.T) {
	got, err := Parse("rgb(300, -20, 128)")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got.R != 0xFF || got.G != 0 || got.B != 0x80 {
		t.Fatalf("通道夹取错误: %v", got)
	}
	got, err = Parse("rgba(0, 0, 0, 1.5)")
	if err != nil || got.A != 0xFF {
		t.Fatalf("透明度夹取错误: %v %v", got, err)
	}
}

// TestParseErrors 空串、未知关键字、位数错误、参数个数错误。
func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"notacolorname",
		"#12",
		"#12345",
		"rgb(1, 2)",
		"cmyk(0, 0, 0, 1)",
		"rgb(a, b, c)",
	}
	for _, in := range bad {
		if _, err := Parse(in); err == nil {
			t.Fatalf("%q 应返回错误", in)
		}
	}
}

// TestMustParse 合法值不 panic 并与 Parse 一致。
func TestMustParse(t *testing.T) {
	want, err := Parse("rgba(255,255,255,0.5)")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got := MustParse("rgba(255,255,255,0.5)"); got != want {
		t.Fatalf("MustParse 结果不一致: %v != %v", got, want)
	}
}
