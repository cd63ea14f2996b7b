package renderer

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// TestClampSizeWithinBudget 预算内的尺寸原样返回。
func TestClampSizeWithinBudget(t *testing.T) {
	cases := [][2]int{
		{1920, 1080},
		{4096, 4096},
		{1, 1},
		{16_777_216, 1},
	}
	for _, c := range cases {
		got := ClampSize(c[0], c[1])
		if got.WasScaled || got.Width != c[0] || got.Height != c[1] {
			t.Fatalf("%v 应原样返回，实际 %+v", c, got)
		}
	}
}

// TestClampSizeDownscales 超预算尺寸等比缩小且不超预算。
func TestClampSizeDownscales(t *testing.T) {
	got := ClampSize(6000, 4000)
	if !got.WasScaled {
		t.Fatalf("6000x4000 应被降采样")
	}
	if got.Width*got.Height > MaxSurfacePixels {
		t.Fatalf("降采样后仍超预算: %dx%d", got.Width, got.Height)
	}
	// 宽高比 3:2，允许取整误差
	want := 6000.0 / 4000.0
	gotRatio := float64(got.Width) / float64(got.Height)
	if math.Abs(gotRatio-want) > 0.01 {
		t.Fatalf("宽高比偏差过大: %g != %g", gotRatio, want)
	}
	// 缩放系数本身也应接近 sqrt(预算/面积)
	ratio := math.Sqrt(float64(MaxSurfacePixels) / (6000.0 * 4000.0))
	if got.Width != int(math.Floor(6000*ratio)) || got.Height != int(math.Floor(4000*ratio)) {
		t.Fatalf("缩放结果与公式不符: %+v", got)
	}
}

// TestClampSizeDegenerate 极端宽高比与非正输入不产生零边。
func TestClampSizeDegenerate(t *testing.T) {
	got := ClampSize(1, 100_000_000)
	if got.Width < 1 || got.Height < 1 {
		t.Fatalf("任何一边都不得小于 1: %+v", got)
	}
	if got.Width*got.Height > MaxSurfacePixels {
		t.Fatalf("仍超预算: %+v", got)
	}
	got = ClampSize(0, -5)
	if got.Width != 1 || got.Height != 1 || got.WasScaled {
		t.Fatalf("非正输入应归一为 1x1: %+v", got)
	}
}

// TestErrorTypes 错误类型的消息内容与解包。
func TestErrorTypes(t *testing.T) {
	cause := errors.New("底层失败")
	exp := &ExportError{MIME: "image/webp", Width: 800, Height: 600, Err: cause}
	msg := exp.Error()
	for _, want := range []string{"image/webp", "800", "600"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("导出错误消息缺少 %q: %s", want, msg)
		}
	}
	if !errors.Is(exp, cause) {
		t.Fatalf("ExportError 应可解包出原因")
	}

	dec := &DecodeError{Err: cause}
	if !errors.Is(dec, cause) || dec.Error() == "" {
		t.Fatalf("DecodeError 异常: %v", dec)
	}

	asset := &AssetError{Locator: "logo.png", Err: cause}
	if !strings.Contains(asset.Error(), "logo.png") || !errors.Is(asset, cause) {
		t.Fatalf("AssetError 异常: %v", asset)
	}
}
