package canvasrenderer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/huuhuybn/miconvert-image-watermark/layout"
	"github.com/huuhuybn/miconvert-image-watermark/renderer"
)

// decodeNRGBA 解码渲染结果并统一为 NRGBA，便于逐像素断言。
func decodeNRGBA(t *testing.T, data []byte) *image.NRGBA {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered output: %v", err)
	}
	return imaging.Clone(img)
}

func channelDiff(a, b color.NRGBA) int {
	d := func(x, y uint8) int {
		if x > y {
			return int(x - y)
		}
		return int(y - x)
	}
	n := d(a.R, b.R)
	if m := d(a.G, b.G); m > n {
		n = m
	}
	if m := d(a.B, b.B); m > n {
		n = m
	}
	return n
}

// countChanged 统计与底色差异明显的像素个数。
func countChanged(img *image.NRGBA, bg color.NRGBA) int {
	const tol = 12
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if channelDiff(img.NRGBAAt(x, y), bg) > tol {
				n++
			}
		}
	}
	return n
}

func textJob(content string) *renderer.Job {
	return &renderer.Job{
		Source: renderer.SourceSpec{Image: imaging.New(320, 200, color.NRGBA{R: 10, G: 20, B: 30, A: 255})},
		Kind:   renderer.KindText,
		Mode:   renderer.ModeSingle,
		Text: &renderer.TextSpec{
			Content:  content,
			Stack:    []string{"sans-serif"},
			FontSize: 28,
			Weight:   400,
			Fill:     color.NRGBA{R: 255, G: 255, B: 255, A: 230},
		},
		Place: renderer.PlaceSpec{
			Anchor:  layout.BottomRight,
			Padding: 16,
			Opacity: 1,
		},
		Output: renderer.OutputSpec{MIME: "image/png"},
	}
}

func TestStyleForWeight(t *testing.T) {
	cases := []struct {
		weight int
		want   canvas.FontStyle
	}{
		{0, canvas.FontRegular},
		{100, canvas.FontLight},
		{300, canvas.FontLight},
		{350, canvas.FontRegular},
		{400, canvas.FontRegular},
		{500, canvas.FontMedium},
		{600, canvas.FontSemiBold},
		{700, canvas.FontBold},
		{800, canvas.FontExtraBold},
		{900, canvas.FontBlack},
	}
	for _, c := range cases {
		if got := styleForWeight(c.weight); got != c.want {
			t.Fatalf("styleForWeight(%d) = %v, want %v", c.weight, got, c.want)
		}
	}
}

func TestInstallValidation(t *testing.T) {
	r := New()
	if err := r.Install("", 400, goregular.TTF, 0); err == nil {
		t.Fatalf("expected error for empty family name")
	}
	if err := r.Install("X", 400, nil, 0); err == nil {
		t.Fatalf("expected error for empty font data")
	}
	if err := r.Install("X", 400, []byte("not a font"), 0); err == nil {
		t.Fatalf("expected error for unparsable font data")
	}
}

func TestInstallAndFaceFallbacks(t *testing.T) {
	r := New()
	if err := r.Install("Test Sans", 400, goregular.TTF, 0); err != nil {
		t.Fatalf("install: %v", err)
	}

	face, err := r.face([]string{"Test Sans"}, 400, 32, color.NRGBA{A: 255})
	if err != nil {
		t.Fatalf("face for installed family: %v", err)
	}
	if face.TextWidth("mm") <= 0 {
		t.Fatalf("expected positive text width")
	}

	// 未注册 700 字重时应退到同族 400
	if _, err := r.face([]string{"Test Sans"}, 700, 32, color.NRGBA{A: 255}); err != nil {
		t.Fatalf("face with weight fallback: %v", err)
	}

	// 整栈未命中时落到内置字体
	if _, err := r.face([]string{"No Such Family"}, 400, 32, color.NRGBA{A: 255}); err != nil {
		t.Fatalf("face with builtin fallback: %v", err)
	}
	if _, err := r.face(nil, 400, 32, color.NRGBA{A: 255}); err != nil {
		t.Fatalf("face with empty stack: %v", err)
	}

	small, _ := r.face([]string{"Test Sans"}, 400, 16, color.NRGBA{A: 255})
	large, _ := r.face([]string{"Test Sans"}, 400, 64, color.NRGBA{A: 255})
	if small.TextWidth("watermark") >= large.TextWidth("watermark") {
		t.Fatalf("larger font size must measure wider")
	}
}

// TestSurfaceRelease 验证释放把表面重置为 1x1，且重复释放无害。
func TestSurfaceRelease(t *testing.T) {
	s := newSurface(64, 48)
	s.Release()
	s.Release()
	if !s.released {
		t.Fatalf("surface must be marked released")
	}

	data, err := encodeSurface(s, renderer.OutputSpec{MIME: "image/png"})
	if err != nil {
		t.Fatalf("encode released surface: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "png" || cfg.Width != 1 || cfg.Height != 1 {
		t.Fatalf("released surface should encode as 1x1 png, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}

func TestFormatForMIME(t *testing.T) {
	ok := map[string]imaging.Format{
		"":               imaging.PNG,
		"image/png":      imaging.PNG,
		"image/jpeg":     imaging.JPEG,
		"image/jpg":      imaging.JPEG,
		"image/gif":      imaging.GIF,
		"image/bmp":      imaging.BMP,
		"image/x-ms-bmp": imaging.BMP,
		"image/tiff":     imaging.TIFF,
	}
	for mime, want := range ok {
		got, err := formatForMIME(mime)
		if err != nil {
			t.Fatalf("formatForMIME(%q): %v", mime, err)
		}
		if got != want {
			t.Fatalf("formatForMIME(%q) = %v, want %v", mime, got, want)
		}
	}
	if _, err := formatForMIME("image/webp"); err == nil {
		t.Fatalf("expected error for unsupported mime")
	}
}

func TestRenderTextSingle(t *testing.T) {
	job := textJob("© MiConvert")
	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "png" || cfg.Width != 320 || cfg.Height != 200 {
		t.Fatalf("unexpected output %dx%d %s", cfg.Width, cfg.Height, format)
	}

	img := decodeNRGBA(t, data)
	bg := color.NRGBA{R: 10, G: 20, B: 30, A: 255}
	// 文字落在右下角，左上角应保持底色
	if d := channelDiff(img.NRGBAAt(4, 4), bg); d > 8 {
		t.Fatalf("top-left corner should keep the source color, diff=%d", d)
	}
	if countChanged(img, bg) == 0 {
		t.Fatalf("watermark left no visible pixels")
	}
}

func TestRenderTextStyled(t *testing.T) {
	job := textJob("Sample\nWatermark")
	job.Text.Weight = 700
	job.Text.Italic = true
	job.Text.Stroke = &color.NRGBA{A: 255}
	job.Text.StrokeWidth = 2
	job.Text.Shadow = &renderer.ShadowSpec{
		Color:   color.NRGBA{A: 160},
		Blur:    3,
		OffsetX: 2,
		OffsetY: 2,
	}
	job.Place.Anchor = layout.Center
	job.Place.Rotate = 30
	job.Place.Opacity = 0.85

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render styled text: %v", err)
	}
	img := decodeNRGBA(t, data)
	if countChanged(img, color.NRGBA{R: 10, G: 20, B: 30, A: 255}) == 0 {
		t.Fatalf("styled watermark left no visible pixels")
	}
}

// TestRenderTextTiledPlan 平铺渲染并检查排版计划输出。
func TestRenderTextTiledPlan(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.json")
	job := textJob("tile")
	job.Mode = renderer.ModeTiled
	job.Place.Rotate = 30
	job.Place.TileSpacingX = 60
	job.Place.TileSpacingY = 40
	job.PlanPath = planPath

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render tiled: %v", err)
	}
	img := decodeNRGBA(t, data)
	if n := countChanged(img, color.NRGBA{R: 10, G: 20, B: 30, A: 255}); n < 100 {
		t.Fatalf("tiled watermark should touch many pixels, got %d", n)
	}

	raw, err := os.ReadFile(planPath)
	if err != nil {
		t.Fatalf("read plan: %v", err)
	}
	var plan layout.Plan
	if err := json.Unmarshal(raw, &plan); err != nil {
		t.Fatalf("unmarshal plan: %v", err)
	}
	if plan.Mode != "tiled" || plan.SurfaceW != 320 || plan.SurfaceH != 200 {
		t.Fatalf("unexpected plan header: %+v", plan)
	}
	if plan.TileW <= 0 || plan.TileH <= 0 {
		t.Fatalf("plan must record tile pitch, got %gx%g", plan.TileW, plan.TileH)
	}
	if len(plan.Tiles) < 4 {
		t.Fatalf("expected several tiles in plan, got %d", len(plan.Tiles))
	}
}

func TestRenderLogoSingle(t *testing.T) {
	logo := imaging.New(40, 40, color.NRGBA{R: 220, A: 255})
	src := imaging.New(200, 100, color.NRGBA{B: 220, A: 255})
	job := &renderer.Job{
		Source: renderer.SourceSpec{Image: src},
		Kind:   renderer.KindLogo,
		Mode:   renderer.ModeSingle,
		Logo:   &renderer.LogoSpec{Image: logo, WidthFraction: 0.25},
		Place: renderer.PlaceSpec{
			Anchor:  layout.TopLeft,
			Padding: 10,
			Opacity: 1,
		},
		Output: renderer.OutputSpec{MIME: "image/png"},
	}

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render logo: %v", err)
	}
	img := decodeNRGBA(t, data)

	// 徽标缩放到表面宽度的四分之一（50px），左上角 padding 10
	center := img.NRGBAAt(35, 35)
	if center.R < 150 || center.B > 100 {
		t.Fatalf("expected logo pixel at its center, got %+v", center)
	}
	corner := img.NRGBAAt(180, 85)
	if corner.B < 150 || corner.R > 100 {
		t.Fatalf("expected background pixel far from the logo, got %+v", corner)
	}
}

func TestRenderLogoTiled(t *testing.T) {
	logo := imaging.New(40, 40, color.NRGBA{R: 220, A: 255})
	src := imaging.New(300, 200, color.NRGBA{B: 220, A: 255})
	job := &renderer.Job{
		Source: renderer.SourceSpec{Image: src},
		Kind:   renderer.KindLogo,
		Mode:   renderer.ModeTiled,
		Logo:   &renderer.LogoSpec{Image: logo, WidthFraction: 0.1},
		Place: renderer.PlaceSpec{
			Opacity:      1,
			TileSpacingX: 20,
			TileSpacingY: 20,
		},
		Output: renderer.OutputSpec{MIME: "image/png"},
	}

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render tiled logo: %v", err)
	}
	img := decodeNRGBA(t, data)

	red := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := img.NRGBAAt(x, y)
			if px.R > 150 && px.B < 100 {
				red++
			}
		}
	}
	// 30px 徽标按 50px 步距平铺，可见单元远多于两个
	if red < 1500 {
		t.Fatalf("expected tiled logo to cover many pixels, got %d", red)
	}
}

func TestRenderLogoMissingAsset(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.png")
	job := &renderer.Job{
		Source: renderer.SourceSpec{Image: imaging.New(100, 80, color.NRGBA{A: 255})},
		Kind:   renderer.KindLogo,
		Mode:   renderer.ModeSingle,
		Logo:   &renderer.LogoSpec{Source: missing},
		Place:  renderer.PlaceSpec{Opacity: 1},
		Output: renderer.OutputSpec{MIME: "image/png"},
	}

	_, err := New().Render(context.Background(), job)
	var ae *renderer.AssetError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AssetError, got %v", err)
	}
	if ae.Locator != missing {
		t.Fatalf("asset error should carry the locator, got %q", ae.Locator)
	}
}

func TestRenderExportErrorUnknownMIME(t *testing.T) {
	job := textJob("x")
	job.Output.MIME = "image/webp"

	_, err := New().Render(context.Background(), job)
	var ee *renderer.ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExportError, got %v", err)
	}
	if ee.MIME != "image/webp" || ee.Width != 320 || ee.Height != 200 {
		t.Fatalf("export error should carry mime and dimensions, got %+v", ee)
	}
}

func TestRenderTilePitchRejected(t *testing.T) {
	job := textJob("x")
	job.Mode = renderer.ModeTiled
	job.Place.TileSpacingX = -10000

	_, err := New().Render(context.Background(), job)
	if !errors.Is(err, renderer.ErrTileGeometry) {
		t.Fatalf("expected ErrTileGeometry, got %v", err)
	}
}

func TestRenderMissingSource(t *testing.T) {
	job := textJob("x")
	job.Source = renderer.SourceSpec{}

	_, err := New().Render(context.Background(), job)
	var de *renderer.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestRenderNilJob(t *testing.T) {
	if _, err := New().Render(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
}

func TestRenderSourceData(t *testing.T) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(64, 64, color.NRGBA{G: 128, A: 255}), imaging.PNG); err != nil {
		t.Fatalf("encode source: %v", err)
	}
	job := textJob("d")
	job.Source = renderer.SourceSpec{Data: buf.Bytes()}

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render from data: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 64 {
		t.Fatalf("unexpected output size %dx%d", cfg.Width, cfg.Height)
	}
}

// TestRenderDownscaleNotice 超出像素预算的源图必须被等比降采样并通知调用方。
func TestRenderDownscaleNotice(t *testing.T) {
	job := textJob("big")
	job.Source = renderer.SourceSpec{Image: imaging.New(5000, 4000, color.NRGBA{R: 40, G: 40, B: 40, A: 255})}
	job.Output = renderer.OutputSpec{MIME: "image/jpeg", Quality: 60}
	job.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	var got renderer.ScaleNotice
	fired := false
	job.OnDownscale = func(n renderer.ScaleNotice) {
		fired = true
		got = n
	}

	data, err := New().Render(context.Background(), job)
	if err != nil {
		t.Fatalf("render oversized source: %v", err)
	}
	if !fired {
		t.Fatalf("downscale notice must fire for oversized sources")
	}
	if got.FromWidth != 5000 || got.FromHeight != 4000 {
		t.Fatalf("notice should carry original size, got %+v", got)
	}
	if got.Width != 4579 || got.Height != 3663 {
		t.Fatalf("unexpected adjusted size %dx%d", got.Width, got.Height)
	}
	if int64(got.Width)*int64(got.Height) > renderer.MaxSurfacePixels {
		t.Fatalf("adjusted size still exceeds the pixel budget")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "jpeg" || cfg.Width != got.Width || cfg.Height != got.Height {
		t.Fatalf("output should match the adjusted size, got %dx%d %s", cfg.Width, cfg.Height, format)
	}
}
