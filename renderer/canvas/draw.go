package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"

	"github.com/huuhuybn/miconvert-image-watermark/layout"
	"github.com/huuhuybn/miconvert-image-watermark/renderer"
)

const (
	// italicShear 是合成斜体的剪切系数，约合 12 度倾角。
	italicShear = 0.2126

	// defaultLineHeightRatio 是未显式指定行高时相对字号的倍率。
	defaultLineHeightRatio = 1.3

	// shadowHaloAlpha 是模糊晕影相对阴影本体的透明度。
	shadowHaloAlpha = 0.35

	// defaultLogoFraction 是徽标宽度占表面宽度的默认比例。
	defaultLogoFraction = 0.15

	// logoFetchTimeout 是上下文未带截止时间时拉取远程徽标的超时。
	logoFetchTimeout = 10 * time.Second
)

// textGeometry 是量好尺寸、备好字面的一段多行文本。
type textGeometry struct {
	lines   []string
	face    *canvas.FontFace
	width   float64 // 最宽一行的宽度
	height  float64 // 行高乘行数
	ascent  float64
	lineGap float64
}

// measureText 解析样式并测量文本盒。字号与行高默认值在此叠加响应式系数，
// 显式给定的行高按原值使用。
func (r *Renderer) measureText(spec *renderer.TextSpec, m float64) (*textGeometry, error) {
	if spec == nil {
		return nil, fmt.Errorf("文本水印缺少样式参数")
	}
	size := spec.FontSize * m
	if size <= 0 {
		return nil, fmt.Errorf("缩放后字号必须为正，当前为 %.2f", size)
	}
	face, err := r.face(spec.Stack, spec.Weight, size, spec.Fill)
	if err != nil {
		return nil, err
	}
	lineGap := spec.LineHeight
	if lineGap <= 0 {
		lineGap = size * defaultLineHeightRatio
	}
	lines := strings.Split(spec.Content, "\n")
	var width float64
	for _, line := range lines {
		if w := face.TextWidth(line); w > width {
			width = w
		}
	}
	return &textGeometry{
		lines:   lines,
		face:    face,
		width:   width,
		height:  lineGap * float64(len(lines)),
		ascent:  face.Metrics().Ascent,
		lineGap: lineGap,
	}, nil
}

// blockPath 把整段文本转为一条位于表面坐标系的轮廓路径。
// 字形轮廓以基线为原点、y 向上，需要翻转到 y 向下的表面坐标；
// 斜体以剪切近似，作用在翻转之前的字形坐标上。
func blockPath(g *textGeometry, origin layout.Point, italic bool) (*canvas.Path, error) {
	p := &canvas.Path{}
	for i, line := range g.lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lp, _, err := g.face.ToPath(line)
		if err != nil {
			return nil, fmt.Errorf("文本轮廓生成失败: %w", err)
		}
		baseline := origin.Y + g.ascent + float64(i)*g.lineGap
		m := canvas.Identity.Translate(origin.X, baseline).Scale(1, -1)
		if italic {
			m = m.Shear(italicShear, 0)
		}
		p = p.Append(lp.Transform(m))
	}
	return p, nil
}

// rotAbout 返回绕 (cx, cy) 顺时针旋转 deg 度的变换：
// 平移到中心、旋转、再平移回去。
func rotAbout(deg, cx, cy float64) canvas.Matrix {
	return canvas.Identity.Translate(cx, cy).Rotate(deg).Translate(-cx, -cy)
}

// paintBlock 按阴影、填充、描边的顺序绘制文本路径。
// 模糊没有精确对应物，用同一路径的四向偏移晕影近似。
func paintBlock(s *surface, spec *renderer.TextSpec, p *canvas.Path, opacity float64) {
	transparent := color.RGBA{}
	if sh := spec.Shadow; sh != nil && sh.Color.A > 0 {
		core := scaleAlpha(sh.Color, opacity)
		s.ctx.SetStrokeColor(transparent)
		if sh.Blur > 0 {
			s.ctx.SetFillColor(scaleAlpha(core, shadowHaloAlpha))
			for _, d := range [4][2]float64{{sh.Blur, 0}, {-sh.Blur, 0}, {0, sh.Blur}, {0, -sh.Blur}} {
				s.ctx.DrawPath(sh.OffsetX+d[0], sh.OffsetY+d[1], p)
			}
		}
		s.ctx.SetFillColor(core)
		s.ctx.DrawPath(sh.OffsetX, sh.OffsetY, p)
	}
	if spec.Fill.A > 0 {
		s.ctx.SetFillColor(scaleAlpha(spec.Fill, opacity))
		s.ctx.SetStrokeColor(transparent)
		s.ctx.DrawPath(0, 0, p)
	}
	if spec.Stroke != nil && spec.Stroke.A > 0 && spec.StrokeWidth > 0 {
		s.ctx.SetFillColor(transparent)
		s.ctx.SetStrokeColor(scaleAlpha(*spec.Stroke, opacity))
		s.ctx.SetStrokeWidth(spec.StrokeWidth)
		s.ctx.DrawPath(0, 0, p)
	}
}

// scaleAlpha 把颜色的透明度按系数缩放，RGB 分量不动。
func scaleAlpha(c color.NRGBA, f float64) color.NRGBA {
	if f >= 1 {
		return c
	}
	if f < 0 {
		f = 0
	}
	c.A = uint8(math.Round(float64(c.A) * f))
	return c
}

func (r *Renderer) drawTextSingle(s *surface, job *renderer.Job, plan *layout.Plan) error {
	g, err := r.measureText(job.Text, plan.Multiplier)
	if err != nil {
		return err
	}
	origin := layout.Position(s.w, s.h, g.width, g.height,
		job.Place.Anchor, job.Place.Padding, job.Place.OffsetX, job.Place.OffsetY)
	p, err := blockPath(g, origin, job.Text.Italic)
	if err != nil {
		return err
	}
	if job.Place.Rotate != 0 {
		p = p.Transform(rotAbout(job.Place.Rotate, origin.X+g.width/2, origin.Y+g.height/2))
	}
	paintBlock(s, job.Text, p, job.Place.Opacity)
	plan.BoxW, plan.BoxH = g.width, g.height
	plan.Origin = origin
	return nil
}

// drawTextTiled 铺满整个表面。整幅栅格绕表面中心旋转与
// 先把单元绕自身中心旋转、再把单元中心映射过同一旋转等价，
// 这里按后者实现，免去整面变换。
func (r *Renderer) drawTextTiled(s *surface, job *renderer.Job, plan *layout.Plan) error {
	g, err := r.measureText(job.Text, plan.Multiplier)
	if err != nil {
		return err
	}
	tileW := g.width + job.Place.TileSpacingX*plan.Multiplier
	tileH := g.height + job.Place.TileSpacingY*plan.Multiplier
	if tileW <= 0 || tileH <= 0 {
		return renderer.ErrTileGeometry
	}
	proto, err := blockPath(g, layout.Point{}, job.Text.Italic)
	if err != nil {
		return err
	}
	if job.Place.Rotate != 0 {
		proto = proto.Transform(rotAbout(job.Place.Rotate, g.width/2, g.height/2))
	}
	rot := rotAbout(job.Place.Rotate, s.w/2, s.h/2)
	collect := job.PlanPath != ""
	for x, y := range layout.Tiles(s.w, s.h, tileW, tileH) {
		c := rot.Dot(canvas.Point{X: x + g.width/2, Y: y + g.height/2})
		ox, oy := c.X-g.width/2, c.Y-g.height/2
		paintBlock(s, job.Text, proto.Copy().Transform(canvas.Identity.Translate(ox, oy)), job.Place.Opacity)
		if collect {
			plan.Tiles = append(plan.Tiles, layout.Point{X: ox, Y: oy})
		}
	}
	plan.BoxW, plan.BoxH = g.width, g.height
	plan.TileW, plan.TileH = tileW, tileH
	return nil
}

func (r *Renderer) drawLogoSingle(ctx context.Context, s *surface, job *renderer.Job, plan *layout.Plan) error {
	img, err := r.logoImage(ctx, s, job, plan.Multiplier)
	if err != nil {
		return err
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	origin := layout.Position(s.w, s.h, w, h,
		job.Place.Anchor, job.Place.Padding, job.Place.OffsetX, job.Place.OffsetY)
	drawImageAt(s, img, origin, job.Place.Rotate)
	plan.BoxW, plan.BoxH = w, h
	plan.Origin = origin
	return nil
}

func (r *Renderer) drawLogoTiled(ctx context.Context, s *surface, job *renderer.Job, plan *layout.Plan) error {
	img, err := r.logoImage(ctx, s, job, plan.Multiplier)
	if err != nil {
		return err
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	tileW := w + job.Place.TileSpacingX*plan.Multiplier
	tileH := h + job.Place.TileSpacingY*plan.Multiplier
	if tileW <= 0 || tileH <= 0 {
		return renderer.ErrTileGeometry
	}
	tileImg := img
	if job.Place.Rotate != 0 {
		tileImg = imaging.Rotate(img, -job.Place.Rotate, color.NRGBA{})
	}
	rw, rh := float64(tileImg.Bounds().Dx()), float64(tileImg.Bounds().Dy())
	rot := rotAbout(job.Place.Rotate, s.w/2, s.h/2)
	collect := job.PlanPath != ""
	for x, y := range layout.Tiles(s.w, s.h, tileW, tileH) {
		c := rot.Dot(canvas.Point{X: x + w/2, Y: y + h/2})
		s.ctx.DrawImage(c.X-rw/2, c.Y-rh/2, tileImg, canvas.DPMM(1))
		if collect {
			plan.Tiles = append(plan.Tiles, layout.Point{X: c.X - rw/2, Y: c.Y - rh/2})
		}
	}
	plan.BoxW, plan.BoxH = w, h
	plan.TileW, plan.TileH = tileW, tileH
	return nil
}

// drawImageAt 把图片左上角对到 at 处绘制。旋转绕图片盒中心进行；
// imaging.Rotate 以逆时针为正并扩大外接框，这里取负角并按中心回对。
func drawImageAt(s *surface, img image.Image, at layout.Point, deg float64) {
	x, y := at.X, at.Y
	if deg != 0 {
		w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
		cx, cy := x+w/2, y+h/2
		img = imaging.Rotate(img, -deg, color.NRGBA{})
		x = cx - float64(img.Bounds().Dx())/2
		y = cy - float64(img.Bounds().Dy())/2
	}
	s.ctx.DrawImage(x, y, img, canvas.DPMM(1))
}

// logoImage 加载徽标并缩放到目标宽度，透明度在位图上预乘。
func (r *Renderer) logoImage(ctx context.Context, s *surface, job *renderer.Job, m float64) (image.Image, error) {
	spec := job.Logo
	if spec == nil {
		return nil, fmt.Errorf("图片水印缺少徽标参数")
	}
	img, err := r.loadLogo(ctx, spec)
	if err != nil {
		return nil, err
	}
	frac := spec.WidthFraction
	if frac <= 0 {
		frac = defaultLogoFraction
	}
	targetW := int(math.Round(s.w * frac * m))
	if targetW < 1 {
		targetW = 1
	}
	img = imaging.Resize(img, targetW, 0, imaging.Lanczos)
	if op := job.Place.Opacity; op < 1 {
		if op < 0 {
			op = 0
		}
		img = fadeImage(img, op)
	}
	return img, nil
}

// fadeImage 把图片整体乘上一个透明度。
func fadeImage(img image.Image, opacity float64) image.Image {
	b := img.Bounds()
	base := imaging.New(b.Dx(), b.Dy(), color.NRGBA{})
	return imaging.Overlay(base, img, image.Pt(0, 0), opacity)
}

// loadLogo 按 Image、Data、Source 的顺序取徽标。
// 任何一步失败都是致命的，以 AssetError 返回。
func (r *Renderer) loadLogo(ctx context.Context, spec *renderer.LogoSpec) (image.Image, error) {
	if spec.Image != nil {
		return spec.Image, nil
	}
	if len(spec.Data) > 0 {
		img, err := imaging.Decode(bytes.NewReader(spec.Data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, &renderer.AssetError{Locator: "inline", Err: err}
		}
		return img, nil
	}
	if spec.Source == "" {
		return nil, &renderer.AssetError{Locator: "", Err: fmt.Errorf("缺少徽标来源")}
	}
	data, err := r.fetchLogo(ctx, spec.Source)
	if err != nil {
		return nil, &renderer.AssetError{Locator: spec.Source, Err: err}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &renderer.AssetError{Locator: spec.Source, Err: err}
	}
	return img, nil
}

// fetchLogo 从 http(s) 地址或本地路径读取徽标字节。
// 上下文未带截止时间时网络请求套默认超时。
func (r *Renderer) fetchLogo(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, logoFetchTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("拉取徽标返回状态 %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("徽标响应为空")
	}
	return data, nil
}
