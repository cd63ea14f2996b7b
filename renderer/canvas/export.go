package canvasrenderer

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/huuhuybn/miconvert-image-watermark/renderer"
)

// defaultJPEGQuality 是未指定质量时的 JPEG 编码质量。
const defaultJPEGQuality = 90

// formatForMIME 把输出 MIME 映射到编码格式。空串取 PNG。
func formatForMIME(mime string) (imaging.Format, error) {
	switch mime {
	case "", "image/png":
		return imaging.PNG, nil
	case "image/jpeg", "image/jpg":
		return imaging.JPEG, nil
	case "image/gif":
		return imaging.GIF, nil
	case "image/bmp", "image/x-ms-bmp":
		return imaging.BMP, nil
	case "image/tiff":
		return imaging.TIFF, nil
	}
	return 0, fmt.Errorf("不支持的输出类型 %q", mime)
}

// encodeSurface 把表面光栅化为位图并编码。任何失败都以 ExportError
// 返回，错误里带上请求的 MIME 与表面当前尺寸，便于定位。
func encodeSurface(s *surface, out renderer.OutputSpec) ([]byte, error) {
	w, h := int(s.w), int(s.h)
	format, err := formatForMIME(out.MIME)
	if err != nil {
		return nil, &renderer.ExportError{MIME: out.MIME, Width: w, Height: h, Err: err}
	}
	img := rasterizer.Draw(s.c, canvas.DPMM(1), canvas.DefaultColorSpace)
	var opts []imaging.EncodeOption
	if format == imaging.JPEG {
		q := out.Quality
		if q <= 0 {
			q = defaultJPEGQuality
		}
		if q > 100 {
			q = 100
		}
		opts = append(opts, imaging.JPEGQuality(q))
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, &renderer.ExportError{MIME: out.MIME, Width: w, Height: h, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &renderer.ExportError{MIME: out.MIME, Width: w, Height: h, Err: fmt.Errorf("编码结果为空")}
	}
	return buf.Bytes(), nil
}
