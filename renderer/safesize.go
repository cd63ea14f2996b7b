package renderer

import "math"

// MaxSurfacePixels 是绘图表面允许的最大像素总量（约 4096×4096）。
// 超出预算的源图在绘制前被等比降采样，避免巨图拖垮内存。
const MaxSurfacePixels = 16_777_216

// SafeSize 是安全尺寸计算的结果。
type SafeSize struct {
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	WasScaled bool `json:"wasScaled"`
}

// ClampSize 把尺寸压进像素预算内。预算内的尺寸原样返回；
// 超出时按 sqrt(预算/面积) 等比缩小并向下取整，宽高比误差不超过取整引入的量。
// 结果各边至少为 1。
func ClampSize(width, height int) SafeSize {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	area := float64(width) * float64(height)
	if area <= MaxSurfacePixels {
		return SafeSize{Width: width, Height: height}
	}
	ratio := math.Sqrt(MaxSurfacePixels / area)
	w := int(math.Floor(float64(width) * ratio))
	h := int(math.Floor(float64(height) * ratio))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	// 某边被抬到 1 后等比缩放不再够用，把另一边压回预算内。
	if w*h > MaxSurfacePixels {
		if w <= h {
			h = MaxSurfacePixels / w
		} else {
			w = MaxSurfacePixels / h
		}
	}
	return SafeSize{Width: w, Height: h, WasScaled: true}
}
