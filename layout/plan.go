package layout

import (
	"encoding/json"
	"os"
)

// Plan 记录一次水印排版的全部计算结果，便于调试或可视化。
type Plan struct {
	Mode       string  `json:"mode"`
	SurfaceW   float64 `json:"surfaceWidth"`
	SurfaceH   float64 `json:"surfaceHeight"`
	Anchor     Anchor  `json:"anchor,omitempty"`
	Multiplier float64 `json:"multiplier"`
	Rotate     float64 `json:"rotate,omitempty"`
	BoxW       float64 `json:"boxWidth"`
	BoxH       float64 `json:"boxHeight"`
	Origin     Point   `json:"origin"`          // single 模式下水印盒左上角
	TileW      float64 `json:"tileW,omitempty"` // tiled 模式下的单元步距
	TileH      float64 `json:"tileH,omitempty"`
	Tiles      []Point `json:"tiles,omitempty"`
}

// WritePlanJSON 将排版计划输出为 JSON，便于调试或可视化。
func WritePlanJSON(p *Plan, path string) error {
	if p == nil {
		return nil
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
