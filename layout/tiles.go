package layout

import (
	"iter"
	"math"
)

// Radians 将顺时针角度转换为弧度。
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Tiles 返回平铺水印的栅格原点序列，按行优先（先 x 后 y）产出。
// 栅格从表面四边各向外扩出对角线长度的一半，保证整幅平铺围绕表面中心
// 旋转任意角度后仍无露底。tileW/tileH 为单元步距（内容尺寸加间距）。
// 任一步距或表面边长非正时序列为空；序列可重复迭代，每次从头开始。
func Tiles(surfaceW, surfaceH, tileW, tileH float64) iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		if surfaceW <= 0 || surfaceH <= 0 || tileW <= 0 || tileH <= 0 {
			return
		}
		overflow := math.Hypot(surfaceW, surfaceH) / 2
		for y := -overflow; y < surfaceH+overflow; y += tileH {
			for x := -overflow; x < surfaceW+overflow; x += tileW {
				if !yield(x, y) {
					return
				}
			}
		}
	}
}
