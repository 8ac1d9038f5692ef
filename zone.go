package jaccard

import (
	"fmt"
	"math"
)

func checkRadius(radius float64) error {
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBufferDistance, radius)
	}
	return nil
}

// 不确定带 = 膨胀(+r) - 腐蚀(-r)，是包含勾绘边界线的环带；r=0时为空
func UncertaintyZone(k Kernel, g Geom, radius float64) (zone Geom, err error) {
	if err = checkRadius(radius); err != nil {
		return
	}
	if radius == 0 {
		zone = emptyGeom()
		return
	}
	dilated, err := k.Offset(g, radius)
	if err != nil {
		return
	}
	eroded, err := k.Offset(g, -radius)
	if err != nil {
		return
	}
	zone, err = k.Difference(dilated, eroded)
	return
}

// 从勾绘中剪除其自身的不确定带，返回剪除结果与不确定带
func Clip(k Kernel, g Geom, radius float64) (clipped, zone Geom, err error) {
	if zone, err = UncertaintyZone(k, g, radius); err != nil {
		return
	}
	clipped, err = k.Difference(g, zone)
	return
}
