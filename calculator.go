package jaccard

import (
	"fmt"
	"math"

	"github.com/wgdzlh/jaccard/log"

	"go.uber.org/zap"
)

// 计算两份勾绘在扣除各自不确定带后的Jaccard指数
type Calculator struct {
	kernel Kernel
	trace  bool
	logTag string
}

type CalcOption func(*Calculator)

// 在结果中保留中间几何
func WithTrace() CalcOption {
	return func(c *Calculator) {
		c.trace = true
	}
}

func NewCalculator(k Kernel, opts ...CalcOption) *Calculator {
	c := &Calculator{
		kernel: k,
		logTag: "Calculator:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func pixelRadius(pixelSize float64) (r float64, err error) {
	if math.IsNaN(pixelSize) || math.IsInf(pixelSize, 0) || pixelSize < 0 {
		err = fmt.Errorf("%w: pixel size %v", ErrInvalidBufferDistance, pixelSize)
		return
	}
	r = pixelSize / 2
	return
}

// 比较同一日期的两份勾绘，像元大小分别决定两侧的不确定半径。
// 并集面积为0时返回Undefined结果而不是错误。
func (c *Calculator) Compare(a, b Delineation, pixelSizeA, pixelSizeB float64) (ret ComparisonResult, err error) {
	if ret.RadiusA, err = pixelRadius(pixelSizeA); err != nil {
		return
	}
	if ret.RadiusB, err = pixelRadius(pixelSizeB); err != nil {
		return
	}
	clippedA, zoneA, err := Clip(c.kernel, a.Geom, ret.RadiusA)
	if err != nil {
		log.Error(c.logTag+"clip failed", zap.String("name", a.Name), zap.Error(err))
		return
	}
	clippedB, zoneB, err := Clip(c.kernel, b.Geom, ret.RadiusB)
	if err != nil {
		log.Error(c.logTag+"clip failed", zap.String("name", b.Name), zap.Error(err))
		return
	}
	inter, err := c.kernel.Intersection(clippedA, clippedB)
	if err != nil {
		return
	}
	if ret.IntersectionArea, err = c.kernel.Area(inter); err != nil {
		return
	}
	union, err := c.kernel.Union(clippedA, clippedB)
	if err != nil {
		return
	}
	if union, err = c.kernel.Dissolve(union); err != nil {
		return
	}
	if ret.UnionArea, err = c.kernel.Area(union); err != nil {
		return
	}
	if ret.UnionArea > 0 {
		// 浮点误差可使交集略大于并集
		ret.Score = math.Min(1, ret.IntersectionArea/ret.UnionArea)
	} else {
		ret.Score = math.NaN()
		ret.Undefined = true
		log.Warn(c.logTag+"union area is zero, score undefined",
			zap.String("a", a.Name), zap.String("b", b.Name),
			zap.Float64("radiusA", ret.RadiusA), zap.Float64("radiusB", ret.RadiusB))
	}
	if c.trace {
		ret.Trace = &Trace{
			ZoneA:        zoneA,
			ZoneB:        zoneB,
			ClippedA:     clippedA,
			ClippedB:     clippedB,
			Intersection: inter,
			Union:        union,
		}
	}
	return
}
