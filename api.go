package jaccard

import "math"

// 矢量面WKB（平面投影坐标系，单位米）
type Geom = []byte

// 一个人工勾绘的矢量面（同一日期、同一地物）
type Delineation struct {
	Name string // 文件名（不含扩展名）
	Path string
	Geom Geom   // 所有面要素合并后的WKB
	Srs  string // 坐标系WKT，源文件无坐标系时为空
}

// 一对待比较的勾绘文件
type Record struct {
	PathA      string
	PathB      string
	PixelSize  float64  // 影像像元大小（米）
	PixelSizeB *float64 // B的像元大小，为空时与A相同
	Date       string   // 为空时从PathA文件名中提取
}

// 两侧各自使用的像元大小
func (r Record) PixelSizes() (a, b float64) {
	a, b = r.PixelSize, r.PixelSize
	if r.PixelSizeB != nil {
		b = *r.PixelSizeB
	}
	return
}

// 单个日期对的比较结果
type ComparisonResult struct {
	RadiusA          float64
	RadiusB          float64
	IntersectionArea float64
	UnionArea        float64
	Score            float64 // Undefined时为NaN
	Undefined        bool    // 并集面积为0
	Trace            *Trace  // 仅在开启追踪时保留中间几何
}

// 输出用的3位小数分数
func (r ComparisonResult) Rounded() float64 {
	if r.Undefined {
		return math.NaN()
	}
	return math.Round(r.Score*1000) / 1000
}

// 计算过程中的中间几何
type Trace struct {
	ZoneA        Geom
	ZoneB        Geom
	ClippedA     Geom
	ClippedB     Geom
	Intersection Geom
	Union        Geom
}

// 按输出文件名排列的中间几何
func (t *Trace) Layers() map[string]Geom {
	return map[string]Geom{
		"zone_a":       t.ZoneA,
		"zone_b":       t.ZoneB,
		"clipped_a":    t.ClippedA,
		"clipped_b":    t.ClippedB,
		"intersection": t.Intersection,
		"union":        t.Union,
	}
}
