package jaccard

const (
	DefaultQuadSegs        = 16
	DefaultSliverArea      = 1e-6
	DefaultUndefinedMarker = "NaN"
	DefaultWorkers         = 1

	OutputFileName = "jaccard_score_with_uncertainty.csv"
	FieldSeparator = ';'

	ColumnIndex = ""
	ColumnDate  = "Date"
	ColumnScore = "Jaccard_score"
)

// 几何内核参数，所有布尔运算共用同一容差
type KernelOptions struct {
	QuadSegs   int     // 缓冲时每1/4圆弧的分段数
	SliverArea float64 // 面积小于此值的碎面在每次运算后丢弃（平方米）
}

func (o KernelOptions) Normalize() KernelOptions {
	if o.QuadSegs <= 0 {
		o.QuadSegs = DefaultQuadSegs
	}
	if o.SliverArea < 0 {
		o.SliverArea = 0
	} else if o.SliverArea == 0 {
		o.SliverArea = DefaultSliverArea
	}
	return o
}
