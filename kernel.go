package jaccard

// 平面几何内核：缓冲、布尔运算、融合、面积。
// 输入输出均为WKB；结果只保留面要素，并按KernelOptions.SliverArea剔除碎面。
// 实现须可重入，不同日期对可并发调用。
type Kernel interface {
	// distance>0为膨胀，<0为腐蚀；腐蚀超过内切半径的部分返回空面
	Offset(g Geom, distance float64) (Geom, error)
	Difference(a, b Geom) (Geom, error)
	Intersection(a, b Geom) (Geom, error)
	Union(a, b Geom) (Geom, error)
	// 合并重叠/相邻的部分，使重叠面积只计一次
	Dissolve(g Geom) (Geom, error)
	// 各部分面积绝对值之和（扣除洞），空面为0
	Area(g Geom) (float64, error)
}

// 读取一对勾绘矢量并检查两者坐标系是否一致、是否为米制投影坐标
type Loader interface {
	LoadPair(pathA, pathB string) (a, b Delineation, err error)
}

// 输出中间几何，便于人工核查
type Dumper interface {
	Dump(dir, prefix, srs string, layers map[string]Geom) error
}

// MULTIPOLYGON EMPTY
func emptyGeom() Geom {
	return Geom{0x01, 0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
}
