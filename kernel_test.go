package jaccard

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var errKernel = errors.New("kernel failure")

// 以表达式字符串代替几何的内核，用于验证计算流程而非几何本身
type symKernel struct {
	mu     sync.Mutex
	calls  []string
	areas  map[string]float64
	areaFn func(expr string) (float64, bool)
	failOn string
}

func newSymKernel(areas map[string]float64) *symKernel {
	return &symKernel{areas: areas}
}

func (k *symKernel) op(expr string) (Geom, error) {
	k.mu.Lock()
	k.calls = append(k.calls, expr)
	k.mu.Unlock()
	if k.failOn != "" && strings.Contains(expr, k.failOn) {
		return nil, fmt.Errorf("%w: %s", errKernel, expr)
	}
	return Geom(expr), nil
}

func (k *symKernel) Offset(g Geom, distance float64) (Geom, error) {
	return k.op(fmt.Sprintf("buf(%s,%g)", g, distance))
}

func (k *symKernel) Difference(a, b Geom) (Geom, error) {
	return k.op(fmt.Sprintf("diff(%s,%s)", a, b))
}

func (k *symKernel) Intersection(a, b Geom) (Geom, error) {
	return k.op(fmt.Sprintf("inter(%s,%s)", a, b))
}

func (k *symKernel) Union(a, b Geom) (Geom, error) {
	return k.op(fmt.Sprintf("union(%s,%s)", a, b))
}

func (k *symKernel) Dissolve(g Geom) (Geom, error) {
	return k.op(fmt.Sprintf("dslv(%s)", g))
}

func (k *symKernel) Area(g Geom) (float64, error) {
	expr := string(g)
	k.mu.Lock()
	k.calls = append(k.calls, "area("+expr+")")
	k.mu.Unlock()
	if v, ok := k.areas[expr]; ok {
		return v, nil
	}
	if k.areaFn != nil {
		if v, ok := k.areaFn(expr); ok {
			return v, nil
		}
	}
	return 0, fmt.Errorf("no area for %q", expr)
}

func (k *symKernel) Calls() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.calls...)
}
