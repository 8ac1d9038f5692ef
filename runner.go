package jaccard

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wgdzlh/jaccard/log"
	"github.com/wgdzlh/jaccard/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RunnerOptions struct {
	BaseDir  string // 记录中的相对路径基于此目录
	Workers  int    // 并发处理的日期对数，<=1为顺序处理
	FailFast bool   // 任一日期对失败即中止整批
	DumpDir  string // 非空时输出每个日期对的中间几何
}

// 依次（或并发）计算每个日期对，并按输入顺序汇总结果表
type Runner struct {
	calc   *Calculator
	loader Loader
	dumper Dumper
	opts   RunnerOptions
	logTag string
}

func NewRunner(calc *Calculator, loader Loader, opts RunnerOptions) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Runner{
		calc:   calc,
		loader: loader,
		opts:   opts,
		logTag: "Runner:",
	}
}

func (r *Runner) SetDumper(d Dumper) {
	r.dumper = d
}

type pairOutcome struct {
	date string
	res  ComparisonResult
	err  *PairError
	done bool
}

// 返回按输入顺序排列的结果表和失败的日期对。
// 单个日期对失败不影响其余日期对，除非开启FailFast。
func (r *Runner) Run(ctx context.Context, records []Record) (table *ResultTable, failures []*PairError, err error) {
	if len(records) == 0 {
		err = ErrEmptyManifest
		return
	}
	runID := uuid.NewString()
	log.Info(r.logTag+"start batch", zap.String("runId", runID), zap.Int("pairs", len(records)), zap.Int("workers", r.opts.Workers), zap.Bool("failFast", r.opts.FailFast))
	outcomes := make([]pairOutcome, len(records))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)
	for i := range records {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			out := r.runPair(egCtx, i, records[i])
			outcomes[i] = out
			if out.err != nil && r.opts.FailFast {
				return out.err
			}
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		log.Error(r.logTag+"batch aborted", zap.String("runId", runID), zap.Error(err))
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	table = NewResultTable(len(records))
	for _, out := range outcomes {
		switch {
		case out.err != nil:
			failures = append(failures, out.err)
		case out.done:
			table.Record(out.date, out.res)
		}
	}
	log.Info(r.logTag+"end batch", zap.String("runId", runID), zap.Int("rows", table.Len()), zap.Int("failed", len(failures)))
	return
}

func (r *Runner) runPair(ctx context.Context, idx int, rec Record) (out pairOutcome) {
	pathA := utils.ResolvePath(r.opts.BaseDir, rec.PathA)
	pathB := utils.ResolvePath(r.opts.BaseDir, rec.PathB)
	fail := func(err error) pairOutcome {
		out.err = &PairError{Index: idx, Date: out.date, PathA: pathA, PathB: pathB, Err: err}
		log.Error(r.logTag+"pair failed", zap.Int("idx", idx), zap.String("date", out.date), zap.Error(err))
		return out
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	out.date = rec.Date
	if out.date == "" {
		var ok bool
		if out.date, ok = utils.DateToken(rec.PathA); !ok {
			return fail(fmt.Errorf("%w: %s", ErrNoDateToken, filepath.Base(rec.PathA)))
		}
	}
	sizeA, sizeB := rec.PixelSizes()
	log.Info(r.logTag+"processing pair",
		zap.Int("idx", idx), zap.String("date", out.date),
		zap.String("a", filepath.Base(pathA)), zap.String("b", filepath.Base(pathB)),
		zap.Float64("pixelUncertainty", sizeA/2))
	if sizeA != sizeB {
		// 两侧分辨率不同时应各用各的还是统一半径尚无定论，这里保留各自半径
		log.Warn(r.logTag+"divergent pixel sizes in pair, each side uses its own radius",
			zap.String("date", out.date), zap.Float64("pixelSizeA", sizeA), zap.Float64("pixelSizeB", sizeB))
	}
	a, b, err := r.loader.LoadPair(pathA, pathB)
	if err != nil {
		return fail(err)
	}
	if out.res, err = r.calc.Compare(a, b, sizeA, sizeB); err != nil {
		return fail(err)
	}
	out.done = true
	log.Info(r.logTag+"pair done",
		zap.String("date", out.date),
		zap.Float64("intersectionArea", out.res.IntersectionArea),
		zap.Float64("unionArea", out.res.UnionArea),
		zap.Float64("score", out.res.Rounded()),
		zap.Bool("undefined", out.res.Undefined))
	if r.opts.DumpDir != "" && r.dumper != nil && out.res.Trace != nil {
		r.dump(out.date, a, out.res.Trace)
	}
	return
}

func (r *Runner) dump(date string, a Delineation, t *Trace) {
	dir, err := utils.GetDateSubDir(r.opts.DumpDir, date)
	if err == nil {
		err = r.dumper.Dump(dir, date, a.Srs, t.Layers())
	}
	if err != nil {
		log.Error(r.logTag+"dump geometries failed", zap.String("date", date), zap.Error(err))
	}
}
