package main

import (
	"errors"
	"fmt"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/gdalkit"
	"github.com/wgdzlh/jaccard/geoskit"
	"github.com/wgdzlh/jaccard/log"
	"github.com/wgdzlh/jaccard/manifest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errPairsFailed = errors.New("some pairs failed")

type runFlags struct {
	manifest string
	workers  int
	failFast bool
	kernel   string
	output   string
	dumpDir  string
	encoding string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score every pair listed in a manifest and write the result table",
		Long: `Reads the YAML manifest, compares each pair of delineations and writes
the table of scores (one row per date, in manifest order).

Example:
  jaccard run --manifest jaccard.yaml --workers 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "jaccard.yaml", "Manifest file")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Pairs processed concurrently (overrides manifest)")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Abort the batch on the first failed pair")
	cmd.Flags().StringVar(&f.kernel, "kernel", "", "Geometry kernel: gdal or geos (overrides manifest)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Result table path (overrides manifest)")
	cmd.Flags().StringVar(&f.dumpDir, "dump-dir", "", "Write intermediate geometries of each pair under this directory")
	cmd.Flags().StringVar(&f.encoding, "encoding", "", "Result table encoding: UTF-8 or GBK (overrides manifest)")
	return cmd
}

// 命令行参数优先于清单
func (f *runFlags) apply(cmd *cobra.Command, m *manifest.Manifest) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		m.Workers = f.workers
	}
	if flags.Changed("fail-fast") {
		m.FailFast = f.failFast
	}
	if flags.Changed("kernel") {
		m.Kernel = f.kernel
	}
	if flags.Changed("output") {
		m.Output = f.output
	}
	if flags.Changed("dump-dir") {
		m.DumpDir = f.dumpDir
	}
	if flags.Changed("encoding") {
		m.Encoding = f.encoding
	}
	return m.Validate()
}

// 读取与输出矢量总是走GDAL/OGR，几何运算内核可选
func buildKernel(m *manifest.Manifest) (k jaccard.Kernel, tb *gdalkit.GdalToolbox, err error) {
	tb = gdalkit.NewGdalToolbox(gdalkit.Options{
		KernelOptions:  m.KernelOptions(),
		RequireCrs:     m.Crs.Require,
		DissolveOnLoad: true,
	})
	switch m.Kernel {
	case manifest.KernelGdal:
		k = tb
	case manifest.KernelGeos:
		k = geoskit.New(m.KernelOptions())
	default:
		err = fmt.Errorf("%w: %q", manifest.ErrUnknownKernel, m.Kernel)
	}
	return
}

func runManifest(cmd *cobra.Command, f *runFlags) error {
	m, err := manifest.Load(f.manifest)
	if err != nil {
		return err
	}
	if err = f.apply(cmd, m); err != nil {
		return err
	}
	if !verbose && (m.Logging.Level != "" || m.Logging.Development) {
		if err = log.Init(m.Logging.Level, m.Logging.Development || development); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	kernel, tb, err := buildKernel(m)
	if err != nil {
		return err
	}
	var calcOpts []jaccard.CalcOption
	if m.DumpDir != "" {
		calcOpts = append(calcOpts, jaccard.WithTrace())
	}
	runner := jaccard.NewRunner(jaccard.NewCalculator(kernel, calcOpts...), tb, m.RunnerOptions())
	runner.SetDumper(tb)

	table, failures, err := runner.Run(cmd.Context(), m.JaccardRecords())
	if err != nil {
		return err
	}
	out := m.OutputPath()
	if err = table.WriteFile(out, m.ExportOptions()); err != nil {
		return err
	}
	log.Info("result table written", zap.String("path", out), zap.Int("rows", table.Len()))
	fmt.Fprintf(cmd.OutOrStdout(), "%d pairs scored, table written to %s\n", table.Len(), out)
	if len(failures) > 0 {
		for _, pe := range failures {
			fmt.Fprintln(cmd.ErrOrStderr(), pe.Error())
		}
		return fmt.Errorf("%w: %d of %d", errPairsFailed, len(failures), len(m.Records))
	}
	return nil
}
