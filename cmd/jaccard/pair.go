package main

import (
	"fmt"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/manifest"
	"github.com/wgdzlh/jaccard/utils"

	"github.com/spf13/cobra"
)

type pairFlags struct {
	pixelSize  float64
	pixelSizeB float64
	kernel     string
	requireCrs bool
	undefined  string
}

func newPairCmd() *cobra.Command {
	f := &pairFlags{}
	cmd := &cobra.Command{
		Use:     "pair <delineation-a> <delineation-b>",
		Short:   "Score a single pair of delineations",
		Example: `  jaccard pair Samo_20010108_sgl_vec.shp Lukas_20010108_sgl_vec.shp --pixel-size 10`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scorePair(cmd, f, args[0], args[1])
		},
	}
	cmd.Flags().Float64Var(&f.pixelSize, "pixel-size", 0, "Pixel size in meters (required)")
	cmd.Flags().Float64Var(&f.pixelSizeB, "pixel-size-b", 0, "Pixel size of the second delineation (default: --pixel-size)")
	cmd.Flags().StringVar(&f.kernel, "kernel", manifest.KernelGdal, "Geometry kernel: gdal or geos")
	cmd.Flags().BoolVar(&f.requireCrs, "require-crs", false, "Fail when a source has no coordinate system")
	cmd.Flags().StringVar(&f.undefined, "undefined-marker", jaccard.DefaultUndefinedMarker, "Printed when the score is undefined")
	cmd.MarkFlagRequired("pixel-size")
	return cmd
}

func scorePair(cmd *cobra.Command, f *pairFlags, pathA, pathB string) error {
	m := manifest.Default()
	m.Kernel = f.kernel
	m.Crs.Require = f.requireCrs
	kernel, tb, err := buildKernel(m)
	if err != nil {
		return err
	}
	sizeB := f.pixelSize
	if cmd.Flags().Changed("pixel-size-b") {
		sizeB = f.pixelSizeB
	}
	a, b, err := tb.LoadPair(pathA, pathB)
	if err != nil {
		return err
	}
	res, err := jaccard.NewCalculator(kernel).Compare(a, b, f.pixelSize, sizeB)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "intersection: %.6f\n", res.IntersectionArea)
	fmt.Fprintf(w, "union:        %.6f\n", res.UnionArea)
	fmt.Fprintf(w, "jaccard:      %s\n", utils.FormatScore(res.Score, res.Undefined, f.undefined))
	return nil
}
