// Package manifest loads the batch description: where the delineations
// live, which pairs to compare at which pixel size, and how to run.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/wgdzlh/jaccard"
	"github.com/wgdzlh/jaccard/utils"

	"gopkg.in/yaml.v3"
)

const (
	KernelGdal = "gdal"
	KernelGeos = "geos"

	EnvBaseDir = "JACCARD_BASE_DIR"
	EnvWorkers = "JACCARD_WORKERS"
)

var (
	ErrUnknownKernel = errors.New("unknown geometry kernel")
	ErrBadRecord     = errors.New("bad record")
)

type Manifest struct {
	BaseDir         string        `yaml:"base_dir"`
	Output          string        `yaml:"output"`
	Kernel          string        `yaml:"kernel"`
	Workers         int           `yaml:"workers"`
	FailFast        bool          `yaml:"fail_fast"`
	UndefinedMarker string        `yaml:"undefined_marker"`
	Encoding        string        `yaml:"encoding"`
	DumpDir         string        `yaml:"dump_dir"`
	Buffer          BufferConfig  `yaml:"buffer"`
	Crs             CrsConfig     `yaml:"crs"`
	Logging         LoggingConfig `yaml:"logging"`
	Records         []Record      `yaml:"records"`
}

type BufferConfig struct {
	QuadSegs   int     `yaml:"quad_segs"`
	SliverArea float64 `yaml:"sliver_area"` // 平方米，负值关闭碎面剔除
}

type CrsConfig struct {
	Require bool `yaml:"require"` // 源文件必须带坐标系
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

type Record struct {
	A          string   `yaml:"a"`
	B          string   `yaml:"b"`
	PixelSize  *float64 `yaml:"pixel_size"`
	PixelSizeB *float64 `yaml:"pixel_size_b,omitempty"`
	Date       string   `yaml:"date,omitempty"`
}

func Default() *Manifest {
	return &Manifest{
		Output:          jaccard.OutputFileName,
		Kernel:          KernelGdal,
		Workers:         jaccard.DefaultWorkers,
		UndefinedMarker: jaccard.DefaultUndefinedMarker,
		Encoding:        "UTF-8",
		Buffer: BufferConfig{
			QuadSegs:   jaccard.DefaultQuadSegs,
			SliverArea: jaccard.DefaultSliverArea,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a manifest, applies defaults and environment overrides, and
// validates it. Relative base_dir is resolved against the manifest's own
// directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	// 中文Windows下编辑的清单常为GBK编码
	if !utf8.Valid(data) {
		if data, err = utils.GbkToUtf8(data); err != nil {
			return nil, fmt.Errorf("failed to decode manifest: %w", err)
		}
	}
	m := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	m.applyEnvOverrides()
	if m.BaseDir == "" {
		m.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(m.BaseDir) {
		m.BaseDir = filepath.Join(filepath.Dir(path), m.BaseDir)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) applyEnvOverrides() {
	if dir := os.Getenv(EnvBaseDir); dir != "" {
		m.BaseDir = dir
	}
	if w := os.Getenv(EnvWorkers); w != "" {
		if n, err := strconv.Atoi(w); err == nil && n > 0 {
			m.Workers = n
		}
	}
}

func (m *Manifest) Validate() error {
	switch m.Kernel {
	case KernelGdal, KernelGeos:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKernel, m.Kernel)
	}
	if len(m.Records) == 0 {
		return jaccard.ErrEmptyManifest
	}
	for i, r := range m.Records {
		if r.A == "" || r.B == "" {
			return fmt.Errorf("%w: record %d needs both a and b", ErrBadRecord, i)
		}
		if err := checkPixelSize(r.PixelSize, "pixel_size"); err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrBadRecord, i, err)
		}
		if r.PixelSizeB != nil {
			if err := checkPixelSize(r.PixelSizeB, "pixel_size_b"); err != nil {
				return fmt.Errorf("%w: record %d: %v", ErrBadRecord, i, err)
			}
		}
	}
	return nil
}

// 像元大小必须给出，且为有限的非负数
func checkPixelSize(v *float64, key string) error {
	switch {
	case v == nil:
		return fmt.Errorf("missing %s", key)
	case math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0:
		return fmt.Errorf("invalid %s %v", key, *v)
	}
	return nil
}

// 输出表路径，相对路径基于base_dir
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Output) {
		return m.Output
	}
	return filepath.Join(m.BaseDir, m.Output)
}

func (m *Manifest) JaccardRecords() []jaccard.Record {
	recs := make([]jaccard.Record, len(m.Records))
	for i, r := range m.Records {
		recs[i] = jaccard.Record{
			PathA:      r.A,
			PathB:      r.B,
			PixelSizeB: r.PixelSizeB,
			Date:       r.Date,
		}
		if r.PixelSize != nil {
			recs[i].PixelSize = *r.PixelSize
		}
	}
	return recs
}

func (m *Manifest) KernelOptions() jaccard.KernelOptions {
	return jaccard.KernelOptions{
		QuadSegs:   m.Buffer.QuadSegs,
		SliverArea: m.Buffer.SliverArea,
	}
}

func (m *Manifest) RunnerOptions() jaccard.RunnerOptions {
	return jaccard.RunnerOptions{
		BaseDir:  m.BaseDir,
		Workers:  m.Workers,
		FailFast: m.FailFast,
		DumpDir:  m.DumpDir,
	}
}

func (m *Manifest) ExportOptions() jaccard.ExportOptions {
	return jaccard.ExportOptions{
		UndefinedMarker: m.UndefinedMarker,
		Encoding:        m.Encoding,
	}
}
