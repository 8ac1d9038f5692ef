package utils

import (
	"bytes"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

const (
	UTF8  = "UTF8"
	UTF_8 = "UTF-8"
	GBK   = "GBK"

	ScoreDigits = 3
)

// 取文件名中第一个与第二个下划线之间的部分，如 Samo_20010108_sgl_vec.gpkg -> 20010108
func DateToken(path string) (date string, ok bool) {
	parts := strings.Split(filepath.Base(path), "_")
	if len(parts) < 3 || parts[1] == "" {
		return
	}
	return parts[1], true
}

func RoundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

// 分数保留3位小数输出，未定义时输出marker
func FormatScore(v float64, undefined bool, marker string) string {
	if undefined || math.IsNaN(v) {
		return marker
	}
	return strconv.FormatFloat(RoundTo(v, ScoreDigits), 'f', ScoreDigits, 64)
}

func IsUtf8Name(enc string) bool {
	enc = strings.ToUpper(strings.TrimSpace(enc))
	return enc == "" || enc == UTF_8 || enc == UTF8
}

// 按指定编码输出文本，仅支持UTF-8与GBK
func EncodeText(s []byte, enc string) (d []byte, err error) {
	if IsUtf8Name(enc) {
		return s, nil
	}
	if strings.ToUpper(enc) != GBK {
		err = &UnknownEncodingError{Name: enc}
		return
	}
	return Utf8ToGbk(s)
}

type UnknownEncodingError struct {
	Name string
}

func (e *UnknownEncodingError) Error() string {
	return "unknown text encoding: " + e.Name
}

// GBK 转 UTF-8
func GbkToUtf8(s []byte) (d []byte, e error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewDecoder())
	d, e = io.ReadAll(reader)
	return
}

// UTF-8 转 GBK
func Utf8ToGbk(s []byte) (d []byte, e error) {
	reader := transform.NewReader(bytes.NewReader(s), simplifiedchinese.GBK.NewEncoder())
	d, e = io.ReadAll(reader)
	return
}
