package jaccard

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/wgdzlh/jaccard/utils"
)

type Row struct {
	Date   string
	Result ComparisonResult
}

// 按处理顺序记录的结果表（不按日期重排）
type ResultTable struct {
	rows []Row
}

type ExportOptions struct {
	UndefinedMarker string // 未定义分数的输出值
	Encoding        string // UTF-8（默认）或GBK
}

func NewResultTable(capacity int) *ResultTable {
	return &ResultTable{rows: make([]Row, 0, capacity)}
}

func (t *ResultTable) Record(date string, res ComparisonResult) {
	res.Trace = nil
	t.rows = append(t.rows, Row{Date: date, Result: res})
}

func (t *ResultTable) Len() int {
	return len(t.rows)
}

func (t *ResultTable) Rows() []Row {
	return t.rows
}

// 以分号分隔输出，表头为 ["", "Date", "Jaccard_score"]，首列为0起的行号
func (t *ResultTable) Export(w io.Writer, opts ExportOptions) (err error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Comma = FieldSeparator
	if err = cw.Write([]string{ColumnIndex, ColumnDate, ColumnScore}); err != nil {
		return
	}
	for i, row := range t.rows {
		rec := []string{
			strconv.Itoa(i),
			row.Date,
			utils.FormatScore(row.Result.Score, row.Result.Undefined, opts.UndefinedMarker),
		}
		if err = cw.Write(rec); err != nil {
			return
		}
	}
	cw.Flush()
	if err = cw.Error(); err != nil {
		return
	}
	out, err := utils.EncodeText(buf.Bytes(), opts.Encoding)
	if err != nil {
		return
	}
	_, err = w.Write(out)
	return
}

func (t *ResultTable) WriteFile(path string, opts ExportOptions) (err error) {
	var buf bytes.Buffer
	if err = t.Export(&buf, opts); err != nil {
		return
	}
	err = utils.WriteFileAtomic(path, buf.Bytes())
	return
}
