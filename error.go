package jaccard

import (
	"errors"
	"fmt"
)

var (
	ErrUnreadableGeometry    = errors.New("unreadable geometry")
	ErrCRSMismatch           = errors.New("incompatible coordinate system")
	ErrInvalidBufferDistance = errors.New("invalid buffer distance")
	ErrNoDateToken           = errors.New("no date token in file name")
	ErrEmptyManifest         = errors.New("no records to process")
)

// 单个日期对处理失败
type PairError struct {
	Index int
	Date  string
	PathA string
	PathB string
	Err   error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("pair #%d (%s) %s & %s: %v", e.Index, e.Date, e.PathA, e.PathB, e.Err)
}

func (e *PairError) Unwrap() error {
	return e.Err
}
