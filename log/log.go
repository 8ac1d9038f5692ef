package log

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger = zap.NewNop()
	lock   sync.RWMutex
)

// 初始化全局日志，level为debug/info/warn/error，dev为true时输出易读格式
func Init(level string, dev bool) (err error) {
	var cfg zap.Config
	if dev {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if level != "" {
		var lv zapcore.Level
		if err = lv.UnmarshalText([]byte(level)); err != nil {
			return
		}
		cfg.Level = zap.NewAtomicLevelAt(lv)
	}
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return
	}
	Set(l)
	return
}

// 替换全局日志（测试中可传入zaptest/observer的logger）
func Set(l *zap.Logger) {
	lock.Lock()
	logger = l
	lock.Unlock()
}

func L() *zap.Logger {
	lock.RLock()
	defer lock.RUnlock()
	return logger
}

func Debug(msg string, fields ...zap.Field) {
	L().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

func Sync() error {
	return L().Sync()
}
