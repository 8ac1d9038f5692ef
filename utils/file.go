package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}

func GetDateSubDir(parentPath, date string) (path string, err error) {
	path = filepath.Join(parentPath, date)
	err = os.MkdirAll(path, os.ModePerm)
	return
}

// 相对路径基于base解析，绝对路径原样返回
func ResolvePath(base, path string) string {
	if base == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// 先写入同目录下的临时文件再重命名，避免输出半截文件
func WriteFileAtomic(path string, data []byte) (err error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
	}
	return
}
