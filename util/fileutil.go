package util

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// FileSize returns the length of the file at path.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "stat %s", path)
	}
	return info.Size(), nil
}

// CreateFileBySize creates (or truncates) filePath and sizes it to size bytes.
func CreateFileBySize(filePath string, size int64) error {
	f, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "create %s", filePath)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		return errors.Wrapf(err, "truncate %s to %d", filePath, size)
	}
	return nil
}

// ReadFileBySeekStartWithSize reads size bytes at offset.
func ReadFileBySeekStartWithSize(filePath string, offset int64, size int) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filePath)
	}
	defer f.Close()

	b := make([]byte, size)
	n, err := f.ReadAt(b, offset)
	if err != nil && !(err == io.EOF && n == size) {
		return nil, errors.Wrapf(err, "read %d bytes at %d from %s", size, offset, filePath)
	}
	return b, nil
}

// WriteFileBySeekStart overwrites the bytes at offset.
func WriteFileBySeekStart(filePath string, offset int64, data []byte) error {
	f, err := os.OpenFile(filePath, os.O_RDWR, 0644)
	if err != nil {
		return errors.Wrapf(err, "open %s", filePath)
	}
	defer f.Close()

	if _, err = f.WriteAt(data, offset); err != nil {
		return errors.Wrapf(err, "write %d bytes at %d to %s", len(data), offset, filePath)
	}
	return nil
}
