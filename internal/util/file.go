package util

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffContentType 读取前 512 字节检测 MIME 类型，返回的 reader 仍包含完整内容
func SniffContentType(reader io.Reader) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}

	mimeType := http.DetectContentType(buffer[:n])
	return mimeType, io.MultiReader(bytes.NewReader(buffer[:n]), reader), nil
}

// ValidateMaterialFile 按扩展名白名单校验课程资料
func ValidateMaterialFile(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedMaterialExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", errors.New("invalid file type: " + ext)
}

// IsExecutable 拒绝伪装成资料的可执行内容
func IsExecutable(mimeType string) bool {
	return mimeType == "application/x-msdownload" || mimeType == "application/x-executable"
}
