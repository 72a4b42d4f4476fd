package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var errNoUpload = errors.New("未上传文件")

// readUpload 读取上传内容：优先 multipart 字段 "file"，
// 非 multipart 请求读取原始请求体。
// 请求体超限时将 *http.MaxBytesError 记入 c.Errors，由 BodyLimit 中间件写 413。
func readUpload(c *gin.Context) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(mediaType, "multipart/") {
		data, err = readFormFile(c)
	} else if c.Request.Body != nil {
		data, err = io.ReadAll(c.Request.Body)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		_ = c.Error(tooLarge)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoUpload
	}
	return data, nil
}

func readFormFile(c *gin.Context) ([]byte, error) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, errNoUpload
		}
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// bodyTooLarge readUpload 是否已将超限错误交给中间件处理
func bodyTooLarge(c *gin.Context) bool {
	for _, e := range c.Errors {
		var tooLarge *http.MaxBytesError
		if errors.As(e.Err, &tooLarge) {
			return true
		}
	}
	return false
}
