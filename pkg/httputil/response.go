package httputil

import (
	"net/http"

	"nft-marketplace/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageData 分页数据
type PageData struct {
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Items interface{} `json:"items"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    "ok",
		Message: "success",
		Data:    data,
	})
}

// SuccessWithPage 成功响应带分页
func SuccessWithPage(c *gin.Context, total int64, page, size int, items interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    "ok",
		Message: "success",
		Data: PageData{
			Total: total,
			Page:  page,
			Size:  size,
			Items: items,
		},
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    "bad_request",
		Message: message,
	})
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{
		Code:    "unauthorized",
		Message: message,
	})
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:    "internal_error",
		Message: message,
	})
}

// HandleError 将业务错误映射为HTTP响应。响应体携带错误类别对应的状态码
// 与机器可读的错误码。
func HandleError(c *gin.Context, err error) {
	e := apperr.AsError(err)
	if e == nil {
		InternalError(c, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindStateConflict:
		status = http.StatusConflict
	case apperr.KindExternal:
		status = http.StatusBadGateway
	}

	c.JSON(status, Response{
		Code:    e.Code,
		Message: e.Message,
	})
}
