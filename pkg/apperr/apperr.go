package apperr

import "fmt"

// Kind 错误类别。每个失败的状态迁移都会携带类别与机器可读的错误码，
// 调用方据此修正输入后重新提交。
type Kind string

const (
	KindAuthorization Kind = "authorization"  // 调用者无权执行该操作
	KindValidation    Kind = "validation"     // 参数越界或格式非法
	KindNotFound      Kind = "not_found"      // 目标实体不存在
	KindStateConflict Kind = "state_conflict" // 与现有状态冲突（已存在、已到终态等）
	KindExternal      Kind = "external"       // 外部协作方调用失败
)

// Error 带类别与错误码的业务错误
type Error struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Code, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Kind, e.Message)
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建业务错误
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Newf 创建带格式化消息的业务错误
func Newf(kind Kind, code, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误为业务错误
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// Unauthorized 创建授权错误
func Unauthorized(code, message string) *Error {
	return New(KindAuthorization, code, message)
}

// Invalid 创建校验错误
func Invalid(code, message string) *Error {
	return New(KindValidation, code, message)
}

// NotFound 创建未找到错误
func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message)
}

// Conflict 创建状态冲突错误
func Conflict(code, message string) *Error {
	return New(KindStateConflict, code, message)
}

// External 包装外部协作方错误
func External(err error, code, message string) *Error {
	return Wrap(err, KindExternal, code, message)
}

// AsError 提取业务错误；非业务错误返回nil
func AsError(err error) *Error {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}

// KindOf 返回错误类别；非业务错误返回空串
func KindOf(err error) Kind {
	if e := AsError(err); e != nil {
		return e.Kind
	}
	return ""
}

// CodeOf 返回错误码；非业务错误返回空串
func CodeOf(err error) string {
	if e := AsError(err); e != nil {
		return e.Code
	}
	return ""
}
