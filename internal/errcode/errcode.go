package errcode

import (
	"errors"
	"fmt"
)

// 错误码约定：
// - 0：无错误
// - 4xxx：调用方可处理的业务错误
// - 5xxx：系统错误（需要中断流程）
const (
	OK                 = 0
	InvalidInput       = 4000
	InvalidCredentials = 4001
	ResourceMissing    = 4004
	UsernameTaken      = 4009
	CannotDeleteAdmin  = 4030
	SystemError        = 5000
)

// Kind 是错误的大类，调用方据此决定展示方式。
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error 是服务层返回的带类别错误。
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按错误码匹配，使包装后的哨兵错误仍可被 errors.Is 识别。
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrInvalidCredentials = &Error{Kind: KindValidation, Code: InvalidCredentials, Message: "invalid username or password"}
	ErrUsernameTaken      = &Error{Kind: KindConflict, Code: UsernameTaken, Message: "username already exists"}
	ErrCannotDeleteAdmin  = &Error{Kind: KindConflict, Code: CannotDeleteAdmin, Message: "cannot delete admin account"}
)

// Validation 构造参数校验错误。
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: InvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NotFound 构造资源不存在错误。
func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: ResourceMissing, Message: resource + " not found"}
}

// Store 包装存储层错误并附上操作名。
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Code: SystemError, Message: op, Err: err}
}

// KindOf 返回错误类别。nil 返回 0（unknown）；非 *Error 一律视为存储错误。
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}
