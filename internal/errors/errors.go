package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误码类型
type ErrorCode int

// 错误码定义（按模块分组）
const (
	// 通用错误 (1000-1999)
	ErrUnknown       ErrorCode = 1000
	ErrInvalidParam  ErrorCode = 1001
	ErrNotFound      ErrorCode = 1002
	ErrAlreadyExists ErrorCode = 1003
	ErrTimeout       ErrorCode = 1005

	// 游戏校验错误 (2000-2099)
	ErrInvalidConfig    ErrorCode = 2000
	ErrInvalidPlacement ErrorCode = 2001
	ErrInvalidPosition  ErrorCode = 2002
	ErrInvalidSpell     ErrorCode = 2003
	ErrInvalidTarget    ErrorCode = 2004
	ErrNoShipsPlaced    ErrorCode = 2005

	// 游戏资源错误 (2100-2199)
	ErrGameNotFound   ErrorCode = 2100
	ErrPlayerNotFound ErrorCode = 2101

	// 游戏状态错误 (2200-2299)
	ErrStateConflict      ErrorCode = 2200
	ErrGameAlreadyStarted ErrorCode = 2201
	ErrGameNotInProgress  ErrorCode = 2202
	ErrNotYourTurn        ErrorCode = 2203
	ErrGameFull           ErrorCode = 2204

	// 游戏资源耗尽 (2300-2399)
	ErrSpellUnavailable ErrorCode = 2300

	// 通信错误 (4000-4999)
	ErrWebSocketConnect ErrorCode = 4000
	ErrWebSocketSend    ErrorCode = 4001
	ErrWebSocketClosed  ErrorCode = 4003
	ErrMessageFormat    ErrorCode = 4007

	// 数据库错误 (5000-5999)
	ErrDatabaseConnect ErrorCode = 5000
	ErrDatabaseQuery   ErrorCode = 5001
	ErrDatabaseInsert  ErrorCode = 5002

	// 配置错误 (6000-6999)
	ErrConfigLoad     ErrorCode = 6000
	ErrConfigParse    ErrorCode = 6001
	ErrConfigValidate ErrorCode = 6002
)

// 错误码消息映射
var errorMessages = map[ErrorCode]string{
	// 通用错误
	ErrUnknown:       "未知错误",
	ErrInvalidParam:  "无效的参数",
	ErrNotFound:      "资源未找到",
	ErrAlreadyExists: "资源已存在",
	ErrTimeout:       "操作超时",

	// 游戏错误
	ErrInvalidConfig:      "无效的游戏配置",
	ErrInvalidPlacement:   "无效的舰船布置",
	ErrInvalidPosition:    "无效的坐标",
	ErrInvalidSpell:       "无效的法术类型",
	ErrInvalidTarget:      "无效的攻击目标",
	ErrNoShipsPlaced:      "必须至少布置一艘舰船",
	ErrGameNotFound:       "游戏不存在",
	ErrPlayerNotFound:     "玩家不存在",
	ErrStateConflict:      "游戏状态冲突",
	ErrGameAlreadyStarted: "游戏已经开始",
	ErrGameNotInProgress:  "游戏未在进行中",
	ErrNotYourTurn:        "还没轮到你",
	ErrGameFull:           "游戏人数已满",
	ErrSpellUnavailable:   "法术不可用",

	// 通信错误
	ErrWebSocketConnect: "WebSocket连接失败",
	ErrWebSocketSend:    "WebSocket发送失败",
	ErrWebSocketClosed:  "WebSocket连接已关闭",
	ErrMessageFormat:    "消息格式错误",

	// 数据库错误
	ErrDatabaseConnect: "数据库连接失败",
	ErrDatabaseQuery:   "数据库查询失败",
	ErrDatabaseInsert:  "数据库插入失败",

	// 配置错误
	ErrConfigLoad:     "配置加载失败",
	ErrConfigParse:    "配置解析失败",
	ErrConfigValidate: "配置验证失败",
}

// Kind 错误类别，传输层据此映射状态码
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindValidation        Kind = "validation"
	KindStateConflict     Kind = "state_conflict"
	KindResourceExhausted Kind = "resource_exhausted"
	KindFull              Kind = "full"
	KindInternal          Kind = "internal"
)

// KindOf 返回错误码所属类别
func KindOf(code ErrorCode) Kind {
	switch code {
	case ErrNotFound, ErrGameNotFound, ErrPlayerNotFound:
		return KindNotFound
	case ErrInvalidParam, ErrInvalidConfig, ErrInvalidPlacement, ErrInvalidPosition,
		ErrInvalidSpell, ErrInvalidTarget, ErrNoShipsPlaced, ErrMessageFormat:
		return KindValidation
	case ErrStateConflict, ErrGameAlreadyStarted, ErrGameNotInProgress, ErrNotYourTurn,
		ErrAlreadyExists:
		return KindStateConflict
	case ErrSpellUnavailable:
		return KindResourceExhausted
	case ErrGameFull:
		return KindFull
	default:
		return KindInternal
	}
}

// AppError 应用错误结构
type AppError struct {
	Code    ErrorCode    `json:"code"`            // 错误码
	Kind    Kind         `json:"kind"`            // 错误类别
	Message string       `json:"message"`         // 错误消息
	Details string       `json:"details"`         // 详细信息
	Cause   error        `json:"-"`               // 原始错误
	Stack   []StackFrame `json:"stack,omitempty"` // 调用栈
}

// StackFrame 调用栈帧
type StackFrame struct {
	Function string `json:"function"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因错误
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	if cause != nil && e.Details == "" {
		e.Details = cause.Error()
	}
	return e
}

// New 创建新的应用错误
func New(code ErrorCode, details ...string) *AppError {
	message, ok := errorMessages[code]
	if !ok {
		message = errorMessages[ErrUnknown]
	}

	err := &AppError{
		Code:    code,
		Kind:    KindOf(code),
		Message: message,
	}

	if len(details) > 0 {
		err.Details = strings.Join(details, "; ")
	}

	// 捕获调用栈
	err.captureStack(2)

	return err
}

// Newf 创建格式化的应用错误
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return New(code, details)
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, details ...string) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，保留原始错误码
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if len(details) > 0 {
			appErr.Details = strings.Join(details, "; ") + "; " + appErr.Details
		}
		return appErr
	}

	appErr = New(code, details...)
	appErr.Cause = err
	if appErr.Details == "" {
		appErr.Details = err.Error()
	}

	return appErr
}

// Wrapf 包装格式化错误
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	details := fmt.Sprintf(format, args...)
	return Wrap(err, code, details)
}

// Is 判断错误是否为指定错误码
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// GetCode 获取错误码
func GetCode(err error) ErrorCode {
	if err == nil {
		return 0
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}

	return ErrUnknown
}

// captureStack 捕获调用栈
func (e *AppError) captureStack(skip int) {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+1, pcs)

	if n > 0 {
		frames := runtime.CallersFrames(pcs[:n])
		for {
			frame, more := frames.Next()

			// 跳过runtime和本包的调用
			if strings.HasPrefix(frame.Function, "runtime.") ||
				strings.Contains(frame.Function, "github.com/wfunc/battleship/internal/errors.") {
				if !more {
					break
				}
				continue
			}

			e.Stack = append(e.Stack, StackFrame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})

			// 只保留前10个栈帧
			if !more || len(e.Stack) >= 10 {
				break
			}
		}
	}
}

// GetStack 获取格式化的调用栈
func (e *AppError) GetStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, frame := range e.Stack {
		builder.WriteString(fmt.Sprintf("%d. %s\n   %s:%d\n",
			i+1, frame.Function, frame.File, frame.Line))
	}

	return builder.String()
}

// HTTPStatus 返回对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return 404
	case KindValidation, KindResourceExhausted:
		return 400
	case KindStateConflict, KindFull:
		return 409
	}

	switch {
	case e.Code == ErrTimeout:
		return 408
	case e.Code >= 5000 && e.Code <= 5999:
		return 503
	default:
		return 500
	}
}

// IsRetryable 判断错误是否可重试
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch GetCode(err) {
	case ErrTimeout, ErrWebSocketConnect, ErrDatabaseConnect:
		return true
	default:
		return false
	}
}

// ErrorResponse API错误响应结构
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *AppError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(err *AppError, requestID string) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     err,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
}
