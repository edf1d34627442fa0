package model

type ResponseError struct {
	// 自定义错误码。
	Code int `json:"code"`
	// 请求ID。
	RequestID string `json:"requestID"`
	// Message
	Message string `json:"message"`
}

const (
	ResponseErrorBadRequest         = 400000
	ResponseErrorWrongState         = 400001
	ResponseErrorAnswerOutOfOrder   = 400002
	ResponseErrorAnswerMissing      = 400003
	ResponseErrorNotLoggedIn        = 401001
	ResponseErrorBadToken           = 401003
	ResponseErrorValidation         = 401005
	ResponseErrorWrongPassword      = 401013
	ResponseErrorNotOwner           = 403001
	ResponseErrorQuotaExceeded      = 403002
	ResponseErrorPaymentNotVerified = 403003
	ResponseErrorNotFound           = 404000
	ResponseErrorNoSuchUser         = 404001
	ResponseErrorNoSuchInterview    = 404002
	ResponseErrorNoSuchReport       = 404005
	ResponseErrorInternal           = 500000
	ResponseErrorExternalService    = 502001
)

// NewResponseErrorBadRequest 参数错误。
func NewResponseErrorBadRequest() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadRequest,
		Message: "参数错误",
	}
}

// NewResponseErrorNotLoggedIn 用户未登录。
func NewResponseErrorNotLoggedIn() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotLoggedIn,
		Message: "not logged in",
	}
}

// NewResponseErrorBadToken 登录token错误。
func NewResponseErrorBadToken() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorBadToken,
		Message: "bad token",
	}
}

// NewResponseErrorInternal 其他内部服务错误。
func NewResponseErrorInternal() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorInternal,
		Message: "internal server error",
	}
}

// NewResponseErrorExternalService 调用外部服务错误。
func NewResponseErrorExternalService() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorExternalService,
		Message: "calling external service failed",
	}
}

// NewResponseErrorNoSuchUser 无此用户。
func NewResponseErrorNoSuchUser() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchUser,
		Message: "no such user",
	}
}

func NewResponseErrorNotFound() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotFound,
		Message: "not found",
	}
}

// NewResponseErrorNoSuchInterview 无此面试。
func NewResponseErrorNoSuchInterview() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchInterview,
		Message: "no such interview",
	}
}

func NewResponseErrorNoSuchReport() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNoSuchReport,
		Message: "no such report",
	}
}

func NewResponseErrorValidation(err error) *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorValidation,
		Message: err.Error(),
	}
}

// NewResponseErrorWrongPassword 密码校验失败。
func NewResponseErrorWrongPassword() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorWrongPassword,
		Message: "wrong password",
	}
}

// NewResponseErrorNotOwner 调用者不是该面试的候选人。
func NewResponseErrorNotOwner() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorNotOwner,
		Message: "caller is not the interview owner",
	}
}

// NewResponseErrorWrongState 操作与面试当前状态不匹配。
func NewResponseErrorWrongState() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorWrongState,
		Message: "operation not allowed in current interview status",
	}
}

// NewResponseErrorAnswerOutOfOrder 提交的questionIndex不是下一个待答下标。
func NewResponseErrorAnswerOutOfOrder() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorAnswerOutOfOrder,
		Message: "question index out of order",
	}
}

// NewResponseErrorAnswerMissing 文本与语音均未能产生答案文本。
func NewResponseErrorAnswerMissing() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorAnswerMissing,
		Message: "answer text unavailable",
	}
}

// NewResponseErrorQuotaExceeded 当前套餐面试配额已用尽。
func NewResponseErrorQuotaExceeded() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorQuotaExceeded,
		Message: "interview quota exceeded, upgrade plan to continue",
	}
}

// NewResponseErrorPaymentNotVerified 支付验签失败。
func NewResponseErrorPaymentNotVerified() *ResponseError {
	return &ResponseError{
		Code:    ResponseErrorPaymentNotVerified,
		Message: "payment signature verification failed",
	}
}

func NewResponseError(code int, message string) *ResponseError {
	return &ResponseError{
		Code:    code,
		Message: message,
	}
}
