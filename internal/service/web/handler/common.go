package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/protodef/errors"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

// translateError 把服务层错误翻译成对外的响应错误码。
func translateError(err error) *model.ResponseError {
	serverError, ok := err.(*errors.ServerError)
	if !ok {
		return model.NewResponseErrorInternal()
	}
	switch serverError.Code {
	case errors.ServerErrorInterviewNotFound:
		return model.NewResponseErrorNoSuchInterview()
	case errors.ServerErrorUserNotfound:
		return model.NewResponseErrorNoSuchUser()
	case errors.ServerErrorUserNoPermission:
		return model.NewResponseErrorNotOwner()
	case errors.ServerErrorWrongState:
		return model.NewResponseErrorWrongState()
	case errors.ServerErrorAnswerOutOfOrder:
		return model.NewResponseErrorAnswerOutOfOrder()
	case errors.ServerErrorAnswerMissing:
		return model.NewResponseErrorAnswerMissing()
	case errors.ServerErrorQuotaExceeded:
		return model.NewResponseErrorQuotaExceeded()
	case errors.ServerErrorReportNotFound:
		return model.NewResponseErrorNoSuchReport()
	case errors.ServerErrorAIGenerateFail,
		errors.ServerErrorResumeAnalyzeFail,
		errors.ServerErrorTranscribeFail,
		errors.ServerErrorPaymentFail:
		return model.NewResponseErrorExternalService()
	}
	return model.NewResponseErrorInternal()
}

func failWith(c *gin.Context, xl *xlog.Logger, err error) {
	responseErr := translateError(err)
	model.NewFailResponse(*responseErr).WithRequestID(xl.ReqId).Send(c)
}

func failBadRequest(c *gin.Context, xl *xlog.Logger) {
	model.NewFailResponse(*model.NewResponseErrorBadRequest()).WithRequestID(xl.ReqId).Send(c)
}

func failValidation(c *gin.Context, xl *xlog.Logger, err error) {
	model.NewFailResponse(*model.NewResponseErrorValidation(err)).WithRequestID(xl.ReqId).Send(c)
}

func succeed(c *gin.Context, xl *xlog.Logger, data interface{}) {
	model.NewSuccessResponse(data).WithRequestID(xl.ReqId).Send(c)
}

// currentUser 取出鉴权中间件填充的用户。
func currentUser(c *gin.Context) model.AccountDo {
	return c.MustGet(model.UserContextKey).(model.AccountDo)
}

func pageInfo(c *gin.Context) (pageNum, pageSize int) {
	pageNum = c.GetInt(model.PageNumContextKey)
	pageSize = c.GetInt(model.PageSizeContextKey)
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return
}
