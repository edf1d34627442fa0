// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"encoding/json"
	"fmt"
)

// ServerError 服务端内部错误与非正常返回结果定义
type ServerError struct {
	Code    int    `json:"code"`
	Summary string `json:"summary"`
}

func (e *ServerError) Error() string {
	buf, _ := json.Marshal(e)
	return string(buf)
}

// 各种服务端内部错误的错误码定义。错误码为5位数字。
const (
	// 1开头表示服务端内部，或数据库访问相关的错误。
	ServerErrorUserNotLoggedin   = 10001
	ServerErrorUserNoPermission  = 10003
	ServerErrorUserNotfound      = 10004
	ServerErrorInterviewNotFound = 10005
	ServerErrorWrongState        = 10006
	ServerErrorAnswerOutOfOrder  = 10007
	ServerErrorQuotaExceeded     = 10008
	ServerErrorAnswerMissing     = 10009
	ServerErrorReportNotFound    = 10010
	ServerErrorMongoOpFail       = 11000
	// 2开头表示外部服务错误。
	ServerErrorAIGenerateFail    = 20001
	ServerErrorResumeAnalyzeFail = 20002
	ServerErrorTranscribeFail    = 20003
	ServerErrorPaymentFail       = 20004
)

// NewWrongState 状态机检查失败：操作与当前面试状态不匹配。
func NewWrongState(summary string) *ServerError {
	return &ServerError{Code: ServerErrorWrongState, Summary: summary}
}

// NewNoPermission 调用者并非面试所属候选人。
func NewNoPermission() *ServerError {
	return &ServerError{Code: ServerErrorUserNoPermission, Summary: "caller is not the interview owner"}
}

func NewInterviewNotFound() *ServerError {
	return &ServerError{Code: ServerErrorInterviewNotFound, Summary: "no such interview"}
}

// NewAnswerOutOfOrder 提交的题目下标不是下一个待答下标。
func NewAnswerOutOfOrder(got, want int) *ServerError {
	return &ServerError{Code: ServerErrorAnswerOutOfOrder, Summary: fmt.Sprintf("answer index out of order, got %d want %d", got, want)}
}

// NewAnswerMissing 文本与语音均未能产生答案文本。
func NewAnswerMissing() *ServerError {
	return &ServerError{Code: ServerErrorAnswerMissing, Summary: "answer text unavailable"}
}

// NewQuotaExceeded 当前套餐面试配额已用尽。
func NewQuotaExceeded() *ServerError {
	return &ServerError{Code: ServerErrorQuotaExceeded, Summary: "interview quota exceeded for current plan"}
}
