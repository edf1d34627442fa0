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

package model

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
	http_model.go: 规定API的参数与返回值的定义，***Args 表示 *** 接口的参数，***Response表示 *** 接口的返回体格式。
*/

const (
	// RequestIDHeader 七牛 request ID 头部。
	RequestIDHeader = "X-Reqid"
	// XLogKey gin context中，用于获取记录请求相关日志的 xlog logger的key。
	XLogKey = "xlog-logger"

	// UserIDContextKey 存放在请求context 中的用户ID。
	UserIDContextKey = "userID"
	// UserContextKey 存放用户对象
	UserContextKey = "user"

	// 分页参数
	PageNumContextKey  = "pageNum"
	PageSizeContextKey = "pageSize"

	// RequestStartKey 存放在gin context中的请求开始的时间戳，单位为纳秒。
	RequestStartKey = "request-start-timestamp-nano"

	// RequestApiVersion
	RequestApiVersion            = "request-api-version"
	ApiVersionV1      ApiVersion = "v1"

	// 状态码和状态信息
	ResponseStatusCodeSuccess    ResponseStatusCode    = 0
	ResponseStatusMessageSuccess ResponseStatusMessage = "success"
)

// API Version
type ApiVersion string

// 状态码和状态信息
type ResponseStatusCode int
type ResponseStatusMessage string

type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    int(ResponseStatusCodeSuccess),
		Message: string(ResponseStatusMessageSuccess),
		Data:    data,
	}
}

func NewFailResponse(err ResponseError) *Response {
	return &Response{
		Code:    int(err.Code),
		Message: string(err.Message),
	}
}

func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

func (r *Response) Send(c *gin.Context) {
	c.JSON(http.StatusOK, r)
}

type Pagination struct {
	Total          int           `json:"total"`
	NextId         string        `json:"nextId"`
	Cnt            int           `json:"cnt"`
	CurrentPageNum int           `json:"currentPageNum"`
	NextPageNum    int           `json:"nextPageNum"`
	PageSize       int           `json:"pageSize"`
	EndPage        bool          `json:"endPage"`
	List           []interface{} `json:"list"`
}

// UserInfoResponse 用户的信息，包括ID、昵称等。
type UserInfoResponse struct {
	ID                string `json:"accountId"`
	Nickname          string `json:"nickname"`
	Email             string `json:"email"`
	Plan              string `json:"plan"`
	EmailNotification bool   `json:"emailNotification"`
}

// SignUpOrInResponse 登录的返回结果。
type SignUpOrInResponse struct {
	UserInfoResponse
	Token string `json:"loginToken"`
}

// 面试相关

// QuestionResponse 下发给客户端的题目，不包含期望答案。
type QuestionResponse struct {
	Question         string `json:"question"`
	Category         string `json:"category"`
	Difficulty       string `json:"difficulty"`
	Type             string `json:"type"`
	AudioUrl         string `json:"audioUrl,omitempty"`
	Order            int    `json:"order"`
	TimeBudgetSecond int    `json:"timeBudget"`
}

// NewQuestionResponse 注意不能把expectedAnswer透传给客户端。
func NewQuestionResponse(q QuestionDo) *QuestionResponse {
	return &QuestionResponse{
		Question:         q.Question,
		Category:         q.Category,
		Difficulty:       string(q.Difficulty),
		Type:             q.Type,
		AudioUrl:         q.AudioUrl,
		Order:            q.Order,
		TimeBudgetSecond: q.TimeBudgetSecond,
	}
}

// UpsertInterviewResponse 创建面试的返回结果
type UpsertInterviewResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Position       string `json:"position"`
	Status         string `json:"status"`
	QuestionsCount int    `json:"questionsCount"`
	HasResume      bool   `json:"hasResume"`
}

// StartInterviewResponse 开始面试的返回结果，含第一题。
type StartInterviewResponse struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	StartedAt     int64             `json:"startedAt"`
	FirstQuestion *QuestionResponse `json:"firstQuestion"`
	TotalCount    int               `json:"totalCount"`
}

// EvaluationResponse 单题评估结果。
type EvaluationResponse struct {
	Score            int    `json:"score"`
	Accuracy         int    `json:"accuracy"`
	Clarity          int    `json:"clarity"`
	Relevance        int    `json:"relevance"`
	Feedback         string `json:"feedback"`
	DetailedAnalysis string `json:"detailedAnalysis,omitempty"`
}

// SubmitAnswerResponse 提交作答的返回结果。
type SubmitAnswerResponse struct {
	Evaluation EvaluationResponse `json:"evaluation"`
	// FollowUpQuestions 追问建议，仅用于客户端展示，不落库。
	FollowUpQuestions []string          `json:"followUpQuestions"`
	NextQuestion      *QuestionResponse `json:"nextQuestion,omitempty"`
	IsLastQuestion    bool              `json:"isLastQuestion"`
	// Progress 已答题目占比，整数百分比。
	Progress int `json:"progress"`
}

// AnalysisResponse 综合分析结果。
type AnalysisResponse struct {
	Communication    int      `json:"communication"`
	Technical        int      `json:"technical"`
	ProblemSolving   int      `json:"problemSolving"`
	Confidence       int      `json:"confidence"`
	Overall          int      `json:"overall"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	DetailedFeedback string   `json:"detailedFeedback"`
}

// CompleteInterviewResponse 结束面试的返回结果。
type CompleteInterviewResponse struct {
	ID             string           `json:"id"`
	Status         string           `json:"status"`
	OverallScore   int              `json:"overallScore"`
	DurationSecond int              `json:"duration"`
	AnsweredCount  int              `json:"answeredCount"`
	QuestionsCount int              `json:"questionsCount"`
	Analysis       AnalysisResponse `json:"analysis"`
	ReportUrl      string           `json:"reportUrl,omitempty"`
}

// InterviewResponse 面试详情。
type InterviewResponse struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Position        string             `json:"position"`
	Difficulty      string             `json:"difficulty"`
	Status          string             `json:"status"`
	StatusCode      int                `json:"statusCode"`
	Questions       []QuestionResponse `json:"questions"`
	AnsweredCount   int                `json:"answeredCount"`
	OverallScore    int                `json:"overallScore"`
	DurationSecond  int                `json:"duration"`
	Analysis        *AnalysisResponse  `json:"analysis,omitempty"`
	HasResume       bool               `json:"hasResume"`
	StartedAt       int64              `json:"startedAt,omitempty"`
	CompletedAt     int64              `json:"completedAt,omitempty"`
	CreateTime      int64              `json:"createTime"`
}

// InterviewListResponse 面试列表结果
type InterviewListResponse struct {
	Pagination
}

// ReportResponse 报告元数据。
type ReportResponse struct {
	ID          string `json:"id"`
	InterviewID string `json:"interviewId"`
	FileUrl     string `json:"fileUrl"`
	SizeByte    int    `json:"size"`
	CreateAt    int64  `json:"createAt"`
}

type ReportListResponse struct {
	Pagination
}

// 支付相关

// CreatePaymentOrderResponse 下单返回结果，客户端凭orderId拉起收银台。
type CreatePaymentOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// VerifyPaymentResponse 验签结果。
type VerifyPaymentResponse struct {
	Plan string `json:"plan"`
}

// AppConfigResponse 客户端全局配置。
type AppConfigResponse struct {
	Voices             []string `json:"voices"`
	Difficulties       []string `json:"difficulties"`
	FreeInterviewQuota int      `json:"freeInterviewQuota"`
}

// KodoTokenResponse 客户端直传对象存储的凭证。
type KodoTokenResponse struct {
	Token     string `json:"token"`
	URLPrefix string `json:"urlPrefix"`
}
