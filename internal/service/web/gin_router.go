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

package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
	"github.com/solutions/prep-cube/internal/service/dao"
	"github.com/solutions/prep-cube/internal/service/db"
	"github.com/solutions/prep-cube/internal/service/report"
	"github.com/solutions/prep-cube/internal/service/session"
	"github.com/solutions/prep-cube/internal/service/web/handler"
	"github.com/solutions/prep-cube/internal/service/web/middleware"
)

// NewRouter @title AI面试练习API
// @version 0.0.1
// @description http apis
// @BasePath /v1
// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config) (*gin.Engine, error) {
	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 全局CORS配置
	router.Use(corsMiddleware())

	// 2. 声明Service
	// 2.1 账号Service
	accountService, err := db.NewAccountService(*config, nil)
	if err != nil {
		return nil, err
	}

	// 2.2 面试相关Service
	interviewService, err := db.NewInterviewService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}
	bankDao := dao.NewQuestionBankDaoService(config.Mongo)
	aiService := cloud.NewAIService(*config)
	speechService := cloud.NewSpeechService(*config)
	storageService := cloud.NewStorageService(*config)
	mailService := cloud.NewMailService(*config)
	sessionService := session.NewSessionService(interviewService, aiService, bankDao,
		speechService, storageService, config.Plan)

	// 2.3 报告Service
	reportDao := dao.NewReportDaoService(config.Mongo)
	reportService := report.NewReportService(reportDao, storageService)

	// 2.4 支付Service
	razorpayService := cloud.NewRazorpayService(*config)
	orderService, err := db.NewPaymentOrderService(*config.Mongo, nil)
	if err != nil {
		return nil, err
	}

	// 3. 声明Handler
	appConfigApiHandler := handler.NewAppConfigApiHandler(config)
	accountApiHandler := &handler.AccountApiHandler{
		Account: accountService,
	}
	interviewApiHandler := handler.NewInterviewApiHandler(sessionService, mailService)
	reportApiHandler := handler.NewReportApiHandler(sessionService, reportService)
	paymentApiHandler := handler.NewPaymentApiHandler(razorpayService, orderService, accountService, *config.Razorpay)

	middleware.InitMiddleware(*config)

	// 4. 配置V1路径
	v1 := router.Group("/v1", addApiVersion(model.ApiVersionV1), addRequestID, middleware.FetchPageInfo)
	{
		// 4.1 通用|获取APP全局配置
		v1.GET("appConfig", appConfigApiHandler.GetAppConfig)
		v1.GET("appConfig/", appConfigApiHandler.GetAppConfig)
		// 4.2 登录/注册
		v1.POST("signUpOrIn", accountApiHandler.SignUpOrIn)
		v1.POST("signUpOrIn/", accountApiHandler.SignUpOrIn)
	}
	baseAuth := v1.Group("", middleware.Authenticate)
	{
		// 4.3 登出
		baseAuth.POST("signOut", accountApiHandler.SignOut)
		baseAuth.POST("signOut/", accountApiHandler.SignOut)
		// 4.4 用户信息获取
		baseAuth.GET("accountInfo", accountApiHandler.GetAccountInfo)
		baseAuth.GET("accountInfo/", accountApiHandler.GetAccountInfo)
		// 4.5 用户信息更新
		baseAuth.POST("accountInfo", accountApiHandler.UpdateAccountInfo)
		baseAuth.POST("accountInfo/", accountApiHandler.UpdateAccountInfo)

		// 4.6 客户端直传凭证
		baseAuth.GET("token/kodo", appConfigApiHandler.GetKodoToken)
		baseAuth.GET("token/kodo/", appConfigApiHandler.GetKodoToken)

		// 5.1 面试场景-面试列表
		baseAuth.GET("interview", interviewApiHandler.ListInterviews)
		baseAuth.GET("interview/", interviewApiHandler.ListInterviews)
		// 5.2 面试场景-创建面试
		baseAuth.POST("interview", interviewApiHandler.CreateInterview)
		baseAuth.POST("interview/", interviewApiHandler.CreateInterview)
		// 5.3 面试场景-面试详情
		baseAuth.GET("interview/:interviewId", interviewApiHandler.GetInterview)
		// 5.4 面试场景-开始面试
		baseAuth.POST("interview/:interviewId/start", interviewApiHandler.StartInterview)
		// 5.5 面试场景-提交作答
		baseAuth.POST("interview/:interviewId/answer", interviewApiHandler.SubmitAnswer)
		// 5.6 面试场景-结束面试
		baseAuth.POST("interview/:interviewId/complete", interviewApiHandler.CompleteInterview)
		// 5.7 面试场景-获取报告
		baseAuth.GET("interview/:interviewId/report", reportApiHandler.GetInterviewReport)

		// 6.1 报告列表
		baseAuth.GET("report", reportApiHandler.ListReports)
		baseAuth.GET("report/", reportApiHandler.ListReports)
		// 6.2 报告详情
		baseAuth.GET("report/:reportId", reportApiHandler.GetReport)

		// 7.1 支付下单
		baseAuth.POST("payment/order", paymentApiHandler.CreateOrder)
		// 7.2 支付验签
		baseAuth.POST("payment/verify", paymentApiHandler.Verify)
	}

	router.NoRoute(addRequestID, returnNotFound)
	router.RedirectTrailingSlash = false

	return router, nil
}

// 增加当前接口调用版本
func addApiVersion(version model.ApiVersion) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(model.RequestApiVersion, version)
	}
}

func addRequestID(c *gin.Context) {
	requestID := ""
	if requestID = c.Request.Header.Get(model.RequestIDHeader); requestID == "" {
		requestID = utils.NewReqID()
		c.Request.Header.Set(model.RequestIDHeader, requestID)
	}
	xl := xlog.New(requestID)
	xl.Debugf("request: %s %s", c.Request.Method, c.Request.URL.Path)
	c.Set(model.XLogKey, xl)
	c.Set(model.RequestStartKey, time.Now())
}

func returnNotFound(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	xl.Debugf("%s %s: not found", c.Request.Method, c.Request.URL.Path)
	responseErr := model.NewResponseErrorNotFound()
	resp := model.NewFailResponse(*responseErr)
	c.JSON(http.StatusOK, resp)
}

func corsMiddleware() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token",
		"Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With",
	}
	corsConfig.AllowMethods = []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "HEAD"}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}
