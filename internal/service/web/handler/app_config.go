package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
)

// supportedVoices 语音合成服务支持的音色。
var supportedVoices = []string{"female-1", "female-2", "male-1", "male-2"}

type AppConfigApiHandler struct {
	Conf *utils.Config
}

func NewAppConfigApiHandler(conf *utils.Config) *AppConfigApiHandler {
	return &AppConfigApiHandler{Conf: conf}
}

// GetAppConfig 客户端启动时拉取的全局配置。
func (h *AppConfigApiHandler) GetAppConfig(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	succeed(c, xl, model.AppConfigResponse{
		Voices: supportedVoices,
		Difficulties: []string{
			string(model.QuestionDifficultyEasy),
			string(model.QuestionDifficultyMedium),
			string(model.QuestionDifficultyHard),
		},
		FreeInterviewQuota: h.Conf.Plan.FreeInterviewQuota,
	})
}

// GetKodoToken 下发客户端直传对象存储的凭证。
func (h *AppConfigApiHandler) GetKodoToken(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	token := cloud.GenKodoClientToken(h.Conf.QiniuKeyPair, h.Conf.Storage.Bucket)
	succeed(c, xl, model.KodoTokenResponse{
		Token:     token,
		URLPrefix: h.Conf.Storage.URLPrefix,
	})
}
