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

package utils

import (
	"log"
	"os"

	qconfig "github.com/qiniu/x/config"
)

var (
	DefaultConf Config
)

func InitConf(configFilePath string) {
	err := qconfig.LoadFile(&DefaultConf, configFilePath)
	if err != nil {
		log.Fatalf("failed to load config file, error %v", err)
	}
}

// MongoConfig mongo 数据库配置。
type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

// QiniuKeyPair 七牛APIaccess key/secret key配置。
type QiniuKeyPair struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
}

// QiniuStorageConfig 七牛对象存储服务配置。
// 语音、简历、报告PDF等生成文件均存放于该bucket。
type QiniuStorageConfig struct {
	Bucket string `json:"bucket"`
	// URLPrefix 上传的文件的下载URL前缀，一般为该bucket对应的默认域名。
	URLPrefix string `json:"url_prefix"`
}

// GeminiConfig 生成式AI服务配置。
type GeminiConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
	// TimeoutSecond 单次AI调用超时，防止provider挂起阻塞面试流程。
	TimeoutSecond int `json:"timeout_s"`
	// 熔断配置
	BreakerMinRequests      uint32  `json:"breaker_min_requests"`
	BreakerFailureThreshold float64 `json:"breaker_failure_threshold"`
	BreakerTimeoutSecond    int     `json:"breaker_timeout_s"`
}

// SpeechConfig 语音合成/识别服务配置。
type SpeechConfig struct {
	Endpoint      string `json:"endpoint"`
	Token         string `json:"token"`
	DefaultVoice  string `json:"default_voice"`
	DefaultSpeed  int    `json:"default_speed"`
	TimeoutSecond int    `json:"timeout_s"`
}

// MailConfig 发送邮件的配置。
type MailConfig struct {
	Enabled  bool   `json:"enabled"`
	SMTPHost string `json:"smtp_host"`
	SMTPPort int    `json:"smtp_port"`
	From     string `json:"from"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RazorpayConfig 支付下单/验签配置。
type RazorpayConfig struct {
	Endpoint  string `json:"endpoint"`
	KeyID     string `json:"key_id"`
	KeySecret string `json:"key_secret"`
	// ProPlanAmount 专业版套餐价格，单位为最小货币单位（paise）。
	ProPlanAmount int64  `json:"pro_plan_amount"`
	Currency      string `json:"currency"`
}

// PlanConfig 订阅套餐的配额配置。
type PlanConfig struct {
	// FreeInterviewQuota 免费套餐可创建的面试总数。
	FreeInterviewQuota int `json:"free_interview_quota"`
}

// Config 后端配置。
type Config struct {
	// debug等级，为1时输出info/warn/error日志，为0除以上外还输出debug日志
	DebugLevel int    `json:"debug_level"`
	ListenAddr string `json:"listen_addr"`
	// 请求默认host
	RequestUrlHost string `json:"request_url_host"`
	// 前端页面host
	FrontendUrlHost string              `json:"frontend_url_host"`
	Mongo           *MongoConfig        `json:"mongo"`
	QiniuKeyPair    QiniuKeyPair        `json:"qiniu_key_pair"`
	Storage         *QiniuStorageConfig `json:"storage"`
	Gemini          *GeminiConfig       `json:"gemini"`
	Speech          *SpeechConfig       `json:"speech"`
	Mail            *MailConfig         `json:"mail"`
	Razorpay        *RazorpayConfig     `json:"razorpay"`
	Plan            PlanConfig          `json:"plan"`
	JwtKey          string              `json:"jwt_key"`
}

// NewSample 返回样例配置。
func NewSample() *Config {
	return &Config{
		DebugLevel: 0,
		ListenAddr: ":8080",
		Mongo: &MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "prep_cube_test",
		},
		Storage: &QiniuStorageConfig{
			Bucket:    "prep-cube-test",
			URLPrefix: "https://static.example.com",
		},
		Gemini: &GeminiConfig{
			APIKey:                  os.Getenv("GEMINI_API_KEY"),
			Model:                   "gemini-2.0-flash",
			TimeoutSecond:           30,
			BreakerMinRequests:      5,
			BreakerFailureThreshold: 0.6,
			BreakerTimeoutSecond:    60,
		},
		Speech: &SpeechConfig{
			Endpoint:      os.Getenv("SPEECH_ENDPOINT"),
			Token:         os.Getenv("SPEECH_TOKEN"),
			DefaultVoice:  "female-1",
			DefaultSpeed:  100,
			TimeoutSecond: 20,
		},
		Mail: &MailConfig{
			Enabled: false,
		},
		Razorpay: &RazorpayConfig{
			Endpoint:      "https://api.razorpay.com",
			KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
			KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
			ProPlanAmount: 49900,
			Currency:      "INR",
		},
		Plan: PlanConfig{
			FreeInterviewQuota: 3,
		},
	}
}
