package cloud

import (
	"bytes"
	"context"
	"fmt"

	"github.com/qiniu/go-sdk/v7/auth/qbox"
	"github.com/qiniu/go-sdk/v7/storage"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/common/utils"
)

var (
	defaultLogger = xlog.New("default service logger")
)

const (
	ResumeFilePattern = "resume-%s.pdf" // resume-<interviewId>
	AudioFilePattern  = "tts-%s-%d.mp3" // tts-<interviewId>-<order>
	ReportFilePattern = "report-%s.pdf" // report-<interviewId>
	AnswerFilePattern = "answer-%s-%d"  // answer-<interviewId>-<questionIndex>
)

// StorageService 对象存储：简历原件、题目朗读音频、报告PDF都走这里。
type StorageService struct {
	bucket    string
	urlPrefix string
	keyPair   utils.QiniuKeyPair
	xl        *xlog.Logger
}

func NewStorageService(conf utils.Config) *StorageService {
	s := new(StorageService)
	s.bucket = conf.Storage.Bucket
	s.urlPrefix = conf.Storage.URLPrefix
	s.keyPair = conf.QiniuKeyPair
	s.xl = xlog.New("storage service")
	return s
}

// Upload 上传并返回可下载的URL。
func (s *StorageService) Upload(xl *xlog.Logger, data []byte, fileKey string) (string, error) {
	if xl == nil {
		xl = s.xl
	}
	if err := upload(s.bucket, s.keyPair, data, fileKey, xl); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + fileKey, nil
}

// ResumeFileKey 简历原件的存储名。
func ResumeFileKey(interviewId string) string {
	return fmt.Sprintf(ResumeFilePattern, interviewId)
}

// AudioFileKey 题目朗读音频的存储名。
func AudioFileKey(interviewId string, order int) string {
	return fmt.Sprintf(AudioFilePattern, interviewId, order)
}

// ReportFileKey 报告PDF的存储名。
func ReportFileKey(interviewId string) string {
	return fmt.Sprintf(ReportFilePattern, interviewId)
}

// AnswerFileKey 作答录音的存储名。
func AnswerFileKey(interviewId string, questionIndex int) string {
	return fmt.Sprintf(AnswerFilePattern, interviewId, questionIndex)
}

// fileKey 上传文件的访问名
func upload(bucketName string, conf utils.QiniuKeyPair, data []byte, fileKey string, xl *xlog.Logger) error {
	if xl == nil {
		xl = defaultLogger
	}
	mac := qbox.NewMac(conf.AccessKey, conf.SecretKey)
	putPolicy := storage.PutPolicy{
		Scope: bucketName + ":" + fileKey,
	}
	upToken := putPolicy.UploadToken(mac)
	cfg := storage.Config{}
	// 空间对应的机房
	cfg.Zone = &storage.ZoneHuanan
	// 是否使用https域名
	cfg.UseHTTPS = true
	// 上传是否使用CDN上传加速
	cfg.UseCdnDomains = false
	formUploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}
	dataLen := int64(len(data))
	err := formUploader.Put(context.Background(), &ret, upToken, fileKey, bytes.NewReader(data), dataLen, nil)
	if err != nil {
		xl.Errorf("file uploading failed err:%v", err)
		return err
	}
	xl.Infof("file upload success, key:%s", fileKey)
	return nil
}

// GenKodoClientToken 客户端直传凭证。
func GenKodoClientToken(conf utils.QiniuKeyPair, bucket string) string {
	mac := qbox.NewMac(conf.AccessKey, conf.SecretKey)
	putPolicy := storage.PutPolicy{
		Scope: bucket,
	}
	putPolicy.Expires = 3600 * 24 * 30
	upToken := putPolicy.UploadToken(mac)
	return upToken
}
