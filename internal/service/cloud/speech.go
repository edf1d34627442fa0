package cloud

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/prep-cube/internal/common/utils"
)

// 语音服务：题目朗读合成与作答语音转写。
// 两者都是尽力而为的能力，失败不阻断面试流程，由调用方决定兜底。

type SpeechService struct {
	endpoint string
	token    string
	voice    string
	speed    int
	client   *http.Client
	xl       *xlog.Logger
}

func NewSpeechService(conf utils.Config) *SpeechService {
	s := new(SpeechService)
	s.xl = xlog.New("speech service")
	s.endpoint = conf.Speech.Endpoint
	s.token = conf.Speech.Token
	s.voice = conf.Speech.DefaultVoice
	s.speed = conf.Speech.DefaultSpeed
	timeout := time.Duration(conf.Speech.TimeoutSecond) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	s.client = &http.Client{Timeout: timeout}
	return s
}

// Synthesize 合成一段文本的朗读音频，返回音频字节。voice为空时使用默认音色。
func (s *SpeechService) Synthesize(xl *xlog.Logger, text, voice string) ([]byte, error) {
	if xl == nil {
		xl = s.xl
	}
	if voice == "" {
		voice = s.voice
	}
	payload := map[string]interface{}{
		"text":  text,
		"voice": voice,
		"speed": s.speed,
	}
	url := s.endpoint + "/v1/tts"
	resp, err := s.postWithJson(url, payload)
	if err != nil {
		xl.Errorf("tts call error %+v", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		xl.Errorf("tts StatusCode %d", resp.StatusCode)
		return nil, fmt.Errorf("tts status %d", resp.StatusCode)
	}
	res, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid tts response json %s", string(res))
		return nil, fmt.Errorf("invalid tts response")
	}
	result := gjson.ParseBytes(res)
	if result.Get("code").Int() != 0 {
		return nil, fmt.Errorf("tts error: %s", result.Get("message").String())
	}
	audio, err := base64.StdEncoding.DecodeString(result.Get("data.audio").String())
	if err != nil {
		xl.Errorf("decode tts audio failed %v", err)
		return nil, err
	}
	return audio, nil
}

// Transcribe 把作答音频转成文本。
func (s *SpeechService) Transcribe(xl *xlog.Logger, audio []byte, mimeType string) (string, error) {
	if xl == nil {
		xl = s.xl
	}
	url := s.endpoint + "/v1/asr"
	req, err := http.NewRequest("POST", url, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.ContentLength = int64(len(audio))

	resp, err := s.client.Do(req)
	if err != nil {
		xl.Errorf("asr call error %+v", err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		xl.Errorf("asr StatusCode %d", resp.StatusCode)
		return "", fmt.Errorf("asr status %d", resp.StatusCode)
	}
	res, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid asr response json %s", string(res))
		return "", fmt.Errorf("invalid asr response")
	}
	result := gjson.ParseBytes(res)
	if result.Get("code").Int() != 0 {
		return "", fmt.Errorf("asr error: %s", result.Get("message").String())
	}
	return result.Get("data.text").String(), nil
}

func (s *SpeechService) postWithJson(url string, params interface{}) (*http.Response, error) {
	msg, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(msg))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.ContentLength = int64(len(msg))
	return s.client.Do(req)
}
