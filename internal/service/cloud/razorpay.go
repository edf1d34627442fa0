package cloud

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/qiniu/x/xlog"
	"github.com/tidwall/gjson"

	"github.com/solutions/prep-cube/internal/common/utils"
)

// Razorpay 支付：下单与回调验签。

type RazorpayService struct {
	endpoint  string
	keyID     string
	keySecret string
	client    *http.Client
	xl        *xlog.Logger
}

func NewRazorpayService(conf utils.Config) *RazorpayService {
	s := new(RazorpayService)
	s.endpoint = conf.Razorpay.Endpoint
	s.keyID = conf.Razorpay.KeyID
	s.keySecret = conf.Razorpay.KeySecret
	s.client = http.DefaultClient
	s.xl = xlog.New("razorpay service")
	return s
}

// KeyID 客户端拉起收银台需要的公开key。
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder /v1/orders 下单，返回订单ID。金额单位为最小货币单位。
func (s *RazorpayService) CreateOrder(xl *xlog.Logger, amount int64, currency, receipt string) (string, error) {
	if xl == nil {
		xl = s.xl
	}
	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	msg, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	url := s.endpoint + "/v1/orders"
	req, err := http.NewRequest("POST", url, bytes.NewReader(msg))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.ContentLength = int64(len(msg))

	resp, err := s.client.Do(req)
	if err != nil {
		xl.Errorf("create order call error %+v", err)
		return "", err
	}
	defer resp.Body.Close()

	res, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		xl.Errorf("create order StatusCode %d body %s", resp.StatusCode, string(res))
		return "", fmt.Errorf("create order status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(res) {
		xl.Errorf("invalid order response json %s", string(res))
		return "", fmt.Errorf("invalid order response")
	}
	orderId := gjson.GetBytes(res, "id").String()
	if orderId == "" {
		return "", fmt.Errorf("order id missing in response")
	}
	return orderId, nil
}

// VerifySignature 校验收银台回传签名：hmac_sha256(orderId|paymentId, key_secret)。
func (s *RazorpayService) VerifySignature(orderId, paymentId, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderId + "|" + paymentId))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
