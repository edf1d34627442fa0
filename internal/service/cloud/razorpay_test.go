package cloud

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayment(secret, orderId, paymentId string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderId + "|" + paymentId))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	s := &RazorpayService{keySecret: "test-secret"}

	orderId := "order_123"
	paymentId := "pay_456"
	good := signPayment("test-secret", orderId, paymentId)

	if !s.VerifySignature(orderId, paymentId, good) {
		t.Error("valid signature rejected")
	}
	if s.VerifySignature(orderId, paymentId, "deadbeef") {
		t.Error("bogus signature accepted")
	}
	if s.VerifySignature(orderId, "pay_789", good) {
		t.Error("signature for another payment accepted")
	}
	wrongKey := signPayment("other-secret", orderId, paymentId)
	if s.VerifySignature(orderId, paymentId, wrongKey) {
		t.Error("signature with wrong secret accepted")
	}
}
