package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// VerifyPaymentForm 收银台回传的验签参数。
type VerifyPaymentForm struct {
	OrderID   string `form:"orderId" json:"orderId"`
	PaymentID string `form:"paymentId" json:"paymentId"`
	Signature string `form:"signature" json:"signature"`
}

func (f *VerifyPaymentForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.OrderID, validation.Required),
		validation.Field(&f.PaymentID, validation.Required),
		validation.Field(&f.Signature, validation.Required),
	)
}
