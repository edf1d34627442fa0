package handler

import (
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

type fakeGateway struct {
	orderId   string
	signature string
	failOrder bool
}

func (g *fakeGateway) KeyID() string {
	return "rzp_test_key"
}

func (g *fakeGateway) CreateOrder(xl *xlog.Logger, amount int64, currency, receipt string) (string, error) {
	if g.failOrder {
		return "", mgo.ErrNotFound
	}
	return g.orderId, nil
}

func (g *fakeGateway) VerifySignature(orderId, paymentId, signature string) bool {
	return signature == g.signature
}

type fakeOrderStore struct {
	orders map[string]*model.PaymentOrderDo
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[string]*model.PaymentOrderDo{}}
}

func (s *fakeOrderStore) InsertOrder(xl *xlog.Logger, order *model.PaymentOrderDo) error {
	order.Status = model.PaymentOrderStatusCreated
	s.orders[order.OrderID] = order
	return nil
}

func (s *fakeOrderStore) GetOrderByOrderID(xl *xlog.Logger, orderId string) (*model.PaymentOrderDo, error) {
	order, ok := s.orders[orderId]
	if !ok {
		return nil, mgo.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *fakeOrderStore) MarkPaid(xl *xlog.Logger, orderId string) error {
	order, ok := s.orders[orderId]
	if !ok || order.Status != model.PaymentOrderStatusCreated {
		return mgo.ErrNotFound
	}
	order.Status = model.PaymentOrderStatusPaid
	return nil
}

func (s *fakeOrderStore) MarkRejected(xl *xlog.Logger, orderId string) error {
	order, ok := s.orders[orderId]
	if !ok || order.Status != model.PaymentOrderStatusCreated {
		return mgo.ErrNotFound
	}
	order.Status = model.PaymentOrderStatusRejected
	return nil
}

type fakePlanUpdater struct {
	upgraded map[string]model.PlanCode
	calls    int
}

func (u *fakePlanUpdater) UpdatePlan(xl *xlog.Logger, id string, plan model.PlanCode) error {
	u.upgraded[id] = plan
	u.calls++
	return nil
}

func newPaymentTestHandler() (*PaymentApiHandler, *fakeOrderStore, *fakePlanUpdater) {
	gateway := &fakeGateway{orderId: "order_123", signature: "good-signature"}
	orders := newFakeOrderStore()
	plans := &fakePlanUpdater{upgraded: map[string]model.PlanCode{}}
	conf := utils.RazorpayConfig{ProPlanAmount: 49900, Currency: "INR"}
	return NewPaymentApiHandler(gateway, orders, plans, conf), orders, plans
}

func paymentTestContext(t *testing.T, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	req := httptest.NewRequest(method, "/v1/payment", strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.Request = req
	c.Set(model.XLogKey, xlog.New("payment-test"))
	c.Set(model.UserContextKey, model.AccountDo{
		ID:    "user-1",
		Email: "user1@example.com",
		Plan:  model.PlanCodeFree,
	})
	return c, recorder
}

func responseCode(t *testing.T, recorder *httptest.ResponseRecorder) int {
	t.Helper()
	resp := model.Response{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.Code
}

func TestCreateOrderPersistsOrder(t *testing.T) {
	h, orders, _ := newPaymentTestHandler()
	c, recorder := paymentTestContext(t, "POST", "")

	h.CreateOrder(c)

	if code := responseCode(t, recorder); code != 0 {
		t.Fatalf("expected success, got code %d", code)
	}
	order, ok := orders.orders["order_123"]
	if !ok {
		t.Fatal("order not persisted")
	}
	if order.Candidate != "user-1" {
		t.Errorf("order candidate = %s, want user-1", order.Candidate)
	}
	if order.Plan != model.PlanCodePro {
		t.Errorf("order plan = %s, want pro", order.Plan)
	}
	if order.Amount != 49900 {
		t.Errorf("order amount = %d, want 49900", order.Amount)
	}
}

func verifyBody(signature string) string {
	values := url.Values{}
	values.Set("orderId", "order_123")
	values.Set("paymentId", "pay_456")
	values.Set("signature", signature)
	return values.Encode()
}

func TestVerifyUpgradesPlan(t *testing.T) {
	h, orders, plans := newPaymentTestHandler()
	c, _ := paymentTestContext(t, "POST", "")
	h.CreateOrder(c)

	c, recorder := paymentTestContext(t, "POST", verifyBody("good-signature"))
	h.Verify(c)

	if code := responseCode(t, recorder); code != 0 {
		t.Fatalf("expected success, got code %d", code)
	}
	if orders.orders["order_123"].Status != model.PaymentOrderStatusPaid {
		t.Errorf("order status = %s, want paid", orders.orders["order_123"].Status)
	}
	if plans.upgraded["user-1"] != model.PlanCodePro {
		t.Errorf("plan = %s, want pro", plans.upgraded["user-1"])
	}
}

func TestVerifyRejectsBadSignature(t *testing.T) {
	h, orders, plans := newPaymentTestHandler()
	c, _ := paymentTestContext(t, "POST", "")
	h.CreateOrder(c)

	c, recorder := paymentTestContext(t, "POST", verifyBody("bad-signature"))
	h.Verify(c)

	if code := responseCode(t, recorder); code != model.ResponseErrorPaymentNotVerified {
		t.Fatalf("expected code %d, got %d", model.ResponseErrorPaymentNotVerified, code)
	}
	if orders.orders["order_123"].Status != model.PaymentOrderStatusRejected {
		t.Errorf("order status = %s, want rejected", orders.orders["order_123"].Status)
	}
	if len(plans.upgraded) != 0 {
		t.Error("plan must not be upgraded on failed verification")
	}
}

func TestVerifyDuplicateCallback(t *testing.T) {
	h, _, plans := newPaymentTestHandler()
	c, _ := paymentTestContext(t, "POST", "")
	h.CreateOrder(c)

	c, _ = paymentTestContext(t, "POST", verifyBody("good-signature"))
	h.Verify(c)
	c, recorder := paymentTestContext(t, "POST", verifyBody("good-signature"))
	h.Verify(c)

	if code := responseCode(t, recorder); code != model.ResponseErrorWrongState {
		t.Fatalf("expected code %d on duplicate callback, got %d", model.ResponseErrorWrongState, code)
	}
	if plans.calls != 1 {
		t.Errorf("plan upgraded %d times, want 1", plans.calls)
	}
}

func TestVerifyUnknownOrder(t *testing.T) {
	h, _, _ := newPaymentTestHandler()
	c, recorder := paymentTestContext(t, "POST", verifyBody("good-signature"))
	h.Verify(c)

	if code := responseCode(t, recorder); code != model.ResponseErrorNotFound {
		t.Fatalf("expected code %d, got %d", model.ResponseErrorNotFound, code)
	}
}

func TestVerifyOrderOwnership(t *testing.T) {
	h, orders, _ := newPaymentTestHandler()
	orders.orders["order_123"] = &model.PaymentOrderDo{
		OrderID:   "order_123",
		Candidate: "someone-else",
		Plan:      model.PlanCodePro,
		Status:    model.PaymentOrderStatusCreated,
	}

	c, recorder := paymentTestContext(t, "POST", verifyBody("good-signature"))
	h.Verify(c)

	if code := responseCode(t, recorder); code != model.ResponseErrorNotOwner {
		t.Fatalf("expected code %d, got %d", model.ResponseErrorNotOwner, code)
	}
}
