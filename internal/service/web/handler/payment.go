package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/form"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

// PaymentGateway 支付网关：下单与验签。
type PaymentGateway interface {
	KeyID() string

	CreateOrder(xl *xlog.Logger, amount int64, currency, receipt string) (string, error)

	VerifySignature(orderId, paymentId, signature string) bool
}

// OrderStore 支付订单持久化。条件不满足时返回 mgo.ErrNotFound。
type OrderStore interface {
	InsertOrder(xl *xlog.Logger, order *model.PaymentOrderDo) error

	GetOrderByOrderID(xl *xlog.Logger, orderId string) (*model.PaymentOrderDo, error)

	MarkPaid(xl *xlog.Logger, orderId string) error

	MarkRejected(xl *xlog.Logger, orderId string) error
}

// PlanUpdater 验签通过后升级账号套餐。
type PlanUpdater interface {
	UpdatePlan(xl *xlog.Logger, id string, plan model.PlanCode) error
}

type PaymentApiHandler struct {
	Gateway PaymentGateway
	Orders  OrderStore
	Plans   PlanUpdater
	Conf    utils.RazorpayConfig
}

func NewPaymentApiHandler(gateway PaymentGateway, orders OrderStore, plans PlanUpdater, conf utils.RazorpayConfig) *PaymentApiHandler {
	return &PaymentApiHandler{
		Gateway: gateway,
		Orders:  orders,
		Plans:   plans,
		Conf:    conf,
	}
}

// CreateOrder 为专业版套餐下单，客户端凭orderId与keyId拉起收银台。
func (h *PaymentApiHandler) CreateOrder(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)

	receipt := utils.GenerateID()
	orderId, err := h.Gateway.CreateOrder(xl, h.Conf.ProPlanAmount, h.Conf.Currency, receipt)
	if err != nil {
		xl.Errorf("create payment order for account %s failed, error %v", account.ID, err)
		model.NewFailResponse(*model.NewResponseErrorExternalService()).WithRequestID(xl.ReqId).Send(c)
		return
	}
	order := &model.PaymentOrderDo{
		ID:        receipt,
		OrderID:   orderId,
		Candidate: account.ID,
		Plan:      model.PlanCodePro,
		Amount:    h.Conf.ProPlanAmount,
		Currency:  h.Conf.Currency,
	}
	if err := h.Orders.InsertOrder(xl, order); err != nil {
		failWith(c, xl, err)
		return
	}
	xl.Infof("payment order %s created for account %s", orderId, account.ID)
	succeed(c, xl, model.CreatePaymentOrderResponse{
		OrderID:  orderId,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.Gateway.KeyID(),
	})
}

// Verify 收银台回传验签。验签失败的订单标记为rejected，
// 验签通过则条件推进订单状态并升级套餐，重复回调不会重复升级。
func (h *PaymentApiHandler) Verify(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)

	args := form.VerifyPaymentForm{}
	if err := c.Bind(&args); err != nil {
		xl.Infof("Verify: invalid args in body, error %v", err)
		failBadRequest(c, xl)
		return
	}
	if err := args.Validate(); err != nil {
		failValidation(c, xl, err)
		return
	}

	order, err := h.Orders.GetOrderByOrderID(xl, args.OrderID)
	if err != nil {
		if err == mgo.ErrNotFound {
			model.NewFailResponse(*model.NewResponseErrorNotFound()).WithRequestID(xl.ReqId).Send(c)
			return
		}
		failWith(c, xl, err)
		return
	}
	if order.Candidate != account.ID {
		model.NewFailResponse(*model.NewResponseErrorNotOwner()).WithRequestID(xl.ReqId).Send(c)
		return
	}

	if !h.Gateway.VerifySignature(args.OrderID, args.PaymentID, args.Signature) {
		xl.Infof("signature verification failed for order %s", args.OrderID)
		_ = h.Orders.MarkRejected(xl, args.OrderID)
		model.NewFailResponse(*model.NewResponseErrorPaymentNotVerified()).WithRequestID(xl.ReqId).Send(c)
		return
	}

	if err := h.Orders.MarkPaid(xl, args.OrderID); err != nil {
		if err == mgo.ErrNotFound {
			// 订单已被处理过，重复回调。
			xl.Infof("order %s already processed", args.OrderID)
			model.NewFailResponse(*model.NewResponseErrorWrongState()).WithRequestID(xl.ReqId).Send(c)
			return
		}
		failWith(c, xl, err)
		return
	}
	if err := h.Plans.UpdatePlan(xl, account.ID, order.Plan); err != nil {
		xl.Errorf("order %s paid but plan update failed for account %s, error %v", args.OrderID, account.ID, err)
		failWith(c, xl, err)
		return
	}
	xl.Infof("account %s upgraded to plan %s via order %s", account.ID, order.Plan, args.OrderID)
	succeed(c, xl, model.VerifyPaymentResponse{
		Plan: string(order.Plan),
	})
}
