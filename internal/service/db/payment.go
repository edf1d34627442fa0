package db

import (
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/db/dao"
)

// PaymentOrderService 支付订单的持久化。订单状态也走条件更新，
// 同一订单的重复验签回调只有一次能把状态从created推到paid。
type PaymentOrderService struct {
	mongoClient *mgo.Session
	orderColl   *mgo.Collection
	xl          *xlog.Logger
}

func NewPaymentOrderService(conf utils.MongoConfig, xl *xlog.Logger) (*PaymentOrderService, error) {
	if xl == nil {
		xl = xlog.New("prep-cube-payment-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	orderColl := mongoClient.DB(conf.Database).C(dao.CollectionPaymentOrder)
	return &PaymentOrderService{
		mongoClient: mongoClient,
		orderColl:   orderColl,
		xl:          xl,
	}, nil
}

// InsertOrder 落库新订单。
func (c *PaymentOrderService) InsertOrder(xl *xlog.Logger, order *model.PaymentOrderDo) error {
	if xl == nil {
		xl = c.xl
	}
	order.Status = model.PaymentOrderStatusCreated
	order.CreateAt = time.Now()
	err := c.orderColl.Insert(order)
	if err != nil {
		xl.Errorf("failed to insert payment order, error %v", err)
		return err
	}
	return nil
}

// GetOrderByOrderID 按支付网关订单号查找。
func (c *PaymentOrderService) GetOrderByOrderID(xl *xlog.Logger, orderId string) (*model.PaymentOrderDo, error) {
	if xl == nil {
		xl = c.xl
	}
	order := model.PaymentOrderDo{}
	err := c.orderColl.Find(bson.M{"orderId": orderId}).One(&order)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such payment order %s", orderId)
			return nil, mgo.ErrNotFound
		}
		xl.Errorf("failed to get payment order %s, error %v", orderId, err)
		return nil, err
	}
	return &order, nil
}

// MarkPaid created -> paid，重复回调返回 mgo.ErrNotFound。
func (c *PaymentOrderService) MarkPaid(xl *xlog.Logger, orderId string) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	err := c.orderColl.Update(
		bson.M{"orderId": orderId, "status": model.PaymentOrderStatusCreated},
		bson.M{"$set": bson.M{"status": model.PaymentOrderStatusPaid, "paidAt": now}},
	)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to mark order %s paid, error %v", orderId, err)
	}
	return err
}

// MarkRejected 验签失败时标记订单。
func (c *PaymentOrderService) MarkRejected(xl *xlog.Logger, orderId string) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.orderColl.Update(
		bson.M{"orderId": orderId, "status": model.PaymentOrderStatusCreated},
		bson.M{"$set": bson.M{"status": model.PaymentOrderStatusRejected}},
	)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to mark order %s rejected, error %v", orderId, err)
	}
	return err
}
