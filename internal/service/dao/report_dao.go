package dao

import (
	"context"
	"time"

	"github.com/qiniu/x/xlog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
	dbdao "github.com/solutions/prep-cube/internal/service/db/dao"
)

type ReportDao interface {
	Insert(report *model.ReportDo) error

	Select(id string) (*model.ReportDo, error)

	SelectByInterviewId(interviewId string) (*model.ReportDo, error)

	ListByCandidate(candidate string, pgNum, pgSize int64) ([]model.ReportDo, int64, error)

	Delete(id string) error
}

type ReportDaoService struct {
	collection *mongo.Collection
	logger     *xlog.Logger
}

func NewReportDaoService(config *utils.MongoConfig) *ReportDaoService {
	logger := xlog.New("report dao service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		panic(err)
	}
	collection := client.Database(config.Database).Collection(dbdao.CollectionReport)
	return &ReportDaoService{
		collection,
		logger,
	}
}

func (r *ReportDaoService) Insert(report *model.ReportDo) error {
	if report.ID == "" {
		report.ID = primitive.NewObjectID().Hex()
	}
	report.CreateAt = time.Now()
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := r.collection.InsertOne(timeout, report)
	if err != nil {
		r.logger.Errorf("插入数据失败: %v", err)
		return err
	}
	return nil
}

func (r *ReportDaoService) Select(id string) (*model.ReportDo, error) {
	return r.selectOne(primitive.M{"_id": id})
}

// SelectByInterviewId 同一面试重复生成报告时取最新一份。
func (r *ReportDaoService) SelectByInterviewId(interviewId string) (*model.ReportDo, error) {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	opts := options.FindOne().SetSort(primitive.M{"create_at": -1})
	one := r.collection.FindOne(timeout, primitive.M{"interview_id": interviewId}, opts)
	if err := one.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		r.logger.Errorf("查询数据表失败: %v", err)
		return nil, err
	}
	result := model.ReportDo{}
	if err := one.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ReportDaoService) selectOne(filter primitive.M) (*model.ReportDo, error) {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	one := r.collection.FindOne(timeout, filter)
	if err := one.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		r.logger.Errorf("查询数据表失败: %v", err)
		return nil, err
	}
	result := model.ReportDo{}
	if err := one.Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ReportDaoService) ListByCandidate(candidate string, pgNum, pgSize int64) ([]model.ReportDo, int64, error) {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	filter := primitive.M{"candidate": candidate}
	total, err := r.collection.CountDocuments(timeout, filter)
	if err != nil {
		r.logger.Errorf("查询数据表失败: %v", err)
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(primitive.M{"create_at": -1}).
		SetSkip((pgNum - 1) * pgSize).
		SetLimit(pgSize)
	cursor, err := r.collection.Find(timeout, filter, opts)
	if err != nil {
		r.logger.Errorf("查询数据表失败: %v", err)
		return nil, 0, err
	}
	defer cursor.Close(timeout)
	reports := make([]model.ReportDo, 0, pgSize)
	if err := cursor.All(timeout, &reports); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *ReportDaoService) Delete(id string) error {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := r.collection.DeleteOne(timeout, primitive.M{"_id": id})
	if err != nil {
		r.logger.Errorf("删除数据失败: %v", err)
		return err
	}
	return nil
}
