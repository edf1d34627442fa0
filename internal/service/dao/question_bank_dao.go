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

// 静态题库。AI出题失败时从这里随机抽题兜底。

type QuestionBankDao interface {
	Insert(question *model.BankQuestionDo) error

	Sample(position string, difficulty model.QuestionDifficulty, count int) ([]model.BankQuestionDo, error)

	ListAll(pgNum, pgSize int64) ([]model.BankQuestionDo, int64, error)

	Delete(id string) error
}

type QuestionBankDaoService struct {
	collection *mongo.Collection
	logger     *xlog.Logger
}

func NewQuestionBankDaoService(config *utils.MongoConfig) *QuestionBankDaoService {
	logger := xlog.New("question bank dao service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		panic(err)
	}
	collection := client.Database(config.Database).Collection(dbdao.CollectionQuestionBank)
	return &QuestionBankDaoService{
		collection,
		logger,
	}
}

func (q *QuestionBankDaoService) Insert(question *model.BankQuestionDo) error {
	question.ID = primitive.NewObjectID().Hex()
	question.CreateTime = time.Now()
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := q.collection.InsertOne(timeout, question)
	if err != nil {
		q.logger.Errorf("插入数据失败: %v", err)
		return err
	}
	return nil
}

// Sample 按难度随机抽count道题。同难度的题不够时放宽难度条件再抽一次。
func (q *QuestionBankDaoService) Sample(position string, difficulty model.QuestionDifficulty, count int) ([]model.BankQuestionDo, error) {
	questions, err := q.sample(primitive.M{"difficulty": difficulty}, count)
	if err != nil {
		return nil, err
	}
	if len(questions) < count {
		q.logger.Infof("only %d questions of difficulty %s, relaxing filter", len(questions), difficulty)
		questions, err = q.sample(primitive.M{}, count)
		if err != nil {
			return nil, err
		}
	}
	return questions, nil
}

func (q *QuestionBankDaoService) sample(match primitive.M, count int) ([]model.BankQuestionDo, error) {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	pipeline := []primitive.M{
		{"$match": match},
		{"$sample": primitive.M{"size": count}},
	}
	cursor, err := q.collection.Aggregate(timeout, pipeline)
	if err != nil {
		q.logger.Errorf("题库抽样失败: %v", err)
		return nil, err
	}
	defer cursor.Close(timeout)
	questions := make([]model.BankQuestionDo, 0, count)
	if err := cursor.All(timeout, &questions); err != nil {
		q.logger.Errorf("题库抽样解码失败: %v", err)
		return nil, err
	}
	return questions, nil
}

func (q *QuestionBankDaoService) ListAll(pgNum, pgSize int64) ([]model.BankQuestionDo, int64, error) {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	total, err := q.collection.CountDocuments(timeout, primitive.M{})
	if err != nil {
		q.logger.Errorf("查询数据表失败: %v", err)
		return nil, 0, err
	}
	opts := options.Find().
		SetSort(primitive.M{"create_time": -1}).
		SetSkip((pgNum - 1) * pgSize).
		SetLimit(pgSize)
	cursor, err := q.collection.Find(timeout, primitive.M{}, opts)
	if err != nil {
		q.logger.Errorf("查询数据表失败: %v", err)
		return nil, 0, err
	}
	defer cursor.Close(timeout)
	questions := make([]model.BankQuestionDo, 0, pgSize)
	if err := cursor.All(timeout, &questions); err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

func (q *QuestionBankDaoService) Delete(id string) error {
	timeout, cancelFunc := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelFunc()
	_, err := q.collection.DeleteOne(timeout, primitive.M{"_id": id})
	if err != nil {
		q.logger.Errorf("删除数据失败: %v", err)
		return err
	}
	return nil
}
