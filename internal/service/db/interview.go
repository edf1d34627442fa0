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

// InterviewService 面试会话的持久化。状态推进与作答追加都走条件更新：
// 更新条件带上期望的status与responseCount，并发请求只有一个能命中，
// 未命中的拿到 mgo.ErrNotFound，由上层翻译成状态/顺序错误。
type InterviewService struct {
	mongoClient   *mgo.Session
	interviewColl *mgo.Collection
	xl            *xlog.Logger
}

func NewInterviewService(conf utils.MongoConfig, xl *xlog.Logger) (*InterviewService, error) {
	if xl == nil {
		xl = xlog.New("prep-cube-interview-db")
	}
	mongoClient, err := mgo.Dial(conf.URI + "/" + conf.Database)
	if err != nil {
		xl.Errorf("failed to create mongo client, error %v", err)
		return nil, err
	}
	interviewColl := mongoClient.DB(conf.Database).C(dao.CollectionInterview)
	return &InterviewService{
		mongoClient:   mongoClient,
		interviewColl: interviewColl,
		xl:            xl,
	}, nil
}

// InsertInterview 落库新建的面试，初始为created状态。
func (c *InterviewService) InsertInterview(xl *xlog.Logger, interview *model.InterviewDo) error {
	if xl == nil {
		xl = c.xl
	}
	now := time.Now()
	interview.Status = int(model.InterviewStatusCodeCreated)
	interview.ResponseCount = 0
	interview.Responses = make([]model.ResponseDo, 0)
	interview.CreateTime = now
	interview.UpdateTime = now
	err := c.interviewColl.Insert(interview)
	if err != nil {
		xl.Errorf("failed to insert interview, error %v", err)
		return err
	}
	return nil
}

// GetInterviewByID 按ID查找面试。
func (c *InterviewService) GetInterviewByID(xl *xlog.Logger, id string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interview := model.InterviewDo{}
	err := c.interviewColl.Find(bson.M{"_id": id}).One(&interview)
	if err != nil {
		if err == mgo.ErrNotFound {
			xl.Infof("no such interview %s", id)
			return nil, mgo.ErrNotFound
		}
		xl.Errorf("failed to get interview %s, error %v", id, err)
		return nil, err
	}
	return &interview, nil
}

// ListInterviewsByPage 分页列出某个候选人的面试，按创建时间倒序。
// status 为nil时不过滤状态。
func (c *InterviewService) ListInterviewsByPage(xl *xlog.Logger, candidate string,
	status *model.InterviewStatusCode, pageNum, pageSize int) ([]model.InterviewDo, int, error) {
	if xl == nil {
		xl = c.xl
	}
	query := bson.M{"candidate": candidate}
	if status != nil {
		query["status"] = int(*status)
	}
	total, err := c.interviewColl.Find(query).Count()
	if err != nil {
		xl.Errorf("failed to count interviews, error %v", err)
		return nil, 0, err
	}
	interviews := make([]model.InterviewDo, 0)
	err = c.interviewColl.Find(query).Sort("-createTime").
		Skip((pageNum - 1) * pageSize).Limit(pageSize).All(&interviews)
	if err != nil {
		xl.Errorf("failed to list interviews, error %v", err)
		return nil, 0, err
	}
	return interviews, total, nil
}

// CountByCandidate 候选人已创建的面试总数，用于套餐配额检查。
func (c *InterviewService) CountByCandidate(xl *xlog.Logger, candidate string) (int, error) {
	if xl == nil {
		xl = c.xl
	}
	count, err := c.interviewColl.Find(bson.M{"candidate": candidate}).Count()
	if err != nil {
		xl.Errorf("failed to count interviews of %s, error %v", candidate, err)
		return 0, err
	}
	return count, nil
}

// StartInterview created -> in_progress。条件更新，已经开始或已完成时返回 mgo.ErrNotFound。
func (c *InterviewService) StartInterview(xl *xlog.Logger, id string, startedAt time.Time) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.interviewColl.Update(
		bson.M{"_id": id, "status": int(model.InterviewStatusCodeCreated)},
		bson.M{"$set": bson.M{
			"status":     int(model.InterviewStatusCodeInProgress),
			"startedAt":  startedAt,
			"updateTime": time.Now(),
		}},
	)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to start interview %s, error %v", id, err)
	}
	return err
}

// AppendResponse 追加一次作答。条件里带上responseCount，保证同一题并发提交只有一个成功，
// 且只能按顺序追加。
func (c *InterviewService) AppendResponse(xl *xlog.Logger, id string, questionIndex int, response model.ResponseDo) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.interviewColl.Update(
		bson.M{
			"_id":           id,
			"status":        int(model.InterviewStatusCodeInProgress),
			"responseCount": questionIndex,
		},
		bson.M{
			"$push": bson.M{"responses": response},
			"$inc":  bson.M{"responseCount": 1},
			"$set":  bson.M{"updateTime": time.Now()},
		},
	)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to append response to interview %s, error %v", id, err)
	}
	return err
}

// CompleteInterview in_progress -> completed，写入最终成绩与综合分析。
func (c *InterviewService) CompleteInterview(xl *xlog.Logger, id string, overallScore, durationSecond int,
	analysis *model.AnalysisDo, completedAt time.Time) error {
	if xl == nil {
		xl = c.xl
	}
	err := c.interviewColl.Update(
		bson.M{"_id": id, "status": int(model.InterviewStatusCodeInProgress)},
		bson.M{"$set": bson.M{
			"status":       int(model.InterviewStatusCodeCompleted),
			"overallScore": overallScore,
			"duration":     durationSecond,
			"aiAnalysis":   analysis,
			"completedAt":  completedAt,
			"updateTime":   time.Now(),
		}},
	)
	if err != nil && err != mgo.ErrNotFound {
		xl.Errorf("failed to complete interview %s, error %v", id, err)
	}
	return err
}

// ListStale 列出updateTime早于cutoff、仍处于in_progress的面试，供后台任务收尾。
func (c *InterviewService) ListStale(xl *xlog.Logger, cutoff time.Time) ([]model.InterviewDo, error) {
	if xl == nil {
		xl = c.xl
	}
	interviews := make([]model.InterviewDo, 0)
	err := c.interviewColl.Find(bson.M{
		"status":     int(model.InterviewStatusCodeInProgress),
		"updateTime": bson.M{"$lt": cutoff},
	}).All(&interviews)
	if err != nil {
		xl.Errorf("failed to list stale interviews, error %v", err)
		return nil, err
	}
	return interviews, nil
}
