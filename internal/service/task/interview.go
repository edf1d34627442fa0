package task

import (
	"time"

	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
	"github.com/solutions/prep-cube/internal/service/dao"
	"github.com/solutions/prep-cube/internal/service/db"
	"github.com/solutions/prep-cube/internal/service/session"
)

// AbandonedWindow 超过该时长没有任何动作的in_progress面试视为被放弃。
const AbandonedWindow = 24 * time.Hour

// StaleStore 列出长时间无动作的面试。
type StaleStore interface {
	ListStale(xl *xlog.Logger, cutoff time.Time) ([]model.InterviewDo, error)
}

// InterviewTask 定时收尾被放弃的面试：按已作答部分结算成绩并推到completed。
// 推进仍走条件更新，与用户同时发起的complete只有一方生效。
type InterviewTask struct {
	session *session.SessionService
	store   StaleStore
}

func NewInterviewTask(sessionService *session.SessionService, store StaleStore) *InterviewTask {
	return &InterviewTask{
		session: sessionService,
		store:   store,
	}
}

// NewInterviewTaskFromConf 自建依赖，供定时任务独立于HTTP层启动。
func NewInterviewTaskFromConf(conf utils.Config) (*InterviewTask, error) {
	interviewService, err := db.NewInterviewService(*conf.Mongo, nil)
	if err != nil {
		return nil, err
	}
	aiService := cloud.NewAIService(conf)
	bankDao := dao.NewQuestionBankDaoService(conf.Mongo)
	speechService := cloud.NewSpeechService(conf)
	storageService := cloud.NewStorageService(conf)
	sessionService := session.NewSessionService(interviewService, aiService, bankDao,
		speechService, storageService, conf.Plan)
	return NewInterviewTask(sessionService, interviewService), nil
}

func (t *InterviewTask) TaskForAbandonedInterviews() {
	log.Infof("taskForAbandonedInterviews run at %s", time.Now().String())

	cutoff := time.Now().Add(-AbandonedWindow)
	interviews, err := t.store.ListStale(nil, cutoff)
	if err != nil {
		log.Errorf("TaskForAbandonedInterviews list interviews, error: %v", err)
		return
	}
	if len(interviews) == 0 {
		log.Infof("taskForAbandonedInterviews find no interviews")
		return
	}
	for _, interview := range interviews {
		log.Infof("TaskForAbandonedInterviews finalizing interview %s, last update: %s",
			interview.ID, interview.UpdateTime)
		if _, err := t.session.Finalize(nil, &interview); err != nil {
			log.Errorf("TaskForAbandonedInterviews finalize %s err, %v", interview.ID, err)
		}
	}
}
