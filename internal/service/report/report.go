package report

import (
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/protodef/errors"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
)

// ReportStore 报告元数据的持久化。查无记录时返回 (nil, nil)。
type ReportStore interface {
	Insert(report *model.ReportDo) error

	Select(id string) (*model.ReportDo, error)

	SelectByInterviewId(interviewId string) (*model.ReportDo, error)

	ListByCandidate(candidate string, pgNum, pgSize int64) ([]model.ReportDo, int64, error)
}

// Storage 上传PDF本体。
type Storage interface {
	Upload(xl *xlog.Logger, data []byte, fileKey string) (string, error)
}

// ReportService 报告按需生成：第一次请求时渲染并上传，之后直接复用。
type ReportService struct {
	builder *Builder
	store   ReportStore
	storage Storage
	xl      *xlog.Logger
}

func NewReportService(store ReportStore, storage Storage) *ReportService {
	return &ReportService{
		builder: NewBuilder(),
		store:   store,
		storage: storage,
		xl:      xlog.New("report service"),
	}
}

// GetOrCreate 获取某场面试的报告，不存在则生成。面试必须已完成。
func (s *ReportService) GetOrCreate(xl *xlog.Logger, interview *model.InterviewDo, account *model.AccountDo) (*model.ReportDo, error) {
	if xl == nil {
		xl = s.xl
	}
	if interview.Status != int(model.InterviewStatusCodeCompleted) {
		return nil, errors.NewWrongState("report is only available for completed interviews")
	}
	existing, err := s.store.SelectByInterviewId(interview.ID)
	if err != nil {
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	if existing != nil {
		return existing, nil
	}

	data, err := s.builder.Build(interview, account)
	if err != nil {
		xl.Errorf("render report for interview %s failed: %v", interview.ID, err)
		return nil, err
	}
	fileUrl, err := s.storage.Upload(xl, data, cloud.ReportFileKey(interview.ID))
	if err != nil {
		xl.Errorf("upload report for interview %s failed: %v", interview.ID, err)
		return nil, err
	}
	report := &model.ReportDo{
		InterviewID: interview.ID,
		Candidate:   interview.Candidate,
		FileUrl:     fileUrl,
		SizeByte:    len(data),
	}
	if err := s.store.Insert(report); err != nil {
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	return report, nil
}

// Get 按ID查报告，校验归属。
func (s *ReportService) Get(xl *xlog.Logger, userID, reportId string) (*model.ReportDo, error) {
	if xl == nil {
		xl = s.xl
	}
	report, err := s.store.Select(reportId)
	if err != nil {
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	if report == nil {
		return nil, &errors.ServerError{Code: errors.ServerErrorReportNotFound, Summary: "no such report"}
	}
	if report.Candidate != userID {
		return nil, errors.NewNoPermission()
	}
	return report, nil
}

// List 分页列出候选人的报告。
func (s *ReportService) List(xl *xlog.Logger, userID string, pgNum, pgSize int64) ([]model.ReportDo, int64, error) {
	if xl == nil {
		xl = s.xl
	}
	reports, total, err := s.store.ListByCandidate(userID, pgNum, pgSize)
	if err != nil {
		return nil, 0, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	return reports, total, nil
}
