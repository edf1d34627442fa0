package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/report"
	"github.com/solutions/prep-cube/internal/service/session"
)

type ReportApiHandler struct {
	Session *session.SessionService
	Report  *report.ReportService
}

func NewReportApiHandler(sessionService *session.SessionService, reportService *report.ReportService) *ReportApiHandler {
	return &ReportApiHandler{
		Session: sessionService,
		Report:  reportService,
	}
}

func newReportResponse(reportDo *model.ReportDo) *model.ReportResponse {
	return &model.ReportResponse{
		ID:          reportDo.ID,
		InterviewID: reportDo.InterviewID,
		FileUrl:     reportDo.FileUrl,
		SizeByte:    reportDo.SizeByte,
		CreateAt:    reportDo.CreateAt.Unix(),
	}
}

// GetInterviewReport 获取某场面试的报告，首次请求时生成PDF。
func (h *ReportApiHandler) GetInterviewReport(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	interviewId := c.Param("interviewId")

	interview, err := h.Session.GetInterview(xl, account.ID, interviewId)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	reportDo, err := h.Report.GetOrCreate(xl, interview, &account)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, newReportResponse(reportDo))
}

// GetReport 按报告ID获取报告元数据。
func (h *ReportApiHandler) GetReport(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	reportId := c.Param("reportId")

	reportDo, err := h.Report.Get(xl, account.ID, reportId)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, newReportResponse(reportDo))
}

// ListReports 分页列出我的报告。
func (h *ReportApiHandler) ListReports(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	pageNum, pageSize := pageInfo(c)

	reports, total, err := h.Report.List(xl, account.ID, int64(pageNum), int64(pageSize))
	if err != nil {
		failWith(c, xl, err)
		return
	}
	list := make([]interface{}, 0, len(reports))
	for index := range reports {
		list = append(list, newReportResponse(&reports[index]))
	}
	succeed(c, xl, model.ReportListResponse{
		Pagination: model.Pagination{
			Total:          int(total),
			Cnt:            len(list),
			CurrentPageNum: pageNum,
			NextPageNum:    pageNum + 1,
			PageSize:       pageSize,
			EndPage:        pageNum*pageSize >= int(total),
			List:           list,
		},
	})
}
