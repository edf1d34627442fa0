package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/protodef/form"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
	"github.com/solutions/prep-cube/internal/service/session"
)

type InterviewApiHandler struct {
	Session *session.SessionService
	Mail    *cloud.MailService
}

func NewInterviewApiHandler(sessionService *session.SessionService, mail *cloud.MailService) *InterviewApiHandler {
	return &InterviewApiHandler{
		Session: sessionService,
		Mail:    mail,
	}
}

// progressPercent 作答进度百分比，四舍五入。
func progressPercent(answered, total int) int {
	if total <= 0 {
		return 0
	}
	return (answered*100 + total/2) / total
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	fileContent, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer fileContent.Close()
	return io.ReadAll(fileContent)
}

func newInterviewResponse(interview *model.InterviewDo) *model.InterviewResponse {
	questions := make([]model.QuestionResponse, 0, len(interview.Questions))
	for _, question := range interview.Questions {
		questions = append(questions, *model.NewQuestionResponse(question))
	}
	resp := &model.InterviewResponse{
		ID:             interview.ID,
		Title:          interview.Title,
		Position:       interview.Position,
		Difficulty:     string(interview.Difficulty),
		Status:         string(model.InterviewStatusCode(interview.Status).Name()),
		StatusCode:     interview.Status,
		Questions:      questions,
		AnsweredCount:  interview.ResponseCount,
		OverallScore:   interview.OverallScore,
		DurationSecond: interview.DurationSecond,
		HasResume:      interview.ResumeAnalysis != nil,
		CreateTime:     interview.CreateTime.Unix(),
	}
	if interview.AiAnalysis != nil {
		analysis := newAnalysisResponse(interview.AiAnalysis)
		resp.Analysis = &analysis
	}
	if interview.StartedAt != nil {
		resp.StartedAt = interview.StartedAt.Unix()
	}
	if interview.CompletedAt != nil {
		resp.CompletedAt = interview.CompletedAt.Unix()
	}
	return resp
}

func newAnalysisResponse(analysis *model.AnalysisDo) model.AnalysisResponse {
	return model.AnalysisResponse{
		Communication:    analysis.Communication,
		Technical:        analysis.Technical,
		ProblemSolving:   analysis.ProblemSolving,
		Confidence:       analysis.Confidence,
		Overall:          analysis.Overall,
		Strengths:        analysis.Strengths,
		Improvements:     analysis.Improvements,
		DetailedFeedback: analysis.DetailedFeedback,
	}
}

// CreateInterview 创建面试。multipart表单，可带resumeText字段或resumeFile文件。
func (h *InterviewApiHandler) CreateInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)

	args := form.InterviewCreateForm{}
	if err := c.Bind(&args); err != nil {
		xl.Infof("CreateInterview: invalid args in body, error %v", err)
		failBadRequest(c, xl)
		return
	}
	args.FillDefault()
	if err := args.Validate(); err != nil {
		failValidation(c, xl, err)
		return
	}

	resumeText := c.PostForm("resumeText")
	var resumeFile []byte
	if fileHeader, err := c.FormFile("resumeFile"); err == nil {
		data, err := readMultipartFile(fileHeader)
		if err != nil {
			xl.Errorf("read resume file failed, error %v", err)
			failBadRequest(c, xl)
			return
		}
		resumeFile = data
	}

	interview, err := h.Session.CreateInterview(xl, &account, &args, resumeText, resumeFile)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	xl.Infof("interview %s created for account %s", interview.ID, account.ID)
	succeed(c, xl, model.UpsertInterviewResponse{
		ID:             interview.ID,
		Title:          interview.Title,
		Position:       interview.Position,
		Status:         string(model.InterviewStatusCode(interview.Status).Name()),
		QuestionsCount: len(interview.Questions),
		HasResume:      interview.ResumeAnalysis != nil,
	})
}

// ListInterviews 分页列出我的面试，支持?status=过滤。
func (h *InterviewApiHandler) ListInterviews(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	pageNum, pageSize := pageInfo(c)

	var status *model.InterviewStatusCode
	if statusArg := c.Query("status"); statusArg != "" {
		code, ok := model.ParseInterviewStatus(statusArg)
		if !ok {
			failBadRequest(c, xl)
			return
		}
		status = &code
	}

	interviews, total, err := h.Session.ListInterviews(xl, account.ID, status, pageNum, pageSize)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	list := make([]interface{}, 0, len(interviews))
	for index := range interviews {
		list = append(list, newInterviewResponse(&interviews[index]))
	}
	succeed(c, xl, model.InterviewListResponse{
		Pagination: model.Pagination{
			Total:          total,
			Cnt:            len(list),
			CurrentPageNum: pageNum,
			NextPageNum:    pageNum + 1,
			PageSize:       pageSize,
			EndPage:        pageNum*pageSize >= total,
			List:           list,
		},
	})
}

// GetInterview 面试详情。
func (h *InterviewApiHandler) GetInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	interviewId := c.Param("interviewId")

	interview, err := h.Session.GetInterview(xl, account.ID, interviewId)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	succeed(c, xl, newInterviewResponse(interview))
}

// StartInterview 开始面试，下发第一题。
func (h *InterviewApiHandler) StartInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	interviewId := c.Param("interviewId")

	interview, err := h.Session.StartInterview(xl, account.ID, interviewId)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	resp := model.StartInterviewResponse{
		ID:         interview.ID,
		Status:     string(model.InterviewStatusCode(interview.Status).Name()),
		TotalCount: len(interview.Questions),
	}
	if interview.StartedAt != nil {
		resp.StartedAt = interview.StartedAt.Unix()
	}
	if len(interview.Questions) > 0 {
		resp.FirstQuestion = model.NewQuestionResponse(interview.Questions[0])
	}
	succeed(c, xl, resp)
}

// SubmitAnswer 提交作答。multipart表单，文本在answer字段，语音在audioFile文件。
func (h *InterviewApiHandler) SubmitAnswer(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	interviewId := c.Param("interviewId")

	args := form.SubmitAnswerForm{}
	if err := c.Bind(&args); err != nil {
		xl.Infof("SubmitAnswer: invalid args in body, error %v", err)
		failBadRequest(c, xl)
		return
	}
	if err := args.Validate(); err != nil {
		failValidation(c, xl, err)
		return
	}

	var audio []byte
	audioMime := ""
	if fileHeader, err := c.FormFile("audioFile"); err == nil {
		data, err := readMultipartFile(fileHeader)
		if err != nil {
			xl.Errorf("read answer audio failed, error %v", err)
			failBadRequest(c, xl)
			return
		}
		audio = data
		audioMime = fileHeader.Header.Get("Content-Type")
	}

	result, err := h.Session.SubmitAnswer(xl, account.ID, interviewId, &args, audio, audioMime)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	resp := model.SubmitAnswerResponse{
		Evaluation: model.EvaluationResponse{
			Score:            result.Evaluation.Score,
			Accuracy:         result.Evaluation.Accuracy,
			Clarity:          result.Evaluation.Clarity,
			Relevance:        result.Evaluation.Relevance,
			Feedback:         result.Evaluation.Feedback,
			DetailedAnalysis: result.Evaluation.DetailedAnalysis,
		},
		FollowUpQuestions: result.FollowUps,
		IsLastQuestion:    result.IsLastQuestion,
		Progress:          progressPercent(result.AnsweredCount, result.TotalCount),
	}
	if result.NextQuestion != nil {
		resp.NextQuestion = model.NewQuestionResponse(*result.NextQuestion)
	}
	succeed(c, xl, resp)
}

// CompleteInterview 结束面试并结算，异步发送通知邮件。
func (h *InterviewApiHandler) CompleteInterview(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	account := currentUser(c)
	interviewId := c.Param("interviewId")

	interview, err := h.Session.CompleteInterview(xl, account.ID, interviewId)
	if err != nil {
		failWith(c, xl, err)
		return
	}
	// 邮件不阻塞响应。
	go h.Mail.SendInterviewCompleted(nil, &account, interview)

	resp := model.CompleteInterviewResponse{
		ID:             interview.ID,
		Status:         string(model.InterviewStatusCode(interview.Status).Name()),
		OverallScore:   interview.OverallScore,
		DurationSecond: interview.DurationSecond,
		AnsweredCount:  len(interview.Responses),
		QuestionsCount: len(interview.Questions),
	}
	if interview.AiAnalysis != nil {
		resp.Analysis = newAnalysisResponse(interview.AiAnalysis)
	}
	succeed(c, xl, resp)
}
