package session

import (
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/errors"
	"github.com/solutions/prep-cube/internal/protodef/form"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
)

// 面试会话编排：状态机推进、AI协作方的调度与降级。
// 状态机 created -> in_progress -> completed 只能单向走，
// 所有推进都依赖存储层的条件更新，这里负责把未命中翻译成业务错误。

// InterviewStore 面试持久化。条件不满足时返回 mgo.ErrNotFound。
type InterviewStore interface {
	InsertInterview(xl *xlog.Logger, interview *model.InterviewDo) error

	GetInterviewByID(xl *xlog.Logger, id string) (*model.InterviewDo, error)

	ListInterviewsByPage(xl *xlog.Logger, candidate string, status *model.InterviewStatusCode,
		pageNum, pageSize int) ([]model.InterviewDo, int, error)

	CountByCandidate(xl *xlog.Logger, candidate string) (int, error)

	StartInterview(xl *xlog.Logger, id string, startedAt time.Time) error

	AppendResponse(xl *xlog.Logger, id string, questionIndex int, response model.ResponseDo) error

	CompleteInterview(xl *xlog.Logger, id string, overallScore, durationSecond int,
		analysis *model.AnalysisDo, completedAt time.Time) error
}

// Intelligence AI协作方。评估与综合分析自带兜底，永不失败。
type Intelligence interface {
	GenerateQuestions(xl *xlog.Logger, position, roleDescription string, difficulty model.QuestionDifficulty,
		count int, focusAreas []string, resume *model.ResumeAnalysisDo) ([]model.QuestionDo, error)

	AnalyzeResume(xl *xlog.Logger, resumeText string) (*model.ResumeAnalysisDo, error)

	AnalyzeResumeFile(xl *xlog.Logger, resumeFile []byte) (*model.ResumeAnalysisDo, error)

	EvaluateAnswer(xl *xlog.Logger, interview *model.InterviewDo, question model.QuestionDo, answer string) *cloud.AnswerEvaluation

	SuggestFollowUps(xl *xlog.Logger, question model.QuestionDo, answer string) []string

	AnalyzeInterview(xl *xlog.Logger, interview *model.InterviewDo) *model.AnalysisDo
}

// QuestionBank AI出题失败时的兜底题源。
type QuestionBank interface {
	Sample(position string, difficulty model.QuestionDifficulty, count int) ([]model.BankQuestionDo, error)
}

// Speech 语音合成与转写。
type Speech interface {
	Synthesize(xl *xlog.Logger, text, voice string) ([]byte, error)

	Transcribe(xl *xlog.Logger, audio []byte, mimeType string) (string, error)
}

// Storage 对象存储。
type Storage interface {
	Upload(xl *xlog.Logger, data []byte, fileKey string) (string, error)
}

type SessionService struct {
	store   InterviewStore
	ai      Intelligence
	bank    QuestionBank
	speech  Speech
	storage Storage
	plan    utils.PlanConfig
	xl      *xlog.Logger
}

func NewSessionService(store InterviewStore, ai Intelligence, bank QuestionBank,
	speech Speech, storage Storage, plan utils.PlanConfig) *SessionService {
	return &SessionService{
		store:   store,
		ai:      ai,
		bank:    bank,
		speech:  speech,
		storage: storage,
		plan:    plan,
		xl:      xlog.New("session service"),
	}
}

// CreateInterview 创建面试：配额检查、简历分析、出题、可选的题目朗读，最后落库。
// 带简历时分析失败直接报错，不落库；朗读是软能力，失败只降级。
// 简历分析和岗位描述都齐时才让AI出题，否则直接抽题库；AI失败也落回题库，
// 两边都拿不到题才算硬失败。
func (s *SessionService) CreateInterview(xl *xlog.Logger, account *model.AccountDo,
	createForm *form.InterviewCreateForm, resumeText string, resumeFile []byte) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	if account.Plan == model.PlanCodeFree {
		count, err := s.store.CountByCandidate(xl, account.ID)
		if err != nil {
			return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
		}
		if count >= s.plan.FreeInterviewQuota {
			return nil, errors.NewQuotaExceeded()
		}
	}

	interviewId := utils.GenerateID()

	// 有简历就必须有分析，原文和原件二选一；分析失败直接报错。
	var resumeAnalysis *model.ResumeAnalysisDo
	switch {
	case resumeText != "":
		analysis, err := s.ai.AnalyzeResume(xl, resumeText)
		if err != nil {
			xl.Errorf("resume analysis failed for interview %s: %v", interviewId, err)
			return nil, &errors.ServerError{Code: errors.ServerErrorResumeAnalyzeFail, Summary: "resume analysis failed"}
		}
		resumeAnalysis = analysis
	case len(resumeFile) > 0:
		analysis, err := s.ai.AnalyzeResumeFile(xl, resumeFile)
		if err != nil {
			xl.Errorf("resume file analysis failed for interview %s: %v", interviewId, err)
			return nil, &errors.ServerError{Code: errors.ServerErrorResumeAnalyzeFail, Summary: "resume analysis failed"}
		}
		resumeAnalysis = analysis
	}
	if len(resumeFile) > 0 {
		// 原件归档失败只降级，分析结果已经在手。
		url, err := s.storage.Upload(xl, resumeFile, cloud.ResumeFileKey(interviewId))
		if err != nil {
			xl.Errorf("resume upload failed for interview %s: %v", interviewId, err)
		} else {
			resumeAnalysis.ResumeUrl = url
		}
	}

	difficulty := model.QuestionDifficulty(createForm.Difficulty)
	var questions []model.QuestionDo
	if resumeAnalysis != nil && createForm.RoleDescription != "" {
		generated, err := s.ai.GenerateQuestions(xl, createForm.Position, createForm.RoleDescription,
			difficulty, createForm.QuestionsCount, createForm.FocusAreas, resumeAnalysis)
		if err != nil {
			xl.Errorf("ai question generation failed, falling back to bank: %v", err)
		} else {
			questions = generated
		}
	}
	if len(questions) == 0 {
		drawn, err := s.drawFromBank(xl, createForm.Position, difficulty, createForm.QuestionsCount)
		if err != nil {
			return nil, &errors.ServerError{Code: errors.ServerErrorAIGenerateFail, Summary: "question generation failed"}
		}
		questions = drawn
	}

	if createForm.WithAudio {
		s.attachAudio(xl, interviewId, createForm.Voice, questions)
	}

	interview := &model.InterviewDo{
		ID:              interviewId,
		Title:           createForm.Title,
		Candidate:       account.ID,
		Position:        createForm.Position,
		RoleDescription: createForm.RoleDescription,
		Difficulty:      difficulty,
		FocusAreas:      createForm.FocusAreas,
		Questions:       questions,
		ResumeAnalysis:  resumeAnalysis,
	}
	if err := s.store.InsertInterview(xl, interview); err != nil {
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	return interview, nil
}

func (s *SessionService) drawFromBank(xl *xlog.Logger, position string,
	difficulty model.QuestionDifficulty, count int) ([]model.QuestionDo, error) {
	bankQuestions, err := s.bank.Sample(position, difficulty, count)
	if err != nil {
		xl.Errorf("question bank sample failed: %v", err)
		return nil, err
	}
	if len(bankQuestions) == 0 {
		return nil, mgo.ErrNotFound
	}
	questions := make([]model.QuestionDo, 0, len(bankQuestions))
	for index, bankQuestion := range bankQuestions {
		questions = append(questions, model.QuestionDo{
			Question:         bankQuestion.Question,
			Category:         bankQuestion.Category,
			Difficulty:       bankQuestion.Difficulty,
			Type:             bankQuestion.Type,
			ExpectedAnswer:   bankQuestion.ExpectedAnswer,
			Order:            index + 1,
			TimeBudgetSecond: cloud.DefaultTimeBudgetSecond,
		})
	}
	return questions, nil
}

// attachAudio 给题目生成朗读音频并上传。任何一题失败都只记日志。
func (s *SessionService) attachAudio(xl *xlog.Logger, interviewId, voice string, questions []model.QuestionDo) {
	for index := range questions {
		audio, err := s.speech.Synthesize(xl, questions[index].Question, voice)
		if err != nil {
			xl.Errorf("tts for question %d failed: %v", questions[index].Order, err)
			continue
		}
		url, err := s.storage.Upload(xl, audio, cloud.AudioFileKey(interviewId, questions[index].Order))
		if err != nil {
			xl.Errorf("audio upload for question %d failed: %v", questions[index].Order, err)
			continue
		}
		questions[index].AudioUrl = url
	}
}

// GetInterview 查询面试详情，校验归属。
func (s *SessionService) GetInterview(xl *xlog.Logger, userID, interviewId string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.store.GetInterviewByID(xl, interviewId)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, errors.NewInterviewNotFound()
		}
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	if interview.Candidate != userID {
		return nil, errors.NewNoPermission()
	}
	return interview, nil
}

// ListInterviews 分页列出候选人的面试。
func (s *SessionService) ListInterviews(xl *xlog.Logger, userID string, status *model.InterviewStatusCode,
	pageNum, pageSize int) ([]model.InterviewDo, int, error) {
	if xl == nil {
		xl = s.xl
	}
	interviews, total, err := s.store.ListInterviewsByPage(xl, userID, status, pageNum, pageSize)
	if err != nil {
		return nil, 0, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	return interviews, total, nil
}

// StartInterview created -> in_progress。
func (s *SessionService) StartInterview(xl *xlog.Logger, userID, interviewId string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.GetInterview(xl, userID, interviewId)
	if err != nil {
		return nil, err
	}
	if interview.Status != int(model.InterviewStatusCodeCreated) {
		return nil, errors.NewWrongState("interview already " + string(model.InterviewStatusCode(interview.Status).Name()))
	}
	startedAt := time.Now()
	if err := s.store.StartInterview(xl, interviewId, startedAt); err != nil {
		if err == mgo.ErrNotFound {
			// 条件未命中：并发请求抢先推进了状态。
			return nil, errors.NewWrongState("interview state changed concurrently")
		}
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	interview.Status = int(model.InterviewStatusCodeInProgress)
	interview.StartedAt = &startedAt
	return interview, nil
}

// AnswerResult 一次作答的处理结果。
type AnswerResult struct {
	Evaluation *cloud.AnswerEvaluation
	FollowUps  []string
	// NextQuestion 为nil表示已经是最后一题。
	NextQuestion   *model.QuestionDo
	IsLastQuestion bool
	AnsweredCount  int
	TotalCount     int
}

// SubmitAnswer 提交一次作答：顺序检查、转写、评估、条件追加。
// 文本作答优先；只有语音时先转写，两者都拿不到文本则拒绝。
func (s *SessionService) SubmitAnswer(xl *xlog.Logger, userID, interviewId string,
	answerForm *form.SubmitAnswerForm, audio []byte, audioMime string) (*AnswerResult, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.GetInterview(xl, userID, interviewId)
	if err != nil {
		return nil, err
	}
	if interview.Status != int(model.InterviewStatusCodeInProgress) {
		return nil, errors.NewWrongState("interview is " + string(model.InterviewStatusCode(interview.Status).Name()))
	}
	expected := interview.NextQuestionIndex()
	if answerForm.QuestionIndex != expected {
		return nil, errors.NewAnswerOutOfOrder(answerForm.QuestionIndex, expected)
	}
	if expected >= len(interview.Questions) {
		return nil, errors.NewWrongState("all questions already answered")
	}
	question := interview.Questions[expected]

	answer := answerForm.Answer
	if answer == "" && len(audio) > 0 {
		answer, err = s.speech.Transcribe(xl, audio, audioMime)
		if err != nil {
			xl.Errorf("transcribe answer for interview %s failed: %v", interviewId, err)
			return nil, &errors.ServerError{Code: errors.ServerErrorTranscribeFail, Summary: "failed to transcribe answer audio"}
		}
	}
	if answer == "" {
		return nil, errors.NewAnswerMissing()
	}

	audioUrl := ""
	if len(audio) > 0 {
		// 作答录音归档，失败只记日志。
		url, err := s.storage.Upload(xl, audio, cloud.AnswerFileKey(interviewId, expected))
		if err != nil {
			xl.Errorf("answer audio upload for question %d failed: %v", expected, err)
		} else {
			audioUrl = url
		}
	}

	evaluation := s.ai.EvaluateAnswer(xl, interview, question, answer)
	response := model.ResponseDo{
		QuestionIndex:    expected,
		Answer:           answer,
		AudioUrl:         audioUrl,
		TimeTakenSecond:  answerForm.TimeTakenSecond,
		Score:            evaluation.Score,
		Accuracy:         evaluation.Accuracy,
		Clarity:          evaluation.Clarity,
		Relevance:        evaluation.Relevance,
		Feedback:         evaluation.Feedback,
		DetailedAnalysis: evaluation.DetailedAnalysis,
		EvaluationParsed: evaluation.Parsed,
		SubmittedAt:      time.Now(),
	}
	if err := s.store.AppendResponse(xl, interviewId, expected, response); err != nil {
		if err == mgo.ErrNotFound {
			return s.explainAppendMiss(xl, interviewId, expected)
		}
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}

	followUps := s.ai.SuggestFollowUps(xl, question, answer)

	result := &AnswerResult{
		Evaluation:    evaluation,
		FollowUps:     followUps,
		AnsweredCount: expected + 1,
		TotalCount:    len(interview.Questions),
	}
	if expected+1 < len(interview.Questions) {
		next := interview.Questions[expected+1]
		result.NextQuestion = &next
	} else {
		result.IsLastQuestion = true
	}
	return result, nil
}

// explainAppendMiss 追加条件未命中时重查一次，给出确切的业务错误。
func (s *SessionService) explainAppendMiss(xl *xlog.Logger, interviewId string, submitted int) (*AnswerResult, error) {
	interview, err := s.store.GetInterviewByID(xl, interviewId)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, errors.NewInterviewNotFound()
		}
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	if interview.Status != int(model.InterviewStatusCodeInProgress) {
		return nil, errors.NewWrongState("interview is " + string(model.InterviewStatusCode(interview.Status).Name()))
	}
	return nil, errors.NewAnswerOutOfOrder(submitted, interview.NextQuestionIndex())
}

// CompleteInterview in_progress -> completed。允许未答完所有题提前结束，
// 成绩只按已作答的题目计算。
func (s *SessionService) CompleteInterview(xl *xlog.Logger, userID, interviewId string) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	interview, err := s.GetInterview(xl, userID, interviewId)
	if err != nil {
		return nil, err
	}
	if interview.Status != int(model.InterviewStatusCodeInProgress) {
		return nil, errors.NewWrongState("interview is " + string(model.InterviewStatusCode(interview.Status).Name()))
	}
	return s.finalize(xl, interview)
}

// Finalize 不做归属校验的收尾入口，供后台任务清理超时会话使用。
func (s *SessionService) Finalize(xl *xlog.Logger, interview *model.InterviewDo) (*model.InterviewDo, error) {
	if xl == nil {
		xl = s.xl
	}
	return s.finalize(xl, interview)
}

func (s *SessionService) finalize(xl *xlog.Logger, interview *model.InterviewDo) (*model.InterviewDo, error) {
	scores := make([]int, 0, len(interview.Responses))
	durationSecond := 0
	for _, response := range interview.Responses {
		scores = append(scores, response.Score)
		durationSecond += response.TimeTakenSecond
	}
	overallScore := utils.RoundMean(scores)
	analysis := s.ai.AnalyzeInterview(xl, interview)
	completedAt := time.Now()

	if err := s.store.CompleteInterview(xl, interview.ID, overallScore, durationSecond, analysis, completedAt); err != nil {
		if err == mgo.ErrNotFound {
			return nil, errors.NewWrongState("interview state changed concurrently")
		}
		return nil, &errors.ServerError{Code: errors.ServerErrorMongoOpFail, Summary: err.Error()}
	}
	interview.Status = int(model.InterviewStatusCodeCompleted)
	interview.OverallScore = overallScore
	interview.DurationSecond = durationSecond
	interview.AiAnalysis = analysis
	interview.CompletedAt = &completedAt
	return interview, nil
}
