package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/qiniu/x/xlog"
	"gopkg.in/mgo.v2"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/errors"
	"github.com/solutions/prep-cube/internal/protodef/form"
	"github.com/solutions/prep-cube/internal/protodef/model"
	"github.com/solutions/prep-cube/internal/service/cloud"
)

// fakeStore 内存版存储，复刻条件更新的语义。
type fakeStore struct {
	mu         sync.Mutex
	interviews map[string]*model.InterviewDo
}

func newFakeStore() *fakeStore {
	return &fakeStore{interviews: make(map[string]*model.InterviewDo)}
}

func (f *fakeStore) InsertInterview(xl *xlog.Logger, interview *model.InterviewDo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	interview.Status = int(model.InterviewStatusCodeCreated)
	interview.ResponseCount = 0
	interview.Responses = make([]model.ResponseDo, 0)
	interview.CreateTime = time.Now()
	interview.UpdateTime = time.Now()
	copied := *interview
	f.interviews[interview.ID] = &copied
	return nil
}

func (f *fakeStore) GetInterviewByID(xl *xlog.Logger, id string) (*model.InterviewDo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	interview, ok := f.interviews[id]
	if !ok {
		return nil, mgo.ErrNotFound
	}
	copied := *interview
	return &copied, nil
}

func (f *fakeStore) ListInterviewsByPage(xl *xlog.Logger, candidate string, status *model.InterviewStatusCode,
	pageNum, pageSize int) ([]model.InterviewDo, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]model.InterviewDo, 0)
	for _, interview := range f.interviews {
		if interview.Candidate != candidate {
			continue
		}
		if status != nil && interview.Status != int(*status) {
			continue
		}
		result = append(result, *interview)
	}
	return result, len(result), nil
}

func (f *fakeStore) CountByCandidate(xl *xlog.Logger, candidate string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, interview := range f.interviews {
		if interview.Candidate == candidate {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) StartInterview(xl *xlog.Logger, id string, startedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	interview, ok := f.interviews[id]
	if !ok || interview.Status != int(model.InterviewStatusCodeCreated) {
		return mgo.ErrNotFound
	}
	interview.Status = int(model.InterviewStatusCodeInProgress)
	interview.StartedAt = &startedAt
	interview.UpdateTime = time.Now()
	return nil
}

func (f *fakeStore) AppendResponse(xl *xlog.Logger, id string, questionIndex int, response model.ResponseDo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	interview, ok := f.interviews[id]
	if !ok || interview.Status != int(model.InterviewStatusCodeInProgress) ||
		interview.ResponseCount != questionIndex {
		return mgo.ErrNotFound
	}
	interview.Responses = append(interview.Responses, response)
	interview.ResponseCount++
	interview.UpdateTime = time.Now()
	return nil
}

func (f *fakeStore) CompleteInterview(xl *xlog.Logger, id string, overallScore, durationSecond int,
	analysis *model.AnalysisDo, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	interview, ok := f.interviews[id]
	if !ok || interview.Status != int(model.InterviewStatusCodeInProgress) {
		return mgo.ErrNotFound
	}
	interview.Status = int(model.InterviewStatusCodeCompleted)
	interview.OverallScore = overallScore
	interview.DurationSecond = durationSecond
	interview.AiAnalysis = analysis
	interview.CompletedAt = &completedAt
	interview.UpdateTime = time.Now()
	return nil
}

// fakeAI 可配置失败的AI协作方，降级行为与真实实现一致。
type fakeAI struct {
	failGenerate bool
	failResume   bool
	failEvaluate bool
	failAnalyze  bool
	score        int

	// 记录评估时收到的上下文。
	evalRole   string
	evalResume *model.ResumeAnalysisDo
}

func (f *fakeAI) GenerateQuestions(xl *xlog.Logger, position, roleDescription string, difficulty model.QuestionDifficulty,
	count int, focusAreas []string, resume *model.ResumeAnalysisDo) ([]model.QuestionDo, error) {
	if f.failGenerate {
		return nil, fmt.Errorf("ai unavailable")
	}
	questions := make([]model.QuestionDo, 0, count)
	for order := 1; order <= count; order++ {
		questions = append(questions, model.QuestionDo{
			Question:         fmt.Sprintf("question %d for %s", order, position),
			Category:         "general",
			Difficulty:       difficulty,
			Type:             "technical",
			ExpectedAnswer:   "an outline",
			Order:            order,
			TimeBudgetSecond: 120,
		})
	}
	return questions, nil
}

func (f *fakeAI) AnalyzeResume(xl *xlog.Logger, resumeText string) (*model.ResumeAnalysisDo, error) {
	if f.failResume {
		return nil, fmt.Errorf("ai unavailable")
	}
	return &model.ResumeAnalysisDo{
		Skills:  []string{"go", "mongodb"},
		Summary: "experienced engineer",
	}, nil
}

func (f *fakeAI) AnalyzeResumeFile(xl *xlog.Logger, resumeFile []byte) (*model.ResumeAnalysisDo, error) {
	if f.failResume {
		return nil, fmt.Errorf("ai unavailable")
	}
	return &model.ResumeAnalysisDo{
		Skills:  []string{"go", "kubernetes"},
		Summary: "engineer extracted from file",
	}, nil
}

func (f *fakeAI) EvaluateAnswer(xl *xlog.Logger, interview *model.InterviewDo, question model.QuestionDo, answer string) *cloud.AnswerEvaluation {
	f.evalRole = interview.RoleDescription
	f.evalResume = interview.ResumeAnalysis
	if f.failEvaluate {
		return cloud.NeutralEvaluation()
	}
	score := f.score
	if score == 0 {
		score = 85
	}
	return &cloud.AnswerEvaluation{
		Score:     score,
		Accuracy:  score,
		Clarity:   score,
		Relevance: score,
		Feedback:  "solid answer",
		Parsed:    true,
	}
}

func (f *fakeAI) SuggestFollowUps(xl *xlog.Logger, question model.QuestionDo, answer string) []string {
	return []string{"can you elaborate?"}
}

func (f *fakeAI) AnalyzeInterview(xl *xlog.Logger, interview *model.InterviewDo) *model.AnalysisDo {
	if f.failAnalyze {
		return cloud.NeutralAnalysis()
	}
	return &model.AnalysisDo{
		Communication: 80, Technical: 80, ProblemSolving: 80, Confidence: 80, Overall: 80,
		Strengths:    []string{"clear"},
		Improvements: []string{"depth"},
		Parsed:       true,
	}
}

type fakeBank struct {
	empty bool
}

func (f *fakeBank) Sample(position string, difficulty model.QuestionDifficulty, count int) ([]model.BankQuestionDo, error) {
	if f.empty {
		return nil, nil
	}
	questions := make([]model.BankQuestionDo, 0, count)
	for order := 1; order <= count; order++ {
		questions = append(questions, model.BankQuestionDo{
			ID:         fmt.Sprintf("bank-%d", order),
			Question:   fmt.Sprintf("bank question %d", order),
			Category:   "fundamentals",
			Difficulty: difficulty,
			Type:       "technical",
		})
	}
	return questions, nil
}

type fakeSpeech struct {
	failSynthesize bool
	failTranscribe bool
	transcript     string
}

func (f *fakeSpeech) Synthesize(xl *xlog.Logger, text, voice string) ([]byte, error) {
	if f.failSynthesize {
		return nil, fmt.Errorf("tts unavailable")
	}
	return []byte("audio"), nil
}

func (f *fakeSpeech) Transcribe(xl *xlog.Logger, audio []byte, mimeType string) (string, error) {
	if f.failTranscribe {
		return "", fmt.Errorf("asr unavailable")
	}
	return f.transcript, nil
}

type fakeStorage struct{}

func (f *fakeStorage) Upload(xl *xlog.Logger, data []byte, fileKey string) (string, error) {
	return "https://static.example.com/" + fileKey, nil
}

func newTestService() (*SessionService, *fakeStore, *fakeAI) {
	store := newFakeStore()
	ai := &fakeAI{}
	service := NewSessionService(store, ai, &fakeBank{}, &fakeSpeech{transcript: "spoken answer"},
		&fakeStorage{}, utils.PlanConfig{FreeInterviewQuota: 3})
	return service, store, ai
}

func testAccount() *model.AccountDo {
	return &model.AccountDo{
		ID:    "user-1",
		Email: "user@example.com",
		Plan:  model.PlanCodeFree,
	}
}

func createForm(count int) *form.InterviewCreateForm {
	return &form.InterviewCreateForm{
		Title:           "backend interview",
		Position:        "Backend Engineer",
		RoleDescription: "owns the order service backend",
		Difficulty:      "medium",
		QuestionsCount:  count,
	}
}

// mustCreate 带简历创建，走AI出题路径。
func mustCreate(t *testing.T, service *SessionService, count int) *model.InterviewDo {
	t.Helper()
	interview, err := service.CreateInterview(nil, testAccount(), createForm(count), "five years of go and mongodb", nil)
	if err != nil {
		t.Fatalf("create interview failed: %v", err)
	}
	return interview
}

func mustStart(t *testing.T, service *SessionService, interviewId string) {
	t.Helper()
	if _, err := service.StartInterview(nil, "user-1", interviewId); err != nil {
		t.Fatalf("start interview failed: %v", err)
	}
}

func answerForm(index int, answer string, taken int) *form.SubmitAnswerForm {
	return &form.SubmitAnswerForm{QuestionIndex: index, Answer: answer, TimeTakenSecond: taken}
}

func serverErrorCode(t *testing.T, err error) int {
	t.Helper()
	serverError, ok := err.(*errors.ServerError)
	if !ok {
		t.Fatalf("expected *errors.ServerError, got %T: %v", err, err)
	}
	return serverError.Code
}

func TestCreateInterviewGeneratesQuestions(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 3)

	if interview.Status != int(model.InterviewStatusCodeCreated) {
		t.Errorf("new interview status = %d, want created", interview.Status)
	}
	if len(interview.Questions) != 3 {
		t.Fatalf("question count = %d, want 3", len(interview.Questions))
	}
	for index, question := range interview.Questions {
		if question.Order != index+1 {
			t.Errorf("question %d order = %d, want %d", index, question.Order, index+1)
		}
	}
	if interview.ResumeAnalysis == nil {
		t.Error("resume analysis should be attached")
	}
	if interview.Questions[0].Question != "question 1 for Backend Engineer" {
		t.Errorf("expected AI question, got %q", interview.Questions[0].Question)
	}
}

func TestCreateInterviewWithoutResumeDrawsBank(t *testing.T) {
	service, _, _ := newTestService()

	// 没有简历分析时不请求AI，直接抽题库。
	interview, err := service.CreateInterview(nil, testAccount(), createForm(2), "", nil)
	if err != nil {
		t.Fatalf("create without resume failed: %v", err)
	}
	if interview.Questions[0].Question != "bank question 1" {
		t.Errorf("expected bank question, got %q", interview.Questions[0].Question)
	}
}

func TestCreateInterviewFallsBackToBank(t *testing.T) {
	service, _, ai := newTestService()
	ai.failGenerate = true

	interview := mustCreate(t, service, 2)
	if len(interview.Questions) != 2 {
		t.Fatalf("question count = %d, want 2 from bank", len(interview.Questions))
	}
	if interview.Questions[0].Question != "bank question 1" {
		t.Errorf("expected bank question, got %q", interview.Questions[0].Question)
	}
}

func TestCreateInterviewFailsWhenBankEmpty(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{failGenerate: true}
	service := NewSessionService(store, ai, &fakeBank{empty: true}, &fakeSpeech{}, &fakeStorage{},
		utils.PlanConfig{FreeInterviewQuota: 3})

	_, err := service.CreateInterview(nil, testAccount(), createForm(2), "five years of go", nil)
	if err == nil {
		t.Fatal("expected error when both AI and bank fail")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorAIGenerateFail {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorAIGenerateFail)
	}
	if len(store.interviews) != 0 {
		t.Error("no interview should be persisted when question generation fails")
	}
}

func TestCreateInterviewResumeFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{failResume: true}
	service := NewSessionService(store, ai, &fakeBank{}, &fakeSpeech{}, &fakeStorage{},
		utils.PlanConfig{FreeInterviewQuota: 3})

	_, err := service.CreateInterview(nil, testAccount(), createForm(2), "resume text", nil)
	if err == nil {
		t.Fatal("expected error when resume analysis fails")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorResumeAnalyzeFail {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorResumeAnalyzeFail)
	}
	if len(store.interviews) != 0 {
		t.Error("no interview should be persisted when resume analysis fails")
	}
}

func TestCreateInterviewResumeFileOnly(t *testing.T) {
	service, _, _ := newTestService()

	// 只传原件不传原文，同样要走简历分析。
	interview, err := service.CreateInterview(nil, testAccount(), createForm(2), "", []byte("%PDF-1.4 resume"))
	if err != nil {
		t.Fatalf("create with resume file failed: %v", err)
	}
	if interview.ResumeAnalysis == nil {
		t.Fatal("resume analysis should be attached for a file-only resume")
	}
	if len(interview.ResumeAnalysis.Skills) == 0 {
		t.Error("resume analysis should carry extracted skills")
	}
	if interview.ResumeAnalysis.ResumeUrl == "" {
		t.Error("uploaded resume url should be recorded on the analysis")
	}
}

func TestCreateInterviewResumeFileFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	ai := &fakeAI{failResume: true}
	service := NewSessionService(store, ai, &fakeBank{}, &fakeSpeech{}, &fakeStorage{},
		utils.PlanConfig{FreeInterviewQuota: 3})

	_, err := service.CreateInterview(nil, testAccount(), createForm(2), "", []byte("%PDF-1.4 resume"))
	if err == nil {
		t.Fatal("expected error when resume file analysis fails")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorResumeAnalyzeFail {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorResumeAnalyzeFail)
	}
	if len(store.interviews) != 0 {
		t.Error("no interview should be persisted when resume file analysis fails")
	}
}

func TestCreateInterviewAttachesAudio(t *testing.T) {
	service, _, _ := newTestService()
	args := createForm(2)
	args.WithAudio = true
	args.Voice = "female-1"

	interview, err := service.CreateInterview(nil, testAccount(), args, "five years of go", nil)
	if err != nil {
		t.Fatalf("create with audio failed: %v", err)
	}
	for _, question := range interview.Questions {
		if question.AudioUrl == "" {
			t.Errorf("question %d should carry an audio url", question.Order)
		}
	}
}

func TestCreateInterviewAudioFailureIsSoft(t *testing.T) {
	store := newFakeStore()
	service := NewSessionService(store, &fakeAI{}, &fakeBank{}, &fakeSpeech{failSynthesize: true},
		&fakeStorage{}, utils.PlanConfig{FreeInterviewQuota: 3})
	args := createForm(2)
	args.WithAudio = true
	args.Voice = "female-1"

	interview, err := service.CreateInterview(nil, testAccount(), args, "five years of go", nil)
	if err != nil {
		t.Fatalf("create should survive tts failure, got %v", err)
	}
	for _, question := range interview.Questions {
		if question.AudioUrl != "" {
			t.Errorf("question %d audio url should stay empty after tts failure", question.Order)
		}
	}
}

func TestCreateInterviewQuota(t *testing.T) {
	service, _, _ := newTestService()
	for i := 0; i < 3; i++ {
		mustCreate(t, service, 1)
	}
	_, err := service.CreateInterview(nil, testAccount(), createForm(1), "", nil)
	if err == nil {
		t.Fatal("expected quota error on 4th interview for free plan")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorQuotaExceeded {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorQuotaExceeded)
	}

	// pro套餐不受配额限制。
	proAccount := testAccount()
	proAccount.ID = "user-pro"
	proAccount.Plan = model.PlanCodePro
	for i := 0; i < 5; i++ {
		if _, err := service.CreateInterview(nil, proAccount, createForm(1), "", nil); err != nil {
			t.Fatalf("pro plan create %d failed: %v", i, err)
		}
	}
}

func TestStartInterviewTransitions(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)

	started, err := service.StartInterview(nil, "user-1", interview.ID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if started.Status != int(model.InterviewStatusCodeInProgress) {
		t.Errorf("status = %d, want in_progress", started.Status)
	}
	if started.StartedAt == nil {
		t.Error("startedAt should be set")
	}

	// 重复开始。
	_, err = service.StartInterview(nil, "user-1", interview.ID)
	if err == nil {
		t.Fatal("expected wrong state error on double start")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorWrongState {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorWrongState)
	}
}

func TestStartInterviewAuthorization(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)

	_, err := service.StartInterview(nil, "someone-else", interview.ID)
	if err == nil {
		t.Fatal("expected permission error for non-owner")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorUserNoPermission {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorUserNoPermission)
	}

	_, err = service.StartInterview(nil, "user-1", "no-such-id")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorInterviewNotFound {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorInterviewNotFound)
	}
}

func TestSubmitAnswerSequential(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 3)
	mustStart(t, service, interview.ID)

	// 跳题提交。
	_, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(1, "skip ahead", 30), nil, "")
	if err == nil {
		t.Fatal("expected out of order error")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorAnswerOutOfOrder {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorAnswerOutOfOrder)
	}

	// 按序提交。
	result, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "first answer", 30), nil, "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.AnsweredCount != 1 || result.TotalCount != 3 {
		t.Errorf("progress = %d/%d, want 1/3", result.AnsweredCount, result.TotalCount)
	}
	if result.NextQuestion == nil || result.NextQuestion.Order != 2 {
		t.Error("next question should be question 2")
	}
	if result.IsLastQuestion {
		t.Error("question 1 of 3 should not be the last")
	}

	// 重复提交同一题。
	_, err = service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "again", 30), nil, "")
	if err == nil {
		t.Fatal("expected out of order error on duplicate index")
	}
}

func TestSubmitAnswerLastQuestion(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	if _, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "one", 10), nil, ""); err != nil {
		t.Fatalf("submit 0 failed: %v", err)
	}
	result, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(1, "two", 20), nil, "")
	if err != nil {
		t.Fatalf("submit 1 failed: %v", err)
	}
	if !result.IsLastQuestion {
		t.Error("second of two questions should be the last")
	}
	if result.NextQuestion != nil {
		t.Error("no next question expected after the last answer")
	}
}

func TestSubmitAnswerWrongState(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)

	// 未开始。
	_, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "early", 10), nil, "")
	if err == nil {
		t.Fatal("expected wrong state error before start")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorWrongState {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorWrongState)
	}
}

func TestSubmitAnswerMissingText(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	_, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "", 10), nil, "")
	if err == nil {
		t.Fatal("expected answer missing error")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorAnswerMissing {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorAnswerMissing)
	}
}

func TestSubmitAnswerTranscribes(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	result, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "", 15),
		[]byte("audio bytes"), "audio/webm")
	if err != nil {
		t.Fatalf("voice submit failed: %v", err)
	}
	if result.Evaluation == nil || !result.Evaluation.Parsed {
		t.Error("transcribed answer should be evaluated normally")
	}

	stored, _ := service.GetInterview(nil, "user-1", interview.ID)
	if stored.Responses[0].Answer != "spoken answer" {
		t.Errorf("stored answer = %q, want transcript", stored.Responses[0].Answer)
	}
	wantAudioUrl := "https://static.example.com/answer-" + interview.ID + "-0"
	if stored.Responses[0].AudioUrl != wantAudioUrl {
		t.Errorf("stored audio url = %q, want %q", stored.Responses[0].AudioUrl, wantAudioUrl)
	}
}

func TestSubmitAnswerEvaluationContext(t *testing.T) {
	service, _, ai := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	// 评估要拿到岗位描述和简历快照。
	if _, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "my answer", 20), nil, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if ai.evalRole != "owns the order service backend" {
		t.Errorf("evaluation saw role description %q", ai.evalRole)
	}
	if ai.evalResume == nil || len(ai.evalResume.Skills) == 0 {
		t.Error("evaluation should see the resume analysis")
	}
}

func TestSubmitAnswerTranscribeFailureIsHard(t *testing.T) {
	store := newFakeStore()
	service := NewSessionService(store, &fakeAI{}, &fakeBank{}, &fakeSpeech{failTranscribe: true},
		&fakeStorage{}, utils.PlanConfig{FreeInterviewQuota: 3})
	interview, err := service.CreateInterview(nil, testAccount(), createForm(2), "", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	mustStart(t, service, interview.ID)

	_, err = service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "", 15),
		[]byte("audio bytes"), "audio/webm")
	if err == nil {
		t.Fatal("expected transcribe error")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorTranscribeFail {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorTranscribeFail)
	}
}

func TestSubmitAnswerNeutralFallback(t *testing.T) {
	service, _, ai := newTestService()
	ai.failEvaluate = true
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	result, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "my answer", 30), nil, "")
	if err != nil {
		t.Fatalf("submit should survive evaluation failure, got %v", err)
	}
	if result.Evaluation.Score != cloud.FallbackScore {
		t.Errorf("fallback score = %d, want %d", result.Evaluation.Score, cloud.FallbackScore)
	}
	if result.Evaluation.Parsed {
		t.Error("fallback evaluation should not be marked parsed")
	}

	stored, _ := service.GetInterview(nil, "user-1", interview.ID)
	if stored.Responses[0].EvaluationParsed {
		t.Error("stored response should record the fallback")
	}
}

func TestSubmitAnswerConcurrentRace(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)

	const racers = 8
	var wg sync.WaitGroup
	successes := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "racing", 5), nil, "")
			if err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	if won != 1 {
		t.Errorf("%d concurrent submissions won, want exactly 1", won)
	}
	stored, _ := service.GetInterview(nil, "user-1", interview.ID)
	if len(stored.Responses) != 1 || stored.ResponseCount != 1 {
		t.Errorf("stored %d responses (count %d), want 1", len(stored.Responses), stored.ResponseCount)
	}
}

func TestCompleteInterviewScores(t *testing.T) {
	service, _, ai := newTestService()
	interview := mustCreate(t, service, 3)
	mustStart(t, service, interview.ID)

	scores := []int{60, 70, 90}
	for index, score := range scores {
		ai.score = score
		if _, err := service.SubmitAnswer(nil, "user-1", interview.ID,
			answerForm(index, fmt.Sprintf("answer %d", index), 30), nil, ""); err != nil {
			t.Fatalf("submit %d failed: %v", index, err)
		}
	}

	completed, err := service.CompleteInterview(nil, "user-1", interview.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != int(model.InterviewStatusCodeCompleted) {
		t.Errorf("status = %d, want completed", completed.Status)
	}
	// (60+70+90)/3 = 73.33 四舍五入73
	if completed.OverallScore != 73 {
		t.Errorf("overall score = %d, want 73", completed.OverallScore)
	}
	if completed.DurationSecond != 90 {
		t.Errorf("duration = %d, want 90", completed.DurationSecond)
	}
	if completed.AiAnalysis == nil || !completed.AiAnalysis.Parsed {
		t.Error("analysis should be attached")
	}
}

func TestCompleteInterviewEarly(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 3)
	mustStart(t, service, interview.ID)

	if _, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "only one", 40), nil, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	completed, err := service.CompleteInterview(nil, "user-1", interview.ID)
	if err != nil {
		t.Fatalf("early complete failed: %v", err)
	}
	if completed.OverallScore != 85 {
		t.Errorf("overall score = %d, want 85 from the single answer", completed.OverallScore)
	}
}

func TestCompleteInterviewWrongState(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)

	// created状态不能直接结束。
	_, err := service.CompleteInterview(nil, "user-1", interview.ID)
	if err == nil {
		t.Fatal("expected wrong state error completing a created interview")
	}

	mustStart(t, service, interview.ID)
	if _, err := service.CompleteInterview(nil, "user-1", interview.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	// 重复结束。
	_, err = service.CompleteInterview(nil, "user-1", interview.ID)
	if err == nil {
		t.Fatal("expected wrong state error on double complete")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorWrongState {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorWrongState)
	}
}

func TestCompleteInterviewNeutralAnalysis(t *testing.T) {
	service, _, ai := newTestService()
	ai.failAnalyze = true
	interview := mustCreate(t, service, 1)
	mustStart(t, service, interview.ID)
	if _, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "answer", 10), nil, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	completed, err := service.CompleteInterview(nil, "user-1", interview.ID)
	if err != nil {
		t.Fatalf("complete should survive analysis failure, got %v", err)
	}
	if completed.AiAnalysis == nil || completed.AiAnalysis.Parsed {
		t.Error("fallback analysis expected")
	}
	if completed.AiAnalysis.Overall != cloud.FallbackScore {
		t.Errorf("fallback overall = %d, want %d", completed.AiAnalysis.Overall, cloud.FallbackScore)
	}
}

func TestSubmitAfterComplete(t *testing.T) {
	service, _, _ := newTestService()
	interview := mustCreate(t, service, 2)
	mustStart(t, service, interview.ID)
	if _, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(0, "one", 10), nil, ""); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := service.CompleteInterview(nil, "user-1", interview.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	_, err := service.SubmitAnswer(nil, "user-1", interview.ID, answerForm(1, "late", 10), nil, "")
	if err == nil {
		t.Fatal("expected wrong state error submitting after completion")
	}
	if code := serverErrorCode(t, err); code != errors.ServerErrorWrongState {
		t.Errorf("error code = %d, want %d", code, errors.ServerErrorWrongState)
	}
}
