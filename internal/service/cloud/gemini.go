package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qiniu/x/xlog"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/genai"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

// AI生成服务：出题、简历分析、单题评估、综合分析。
// 评估与综合分析永不向上抛错，AI不可用时落兜底中性结果。

const (
	// FallbackScore 评估兜底分。
	FallbackScore    = 70
	FallbackFeedback = "Answer received. Detailed evaluation is temporarily unavailable."

	DefaultTimeBudgetSecond = 120
)

type AIService struct {
	client  *genai.Client
	conf    utils.GeminiConfig
	breaker *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
	timeout time.Duration
	xl      *xlog.Logger
}

func NewAIService(conf utils.Config) *AIService {
	s := new(AIService)
	s.xl = xlog.New("ai service")
	s.conf = *conf.Gemini
	s.timeout = time.Duration(conf.Gemini.TimeoutSecond) * time.Second
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: conf.Gemini.APIKey,
	})
	if err != nil {
		s.xl.Errorf("create gemini client failed: %v", err)
		panic(err)
	}
	s.client = client
	s.breaker = gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     time.Duration(conf.Gemini.BreakerTimeoutSecond) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= conf.Gemini.BreakerMinRequests &&
				failureRatio >= conf.Gemini.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.xl.Infof("breaker %s state %s -> %s", name, from.String(), to.String())
		},
	})
	return s
}

// generate 统一入口：熔断器 + 单次调用超时。
func (s *AIService) generate(xl *xlog.Logger, prompt string, config *genai.GenerateContentConfig) (string, error) {
	return s.generateContents(xl, genai.Text(prompt), config)
}

func (s *AIService) generateContents(xl *xlog.Logger, contents []*genai.Content,
	config *genai.GenerateContentConfig) (string, error) {
	result, err := s.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		return s.client.Models.GenerateContent(ctx, s.conf.Model, contents, config)
	})
	if err != nil {
		xl.Errorf("gemini call failed: %v", err)
		return "", err
	}
	return result.Text(), nil
}

// cleanJSON 去掉模型偶尔带上的markdown围栏。
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

type questionPayload struct {
	Question       string `json:"question"`
	Category       string `json:"category"`
	Type           string `json:"type"`
	ExpectedAnswer string `json:"expectedAnswer"`
	TimeBudget     int    `json:"timeBudget"`
}

// GenerateQuestions 为一场面试一次性出题。失败时返回错误，由调用方落题库兜底。
func (s *AIService) GenerateQuestions(xl *xlog.Logger, position, roleDescription string,
	difficulty model.QuestionDifficulty, count int, focusAreas []string,
	resume *model.ResumeAnalysisDo) ([]model.QuestionDo, error) {
	if xl == nil {
		xl = s.xl
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an experienced interviewer. Generate exactly %d interview questions for the position of %s.\n", count, position)
	fmt.Fprintf(&sb, "Difficulty: %s.\n", difficulty)
	if roleDescription != "" {
		fmt.Fprintf(&sb, "Role description: %s\n", roleDescription)
	}
	if len(focusAreas) > 0 {
		fmt.Fprintf(&sb, "Focus areas: %s.\n", strings.Join(focusAreas, ", "))
	}
	writeResumeContext(&sb, resume)
	sb.WriteString("Mix technical and behavioral questions. For each question give a category, a type (technical/behavioral), an expectedAnswer outline and a timeBudget in seconds.")

	text, err := s.generate(xl, sb.String(), questionsSchema())
	if err != nil {
		return nil, err
	}
	var payload []questionPayload
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		xl.Errorf("unmarshal questions failed: %v, raw: %s", err, text)
		return nil, err
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty question list")
	}
	if len(payload) > count {
		payload = payload[:count]
	}
	questions := make([]model.QuestionDo, 0, len(payload))
	for index, p := range payload {
		budget := p.TimeBudget
		if budget <= 0 {
			budget = DefaultTimeBudgetSecond
		}
		questions = append(questions, model.QuestionDo{
			Question:         p.Question,
			Category:         p.Category,
			Difficulty:       difficulty,
			Type:             p.Type,
			ExpectedAnswer:   p.ExpectedAnswer,
			Order:            index + 1,
			TimeBudgetSecond: budget,
		})
	}
	return questions, nil
}

// AnalyzeResume 把简历原文提炼成结构化快照。
func (s *AIService) AnalyzeResume(xl *xlog.Logger, resumeText string) (*model.ResumeAnalysisDo, error) {
	if xl == nil {
		xl = s.xl
	}
	prompt := "Extract structured information from the following resume. " +
		"Return skills, experience entries, education entries and a two sentence summary.\n\nResume:\n" + resumeText
	text, err := s.generate(xl, prompt, resumeSchema())
	if err != nil {
		return nil, err
	}
	var analysis model.ResumeAnalysisDo
	if err := json.Unmarshal([]byte(cleanJSON(text)), &analysis); err != nil {
		xl.Errorf("unmarshal resume analysis failed: %v, raw: %s", err, text)
		return nil, err
	}
	return &analysis, nil
}

// AnalyzeResumeFile 直接把简历原件(PDF)交给模型提炼，语义同AnalyzeResume。
func (s *AIService) AnalyzeResumeFile(xl *xlog.Logger, resumeFile []byte) (*model.ResumeAnalysisDo, error) {
	if xl == nil {
		xl = s.xl
	}
	instruction := "Extract structured information from the attached resume. " +
		"Return skills, experience entries, education entries and a two sentence summary."
	contents := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes(resumeFile, "application/pdf"),
		genai.NewPartFromText(instruction),
	}, genai.RoleUser)}
	text, err := s.generateContents(xl, contents, resumeSchema())
	if err != nil {
		return nil, err
	}
	var analysis model.ResumeAnalysisDo
	if err := json.Unmarshal([]byte(cleanJSON(text)), &analysis); err != nil {
		xl.Errorf("unmarshal resume analysis failed: %v, raw: %s", err, text)
		return nil, err
	}
	return &analysis, nil
}

type evaluationPayload struct {
	Score            int    `json:"score"`
	Accuracy         int    `json:"accuracy"`
	Clarity          int    `json:"clarity"`
	Relevance        int    `json:"relevance"`
	Feedback         string `json:"feedback"`
	DetailedAnalysis string `json:"detailedAnalysis"`
}

// AnswerEvaluation 单题评估结果。Parsed为false表示为兜底中性评分。
type AnswerEvaluation struct {
	Score            int
	Accuracy         int
	Clarity          int
	Relevance        int
	Feedback         string
	DetailedAnalysis string
	Parsed           bool
}

// NeutralEvaluation AI不可用或返回不可解析时的兜底。
func NeutralEvaluation() *AnswerEvaluation {
	return &AnswerEvaluation{
		Score:     FallbackScore,
		Accuracy:  FallbackScore,
		Clarity:   FallbackScore,
		Relevance: FallbackScore,
		Feedback:  FallbackFeedback,
	}
}

// EvaluateAnswer 评估一次作答，永不返回错误。岗位描述和简历快照一并进提示词。
func (s *AIService) EvaluateAnswer(xl *xlog.Logger, interview *model.InterviewDo, question model.QuestionDo, answer string) *AnswerEvaluation {
	if xl == nil {
		xl = s.xl
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are evaluating a candidate interviewing for %s.\n", interview.Position)
	if interview.RoleDescription != "" {
		fmt.Fprintf(&sb, "Role description: %s\n", interview.RoleDescription)
	}
	writeResumeContext(&sb, interview.ResumeAnalysis)
	fmt.Fprintf(&sb, "Question: %s\n", question.Question)
	if question.ExpectedAnswer != "" {
		fmt.Fprintf(&sb, "Expected answer outline: %s\n", question.ExpectedAnswer)
	}
	fmt.Fprintf(&sb, "Candidate answer: %s\n", answer)
	sb.WriteString("Score the answer from 0 to 100 on overall score, accuracy, clarity and relevance. Give concise feedback and a detailedAnalysis.")

	text, err := s.generate(xl, sb.String(), evaluationSchema())
	if err != nil {
		return NeutralEvaluation()
	}
	var payload evaluationPayload
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		xl.Errorf("unmarshal evaluation failed: %v, raw: %s", err, text)
		return NeutralEvaluation()
	}
	return &AnswerEvaluation{
		Score:            clampScore(payload.Score),
		Accuracy:         clampScore(payload.Accuracy),
		Clarity:          clampScore(payload.Clarity),
		Relevance:        clampScore(payload.Relevance),
		Feedback:         payload.Feedback,
		DetailedAnalysis: payload.DetailedAnalysis,
		Parsed:           true,
	}
}

// SuggestFollowUps 追问建议，尽力而为，失败返回空列表。
func (s *AIService) SuggestFollowUps(xl *xlog.Logger, question model.QuestionDo, answer string) []string {
	if xl == nil {
		xl = s.xl
	}
	prompt := fmt.Sprintf("An interview candidate was asked: %s\nThey answered: %s\n"+
		"Suggest up to 3 short follow-up questions an interviewer could ask next.",
		question.Question, answer)
	text, err := s.generate(xl, prompt, stringListSchema("followUps"))
	if err != nil {
		return nil
	}
	var payload struct {
		FollowUps []string `json:"followUps"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		xl.Errorf("unmarshal follow-ups failed: %v", err)
		return nil
	}
	return payload.FollowUps
}

type analysisPayload struct {
	Communication    int      `json:"communication"`
	Technical        int      `json:"technical"`
	ProblemSolving   int      `json:"problemSolving"`
	Confidence       int      `json:"confidence"`
	Overall          int      `json:"overall"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	DetailedFeedback string   `json:"detailedFeedback"`
}

// NeutralAnalysis 综合分析的兜底。
func NeutralAnalysis() *model.AnalysisDo {
	return &model.AnalysisDo{
		Communication:    FallbackScore,
		Technical:        FallbackScore,
		ProblemSolving:   FallbackScore,
		Confidence:       FallbackScore,
		Overall:          FallbackScore,
		Strengths:        []string{"Completed the interview"},
		Improvements:     []string{"Detailed analysis unavailable"},
		DetailedFeedback: "The interview was completed. Detailed analysis is temporarily unavailable.",
	}
}

// AnalyzeInterview 面试完成时的综合分析，永不返回错误。
func (s *AIService) AnalyzeInterview(xl *xlog.Logger, interview *model.InterviewDo) *model.AnalysisDo {
	if xl == nil {
		xl = s.xl
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are summarizing an interview for the position of %s.\n", interview.Position)
	if interview.RoleDescription != "" {
		fmt.Fprintf(&sb, "Role description: %s\n", interview.RoleDescription)
	}
	writeResumeContext(&sb, interview.ResumeAnalysis)
	for _, response := range interview.Responses {
		if response.QuestionIndex >= len(interview.Questions) {
			continue
		}
		question := interview.Questions[response.QuestionIndex]
		fmt.Fprintf(&sb, "Q%d: %s\nAnswer: %s\nScore: %d\n", response.QuestionIndex+1,
			question.Question, response.Answer, response.Score)
	}
	sb.WriteString("Rate communication, technical, problemSolving, confidence and overall from 0 to 100. " +
		"List strengths and improvements, and give a detailedFeedback paragraph.")

	text, err := s.generate(xl, sb.String(), analysisSchema())
	if err != nil {
		return NeutralAnalysis()
	}
	var payload analysisPayload
	if err := json.Unmarshal([]byte(cleanJSON(text)), &payload); err != nil {
		xl.Errorf("unmarshal analysis failed: %v, raw: %s", err, text)
		return NeutralAnalysis()
	}
	return &model.AnalysisDo{
		Communication:    clampScore(payload.Communication),
		Technical:        clampScore(payload.Technical),
		ProblemSolving:   clampScore(payload.ProblemSolving),
		Confidence:       clampScore(payload.Confidence),
		Overall:          clampScore(payload.Overall),
		Strengths:        payload.Strengths,
		Improvements:     payload.Improvements,
		DetailedFeedback: payload.DetailedFeedback,
		Parsed:           true,
	}
}

func writeResumeContext(sb *strings.Builder, resume *model.ResumeAnalysisDo) {
	if resume == nil {
		return
	}
	if len(resume.Skills) > 0 {
		fmt.Fprintf(sb, "Candidate skills: %s.\n", strings.Join(resume.Skills, ", "))
	}
	if resume.Summary != "" {
		fmt.Fprintf(sb, "Candidate summary: %s\n", resume.Summary)
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func questionsSchema() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question":       {Type: genai.TypeString},
					"category":       {Type: genai.TypeString},
					"type":           {Type: genai.TypeString},
					"expectedAnswer": {Type: genai.TypeString},
					"timeBudget":     {Type: genai.TypeInteger},
				},
				Required: []string{"question", "category", "type", "expectedAnswer"},
			},
		},
	}
}

func resumeSchema() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"skills":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"experience": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"education":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"summary":    {Type: genai.TypeString},
			},
			Required: []string{"skills", "experience", "education", "summary"},
		},
	}
}

func evaluationSchema() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"score":            {Type: genai.TypeInteger},
				"accuracy":         {Type: genai.TypeInteger},
				"clarity":          {Type: genai.TypeInteger},
				"relevance":        {Type: genai.TypeInteger},
				"feedback":         {Type: genai.TypeString},
				"detailedAnalysis": {Type: genai.TypeString},
			},
			Required: []string{"score", "accuracy", "clarity", "relevance", "feedback"},
		},
	}
}

func analysisSchema() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"communication":    {Type: genai.TypeInteger},
				"technical":        {Type: genai.TypeInteger},
				"problemSolving":   {Type: genai.TypeInteger},
				"confidence":       {Type: genai.TypeInteger},
				"overall":          {Type: genai.TypeInteger},
				"strengths":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"improvements":     {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"detailedFeedback": {Type: genai.TypeString},
			},
			Required: []string{"communication", "technical", "problemSolving", "confidence", "overall"},
		},
	}
}

func stringListSchema(field string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				field: {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			},
			Required: []string{field},
		},
	}
}
