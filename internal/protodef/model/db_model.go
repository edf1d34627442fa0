package model

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

/*
	db_model.go: 规定数据存储的格式。
*/

type FlattenMap map[string]interface{}

// AccountDo 用户账号信息。
type AccountDo struct {
	// 用户ID，作为数据库唯一标识。
	ID string `json:"id" bson:"_id"`
	// 邮箱，目前要求全局唯一。
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
	Salt     string `json:"-" bson:"salt"`
	// 用户昵称
	Nickname string `json:"nickname" bson:"nickname"`
	// Plan 订阅套餐：free/pro。
	Plan PlanCode `json:"plan" bson:"plan"`
	// EmailNotification 面试完成后是否发送邮件通知。
	EmailNotification bool `json:"emailNotification" bson:"emailNotification"`
	// RegisterIP 用户注册（首次登录）时使用的IP。
	RegisterIP string `json:"registerIP" bson:"registerIP"`
	// RegisterTime 用户注册（首次登录）时间。
	RegisterTime time.Time `json:"registerTime" bson:"registerTime"`
	// LastLoginTime 上次登录时间。
	LastLoginTime time.Time `json:"lastLoginTime" bson:"lastLoginTime"`
}

var (
	PasswordEncodeSecretKey = []byte("prep-cube")
)

// HashPassword password = hmac_sha256(password+salt,secret_key)
func (a *AccountDo) HashPassword(plain string) string {
	if a.Salt == "" {
		panic("salt could not be empty")
	}
	payload := plain + a.Salt
	macData := hmac.New(sha256.New, PasswordEncodeSecretKey).Sum([]byte(payload))
	return hex.EncodeToString(macData)
}

func (a AccountDo) Map() FlattenMap {
	val, _ := json.Marshal(&a)
	res := make(map[string]interface{})
	_ = json.Unmarshal(val, &res)
	return res
}

type PlanCode string

const (
	PlanCodeFree PlanCode = "free"
	PlanCodePro  PlanCode = "pro"
)

// AccountTokenDo 已登录用户的信息。
type AccountTokenDo struct {
	ID        string `json:"id" bson:"_id"`
	AccountId string `json:"accountId" bson:"accountId"`
	// Token 本次登录使用的token。
	Token          string    `json:"token" bson:"token"`
	LastModifyTime time.Time `json:"lastModifyTime"`
}

type InterviewStatusCode int
type InterviewStatusName string

const (
	InterviewStatusCodeCreated    InterviewStatusCode = 0
	InterviewStatusCodeInProgress InterviewStatusCode = 10
	InterviewStatusCodeCompleted  InterviewStatusCode = 20
	InterviewStatusNameCreated    InterviewStatusName = "created"
	InterviewStatusNameInProgress InterviewStatusName = "in_progress"
	InterviewStatusNameCompleted  InterviewStatusName = "completed"
)

func (c InterviewStatusCode) Name() InterviewStatusName {
	switch c {
	case InterviewStatusCodeCreated:
		return InterviewStatusNameCreated
	case InterviewStatusCodeInProgress:
		return InterviewStatusNameInProgress
	case InterviewStatusCodeCompleted:
		return InterviewStatusNameCompleted
	}
	return ""
}

func ParseInterviewStatus(name string) (InterviewStatusCode, bool) {
	switch InterviewStatusName(name) {
	case InterviewStatusNameCreated:
		return InterviewStatusCodeCreated, true
	case InterviewStatusNameInProgress:
		return InterviewStatusCodeInProgress, true
	case InterviewStatusNameCompleted:
		return InterviewStatusCodeCompleted, true
	}
	return 0, false
}

type QuestionDifficulty string

const (
	QuestionDifficultyEasy   QuestionDifficulty = "easy"
	QuestionDifficultyMedium QuestionDifficulty = "medium"
	QuestionDifficultyHard   QuestionDifficulty = "hard"
)

// QuestionDo 面试题目，创建面试时一次性生成并固定，此后不可变。
type QuestionDo struct {
	Question       string             `json:"question" bson:"question"`
	Category       string             `json:"category" bson:"category"`
	Difficulty     QuestionDifficulty `json:"difficulty" bson:"difficulty"`
	Type           string             `json:"type" bson:"type"`
	ExpectedAnswer string             `json:"expectedAnswer,omitempty" bson:"expectedAnswer,omitempty"`
	// AudioUrl 题目朗读音频，TTS失败时为空。
	AudioUrl string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	// Order 从1开始，与数组下标+1一致。
	Order int `json:"order" bson:"order"`
	// TimeBudgetSecond 建议作答时长。
	TimeBudgetSecond int `json:"timeBudget" bson:"timeBudget"`
}

// ResponseDo 候选人对某一题的作答记录，追加后不再修改。
type ResponseDo struct {
	QuestionIndex int    `json:"questionIndex" bson:"questionIndex"`
	Answer        string `json:"answer" bson:"answer"`
	// AudioUrl 语音作答时的录音归档地址。
	AudioUrl string `json:"audioUrl,omitempty" bson:"audioUrl,omitempty"`
	// TimeTakenSecond 作答耗时。
	TimeTakenSecond  int    `json:"timeTaken" bson:"timeTaken"`
	Score            int    `json:"score" bson:"score"`
	Accuracy         int    `json:"accuracy" bson:"accuracy"`
	Clarity          int    `json:"clarity" bson:"clarity"`
	Relevance        int    `json:"relevance" bson:"relevance"`
	Feedback         string `json:"feedback" bson:"feedback"`
	DetailedAnalysis string `json:"detailedAnalysis,omitempty" bson:"detailedAnalysis,omitempty"`
	// EvaluationParsed 为false表示AI返回无法解析，以上为兜底评分。
	EvaluationParsed bool      `json:"evaluationParsed" bson:"evaluationParsed"`
	SubmittedAt      time.Time `json:"submittedAt" bson:"submittedAt"`
}

// ResumeAnalysisDo 简历结构化快照，创建面试时一次性生成。
type ResumeAnalysisDo struct {
	Skills     []string `json:"skills" bson:"skills"`
	Experience []string `json:"experience" bson:"experience"`
	Education  []string `json:"education" bson:"education"`
	Summary    string   `json:"summary" bson:"summary"`
	// ResumeUrl 原始简历文件的存储地址。
	ResumeUrl string `json:"resumeUrl,omitempty" bson:"resumeUrl,omitempty"`
}

// AnalysisDo 面试完成时的多维度综合分析。
type AnalysisDo struct {
	Communication    int      `json:"communication" bson:"communication"`
	Technical        int      `json:"technical" bson:"technical"`
	ProblemSolving   int      `json:"problemSolving" bson:"problemSolving"`
	Confidence       int      `json:"confidence" bson:"confidence"`
	Overall          int      `json:"overall" bson:"overall"`
	Strengths        []string `json:"strengths" bson:"strengths"`
	Improvements     []string `json:"improvements" bson:"improvements"`
	DetailedFeedback string   `json:"detailedFeedback" bson:"detailedFeedback"`
	// Parsed 为false表示AI返回无法解析，以上为保守默认值。
	Parsed bool `json:"parsed" bson:"parsed"`
}

// InterviewDo 面试会话聚合根。questions创建后不可变；responses只追加；
// 状态机 created -> in_progress -> completed 单向推进。
type InterviewDo struct {
	ID    string `json:"id" bson:"_id"`
	Title string `json:"title" bson:"title"`
	// Candidate 所属候选人，创建后不可变。
	Candidate       string             `json:"candidate" bson:"candidate"`
	Position        string             `json:"position" bson:"position"`
	RoleDescription string             `json:"roleDescription,omitempty" bson:"roleDescription,omitempty"`
	Difficulty      QuestionDifficulty `json:"difficulty" bson:"difficulty"`
	FocusAreas      []string           `json:"focusAreas,omitempty" bson:"focusAreas,omitempty"`
	Status          int                `json:"status" bson:"status"`
	Questions       []QuestionDo       `json:"questions" bson:"questions"`
	Responses       []ResponseDo       `json:"responses" bson:"responses"`
	// ResponseCount 冗余计数，等于len(responses)，作为追加作答的CAS条件。
	ResponseCount  int               `json:"responseCount" bson:"responseCount"`
	ResumeAnalysis *ResumeAnalysisDo `json:"resumeAnalysis,omitempty" bson:"resumeAnalysis,omitempty"`
	// 以下三项仅在completed时填充。
	OverallScore int `json:"overallScore" bson:"overallScore"`
	// DurationSecond 所有作答耗时之和。
	DurationSecond int         `json:"duration" bson:"duration"`
	AiAnalysis     *AnalysisDo `json:"aiAnalysis,omitempty" bson:"aiAnalysis,omitempty"`
	StartedAt      *time.Time  `json:"startedAt,omitempty" bson:"startedAt,omitempty"`
	CompletedAt    *time.Time  `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreateTime     time.Time   `json:"createTime" bson:"createTime"`
	UpdateTime     time.Time   `json:"updateTime" bson:"updateTime"`
}

// NextQuestionIndex 下一个待答题目下标。
func (i *InterviewDo) NextQuestionIndex() int {
	return i.ResponseCount
}

// BankQuestionDo 静态题库中的题目。
type BankQuestionDo struct {
	ID             string             `json:"id" bson:"_id"`
	Question       string             `json:"question" bson:"question"`
	Category       string             `json:"category" bson:"category"`
	Difficulty     QuestionDifficulty `json:"difficulty" bson:"difficulty"`
	Type           string             `json:"type" bson:"type"`
	ExpectedAnswer string             `json:"expectedAnswer,omitempty" bson:"expectedAnswer,omitempty"`
	CreateTime     time.Time          `json:"createTime" bson:"create_time"`
}

// ReportDo 报告元数据，PDF本体存放于对象存储。
type ReportDo struct {
	ID          string    `json:"id" bson:"_id"`
	InterviewID string    `json:"interviewId" bson:"interview_id"`
	Candidate   string    `json:"candidate" bson:"candidate"`
	FileUrl     string    `json:"fileUrl" bson:"file_url"`
	SizeByte    int       `json:"size" bson:"size"`
	CreateAt    time.Time `json:"createAt" bson:"create_at"`
}

type PaymentOrderStatus string

const (
	PaymentOrderStatusCreated  PaymentOrderStatus = "created"
	PaymentOrderStatusPaid     PaymentOrderStatus = "paid"
	PaymentOrderStatusRejected PaymentOrderStatus = "rejected"
)

// PaymentOrderDo 套餐升级的支付订单。
type PaymentOrderDo struct {
	ID        string             `json:"id" bson:"_id"`
	OrderID   string             `json:"orderId" bson:"orderId"`
	Candidate string             `json:"candidate" bson:"candidate"`
	Plan      PlanCode           `json:"plan" bson:"plan"`
	Amount    int64              `json:"amount" bson:"amount"`
	Currency  string             `json:"currency" bson:"currency"`
	Status    PaymentOrderStatus `json:"status" bson:"status"`
	CreateAt  time.Time          `json:"createAt" bson:"createAt"`
	PaidAt    *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}
