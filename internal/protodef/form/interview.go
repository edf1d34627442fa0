package form

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/solutions/prep-cube/internal/protodef/model"
)

const (
	ErrTitleMsg          = "标题过长"
	ErrPositionMsg       = "职位不能为空"
	ErrDifficultyMsg     = "难度只能为easy/medium/hard"
	ErrQuestionsCountMsg = "题目数需在1到20之间"
	ErrTimeTakenMsg      = "作答耗时非法"

	MaxQuestionsCount = 20
)

// InterviewCreateForm 创建面试的参数。简历文件通过multipart字段resumeFile上传。
type InterviewCreateForm struct {
	Title           string   `form:"title" json:"title"`
	Position        string   `form:"position" json:"position"`
	RoleDescription string   `form:"roleDescription" json:"roleDescription"`
	Difficulty      string   `form:"difficulty" json:"difficulty"`
	QuestionsCount  int      `form:"questionsCount" json:"questionsCount"`
	FocusAreas      []string `form:"focusAreas" json:"focusAreas"`
	Voice           string   `form:"voice" json:"voice"`
	// WithAudio 是否为题目预生成朗读音频。
	WithAudio bool `form:"withAudio" json:"withAudio"`
}

func (f *InterviewCreateForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Title, validation.Length(0, 100).Error(ErrTitleMsg)),
		validation.Field(&f.Position, validation.Required.Error(ErrPositionMsg)),
		validation.Field(&f.Difficulty, validation.Required, validation.In(
			string(model.QuestionDifficultyEasy),
			string(model.QuestionDifficultyMedium),
			string(model.QuestionDifficultyHard),
		).Error(ErrDifficultyMsg)),
		validation.Field(&f.QuestionsCount, validation.Required,
			validation.Min(1).Error(ErrQuestionsCountMsg),
			validation.Max(MaxQuestionsCount).Error(ErrQuestionsCountMsg)),
	)
}

// FillDefault 未指定标题时按职位生成默认标题。
func (f *InterviewCreateForm) FillDefault() {
	if f.Title == "" && f.Position != "" {
		f.Title = f.Position + " interview"
	}
}

// SubmitAnswerForm 提交作答的参数。语音作答通过multipart字段audioFile上传。
type SubmitAnswerForm struct {
	QuestionIndex int    `form:"questionIndex" json:"questionIndex"`
	Answer        string `form:"answer" json:"answer"`
	// TimeTakenSecond 作答耗时。
	TimeTakenSecond int `form:"timeTaken" json:"timeTaken"`
}

func (f *SubmitAnswerForm) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.QuestionIndex, validation.Min(0)),
		validation.Field(&f.TimeTakenSecond, validation.Min(0).Error(ErrTimeTakenMsg)),
	)
}
