package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/solutions/prep-cube/internal/protodef/model"
)

// PDF报告生成。章节顺序固定：总览、逐题回顾、能力维度、时间分布、
// 改进建议、下一步。同一份面试数据生成的报告内容是确定的。

const (
	fontFamily = "Helvetica"
	pageWidth  = 190.0
	lineHeight = 6.0
)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build 渲染一场已完成面试的PDF报告，返回文件字节。
func (b *Builder) Build(interview *model.InterviewDo, account *model.AccountDo) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	b.writeHeader(pdf, interview, account)
	b.writeOverview(pdf, interview)
	b.writeQuestions(pdf, interview)
	b.writeSkills(pdf, interview)
	b.writeTiming(pdf, interview)
	b.writeRecommendations(pdf, interview)
	b.writeNextSteps(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (b *Builder) writeHeader(pdf *gofpdf.Fpdf, interview *model.InterviewDo, account *model.AccountDo) {
	pdf.SetFont(fontFamily, "B", 18)
	pdf.CellFormat(pageWidth, 10, "Interview Practice Report", "", 1, "C", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
	name := account.Nickname
	if name == "" {
		name = account.Email
	}
	pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("Candidate: %s", name), "", 1, "C", false, 0, "")
	pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("Position: %s", interview.Position), "", 1, "C", false, 0, "")
	completedAt := ""
	if interview.CompletedAt != nil {
		completedAt = interview.CompletedAt.Format(time.RFC1123)
	}
	pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("Completed: %s", completedAt), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (b *Builder) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(pageWidth, 8, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontFamily, "", 10)
}

func (b *Builder) writeOverview(pdf *gofpdf.Fpdf, interview *model.InterviewDo) {
	b.sectionTitle(pdf, "Overview")
	pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("Overall score: %d/100", interview.OverallScore), "", 1, "L", false, 0, "")
	pdf.CellFormat(pageWidth, lineHeight,
		fmt.Sprintf("Questions answered: %d of %d", len(interview.Responses), len(interview.Questions)),
		"", 1, "L", false, 0, "")
	pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("Difficulty: %s", interview.Difficulty), "", 1, "L", false, 0, "")
	if interview.AiAnalysis != nil && interview.AiAnalysis.DetailedFeedback != "" {
		pdf.MultiCell(pageWidth, lineHeight, interview.AiAnalysis.DetailedFeedback, "", "L", false)
	}
	pdf.Ln(4)
}

func (b *Builder) writeQuestions(pdf *gofpdf.Fpdf, interview *model.InterviewDo) {
	b.sectionTitle(pdf, "Question by Question")
	for _, response := range interview.Responses {
		if response.QuestionIndex >= len(interview.Questions) {
			continue
		}
		question := interview.Questions[response.QuestionIndex]
		pdf.SetFont(fontFamily, "B", 10)
		pdf.MultiCell(pageWidth, lineHeight,
			fmt.Sprintf("Q%d. %s", response.QuestionIndex+1, question.Question), "", "L", false)
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(pageWidth, lineHeight,
			fmt.Sprintf("Score %d  Accuracy %d  Clarity %d  Relevance %d",
				response.Score, response.Accuracy, response.Clarity, response.Relevance),
			"", 1, "L", false, 0, "")
		if response.Feedback != "" {
			pdf.MultiCell(pageWidth, lineHeight, "Feedback: "+response.Feedback, "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(2)
}

func (b *Builder) writeSkills(pdf *gofpdf.Fpdf, interview *model.InterviewDo) {
	b.sectionTitle(pdf, "Skill Dimensions")
	analysis := interview.AiAnalysis
	if analysis == nil {
		pdf.CellFormat(pageWidth, lineHeight, "No analysis available.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}
	dimensions := []struct {
		name  string
		score int
	}{
		{"Communication", analysis.Communication},
		{"Technical", analysis.Technical},
		{"Problem solving", analysis.ProblemSolving},
		{"Confidence", analysis.Confidence},
	}
	for _, dimension := range dimensions {
		pdf.CellFormat(pageWidth, lineHeight,
			fmt.Sprintf("%s: %d/100", dimension.name, dimension.score), "", 1, "L", false, 0, "")
	}
	if len(analysis.Strengths) > 0 {
		pdf.MultiCell(pageWidth, lineHeight, "Strengths: "+strings.Join(analysis.Strengths, "; "), "", "L", false)
	}
	pdf.Ln(4)
}

func (b *Builder) writeTiming(pdf *gofpdf.Fpdf, interview *model.InterviewDo) {
	b.sectionTitle(pdf, "Time Spent")
	pdf.CellFormat(pageWidth, lineHeight,
		fmt.Sprintf("Total answering time: %s", (time.Duration(interview.DurationSecond)*time.Second).String()),
		"", 1, "L", false, 0, "")
	for _, response := range interview.Responses {
		budget := 0
		if response.QuestionIndex < len(interview.Questions) {
			budget = interview.Questions[response.QuestionIndex].TimeBudgetSecond
		}
		pdf.CellFormat(pageWidth, lineHeight,
			fmt.Sprintf("Q%d: %ds (budget %ds)", response.QuestionIndex+1, response.TimeTakenSecond, budget),
			"", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (b *Builder) writeRecommendations(pdf *gofpdf.Fpdf, interview *model.InterviewDo) {
	b.sectionTitle(pdf, "Recommendations")
	if interview.AiAnalysis == nil || len(interview.AiAnalysis.Improvements) == 0 {
		pdf.CellFormat(pageWidth, lineHeight, "Keep practicing regularly.", "", 1, "L", false, 0, "")
		pdf.Ln(4)
		return
	}
	for _, improvement := range interview.AiAnalysis.Improvements {
		pdf.MultiCell(pageWidth, lineHeight, "- "+improvement, "", "L", false)
	}
	pdf.Ln(4)
}

func (b *Builder) writeNextSteps(pdf *gofpdf.Fpdf) {
	b.sectionTitle(pdf, "Next Steps")
	steps := []string{
		"Review the questions you scored lowest on and draft improved answers.",
		"Schedule another practice interview at a higher difficulty.",
		"Revisit the suggested follow-up questions from each answer.",
	}
	for _, step := range steps {
		pdf.MultiCell(pageWidth, lineHeight, "- "+step, "", "L", false)
	}
}
