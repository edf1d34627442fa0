package cloud

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/qiniu/x/xlog"

	"github.com/solutions/prep-cube/internal/common/utils"
	"github.com/solutions/prep-cube/internal/protodef/model"
)

// 邮件通知：面试完成后给候选人发一封带成绩的通知邮件。
// 纯尽力而为，任何失败只记日志。

type MailService struct {
	conf utils.MailConfig
	// urlPrefix 拼接报告下载地址用。
	urlPrefix string
	xl        *xlog.Logger
	// send 可注入，测试用。
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailService(conf utils.Config) *MailService {
	s := new(MailService)
	s.conf = *conf.Mail
	s.urlPrefix = conf.Storage.URLPrefix
	s.xl = xlog.New("mail service")
	s.send = smtp.SendMail
	return s
}

// SendInterviewCompleted 面试完成通知。
func (s *MailService) SendInterviewCompleted(xl *xlog.Logger, account *model.AccountDo, interview *model.InterviewDo) {
	if xl == nil {
		xl = s.xl
	}
	if !s.conf.Enabled || !account.EmailNotification {
		return
	}
	subject := fmt.Sprintf("Your %s interview is complete", interview.Position)
	body := s.completedBody(account, interview)
	if err := s.deliver(account.Email, subject, body); err != nil {
		xl.Errorf("send completed mail to %s failed: %v", account.Email, err)
		return
	}
	xl.Infof("completed mail sent to %s", account.Email)
}

func (s *MailService) completedBody(account *model.AccountDo, interview *model.InterviewDo) string {
	var sb strings.Builder
	name := account.Nickname
	if name == "" {
		name = account.Email
	}
	fmt.Fprintf(&sb, "Hi %s,\r\n\r\n", name)
	fmt.Fprintf(&sb, "Your practice interview for %s is complete.\r\n", interview.Position)
	fmt.Fprintf(&sb, "Overall score: %d/100.\r\n", interview.OverallScore)
	fmt.Fprintf(&sb, "Questions answered: %d of %d.\r\n\r\n", len(interview.Responses), len(interview.Questions))
	fmt.Fprintf(&sb, "Download your report: %s/%s\r\n", s.urlPrefix, ReportFileKey(interview.ID))
	sb.WriteString("Log in to review your detailed feedback.\r\n")
	return sb.String()
}

func (s *MailService) deliver(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.conf.SMTPHost, s.conf.SMTPPort)
	var auth smtp.Auth
	if s.conf.Username != "" {
		auth = smtp.PlainAuth("", s.conf.Username, s.conf.Password, s.conf.SMTPHost)
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.conf.From, to, subject, body)
	return s.send(addr, auth, s.conf.From, []string{to}, []byte(msg))
}
