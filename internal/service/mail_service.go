package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/smtp"
	"strconv"
	"strings"

	"sankalp_backend/internal/config"
	"sankalp_backend/pkg/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type Mail struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// consoleMailer 开发环境使用，只写日志
type consoleMailer struct{}

func (consoleMailer) Send(_ context.Context, m Mail) error {
	logger.Log.Info("mail (console)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.String("body", m.HTML),
	)
	return nil
}

type smtpMailer struct {
	addr     string
	host     string
	user     string
	password string
	from     string
	fromName string
}

func (s smtpMailer) Send(_ context.Context, m Mail) error {
	var msg strings.Builder
	msg.WriteString("MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n")
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.fromName, s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", m.To)
	if m.ReplyTo != "" {
		fmt.Fprintf(&msg, "Reply-To: %s\r\n", m.ReplyTo)
	}
	fmt.Fprintf(&msg, "Subject: %s\r\n\r\n", m.Subject)
	msg.WriteString(m.HTML)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.password, s.host)
	}
	return smtp.SendMail(s.addr, auth, s.from, []string{m.To}, []byte(msg.String()))
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func (s sendgridMailer) Send(ctx context.Context, m Mail) error {
	msg := sgmail.NewSingleEmail(s.from, m.Subject, sgmail.NewEmail(m.ToName, m.To), "", m.HTML)
	if m.ReplyTo != "" {
		msg.SetReplyTo(sgmail.NewEmail("", m.ReplyTo))
	}
	res, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func NewMailer(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "", "console":
		return consoleMailer{}, nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, fmt.Errorf("mail.smtp_host is required for smtp provider")
		}
		return smtpMailer{
			addr:     cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
			host:     cfg.SMTPHost,
			user:     cfg.SMTPUser,
			password: cfg.SMTPPassword,
			from:     cfg.From,
			fromName: cfg.FromName,
		}, nil
	case "sendgrid":
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("mail.sendgrid_api_key is required for sendgrid provider")
		}
		return sendgridMailer{
			client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
			from:   sgmail.NewEmail(cfg.FromName, cfg.From),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "otp"}}<p>Hello {{.Name}},</p>
<p>Your verification code for {{.Purpose}} is:</p>
<h2 style="letter-spacing:4px">{{.Code}}</h2>
<p>The code expires in {{.Minutes}} minutes. If you did not request it, ignore this email.</p>{{end}}
{{define "approved"}}<p>Hello {{.Name}},</p>
<p>Your enrollment for <strong>{{.Course}}</strong> has been approved. You can start watching the lessons now.</p>{{end}}
{{define "rejected"}}<p>Hello {{.Name}},</p>
<p>Your enrollment for <strong>{{.Course}}</strong> could not be approved.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
<p>Reply to this email if you believe this is a mistake.</p>{{end}}
{{define "contact_admin"}}<p>New contact form submission</p>
<p><strong>Name:</strong> {{.Name}}<br><strong>Email:</strong> {{.Email}}<br><strong>Phone:</strong> {{.Phone}}</p>
<p>{{.Message}}</p>{{end}}
{{define "password_reset"}}<p>Hello {{.Name}},</p>
<p>Your password has been reset successfully. If you did not make this change, contact support immediately.</p>{{end}}
{{define "contact_ack"}}<p>Hello {{.Name}},</p>
<p>Thanks for reaching out. We received your message and will get back to you soon.</p>{{end}}
`))

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type ContactForm struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Message string `json:"message" binding:"required"`
}

type MailService struct {
	Mailer Mailer
	Cfg    config.MailConfig
	OTPTTL int
}

func NewMailService(mailer Mailer, cfg *config.Config) *MailService {
	return &MailService{
		Mailer: mailer,
		Cfg:    cfg.Mail,
		OTPTTL: int(cfg.OTP.TTL.Minutes()),
	}
}

func (s *MailService) send(ctx context.Context, tmpl string, data interface{}, m Mail) error {
	body, err := render(tmpl, data)
	if err != nil {
		return err
	}
	m.HTML = body
	return s.Mailer.Send(ctx, m)
}

func (s *MailService) SendOTP(ctx context.Context, to, name, code string, purpose OTPPurpose) error {
	subject := "Verify your email"
	label := "registration"
	if purpose == OTPReset {
		subject = "Password reset code"
		label = "password reset"
	}
	data := map[string]interface{}{"Name": name, "Code": code, "Purpose": label, "Minutes": s.OTPTTL}
	return s.send(ctx, "otp", data, Mail{To: to, ToName: name, Subject: subject})
}

func (s *MailService) SendEnrollmentApproved(ctx context.Context, to, name, course string) error {
	data := map[string]string{"Name": name, "Course": course}
	return s.send(ctx, "approved", data, Mail{To: to, ToName: name, Subject: "Enrollment approved: " + course})
}

func (s *MailService) SendEnrollmentRejected(ctx context.Context, to, name, course, reason string) error {
	data := map[string]string{"Name": name, "Course": course, "Reason": reason}
	return s.send(ctx, "rejected", data, Mail{To: to, ToName: name, Subject: "Enrollment update: " + course})
}

func (s *MailService) SendPasswordReset(ctx context.Context, to, name string) error {
	data := map[string]string{"Name": name}
	return s.send(ctx, "password_reset", data, Mail{To: to, ToName: name, Subject: "Password reset successful"})
}

// SendContact 通知管理员并给提交人发送确认
func (s *MailService) SendContact(ctx context.Context, form ContactForm) error {
	if s.Cfg.AdminEmail != "" {
		err := s.send(ctx, "contact_admin", form, Mail{
			To:      s.Cfg.AdminEmail,
			ReplyTo: form.Email,
			Subject: "Contact form: " + form.Name,
		})
		if err != nil {
			return err
		}
	}
	return s.send(ctx, "contact_ack", form, Mail{To: form.Email, ToName: form.Name, Subject: "We received your message"})
}
