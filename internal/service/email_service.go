package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"edufunkids/internal/logger"
	"edufunkids/internal/models"
)

// Mailer sends the parent-facing emails
type Mailer interface {
	IsEnabled() bool
	SendWelcomeEmail(ctx context.Context, toEmail, childName string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
	SendBadgeEmail(ctx context.Context, toEmail, childName string, badges []models.Badge) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	log        *logger.Logger
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that drops every message.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, log *logger.Logger) (*EmailService, error) {
	log = log.With("service", "EmailService")
	if fromEmail == "" {
		log.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("Email service enabled", "region", awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		log:        log,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s != nil && s.client != nil
}

// SendWelcomeEmail greets a newly registered parent
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, childName string) error {
	subject := "Selamat datang di EduFunKids!"
	paragraphs := []string{
		fmt.Sprintf("Akun untuk %s sudah siap.", childName),
		"Ayo mulai belajar huruf, angka, warna dan hijaiyah sambil bermain Tebak Huruf, Hitung Cepat dan Mewarnai.",
	}
	return s.send(ctx, toEmail, subject, paragraphs, "Mulai Belajar", s.appBaseURL+"/")
}

// SendPasswordResetEmail sends a password reset link that expires in one hour
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, resetToken)
	subject := "Atur ulang kata sandi EduFunKids"
	paragraphs := []string{
		"Kami menerima permintaan untuk mengatur ulang kata sandi akun EduFunKids Anda.",
		"Tautan ini berlaku selama 1 jam. Abaikan email ini jika Anda tidak memintanya.",
	}
	return s.send(ctx, toEmail, subject, paragraphs, "Atur Ulang Kata Sandi", link)
}

// SendBadgeEmail tells the parent which badges their child just earned
func (s *EmailService) SendBadgeEmail(ctx context.Context, toEmail, childName string, badges []models.Badge) error {
	if len(badges) == 0 {
		return nil
	}
	subject := fmt.Sprintf("%s mendapat lencana baru!", childName)
	paragraphs := []string{fmt.Sprintf("Hebat! %s baru saja mendapatkan:", childName)}
	for _, b := range badges {
		paragraphs = append(paragraphs, fmt.Sprintf("%s %s: %s", b.Icon, b.Title, b.Description))
	}
	return s.send(ctx, toEmail, subject, paragraphs, "Lihat Pencapaian", s.appBaseURL+"/dashboard")
}

func (s *EmailService) send(ctx context.Context, toEmail, subject string, paragraphs []string, action, link string) error {
	if !s.IsEnabled() {
		s.log.Debug("Skipping email send (service disabled)", "subject", subject)
		return nil
	}
	htmlBody, textBody := renderEmail(subject, paragraphs, action, link)
	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func renderEmail(title string, paragraphs []string, action, link string) (string, string) {
	var h, t strings.Builder
	h.WriteString(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #ff8c42; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #fff8f0; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #ff8c42; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>`)
	h.WriteString(html.EscapeString(title))
	h.WriteString("</h1></div>\n\t\t<div class=\"content\">\n")
	for _, p := range paragraphs {
		fmt.Fprintf(&h, "\t\t\t<p>%s</p>\n", html.EscapeString(p))
		t.WriteString(p + "\n\n")
	}
	fmt.Fprintf(&h, "\t\t\t<p style=\"text-align: center;\"><a href=\"%s\" class=\"button\">%s</a></p>\n",
		html.EscapeString(link), html.EscapeString(action))
	h.WriteString(`		</div>
		<div class="footer"><p>Email ini dikirim otomatis oleh EduFunKids. Mohon tidak membalas.</p></div>
	</div>
</body>
</html>
`)
	fmt.Fprintf(&t, "%s: %s\n\n---\nEmail ini dikirim otomatis oleh EduFunKids. Mohon tidak membalas.\n", action, link)
	return h.String(), t.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.Info("Email sent", "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}
