package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmlTemplate "html/template"
	textTemplate "text/template"
	"time"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

const inviteTemplate = "invite"

// Sender is the part of *mail.Client the service uses.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Service struct {
	config        *config.MailConfig
	client        Sender
	htmlTemplates *htmlTemplate.Template
	textTemplates *textTemplate.Template
	logger        *logging.Service
	appName       string
	registerURL   string
}

type TemplateData map[string]any

func NewService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	mailCfg := &cfg.Mail
	logger.Info("initializing mail service",
		zap.String("host", mailCfg.Host),
		zap.Int("port", mailCfg.Port),
		zap.String("encryption", mailCfg.Encryption),
		zap.String("from_address", mailCfg.FromAddress))

	client, err := mail.NewClient(mailCfg.Host, clientOptions(mailCfg)...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", mailCfg.Host),
			zap.Int("port", mailCfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewServiceWithClient(cfg, logger, client)
}

// NewServiceWithClient builds the service around an existing sender.
func NewServiceWithClient(cfg *config.Config, logger *logging.Service, client Sender) (*Service, error) {
	if cfg.Mail.FromAddress == "" {
		logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	service := &Service{
		config:      &cfg.Mail,
		client:      client,
		logger:      logger,
		appName:     cfg.App.Name,
		registerURL: cfg.Invite.RegisterURL,
	}

	if err := service.loadTemplates(); err != nil {
		logger.Error("failed to load mail templates", zap.Error(err))
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	logger.Info("mail service initialized successfully")
	return service, nil
}

func clientOptions(cfg *config.MailConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		opts = append(opts, mail.WithSSL())
	case "none":
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password))
	}
	return opts
}

func (s *Service) loadTemplates() error {
	var err error
	s.htmlTemplates, err = htmlTemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse HTML templates: %w", err)
	}
	s.textTemplates, err = textTemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return fmt.Errorf("failed to parse text templates: %w", err)
	}

	s.logger.Debug("mail templates loaded",
		zap.Int("html_templates", len(s.htmlTemplates.Templates())),
		zap.Int("text_templates", len(s.textTemplates.Templates())))
	return nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	var err error
	if s.config.FromName != "" {
		err = message.FromFormat(s.config.FromName, s.config.FromAddress)
	} else {
		err = message.From(s.config.FromAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}
	return message, nil
}

func (s *Service) Send(ctx context.Context, message *mail.Msg) error {
	s.logger.Debug("sending email message")

	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Info("email sent successfully", zap.Duration("send_duration", duration))
	return nil
}

// SendInvite mails a freshly created invite token to a prospective user.
func (s *Service) SendInvite(ctx context.Context, to, token string, expiresAt *time.Time) error {
	data := TemplateData{
		"AppName":     s.appName,
		"Token":       token,
		"RegisterURL": s.registerURL,
		"ExpiresAt":   "",
	}
	if expiresAt != nil {
		data["ExpiresAt"] = expiresAt.UTC().Format("2 January 2006 15:04 MST")
	}

	return s.SendTemplate(ctx, inviteTemplate, []string{to},
		fmt.Sprintf("You're invited to %s", s.appName), data)
}

func (s *Service) SendTemplate(ctx context.Context, templateName string, to []string, subject string, data TemplateData) error {
	s.logger.Info("sending template email",
		zap.String("template", templateName),
		zap.Int("recipients", len(to)),
		zap.String("subject", subject))

	message, err := s.NewMessage()
	if err != nil {
		return err
	}

	if err := message.To(to...); err != nil {
		s.logger.Error("failed to set TO addresses", zap.Error(err))
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}

	message.Subject(subject)

	if err := s.renderTemplate(templateName, data, message); err != nil {
		s.logger.Error("failed to render template",
			zap.Error(err),
			zap.String("template", templateName))
		return fmt.Errorf("failed to render template: %w", err)
	}

	return s.Send(ctx, message)
}

func (s *Service) renderTemplate(templateName string, data TemplateData, message *mail.Msg) error {
	html := s.htmlTemplates.Lookup(templateName + ".html")
	text := s.textTemplates.Lookup(templateName + ".txt")
	if html == nil && text == nil {
		return fmt.Errorf("template '%s' not found", templateName)
	}

	if html != nil {
		var buf bytes.Buffer
		if err := html.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute HTML template: %w", err)
		}
		message.SetBodyString(mail.TypeTextHTML, buf.String())
	}

	if text != nil {
		var buf bytes.Buffer
		if err := text.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute text template: %w", err)
		}
		if html != nil {
			message.AddAlternativeString(mail.TypeTextPlain, buf.String())
		} else {
			message.SetBodyString(mail.TypeTextPlain, buf.String())
		}
	}
	return nil
}
