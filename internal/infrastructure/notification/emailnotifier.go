// Package notification delivers best-effort user notifications over SMTP.
package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/filemart-io/filemart/internal/shared/config"
	"github.com/filemart-io/filemart/internal/shared/logger"
)

// RecipientResolver maps a user ID to an email address. The identity service
// owns user accounts; this engine only reads addresses.
type RecipientResolver interface {
	EmailForUser(ctx context.Context, userID uint) (string, error)
}

// EmailNotifier sends download and device events by email. Every send is
// best-effort; callers run it detached and only log failures.
type EmailNotifier struct {
	cfg      *config.EmailConfig
	dialer   *gomail.Dialer
	resolver RecipientResolver
	logger   logger.Interface
}

func NewEmailNotifier(cfg *config.EmailConfig, resolver RecipientResolver, logger logger.Interface) *EmailNotifier {
	return &EmailNotifier{
		cfg:      cfg,
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		resolver: resolver,
		logger:   logger,
	}
}

func (n *EmailNotifier) NotifyFileDownloaded(ctx context.Context, userID uint, fileTitle string) error {
	subject := fmt.Sprintf("Your download of %q is ready", fileTitle)
	plainBody := fmt.Sprintf(`Hi,

Your download link for %q has been issued. The link stays valid for a limited
time and can be reused until it expires.

If you did not request this download, review your trusted devices in your
account settings.
`, fileTitle)

	return n.send(ctx, userID, subject, plainBody)
}

func (n *EmailNotifier) NotifyDeviceTrusted(ctx context.Context, userID uint, deviceName string) error {
	if deviceName == "" {
		deviceName = "A new device"
	}
	subject := "New device added to your subscription"
	plainBody := fmt.Sprintf(`Hi,

%s was just added to your subscription's trusted devices.

If this wasn't you, remove the device in your account settings.
`, deviceName)

	return n.send(ctx, userID, subject, plainBody)
}

func (n *EmailNotifier) send(ctx context.Context, userID uint, subject, plainBody string) error {
	to, err := n.resolver.EmailForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}
	if to == "" {
		n.logger.Debugw("user has no email address, skipping notification", "user_id", userID)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.cfg.FromAddress, n.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Debugw("notification email sent", "user_id", userID, "subject", subject)
	return nil
}
