// Package notifier reacts to order events: it enriches each event with
// cross-service lookups and delivers an outbound notification.
package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"orderpipeline/config"
	"orderpipeline/internal/models"
	"orderpipeline/internal/util"

	"go.uber.org/zap"
)

// Notifier delivers a fully-resolved order notification.
type Notifier interface {
	Notify(ctx context.Context, order *models.Order) error
}

// Mailer sends order notifications to the admin mailbox over SMTP.
type Mailer struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewMailer creates a new SMTP mailer
func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

// Notify implements Notifier.
func (m *Mailer) Notify(_ context.Context, order *models.Order) error {
	var lines []string
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("- %s x %d", item.Name, item.Quantity))
	}

	body := fmt.Sprintf(
		"New order received\r\n\r\nUser: %s (ID: %s)\r\nPlaced: %s\r\n\r\nProducts:\r\n%s\r\n\r\nTotal: %.2f\r\n",
		order.Username, order.UserID, order.CreatedAt.Format("2006-01-02 15:04:05"),
		strings.Join(lines, "\r\n"), order.TotalAmount)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: New order received\r\n\r\n%s",
		m.cfg.From, m.cfg.AdminEmail, body)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.AdminEmail}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send notification mail: %w", err)
	}

	m.logger.Info("notification mail sent",
		zap.String("order_id", order.ID),
		zap.String("to", m.cfg.AdminEmail))
	return nil
}
