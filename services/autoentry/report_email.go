package autoentry

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
	// defaults to EmailAddress
	Recipient string `json:"recipient"`
}

// EmailReporter mails the run summary to the operator.
type EmailReporter struct {
	Config SmtpConfig
}

func (r EmailReporter) SendSummary(ctx context.Context, summary RunSummary) error {
	_, span := tracer.Start(ctx, "SendSummary")
	defer span.End()

	recipient := r.Config.Recipient
	if recipient == "" {
		recipient = r.Config.EmailAddress
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("giftbot <%s>", r.Config.EmailAddress)
	mail.To = []string{recipient}
	mail.Subject = fmt.Sprintf(
		"giftbot: entered %d giveaways for %d points",
		len(summary.Entered),
		summary.StartingPoints-summary.Account.Points,
	)
	mail.Text = []byte(summary.Render())

	addr := fmt.Sprintf("%s:%d", r.Config.Server, r.Config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", r.Config.EmailAddress, r.Config.Password, r.Config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send summary email")
		return err
	}
	return nil
}
