package notify

import (
	"errors"
	"fmt"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/jhillyerd/enmime"

	"famdir/internal/config"
	"famdir/internal/pipeline"
)

var ErrNoRecipients = errors.New("no directory recipients configured")

// Compose builds the delivery mail for one run: a plain text summary with the review workbook
// and the membership import attached.
func Compose(cfg config.Config, res pipeline.ProcessResult) (enmime.MailBuilder, error) {
	from, err := mail.ParseAddress(cfg.SMTPFrom)
	if err != nil {
		return enmime.MailBuilder{}, fmt.Errorf("SMTP_FROM: %w", err)
	}
	if len(cfg.DirectoryRecipients) == 0 {
		return enmime.MailBuilder{}, ErrNoRecipients
	}
	to := make([]mail.Address, 0, len(cfg.DirectoryRecipients))
	for _, raw := range cfg.DirectoryRecipients {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return enmime.MailBuilder{}, fmt.Errorf("DIRECTORY_RECIPIENTS: %w", err)
		}
		to = append(to, *addr)
	}

	report := res.Result.Report
	builder := enmime.Builder().
		From(from.Name, from.Address).
		ToAddrs(to).
		Subject(fmt.Sprintf("%s: %d students, %d warnings", cfg.DirectoryTitle, report.Students, len(report.Warnings))).
		Text([]byte(Summary(res)))
	for _, path := range res.Outputs {
		builder = builder.AddFileAttachment(path)
	}
	return builder, nil
}

// Summary is the text body of the delivery mail.
func Summary(res pipeline.ProcessResult) string {
	report := res.Result.Report
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", res.RunID)
	fmt.Fprintf(&b, "students=%d accepted=%d withheld=%d skipped=%d contacts=%d\n",
		report.Students, report.Accepted, report.Withheld, report.Skipped, len(res.Contacts))
	if len(res.NewHubs) > 0 {
		b.WriteString("\ncreate these hubs before loading the import:\n")
		for _, hub := range res.NewHubs {
			fmt.Fprintf(&b, "  %s\n", hub)
		}
	}
	if len(report.Warnings) > 0 {
		b.WriteString("\nwarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "  line %d %s: %s\n", w.LineNo, w.Student, w.Message)
		}
	}
	return b.String()
}

type Mailer struct {
	cfg config.Config
}

func NewMailer(cfg config.Config) (*Mailer, error) {
	if err := cfg.Require("SMTP_HOST", cfg.SMTPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("SMTP_FROM", cfg.SMTPFrom); err != nil {
		return nil, err
	}
	if len(cfg.DirectoryRecipients) == 0 {
		return nil, ErrNoRecipients
	}
	return &Mailer{cfg: cfg}, nil
}

func (m *Mailer) Send(res pipeline.ProcessResult) error {
	builder, err := Compose(m.cfg, res)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}
	sender := enmime.NewSMTP(fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort), auth)
	return builder.Send(sender)
}
