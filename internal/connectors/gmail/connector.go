package gmail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"famdir/internal"
	"famdir/internal/config"
)

type Connector struct {
	service  *gmail.Service
	query    string
	throttle *throttle
}

func NewConnector(cfg config.Config) (*Connector, error) {
	if err := cfg.Require("GMAIL_CLIENT_ID", cfg.GmailClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_CLIENT_SECRET", cfg.GmailClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GMAIL_REFRESH_TOKEN", cfg.GmailRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GmailRedirectURI,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
	svc, err := gmail.NewService(context.Background(), option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{
		service:  svc,
		query:    SearchQuery(cfg.RosterSender, cfg.RosterSubject),
		throttle: newThrottle(cfg.GmailRequestsPerSec),
	}, nil
}

// SearchQuery narrows the mailbox to messages that carry a spreadsheet.
func SearchQuery(sender, subject string) string {
	parts := []string{"has:attachment", "{filename:xlsx filename:xls filename:html}"}
	if s := strings.TrimSpace(sender); s != "" {
		parts = append(parts, "from:"+s)
	}
	if s := strings.TrimSpace(subject); s != "" {
		parts = append(parts, fmt.Sprintf("subject:(%s)", s))
	}
	return strings.Join(parts, " ")
}

func (c *Connector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	c.throttle.wait()
	listResp, err := c.service.Users.Messages.List("me").LabelIds(label).Q(c.query).MaxResults(int64(max)).Do()
	if err != nil {
		return nil, err
	}

	out := make([]internal.FetchedMailMessage, 0, len(listResp.Messages))
	for _, msgRef := range listResp.Messages {
		if msgRef.Id == "" {
			continue
		}

		c.throttle.wait()
		rawResp, err := c.service.Users.Messages.Get("me", msgRef.Id).Format("raw").Do()
		if err != nil {
			return nil, err
		}
		if rawResp.Raw == "" {
			continue
		}
		rawBytes, err := decodeBase64URL(rawResp.Raw)
		if err != nil {
			return nil, err
		}

		msg := internal.FetchedMailMessage{
			Provider:   "gmail",
			MessageID:  msgRef.Id,
			ReceivedAt: time.UnixMilli(rawResp.InternalDate).UTC().Format(time.RFC3339),
			Raw:        rawBytes,
		}
		if env, err := enmime.ReadEnvelope(bytes.NewReader(rawBytes)); err == nil {
			msg.Subject = env.GetHeader("Subject")
			msg.From = env.GetHeader("From")
			if id := env.GetHeader("Message-ID"); id != "" {
				msg.MessageID = id
			}
		}
		out = append(out, msg)
	}

	return out, nil
}

func decodeBase64URL(input string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	decoded, err = base64.URLEncoding.DecodeString(input)
	if err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("decode gmail raw payload: %w", err)
}
