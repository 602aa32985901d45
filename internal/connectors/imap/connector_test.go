package imap

import (
	"testing"

	"github.com/emersion/go-imap"

	"famdir/internal/config"
)

func TestSearchCriteria(t *testing.T) {
	cfg := config.Config{
		IMAPHost: "imap.example.test", IMAPUser: "pta", IMAPPassword: "secret",
		RosterSender: "registrar@school.example", RosterSubject: "Directory",
	}
	c, err := NewConnector(cfg)
	if err != nil {
		t.Fatal(err)
	}
	criteria := c.SearchCriteria()
	if got := criteria.Header.Get("From"); got != "registrar@school.example" {
		t.Fatalf("from=%q", got)
	}
	if got := criteria.Header.Get("Subject"); got != "Directory" {
		t.Fatalf("subject=%q", got)
	}
	if len(criteria.WithoutFlags) != 1 || criteria.WithoutFlags[0] != imap.SeenFlag {
		t.Fatalf("flags=%v", criteria.WithoutFlags)
	}
}

func TestNewConnectorRequiresCredentials(t *testing.T) {
	if _, err := NewConnector(config.Config{IMAPHost: "imap.example.test"}); err == nil {
		t.Fatal("expected missing IMAP_USER error")
	}
}

func TestFormatAddresses(t *testing.T) {
	got := formatAddresses([]*imap.Address{
		{PersonalName: "Front Office", MailboxName: "office", HostName: "school.example"},
		nil,
		{MailboxName: "registrar", HostName: "school.example"},
	})
	if got != "Front Office <office@school.example>, registrar@school.example" {
		t.Fatalf("got %q", got)
	}
}
