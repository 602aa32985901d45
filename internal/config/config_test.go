package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MEMBERSHIP_END_YEAR", "2025")
	t.Setenv("MEMBERSHIP_ADMIN_EMAILS", " a@example.com, ,B@example.com ")
	t.Setenv("IMAP_SECURE", "off")
	t.Setenv("IMAP_PORT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MembershipEndYear != 2025 {
		t.Fatalf("end year=%d", cfg.MembershipEndYear)
	}
	if len(cfg.MembershipAdminEmails) != 2 || cfg.MembershipAdminEmails[1] != "B@example.com" {
		t.Fatalf("admins=%v", cfg.MembershipAdminEmails)
	}
	if cfg.IMAPSecure {
		t.Fatal("IMAP_SECURE=off should disable tls")
	}
	if cfg.IMAPPort != 993 {
		t.Fatalf("port=%d", cfg.IMAPPort)
	}
	if err := cfg.Require("SMTP_HOST", ""); err == nil {
		t.Fatal("expected missing var error")
	}
}

func TestDefaultEndYear(t *testing.T) {
	if got := defaultEndYear(time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)); got != 2025 {
		t.Fatalf("got %d", got)
	}
	if got := defaultEndYear(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)); got != 2025 {
		t.Fatalf("got %d", got)
	}
}
