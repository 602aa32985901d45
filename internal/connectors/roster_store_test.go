package connectors

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jhillyerd/enmime"

	"famdir/internal"
	"famdir/internal/storage"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type fakeConnector struct {
	messages []internal.FetchedMailMessage
}

func (f fakeConnector) FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error) {
	if len(f.messages) > max {
		return f.messages[:max], nil
	}
	return f.messages, nil
}

func buildMail(t *testing.T, subject, filename, contentType string, attachment []byte) []byte {
	t.Helper()
	part, err := enmime.Builder().
		From("Front Office", "office@school.example").
		To("PTA", "pta@school.example").
		Subject(subject).
		Text([]byte("Attached is this week's export.")).
		AddAttachment(attachment, contentType, filename).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func openTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "famdir.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreQueuesRosterAttachment(t *testing.T) {
	db := openTestDB(t)
	inbox := t.TempDir()
	store := NewRosterStoreService(db, inbox)

	content := []byte("PK\x03\x04 fake workbook")
	msg := internal.FetchedMailMessage{
		Provider:   "imap",
		MessageID:  "<abc@school.example>",
		From:       "office@school.example",
		ReceivedAt: "2026-09-01T08:00:00Z",
		Raw:        buildMail(t, "Student roster export", "roster.xlsx", xlsxType, content),
	}

	rows, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("len=%d", len(rows))
	}
	row := rows[0]
	if row.Status != storage.StatusFetched || row.Filename != "roster.xlsx" || row.Subject != "Student roster export" {
		t.Fatalf("row=%+v", row)
	}
	saved, err := os.ReadFile(row.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, content) {
		t.Fatalf("saved=%q", saved)
	}

	again, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != 1 || again[0].ID != row.ID {
		t.Fatalf("again=%+v", again)
	}
}

func TestStoreIgnoresUnrelatedMail(t *testing.T) {
	db := openTestDB(t)
	store := NewRosterStoreService(db, t.TempDir())

	msg := internal.FetchedMailMessage{
		Provider:  "imap",
		MessageID: "<menu@school.example>",
		Raw:       buildMail(t, "Lunch menu", "menu.pdf", "application/pdf", []byte("%PDF-1.4")),
	}
	rows, err := store.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("len=%d", len(rows))
	}
}

func TestFetchAndStoreCounts(t *testing.T) {
	db := openTestDB(t)
	conn := fakeConnector{messages: []internal.FetchedMailMessage{
		{Provider: "gmail", MessageID: "m1", Raw: buildMail(t, "Directory export", "directory.xlsx", xlsxType, []byte("PK\x03\x04 one"))},
		{Provider: "gmail", MessageID: "m2", Raw: buildMail(t, "Lunch menu", "menu.pdf", "application/pdf", []byte("%PDF"))},
	}}

	result, err := NewFetchService(db, t.TempDir(), conn).FetchAndStore("INBOX", 10)
	if err != nil {
		t.Fatal(err)
	}
	if result.Fetched != 2 || result.Rosters != 1 || result.Skipped != 1 {
		t.Fatalf("result=%+v", result)
	}

	pending, err := db.ListRosterExportsByStatus(storage.StatusFetched, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].MessageID != "m1" {
		t.Fatalf("pending=%+v", pending)
	}
}
