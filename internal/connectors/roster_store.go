package connectors

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"famdir/internal"
	"famdir/internal/pipeline"
	"famdir/internal/storage"
	"famdir/internal/util"
)

type RosterStoreService struct {
	db       *storage.DB
	inboxDir string
}

func NewRosterStoreService(db *storage.DB, inboxDir string) *RosterStoreService {
	return &RosterStoreService{db: db, inboxDir: inboxDir}
}

// Store keeps the raw message and every spreadsheet attachment of a roster mail, content
// addressed by sha256, and queues each attachment for a build. Messages that do not look like
// a roster export are ignored.
func (s *RosterStoreService) Store(msg internal.FetchedMailMessage) ([]internal.RosterExportRow, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(msg.Raw))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(env.Attachments))
	for _, att := range env.Attachments {
		names = append(names, att.FileName)
	}
	subject := util.FirstNonEmpty(msg.Subject, env.GetHeader("Subject"))
	detect := pipeline.DetectRosterExport(subject, names)
	if !detect.IsRoster {
		return nil, nil
	}

	if _, err := writeContent(filepath.Join(s.inboxDir, "mail"), ".eml", msg.Raw); err != nil {
		return nil, err
	}

	var out []internal.RosterExportRow
	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if !pipeline.IsSpreadsheetName(filename) {
			continue
		}
		hash, err := writeContent(s.inboxDir, strings.ToLower(filepath.Ext(filename)), att.Content)
		if err != nil {
			return nil, err
		}
		row, err := s.db.UpsertRosterExport(internal.RosterExportRow{
			Provider:   msg.Provider,
			MessageID:  msg.MessageID,
			Subject:    subject,
			Sender:     msg.From,
			ReceivedAt: msg.ReceivedAt,
			Filename:   filename,
			Hash:       hash,
			Path:       filepath.Join(s.inboxDir, hash+strings.ToLower(filepath.Ext(filename))),
		})
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func writeContent(dir, ext string, content []byte) (string, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, hash+ext)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return "", err
		}
	}
	return hash, nil
}
