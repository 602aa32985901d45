package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"famdir/internal"
	"famdir/internal/config"
	"famdir/internal/roster"
	"famdir/internal/storage"
)

const (
	ReviewFilename   = "directory-review.xlsx"
	ContactsFilename = "ready_to_load.csv"
)

// Result is everything the document renderer and the membership export consume.
type Result struct {
	Directory internal.Directory
	Indexes   internal.Indexes
	Report    internal.Report
}

// Build runs redaction, normalization and indexing over one pool. It has no side effects; a
// fatal condition returns an error and no partial result.
func Build(pool internal.Pool) (Result, error) {
	if pool.WithholdingKey == "" {
		return Result{}, roster.ErrMissingWithholdingColumn
	}

	report := internal.Report{}
	rows := make([]internal.RedactedRow, 0, len(pool.Rows))
	for _, raw := range pool.Rows {
		row := Redact(raw, pool.WithholdingKey)
		switch row.Disclosure {
		case internal.DisclosureSkip:
			report.Skipped++
			continue
		case internal.DisclosureShare:
			report.Accepted++
		case internal.DisclosureWithhold:
			report.Withheld++
		case internal.DisclosureUnrecognized:
			report.Withheld++
			report.Warn(row.LineNo, row.Student, fmt.Sprintf("withholding flag %q not understood, treating as withheld", raw.Get(pool.WithholdingKey)))
		}
		rows = append(rows, row)
	}

	dir, err := Normalize(rows, &report)
	if err != nil {
		return Result{}, err
	}
	indexes, err := BuildIndexes(dir)
	if err != nil {
		return Result{}, err
	}
	report.Students = len(dir.Order)

	return Result{Directory: dir, Indexes: indexes, Report: report}, nil
}

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	RunID    string
	Result   Result
	Contacts []internal.Contact
	NewHubs  []string
	Outputs  []string
}

// ProcessFile builds one roster export and writes the review workbook and the membership
// import into outDir. The run is recorded even when it produced warnings.
func (s *ProcessingService) ProcessFile(path, outDir string) (ProcessResult, error) {
	start := time.Now()
	pool, err := roster.ReadFile(path)
	if err != nil {
		return ProcessResult{}, err
	}

	res, err := Build(pool)
	if err != nil {
		return ProcessResult{}, err
	}

	runCtx := NewRunContext()
	contacts := BuildContacts(res.Directory, MembershipOptions{
		EndYear:     s.cfg.MembershipEndYear,
		AdminEmails: s.cfg.MembershipAdminEmails,
	}, runCtx, &res.Report)

	reviewPath := filepath.Join(outDir, ReviewFilename)
	if err := ExportReviewXLSX(res, reviewPath); err != nil {
		return ProcessResult{}, err
	}
	contactsPath := filepath.Join(outDir, ContactsFilename)
	if err := ExportContactsCSV(contacts, contactsPath); err != nil {
		return ProcessResult{}, err
	}

	counts := res.Report.Counts()
	counts["contacts"] = len(contacts)
	counts["totalMs"] = int(time.Since(start).Milliseconds())
	run := internal.RunRow{
		ID:         uuid.New().String(),
		Source:     pool.Source,
		SourceHash: pool.SourceHash,
		Counts:     counts,
	}
	newHubs, err := s.db.RecordRun(run, res.Report.Warnings, runCtx.Hubs())
	if err != nil {
		return ProcessResult{}, err
	}

	return ProcessResult{
		RunID:    run.ID,
		Result:   res,
		Contacts: contacts,
		NewHubs:  newHubs,
		Outputs:  []string{reviewPath, contactsPath},
	}, nil
}

// ProcessPending builds every fetched roster export. A failed export is marked and skipped so
// one bad file does not block the queue.
func (s *ProcessingService) ProcessPending(limit int) ([]ProcessResult, error) {
	pending, err := s.db.ListRosterExportsByStatus(storage.StatusFetched, limit)
	if err != nil {
		return nil, err
	}

	var out []ProcessResult
	for _, export := range pending {
		outDir := filepath.Join(s.cfg.OutputDir, "exports", fmt.Sprintf("%d_%s", export.ID, export.Hash[:12]))
		res, err := s.ProcessFile(export.Path, outDir)
		if err != nil {
			fmt.Printf("roster export id=%d file=%s failed: %v\n", export.ID, export.Filename, err)
			if err := s.db.UpdateRosterExportStatus(export.ID, storage.StatusFailed); err != nil {
				return out, err
			}
			continue
		}
		if err := s.db.UpdateRosterExportStatus(export.ID, storage.StatusBuilt); err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}
