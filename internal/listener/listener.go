package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"famdir/internal/config"
	"famdir/internal/connectors"
	gmailconnector "famdir/internal/connectors/gmail"
	imapconnector "famdir/internal/connectors/imap"
	"famdir/internal/notify"
	"famdir/internal/pipeline"
	"famdir/internal/storage"
)

const lastCycleKey = "listener.last_cycle"

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.RunCycle(); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.ListenerIntervalSec) * time.Second):
		}
	}
}

// RunCycle fetches new roster mail, builds every pending export and, when enabled, mails the
// outputs of each successful build.
func (s *Service) RunCycle() error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.ListenerProvider))
	mailConnector, err := MakeConnector(s.cfg, provider)
	if err != nil {
		return err
	}
	return s.runCycle(provider, mailConnector)
}

func (s *Service) runCycle(provider string, mailConnector connectors.MailConnector) error {
	fetchService := connectors.NewFetchService(s.db, s.cfg.InboxDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.ListenerLabel, s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	built, err := processor.ProcessPending(s.cfg.ListenerFetchMax)
	if err != nil {
		return err
	}

	mailed := 0
	if s.cfg.ListenerAutoMail && len(built) > 0 {
		mailer, err := notify.NewMailer(s.cfg)
		if err != nil {
			return err
		}
		for _, res := range built {
			if err := mailer.Send(res); err != nil {
				return fmt.Errorf("mail run %s: %w", res.RunID, err)
			}
			mailed++
		}
	}

	if err := s.db.SetMetadata(lastCycleKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	fmt.Printf("listener cycle done provider=%s fetched=%d rosters=%d built=%d mailed=%d\n",
		provider, fetchResult.Fetched, fetchResult.Rosters, len(built), mailed)
	return nil
}

func MakeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
