package connectors

import (
	"famdir/internal/storage"
)

type FetchService struct {
	connector MailConnector
	store     *RosterStoreService
}

type FetchResult struct {
	Fetched int
	Rosters int
	Skipped int
}

func NewFetchService(db *storage.DB, inboxDir string, connector MailConnector) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewRosterStoreService(db, inboxDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		exports, err := s.store.Store(msg)
		if err != nil {
			return result, err
		}
		if len(exports) == 0 {
			result.Skipped++
			continue
		}
		result.Rosters += len(exports)
	}

	return result, nil
}
