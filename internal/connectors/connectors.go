package connectors

import "famdir/internal"

// MailConnector lists candidate roster messages from a mailbox.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
