package store

import "context"

// Store is the transactional persistence abstraction consumed by every EPP
// object handler. A single Txn is checked out per command and spans the
// entire handler invocation, closing the check-then-write windows that
// create/update/delete/renew/transfer rely on.
type Store interface {
	// WithTransaction runs fn inside a single transaction scoped to one EPP
	// command. If fn returns an error the transaction is rolled back,
	// otherwise it is committed. Rollback/commit is guaranteed on every exit
	// path, including panics propagated out of fn.
	WithTransaction(ctx context.Context, fn func(tx Txn) error) error

	// Registrar looks up credentials for login, outside of any domain
	// object transaction.
	Registrar(ctx context.Context, clID string) (*Registrar, error)

	// Close releases resources held by the store (connection pools, etc).
	Close() error
}

// Txn is the set of operations available within a single command's
// transaction. Implementations must provide at least repeatable-read
// isolation so that the check-then-write patterns used by create/update/
// delete/renew/transfer cannot lose concurrent updates.
type Txn interface {
	// Domains
	GetDomain(ctx context.Context, name string) (*Domain, error)
	PutDomain(ctx context.Context, d *Domain) error
	DeleteDomain(ctx context.Context, name string) error

	// Contacts
	GetContact(ctx context.Context, handle string) (*Contact, error)
	PutContact(ctx context.Context, c *Contact) error
	DeleteContact(ctx context.Context, handle string) error

	// Hosts
	GetHost(ctx context.Context, name string) (*Host, error)
	PutHost(ctx context.Context, h *Host) error
	DeleteHost(ctx context.Context, name string) error

	// Domain <-> host associations
	AddDomainNS(ctx context.Context, domain, host string) error
	RemoveDomainNS(ctx context.Context, domain, host string) error

	// Referential integrity queries
	CountDomainsReferencingContact(ctx context.Context, handle string) (int, error)
	CountDomainsReferencingHost(ctx context.Context, name string) (int, error)

	// Transfers
	GetLatestTransfer(ctx context.Context, domain string) (*Transfer, error)
	PutTransfer(ctx context.Context, t *Transfer) error
	PendingTransfersOlderThan(ctx context.Context, cutoffDays int) ([]*Transfer, error)
}
