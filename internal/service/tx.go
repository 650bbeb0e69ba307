package service

import "context"

// TxRepositories are the repositories a generate or approve transaction writes through.
type TxRepositories interface {
	Knowledge() KnowledgeRepositoryInterface
	Deliverables() DeliverableRepositoryInterface
	Audit() AuditRepositoryInterface
}

// TxRunner runs fn in one transaction. A non-nil error from fn rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
