package service

import "context"

type testTxRepos struct {
	knowledge    KnowledgeRepositoryInterface
	deliverables DeliverableRepositoryInterface
	audit        AuditRepositoryInterface
}

func (t *testTxRepos) Knowledge() KnowledgeRepositoryInterface {
	return t.knowledge
}

func (t *testTxRepos) Deliverables() DeliverableRepositoryInterface {
	return t.deliverables
}

func (t *testTxRepos) Audit() AuditRepositoryInterface {
	return t.audit
}

type testTxRunner struct {
	repos  TxRepositories
	err    error
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
