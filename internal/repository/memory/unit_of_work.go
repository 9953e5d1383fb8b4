package memory

import (
	"context"
	"fmt"

	"sales-copilot-be/internal/repository/contract"
	"sales-copilot-be/internal/repository/unitofwork"

	"github.com/patrickmn/go-cache"
)

type repositoryFactory struct {
	store *Store
}

// NewRepositoryFactory serves units of work backed by store.
func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

type unitOfWork struct {
	store   *Store
	journal *journal
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.journal != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.txMu.Lock()
	u.journal = newJournal()
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.journal == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.journal = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.journal == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.journal.undo()
	u.journal = nil
	u.store.txMu.Unlock()
	return nil
}

// record journals key before a write when a transaction is open.
func (u *unitOfWork) record(c *cache.Cache, key string) {
	if u == nil {
		return
	}
	u.journal.record(c, key)
}

func (u *unitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &chatSessionRepository{cache: u.store.sessions, tx: u}
}

func (u *unitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &chatMessageRepository{cache: u.store.messages, tx: u}
}
