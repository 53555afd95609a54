package unitofwork

import "context"

// RepositoryFactory abstracts the storage backend: the relational
// implementation and the in-memory one are selected at composition
// time behind this single capability set.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
