package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository bound to the same database handle.
type Repositories struct {
	Users      UserRepository
	Categories CategoryRepository
	Products   ProductRepository
	Carts      CartRepository
	Orders     OrderRepository
}

// TxManager runs a unit of work in one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(r Repositories) error) error
}

// NewGORMRepositories builds all GORM repositories on db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:      NewGORMUserRepository(db),
		Categories: NewGORMCategoryRepository(db),
		Products:   NewGORMProductRepository(db),
		Carts:      NewGORMCartRepository(db),
		Orders:     NewGORMOrderRepository(db),
	}
}

// GORMTxManager is a GORM implementation of TxManager.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{db: db}
}

// WithinTransaction rebuilds the repositories on the transaction handle and passes them to fn.
func (m *GORMTxManager) WithinTransaction(ctx context.Context, fn func(r Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRepositories(tx))
	})
}
