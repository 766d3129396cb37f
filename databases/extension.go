package databases

// go generate: mockery --name ExtensionDatabase

import (
	"context"

	"github.com/linesmerrill/court-compliance-api/models"
)

// ExtensionDatabase contains the methods to use with extension records
type ExtensionDatabase interface {
	FindOne(ctx context.Context, namespace, id string) (*models.Extension, Revision, error)
	Find(ctx context.Context, namespace string) ([]models.Extension, error)
	Insert(ctx context.Context, namespace string, ext *models.Extension) error
	// SaveIfUnchanged writes ext only if the stored record still matches rev
	SaveIfUnchanged(ctx context.Context, namespace string, ext *models.Extension, rev Revision) (bool, error)
}

type extensionDatabase struct {
	records recordStore[models.Extension]
}

// NewExtensionDatabase initializes a new instance of extension database with the provided store
func NewExtensionDatabase(db KeyValueStore) ExtensionDatabase {
	return &extensionDatabase{
		records: recordStore[models.Extension]{db: db, entity: extensionEntity},
	}
}

func (e *extensionDatabase) FindOne(ctx context.Context, namespace, id string) (*models.Extension, Revision, error) {
	ext, raw, err := e.records.findOne(ctx, namespace, id)
	return ext, raw, err
}

func (e *extensionDatabase) Find(ctx context.Context, namespace string) ([]models.Extension, error) {
	return e.records.find(ctx, namespace)
}

func (e *extensionDatabase) Insert(ctx context.Context, namespace string, ext *models.Extension) error {
	return e.records.save(ctx, namespace, ext.ID, ext)
}

func (e *extensionDatabase) SaveIfUnchanged(ctx context.Context, namespace string, ext *models.Extension, rev Revision) (bool, error) {
	return e.records.swap(ctx, namespace, ext.ID, rev, ext)
}
