package resources

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-resource-client/resourceclient"
)

// Document is a legal document body.
type Document struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveMode is the operation the next Save will use.
type SaveMode string

const (
	SaveCreate SaveMode = "create"
	SaveUpdate SaveMode = "update"
)

// LegalDoc manages a single legal document. The document may not exist yet:
// a 404 on load is not an error and switches the next save to a create.
type LegalDoc struct {
	service

	mu      sync.Mutex
	missing bool
}

// NewLegalDoc returns a document service that assumes the document exists
// until a load says otherwise.
func NewLegalDoc(s service) *LegalDoc {
	return &LegalDoc{service: s}
}

// Name returns the resource name.
func (d *LegalDoc) Name() string {
	return d.name
}

// Load fetches the document. exists is false when the API answered 404.
func (d *LegalDoc) Load(ctx context.Context) (doc Document, exists bool, err error) {
	doc, err = readData[Document](ctx, d.service, nil)
	if err != nil {
		if resourceclient.IsNotFound(err) {
			d.setMissing(true)
			return Document{}, false, nil
		}
		return Document{}, false, err
	}
	d.setMissing(false)
	return doc, true, nil
}

// Mode reports whether the next Save creates or updates.
func (d *LegalDoc) Mode() SaveMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.missing {
		return SaveCreate
	}
	return SaveUpdate
}

// Save writes content, creating the document if the last load saw a 404.
func (d *LegalDoc) Save(ctx context.Context, content string) (SaveMode, error) {
	mode := d.Mode()
	op := OpUpdate
	if mode == SaveCreate {
		op = OpCreate
	}

	if _, err := d.write(ctx, op, writeArgs{body: map[string]string{"content": content}}); err != nil {
		return mode, err
	}
	if mode == SaveCreate {
		d.setMissing(false)
	}
	return mode, nil
}

func (d *LegalDoc) setMissing(v bool) {
	d.mu.Lock()
	d.missing = v
	d.mu.Unlock()
}
