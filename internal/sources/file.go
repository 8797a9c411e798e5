package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
)

// fileProvider serves a catalog collection read from a local file
type fileProvider struct {
	path      string
	validator CollectionValidator

	mu           sync.Mutex
	callerEmail  string
	known        map[int]struct{}
	dereferenced map[int]struct{}
	declarations map[int]catalog.Declaration
}

var _ catalog.Provider = (*fileProvider)(nil)

// NewFileProvider creates a provider reading the collection at the configured path
func NewFileProvider(cfg *config.FileConfig) (catalog.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("file configuration is required")
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	return &fileProvider{
		path:         cfg.Path,
		validator:    NewCollectionValidator(),
		dereferenced: make(map[int]struct{}),
		declarations: make(map[int]catalog.Declaration),
	}, nil
}

// GetSource returns the file the collection is read from
func (p *fileProvider) GetSource() string {
	return "file:" + p.path
}

// FetchCollection reads and validates the file, then applies the mutations
// recorded since the provider was created
func (p *fileProvider) FetchCollection(ctx context.Context) (*catalog.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", p.path)
		}
		return nil, fmt.Errorf("failed to read file %s: %w", p.path, err)
	}

	collection, err := p.validator.ValidateData(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", p.path, err)
	}

	slog.Debug("Read catalog file",
		"path", p.path,
		"hash", fmt.Sprintf("%x", sha256.Sum256(data)),
		"record_count", len(collection.Records))

	p.mu.Lock()
	defer p.mu.Unlock()

	p.callerEmail = collection.CallerEmail
	p.known = make(map[int]struct{}, len(collection.Records))
	for i := range collection.Records {
		id := collection.Records[i].ID
		p.known[id] = struct{}{}
		if _, ok := p.dereferenced[id]; ok {
			collection.Records[i].Dereferenced = true
		}
	}

	if len(p.declarations) > 0 {
		collection.Declarations = slices.DeleteFunc(collection.Declarations, func(d catalog.CallerDeclaration) bool {
			_, overridden := p.declarations[d.RecordID]
			return overridden
		})
		ids := make([]int, 0, len(p.declarations))
		for id := range p.declarations {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			collection.Declarations = append(collection.Declarations, declarationsFor(id, p.declarations[id])...)
		}
	}

	// declarations are nil exactly when the caller is anonymous
	switch {
	case collection.CallerEmail == "":
		collection.Declarations = nil
	case collection.Declarations == nil:
		collection.Declarations = []catalog.CallerDeclaration{}
	}

	return collection, nil
}

// MutateRecord records the operation in memory
func (p *fileProvider) MutateRecord(_ context.Context, id int, op catalog.Operation) error {
	if op != catalog.OperationDereference {
		return fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkKnownLocked(id); err != nil {
		return err
	}
	p.dereferenced[id] = struct{}{}
	return nil
}

// UpdateCallerDeclaration records the declaration in memory
func (p *fileProvider) UpdateCallerDeclaration(_ context.Context, id int, decl catalog.Declaration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkKnownLocked(id); err != nil {
		return err
	}
	if p.callerEmail == "" {
		return ErrAnonymousCaller
	}
	p.declarations[id] = decl
	return nil
}

// checkKnownLocked fails for records missing from the last read
func (p *fileProvider) checkKnownLocked(id int) error {
	if p.known == nil {
		return fmt.Errorf("collection has not been read from %s yet", p.path)
	}
	if _, ok := p.known[id]; !ok {
		return fmt.Errorf("%w: %d", catalog.ErrRecordNotFound, id)
	}
	if _, ok := p.dereferenced[id]; ok {
		return fmt.Errorf("%w: %d", catalog.ErrRecordNotFound, id)
	}
	return nil
}
