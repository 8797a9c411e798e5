package catalog

import "context"

// Operation is a mutation applied to a single record by the provider
type Operation string

const (
	// OperationDereference removes the record from the catalog
	OperationDereference Operation = "dereference"
)

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks -source=provider.go Provider

// Provider is the backing API collaborator supplying the catalog and
// performing mutations. Errors are returned unchanged to the caller and are
// never retried by the explorer.
type Provider interface {
	// FetchCollection returns the raw records and the caller declarations
	FetchCollection(ctx context.Context) (*Collection, error)

	// MutateRecord applies an operation to the record with the given id
	MutateRecord(ctx context.Context, id int, op Operation) error

	// UpdateCallerDeclaration sets the caller declaration for the record with the given id
	UpdateCallerDeclaration(ctx context.Context, id int, decl Declaration) error

	// GetSource returns a human-readable description of the data source
	GetSource() string
}
