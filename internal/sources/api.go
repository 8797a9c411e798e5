package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/httpclient"
)

const (
	recordsPath      = "/v0/records"
	declarationsPath = "/v0/declarations"
)

type recordsResponse struct {
	Records []catalog.APIRecord `json:"records"`
}

type declarationsResponse struct {
	Declarations []catalog.CallerDeclaration `json:"declarations"`
}

type operationRequest struct {
	Operation catalog.Operation `json:"operation"`
}

type declarationRequest struct {
	RecordID   int  `json:"recordId"`
	IsUser     bool `json:"isUser"`
	IsReferent bool `json:"isReferent"`
}

// apiProvider fetches the catalog from the catalog HTTP API
type apiProvider struct {
	httpClient  httpclient.Client
	baseURL     string
	callerEmail string
}

var _ catalog.Provider = (*apiProvider)(nil)

// NewAPIProvider creates a provider for the configured catalog API
func NewAPIProvider(cfg *config.APIConfig) (catalog.Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api configuration is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("api endpoint cannot be empty")
	}

	var opts []httpclient.Option
	if cfg.CallerEmail != "" {
		opts = append(opts, httpclient.WithCallerEmail(cfg.CallerEmail))
	}
	return newAPIProvider(httpclient.NewDefaultClient(cfg.GetTimeout(), opts...), cfg.Endpoint, cfg.CallerEmail), nil
}

func newAPIProvider(client httpclient.Client, endpoint, callerEmail string) *apiProvider {
	return &apiProvider{
		httpClient:  client,
		baseURL:     strings.TrimSuffix(endpoint, "/"),
		callerEmail: callerEmail,
	}
}

// GetSource returns the API endpoint
func (p *apiProvider) GetSource() string {
	return "api:" + p.baseURL
}

// FetchCollection fetches the records and, for a known caller, the caller
// declarations concurrently
func (p *apiProvider) FetchCollection(ctx context.Context) (*catalog.Collection, error) {
	collection := &catalog.Collection{CallerEmail: p.callerEmail}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var resp recordsResponse
		if err := p.getJSON(gctx, recordsPath, &resp); err != nil {
			return fmt.Errorf("failed to fetch records: %w", err)
		}
		collection.Records = resp.Records
		return nil
	})
	if p.callerEmail != "" {
		g.Go(func() error {
			var resp declarationsResponse
			if err := p.getJSON(gctx, declarationsPath, &resp); err != nil {
				return fmt.Errorf("failed to fetch declarations: %w", err)
			}
			collection.Declarations = resp.Declarations
			if collection.Declarations == nil {
				collection.Declarations = []catalog.CallerDeclaration{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := validateCollection(collection); err != nil {
		return nil, fmt.Errorf("invalid catalog collection from %s: %w", p.baseURL, err)
	}

	slog.Debug("Fetched catalog from API",
		"endpoint", p.baseURL,
		"record_count", len(collection.Records),
		"declaration_count", len(collection.Declarations))
	return collection, nil
}

// MutateRecord posts the operation to the record
func (p *apiProvider) MutateRecord(ctx context.Context, id int, op catalog.Operation) error {
	if op != catalog.OperationDereference {
		return fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
	}

	path := fmt.Sprintf("%s/%d/operations", recordsPath, id)
	if err := p.postJSON(ctx, path, operationRequest{Operation: op}); err != nil {
		return recordError(id, err)
	}
	return nil
}

// UpdateCallerDeclaration posts the caller declaration of the record
func (p *apiProvider) UpdateCallerDeclaration(ctx context.Context, id int, decl catalog.Declaration) error {
	if p.callerEmail == "" {
		return ErrAnonymousCaller
	}

	req := declarationRequest{RecordID: id, IsUser: decl.IsUser, IsReferent: decl.IsReferent}
	if err := p.postJSON(ctx, declarationsPath, req); err != nil {
		return recordError(id, err)
	}
	return nil
}

func (p *apiProvider) getJSON(ctx context.Context, path string, out any) error {
	body, err := p.httpClient.Get(ctx, p.baseURL+path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", path, err)
	}
	return nil
}

func (p *apiProvider) postJSON(ctx context.Context, path string, in any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request of %s: %w", path, err)
	}
	_, err = p.httpClient.Post(ctx, p.baseURL+path, body)
	return err
}

// recordError maps a 404 to ErrRecordNotFound
func recordError(id int, err error) error {
	if httpclient.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("%w: %d: %w", catalog.ErrRecordNotFound, id, err)
	}
	return err
}
