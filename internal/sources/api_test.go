package sources_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/httpclient"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sources"
)

const (
	recordsBody = `{"records":[
		{"id":1,"name":"PostgreSQL","description":"Database","addedTime":"2024-01-01T00:00:00Z","updateTime":"2024-02-01T00:00:00Z","kind":{"type":"stack"},"countsByOrganization":{"DINUM":{"userCount":3,"referentCount":1}},"categories":["database"],"keywords":[]},
		{"id":2,"name":"pgAdmin","description":"Administration","addedTime":"2024-01-02T00:00:00Z","updateTime":"2024-02-02T00:00:00Z","kind":{"type":"cloud"},"countsByOrganization":{},"categories":[],"keywords":["postgres"],"parentId":1}
	]}`
	declarationsBody = `{"declarations":[{"recordId":2,"type":"referent"}]}`
)

type recordedRequest struct {
	method string
	path   string
	caller string
	body   string
}

var _ = Describe("API provider", func() {
	var (
		ctx        context.Context
		mockServer *httptest.Server
		mu         sync.Mutex
		requests   []recordedRequest
		status     map[string]int
	)

	newProvider := func(callerEmail string) catalog.Provider {
		provider, err := sources.NewAPIProvider(&config.APIConfig{
			Endpoint:    mockServer.URL + "/",
			CallerEmail: callerEmail,
		})
		Expect(err).NotTo(HaveOccurred())
		return provider
	}

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		status = map[string]int{}

		mockServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			requests = append(requests, recordedRequest{
				method: r.Method,
				path:   r.URL.Path,
				caller: r.Header.Get(httpclient.CallerEmailHeader),
				body:   string(body),
			})
			code, ok := status[r.Method+" "+r.URL.Path]
			mu.Unlock()

			if ok {
				w.WriteHeader(code)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/v0/records":
				fmt.Fprint(w, recordsBody)
			case r.Method == http.MethodGet && r.URL.Path == "/v0/declarations":
				fmt.Fprint(w, declarationsBody)
			case r.Method == http.MethodPost:
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
	})

	AfterEach(func() {
		mockServer.Close()
	})

	respondWith := func(route string, code int) {
		mu.Lock()
		defer mu.Unlock()
		status[route] = code
	}

	paths := func() []string {
		mu.Lock()
		defer mu.Unlock()
		out := make([]string, 0, len(requests))
		for _, r := range requests {
			out = append(out, r.method+" "+r.path)
		}
		return out
	}

	Describe("NewAPIProvider", func() {
		It("requires a configuration", func() {
			_, err := sources.NewAPIProvider(nil)
			Expect(err).To(HaveOccurred())
		})

		It("requires an endpoint", func() {
			_, err := sources.NewAPIProvider(&config.APIConfig{})
			Expect(err).To(MatchError(ContainSubstring("endpoint")))
		})

		It("describes its source without the trailing slash", func() {
			Expect(newProvider("").GetSource()).To(Equal("api:" + mockServer.URL))
		})
	})

	Describe("FetchCollection", func() {
		Context("anonymous caller", func() {
			It("fetches only the records", func() {
				collection, err := newProvider("").FetchCollection(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(collection.Records).To(HaveLen(2))
				Expect(collection.Records[1].ParentID).To(HaveValue(Equal(1)))
				Expect(collection.Declarations).To(BeNil())
				Expect(collection.CallerEmail).To(BeEmpty())
				Expect(paths()).To(ConsistOf("GET /v0/records"))
			})
		})

		Context("known caller", func() {
			It("fetches records and declarations", func() {
				collection, err := newProvider("agent@example.gouv.fr").FetchCollection(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(collection.Records).To(HaveLen(2))
				Expect(collection.Declarations).To(Equal([]catalog.CallerDeclaration{
					{RecordID: 2, Type: catalog.DeclarationReferent},
				}))
				Expect(collection.CallerEmail).To(Equal("agent@example.gouv.fr"))
				Expect(paths()).To(ConsistOf("GET /v0/records", "GET /v0/declarations"))

				mu.Lock()
				defer mu.Unlock()
				for _, r := range requests {
					Expect(r.caller).To(Equal("agent@example.gouv.fr"))
				}
			})

			It("fails when the declarations cannot be fetched", func() {
				respondWith("GET /v0/declarations", http.StatusInternalServerError)

				_, err := newProvider("agent@example.gouv.fr").FetchCollection(ctx)
				Expect(err).To(MatchError(ContainSubstring("failed to fetch declarations")))
				Expect(httpclient.StatusCode(err)).To(Equal(http.StatusInternalServerError))
			})
		})

		It("fails when the records cannot be fetched", func() {
			respondWith("GET /v0/records", http.StatusBadGateway)

			_, err := newProvider("").FetchCollection(ctx)
			Expect(err).To(MatchError(ContainSubstring("failed to fetch records")))
		})
	})

	Describe("MutateRecord", func() {
		It("posts the operation", func() {
			err := newProvider("").MutateRecord(ctx, 2, catalog.OperationDereference)
			Expect(err).NotTo(HaveOccurred())

			mu.Lock()
			defer mu.Unlock()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].method).To(Equal(http.MethodPost))
			Expect(requests[0].path).To(Equal("/v0/records/2/operations"))
			Expect(requests[0].body).To(MatchJSON(`{"operation":"dereference"}`))
		})

		It("maps a missing record to ErrRecordNotFound", func() {
			respondWith("POST /v0/records/9/operations", http.StatusNotFound)

			err := newProvider("").MutateRecord(ctx, 9, catalog.OperationDereference)
			Expect(err).To(MatchError(catalog.ErrRecordNotFound))
		})

		It("passes other failures through", func() {
			respondWith("POST /v0/records/2/operations", http.StatusForbidden)

			err := newProvider("").MutateRecord(ctx, 2, catalog.OperationDereference)
			Expect(err).NotTo(MatchError(catalog.ErrRecordNotFound))
			Expect(httpclient.StatusCode(err)).To(Equal(http.StatusForbidden))
		})

		It("rejects unknown operations without a request", func() {
			err := newProvider("").MutateRecord(ctx, 2, catalog.Operation("archive"))
			Expect(err).To(MatchError(sources.ErrUnsupportedOperation))
			Expect(paths()).To(BeEmpty())
		})
	})

	Describe("UpdateCallerDeclaration", func() {
		It("posts the declaration", func() {
			err := newProvider("agent@example.gouv.fr").UpdateCallerDeclaration(ctx, 1,
				catalog.Declaration{IsUser: true})
			Expect(err).NotTo(HaveOccurred())

			mu.Lock()
			defer mu.Unlock()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].path).To(Equal("/v0/declarations"))

			var sent map[string]any
			Expect(json.Unmarshal([]byte(requests[0].body), &sent)).To(Succeed())
			Expect(sent).To(Equal(map[string]any{"recordId": float64(1), "isUser": true, "isReferent": false}))
		})

		It("refuses anonymous callers", func() {
			err := newProvider("").UpdateCallerDeclaration(ctx, 1, catalog.Declaration{IsUser: true})
			Expect(err).To(MatchError(sources.ErrAnonymousCaller))
			Expect(paths()).To(BeEmpty())
		})
	})
})
