package httpclient_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stacklok/toolhive-catalog-explorer/internal/httpclient"
)

// newTestServer creates a test server with keep-alives disabled so that
// closing it does not disturb requests of other specs.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

var _ = Describe("DefaultClient", func() {
	var (
		ctx    context.Context
		server *httptest.Server
	)

	BeforeEach(func() {
		ctx = context.Background()
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	Describe("NewDefaultClient", func() {
		It("uses the default timeout when none is given", func() {
			Expect(httpclient.NewDefaultClient(0).Timeout()).To(Equal(httpclient.DefaultTimeout))
		})

		It("keeps a custom timeout", func() {
			Expect(httpclient.NewDefaultClient(5 * time.Second).Timeout()).To(Equal(5 * time.Second))
		})
	})

	Describe("Get", func() {
		It("returns the body and sends the standard headers", func() {
			var headers http.Header
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				headers = r.Header.Clone()
				w.WriteHeader(http.StatusOK)
				fmt.Fprint(w, `{"records":[]}`)
			}))

			body, err := httpclient.NewDefaultClient(0).Get(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`{"records":[]}`))
			Expect(headers.Get("User-Agent")).To(Equal(httpclient.UserAgent))
			Expect(headers.Get("Accept")).To(Equal("application/json"))
			Expect(headers.Get(httpclient.CallerEmailHeader)).To(BeEmpty())
		})

		It("sends the caller identity when configured", func() {
			var caller string
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller = r.Header.Get(httpclient.CallerEmailHeader)
				w.WriteHeader(http.StatusOK)
			}))

			client := httpclient.NewDefaultClient(0, httpclient.WithCallerEmail("agent@example.gouv.fr"))
			_, err := client.Get(ctx, server.URL)
			Expect(err).NotTo(HaveOccurred())
			Expect(caller).To(Equal("agent@example.gouv.fr"))
		})

		DescribeTable("returns an HTTPError for non-200 statuses",
			func(status int) {
				server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(status)
				}))

				_, err := httpclient.NewDefaultClient(0).Get(ctx, server.URL)
				Expect(err).To(HaveOccurred())

				var httpErr *httpclient.HTTPError
				Expect(err).To(BeAssignableToTypeOf(httpErr))
				Expect(httpclient.StatusCode(err)).To(Equal(status))
				Expect(err.Error()).To(ContainSubstring(server.URL))
			},
			Entry("no content", http.StatusNoContent),
			Entry("not found", http.StatusNotFound),
			Entry("unauthorized", http.StatusUnauthorized),
			Entry("internal server error", http.StatusInternalServerError),
			Entry("bad gateway", http.StatusBadGateway),
		)

		It("fails on unreachable hosts", func() {
			_, err := httpclient.NewDefaultClient(time.Second).Get(ctx, "http://127.0.0.1:1")
			Expect(err).To(MatchError(ContainSubstring("failed to execute request")))
		})

		It("fails on malformed URLs", func() {
			_, err := httpclient.NewDefaultClient(0).Get(ctx, "://missing-scheme")
			Expect(err).To(MatchError(ContainSubstring("failed to create request")))
		})

		It("respects context cancellation", func() {
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			}))

			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := httpclient.NewDefaultClient(0).Get(cancelled, server.URL)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("rejects responses announcing more than the size limit", func() {
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Length", fmt.Sprintf("%d", httpclient.MaxResponseSize+1))
				w.WriteHeader(http.StatusOK)
			}))

			_, err := httpclient.NewDefaultClient(0).Get(ctx, server.URL)
			Expect(err).To(MatchError(ContainSubstring("exceeds maximum allowed size")))
		})

		It("rejects streamed responses beyond the size limit", func() {
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				chunk := strings.Repeat("x", 1024*1024)
				for range httpclient.MaxResponseSize/len(chunk) + 1 {
					if _, err := io.WriteString(w, chunk); err != nil {
						return
					}
				}
			}))

			_, err := httpclient.NewDefaultClient(time.Minute).Get(ctx, server.URL)
			Expect(err).To(MatchError(ContainSubstring("exceeds maximum allowed size")))
		})
	})

	Describe("Post", func() {
		It("sends the JSON body", func() {
			var (
				method      string
				contentType string
				received    string
			)
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method = r.Method
				contentType = r.Header.Get("Content-Type")
				b, _ := io.ReadAll(r.Body)
				received = string(b)
				w.WriteHeader(http.StatusNoContent)
			}))

			body, err := httpclient.NewDefaultClient(0).Post(ctx, server.URL, []byte(`{"operation":"dereference"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(BeEmpty())
			Expect(method).To(Equal(http.MethodPost))
			Expect(contentType).To(Equal("application/json"))
			Expect(received).To(Equal(`{"operation":"dereference"}`))
		})

		It("accepts any 2xx status", func() {
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, `{"id":3}`)
			}))

			body, err := httpclient.NewDefaultClient(0).Post(ctx, server.URL, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(`{"id":3}`))
		})

		It("returns an HTTPError for failures", func() {
			server = newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusConflict)
			}))

			_, err := httpclient.NewDefaultClient(0).Post(ctx, server.URL, []byte(`{}`))
			Expect(httpclient.StatusCode(err)).To(Equal(http.StatusConflict))
		})
	})
})
