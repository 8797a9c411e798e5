package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
)

// freeAddress returns a loopback address nothing listens on
func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func TestCatalogAppStartFetchesAndServes(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(t)
	provider.EXPECT().FetchCollection(gomock.Any()).Return(&catalog.Collection{
		Records: []catalog.APIRecord{catalog.NewTestAPIRecord(1, "PostgreSQL")},
	}, nil)

	addr := freeAddress(t)
	app, err := NewCatalogApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithProvider(provider),
		WithAddress(addr),
	)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/readiness")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))

	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}

	// the session is closed with the app
	require.ErrorIs(t, app.GetSession().Upsert(context.Background(), catalog.NewTestRecord(2, "pgAdmin")),
		explorer.ErrSessionClosed)
}

func TestCatalogAppFetchFailureKeepsServing(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(t)
	fetched := make(chan struct{})
	provider.EXPECT().FetchCollection(gomock.Any()).DoAndReturn(func(context.Context) (*catalog.Collection, error) {
		close(fetched)
		return nil, errors.New("connection refused")
	})

	addr := freeAddress(t)
	app, err := NewCatalogApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithProvider(provider),
		WithAddress(addr),
	)
	require.NoError(t, err)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case <-fetched:
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was never fetched")
	}

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/readiness")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusServiceUnavailable
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, app.Stop(5*time.Second))
	require.NoError(t, <-errChan)
}

func TestCatalogAppStartInvalidAddress(t *testing.T) {
	t.Parallel()

	provider := newMockProvider(t)
	provider.EXPECT().FetchCollection(gomock.Any()).Return(&catalog.Collection{}, nil).AnyTimes()

	app, err := NewCatalogApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithProvider(provider),
	)
	require.NoError(t, err)
	t.Cleanup(app.GetSession().Close)

	// an address outside the builder validation fails at listen time
	app.httpServer.Addr = "256.0.0.1:0"
	err = app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}
