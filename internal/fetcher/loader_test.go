package fetcher_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ajitpratap0/modaudit/internal/dataset"
	"github.com/ajitpratap0/modaudit/internal/fetcher"
	"github.com/ajitpratap0/modaudit/internal/models"
	"github.com/ajitpratap0/modaudit/pkg/defparse"
)

const testURL = "https://defs.example.test/data"

const exampleDoc = `{"Known Cheats":{"x1":"Phantom"},"Known Mods":{"hud":"HUD Mod"}}`

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func newTestLoader(t *testing.T, opts fetcher.Options) (*fetcher.Loader, *dataset.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := dataset.NewStore()
	if opts.URL == "" {
		opts.URL = testURL
	}
	l := fetcher.NewLoader(st, opts, nil, logger)
	t.Cleanup(l.Wait)
	return l, st
}

func assertFallbackTables(t *testing.T, st *dataset.Store) {
	t.Helper()
	wantD, wantP := dataset.Fallback()
	gotD, gotP := st.Tables()
	assert.Equal(t, wantD, gotD)
	assert.Equal(t, wantP, gotP)
	assert.Equal(t, models.SourceFallback, st.Counts().Source)
	assert.True(t, st.Loaded())
	assert.False(t, st.Loading())
}

func TestLoader_RemoteSuccess(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testURL,
		httpmock.NewStringResponder(http.StatusOK, "<html><pre>"+exampleDoc+"</pre></html>"))

	l, st := newTestLoader(t, fetcher.Options{})

	var notified []models.DatasetCounts
	st.OnLoaded(func(c models.DatasetCounts) { notified = append(notified, c) })

	o := l.Load(context.Background())
	require.NoError(t, o.Err)
	assert.Equal(t, models.SourceRemote, o.Source)

	name, ok := st.Disallowed("x1")
	require.True(t, ok)
	assert.Equal(t, "Phantom", name)
	name, ok = st.Permitted("hud")
	require.True(t, ok)
	assert.Equal(t, "HUD Mod", name)

	assert.True(t, st.Loaded())
	require.Len(t, notified, 1)
	assert.Equal(t, models.DatasetCounts{Source: models.SourceRemote, Disallowed: 1, Permitted: 1}, notified[0])
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestLoader_FallbackPaths(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		wantErr   error
	}{
		{
			name:      "server error",
			responder: httpmock.NewStringResponder(http.StatusInternalServerError, "boom"),
			wantErr:   fetcher.ErrBadStatus,
		},
		{
			name:      "not found",
			responder: httpmock.NewStringResponder(http.StatusNotFound, exampleDoc),
			wantErr:   fetcher.ErrBadStatus,
		},
		{
			name:      "network error",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
		},
		{
			name:      "no sections",
			responder: httpmock.NewStringResponder(http.StatusOK, "<html><body>maintenance</body></html>"),
			wantErr:   defparse.ErrNoSections,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder(http.MethodGet, testURL, tt.responder)

			l, st := newTestLoader(t, fetcher.Options{})
			notified := 0
			st.OnLoaded(func(models.DatasetCounts) { notified++ })

			o := l.Load(context.Background())
			require.Error(t, o.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, o.Err, tt.wantErr)
			}
			assert.Equal(t, models.SourceFallback, o.Source)
			assertFallbackTables(t, st)
			assert.Equal(t, 1, notified)
		})
	}
}

func TestLoader_TimeoutFallsBack(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testURL, func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	l, st := newTestLoader(t, fetcher.Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	o := l.Load(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Error(t, o.Err)
	assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
	assertFallbackTables(t, st)
}

func TestLoader_BodyTooLarge(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, testURL,
		httpmock.NewStringResponder(http.StatusOK, strings.Repeat("x", 64)))

	l, st := newTestLoader(t, fetcher.Options{MaxBodyBytes: 32})

	o := l.Load(context.Background())
	assert.ErrorIs(t, o.Err, fetcher.ErrBodyTooLarge)
	assertFallbackTables(t, st)
}

func TestLoader_FetchDataIsIdempotentWhileInFlight(t *testing.T) {
	setupHTTPMock(t)
	release := make(chan struct{})
	httpmock.RegisterResponder(http.MethodGet, testURL, func(*http.Request) (*http.Response, error) {
		<-release
		return httpmock.NewStringResponse(http.StatusOK, exampleDoc), nil
	})

	l, st := newTestLoader(t, fetcher.Options{})

	require.True(t, l.FetchData(context.Background()))
	assert.True(t, st.Loading())
	assert.False(t, l.FetchData(context.Background()), "second call while in flight is a no-op")
	assert.False(t, st.Loaded(), "FetchData must not block on the request")

	close(release)

	select {
	case o := <-l.Completed():
		assert.False(t, st.Loaded(), "outcome takes effect only when applied")
		l.Apply(o)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not complete")
	}

	assert.True(t, st.Loaded())
	assert.False(t, st.Loading())
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	// Once applied a new fetch may start.
	require.True(t, l.FetchData(context.Background()))
	l.Apply(<-l.Completed())
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestLoader_CancelledContextFallsBack(t *testing.T) {
	setupHTTPMock(t)
	started := make(chan struct{})
	httpmock.RegisterResponder(http.MethodGet, testURL, func(req *http.Request) (*http.Response, error) {
		close(started)
		<-req.Context().Done()
		return nil, req.Context().Err()
	})

	l, st := newTestLoader(t, fetcher.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.True(t, l.FetchData(ctx))
	<-started
	cancel()

	o := <-l.Completed()
	l.Apply(o)
	assert.ErrorIs(t, o.Err, context.Canceled)
	assertFallbackTables(t, st)
}
