package media

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRehost(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.png" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("image bytes"))
	}))
	defer origin.Close()

	store, err := NewLocalContentStore(t.TempDir(), "http://cdn.local/media/")
	require.NoError(t, err)
	rehoster := NewRehoster(store, origin.Client(), nil, time.Second, testLogger())
	ctx := context.Background()

	t.Run("fetches and stores under canonical url", func(t *testing.T) {
		canonical, err := rehoster.Rehost(ctx, origin.URL+"/photo.png")
		require.NoError(t, err)

		assert.Contains(t, canonical, "http://cdn.local/media/")
		assert.Contains(t, canonical, ".png")
	})

	t.Run("same source rehosts to the same canonical url", func(t *testing.T) {
		first, err := rehoster.Rehost(ctx, origin.URL+"/photo.png")
		require.NoError(t, err)
		second, err := rehoster.Rehost(ctx, origin.URL+"/photo.png")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("missing source fails", func(t *testing.T) {
		_, err := rehoster.Rehost(ctx, origin.URL+"/gone.png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("non-http scheme is rejected", func(t *testing.T) {
		_, err := rehoster.Rehost(ctx, "ftp://example.com/file.png")
		require.Error(t, err)
	})
}

func TestCanonicalName(t *testing.T) {
	a := canonicalName("https://example.com/a/photo.jpg")
	b := canonicalName("https://example.com/a/photo.jpg")
	c := canonicalName("https://example.com/b/photo.jpg")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, ".jpg")

	// Query strings do not leak into the stored extension.
	d := canonicalName("https://example.com/photo.jpg?size=large")
	assert.NotContains(t, d, "?")
}

func TestLocalFileStore(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("save and fetch round trip", func(t *testing.T) {
		location, size, err := store.Save("customers.csv", strings.NewReader("email,name\n"))
		require.NoError(t, err)
		assert.Equal(t, int64(11), size)

		data, err := store.Fetch(ctx, location)
		require.NoError(t, err)
		assert.Equal(t, "email,name\n", string(data))
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		location, _, err := store.Save("x.csv", strings.NewReader("a\n"))
		require.NoError(t, err)

		require.NoError(t, store.Remove(location))
		require.NoError(t, store.Remove(location))

		_, err = store.Fetch(ctx, location)
		assert.Error(t, err)
	})
}
