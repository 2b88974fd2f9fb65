package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jahir7946/Cat-store/models"
)

func postalServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/es/28013":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"post code":"28013","country":"Spain","places":[{"place name":"Madrid","state":"Comunidad de Madrid","latitude":"40.4"}]}`))
		case "/es/99999":
			time.Sleep(200 * time.Millisecond)
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPostalLookup(t *testing.T) {
	srv := postalServer(t)
	l := &PostalLookup{BaseURL: srv.URL, Country: "es", HTTP: srv.Client()}
	ctx := context.Background()

	place, err := l.Lookup(ctx, "28013")
	require.NoError(t, err)
	assert.Equal(t, "Madrid", place.City)
	assert.Equal(t, "Comunidad de Madrid", place.State)

	_, err = l.Lookup(ctx, "00000")
	assert.True(t, errors.Is(err, ErrPostalCodeNotFound))

	for _, bad := range []string{"", "2801", "280133", "28a13"} {
		_, err = l.Lookup(ctx, bad)
		assert.True(t, errors.Is(err, ErrInvalidPostalCode), bad)
	}
}

func TestPostalLookup_RespectsContext(t *testing.T) {
	srv := postalServer(t)
	l := &PostalLookup{BaseURL: srv.URL, Country: "es", HTTP: srv.Client()}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := l.Lookup(ctx, "99999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFillShippingFromPostalCode(t *testing.T) {
	srv := postalServer(t)
	app := NewApp(nil, NewState(), &PostalLookup{BaseURL: srv.URL, Country: "es", HTTP: srv.Client()})

	info := models.ShippingInfo{ZipCode: "28013"}
	require.NoError(t, app.FillShippingFromPostalCode(context.Background(), &info))
	assert.Equal(t, "Madrid", info.City)

	info = models.ShippingInfo{ZipCode: "12345", City: "stale", State: "stale"}
	assert.Error(t, app.FillShippingFromPostalCode(context.Background(), &info))
	assert.Empty(t, info.City)
	assert.Empty(t, info.State)
}
