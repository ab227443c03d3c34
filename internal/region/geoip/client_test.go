package geoip

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/region"
	"consentd/pkg/platform/circuit"
	"consentd/pkg/platform/sentinel"
)

func TestClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/81.2.69.142", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"country_code":"GB","region":"England","country_name":"United Kingdom"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret"})
	loc, err := c.Lookup(context.Background(), "81.2.69.142")
	require.NoError(t, err)
	assert.Equal(t, &Location{CountryCode: "GB", Region: "England", CountryName: "United Kingdom"}, loc)
}

func TestClient_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, sentinel.ErrUnavailable)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Lookup(context.Background(), "8.8.8.8")
	assert.Error(t, err)
}

func TestClient_BreakerOpensAndFailsFast(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var transitions []bool
	c := NewClient(Config{
		BaseURL:         srv.URL,
		Breaker:         circuit.New("geoip", circuit.WithFailureThreshold(2), circuit.WithOpenTimeout(time.Hour)),
		OnCircuitChange: func(open bool) { transitions = append(transitions, open) },
	})

	for range 2 {
		_, err := c.Lookup(context.Background(), "8.8.8.8")
		require.Error(t, err)
	}
	_, err := c.Lookup(context.Background(), "8.8.8.8")
	assert.ErrorIs(t, err, sentinel.ErrCircuitOpen)
	assert.EqualValues(t, 2, hits.Load())
	assert.Equal(t, []bool{true}, transitions)
	assert.Equal(t, circuit.StateOpen, c.Breaker().State())
}

type stubLocator struct {
	loc   *Location
	err   error
	calls int
}

func (s *stubLocator) Lookup(context.Context, string) (*Location, error) {
	s.calls++
	return s.loc, s.err
}

func TestStrategy_TryDetect(t *testing.T) {
	ctx := context.Background()

	fr := &stubLocator{loc: &Location{CountryCode: "FR"}}
	got, err := NewStrategy(fr).TryDetect(ctx, region.Signals{IP: "81.2.69.142"})
	require.NoError(t, err)
	assert.Equal(t, compliance.RegionEU, got)

	ca := &stubLocator{loc: &Location{CountryCode: "US", Region: "California"}}
	got, err = NewStrategy(ca).TryDetect(ctx, region.Signals{IP: "8.8.8.8"})
	require.NoError(t, err)
	assert.Equal(t, compliance.RegionUSCalifornia, got)

	failing := &stubLocator{err: errors.New("dial tcp: timeout")}
	_, err = NewStrategy(failing).TryDetect(ctx, region.Signals{IP: "8.8.8.8"})
	assert.Error(t, err)
}

func TestStrategy_SkipsPrivateAddresses(t *testing.T) {
	locator := &stubLocator{loc: &Location{CountryCode: "FR"}}
	got, err := NewStrategy(locator).TryDetect(context.Background(), region.Signals{IP: "10.0.0.7"})
	require.NoError(t, err)
	assert.Equal(t, compliance.RegionOther, got)
	assert.Zero(t, locator.calls)
}
