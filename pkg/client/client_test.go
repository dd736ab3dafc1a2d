package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petsitter/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetRegistryListPets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/owners/owner-1/pets":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"id":"p1","owner_id":"owner-1","name":"Rex","species":"dog"}]}`))
		case "/api/v1/owners/owner-2/pets":
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"registry down"}`))
		}
	}))
	defer srv.Close()

	c := NewPetRegistryClient(srv.URL, time.Second)

	pets, err := c.ListPets(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, pets, 1)
	assert.Equal(t, "dog", pets[0].Species)

	pets, err = c.ListPets(context.Background(), "owner-2")
	require.NoError(t, err)
	assert.Empty(t, pets)
	assert.NotNil(t, pets)

	_, err = c.ListPets(context.Background(), "owner-3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry down")
}

func TestGeocoderSearch(t *testing.T) {
	var gotAgent, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		if gotQuery == "Atlantis" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"50.8503","lon":"4.3517","display_name":"Brussels"}]`))
	}))
	defer srv.Close()

	c := NewGeocoderClient(srv.URL, "petsitter-test", time.Second)

	p, err := c.Search(context.Background(), "Brussels, Belgium")
	require.NoError(t, err)
	assert.InDelta(t, 50.8503, p.Lat, 1e-9)
	assert.InDelta(t, 4.3517, p.Lon, 1e-9)
	assert.Equal(t, "petsitter-test", gotAgent)
	assert.Equal(t, "Brussels, Belgium", gotQuery)

	_, err = c.Search(context.Background(), "Atlantis")
	assert.True(t, errors.Is(err, ErrLocationNotFound))
}

func TestConnectRedis(t *testing.T) {
	log := logger.Discard()

	assert.Nil(t, ConnectRedis(context.Background(), log, "", ""))

	mr := miniredis.RunT(t)
	c := ConnectRedis(context.Background(), log, mr.Addr(), "")
	require.NotNil(t, c)
	defer c.Close()

	mr.Close()
	assert.Nil(t, ConnectRedis(context.Background(), log, mr.Addr(), ""))
}
