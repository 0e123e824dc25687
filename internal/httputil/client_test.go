// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetJSON(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"thesis"}`))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.GetJSON(context.Background(), ts.URL, time.Second, &v))
	assert.Equal(t, "thesis", v.Name)
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestClientGetXML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<doc><title>Effects of X</title></doc>`))
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client(), UserAgent: "custom/1.0"}
	var v struct {
		Title string `xml:"title"`
	}
	require.NoError(t, c.GetXML(context.Background(), ts.URL, time.Second, &v))
	assert.Equal(t, "Effects of X", v.Title)
}

func TestClientGetStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	_, err := c.Get(context.Background(), ts.URL, time.Second)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Status)
	assert.Contains(t, se.Body, "boom")
}

func TestClientGetTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer ts.Close()

	c := &Client{HTTP: ts.Client()}
	_, err := c.Get(context.Background(), ts.URL, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiterWait(t *testing.T) {
	l := NewLimiter(0)
	l.SetHostRate("slow.example", 1)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Wait(ctx, "https://fast.example/x"))
	}

	require.NoError(t, l.Wait(ctx, "https://slow.example/x"))
	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short, "https://slow.example/y"))
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background(), "https://any.example"))
}
