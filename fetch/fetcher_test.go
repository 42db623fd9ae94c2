package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop())
	body, err := c.Get(srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ok")
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotLang, "ja")
}

func TestGetNonSuccessIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop())
	_, err := c.Get(srv.URL)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusForbidden, te.StatusCode)
}

func TestDocumentParsesMarkup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1 class="title">見出し</h1></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(zerolog.Nop())
	doc, err := c.Document(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "見出し", doc.Find("h1.title").Text())
}
