package netx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Name string `json:"name"`
}

func TestPostJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		var gotMethod, gotCT, gotAuth string
		var gotBody []byte

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotCT = r.Header.Get("Content-Type")
			gotAuth = r.Header.Get("Authorization")
			gotBody, _ = io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"name":"back"}`))
		}))
		defer ts.Close()

		var out echo
		code, err := PostJSON(context.Background(), ts.Client(), ts.URL, http.Header{"Authorization": {"Bearer x"}}, echo{Name: "john"}, &out)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, http.MethodPost, gotMethod)
		assert.Equal(t, "application/json", gotCT)
		assert.Equal(t, "Bearer x", gotAuth)
		assert.JSONEq(t, `{"name":"john"}`, string(gotBody))
		assert.Equal(t, "back", out.Name)
	})

	t.Run("empty body on error status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer ts.Close()

		var out echo
		code, err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echo{}, &out)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("non json body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer ts.Close()

		var out echo
		code, err := PostJSON(context.Background(), ts.Client(), ts.URL, nil, echo{}, &out)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, code)
	})

	t.Run("transport failure", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		_, err := PostJSON(context.Background(), http.DefaultClient, url, nil, echo{}, nil)
		require.Error(t, err)
	})
}
