package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	NewOutput("json", &out, &errOut).Print(ChangeResult{Message: "Added 2 to the whitelist", Changed: 2})

	var got ChangeResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 2, got.Changed)
	assert.Empty(t, errOut.String())
}

func TestOutputText(t *testing.T) {
	var out bytes.Buffer
	o := NewOutput("text", &out, &out)

	o.Print(WhitelistResult{Identities: []string{"Alex", "Steve"}, Count: 2})
	assert.Contains(t, out.String(), "Alex, Steve")

	out.Reset()
	o.Print(WhitelistResult{})
	assert.Contains(t, out.String(), "Whitelist is empty")

	out.Reset()
	o.Print(DecisionResult{Identity: "Steve", Message: "Members only"})
	assert.Contains(t, out.String(), "Steve would be denied: Members only")

	out.Reset()
	o.PrintError(errors.New("boom"))
	assert.Contains(t, out.String(), "Error: boom")
}

func TestClientDecodesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ALREADY_EXISTS","message":"Identity is already whitelisted"}}`))
	}))
	defer srv.Close()

	var trace bytes.Buffer
	c := NewClient(srv.URL+"/", "secret")
	c.SetTrace(&trace)

	err := c.Put("/api/v1/whitelist/"+escape("Steve Jobs"), nil, nil)
	require.Error(t, err)
	assert.True(t, IsCode(err, "ALREADY_EXISTS"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, trace.String(), "PUT /api/v1/whitelist/Steve%20Jobs -> 409")
}
