package pangea

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reputationServer(t *testing.T, verdict string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/reputation", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "crowdstrike", body["provider"])
		assert.NotEmpty(t, body["domain"])

		fmt.Fprintf(w, `{"status":"Success","result":{"data":{"verdict":%q,"score":80,"category":["phishing"]}}}`, verdict)
	}))
}

func TestReputation(t *testing.T) {
	tests := []struct {
		verdict string
		want    Verdict
	}{
		{"malicious", VerdictMalicious},
		{"suspicious", VerdictSuspicious},
		{"benign", VerdictBenign},
		{"unknown", VerdictUnknown},
		{"", VerdictUnknown},
		{"some-future-verdict", VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run("verdict "+tt.verdict, func(t *testing.T) {
			srv := reputationServer(t, tt.verdict)
			defer srv.Close()

			c := NewClientWithBaseURL("tok", srv.URL)
			got, err := c.Reputation(context.Background(), "evil.example")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReputation_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("tok", srv.URL)
	got, err := c.Reputation(context.Background(), "evil.example")
	require.Error(t, err)
	assert.Equal(t, VerdictUnknown, got)
}
