package riot

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testCallback = "https://playvalorant.com/opt_in"

// newTestClient serves mux on a local server and points every endpoint at it.
func newTestClient(t *testing.T, mux *http.ServeMux, localAppData string) *Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return Open(Options{
		Endpoints: Endpoints{
			Version:      srv.URL + "/v1/version",
			Authorize:    srv.URL + "/authorize",
			Callback:     testCallback,
			UserInfo:     srv.URL + "/userinfo",
			Entitlements: srv.URL + "/api/token/v1",
			PD:           srv.URL + "/pd/{shard}",
			Shared:       srv.URL + "/shared/{shard}",
		},
		LocalAppData: localAppData,
		Logger:       quietLogger(),
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func writeLocalFile(t *testing.T, root string, elem []string, content string) {
	t.Helper()

	path := filepath.Join(append([]string{root}, elem...)...)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
