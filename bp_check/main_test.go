package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelchiorLoze/valorant-battlepass-tracker/history"
	"github.com/MelchiorLoze/valorant-battlepass-tracker/riot"
)

const (
	callback      = "https://playvalorant.com/opt_in"
	agentContract = "agent-contract"
)

// fakeRiot serves every endpoint the tool talks to and counts the hits.
type fakeRiot struct {
	mu     sync.Mutex
	hits   map[string]int
	earned int
	found  bool
}

func (f *fakeRiot) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[name]++
}

func (f *fakeRiot) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[name]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeRiot) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/version", func(w http.ResponseWriter, r *http.Request) {
		f.hit("version")
		writeJSON(w, map[string]any{"status": 200, "data": map[string]any{"riotClientVersion": "release-09.07"}})
	})
	mux.HandleFunc("GET /authorize", func(w http.ResponseWriter, r *http.Request) {
		f.hit("authorize")
		w.Header().Set("Location", callback+"#access_token=token-123&token_type=Bearer")
		w.WriteHeader(http.StatusSeeOther)
	})
	mux.HandleFunc("POST /userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.hit("userinfo")
		writeJSON(w, map[string]any{"sub": "puuid-1"})
	})
	mux.HandleFunc("POST /entitlements", func(w http.ResponseWriter, r *http.Request) {
		f.hit("entitlements")
		writeJSON(w, map[string]any{"entitlements_token": "ent-jwt"})
	})
	mux.HandleFunc("GET /pd/{shard}/contracts/v1/contracts/{puuid}", func(w http.ResponseWriter, r *http.Request) {
		f.hit("contracts")

		f.mu.Lock()
		earned, found := f.earned, f.found
		f.mu.Unlock()

		contracts := []map[string]any{}
		if found {
			contracts = append(contracts, map[string]any{
				"ContractDefinitionID":    riot.DefaultContractID,
				"ContractProgression":     map[string]any{"TotalProgressionEarned": earned},
				"ProgressionLevelReached": 3,
			}, map[string]any{
				"ContractDefinitionID":    agentContract,
				"ContractProgression":     map[string]any{"TotalProgressionEarned": 12000},
				"ProgressionLevelReached": 4,
			})
		}
		writeJSON(w, map[string]any{"Subject": r.PathValue("puuid"), "Contracts": contracts})
	})
	mux.HandleFunc("GET /shared/{shard}/content-service/v3/content", func(w http.ResponseWriter, r *http.Request) {
		f.hit("content")
		writeJSON(w, map[string]any{"Seasons": []map[string]any{
			{"ID": "act", "Name": "ACT III", "Type": "act", "EndTime": "2024-06-25T13:00:00Z", "IsActive": true},
		}})
	})

	return mux
}

type testEnv struct {
	riot    *fakeRiot
	dir     string
	logFile string
}

func setup(t *testing.T, found bool) *testEnv {
	t.Helper()

	fake := &fakeRiot{hits: make(map[string]int), earned: 5000, found: found}
	srv := httptest.NewServer(fake.mux())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	local := filepath.Join(dir, "AppData", "Local")

	writeFile(t, filepath.Join(local, "VALORANT", "Saved", "Logs", "ShooterGame.log"),
		"URL: [GET https://glz-eu-1.eu.a.pvp.net/session/v1/sessions]\n")
	writeFile(t, filepath.Join(local, "Riot Games", "Riot Client", "Data", "RiotGamesPrivateSettings.yaml"),
		"riot-login:\n  persist:\n    session:\n      cookies:\n        - name: ssid\n          value: session-1\n")

	logFile := filepath.Join(dir, "log.txt")

	t.Setenv("LOCALAPPDATA", local)
	t.Setenv("BP_CACHE_FILE", filepath.Join(dir, "cache.yaml"))
	t.Setenv("BP_LOG_FILE", logFile)
	t.Setenv("BP_HISTORY_DB", filepath.Join(dir, "history.db"))
	t.Setenv("BP_VERSION_URL", srv.URL+"/v1/version")
	t.Setenv("BP_AUTHORIZE_URL", srv.URL+"/authorize")
	t.Setenv("BP_CALLBACK_URL", callback)
	t.Setenv("BP_USERINFO_URL", srv.URL+"/userinfo")
	t.Setenv("BP_ENTITLEMENTS_URL", srv.URL+"/entitlements")
	t.Setenv("BP_PD_URL", srv.URL+"/pd/{shard}")
	t.Setenv("BP_SHARED_URL", srv.URL+"/shared/{shard}")

	previous := now
	now = func() time.Time { return time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = previous })

	return &testEnv{riot: fake, dir: dir, logFile: logFile}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExecute_Report(t *testing.T) {
	env := setup(t, true)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, strings.Join([]string{
		"Battlepass: tier 3/50",
		"Progress: 0.51% (975,000 XP remaining)",
		"Epilogue: 0.43% (1,157,500 XP remaining)",
		"Season ends in: 5 days, 1 hours, 0 minutes, 0 seconds",
		"",
	}, "\n"), stdout.String())
	assert.Empty(t, stderr.String())

	data, err := os.ReadFile(env.logFile)
	require.NoError(t, err)
	assert.Empty(t, string(data))

	cache, err := os.ReadFile(filepath.Join(env.dir, "cache.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(cache), "player_id: puuid-1")
	assert.Contains(t, string(cache), "shard: eu")
}

func TestExecute_SecondRunUsesCacheAndHistory(t *testing.T) {
	env := setup(t, true)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute(context.Background(), []string{"--epilogue=false"}, &stdout, &stderr))

	env.riot.mu.Lock()
	env.riot.earned = 7000
	env.riot.mu.Unlock()

	stdout.Reset()
	require.Equal(t, 0, execute(context.Background(), []string{"--epilogue=false"}, &stdout, &stderr))

	assert.Equal(t, 1, env.riot.count("authorize"))
	assert.Equal(t, 1, env.riot.count("version"))
	assert.Equal(t, 2, env.riot.count("contracts"))
	assert.Contains(t, stdout.String(), "Since last check: +2000 XP")
	assert.NotContains(t, stdout.String(), "Epilogue")
}

func TestExecute_NoHistory(t *testing.T) {
	env := setup(t, true)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute(context.Background(), []string{"--no-history"}, &stdout, &stderr))

	_, err := os.Stat(filepath.Join(env.dir, "history.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestExecute_ProgressNotFoundExitsNonZero(t *testing.T) {
	env := setup(t, false)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Could not read battlepass progress")

	assert.Equal(t, 2, env.riot.count("contracts"))
	assert.Equal(t, 2, env.riot.count("authorize"))
	assert.Zero(t, env.riot.count("content"))

	data, err := os.ReadFile(env.logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Retrying...", lines[0])
	assert.Contains(t, lines[1], "battlepass progress not found")
}

func TestExecute_MissingEnvironment(t *testing.T) {
	env := setup(t, true)
	t.Setenv("LOCALAPPDATA", "")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, execute(context.Background(), nil, &stdout, &stderr))

	data, err := os.ReadFile(env.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "local data directory is not set")
	assert.Zero(t, env.riot.count("contracts"))
}

func TestExecute_ResetClearsCache(t *testing.T) {
	env := setup(t, true)

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute(context.Background(), nil, &stdout, &stderr))
	require.Equal(t, 0, execute(context.Background(), nil, &stdout, &stderr))
	assert.Equal(t, 1, env.riot.count("authorize"))

	require.Equal(t, 0, execute(context.Background(), []string{"--reset"}, &stdout, &stderr))
	assert.Equal(t, 2, env.riot.count("authorize"))
	assert.Equal(t, 2, env.riot.count("version"))
	assert.Equal(t, 3, env.riot.count("contracts"))
}

func TestExecute_ContractFlag(t *testing.T) {
	env := setup(t, true)

	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--contract", agentContract, "--epilogue=false"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, strings.Join([]string{
		"Battlepass: tier 4/50",
		"Progress: 1.22% (968,000 XP remaining)",
		"Season ends in: 5 days, 1 hours, 0 minutes, 0 seconds",
		"",
	}, "\n"), stdout.String())

	store, err := history.Open(filepath.Join(env.dir, "history.db"))
	require.NoError(t, err)
	defer store.Close()

	snapshots, err := store.List(context.Background(), history.Filter{})
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, agentContract, snapshots[0].ContractID)
	assert.Equal(t, 12000, snapshots[0].XPEarned)
	assert.Equal(t, 4, snapshots[0].LevelReached)
}

func TestExecute_ConfigErrorReachesLogFile(t *testing.T) {
	env := setup(t, true)
	t.Setenv("BP_TZ_OFFSET", "two hours")

	require.NoError(t, os.WriteFile(env.logFile, []byte("stale failure\n"), 0o644))

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, execute(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Could not read battlepass progress, see "+env.logFile)
	assert.Zero(t, env.riot.count("version"))

	data, err := os.ReadFile(env.logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "parse env")
	assert.NotContains(t, string(data), "stale failure")
}
