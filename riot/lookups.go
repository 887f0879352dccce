package riot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const sessionCookie = "ssid"

var (
	shooterGameLog  = []string{"VALORANT", "Saved", "Logs", "ShooterGame.log"}
	privateSettings = []string{"Riot Games", "Riot Client", "Data", "RiotGamesPrivateSettings.yaml"}

	// glz hosts look like https://glz-eu-1.eu.a.pvp.net, the second label is the shard
	shardPattern = regexp.MustCompile(`https://glz-[a-z0-9]+-1\.([a-z0-9]+)\.a\.pvp\.net`)
)

// Lookups fetch a single credential from its source when the cache does not have it.
type Lookups interface {
	ClientVersion(ctx context.Context) (string, error)
	Shard(ctx context.Context) (string, error)
	SessionID(ctx context.Context) (string, error)
	AccessToken(ctx context.Context, sessionID string) (string, error)
	PlayerID(ctx context.Context, accessToken string) (string, error)
	EntitlementsToken(ctx context.Context, accessToken string) (string, error)
}

var _ Lookups = (*Client)(nil)

func (c *Client) ClientVersion(ctx context.Context) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoints.Version, nil)
	if err != nil {
		return "", err
	}

	var version versionT

	if err := c.doJSON(req, &version); err != nil {
		return "", err
	}

	if version.Data.RiotClientVersion == "" {
		return "", fmt.Errorf("%w: version response has no riotClientVersion", ErrUpstreamData)
	}

	return version.Data.RiotClientVersion, nil
}

func (c *Client) Shard(_ context.Context) (string, error) {
	path, err := c.localPath(shooterGameLog...)
	if err != nil {
		return "", err
	}

	data, err := readArtifact(path)
	if err != nil {
		return "", err
	}

	match := shardPattern.FindSubmatch(data)
	if match == nil {
		return "", fmt.Errorf("%w: no game server host in %s", ErrParse, path)
	}

	return string(match[1]), nil
}

func (c *Client) SessionID(_ context.Context) (string, error) {
	path, err := c.localPath(privateSettings...)
	if err != nil {
		return "", err
	}

	data, err := readArtifact(path)
	if err != nil {
		return "", err
	}

	var settings settingsT

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	for _, cookie := range settings.RiotLogin.Persist.Session.Cookies {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", fmt.Errorf("%w: no %s cookie in %s", ErrParse, sessionCookie, path)
}

// AccessToken trades the session cookie for an access token. The authorize
// endpoint answers with a redirect to the callback URL carrying the token in
// its fragment, so the redirect is read instead of followed.
func (c *Client) AccessToken(ctx context.Context, sessionID string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoints.Authorize, nil)
	if err != nil {
		return "", err
	}

	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: sessionID})

	resp, err := c.noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	location := resp.Header.Get("Location")

	c.log.WithField("status", resp.StatusCode).Debug("authorize redirect")

	if !strings.HasPrefix(location, c.endpoints.Callback) {
		return "", fmt.Errorf("%w: redirected to %q instead of %s", ErrAuthExchange, location, c.endpoints.Callback)
	}

	target, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthExchange, err)
	}

	fragment, err := url.ParseQuery(target.Fragment)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthExchange, err)
	}

	token := fragment.Get("access_token")
	if token == "" {
		return "", fmt.Errorf("%w: no access_token in redirect", ErrAuthExchange)
	}

	return token, nil
}

func (c *Client) PlayerID(ctx context.Context, accessToken string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.UserInfo, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	var info userInfoT

	if err := c.doJSON(req, &info); err != nil {
		return "", err
	}

	if info.Sub == "" {
		return "", fmt.Errorf("%w: userinfo response has no sub", ErrUpstreamData)
	}

	return info.Sub, nil
}

func (c *Client) EntitlementsToken(ctx context.Context, accessToken string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.Entitlements, struct{}{})
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	var entitlements entitlementsT

	if err := c.doJSON(req, &entitlements); err != nil {
		return "", err
	}

	if entitlements.EntitlementsToken == "" {
		return "", fmt.Errorf("%w: entitlements response has no entitlements_token", ErrUpstreamData)
	}

	return entitlements.EntitlementsToken, nil
}

func (c *Client) localPath(elem ...string) (string, error) {
	if c.localAppData == "" {
		return "", ErrMissingEnvironment
	}

	return filepath.Join(append([]string{c.localAppData}, elem...)...), nil
}

func readArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLocalArtifactMissing, path)
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return data, nil
}
