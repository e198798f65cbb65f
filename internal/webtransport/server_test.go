package webtransport

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txwerewolves/wwserver/internal/config"
	"github.com/txwerewolves/wwserver/internal/registry"
	"github.com/txwerewolves/wwserver/internal/signalbus"
)

func newTestServer() (*Server, *httptest.Server) {
	users := registry.NewUserRegistry()
	sessions := registry.NewSessionRegistry()
	bus := signalbus.New(sessions, users)
	s := NewServer(config.WebConfig{Enabled: true, BindAddr: ":0"}, users, sessions, bus)
	return s, httptest.NewServer(s.routes())
}

func login(t *testing.T, client *http.Client, base, name string) {
	t.Helper()
	resp, err := client.PostForm(base+"/login", url.Values{"name": {name}})
	require.NoError(t, err)
	defer resp.Body.Close()
}

func cookieJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return jar
}

func TestLoginSetsCookieAndCreatesApp(t *testing.T) {
	s, ts := newTestServer()
	defer ts.Close()

	jar := cookieJar(t)
	client := &http.Client{Jar: jar}

	resp, err := client.PostForm(ts.URL+"/login", url.Values{"name": {"alice"}})
	require.NoError(t, err)
	resp.Body.Close()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	cookies := jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)

	assert.NotNil(t, s.users.Get("alice"))
}

func TestActionCreateSessionRequiresLogin(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/action", "application/json", strings.NewReader(`{"id":"create-session"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestActionCreateSessionSucceedsAfterLogin(t *testing.T) {
	s, ts := newTestServer()
	defer ts.Close()

	jar := cookieJar(t)
	client := &http.Client{Jar: jar}
	login(t, client, ts.URL, "alice")

	body, err := json.Marshal(actionRequest{ID: "create-session"})
	require.NoError(t, err)
	resp, err := client.Post(ts.URL+"/action", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	u := s.users.Get("alice")
	require.NotNil(t, u)
	assert.NotEmpty(t, u.JoinedID())
}

func TestLobbyPageServesEmbeddedAsset(t *testing.T) {
	_, ts := newTestServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lobby")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
