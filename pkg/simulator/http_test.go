package simulator

import (
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"

	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/stretchr/testify/assert"
)

func newSimulator(t *testing.T) *Simulator {
	c := &co.Simulator{
		Http:      &co.Http{Listen: "127.0.0.1:0"},
		Engine:    co.Engine{Tick: 3600},
		ConfDir:   t.TempDir(),
	}
	s := NewSimulator(c)
	s.manager.Start()
	t.Cleanup(s.manager.Stop)
	s.http.Initialize()
	assert.Equal(t, path.Join(c.ConfDir, "token"), c.TokenFile, "be the same.")
	return s
}

func get(h *Http, url, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", url, nil)
	if user != "" {
		req.SetBasicAuth(user, "")
	}
	w := httptest.NewRecorder()
	h.Router().ServeHTTP(w, req)
	return w
}

func TestHttpAuth(t *testing.T) {
	s := newSimulator(t)
	h := s.Http()

	assert.Equal(t, 32, len(h.Token()), "be the same.")
	w := get(h, "/api/version", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "be the same.")
	w = get(h, "/api/version", "nobody")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "be the same.")
	w = get(h, "/api/version", h.Token())
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.Contains(t, w.Body.String(), libol.Version, "MUST report version")

	w = get(h, "/api/nothing", h.Token())
	assert.Equal(t, http.StatusNotFound, w.Code, "be the same.")
}

func TestHttpTokenPersisted(t *testing.T) {
	s := newSimulator(t)
	token := s.Http().Token()

	other := NewHttp(s.Manager(), s.cfg)
	other.LoadToken()
	assert.Equal(t, token, other.Token(), "MUST reuse the saved token")
}

func TestHttpUrlsAndMetrics(t *testing.T) {
	s := newSimulator(t)
	h := s.Http()

	w := get(h, "/api/urls", h.Token())
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.Contains(t, w.Body.String(), "POST   /api/tunnel", "MUST list routes")

	w = get(h, "/metrics", h.Token())
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.True(t, strings.Contains(w.Body.String(), "vpnsim_running"), "MUST expose engine metrics")
}
