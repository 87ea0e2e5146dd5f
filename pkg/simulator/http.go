package simulator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/api"
	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/vpn"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Oops!", http.StatusNotFound)
}

func NotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Oops!", http.StatusMethodNotAllowed)
}

type Http struct {
	manager    *vpn.Manager
	listen     string
	rate       int
	adminToken string
	adminFile  string
	server     *http.Server
	crtFile    string
	keyFile    string
	router     *mux.Router
	lock       sync.Mutex
}

func NewHttp(m *vpn.Manager, c *co.Simulator) (h *Http) {
	h = &Http{
		manager:   m,
		adminFile: c.TokenFile,
	}
	if c.Http != nil {
		h.listen = c.Http.Listen
		h.rate = c.Http.Rate
		h.crtFile = c.Http.Cert
		h.keyFile = c.Http.Key
	}
	return
}

func (h *Http) Initialize() {
	r := h.Router()
	if h.server == nil {
		h.server = &http.Server{
			Addr:         h.listen,
			Handler:      r,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 10 * time.Minute,
		}
	}
	h.LoadToken()
	h.SaveToken()
	h.LoadRouter()
}

func (h *Http) PProf(r *mux.Router) {
	if r != nil {
		r.HandleFunc("/debug/pprof/", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

func (h *Http) Prome(r *mux.Router) {
	if r != nil {
		handler := promhttp.HandlerFor(h.manager.Metrics(), promhttp.HandlerOpts{})
		r.Handle("/metrics", handler)
	}
}

func (h *Http) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		libol.Debug("Http.Middleware %s %s", r.Method, r.URL.Path)
		if h.IsAuth(w, r) {
			latst := time.Now().Unix()
			next.ServeHTTP(w, r)
			dt := time.Now().Unix() - latst
			if dt > 2 && !strings.HasSuffix(r.URL.Path, "/stream") {
				libol.Warn("Http.Middleware %s %s long time %d", r.Method, r.URL.Path, dt)
			}
		} else {
			w.Header().Set("WWW-Authenticate", "Basic")
			http.Error(w, "Authorization Required", http.StatusUnauthorized)
		}
	})
}

func (h *Http) Router() *mux.Router {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.router == nil {
		h.router = mux.NewRouter()
		h.router.NotFoundHandler = http.HandlerFunc(NotFound)
		h.router.MethodNotAllowedHandler = http.HandlerFunc(NotAllowed)
		h.router.Use(h.Middleware)
	}
	return h.router
}

func (h *Http) SaveToken() {
	if h.adminFile == "" {
		return
	}
	f, err := os.OpenFile(h.adminFile, os.O_RDWR|os.O_TRUNC|os.O_CREATE, 0600)
	if err != nil {
		libol.Error("Http.SaveToken: %s", err)
		return
	}
	defer f.Close()
	if _, err := f.Write([]byte(h.adminToken)); err != nil {
		libol.Error("Http.SaveToken: %s", err)
		return
	}
}

func (h *Http) LoadRouter() {
	router := h.Router()

	h.PProf(router)
	h.Prome(router)
	router.HandleFunc("/api/urls", h.GetApi).Methods("GET")
	api.Add(router, h.manager, h.rate)
}

func (h *Http) LoadToken() {
	token := h.adminToken
	if _, err := os.Stat(h.adminFile); h.adminFile == "" || os.IsNotExist(err) {
		libol.Info("Http.LoadToken: file:%s does not exist", h.adminFile)
	} else {
		contents, err := os.ReadFile(h.adminFile)
		if err != nil {
			libol.Error("Http.LoadToken: file:%s %s", h.adminFile, err)
		} else {
			token = strings.TrimSpace(string(contents))
		}
	}
	if token == "" {
		token = libol.GenString(32)
	}
	h.SetToken(token)
}

func (h *Http) SetToken(value string) {
	h.adminToken = value
}

func (h *Http) Token() string {
	return h.adminToken
}

func (h *Http) Start() {
	h.Initialize()

	libol.Info("Http.Start %s", h.listen)
	promise := &libol.Promise{
		First:  time.Second * 2,
		MaxInt: time.Minute,
		MinInt: time.Second * 10,
	}
	promise.Go(func() error {
		var err error
		if h.keyFile == "" || h.crtFile == "" {
			err = h.server.ListenAndServe()
		} else {
			err = h.server.ListenAndServeTLS(h.crtFile, h.keyFile)
		}
		if err == http.ErrServerClosed {
			return nil
		}
		if err != nil {
			libol.Error("Http.Start on %s: %s", h.listen, err)
		}
		return err
	})
}

func (h *Http) Shutdown() {
	libol.Info("Http.Shutdown %s", h.listen)
	if h.server == nil {
		return
	}
	if err := h.server.Shutdown(context.Background()); err != nil {
		libol.Error("Http.Shutdown: %v", err)
	}
}

// IsAuth accepts basic auth whose user is the admin token.
func (h *Http) IsAuth(w http.ResponseWriter, r *http.Request) bool {
	user, _, ok := r.BasicAuth()
	if !ok {
		return false
	}
	return user == h.adminToken
}

func (h *Http) GetApi(w http.ResponseWriter, r *http.Request) {
	var urls []string
	_ = h.router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil || !strings.HasPrefix(path, "/api") {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			return nil
		}
		for _, m := range methods {
			urls = append(urls, fmt.Sprintf("%-6s %s", m, path))
		}
		return nil
	})
	api.ResponseYaml(w, urls)
}
