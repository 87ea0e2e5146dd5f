package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/catalog"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/schema"
)

type SA struct {
	Simulator Simulator
}

func (h SA) Router(router *mux.Router) {
	router.HandleFunc("/api/sa", h.List).Methods("GET")
}

func (h SA) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.ListSAs(GetQueryOne(r, "class")))
}

type Stats struct {
	Simulator Simulator
}

func (h Stats) Router(router *mux.Router) {
	router.HandleFunc("/api/stats", h.Get).Methods("GET")
	router.HandleFunc("/api/active", h.Active).Methods("PUT")
	router.HandleFunc("/api/index", h.Index).Methods("GET")
}

func (h Stats) Index(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.Index())
}

func (h Stats) Get(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.Stats())
}

func (h Stats) Active(w http.ResponseWriter, r *http.Request) {
	obj := &schema.Active{}
	if err := GetData(r, obj); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Simulator.SetActive(obj.Active)
	ResponseMsg(w, 0, "")
}

type Engine struct {
	Simulator Simulator
}

func (h Engine) Router(router *mux.Router) {
	router.HandleFunc("/api/engine", h.Get).Methods("GET")
	router.HandleFunc("/api/engine/start", h.Start).Methods("PUT")
	router.HandleFunc("/api/engine/stop", h.Stop).Methods("PUT")
}

func (h Engine) Get(w http.ResponseWriter, r *http.Request) {
	s := h.Simulator.Stats()
	ResponseJson(w, map[string]interface{}{
		"running": s.Running,
		"active":  s.Active,
		"uptime":  h.Simulator.UpTime(),
	})
}

func (h Engine) Start(w http.ResponseWriter, r *http.Request) {
	h.Simulator.Start()
	ResponseMsg(w, 0, "")
}

func (h Engine) Stop(w http.ResponseWriter, r *http.Request) {
	h.Simulator.Stop()
	ResponseMsg(w, 0, "")
}

type Proposal struct {
}

func (h Proposal) Router(router *mux.Router) {
	router.HandleFunc("/api/proposal", h.List).Methods("GET")
	router.HandleFunc("/api/endpoint", h.Endpoints).Methods("GET")
}

func (h Proposal) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, catalog.All())
}

func (h Proposal) Endpoints(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, catalog.Endpoints())
}

type Log struct {
}

func (l Log) Router(router *mux.Router) {
	router.HandleFunc("/api/log", l.List).Methods("GET")
	router.HandleFunc("/api/log", l.Add).Methods("POST")
}

func (l Log) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, schema.NewLogSchema())
}

func (l Log) Add(w http.ResponseWriter, r *http.Request) {
	log := &schema.Log{}
	if err := GetData(r, log); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	libol.SetLevel(log.Level)
	ResponseMsg(w, 0, "")
}

type Version struct {
}

func (l Version) Router(router *mux.Router) {
	router.HandleFunc("/api/version", l.List).Methods("GET")
}

func (l Version) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, schema.NewVersionSchema())
}
