package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/schema"
	"golang.org/x/time/rate"
)

type Packet struct {
	Simulator Simulator
	limiter   *rate.Limiter
}

// NewPacket admits perSec submissions a second with a burst of twice
// that.
func NewPacket(sim Simulator, perSec int) Packet {
	if perSec <= 0 {
		perSec = 50
	}
	return Packet{
		Simulator: sim,
		limiter:   rate.NewLimiter(rate.Limit(perSec), perSec*2),
	}
}

func (h Packet) Router(router *mux.Router) {
	router.HandleFunc("/api/packet", h.List).Methods("GET")
	router.HandleFunc("/api/packet", h.Post).Methods("POST")
	router.HandleFunc("/api/packet/decrypt", h.Decrypt).Methods("POST")
	router.HandleFunc("/api/tunnel/{id}/packet", h.PostTo).Methods("POST")
}

func (h Packet) allow(w http.ResponseWriter) bool {
	if h.limiter != nil && !h.limiter.Allow() {
		http.Error(w, "too many packets", http.StatusTooManyRequests)
		return false
	}
	return true
}

func (h Packet) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.ListPackets(GetQueryInt(r, "limit", 0)))
}

func (h Packet) Post(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}
	p := &schema.Packet{}
	if err := GetData(r, p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obj, err := h.Simulator.EncryptPacket(*p)
	if err != nil {
		ResponseError(w, err)
		return
	}
	if obj == nil {
		http.Error(w, "no established tunnel", http.StatusConflict)
		return
	}
	ResponseJson(w, obj)
}

func (h Packet) PostTo(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}
	p := &schema.Packet{}
	if err := GetData(r, p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obj, err := h.Simulator.Encapsulate(mux.Vars(r)["id"], *p)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseJson(w, obj)
}

func (h Packet) Decrypt(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}
	p := &schema.ESPPacket{}
	if err := GetData(r, p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obj, err := h.Simulator.DecryptPacket(p)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseJson(w, obj)
}
