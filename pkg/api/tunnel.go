package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/schema"
)

type Tunnel struct {
	Simulator Simulator
}

func (h Tunnel) Router(router *mux.Router) {
	router.HandleFunc("/api/tunnel", h.List).Methods("GET")
	router.HandleFunc("/api/tunnel", h.Post).Methods("POST")
	router.HandleFunc("/api/tunnel/{id}", h.Get).Methods("GET")
	router.HandleFunc("/api/tunnel/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/api/tunnel/{id}/connect", h.Connect).Methods("PUT")
	router.HandleFunc("/api/tunnel/{id}/disconnect", h.Disconnect).Methods("PUT")
	router.HandleFunc("/api/tunnel/{id}/rekey", h.Rekey).Methods("PUT")
	router.HandleFunc("/api/tunnel/{id}/dpd", h.DPD).Methods("PUT")
	router.HandleFunc("/api/tunnel/{id}/peer", h.Peer).Methods("PUT")
	router.HandleFunc("/api/tunnel/{id}/select", h.SelectOne).Methods("PUT")
	router.HandleFunc("/api/select", h.Select).Methods("PUT")
}

func (h Tunnel) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.ListTunnels())
}

func (h Tunnel) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	obj, err := h.Simulator.GetTunnel(id)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseJson(w, obj)
}

func (h Tunnel) Post(w http.ResponseWriter, r *http.Request) {
	params := &schema.TunnelParams{}
	if err := GetData(r, params); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	obj, err := h.Simulator.CreateTunnel(*params)
	if err != nil {
		libol.Warn("Tunnel.Post %s: %s", params.Name, err)
		ResponseError(w, err)
		return
	}
	ResponseJson(w, obj)
}

func (h Tunnel) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Simulator.DeleteTunnel(id); err != nil {
		ResponseError(w, err)
		return
	}
	ResponseMsg(w, 0, "")
}

func (h Tunnel) do(w http.ResponseWriter, r *http.Request, call func(id string) (schema.Tunnel, error)) {
	id := mux.Vars(r)["id"]
	obj, err := call(id)
	if err != nil {
		ResponseError(w, err)
		return
	}
	ResponseJson(w, obj)
}

func (h Tunnel) Connect(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, h.Simulator.Connect)
}

func (h Tunnel) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, h.Simulator.Disconnect)
}

func (h Tunnel) Rekey(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, h.Simulator.Rekey)
}

func (h Tunnel) DPD(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, h.Simulator.RunDeadPeerDetection)
}

func (h Tunnel) Peer(w http.ResponseWriter, r *http.Request) {
	state := &schema.PeerState{}
	if err := GetData(r, state); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.do(w, r, func(id string) (schema.Tunnel, error) {
		return h.Simulator.SetPeerAlive(id, state.Alive)
	})
}

func (h Tunnel) SelectOne(w http.ResponseWriter, r *http.Request) {
	h.do(w, r, func(id string) (schema.Tunnel, error) {
		if err := h.Simulator.SelectTunnel(id); err != nil {
			return schema.Tunnel{}, err
		}
		return h.Simulator.GetTunnel(id)
	})
}

func (h Tunnel) Select(w http.ResponseWriter, r *http.Request) {
	sel := &schema.Select{}
	if err := GetData(r, sel); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Simulator.SelectTunnel(sel.ID); err != nil {
		ResponseError(w, err)
		return
	}
	ResponseMsg(w, 0, "")
}
