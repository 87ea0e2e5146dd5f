package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/libol"
	"golang.org/x/net/websocket"
)

type Event struct {
	Simulator Simulator
}

func (h Event) Router(router *mux.Router) {
	router.HandleFunc("/api/event", h.List).Methods("GET")
	router.Handle("/api/event/stream", websocket.Handler(h.Stream)).Methods("GET")
}

func (h Event) List(w http.ResponseWriter, r *http.Request) {
	ResponseJson(w, h.Simulator.ListEvents(GetQueryInt(r, "limit", 0)))
}

// Stream pushes every new event to the client as a JSON frame until
// either side goes away.
func (h Event) Stream(ws *websocket.Conn) {
	defer ws.Close()
	ch, cancel := h.Simulator.Subscribe(64)
	defer cancel()

	libol.Go(func() {
		var msg string
		for {
			if err := websocket.Message.Receive(ws, &msg); err != nil {
				cancel()
				return
			}
		}
	})
	for ev := range ch {
		if err := websocket.JSON.Send(ws, ev); err != nil {
			libol.Debug("Event.Stream %s", err)
			return
		}
	}
}

type Message struct {
	Simulator Simulator
}

func (h Message) Router(router *mux.Router) {
	router.HandleFunc("/api/message", h.List).Methods("GET")
	router.HandleFunc("/api/tunnel/{id}/message", h.Get).Methods("GET")
}

func (h Message) List(w http.ResponseWriter, r *http.Request) {
	tunnel := GetQueryOne(r, "tunnel")
	ResponseJson(w, h.Simulator.ListMessages(tunnel, GetQueryInt(r, "limit", 0)))
}

func (h Message) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ResponseJson(w, h.Simulator.ListMessages(id, GetQueryInt(r, "limit", 0)))
}
