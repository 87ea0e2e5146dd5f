package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/luscis/vpnsim/pkg/vpn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/net/websocket"
)

func newRouter(t *testing.T, rate int) (*mux.Router, *vpn.Manager) {
	m := vpn.NewManager(&co.Simulator{Engine: co.Engine{Tick: 3600}})
	m.Start()
	t.Cleanup(m.Stop)
	router := mux.NewRouter()
	Add(router, m, rate)
	return router, m
}

func do(router *mux.Router, method, url string, v interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if v != nil {
		data, _ := json.Marshal(v)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, url, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func params() schema.TunnelParams {
	return schema.TunnelParams{
		Name:          "branch-hq",
		Local:         "branch",
		Remote:        "hq",
		IKEProposal:   "ike-aes256-sha256-modp2048",
		IPSecProposal: "esp-aes256-sha256-modp2048",
		PSK:           "secret",
	}
}

var sample = schema.Packet{
	SourceIP:   "192.168.10.100",
	DestIP:     "192.168.1.50",
	Protocol:   "tcp",
	SourcePort: 54321,
	DestPort:   80,
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusOf(models.NewError(models.TunnelNotFound, "x")), "be the same.")
	assert.Equal(t, http.StatusBadRequest, StatusOf(models.NewError(models.InvalidParams, "x")), "be the same.")
	assert.Equal(t, http.StatusConflict, StatusOf(models.NewError(models.EngineStopped, "x")), "be the same.")
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(models.NewError(models.ReplayDetected, "x")), "be the same.")
	assert.Equal(t, http.StatusInternalServerError, StatusOf(assert.AnError), "be the same.")
}

func TestTunnelLifecycle(t *testing.T) {
	router, _ := newRouter(t, 0)

	w := do(router, "POST", "/api/tunnel", params())
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	obj := schema.Tunnel{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))
	assert.Equal(t, "established", obj.Status, "be the same.")
	assert.NotEmpty(t, obj.ID, "MUST have an id")

	w = do(router, "GET", "/api/tunnel", nil)
	items := []schema.Tunnel{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Equal(t, 1, len(items), "be the same.")

	w = do(router, "PUT", "/api/tunnel/"+obj.ID+"/rekey", nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))
	assert.Equal(t, 1, obj.RekeyCount, "be the same.")

	w = do(router, "PUT", "/api/tunnel/"+obj.ID+"/disconnect", nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))
	assert.Equal(t, "down", obj.Status, "be the same.")

	w = do(router, "PUT", "/api/tunnel/"+obj.ID+"/rekey", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "be the same.")

	w = do(router, "DELETE", "/api/tunnel/"+obj.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	w = do(router, "GET", "/api/tunnel/"+obj.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "be the same.")
}

func TestTunnelInvalid(t *testing.T) {
	router, _ := newRouter(t, 0)

	p := params()
	p.IKEProposal = "ike-unknown"
	w := do(router, "POST", "/api/tunnel", p)
	assert.NotEqual(t, http.StatusOK, w.Code, "MUST reject unknown proposal")

	req := httptest.NewRequest("POST", "/api/tunnel", strings.NewReader("{bad"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "be the same.")
}

func TestPacketRoundTrip(t *testing.T) {
	router, _ := newRouter(t, 0)

	w := do(router, "POST", "/api/packet", sample)
	assert.Equal(t, http.StatusConflict, w.Code, "MUST fail without a tunnel")

	do(router, "POST", "/api/tunnel", params())
	w = do(router, "POST", "/api/packet", sample)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	esp := schema.ESPPacket{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &esp))
	assert.Equal(t, uint64(1), esp.ESPHeader.SequenceNumber, "be the same.")

	w = do(router, "POST", "/api/packet/decrypt", esp)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	plain := schema.Packet{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &plain))
	assert.Equal(t, sample.DestIP, plain.DestIP, "be the same.")

	w = do(router, "POST", "/api/packet/decrypt", esp)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "MUST detect replay")

	w = do(router, "GET", "/api/packet?limit=5", nil)
	items := []schema.ESPPacket{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.Equal(t, 1, len(items), "be the same.")
}

func TestPacketRateLimit(t *testing.T) {
	router, _ := newRouter(t, 1)
	do(router, "POST", "/api/tunnel", params())

	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		w := do(router, "POST", "/api/packet", sample)
		codes[w.Code]++
	}
	assert.Equal(t, 2, codes[http.StatusOK], "be the same.")
	assert.Equal(t, 3, codes[http.StatusTooManyRequests], "be the same.")
}

func TestEngineStop(t *testing.T) {
	router, _ := newRouter(t, 0)

	w := do(router, "PUT", "/api/engine/stop", nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	w = do(router, "POST", "/api/tunnel", params())
	assert.Equal(t, http.StatusConflict, w.Code, "be the same.")

	w = do(router, "PUT", "/api/engine/start", nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	w = do(router, "POST", "/api/tunnel", params())
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")

	w = do(router, "GET", "/api/stats", nil)
	stats := schema.Stats{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.True(t, stats.Running, "MUST be running")
	assert.Equal(t, 1, stats.Established, "be the same.")
}

func TestSelectAndViews(t *testing.T) {
	router, m := newRouter(t, 0)
	w := do(router, "POST", "/api/tunnel", params())
	obj := schema.Tunnel{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))

	w = do(router, "PUT", "/api/select", schema.Select{ID: obj.ID})
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	assert.Equal(t, obj.ID, m.Selected(), "be the same.")
	w = do(router, "PUT", "/api/select", schema.Select{ID: "nothing"})
	assert.Equal(t, http.StatusNotFound, w.Code, "be the same.")

	w = do(router, "GET", "/api/tunnel/"+obj.ID+"/message", nil)
	msgs := []schema.IKEMessage{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &msgs))
	assert.NotEmpty(t, msgs, "MUST record the negotiation")

	w = do(router, "GET", "/api/sa?class=ipsec", nil)
	sas := []schema.SA{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &sas))
	assert.Equal(t, 2, len(sas), "be the same.")

	w = do(router, "GET", "/api/index", nil)
	index := schema.Index{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &index))
	assert.Equal(t, obj.ID, index.Selected, "be the same.")

	w = do(router, "GET", "/api/proposal", nil)
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	cat := schema.Catalog{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &cat))
	assert.NotEmpty(t, cat.IKE, "MUST list ike proposals")
}

func TestPeerDown(t *testing.T) {
	router, m := newRouter(t, 0)
	w := do(router, "POST", "/api/tunnel", params())
	obj := schema.Tunnel{}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))

	w = do(router, "PUT", "/api/tunnel/"+obj.ID+"/peer", schema.PeerState{Alive: false})
	assert.Equal(t, http.StatusOK, w.Code, "be the same.")
	m.Clock = func() time.Time {
		return time.Now().Add(time.Minute)
	}
	w = do(router, "PUT", "/api/tunnel/"+obj.ID+"/dpd", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "be the same.")
	w = do(router, "GET", "/api/tunnel/"+obj.ID, nil)
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &obj))
	assert.Equal(t, "error", obj.Status, "MUST tear down a dead peer")
	assert.Equal(t, string(models.DPDTimeout), obj.Reason, "be the same.")
}

func TestEventStream(t *testing.T) {
	router, m := newRouter(t, 0)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/event/stream"
	ws, err := websocket.Dial(url, "", server.URL)
	assert.Nil(t, err)
	if err != nil {
		return
	}
	defer ws.Close()

	// the subscription is taken once the handler runs, keep producing
	// events until one arrives.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for i := 0; i < 50; i++ {
			select {
			case <-done:
				return
			case <-time.After(20 * time.Millisecond):
			}
			_ = m.SelectTunnel("")
			_, _ = m.CreateTunnel(params())
		}
	}()
	ev := schema.Event{}
	assert.Nil(t, websocket.JSON.Receive(ws, &ev))
	assert.NotEmpty(t, ev.Message, "MUST carry a message")
}
