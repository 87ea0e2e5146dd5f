package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/luscis/vpnsim/cmd/api"
	"github.com/luscis/vpnsim/pkg/libol"
	"golang.org/x/net/websocket"
)

type Client struct {
	Auth libol.Auth
}

func (cl Client) NewRequest(url string) *libol.HttpClient {
	client := &libol.HttpClient{
		Auth: libol.Auth{
			Type:     "basic",
			Username: cl.Auth.Username,
			Password: cl.Auth.Password,
		},
		Url: url,
	}
	return client
}

func (cl Client) JSON(client *libol.HttpClient, i, o interface{}) error {
	out := cl.Log()
	if i != nil {
		data, err := json.Marshal(i)
		if err != nil {
			return err
		}
		out.Debug("Client.JSON -> %s", string(data))
		client.Payload = bytes.NewReader(data)
	}
	out.Debug("Client.JSON -> %s %s", client.Method, client.Url)
	r, err := client.Do()
	if err != nil {
		return err
	}
	defer r.Body.Close()
	defer client.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	out.Debug("Client.JSON <- %s", string(body))
	if r.StatusCode != http.StatusOK {
		return libol.NewErr("%s %s", r.Status, strings.TrimSpace(string(body)))
	} else if o != nil {
		if err := json.Unmarshal(body, o); err != nil {
			return err
		}
	}
	return nil
}

func (cl Client) GetJSON(url string, v interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "GET"
	return cl.JSON(client, nil, v)
}

func (cl Client) PostJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "POST"
	return cl.JSON(client, i, o)
}

func (cl Client) PutJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "PUT"
	return cl.JSON(client, i, o)
}

func (cl Client) DeleteJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "DELETE"
	return cl.JSON(client, i, o)
}

// Dial opens a websocket on the http(s) url given.
func (cl Client) Dial(url string) (*websocket.Conn, error) {
	origin := url
	if strings.HasPrefix(url, "https://") {
		url = "wss://" + strings.TrimPrefix(url, "https://")
	} else {
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	config, err := websocket.NewConfig(url, origin)
	if err != nil {
		return nil, err
	}
	config.Header.Set("Authorization", libol.BasicAuth(cl.Auth.Username, cl.Auth.Password))
	return websocket.DialConfig(config)
}

func (cl Client) Log() *libol.SubLogger {
	return libol.NewSubLogger("cli")
}

type Cmd struct {
}

func (c Cmd) NewHttp(token string) Client {
	values := strings.SplitN(token, ":", 2)
	username := values[0]
	password := values[0]
	if len(values) == 2 {
		password = values[1]
	}
	client := Client{
		Auth: libol.Auth{
			Username: username,
			Password: password,
		},
	}
	return client
}

func (c Cmd) Out(data interface{}, format string, tmpl string) error {
	if tmpl == "" {
		format = "yaml"
	}
	return api.Out(data, format, tmpl)
}

func (c Cmd) Log() *libol.SubLogger {
	return libol.NewSubLogger("cli")
}
