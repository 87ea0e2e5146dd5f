package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
	"gopkg.in/yaml.v2"
)

func ResponseJson(w http.ResponseWriter, v interface{}) {
	str, err := json.Marshal(v)
	if err == nil {
		libol.Debug("ResponseJson: %s", str)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ResponseMsg(w http.ResponseWriter, code int, message string) {
	ret := &schema.Message{
		Code:    code,
		Message: message,
	}
	ResponseJson(w, ret)
}

func ResponseYaml(w http.ResponseWriter, v interface{}) {
	str, err := yaml.Marshal(v)
	if err == nil {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StatusOf maps an engine error to the HTTP status reported for it.
func StatusOf(err error) int {
	switch models.CodeOf(err) {
	case models.TunnelNotFound, models.ProposalNotFound, models.EndpointNotFound:
		return http.StatusNotFound
	case models.InvalidParams:
		return http.StatusBadRequest
	case models.EngineStopped, models.TunnelNotEstablished, models.SAExhausted,
		models.Timeout, models.DPDTimeout, models.ProposalMismatch, models.AuthFailure:
		return http.StatusConflict
	case models.UnknownSPI, models.SAExpired, models.ReplayDetected, models.AuthenticationFailed:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func ResponseError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusOf(err))
}

func GetData(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return err
	}
	return nil
}

func GetQueryOne(req *http.Request, name string) string {
	query := req.URL.Query()
	if values, ok := query[name]; ok {
		return values[0]
	}
	return ""
}

func GetQueryInt(req *http.Request, name string, value int) int {
	if str := GetQueryOne(req, name); str != "" {
		if v, err := strconv.Atoi(str); err == nil {
			return v
		}
	}
	return value
}
