package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/wiretidy/pkg/beautify"
	"github.com/matzehuels/wiretidy/pkg/buildinfo"
	"github.com/matzehuels/wiretidy/pkg/circuit"
	"github.com/matzehuels/wiretidy/pkg/errors"
	"github.com/matzehuels/wiretidy/pkg/pipeline"
)

// request is the body of POST /v1/layout and POST /v1/check.
type request struct {
	Model        json.RawMessage `json:"model"`
	WiresToRoute []string        `json:"wires_to_route,omitempty"`
	Config       beautify.Config `json:"config"`
	Refresh      bool            `json:"refresh,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	m, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Execute(r.Context(), m, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	m, opts, err := s.decode(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.runner.Check(r.Context(), m, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// decode reads a request body into a validated model and pipeline options.
// Config fields the request leaves out keep the server's defaults.
func (s *Server) decode(r *http.Request) (*circuit.Model, pipeline.Options, error) {
	req := request{Config: s.defaults}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if len(req.Model) == 0 || bytes.Equal(req.Model, []byte("null")) {
		return nil, pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "model is required")
	}
	m, err := circuit.ReadModel(bytes.NewReader(req.Model))
	if err != nil {
		return nil, pipeline.Options{}, err
	}

	return m, pipeline.Options{
		Config:       req.Config,
		WiresToRoute: req.WiresToRoute,
		Refresh:      req.Refresh,
	}, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
