package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/wzrd/pkg/buildinfo"
	"github.com/matzehuels/wzrd/pkg/core/dag"
	"github.com/matzehuels/wzrd/pkg/core/eval"
	"github.com/matzehuels/wzrd/pkg/core/importer"
	"github.com/matzehuels/wzrd/pkg/core/template"
	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
	"github.com/matzehuels/wzrd/pkg/graph"
	"github.com/matzehuels/wzrd/pkg/pipeline"
	"github.com/matzehuels/wzrd/pkg/store"
)

// =============================================================================
// Wire Types
// =============================================================================

// Request is the body of the pipeline endpoints. Either Script or Graph is
// set; Graph wins when both are.
type Request struct {
	pipeline.Options
	Graph *graph.Document `json:"graph,omitempty"`
}

// GraphResponse carries a graph document and how it was produced.
type GraphResponse struct {
	Graph  graph.Document `json:"graph"`
	Layout *graph.Layout  `json:"layout,omitempty"`
	Cached bool           `json:"cached"`
}

// TextResponse carries generated script text.
type TextResponse struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Cached   bool   `json:"cached"`
}

// RenderResponse carries artifacts keyed by format. Binary formats are
// base64 encoded by encoding/json.
type RenderResponse struct {
	Artifacts map[string][]byte `json:"artifacts"`
	Cached    bool              `json:"cached"`
}

// StoredResponse reports the key a graph was stored under.
type StoredResponse struct {
	ID string `json:"id"`
}

// KeysResponse lists stored keys.
type KeysResponse struct {
	Keys []string `json:"keys"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    wzerrors.Code `json:"code"`
	Message string        `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	cat := s.Runner.Catalog
	list := cat.All()
	if picker, _ := strconv.ParseBool(r.URL.Query().Get("picker")); picker {
		list = template.NewStdRegistry(cat).All()
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) importScript(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := s.options(req)
	g, sigs, hit, err := s.Runner.ImportWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := GraphResponse{Cached: hit}
	if !opts.NoLayout && g.NodeCount() > 0 {
		if lay, err := s.Runner.Layout(r.Context(), g, sigs, opts); err == nil {
			resp.Layout = &lay
		}
	}
	resp.Graph = graph.FromDAG(g, sigs)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	g, sigs, ok := s.input(w, r, req)
	if !ok {
		return
	}
	text, hit := s.Runner.GenerateWithCacheInfo(r.Context(), g, sigs)
	s.writeJSON(w, http.StatusOK, TextResponse{Text: text, Fallback: eval.IsFallback(text), Cached: hit})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	g, sigs, ok := s.input(w, r, req)
	if !ok {
		return
	}
	lay, hit, err := s.Runner.LayoutWithCacheInfo(r.Context(), g, sigs, s.options(req))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, GraphResponse{Graph: graph.FromDAG(g, sigs), Layout: &lay, Cached: hit})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	opts := s.options(req)
	opts.SetRenderDefaults()
	if err := opts.ValidateForRender(); err != nil {
		s.writeError(w, err)
		return
	}

	g, sigs, ok := s.input(w, r, req)
	if !ok {
		return
	}
	if req.Graph == nil && !opts.NoLayout && g.NodeCount() > 0 {
		if _, err := s.Runner.Layout(r.Context(), g, sigs, opts); err != nil {
			s.Logger.Debug("layout skipped", "err", err)
		}
	}

	artifacts, hit, err := s.Runner.RenderWithCacheInfo(r.Context(), g, sigs, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if raw, _ := strconv.ParseBool(r.URL.Query().Get("raw")); raw {
		if len(opts.Formats) != 1 {
			s.writeError(w, wzerrors.New(wzerrors.ErrCodeInvalidInput, "raw output needs exactly one format"))
			return
		}
		f := opts.Formats[0]
		w.Header().Set("Content-Type", contentTypes[f])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(artifacts[f])
		return
	}
	s.writeJSON(w, http.StatusOK, RenderResponse{Artifacts: artifacts, Cached: hit})
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	keys, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, wzerrors.Wrap(wzerrors.ErrCodeStore, err, "list graphs"))
		return
	}
	if keys == nil {
		keys = []string{}
	}
	s.writeJSON(w, http.StatusOK, KeysResponse{Keys: keys})
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	g, sigs, ok := s.input(w, r, req)
	if !ok {
		return
	}
	id := s.newID()
	if err := store.SaveGraph(r.Context(), s.Store, id, g, sigs); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/v1/graphs/"+id)
	s.writeJSON(w, http.StatusCreated, StoredResponse{ID: id})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := store.LoadDocument(r.Context(), s.Store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	g, sigs, ok := s.input(w, r, req)
	if !ok {
		return
	}
	if err := store.SaveGraph(r.Context(), s.Store, chi.URLParam(r, "id"), g, sigs); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := wzerrors.ValidateKey(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, wzerrors.Wrap(wzerrors.ErrCodeStore, err, "delete %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) graphText(w http.ResponseWriter, r *http.Request) {
	g, sigs, err := store.LoadGraph(r.Context(), s.Store, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	text, hit := s.Runner.GenerateWithCacheInfo(r.Context(), g, sigs)
	s.writeJSON(w, http.StatusOK, TextResponse{Text: text, Fallback: eval.IsFallback(text), Cached: hit})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: errorDetail{
				Code: wzerrors.ErrCodeInvalidInput, Message: "request body too large",
			}})
			return req, false
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("empty body")
		}
		s.writeError(w, wzerrors.Wrap(wzerrors.ErrCodeInvalidInput, err, "invalid request body"))
		return req, false
	}
	return req, true
}

// options merges the request with the server defaults.
func (s *Server) options(req Request) pipeline.Options {
	opts := req.Options
	opts.Logger = s.Logger
	if opts.HGap == 0 {
		opts.HGap = s.Defaults.HGap
	}
	if opts.VGap == 0 {
		opts.VGap = s.Defaults.VGap
	}
	return opts
}

// input returns the graph named by the request: the embedded document, or
// the imported script.
func (s *Server) input(w http.ResponseWriter, r *http.Request, req Request) (*dag.Graph, *importer.SignatureStack, bool) {
	if req.Graph != nil {
		g, sigs, err := graph.ToDAG(*req.Graph)
		if err != nil {
			code := wzerrors.ErrCodeInvalidGraph
			if errors.Is(err, graph.ErrUnsupportedVersion) {
				code = wzerrors.ErrCodeUnsupported
			}
			s.writeError(w, wzerrors.Wrap(code, err, "invalid graph"))
			return nil, nil, false
		}
		return g, sigs, true
	}
	g, sigs, _, err := s.Runner.ImportWithCacheInfo(r.Context(), s.options(req))
	if err != nil {
		s.writeError(w, err)
		return nil, nil, false
	}
	return g, sigs, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := wzerrors.HTTPStatus(err)
	code := wzerrors.GetCode(err)
	if code == "" {
		code = wzerrors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: wzerrors.UserMessage(err)}})
}
