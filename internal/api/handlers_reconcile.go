package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/xrefmend/internal/diag"
	"github.com/dgallion1/xrefmend/internal/mdast"
	"github.com/dgallion1/xrefmend/internal/pipeline"
	"github.com/dgallion1/xrefmend/internal/resolve"
)

type reconcileRequest struct {
	Tree      *mdast.Node       `json:"tree"`
	Resolve   bool              `json:"resolve,omitempty"`
	Templates map[string]string `json:"templates,omitempty"`
}

// handleReconcile runs the transforms over a JSON tree. Trees are taken as
// already resolved unless resolve is set.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Tree == nil {
		jsonError(w, "tree is required", http.StatusBadRequest)
		return
	}
	if err := mdast.Validate(req.Tree); err != nil {
		jsonError(w, "invalid tree: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := pipeline.EngineOptions{Stats: s.stats, Log: s.log}
	if req.Resolve || len(req.Templates) > 0 {
		templates := make(map[string]string, len(s.templates)+len(req.Templates))
		for k, v := range s.templates {
			templates[k] = v
		}
		for k, v := range req.Templates {
			templates[k] = v
		}
		opts.Resolver = resolve.New(templates)
	}

	res := pipeline.NewEngine(opts).Process(req.Tree, diag.NewFile("request.json", s.log))
	writeJSON(w, http.StatusOK, res)
}

// handleReconcileFile parses an uploaded document and reconciles it
// synchronously.
func (s *Server) handleReconcileFile(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.singleUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	res, err := s.orchestrator.Engine().ProcessBytes(data, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	res.Tree = nil
	writeJSON(w, http.StatusOK, res)
}
