package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/xrefmend/internal/pathstore"
)

// docsAvailable writes 503 when document storage is not configured.
func (s *Server) docsAvailable(w http.ResponseWriter) bool {
	if s.docs == nil {
		jsonError(w, "document storage is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// handleListDocuments lists stored documents for a user.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if !s.docsAvailable(w) {
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	children, err := s.docs.ListChildren(r.Context(), "documents/"+userID, 200)
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusBadGateway)
		return
	}
	if children == nil {
		children = []pathstore.ListChildrenResponse{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": children})
}

// handleGetDocument returns the stored output and diagnostics of a document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	if !s.docsAvailable(w) {
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	node, err := s.docs.GetNode(r.Context(), pathstore.DocumentKey(userID, chi.URLParam(r, "docID")))
	if err != nil {
		jsonError(w, "failed to read document: "+err.Error(), http.StatusBadGateway)
		return
	}
	if node == nil {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, node)
}

// handleDeleteDocument removes a stored document.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !s.docsAvailable(w) {
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id query parameter is required", http.StatusBadRequest)
		return
	}

	docID := chi.URLParam(r, "docID")
	if err := s.docs.DeleteNode(r.Context(), pathstore.DocumentKey(userID, docID), true); err != nil {
		jsonError(w, "failed to delete document: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"doc_id": docID, "deleted": true})
}
