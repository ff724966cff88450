package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/salesprep/internal/core"
	"github.com/JonMunkholm/salesprep/internal/logging"
)

const transformPath = "/api/SaleDataTransform"

// statusDocument describes the service on GET /.
type statusDocument struct {
	Status       string                  `json:"status"`
	Instructions string                  `json:"instructions"`
	ExamplePost  string                  `json:"examplePost"`
	Description  string                  `json:"description"`
	Batches      core.BatchLimiterStatus `json:"batches"`
}

func (s *Server) statusDocument(r *http.Request) statusDocument {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return statusDocument{
		Status:       "Sales pre-processor is running",
		Instructions: "POST a JSON array of orders to " + transformPath + " with curl or any HTTP client.",
		ExamplePost:  fmt.Sprintf("POST %s://%s%s", scheme, r.Host, transformPath),
		Description:  "Send your JSON array data in the POST body.",
		Batches:      s.limiter.Status(),
	}
}

// handleStatus serves the status document as JSON, or as a small HTML page
// for browsers.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	doc := s.statusDocument(r)
	if wantsJSON(r) {
		writeJSON(w, r, http.StatusOK, doc)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statusPage(doc).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render status page", "error", err)
	}
}

// wantsJSON reports whether the client asked for JSON over HTML.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") || !strings.Contains(accept, "text/html")
}
