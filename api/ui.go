package api

import (
	"embed"
	"net/http"

	"go.uber.org/zap"
)

//go:embed static/index.html
var widgetFS embed.FS

// handleWidget serves the embedded chat widget page.
func (s *Server) handleWidget(w http.ResponseWriter, r *http.Request) {
	data, err := widgetFS.ReadFile("static/index.html")
	if err != nil {
		s.logger.Error("load widget page", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "widget unavailable", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
