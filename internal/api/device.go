package api

import (
	"net/http"
)

// handleGetDevice returns the device identity and the mapped parameter
// names per kind.
//
// Credential fields are always stripped from API responses, regardless of
// how the underlying client was configured.
func (s *Server) handleGetDevice(w http.ResponseWriter, _ *http.Request) {
	if !s.session.IsConnected() {
		writeBadGateway(w, "device session not established")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device":     s.session.Static().Sanitized(),
		"parameters": s.session.AvailableByKind(),
	})
}

// handleReboot sends the restart command to the device.
func (s *Server) handleReboot(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reboot(r.Context()); err != nil {
		s.logger.Warn("device reboot failed", "error", err)
		writeBadGateway(w, "device reboot failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "rebooting"})
}
