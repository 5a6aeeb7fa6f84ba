package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/respkv/internal/infra/buildinfo"
)

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	sum := StatusSummary{
		Version:       info.Version,
		Commit:        info.ShortCommit(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if h.cfg.Store != nil {
		st := h.cfg.Store.Stats()
		sum.Keys, sum.VolatileKeys, sum.ExpiredKeys = st.Keys, st.Volatile, st.Expired
	}
	if h.cfg.Server != nil {
		sum.ConnectedClients = h.cfg.Server.ConnectedClients()
		sum.TotalConnections = h.cfg.Server.TotalConnections()
		sum.CommandsTotal = h.cfg.Server.Processed()
	}
	h.writeJSON(w, r, http.StatusOK, sum)
}

// handleExpireTrigger handles POST /admin/v1/expire/trigger. It runs one
// active expiry pass immediately.
func (h *Handler) handleExpireTrigger(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Store == nil {
		h.writeError(w, r, http.StatusInternalServerError, CodeInternal, "store not configured")
		return
	}
	removed := h.cfg.Store.Sweep(h.cfg.SweepSample)
	h.cfg.Logger.Info("manual expiry pass", "removed", removed)
	h.writeJSON(w, r, http.StatusOK, ExpireTriggerResult{
		Removed:     removed,
		TriggeredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleConfig handles GET /admin/v1/config.
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.cfg.Settings)
}
