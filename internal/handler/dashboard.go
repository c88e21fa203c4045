package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"pdnsweb/internal/auth"
	"pdnsweb/internal/database"
	"pdnsweb/internal/dnsops"
)

type DashboardHandler struct {
	dns        *dnsops.Service
	sessionMgr *auth.SessionManager
	db         *database.DB
	tmpl       *template.Template
}

func NewDashboardHandler(dns *dnsops.Service, sm *auth.SessionManager, db *database.DB, tmpl *template.Template) *DashboardHandler {
	return &DashboardHandler{dns: dns, sessionMgr: sm, db: db, tmpl: tmpl}
}

func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	username, csrfToken, _ := h.sessionMgr.GetSessionInfo(r)
	user, _ := h.db.GetUserByUsername(username)

	data := map[string]interface{}{
		"Title":     "Dashboard",
		"Username":  username,
		"CSRFToken": csrfToken,
		"Role":      roleOf(user),
	}

	zones, err := h.dns.Zones(r.Context())
	if err != nil {
		data["Error"] = "Failed to load zones: " + err.Error()
	} else {
		data["ZoneCount"] = len(zones)
		data["Zones"] = zones
	}

	h.tmpl.ExecuteTemplate(w, "layout", data)
}

// Stats feeds the dashboard's auto-refresh with upstream DNS counters and
// host-level resource usage.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	authStats, recStats, err := h.dns.UpstreamStatistics(r.Context())

	payload := map[string]interface{}{
		"host": hostStats(),
	}
	if err != nil {
		payload["error"] = err.Error()
	} else {
		payload["authoritative"] = authStats
		if recStats != nil {
			payload["recursor"] = recStats
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func hostStats() map[string]interface{} {
	stats := map[string]interface{}{
		"goroutines": runtime.NumGoroutine(),
	}

	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		stats["cpu_percent"] = percent[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["mem_percent"] = vm.UsedPercent
		stats["mem_total"] = vm.Total
		stats["mem_used"] = vm.Used
	}
	if uptime, err := host.Uptime(); err == nil {
		stats["uptime"] = (time.Duration(uptime) * time.Second).String()
	}
	return stats
}
