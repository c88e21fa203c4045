package handler

import (
	"html/template"
	"net/http"
	"net/url"

	"pdnsweb/internal/auth"
	"pdnsweb/internal/database"
	"pdnsweb/internal/dnsops"
	"pdnsweb/internal/model"
	"pdnsweb/internal/util"
)

type RecursorHandler struct {
	dns        *dnsops.Service
	sessionMgr *auth.SessionManager
	db         *database.DB
	tmpl       *template.Template
	enabled    bool
}

func NewRecursorHandler(dns *dnsops.Service, sm *auth.SessionManager, db *database.DB, tmpl *template.Template, enabled bool) *RecursorHandler {
	return &RecursorHandler{dns: dns, sessionMgr: sm, db: db, tmpl: tmpl, enabled: enabled}
}

func (h *RecursorHandler) View(w http.ResponseWriter, r *http.Request) {
	username, csrfToken, _ := h.sessionMgr.GetSessionInfo(r)
	user, _ := h.db.GetUserByUsername(username)

	data := map[string]interface{}{
		"Title":           "Recursor",
		"Username":        username,
		"CSRFToken":       csrfToken,
		"Role":            roleOf(user),
		"RecursorEnabled": h.enabled,
		"Flash":           r.URL.Query().Get("msg"),
	}

	if h.enabled {
		view, err := h.dns.LoadForwarding(r.Context())
		if err != nil {
			data["Error"] = "Failed to load forward zones: " + err.Error()
		} else {
			data["Forwarded"] = view.Forwarded
			data["Available"] = view.Available
		}
	}

	h.tmpl.ExecuteTemplate(w, "layout", data)
}

func (h *RecursorHandler) AddForwardZone(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()
	zone := r.FormValue("zone")

	res := h.dns.AddForwardZone(r.Context(), zone)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "add_forward_zone",
			ZoneName:  dnsops.Fqdn(zone),
			IPAddress: util.GetClientIP(r),
		})
	}

	h.redirect(w, r, res)
}

func (h *RecursorHandler) RemoveForwardZone(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()
	zone := r.FormValue("zone")

	res := h.dns.RemoveForwardZone(r.Context(), zone)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "remove_forward_zone",
			ZoneName:  zone,
			IPAddress: util.GetClientIP(r),
		})
	}

	h.redirect(w, r, res)
}

// UpdateServers replaces the root forwarder's upstream resolver list.
func (h *RecursorHandler) UpdateServers(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()
	servers := r.FormValue("servers")

	res := h.dns.UpdateRootServers(r.Context(), servers)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "update_root_forwarder",
			ZoneName:  ".",
			Detail:    "servers=" + servers,
			IPAddress: util.GetClientIP(r),
		})
	}

	h.redirect(w, r, res)
}

func (h *RecursorHandler) redirect(w http.ResponseWriter, r *http.Request, res dnsops.OpResult) {
	http.Redirect(w, r, "/recursor?msg="+url.QueryEscape(flashMessage(res)), http.StatusSeeOther)
}
