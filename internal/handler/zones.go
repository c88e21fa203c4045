package handler

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"pdnsweb/internal/auth"
	"pdnsweb/internal/database"
	"pdnsweb/internal/dnsops"
	"pdnsweb/internal/model"
	"pdnsweb/internal/util"
)

type ZoneHandler struct {
	dns        *dnsops.Service
	sessionMgr *auth.SessionManager
	db         *database.DB
	tmpl       *template.Template
}

func NewZoneHandler(dns *dnsops.Service, sm *auth.SessionManager, db *database.DB, tmpl *template.Template) *ZoneHandler {
	return &ZoneHandler{dns: dns, sessionMgr: sm, db: db, tmpl: tmpl}
}

func (h *ZoneHandler) List(w http.ResponseWriter, r *http.Request) {
	username, csrfToken, _ := h.sessionMgr.GetSessionInfo(r)
	user, _ := h.db.GetUserByUsername(username)

	zones, err := h.dns.Zones(r.Context())
	if err != nil {
		h.tmpl.ExecuteTemplate(w, "layout", map[string]interface{}{
			"Title":     "Zones",
			"Username":  username,
			"CSRFToken": csrfToken,
			"Role":      roleOf(user),
			"Error":     "Failed to load zones: " + err.Error(),
		})
		return
	}

	h.tmpl.ExecuteTemplate(w, "layout", map[string]interface{}{
		"Title":     "Zones",
		"Username":  username,
		"CSRFToken": csrfToken,
		"Role":      roleOf(user),
		"Zones":     zones,
		"Flash":     r.URL.Query().Get("msg"),
	})
}

func (h *ZoneHandler) Create(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()

	req := dnsops.ZoneRequest{
		Name:   r.FormValue("name"),
		Kind:   r.FormValue("kind"),
		DNSSEC: r.FormValue("dnssec") == "on",
		Master: r.FormValue("master"),
	}

	res := h.dns.CreateZone(r.Context(), req)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "create_zone",
			ZoneName:  dnsops.Fqdn(req.Name),
			Detail:    "kind=" + req.Kind,
			IPAddress: util.GetClientIP(r),
		})
	}

	http.Redirect(w, r, "/zones?msg="+url.QueryEscape(flashMessage(res)), http.StatusSeeOther)
}

func (h *ZoneHandler) Edit(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()

	serial, _ := strconv.ParseInt(r.FormValue("serial"), 10, 64)
	req := dnsops.ZoneRequest{
		Name:   r.FormValue("name"),
		Kind:   r.FormValue("kind"),
		DNSSEC: r.FormValue("dnssec") == "on",
		Serial: serial,
	}

	res := h.dns.EditZone(r.Context(), req)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "edit_zone",
			ZoneName:  dnsops.Fqdn(req.Name),
			Detail:    "kind=" + req.Kind,
			IPAddress: util.GetClientIP(r),
		})
	}

	http.Redirect(w, r, "/zones?msg="+url.QueryEscape(flashMessage(res)), http.StatusSeeOther)
}

func (h *ZoneHandler) Delete(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()
	name := r.FormValue("name")

	res := h.dns.DeleteZone(r.Context(), name)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:  username,
			Action:    "delete_zone",
			ZoneName:  dnsops.Fqdn(name),
			IPAddress: util.GetClientIP(r),
		})
	}

	http.Redirect(w, r, "/zones?msg="+url.QueryEscape(flashMessage(res)), http.StatusSeeOther)
}

// DnssecKeys returns the key material for a zone as JSON for the UI dialog.
func (h *ZoneHandler) DnssecKeys(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")

	keys, err := h.dns.Cryptokeys(r.Context(), zone)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "keys": keys})
}

func roleOf(u *model.User) string {
	if u != nil {
		return u.Role
	}
	return ""
}

func flashMessage(res dnsops.OpResult) string {
	switch res.Status {
	case dnsops.StatusWarning:
		return "Warning: " + res.Message
	case dnsops.StatusFailure:
		return "Error: " + res.Message
	}
	return res.Message
}
