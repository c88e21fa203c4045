package handler

import (
	"fmt"
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

type RecordHandler struct {
	dns        *dnsops.Service
	sessionMgr *auth.SessionManager
	db         *database.DB
	tmpl       *template.Template
}

func NewRecordHandler(dns *dnsops.Service, sm *auth.SessionManager, db *database.DB, tmpl *template.Template) *RecordHandler {
	return &RecordHandler{dns: dns, sessionMgr: sm, db: db, tmpl: tmpl}
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	username, csrfToken, _ := h.sessionMgr.GetSessionInfo(r)
	user, _ := h.db.GetUserByUsername(username)

	grouped, order, err := h.dns.GroupedRecords(r.Context(), zone)
	if err != nil {
		h.tmpl.ExecuteTemplate(w, "layout", map[string]interface{}{
			"Title":     zone,
			"Username":  username,
			"CSRFToken": csrfToken,
			"Role":      roleOf(user),
			"Zone":      zone,
			"Error":     "Failed to load records: " + err.Error(),
		})
		return
	}

	h.tmpl.ExecuteTemplate(w, "layout", map[string]interface{}{
		"Title":      zone,
		"Username":   username,
		"CSRFToken":  csrfToken,
		"Role":       roleOf(user),
		"Zone":       zone,
		"Grouped":    grouped,
		"GroupOrder": order,
		"Flash":      r.URL.Query().Get("msg"),
	})
}

func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()

	recordType := r.FormValue("type")
	value := r.FormValue("value")
	// type-specific form fields win over the generic value input
	switch recordType {
	case "TXT":
		if v := r.FormValue("txt_value"); v != "" {
			value = v
		}
	case "NS":
		if v := r.FormValue("ns_target"); v != "" {
			value = v
		}
	case "HTTPS":
		if v := r.FormValue("https_value"); v != "" {
			value = v
		}
	}

	in := dnsops.RecordInput{
		Subdomain:   r.FormValue("subdomain"),
		Type:        recordType,
		Value:       value,
		TTL:         formInt(r, "ttl", 0),
		MXPriority:  formInt(r, "mx_priority", 10),
		SRVPriority: formInt(r, "srv_priority", 0),
		SRVWeight:   formInt(r, "srv_weight", 0),
		SRVPort:     formInt(r, "srv_port", 0),
	}

	res := h.dns.AddRecord(r.Context(), zone, in)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:   username,
			Action:     "create_record",
			ZoneName:   dnsops.Fqdn(zone),
			RecordName: dnsops.QualifyOwner(in.Subdomain, zone),
			RecordType: in.Type,
			Detail:     fmt.Sprintf("value=%s ttl=%d", in.Value, in.TTL),
			IPAddress:  util.GetClientIP(r),
		})
	}

	h.redirect(w, r, zone, res)
}

func (h *RecordHandler) Edit(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()

	in := dnsops.EditInput{
		Name:        r.FormValue("name"),
		Type:        r.FormValue("type"),
		OldValue:    r.FormValue("old_value"),
		Value:       r.FormValue("value"),
		TTL:         formInt(r, "ttl", 0),
		MXPriority:  formInt(r, "mx_priority", 10),
		SRVPriority: formInt(r, "srv_priority", 0),
		SRVWeight:   formInt(r, "srv_weight", 0),
		SRVPort:     formInt(r, "srv_port", 0),
		SOANS:       r.FormValue("soa_ns"),
		SOAMail:     r.FormValue("soa_mail"),
		SOARefresh:  formInt(r, "soa_refresh", 10800),
		SOARetry:    formInt(r, "soa_retry", 3600),
		SOAExpire:   formInt(r, "soa_expire", 604800),
		SOAMinimum:  formInt(r, "soa_minimum", 3600),
	}

	res := h.dns.EditRecord(r.Context(), zone, in)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:   username,
			Action:     "edit_record",
			ZoneName:   dnsops.Fqdn(zone),
			RecordName: dnsops.Fqdn(in.Name),
			RecordType: in.Type,
			Detail:     fmt.Sprintf("old=%s new=%s", in.OldValue, in.Value),
			IPAddress:  util.GetClientIP(r),
		})
	}

	h.redirect(w, r, zone, res)
}

func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()

	name := r.FormValue("name")
	recordType := r.FormValue("type")
	value := r.FormValue("value")

	res := h.dns.DeleteRecord(r.Context(), zone, name, recordType, value)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:   username,
			Action:     "delete_record",
			ZoneName:   dnsops.Fqdn(zone),
			RecordName: dnsops.Fqdn(name),
			RecordType: recordType,
			Detail:     "value=" + value,
			IPAddress:  util.GetClientIP(r),
		})
	}

	h.redirect(w, r, zone, res)
}

func (h *RecordHandler) AddSubdomain(w http.ResponseWriter, r *http.Request) {
	zone := r.PathValue("zone")
	username, _ := h.sessionMgr.GetUsername(r)
	_ = r.ParseForm()
	sub := r.FormValue("subdomain")

	res := h.dns.AddSubdomain(r.Context(), zone, sub)
	if !res.Failed() {
		_ = h.db.LogAudit(model.AuditEntry{
			Username:   username,
			Action:     "add_subdomain",
			ZoneName:   dnsops.Fqdn(zone),
			RecordName: dnsops.QualifyOwner(sub, zone),
			RecordType: "A",
			IPAddress:  util.GetClientIP(r),
		})
	}

	h.redirect(w, r, zone, res)
}

func (h *RecordHandler) redirect(w http.ResponseWriter, r *http.Request, zone string, res dnsops.OpResult) {
	http.Redirect(w, r,
		fmt.Sprintf("/zones/%s/records?msg=%s", url.PathEscape(zone), url.QueryEscape(flashMessage(res))),
		http.StatusSeeOther)
}

func formInt(r *http.Request, field string, fallback int) int {
	v, err := strconv.Atoi(r.FormValue(field))
	if err != nil {
		return fallback
	}
	return v
}
