package server

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pdnsweb/internal/auth"
	"pdnsweb/internal/config"
	"pdnsweb/internal/database"
	"pdnsweb/internal/dnsops"
	"pdnsweb/internal/handler"
	"pdnsweb/internal/pdns"
	"pdnsweb/web"
)

func mustParseTemplates(log zerolog.Logger, fsys fs.FS, funcMap template.FuncMap, files ...string) *template.Template {
	tmpl := template.New("").Funcs(funcMap)
	tmpl, err := tmpl.ParseFS(fsys, files...)
	if err != nil {
		log.Fatal().Err(err).Strs("files", files).Msg("failed to parse templates")
	}
	return tmpl
}

func Start(cfg *config.Config, version string, log zerolog.Logger) error {
	db, err := database.Open(cfg.Database.DSN, web.MigrationsFS())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	sessionMgr, err := auth.NewSessionManager(db)
	if err != nil {
		return fmt.Errorf("failed to init session manager: %w", err)
	}

	if purged, err := db.PurgeExpiredSessions(); err == nil && purged > 0 {
		log.Info().Int64("sessions", purged).Msg("purged expired sessions")
	}

	authClient := pdns.NewClient(cfg.PDNS.URL, cfg.PDNS.APIKey)
	var recursorClient *pdns.Client
	if cfg.Recursor.Enabled {
		recursorClient = pdns.NewClient(cfg.Recursor.URL, cfg.Recursor.APIKey)
		log.Info().Str("url", cfg.Recursor.URL).Msg("recursor management enabled")
	}

	dns := dnsops.New(authClient, recursorClient, cfg.PDNS, cfg.Recursor.ReloadCommand, log)

	tmplFS := web.TemplateFS()

	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"subtract":   func(a, b int) int { return a - b },
		"version":    func() string { return version },
		"formatDate": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
		"trimDot":    func(s string) string { return dnsops.DisplayName(s) },
		"hasPrefix":  strings.HasPrefix,
	}

	loginTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/login.html")
	setupTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/setup.html")
	dashTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/dashboard.html")
	zonesTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/zones.html")
	recordsTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/records.html")
	recursorTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/recursor.html")
	adminUsersTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/admin_users.html")
	adminAuditTmpl := mustParseTemplates(log, tmplFS, funcMap, "templates/layout.html", "templates/admin_audit.html")

	var ldapClient *auth.LDAPClient
	if cfg.LDAP.Enabled {
		ldapClient = auth.NewLDAPClient(cfg.LDAP)
		log.Info().Str("url", cfg.LDAP.URL).Int("roles", len(cfg.LDAP.GroupMapping)).
			Msg("LDAP authentication enabled")
	}

	setupH := handler.NewSetupHandler(db, setupTmpl)
	authH := handler.NewAuthHandler(db, sessionMgr, ldapClient, loginTmpl)
	dashH := handler.NewDashboardHandler(dns, sessionMgr, db, dashTmpl)
	zoneH := handler.NewZoneHandler(dns, sessionMgr, db, zonesTmpl)
	recH := handler.NewRecordHandler(dns, sessionMgr, db, recordsTmpl)
	recursorH := handler.NewRecursorHandler(dns, sessionMgr, db, recursorTmpl, cfg.Recursor.Enabled)
	adminH := handler.NewAdminHandler(db, sessionMgr, adminUsersTmpl)
	adminAuditH := handler.NewAdminHandler(db, sessionMgr, adminAuditTmpl)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /setup", setupH.SetupPage)
	mux.HandleFunc("POST /setup", setupH.SetupSubmit)

	mux.Handle("GET /static/", web.StaticHandler())

	appMux := http.NewServeMux()

	appMux.HandleFunc("GET /login", authH.LoginPage)
	appMux.HandleFunc("POST /login", authH.LoginSubmit)
	appMux.HandleFunc("POST /logout", authH.Logout)

	appMux.HandleFunc("GET /dashboard", sessionMgr.RequireAuth(dashH.View))
	appMux.HandleFunc("GET /dashboard/stats", sessionMgr.RequireAuth(dashH.Stats))

	appMux.HandleFunc("GET /zones", sessionMgr.RequireAuth(zoneH.List))
	appMux.HandleFunc("POST /zones/create", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(zoneH.Create)))
	appMux.HandleFunc("POST /zones/edit", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(zoneH.Edit)))
	appMux.HandleFunc("POST /zones/delete", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(zoneH.Delete)))
	appMux.HandleFunc("GET /zones/{zone}/dnsseckeys", sessionMgr.RequireAuth(zoneH.DnssecKeys))

	appMux.HandleFunc("GET /zones/{zone}/records", sessionMgr.RequireAuth(recH.List))
	appMux.HandleFunc("POST /zones/{zone}/records/create", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recH.Create)))
	appMux.HandleFunc("POST /zones/{zone}/records/edit", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recH.Edit)))
	appMux.HandleFunc("POST /zones/{zone}/records/delete", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recH.Delete)))
	appMux.HandleFunc("POST /zones/{zone}/records/subdomain", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recH.AddSubdomain)))

	appMux.HandleFunc("GET /recursor", sessionMgr.RequireAuth(recursorH.View))
	appMux.HandleFunc("POST /recursor/forward/create", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recursorH.AddForwardZone)))
	appMux.HandleFunc("POST /recursor/forward/delete", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recursorH.RemoveForwardZone)))
	appMux.HandleFunc("POST /recursor/forward/servers", sessionMgr.RequireAuth(sessionMgr.ValidateCSRF(recursorH.UpdateServers)))

	appMux.HandleFunc("GET /admin/users", sessionMgr.RequireAdmin(adminH.ListUsers))
	appMux.HandleFunc("POST /admin/users/create", sessionMgr.RequireAdmin(sessionMgr.ValidateCSRF(adminH.CreateUser)))
	appMux.HandleFunc("POST /admin/users/delete", sessionMgr.RequireAdmin(sessionMgr.ValidateCSRF(adminH.DeleteUser)))
	appMux.HandleFunc("GET /admin/audit", sessionMgr.RequireAdmin(adminAuditH.AuditLog))

	appMux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})

	mux.Handle("/", handler.RequireSetupComplete(db, appMux))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	return http.ListenAndServe(addr, mux)
}
