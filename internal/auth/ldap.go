package auth

import (
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"pdnsweb/internal/config"
)

type LDAPResult struct {
	Username string
	Email    string
	Groups   []string
}

type LDAPClient struct {
	cfg config.LDAPConfig
}

func NewLDAPClient(cfg config.LDAPConfig) *LDAPClient {
	return &LDAPClient{cfg: cfg}
}

// Authenticate performs a two-step LDAP auth: a service-account bind to find
// the user, then a bind as the user's DN to verify the password.
func (lc *LDAPClient) Authenticate(username, password string) (*LDAPResult, error) {
	conn, err := lc.connect()
	if err != nil {
		return nil, fmt.Errorf("ldap connect: %w", err)
	}
	defer conn.Close()

	if err := conn.Bind(lc.cfg.BindDN, lc.cfg.BindPassword); err != nil {
		return nil, fmt.Errorf("ldap service bind: %w", err)
	}

	filter := fmt.Sprintf(lc.cfg.UserFilter, ldap.EscapeFilter(username))
	searchReq := ldap.NewSearchRequest(
		lc.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases, 0, 30, false,
		filter,
		[]string{"dn", lc.cfg.UsernameAttr, lc.cfg.EmailAttr, "memberOf"},
		nil,
	)

	result, err := conn.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) != 1 {
		return nil, fmt.Errorf("user not found or ambiguous: %d results", len(result.Entries))
	}

	entry := result.Entries[0]
	userDN := entry.DN

	if err := conn.Bind(userDN, password); err != nil {
		return nil, fmt.Errorf("ldap user bind: %w", err)
	}

	groups := entry.GetAttributeValues("memberOf")
	if len(groups) == 0 {
		// fallback group search; %s expands to the user DN, %u to the login
		filterTmpl := lc.cfg.GroupFilter
		if filterTmpl == "" {
			filterTmpl = "(|(member=%s)(uniqueMember=%s))"
		}
		finalFilter := strings.ReplaceAll(filterTmpl, "%s", ldap.EscapeFilter(userDN))
		finalFilter = strings.ReplaceAll(finalFilter, "%u", ldap.EscapeFilter(entry.GetAttributeValue(lc.cfg.UsernameAttr)))

		groupSearch := ldap.NewSearchRequest(
			lc.cfg.BaseDN,
			ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
			finalFilter,
			[]string{"dn"},
			nil,
		)
		if groupResult, err := conn.Search(groupSearch); err == nil {
			for _, ge := range groupResult.Entries {
				groups = append(groups, ge.DN)
			}
		}
	}

	return &LDAPResult{
		Username: entry.GetAttributeValue(lc.cfg.UsernameAttr),
		Email:    entry.GetAttributeValue(lc.cfg.EmailAttr),
		Groups:   groups,
	}, nil
}

// ResolveRole maps LDAP group DNs to console roles using group_mapping.
// Returns ("", false) if the user is in no mapped group; admin wins over
// editor when both match.
func (lc *LDAPClient) ResolveRole(groups []string) (string, bool) {
	var role string
	for _, g := range groups {
		for groupDN, mapped := range lc.cfg.GroupMapping {
			if !strings.EqualFold(g, groupDN) {
				continue
			}
			if mapped == "admin" {
				return "admin", true
			}
			if role == "" {
				role = mapped
			}
		}
	}
	return role, role != ""
}

func (lc *LDAPClient) connect() (*ldap.Conn, error) {
	tlsCfg := &tls.Config{InsecureSkipVerify: lc.cfg.SkipVerify}

	if strings.HasPrefix(lc.cfg.URL, "ldaps://") {
		return ldap.DialURL(lc.cfg.URL, ldap.DialWithTLSConfig(tlsCfg))
	}

	conn, err := ldap.DialURL(lc.cfg.URL)
	if err != nil {
		return nil, err
	}

	if lc.cfg.StartTLS {
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}

	return conn, nil
}
