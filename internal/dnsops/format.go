package dnsops

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultTTL is used when the operator leaves TTL blank or out of range.
	DefaultTTL = 3600
	minTTL     = 300
	maxTTL     = 604800
)

var labelRe = regexp.MustCompile(`^[A-Za-z0-9_*]([A-Za-z0-9_*-]*[A-Za-z0-9_*])?$`)

// Fqdn appends the trailing dot the wire format requires.
func Fqdn(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".") + "."
}

// DisplayName strips the trailing dot for presentation. The root zone keeps
// its dot so it never renders as an empty string.
func DisplayName(name string) string {
	if name == "." {
		return name
	}
	return strings.TrimSuffix(name, ".")
}

// QualifyOwner builds the full owner name for a subdomain label. "@" and the
// empty label mean the zone apex.
func QualifyOwner(label, zone string) string {
	label = strings.TrimSuffix(strings.TrimSpace(label), ".")
	if label == "" || label == "@" {
		return Fqdn(zone)
	}
	return label + "." + Fqdn(zone)
}

// ValidLabel reports whether a subdomain label is acceptable. Multi-level
// labels ("a.b") are allowed; each level is checked separately.
func ValidLabel(label string) bool {
	label = strings.TrimSuffix(strings.TrimSpace(label), ".")
	if label == "" || label == "@" {
		return true
	}
	for _, part := range strings.Split(label, ".") {
		if !labelRe.MatchString(part) {
			return false
		}
	}
	return true
}

// ClampTTL returns the requested TTL if it is inside the accepted bounds,
// otherwise the fallback.
func ClampTTL(requested, fallback int) int {
	if requested >= minTTL && requested <= maxTTL {
		return requested
	}
	return fallback
}

// FormatTXT wraps a TXT value in one pair of double quotes. Stripping any
// existing outer pair first makes the operation idempotent.
func FormatTXT(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)
	return `"` + raw + `"`
}

func FormatMX(priority int, host string) string {
	return fmt.Sprintf("%d %s", priority, Fqdn(host))
}

func FormatSRV(priority, weight, port int, target string) string {
	return fmt.Sprintf("%d %d %d %s", priority, weight, port, Fqdn(target))
}

// FormatSOA assembles SOA content. The serial is always sent as 0: PowerDNS
// manages it and recomputes on change.
func FormatSOA(ns, mail string, refresh, retry, expire, minimum int) string {
	return fmt.Sprintf("%s %s 0 %d %d %d %d", Fqdn(ns), Fqdn(mail), refresh, retry, expire, minimum)
}

// hostType reports whether a record type's content is a host name that must
// carry the trailing dot.
func hostType(recordType string) bool {
	switch recordType {
	case "NS", "CNAME", "PTR":
		return true
	}
	return false
}

// lastField returns the final whitespace-separated token of s. Edit forms may
// resubmit a full "10 mail.example.com." MX content; only the host part is
// reformatted with the newly chosen priority.
func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
