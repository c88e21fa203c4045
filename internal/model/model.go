package model

import "time"

// Zone is a zone as the authoritative PowerDNS API reports it. Name always
// carries the trailing dot on the wire; DisplayName strips it for the UI.
type Zone struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Masters []string `json:"masters,omitempty"`
	DNSSEC  bool     `json:"dnssec"`
	Serial  int64    `json:"serial,omitempty"`
	RRsets  []RRset  `json:"rrsets,omitempty"`
}

func (z Zone) DisplayName() string {
	if n := len(z.Name); n > 0 && z.Name[n-1] == '.' {
		return z.Name[:n-1]
	}
	return z.Name
}

// Master joins the masters list for display; meaningful only for Slave zones.
func (z Zone) Master() string {
	if len(z.Masters) == 0 {
		return ""
	}
	s := z.Masters[0]
	for _, m := range z.Masters[1:] {
		s += ", " + m
	}
	return s
}

// RRset is one (name, type) record set. The upstream API treats it as an
// atomic unit: writes always replace or delete the whole set.
type RRset struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	TTL        int      `json:"ttl"`
	Changetype string   `json:"changetype,omitempty"`
	Records    []Record `json:"records"`
}

type Record struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

// RRsetPatch is the body of a PATCH /zones/{zone} request.
type RRsetPatch struct {
	RRsets []RRset `json:"rrsets"`
}

// ZoneCreate is the body of a POST /zones request. Masters must stay nil for
// anything but Slave zones; the upstream rejects it otherwise.
type ZoneCreate struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	DNSSEC  bool     `json:"dnssec"`
	Masters []string `json:"masters,omitempty"`
}

// ZoneUpdate is the body of a PUT /zones/{zone} request.
type ZoneUpdate struct {
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	DNSSEC bool   `json:"dnssec"`
	Serial int64  `json:"serial"`
}

// ForwardZone is a recursor zone entry of kind Forwarded. "." is the root
// forwarder catching everything not matched by a longer name.
type ForwardZone struct {
	Name             string   `json:"name"`
	Kind             string   `json:"kind"`
	Servers          []string `json:"servers"`
	RecursionDesired bool     `json:"recursion_desired"`
}

func (f ForwardZone) DisplayName() string {
	if f.Name == "." {
		return "."
	}
	if n := len(f.Name); n > 0 && f.Name[n-1] == '.' {
		return f.Name[:n-1]
	}
	return f.Name
}

// DnssecKey mirrors a cryptokey object from the upstream API. The key
// material fields are read-only derivations owned by the server.
type DnssecKey struct {
	ID        int      `json:"id"`
	Active    bool     `json:"active"`
	Algorithm string   `json:"algorithm"`
	Bits      int      `json:"bits"`
	KeyType   string   `json:"keytype"`
	Published bool     `json:"published"`
	DNSKEY    string   `json:"dnskey,omitempty"`
	DS        []string `json:"ds,omitempty"`
}

// DnssecKeyCreate is the body of a POST /zones/{zone}/cryptokeys request.
type DnssecKeyCreate struct {
	Active    bool   `json:"active"`
	KeyType   string `json:"keytype"`
	Algorithm string `json:"algorithm"`
	Bits      int    `json:"bits,omitempty"`
}

// StatItem is one entry of GET /statistics. Value is left raw because the
// upstream mixes plain counters with ring-buffer arrays under the same key.
type StatItem struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

type User struct {
	ID         int64
	Username   string
	PassHash   string
	Role       string
	Active     bool
	AuthSource string // "local" or "ldap"
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Session struct {
	Token     string
	CSRFToken string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type AuditEntry struct {
	ID         int64
	Username   string
	Action     string
	ZoneName   string
	RecordName string
	RecordType string
	Detail     string
	IPAddress  string
	CreatedAt  time.Time
}
