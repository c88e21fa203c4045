package dnsops

import (
	"context"
	"sort"
	"strings"

	"pdnsweb/internal/model"
)

// RecordInput is an "add record" request. Priority/weight/port fields are
// pre-defaulted by the caller (MX priority 10, SRV fields 0) when the form
// leaves them blank. TTL 0 means unset.
type RecordInput struct {
	Subdomain   string
	Type        string
	Value       string
	TTL         int
	MXPriority  int
	SRVPriority int
	SRVWeight   int
	SRVPort     int
}

// EditInput is an "edit record" request. Name is the full owner name of the
// record set; OldValue identifies the entry being replaced by its content.
type EditInput struct {
	Name        string
	Type        string
	OldValue    string
	Value       string
	TTL         int
	MXPriority  int
	SRVPriority int
	SRVWeight   int
	SRVPort     int
	SOARefresh  int
	SOARetry    int
	SOAExpire   int
	SOAMinimum  int
	SOANS       string
	SOAMail     string
}

// AddRecord merges one new value into the (owner, type) record set and
// replaces the whole set upstream. Existing entries are never clobbered; an
// exact-content duplicate is rejected before any write.
func (s *Service) AddRecord(ctx context.Context, zone string, in RecordInput) OpResult {
	if strings.TrimSpace(zone) == "" {
		return failed("zone not specified")
	}
	if strings.TrimSpace(in.Type) == "" {
		return failed("record type not specified")
	}
	if !ValidLabel(in.Subdomain) {
		return failed("invalid subdomain: " + in.Subdomain)
	}

	owner := QualifyOwner(in.Subdomain, zone)
	content := s.formatAddContent(in)

	zoneData, err := s.auth.GetZone(ctx, Fqdn(zone))
	if err != nil {
		return failed("failed to fetch zone: " + err.Error())
	}

	existing := findRRset(zoneData.RRsets, owner, in.Type)
	var records []model.Record
	ttl := ClampTTL(in.TTL, DefaultTTL)
	if existing != nil {
		records = append(records, existing.Records...)
		for _, r := range records {
			if r.Content == content {
				return warn("record already exists")
			}
		}
	}
	records = append(records, model.Record{Content: content})

	patch := model.RRsetPatch{RRsets: []model.RRset{{
		Name:       owner,
		Type:       in.Type,
		TTL:        ttl,
		Changetype: "REPLACE",
		Records:    records,
	}}}
	if err := s.auth.PatchRRsets(ctx, Fqdn(zone), patch); err != nil {
		return failed("failed to add record: " + err.Error())
	}

	s.log.Info().Str("zone", zone).Str("name", owner).Str("type", in.Type).
		Str("content", content).Msg("record added")
	s.reloadRecursor()
	return ok("record added")
}

// DeleteRecord removes one value from a record set. Removing the last value
// must switch to changetype DELETE: the upstream rejects an empty REPLACE.
func (s *Service) DeleteRecord(ctx context.Context, zone, name, recordType, value string) OpResult {
	if strings.TrimSpace(zone) == "" {
		return failed("zone not specified")
	}
	if name == "" || recordType == "" || value == "" {
		return failed("invalid request")
	}

	owner := Fqdn(name)
	zoneData, err := s.auth.GetZone(ctx, Fqdn(zone))
	if err != nil {
		return failed("failed to fetch zone: " + err.Error())
	}

	existing := findRRset(zoneData.RRsets, owner, recordType)
	if existing == nil || len(existing.Records) == 0 {
		return failed("record not found")
	}

	var remaining []model.Record
	for _, r := range existing.Records {
		if r.Content != value {
			remaining = append(remaining, r)
		}
	}

	changetype := "REPLACE"
	if len(remaining) == 0 {
		changetype = "DELETE"
		remaining = []model.Record{}
	}

	patch := model.RRsetPatch{RRsets: []model.RRset{{
		Name:       owner,
		Type:       recordType,
		TTL:        existing.TTL,
		Changetype: changetype,
		Records:    remaining,
	}}}
	if err := s.auth.PatchRRsets(ctx, Fqdn(zone), patch); err != nil {
		return failed("failed to delete record: " + err.Error())
	}

	s.log.Info().Str("zone", zone).Str("name", owner).Str("type", recordType).
		Str("changetype", changetype).Msg("record deleted")
	s.reloadRecursor()
	return ok("record deleted")
}

// EditRecord swaps one value of a record set for a recomputed one, keeping
// every other entry intact, and replaces the set upstream.
func (s *Service) EditRecord(ctx context.Context, zone string, in EditInput) OpResult {
	if strings.TrimSpace(zone) == "" {
		return failed("zone not specified")
	}
	if in.Name == "" || in.Type == "" || in.Value == "" {
		return failed("invalid request")
	}

	owner := Fqdn(in.Name)
	zoneData, err := s.auth.GetZone(ctx, Fqdn(zone))
	if err != nil {
		return failed("failed to fetch zone: " + err.Error())
	}

	existing := findRRset(zoneData.RRsets, owner, in.Type)
	if existing == nil || len(existing.Records) == 0 {
		return failed("record not found")
	}

	var records []model.Record
	for _, r := range existing.Records {
		if r.Content != in.OldValue {
			records = append(records, r)
		}
	}
	records = append(records, model.Record{Content: s.formatEditContent(in)})

	patch := model.RRsetPatch{RRsets: []model.RRset{{
		Name:       owner,
		Type:       in.Type,
		TTL:        ClampTTL(in.TTL, existing.TTL),
		Changetype: "REPLACE",
		Records:    records,
	}}}
	if err := s.auth.PatchRRsets(ctx, Fqdn(zone), patch); err != nil {
		return failed("failed to update record: " + err.Error())
	}

	s.log.Info().Str("zone", zone).Str("name", owner).Str("type", in.Type).Msg("record updated")
	s.reloadRecursor()
	return ok("record updated")
}

// AddSubdomain creates an A record {sub}.{zone} pointing at the configured
// default address.
func (s *Service) AddSubdomain(ctx context.Context, zone, sub string) OpResult {
	if strings.TrimSpace(zone) == "" {
		return failed("zone not specified")
	}
	sub = strings.TrimSuffix(strings.TrimSpace(sub), ".")
	if sub == "" || sub == "@" || !ValidLabel(sub) {
		return failed("invalid subdomain")
	}
	if s.cfg.DefaultA == "" {
		return failed("default A record address is not configured")
	}

	patch := model.RRsetPatch{RRsets: []model.RRset{{
		Name:       sub + "." + Fqdn(zone),
		Type:       "A",
		TTL:        DefaultTTL,
		Changetype: "REPLACE",
		Records:    []model.Record{{Content: s.cfg.DefaultA}},
	}}}
	if err := s.auth.PatchRRsets(ctx, Fqdn(zone), patch); err != nil {
		return failed("failed to add subdomain: " + err.Error())
	}

	s.log.Info().Str("zone", zone).Str("subdomain", sub).Msg("subdomain added")
	s.reloadRecursor()
	return ok("subdomain added")
}

// GroupedRecords fetches a zone and groups its record sets by subdomain
// label for display. The apex groups under "@". Pure display transform; the
// write path never uses it.
func (s *Service) GroupedRecords(ctx context.Context, zone string) (map[string][]model.RRset, []string, error) {
	zoneData, err := s.auth.GetZone(ctx, Fqdn(zone))
	if err != nil {
		return nil, nil, err
	}

	grouped := make(map[string][]model.RRset)
	for _, rr := range zoneData.RRsets {
		if rr.Name == "" || rr.Type == "" || len(rr.Records) == 0 {
			continue
		}
		key := Subdomain(rr.Name, zone)
		grouped[key] = append(grouped[key], rr)
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		// apex first, then lexical
		if keys[i] == "@" {
			return true
		}
		if keys[j] == "@" {
			return false
		}
		return keys[i] < keys[j]
	})
	return grouped, keys, nil
}

// Subdomain strips the zone suffix from a full owner name, "@" for the apex.
// Names outside the zone are returned unchanged.
func Subdomain(owner, zone string) string {
	suffix := Fqdn(zone)
	if owner == suffix {
		return "@"
	}
	if strings.HasSuffix(owner, "."+suffix) {
		return strings.TrimSuffix(owner, "."+suffix)
	}
	return owner
}

func (s *Service) formatAddContent(in RecordInput) string {
	raw := strings.TrimSpace(in.Value)
	switch in.Type {
	case "NS":
		return Fqdn(raw)
	case "MX":
		return FormatMX(in.MXPriority, raw)
	case "SRV":
		return FormatSRV(in.SRVPriority, in.SRVWeight, in.SRVPort, raw)
	case "TXT":
		return FormatTXT(raw)
	}
	if hostType(in.Type) {
		return Fqdn(raw)
	}
	return raw
}

func (s *Service) formatEditContent(in EditInput) string {
	raw := strings.TrimSpace(in.Value)
	switch in.Type {
	case "MX":
		return FormatMX(in.MXPriority, lastField(raw))
	case "SRV":
		return FormatSRV(in.SRVPriority, in.SRVWeight, in.SRVPort, lastField(raw))
	case "SOA":
		return FormatSOA(in.SOANS, in.SOAMail, in.SOARefresh, in.SOARetry, in.SOAExpire, in.SOAMinimum)
	case "TXT":
		return FormatTXT(raw)
	}
	if hostType(in.Type) {
		return Fqdn(raw)
	}
	return strings.TrimSuffix(raw, ".")
}

func findRRset(rrsets []model.RRset, name, recordType string) *model.RRset {
	for i := range rrsets {
		if rrsets[i].Name == name && rrsets[i].Type == recordType {
			return &rrsets[i]
		}
	}
	return nil
}
