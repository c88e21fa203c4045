package dnsops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdnsweb/internal/model"
)

// ZoneRequest carries the operator's create/edit zone form.
type ZoneRequest struct {
	Name   string
	Kind   string
	DNSSEC bool
	Master string // only meaningful for Slave zones
	Serial int64  // only meaningful on edit; <=0 leaves it to upstream
}

const dnssecAlgorithm = "ECDSAP256SHA256"

func validKind(kind string) bool {
	switch kind {
	case "Native", "Master", "Slave":
		return true
	}
	return false
}

// CreateZone provisions a zone and its side effects: an optional DNSSEC key,
// a default SOA, and a recursor forward entry. Failures after the zone POST
// downgrade the result to a warning; the zone itself is never rolled back.
func (s *Service) CreateZone(ctx context.Context, req ZoneRequest) OpResult {
	if strings.TrimSpace(req.Name) == "" || !validKind(req.Kind) {
		return failed("invalid zone parameters")
	}
	name := Fqdn(req.Name)

	create := model.ZoneCreate{Name: name, Kind: req.Kind, DNSSEC: req.DNSSEC}
	// masters must stay absent for anything but Slave zones
	if req.Kind == "Slave" && strings.TrimSpace(req.Master) != "" {
		create.Masters = []string{strings.TrimSpace(req.Master)}
	}

	if err := s.auth.CreateZone(ctx, create); err != nil {
		return failed("failed to create zone: " + err.Error())
	}
	s.log.Info().Str("zone", name).Str("kind", req.Kind).Bool("dnssec", req.DNSSEC).Msg("zone created")

	var warnings []string

	if req.DNSSEC {
		key := model.DnssecKeyCreate{Active: true, KeyType: "ksk", Algorithm: dnssecAlgorithm}
		if err := s.auth.CreateCryptokey(ctx, name, key); err != nil {
			s.log.Error().Err(err).Str("zone", name).Msg("failed to create DNSSEC key")
			warnings = append(warnings, "failed to create DNSSEC key: "+err.Error())
		}
	}

	if req.Kind != "Slave" {
		soa := model.RRsetPatch{RRsets: []model.RRset{{
			Name:       name,
			Type:       "SOA",
			TTL:        DefaultTTL,
			Changetype: "REPLACE",
			Records: []model.Record{{
				Content: fmt.Sprintf("%s %s %d 10800 3600 604800 3600",
					Fqdn(s.cfg.SOA.NS), Fqdn(s.cfg.SOA.Mail), time.Now().Unix()),
			}},
		}}}
		if err := s.auth.PatchRRsets(ctx, name, soa); err != nil {
			s.log.Error().Err(err).Str("zone", name).Msg("failed to add default SOA")
			warnings = append(warnings, "failed to add default SOA record: "+err.Error())
		}

		if s.recursorEnabled() {
			fz := model.ForwardZone{
				Name:    name,
				Kind:    "Forwarded",
				Servers: []string{s.cfg.AuthoritativeAddr},
			}
			if err := s.recursor.CreateForwardZone(ctx, fz); err != nil {
				s.log.Error().Err(err).Str("zone", name).Msg("failed to register forward zone")
				warnings = append(warnings, "failed to register forward zone with the recursor: "+err.Error())
			}
		}
	}

	if len(warnings) > 0 {
		return warn("zone created with warnings: " + strings.Join(warnings, "; "))
	}
	return ok("zone created")
}

// EditZone updates zone metadata and walks the DNSSEC key state machine:
// enabling creates one KSK, disabling deletes every existing key.
func (s *Service) EditZone(ctx context.Context, req ZoneRequest) OpResult {
	if strings.TrimSpace(req.Name) == "" || !validKind(req.Kind) {
		return failed("invalid zone parameters")
	}
	name := Fqdn(req.Name)

	current, err := s.auth.GetZone(ctx, name)
	if err != nil {
		return failed("failed to fetch zone: " + err.Error())
	}
	wasDNSSEC := current.DNSSEC

	serial := req.Serial
	if serial < 0 {
		serial = 0
	}
	update := model.ZoneUpdate{Name: name, Kind: req.Kind, DNSSEC: req.DNSSEC, Serial: serial}
	if err := s.auth.UpdateZone(ctx, name, update); err != nil {
		return failed("failed to update zone: " + err.Error())
	}

	switch {
	case !wasDNSSEC && req.DNSSEC:
		key := model.DnssecKeyCreate{Active: true, KeyType: "ksk", Algorithm: dnssecAlgorithm, Bits: 256}
		if err := s.auth.CreateCryptokey(ctx, name, key); err != nil {
			s.log.Error().Err(err).Str("zone", name).Msg("failed to create DNSSEC key")
			return warn("zone updated, but enabling DNSSEC failed: " + err.Error())
		}
		s.log.Info().Str("zone", name).Msg("DNSSEC enabled, KSK created")

	case wasDNSSEC && !req.DNSSEC:
		keys, err := s.auth.ListCryptokeys(ctx, name)
		if err != nil {
			s.log.Error().Err(err).Str("zone", name).Msg("failed to list DNSSEC keys")
			return warn("zone updated, but listing DNSSEC keys failed: " + err.Error())
		}
		// best-effort: individual delete failures are logged, not fatal
		for _, key := range keys {
			if err := s.auth.DeleteCryptokey(ctx, name, key.ID); err != nil {
				s.log.Error().Err(err).Str("zone", name).Int("key", key.ID).
					Msg("failed to delete DNSSEC key")
			}
		}
		s.log.Info().Str("zone", name).Int("keys", len(keys)).Msg("DNSSEC disabled, keys removed")
	}

	return ok("zone updated")
}

// DeleteZone removes a zone from the authoritative server and, when the
// recursor is enabled, its forward entry. The recursor step failing after
// the authoritative delete succeeded is a known inconsistency window; it is
// surfaced as a warning, not rolled back.
func (s *Service) DeleteZone(ctx context.Context, name string) OpResult {
	if strings.TrimSpace(name) == "" {
		return failed("zone not specified")
	}
	fqdn := Fqdn(name)

	if err := s.auth.DeleteZone(ctx, fqdn); err != nil {
		return failed("failed to delete zone: " + err.Error())
	}
	s.log.Info().Str("zone", fqdn).Msg("zone deleted")

	if s.recursorEnabled() {
		if err := s.recursor.DeleteZone(ctx, fqdn); err != nil {
			s.log.Error().Err(err).Str("zone", fqdn).Msg("failed to remove forward zone")
			return warn("zone deleted, but removing the forward zone failed: " + err.Error())
		}
	}
	return ok("zone deleted")
}

// Cryptokeys fetches the DNSSEC key material for a zone.
func (s *Service) Cryptokeys(ctx context.Context, name string) ([]model.DnssecKey, error) {
	return s.auth.ListCryptokeys(ctx, Fqdn(name))
}

// Zones lists the authoritative zones.
func (s *Service) Zones(ctx context.Context) ([]model.Zone, error) {
	return s.auth.ListZones(ctx)
}
