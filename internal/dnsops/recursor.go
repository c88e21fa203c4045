package dnsops

import (
	"context"
	"errors"
	"net"
	"sort"
	"strconv"
	"strings"

	"pdnsweb/internal/model"
)

// rootSeedServers is the default upstream for the root forwarder when none
// exists yet.
var rootSeedServers = []string{"1.1.1.1:53"}

// ForwardingView is what the recursor page renders: zones already forwarded
// and authoritative zones still available to forward.
type ForwardingView struct {
	Forwarded []model.ForwardZone
	Available []string
}

// ErrRecursorDisabled is returned by forwarding operations when no recursor
// is configured.
var ErrRecursorDisabled = errors.New("recursor subsystem is disabled")

// LoadForwarding reconciles the recursor's forward zones against the
// authoritative zone list and seeds the root forwarder if it is missing.
func (s *Service) LoadForwarding(ctx context.Context) (ForwardingView, error) {
	var view ForwardingView
	if !s.recursorEnabled() {
		return view, ErrRecursorDisabled
	}

	authZones, err := s.auth.ListZones(ctx)
	if err != nil {
		return view, err
	}
	recursorZones, err := s.recursor.ListForwardZones(ctx)
	if err != nil {
		return view, err
	}

	hasRoot := false
	for _, z := range recursorZones {
		if !strings.EqualFold(z.Kind, "Forwarded") {
			continue
		}
		if z.Name == "." {
			hasRoot = true
		}
		view.Forwarded = append(view.Forwarded, z)
	}

	if !hasRoot {
		root := model.ForwardZone{Name: ".", Kind: "Forwarded", Servers: rootSeedServers}
		if err := s.recursor.CreateForwardZone(ctx, root); err != nil {
			s.log.Error().Err(err).Msg("failed to seed root forwarder")
		} else {
			view.Forwarded = append(view.Forwarded, root)
		}
	}

	forwarded := make(map[string]bool, len(view.Forwarded))
	for _, fz := range view.Forwarded {
		forwarded[fz.Name] = true
	}
	for _, z := range authZones {
		if !forwarded[z.Name] {
			view.Available = append(view.Available, z.Name)
		}
	}
	sort.Strings(view.Available)

	// root first, then lexical, for a stable table
	sort.Slice(view.Forwarded, func(i, j int) bool {
		if view.Forwarded[i].Name == "." {
			return true
		}
		if view.Forwarded[j].Name == "." {
			return false
		}
		return view.Forwarded[i].Name < view.Forwarded[j].Name
	})
	return view, nil
}

// AddForwardZone points the recursor at the local authoritative listener for
// one zone.
func (s *Service) AddForwardZone(ctx context.Context, zone string) OpResult {
	if !s.recursorEnabled() {
		return failed(ErrRecursorDisabled.Error())
	}
	if strings.TrimSpace(zone) == "" {
		return failed("zone not specified")
	}

	fz := model.ForwardZone{
		Name:    Fqdn(zone),
		Kind:    "Forwarded",
		Servers: []string{s.cfg.AuthoritativeAddr},
	}
	if err := s.recursor.CreateForwardZone(ctx, fz); err != nil {
		return failed("failed to add forward zone: " + err.Error())
	}
	s.log.Info().Str("zone", fz.Name).Msg("forward zone added")
	return ok("forward zone added")
}

// RemoveForwardZone deletes a forward entry. The root forwarder must never
// be removed, only edited; the check runs before any API call.
func (s *Service) RemoveForwardZone(ctx context.Context, zone string) OpResult {
	if !s.recursorEnabled() {
		return failed(ErrRecursorDisabled.Error())
	}
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return failed("zone not specified")
	}
	if zone == "." {
		return failed("the root forwarder cannot be removed")
	}

	if err := s.recursor.DeleteZone(ctx, Fqdn(zone)); err != nil {
		return failed("failed to remove forward zone: " + err.Error())
	}
	s.log.Info().Str("zone", zone).Msg("forward zone removed")
	return ok("forward zone removed")
}

// UpdateRootServers replaces the root forwarder's upstream resolver list
// from a comma-separated host:port string.
func (s *Service) UpdateRootServers(ctx context.Context, serverList string) OpResult {
	if !s.recursorEnabled() {
		return failed(ErrRecursorDisabled.Error())
	}

	servers, err := ParseServerList(serverList)
	if err != nil {
		return failed(err.Error())
	}

	root := model.ForwardZone{Name: ".", Kind: "Forwarded", Servers: servers}
	if err := s.recursor.UpdateForwardZone(ctx, root); err != nil {
		return failed("failed to update root forwarder: " + err.Error())
	}
	s.log.Info().Strs("servers", servers).Msg("root forwarder updated")
	return ok("upstream DNS servers updated")
}

// ParseServerList validates a comma-separated host:port list and dedupes it
// case-insensitively, preserving first-seen order.
func ParseServerList(raw string) ([]string, error) {
	var servers []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		host, portStr, err := net.SplitHostPort(part)
		if err != nil || host == "" {
			return nil, errors.New("invalid server entry: " + part)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port < 1 || port > 65535 {
			return nil, errors.New("invalid port in server entry: " + part)
		}
		key := strings.ToLower(part)
		if seen[key] {
			continue
		}
		seen[key] = true
		servers = append(servers, part)
	}
	if len(servers) == 0 {
		return nil, errors.New("no valid DNS servers provided")
	}
	return servers, nil
}
