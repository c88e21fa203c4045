// Package dnsops holds the reconciliation logic between operator intent and
// the PowerDNS API: record-set read-modify-write, zone lifecycle side
// effects, and recursor forward-zone synchronization.
package dnsops

import (
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"pdnsweb/internal/config"
	"pdnsweb/internal/pdns"
)

// Service performs all upstream DNS operations. Every method is a single
// linear sequence of API calls with no retries; the read-modify-write on
// record sets is deliberately not transactional (the upstream API has no
// version token), so concurrent operators can race. Keep each fetch-mutate-
// patch sequence inside one method so an optimistic check can be added here
// without touching handlers.
type Service struct {
	auth     *pdns.Client
	recursor *pdns.Client // nil when the recursor subsystem is disabled
	cfg      config.PDNSConfig
	reload   string // recursor reload command, empty disables the hook
	log      zerolog.Logger
}

func New(auth, recursor *pdns.Client, cfg config.PDNSConfig, reloadCmd string, log zerolog.Logger) *Service {
	return &Service{
		auth:     auth,
		recursor: recursor,
		cfg:      cfg,
		reload:   reloadCmd,
		log:      log.With().Str("component", "dnsops").Logger(),
	}
}

func (s *Service) recursorEnabled() bool { return s.recursor != nil }

// reloadRecursor runs the configured reload command after record writes.
// Fire-and-forget: failures are logged, never surfaced to the operator.
func (s *Service) reloadRecursor() {
	if !s.recursorEnabled() {
		return
	}
	fields := strings.Fields(s.reload)
	if len(fields) == 0 {
		return
	}
	go func() {
		out, err := exec.Command(fields[0], fields[1:]...).CombinedOutput()
		if err != nil {
			s.log.Error().Err(err).Str("cmd", s.reload).Str("output", string(out)).
				Msg("recursor reload command failed")
		}
	}()
}
