package dnsops

import (
	"context"

	"pdnsweb/internal/model"
)

// statNames limits the dashboard to the counters operators actually watch.
var statNames = map[string]bool{
	"udp-queries":        true,
	"tcp-queries":        true,
	"udp-answers":        true,
	"tcp-answers":        true,
	"uptime":             true,
	"latency":            true,
	"questions":          true,
	"cache-hits":         true,
	"cache-misses":       true,
	"cache-entries":      true,
	"concurrent-queries": true,
	"servfail-answers":   true,
	"noerror-answers":    true,
	"nxdomain-answers":   true,
}

// UpstreamStatistics pulls the statistics endpoints of both servers. The
// recursor slice is nil when the recursor subsystem is disabled. A failure on
// either side is returned as-is; the dashboard degrades per server.
func (s *Service) UpstreamStatistics(ctx context.Context) (auth, recursor []model.StatItem, err error) {
	all, err := s.auth.Statistics(ctx)
	if err != nil {
		return nil, nil, err
	}
	auth = filterStats(all)

	if s.recursorEnabled() {
		recAll, recErr := s.recursor.Statistics(ctx)
		if recErr != nil {
			s.log.Error().Err(recErr).Msg("failed to fetch recursor statistics")
		} else {
			recursor = filterStats(recAll)
		}
	}
	return auth, recursor, nil
}

func filterStats(items []model.StatItem) []model.StatItem {
	out := make([]model.StatItem, 0, len(statNames))
	for _, item := range items {
		if statNames[item.Name] {
			out = append(out, item)
		}
	}
	return out
}
