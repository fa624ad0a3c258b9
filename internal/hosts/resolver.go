// Package hosts resolves the local machine and the requested sync targets
// against the configured host mapping.
package hosts

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sshsync/sshsync/internal/config"
)

// AllTargets is the sentinel token selecting every configured host other
// than the local one.
const AllTargets = "all"

var (
	ErrNoLocalHost   = errors.New("local machine not found in config")
	ErrNoTargetHosts = errors.New("no valid target host found in config")
	ErrSelfSync      = errors.New("cannot sync host with itself")
)

// Set is the resolved (local, targets) pair for one run. Targets are
// deduplicated, ordered by first request, and never contain Local.
type Set struct {
	Local   string
	Targets []string
}

// Resolve determines the local host and target hosts for a run.
//
// Configured hostnames are matched as substrings: the local host is the
// configured host contained in localName, and each requested token selects
// the configured host it contains. Substring matching tolerates FQDN
// suffixes and instance qualifiers absent from the short configured names.
// When several configured hosts match, the longest one wins; remaining
// ties fall back to config declaration order.
func Resolve(localName string, tokens []string, cfg *config.Config) (*Set, error) {
	all := cfg.Hosts()

	local := bestMatch(localName, all)
	if local == "" {
		return nil, fmt.Errorf("%w: machine '%s'", ErrNoLocalHost, localName)
	}

	others := make([]string, 0, len(all))
	for _, host := range all {
		if host != local {
			others = append(others, host)
		}
	}

	var targets []string
	if slices.Contains(tokens, AllTargets) {
		targets = others
	} else {
		for _, token := range tokens {
			token = substituteAlias(token, cfg)
			host := bestMatch(token, all)
			if host == "" {
				slog.Warn("could not find host in config, skipping", "host", token)
				continue
			}
			if !slices.Contains(targets, host) {
				targets = append(targets, host)
			}
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: requested %v", ErrNoTargetHosts, tokens)
	}
	if slices.Contains(targets, local) {
		return nil, fmt.Errorf("%w: '%s'", ErrSelfSync, local)
	}

	slog.Debug("resolved hosts", "local", local, "targets", targets)
	return &Set{Local: local, Targets: targets}, nil
}

func substituteAlias(token string, cfg *config.Config) string {
	if host, ok := cfg.ResolveAlias(token); ok {
		slog.Info(fmt.Sprintf("Aliased '%s' to '%s'", token, host))
		return host
	}
	return token
}

// bestMatch returns the configured host that is a substring of name,
// preferring the longest match and then declaration order.
func bestMatch(name string, hosts []string) string {
	var best string
	for _, host := range hosts {
		if host == "" || !strings.Contains(name, host) {
			continue
		}
		if len(host) > len(best) {
			best = host
		}
	}
	return best
}
