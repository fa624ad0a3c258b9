// Package config holds the typed host-to-element mapping that drives a
// synchronization run. The backing file is a YAML mapping with one section
// per host plus the reserved ALIASES section:
//
//	ALIASES:
//	  laptop: host1
//	host1:
//	  file1: path/to/file1
//	host2:
//	  _PATH: ~/path/to/somewhere/
//	  file2: another/path/to/file2
//
// Element paths are relative to the home directory of the owning host, or
// to the host's _PATH override when one is given. Hosts without a _PATH
// override must be resolvable as SSH host aliases.
package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// AliasesKey is the reserved top-level section mapping alias names to
	// canonical hostnames.
	AliasesKey = "ALIASES"

	// PathKey is the reserved per-host element overriding the remote base
	// path for that host.
	PathKey = "_PATH"
)

var (
	ErrNotFound       = errors.New("config file not found")
	ErrParse          = errors.New("config parse error")
	ErrMissingHost    = errors.New("host not found in config")
	ErrMissingElement = errors.New("element not found in config")
)

type hostEntry struct {
	elements []string // declaration order, PathKey excluded
	paths    map[string]string
	override string
}

// Config is the validated host-to-element mapping. It is immutable after
// load; host and element iteration follow file declaration order.
type Config struct {
	hosts   []string
	entries map[string]*hostEntry
	aliases map[string]string
}

// Hosts returns every configured hostname in declaration order, excluding
// the ALIASES section.
func (c *Config) Hosts() []string {
	hosts := make([]string, len(c.hosts))
	copy(hosts, c.hosts)
	return hosts
}

func (c *Config) HasHost(name string) bool {
	_, ok := c.entries[name]
	return ok
}

// ResolveAlias maps an alias to its canonical hostname. The second return
// is false when no alias with that name exists.
func (c *Config) ResolveAlias(name string) (string, bool) {
	host, ok := c.aliases[name]
	return host, ok
}

// ElementsOf returns the element names of a host in declaration order,
// excluding the reserved _PATH key. Unknown hosts yield nil.
func (c *Config) ElementsOf(host string) []string {
	entry, ok := c.entries[host]
	if !ok {
		return nil
	}
	elements := make([]string, len(entry.elements))
	copy(elements, entry.elements)
	return elements
}

// PathOverride returns the host's _PATH base-path override, if any.
func (c *Config) PathOverride(host string) (string, bool) {
	entry, ok := c.entries[host]
	if !ok || entry.override == "" {
		return "", false
	}
	return entry.override, true
}

// ElementPath returns the relative path configured for an element of a
// host.
func (c *Config) ElementPath(host, element string) (string, error) {
	entry, ok := c.entries[host]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrMissingHost, host)
	}
	path, ok := entry.paths[element]
	if !ok {
		return "", fmt.Errorf("%w: '%s' on host '%s'", ErrMissingElement, element, host)
	}
	return path, nil
}

// UnmarshalYAML decodes the raw document node so section and element
// declaration order is preserved; a plain map would lose it.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return errors.New("top level must be a mapping of host sections")
	}

	c.entries = make(map[string]*hostEntry)
	c.aliases = make(map[string]string)

	seenAliases := false
	for i := 0; i < len(value.Content); i += 2 {
		keyNode, valNode := value.Content[i], value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: section name must be a scalar", keyNode.Line)
		}
		name := keyNode.Value

		if name == AliasesKey {
			if seenAliases {
				return fmt.Errorf("line %d: duplicate %s section", keyNode.Line, AliasesKey)
			}
			seenAliases = true
			aliases, err := decodeStringMapping(valNode)
			if err != nil {
				return fmt.Errorf("section %s: %w", AliasesKey, err)
			}
			c.aliases = aliases
			continue
		}

		if _, ok := c.entries[name]; ok {
			return fmt.Errorf("line %d: duplicate host section '%s'", keyNode.Line, name)
		}

		paths, err := decodeStringMapping(valNode)
		if err != nil {
			return fmt.Errorf("host '%s': %w", name, err)
		}

		entry := &hostEntry{paths: paths}
		for j := 0; j < len(valNode.Content); j += 2 {
			element := valNode.Content[j].Value
			if element == PathKey {
				entry.override = paths[element]
				continue
			}
			entry.elements = append(entry.elements, element)
		}

		c.hosts = append(c.hosts, name)
		c.entries[name] = entry
	}

	if len(c.hosts) == 0 {
		return errors.New("no host sections configured")
	}

	return nil
}

func decodeStringMapping(node *yaml.Node) (map[string]string, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	m := make(map[string]string, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode || valNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: entries must map names to path strings", keyNode.Line)
		}
		if valNode.Value == "" {
			return nil, fmt.Errorf("line %d: entry '%s' has an empty path", keyNode.Line, keyNode.Value)
		}
		if _, ok := m[keyNode.Value]; ok {
			return nil, fmt.Errorf("line %d: duplicate entry '%s'", keyNode.Line, keyNode.Value)
		}
		m[keyNode.Value] = valNode.Value
	}
	return m, nil
}
