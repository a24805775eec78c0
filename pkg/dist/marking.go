// SPDX-License-Identifier: Apache-2.0
package dist

import "fmt"

// MarkingRule selects how remote candidates are composed before being
// compared against the active identifier.
type MarkingRule string

const (
	// MarkLegacy composes remote candidates as <version>-<version>, which
	// never matches an active <type>-<version>. Existing scripts rely on it.
	MarkLegacy MarkingRule = "legacy"
	// MarkIdentifier composes remote candidates as <type>-<version>
	MarkIdentifier MarkingRule = "identifier"
)

// ParseMarkingRule converts a config value into a MarkingRule.
// Empty selects MarkLegacy.
func ParseMarkingRule(s string) (MarkingRule, error) {
	switch MarkingRule(s) {
	case "", MarkLegacy:
		return MarkLegacy, nil
	case MarkIdentifier:
		return MarkIdentifier, nil
	}
	return "", fmt.Errorf("unknown marking rule %q (want %s or %s)", s, MarkLegacy, MarkIdentifier)
}

// ActiveIdentifier is the "used" side of every comparison: the configured
// type joined with the active version, whatever the candidate is.
func ActiveIdentifier(typ, current string) string {
	return Compose(typ, current)
}

// LocalCandidate is the candidate side for an installed distribution: the
// directory name as found on disk.
func LocalCandidate(dirName string) string {
	return dirName
}

// RemoteCandidate is the candidate side for a remote distribution
func (r MarkingRule) RemoteCandidate(typ string, d Distribution) string {
	if r == MarkIdentifier {
		if d.Type != "" {
			typ = d.Type
		}
		return Compose(typ, d.Version)
	}
	return Compose(d.Version, d.Version)
}

// IsCurrent decides whether candidate is the active distribution
func IsCurrent(used, candidate string) bool {
	return used == candidate
}

// MarkVersion prefixes candidate with "* " when it is current, else two spaces
func MarkVersion(used, candidate string) string {
	return marker(IsCurrent(used, candidate)) + candidate
}

func marker(current bool) string {
	if current {
		return "* "
	}
	return "  "
}
