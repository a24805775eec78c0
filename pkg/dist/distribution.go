// SPDX-License-Identifier: Apache-2.0

// Package dist holds the distribution model and the list and pull command
// logic, independent of any CLI framework.
package dist

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidName is returned when a distribution name cannot be parsed
var ErrInvalidName = errors.New("invalid distribution name")

var typePattern = regexp.MustCompile(`^[a-z][a-z0-9]*$`)

// Distribution identifies an installable runtime version
type Distribution struct {
	Version   string `json:"version" yaml:"version"`
	Type      string `json:"type" yaml:"type"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	SHA256    string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Checksums string `json:"checksums,omitempty" yaml:"checksums,omitempty"`
}

// Identifier returns the composed <type>-<version> name, which is also the
// name of the local directory the distribution is installed into.
func (d Distribution) Identifier() string {
	return Compose(d.Type, d.Version)
}

// Compose joins a type and version into an identifier
func Compose(typ, ver string) string {
	return typ + "-" + ver
}

// ParseIdentifier splits a user supplied name into type and version.
// Accepts "<type>-<version>" or a bare version, optionally prefixed with 'v';
// a bare version takes defaultType.
func ParseIdentifier(defaultType, name string) (typ, ver string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: empty", ErrInvalidName)
	}

	typ, ver = defaultType, name
	if prefix, rest, ok := strings.Cut(name, "-"); ok && typePattern.MatchString(prefix) {
		typ, ver = prefix, rest
	}
	ver = strings.TrimPrefix(ver, "v")

	if _, err := version.NewVersion(ver); err != nil {
		return "", "", fmt.Errorf("%w: %q is not a version", ErrInvalidName, ver)
	}

	return typ, ver, nil
}

// VersionOf returns the version part of a local directory name for typ,
// or "" when the name does not belong to typ.
func VersionOf(typ, dirName string) string {
	prefix := typ + "-"
	if !strings.HasPrefix(dirName, prefix) {
		return ""
	}
	return strings.TrimPrefix(dirName, prefix)
}

// DisplayName renders a distribution type for human output
func DisplayName(typ string) string {
	return cases.Title(language.English).String(typ)
}
