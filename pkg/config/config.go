// SPDX-License-Identifier: Apache-2.0
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// Remote distribution index
	DefaultIndexURL = "https://api.central.ballerina.io/2.0/update-tool/distributions"

	// DefaultDistributionType is the product label distributions are published under
	DefaultDistributionType = "jballerina"

	// DefaultHTTPTimeout bounds every request made to the distribution index
	DefaultHTTPTimeout = 30 * time.Second

	// Configuration
	EnvPrefix        = "DIST"   // Environment variable prefix for Viper
	ConfigFileName   = "config" // Config file name for XDG config dir (without extension)
	LocalConfigFile  = "dist"   // Config file name for current directory (without extension)
	ConfigType       = "yaml"   // Config file type
	DefaultConfigExt = ".yaml"  // Default config file extension

	// CurrentLinkName is the symlink in the data dir pointing at the active distribution
	CurrentLinkName = "current"
)

// Paths holds all XDG-compliant directory paths
type Paths struct {
	DataDir   string
	CacheDir  string
	ConfigDir string

	// DistributionsDir holds one subdirectory per installed distribution
	DistributionsDir string
	// CurrentLink is the symlink selecting the active distribution
	CurrentLink string
}

var (
	// GlobalPaths is the global paths instance
	GlobalPaths *Paths
)

func init() {
	GlobalPaths = GetPaths()
}

// xdgDir resolves an XDG base directory, falling back to a path under $HOME
func xdgDir(envVar string, fallback ...string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to get home directory: %v\n", err)
		os.Exit(1)
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// GetPaths returns XDG-compliant directory paths
func GetPaths() *Paths {
	dataDir := filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "dist")

	return &Paths{
		DataDir:          dataDir,
		CacheDir:         filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), "dist"),
		ConfigDir:        filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "dist"),
		DistributionsDir: filepath.Join(dataDir, "distributions"),
		CurrentLink:      filepath.Join(dataDir, CurrentLinkName),
	}
}

// IsRepoMode returns true when a dist.yaml exists in the current working directory
func IsRepoMode() bool {
	_, err := os.Stat(filepath.Join(".", LocalConfigFile+DefaultConfigExt))
	return err == nil
}

// InitDirs creates all necessary directories
func InitDirs() error {
	dirs := []string{
		GlobalPaths.ConfigDir,
		GlobalPaths.DataDir,
		GlobalPaths.DistributionsDir,
		GlobalPaths.CacheDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetIndexURL returns the URL of the remote distribution index
func GetIndexURL() string {
	return viper.GetString("index.url")
}

// GetIndexToken returns the bearer token sent to the index and download hosts
// Priority: ENV:DIST_INDEX_TOKEN > user config > defaults
func GetIndexToken() string {
	return viper.GetString("index.token")
}

// GetDistributionType returns the product label local directories are prefixed with
func GetDistributionType() string {
	if t := viper.GetString("distribution.type"); t != "" {
		return t
	}
	return DefaultDistributionType
}

// GetMarkingRule returns the list.marking configuration value
func GetMarkingRule() string {
	return viper.GetString("list.marking")
}

// GetHTTPTimeout returns the http.timeout value, falling back to DefaultHTTPTimeout
// when unset or unparsable
func GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(viper.GetString("http.timeout"))
	if err != nil || d <= 0 {
		return DefaultHTTPTimeout
	}
	return d
}

// GetVerifySignatures reports whether pulled archives must carry a valid PGP signature
func GetVerifySignatures() bool {
	return viper.GetBool("verify.signatures")
}

// GetVerifyPublicKey returns the path of the armored public key used for verification
func GetVerifyPublicKey() string {
	return viper.GetString("verify.public-key")
}
