// Package guard implements the protected-path matcher. It answers a single
// question, "may this path ever be deleted", with pure string matching
// against curated prefix lists. No I/O happens here.
package guard

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/TomerGlick/MacCleaner-sub001/internal/utils"
)

// System prefixes protected even from root (SIP and friends).
var systemPrefixes = []string{
	"/System",
	"/usr",
	"/bin",
	"/sbin",
	"/private/var/db",
	"/Library/Apple",
}

// Exception prefixes writable despite sitting under a protected prefix.
var exceptionPrefixes = []string{
	"/usr/local",
}

// User-data prefixes relative to the home directory. Losing any of these is
// catastrophic for the user, so the engine refuses to touch them.
var userDataSuffixes = []string{
	"Library/Keychains",
	"Library/Mail",
	"Library/Messages",
	"Library/Photos",
	"Library/Application Support/AddressBook",
	"Library/Calendars",
	"Library/Application Support/Google/Chrome/Default",
	"Library/Application Support/Firefox/Profiles",
	"Library/Safari",
	"Documents",
	"Desktop",
}

// First-party bundle names under the standard application directories.
var firstPartyBundles = []string{
	"Safari.app",
	"Mail.app",
	"Messages.app",
	"Photos.app",
	"Finder.app",
	"App Store.app",
	"System Settings.app",
	"Terminal.app",
}

var applicationDirs = []string{
	"/Applications",
	"/System/Applications",
}

// Version-gated prefixes added by UpdateForVersion. Additions are monotonic;
// a rule inserted for an OS release is never removed again.
var versionedPrefixes = map[int][]string{
	11: {"/Library/Apple/System"},
	13: {"/System/Cryptexes"},
	14: {"/private/var/protected"},
}

// Guard is the protected-path matcher. Immutable after construction except
// for UpdateForVersion, so reads take a read lock only.
type Guard struct {
	mu       sync.RWMutex
	prefixes []string
	home     string
}

// New builds a Guard with the base system and user-data rules.
func New() *Guard {
	home := utils.HomeDir()

	g := &Guard{home: home}
	g.prefixes = append(g.prefixes, systemPrefixes...)
	for _, suffix := range userDataSuffixes {
		g.prefixes = append(g.prefixes, filepath.Join(home, suffix))
	}
	return g
}

// UpdateForVersion inserts the protected prefixes gated on the given OS major
// version. Calling with a lower version than before is a no-op for already
// inserted rules: the rule set only grows.
func (g *Guard) UpdateForVersion(major int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	versions := make([]int, 0, len(versionedPrefixes))
	for v := range versionedPrefixes {
		versions = append(versions, v)
	}
	sort.Ints(versions)

	for _, v := range versions {
		if v > major {
			continue
		}
		for _, p := range versionedPrefixes[v] {
			if !containsString(g.prefixes, p) {
				g.prefixes = append(g.prefixes, p)
			}
		}
	}
}

// IsProtected reports whether the path may never be deleted. The path is
// tilde-expanded and cleaned before matching.
func (g *Guard) IsProtected(path string) bool {
	resolved := filepath.Clean(utils.ExpandPath(path))

	for _, exception := range exceptionPrefixes {
		if hasPathPrefix(resolved, exception) {
			return false
		}
	}

	g.mu.RLock()
	prefixes := g.prefixes
	g.mu.RUnlock()

	for _, prefix := range prefixes {
		if hasPathPrefix(resolved, prefix) {
			return true
		}
	}

	return g.isFirstPartyBundle(resolved)
}

// isFirstPartyBundle matches paths at or under a first-party .app bundle in
// the standard application directories.
func (g *Guard) isFirstPartyBundle(path string) bool {
	for _, dir := range applicationDirs {
		if !hasPathPrefix(path, dir) {
			continue
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), "/")
		if rel == "" {
			continue
		}
		bundle := strings.SplitN(rel, "/", 2)[0]
		if containsString(firstPartyBundles, bundle) {
			return true
		}
	}
	return false
}

// hasPathPrefix matches on whole path components: /usr protects /usr/lib but
// not /usrdata.
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
