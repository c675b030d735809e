package app

import (
	"fmt"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Set at build time with -ldflags "-X".
var (
	buildVersion = "dev"
	buildCommit  = ""
	buildDate    = ""
)

type versionInfo struct {
	Version  string
	Commit   string
	Date     string
	Modified bool
}

func printVersion() {
	v := getVersionInfo()

	fmt.Println(cliName)
	fmt.Printf("  version: %s\n", v.Version)
	if semver.Prerelease(v.Version) != "" {
		fmt.Println("  channel: prerelease")
	}
	if v.Commit != "" {
		commit := shortSHA(v.Commit)
		if v.Modified {
			commit += " (dirty)"
		}
		fmt.Printf("  commit:  %s\n", commit)
	}
	if v.Date != "" {
		fmt.Printf("  built:   %s\n", v.Date)
	}
}

func getVersionInfo() versionInfo {
	return getVersionInfoWithReader(debug.ReadBuildInfo)
}

func getVersionInfoWithReader(readBuildInfo func() (*debug.BuildInfo, bool)) versionInfo {
	v := versionInfo{
		Version: normalizeVersion(buildVersion),
		Commit:  strings.TrimSpace(buildCommit),
		Date:    strings.TrimSpace(buildDate),
	}

	if bi, ok := readBuildInfo(); ok {
		// Module builds carry their own version; local builds say "(devel)".
		if (v.Version == "" || v.Version == "dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			v.Version = normalizeVersion(bi.Main.Version)
		}

		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if v.Commit == "" {
					v.Commit = strings.TrimSpace(s.Value)
				}
			case "vcs.time":
				if v.Date == "" {
					v.Date = strings.TrimSpace(s.Value)
				}
			case "vcs.modified":
				v.Modified = strings.EqualFold(strings.TrimSpace(s.Value), "true")
			}
		}
	}

	if v.Version == "" {
		v.Version = "dev"
	}
	return v
}

// normalizeVersion adds the "v" prefix and canonicalizes valid semver
// ("1.2" becomes "v1.2.0"). Anything else is returned trimmed.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || v == "dev" {
		return v
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if c := semver.Canonical(v); c != "" {
		return c
	}
	return v
}

func shortSHA(sha string) string {
	sha = strings.TrimSpace(sha)
	if len(sha) <= 12 {
		return sha
	}
	return sha[:12]
}
