// Package update checks GitHub Releases for newer ralph builds and can
// replace the running binary in place.
package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	selfupdate "github.com/creativeprojects/go-selfupdate"
)

const (
	checkTimeout = 10 * time.Second
	applyTimeout = 2 * time.Minute
)

// Release describes an available update.
type Release struct {
	Version      string
	URL          string
	ReleaseNotes string
}

// Check queries GitHub Releases for a version newer than current. It
// returns nil when current is already the latest, or when current is a
// development build ("dev", empty, or otherwise unparseable).
func Check(current, repo string) (*Release, error) {
	cv, err := parseSemver(current)
	if err != nil {
		return nil, nil
	}

	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, fmt.Errorf("detect latest release: %w", err)
	}
	if !found {
		return nil, nil
	}

	lv, err := semver.NewVersion(latest.Version())
	if err != nil {
		return nil, nil
	}
	if !lv.GreaterThan(cv) {
		return nil, nil
	}

	return &Release{
		Version:      latest.Version(),
		URL:          latest.URL,
		ReleaseNotes: latest.ReleaseNotes,
	}, nil
}

// Apply downloads the latest release and swaps the current executable.
func Apply(current, repo string) (*Release, error) {
	if _, err := parseSemver(current); err != nil {
		return nil, fmt.Errorf("cannot update a development build — install from a release first")
	}

	updater, err := newUpdater()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), applyTimeout)
	defer cancel()

	rel, err := updater.UpdateSelf(ctx, strings.TrimPrefix(current, "v"), selfupdate.ParseSlug(repo))
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}

	return &Release{
		Version:      rel.Version(),
		URL:          rel.URL,
		ReleaseNotes: rel.ReleaseNotes,
	}, nil
}

func newUpdater() (*selfupdate.Updater, error) {
	source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return nil, fmt.Errorf("create github source: %w", err)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: source})
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}
	return updater, nil
}

// parseSemver tolerates a leading "v" and git-describe suffixes like
// "0.1.0-3-gabcdef".
func parseSemver(s string) (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(s, "v"))
}
