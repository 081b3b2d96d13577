package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is set at build time with -ldflags "-X .../pkg/cli.Version=x.y.z".
var Version = "0.0.0-dev"

// Repo is the GitHub repository releases are fetched from.
const Repo = "Fepozopo/pixedit"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// Updater finds and installs GitHub releases.
type Updater struct {
	Repo    string
	APIBase string
	Client  *http.Client
}

// NewUpdater returns an Updater for Repo on api.github.com.
func NewUpdater() *Updater {
	return &Updater{Repo: Repo, APIBase: "https://api.github.com", Client: &http.Client{Timeout: 10 * time.Second}}
}

type ghRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// Latest returns the highest published, non-prerelease semver release, or
// nil when there is none. Tags are matched loosely so "release-v1.2.3"
// still counts.
func (u *Updater) Latest(ctx context.Context) (*selfupdate.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(u.APIBase, "/"), u.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, body)
	}
	var releases []ghRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var found []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		found = append(found, &selfupdate.Release{Version: v, AssetURL: pickAsset(r), Name: r.Name})
	}
	if len(found) == 0 {
		return nil, nil
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Version.GT(found[j].Version) })
	return found[0], nil
}

// pickAsset prefers an asset named for the running platform.
func pickAsset(r ghRelease) string {
	url := ""
	for _, a := range r.Assets {
		name := strings.ToLower(a.Name)
		if strings.Contains(name, runtime.GOOS) {
			return a.BrowserDownloadURL
		}
		if url == "" {
			url = a.BrowserDownloadURL
		}
	}
	return url
}

// CheckForUpdates reports the latest release and installs it when the user
// agrees, then re-executes the new binary.
func CheckForUpdates(ctx context.Context, p *Prompter, out io.Writer) error {
	fmt.Fprintf(out, "Current version: %s\n", Version)
	latest, err := NewUpdater().Latest(ctx)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Fprintf(out, "No releases found for %s.\n", Repo)
		return nil
	}
	fmt.Fprintf(out, "Latest version: %s\n", latest.Version)

	current, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err != nil {
		fmt.Fprintf(out, "warning: could not parse current version %q: %v\n", Version, err)
	} else if latest.Version.LTE(current) {
		fmt.Fprintf(out, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(out, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}
	if !p.Confirm(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version)) {
		fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	fmt.Fprintln(out, "Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	// Exec only returns on error; fall back to starting a child process.
	argv := append([]string{exe}, os.Args[1:]...)
	if err := syscall.Exec(exe, argv, os.Environ()); err != nil {
		cmd := exec.Command(exe, os.Args[1:]...)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		if startErr := cmd.Start(); startErr != nil {
			fmt.Fprintf(out, "Updated to version %s; please restart manually (%v).\n", latest.Version, startErr)
			return nil
		}
		os.Exit(0)
	}
	return nil
}
