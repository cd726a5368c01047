package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/masmgr/githar-go/internal/history"
)

// DefaultRemote is the remote consulted when none is named.
const DefaultRemote = "origin"

// ResolveIdentifier opens the clone at repoPath and derives owner/name from
// the first URL of the named remote.
func ResolveIdentifier(repoPath, remoteName string) (history.Identifier, error) {
	if remoteName == "" {
		remoteName = DefaultRemote
	}

	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return history.Identifier{}, fmt.Errorf("failed to open repository %s: %w", repoPath, err)
	}

	remote, err := repo.Remote(remoteName)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return history.Identifier{}, fmt.Errorf("repository %s has no remote %q", repoPath, remoteName)
		}
		return history.Identifier{}, err
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return history.Identifier{}, fmt.Errorf("remote %q has no URL", remoteName)
	}
	return ParseRemoteURL(urls[0])
}

// ParseRemoteURL extracts owner/name from an HTTPS, SSH or scp-style remote URL.
func ParseRemoteURL(raw string) (history.Identifier, error) {
	ep, err := transport.NewEndpoint(strings.TrimSpace(raw))
	if err != nil {
		return history.Identifier{}, fmt.Errorf("invalid remote URL %q: %w", raw, err)
	}
	if ep.Protocol == "file" || ep.Host == "" {
		return history.Identifier{}, fmt.Errorf("remote URL %q is not hosted", raw)
	}
	return history.ParseIdentifier(ep.Path)
}
