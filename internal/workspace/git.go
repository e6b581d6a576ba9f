package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/scanio-remote/pkg/shared/files"
)

// RepositoryMetadata describes the git checkout that contains a project root.
type RepositoryMetadata struct {
	RootFolder string  `json:"rootFolder,omitempty"`
	CI         string  `json:"ci,omitempty"`
	BranchName *string `json:"branchName,omitempty"`
	CommitHash *string `json:"commitHash,omitempty"`
	RemoteURL  *string `json:"remoteUrl,omitempty"`
}

// FindRepositoryRoot walks up from folder until it finds a git worktree root.
func FindRepositoryRoot(folder string) (string, error) {
	if folder == "" {
		return "", fmt.Errorf("source folder is not set")
	}
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}

	for {
		if _, err := git.PlainOpen(folder); err == nil {
			return filepath.Clean(folder), nil
		}

		parent := filepath.Dir(folder)
		if parent == folder {
			break
		}
		folder = parent
	}

	return "", fmt.Errorf("source folder is not a git repository")
}

// CollectRepositoryMetadata reads branch, head commit and origin URL of the
// repository rooted at or above folder.
func CollectRepositoryMetadata(folder string) (*RepositoryMetadata, error) {
	root, err := FindRepositoryRoot(folder)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	md := &RepositoryMetadata{RootFolder: root}
	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}
		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			remoteURL := strings.TrimSuffix(cfg.URLs[0], ".git")
			md.RemoteURL = &remoteURL
		}
	}
	return md, nil
}

// DescribeRepository returns git metadata of the checkout at folder. Outside a
// git checkout it falls back to the CI environment, and returns nil when
// neither is available.
func DescribeRepository(folder string, lookup LookupFunc) *RepositoryMetadata {
	md, err := CollectRepositoryMetadata(folder)
	if err == nil {
		if kind := DetectCIKind(lookup); kind != CIUnknown {
			md.CI = string(kind)
		}
		return md
	}
	return CIRepositoryMetadata(lookup)
}

// ProjectRoots returns the candidate local roots used to resolve finding paths.
// Explicit paths are expanded, made absolute and checked to be directories.
// Without explicit paths the git worktree root of the working directory is
// used, falling back to the working directory itself.
func ProjectRoots(explicit []string, logger hclog.Logger) ([]string, error) {
	if len(explicit) > 0 {
		roots := make([]string, 0, len(explicit))
		seen := make(map[string]struct{}, len(explicit))
		for _, path := range explicit {
			expanded, err := files.ExpandPath(path)
			if err != nil {
				return nil, fmt.Errorf("failed to expand project path %q: %w", path, err)
			}
			abs, err := filepath.Abs(expanded)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve project path %q: %w", path, err)
			}
			if err := files.ValidateDir(abs); err != nil {
				return nil, fmt.Errorf("invalid project path: %w", err)
			}
			if _, ok := seen[abs]; ok {
				continue
			}
			seen[abs] = struct{}{}
			roots = append(roots, abs)
		}
		return roots, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	root, err := FindRepositoryRoot(cwd)
	if err != nil {
		logger.Debug("working directory is not inside a git repository, using it as project root", "path", cwd)
		return []string{cwd}, nil
	}
	logger.Debug("using git worktree root as project root", "path", root)
	return []string{root}, nil
}
