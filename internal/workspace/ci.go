package workspace

import (
	"net/url"
	"os"
	"strings"
)

// CIKind identifies the CI provider a scan runs under.
type CIKind string

const (
	CIUnknown   CIKind = ""
	CIGitHub    CIKind = "github"
	CIGitLab    CIKind = "gitlab"
	CIBitbucket CIKind = "bitbucket"
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// DetectCIKind infers the CI provider from well-known environment variables.
func DetectCIKind(lookup LookupFunc) CIKind {
	if lookup == nil {
		lookup = os.Getenv
	}
	switch {
	case lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "":
		return CIGitHub
	case strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "":
		return CIGitLab
	case lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "":
		return CIBitbucket
	default:
		return CIUnknown
	}
}

// CIRepositoryMetadata describes the checkout from CI variables. It returns
// nil outside a recognised CI. The root folder is left to the caller.
func CIRepositoryMetadata(lookup LookupFunc) *RepositoryMetadata {
	if lookup == nil {
		lookup = os.Getenv
	}

	var branch, commit, remoteURL string
	kind := DetectCIKind(lookup)
	switch kind {
	case CIGitHub:
		commit = lookup("GITHUB_SHA")
		branch = lookup("GITHUB_HEAD_REF")
		if branch == "" {
			branch = lookup("GITHUB_REF_NAME")
		}
		if server, repo := lookup("GITHUB_SERVER_URL"), lookup("GITHUB_REPOSITORY"); server != "" && repo != "" {
			remoteURL = strings.TrimSuffix(server, "/") + "/" + repo
		}
	case CIGitLab:
		commit = lookup("CI_COMMIT_SHA")
		branch = lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
		if branch == "" {
			branch = lookup("CI_COMMIT_REF_NAME")
		}
		remoteURL = lookup("CI_PROJECT_URL")
	case CIBitbucket:
		commit = lookup("BITBUCKET_COMMIT")
		branch = lookup("BITBUCKET_BRANCH")
		if origin := lookup("BITBUCKET_GIT_HTTP_ORIGIN"); isAbsoluteURL(origin) {
			remoteURL = origin
		}
	default:
		return nil
	}

	return &RepositoryMetadata{
		CI:         string(kind),
		BranchName: nonEmpty(branch),
		CommitHash: nonEmpty(commit),
		RemoteURL:  nonEmpty(remoteURL),
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func nonEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
