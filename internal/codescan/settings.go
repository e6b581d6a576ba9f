package codescan

import "time"

const (
	// DefaultFindingsSchema is the findings schema requested when none is configured.
	DefaultFindingsSchema = "codescan/findings/1.0"
)

// Settings hold the scope-dependent timing parameters of a scan.
type Settings struct {
	FilePollingDelay    time.Duration // initial wait before the first status check of a file scan
	ProjectPollingDelay time.Duration // initial wait before the first status check of a project scan
	PollingInterval     time.Duration // wait between two status checks
	FileTimeout         time.Duration
	ProjectTimeout      time.Duration
	FindingsSchema      string
	VerboseFileScans    bool // log file scans with the regular logger instead of discarding
}

// DefaultSettings returns the timings used by the remote scan service clients.
func DefaultSettings() Settings {
	return Settings{
		FilePollingDelay:    2 * time.Second,
		ProjectPollingDelay: 10 * time.Second,
		PollingInterval:     1 * time.Second,
		FileTimeout:         60 * time.Second,
		ProjectTimeout:      10 * time.Minute,
		FindingsSchema:      DefaultFindingsSchema,
	}
}

func (s Settings) pollingDelay(scope Scope) time.Duration {
	if scope == ScopeFile {
		return s.FilePollingDelay
	}
	return s.ProjectPollingDelay
}

func (s Settings) pollingTimeout(scope Scope) time.Duration {
	if scope == ScopeFile {
		return s.FileTimeout
	}
	return s.ProjectTimeout
}
