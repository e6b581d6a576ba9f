package codescan

import (
	"sync/atomic"
	"time"
)

// ScanState is the process-scoped register of scan cancellation signals. It is
// written by the surrounding application and only read by running scans.
type ScanState struct {
	cancelling        atomic.Bool
	fileScansDisabled atomic.Bool
	latestFileScan    atomic.Int64 // unix nanoseconds, 0 when no file scan started yet
}

// NewScanState returns a state with file scans enabled and nothing cancelled.
func NewScanState() *ScanState {
	return &ScanState{}
}

// SetCancelling requests project scans to stop.
func (s *ScanState) SetCancelling(cancelling bool) {
	s.cancelling.Store(cancelling)
}

func (s *ScanState) IsCancelling() bool {
	return s.cancelling.Load()
}

// SetFileScansEnabled toggles file scanning globally.
func (s *ScanState) SetFileScansEnabled(enabled bool) {
	s.fileScansDisabled.Store(!enabled)
}

func (s *ScanState) FileScansEnabled() bool {
	return !s.fileScansDisabled.Load()
}

// MarkFileScanStarted records t as the start of the latest file scan. Earlier
// file scans observe it and stop.
func (s *ScanState) MarkFileScanStarted(t time.Time) {
	s.latestFileScan.Store(t.UnixNano())
}

// LatestFileScanTime returns the start of the latest file scan, or the zero time.
func (s *ScanState) LatestFileScanTime() time.Time {
	ns := s.latestFileScan.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Cancellation is the view of ScanState bound to one scan.
type Cancellation struct {
	state     *ScanState
	scope     Scope
	startTime time.Time
}

// ForScan binds the state to a scan of scope that started at startTime.
func (s *ScanState) ForScan(scope Scope, startTime time.Time) Cancellation {
	return Cancellation{state: s, scope: scope, startTime: startTime}
}

// IsCancelled reports whether the bound scan must stop. known is false for an
// unsupported scope, which is never cancelled.
func (c Cancellation) IsCancelled() (cancelled bool, known bool) {
	if c.state == nil {
		return false, true
	}
	switch c.scope {
	case ScopeProject:
		return c.state.IsCancelling(), true
	case ScopeFile:
		if !c.state.FileScansEnabled() {
			return true, true
		}
		return c.state.LatestFileScanTime().After(c.startTime), true
	default:
		return false, false
	}
}
