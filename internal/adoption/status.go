package adoption

import "strings"

// MarkerStatus is the status token an assistant hook writes for a session.
type MarkerStatus uint8

const (
	MarkerUnknown MarkerStatus = iota
	MarkerWorking
	MarkerActive
	MarkerIdle
	MarkerWaiting
)

// ParseMarkerStatus never fails; unrecognised tokens map to MarkerUnknown.
func ParseMarkerStatus(s string) MarkerStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "working":
		return MarkerWorking
	case "active":
		return MarkerActive
	case "idle":
		return MarkerIdle
	case "waiting":
		return MarkerWaiting
	}
	return MarkerUnknown
}

func (m MarkerStatus) String() string {
	switch m {
	case MarkerWorking:
		return "working"
	case MarkerActive:
		return "active"
	case MarkerIdle:
		return "idle"
	case MarkerWaiting:
		return "waiting"
	}
	return "unknown"
}

// Alive reports whether a session in this state may still have a process.
func (m MarkerStatus) Alive() bool {
	return m == MarkerWorking || m == MarkerActive || m == MarkerIdle
}
