package enums

import "fmt"

// ConflictType classifies why a mutation was rejected as a conflict.
type ConflictType string

const (
	ConflictTypeVersionMismatch ConflictType = "VERSION_MISMATCH"
)

// IsValid reports whether the value matches a known conflict type.
func (t ConflictType) IsValid() bool {
	return t == ConflictTypeVersionMismatch
}

// ConflictResolution is the policy recorded on a conflict record. The
// automatic path only ever writes SERVER_WINS; the other values exist for a
// later administrative override workflow.
type ConflictResolution string

const (
	ConflictResolutionServerWins  ConflictResolution = "SERVER_WINS"
	ConflictResolutionClientWins  ConflictResolution = "CLIENT_WINS"
	ConflictResolutionManualMerge ConflictResolution = "MANUAL_MERGE"
)

var validConflictResolutions = []ConflictResolution{
	ConflictResolutionServerWins,
	ConflictResolutionClientWins,
	ConflictResolutionManualMerge,
}

// IsValid reports whether the value matches a known resolution policy.
func (r ConflictResolution) IsValid() bool {
	for _, candidate := range validConflictResolutions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseConflictResolution converts raw input into ConflictResolution.
func ParseConflictResolution(value string) (ConflictResolution, error) {
	for _, candidate := range validConflictResolutions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid conflict resolution %q", value)
}
