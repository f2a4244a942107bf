package enums

import "fmt"

// MutationAction is the kind of local write a device submits for sync.
type MutationAction string

const (
	MutationActionCreate MutationAction = "CREATE"
	MutationActionUpdate MutationAction = "UPDATE"
	MutationActionDelete MutationAction = "DELETE"
)

var validMutationActions = []MutationAction{
	MutationActionCreate,
	MutationActionUpdate,
	MutationActionDelete,
}

// IsValid reports whether the value matches a known mutation action.
func (a MutationAction) IsValid() bool {
	for _, candidate := range validMutationActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseMutationAction converts raw input into MutationAction.
func ParseMutationAction(value string) (MutationAction, error) {
	for _, candidate := range validMutationActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid mutation action %q", value)
}
