package enums

import "fmt"

// TransferStatus maps to the transfer_status enum in Postgres.
//
// Completed is written eagerly at creation time; Pending exists so an approval
// workflow can be layered on without a schema change, and the transition table
// below already constrains it.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusRejected  TransferStatus = "rejected"
)

var validTransferStatuses = []TransferStatus{
	TransferStatusPending,
	TransferStatusCompleted,
	TransferStatusRejected,
}

var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferStatusPending:   {TransferStatusCompleted, TransferStatusRejected},
	TransferStatusCompleted: {},
	TransferStatusRejected:  {},
}

// IsValid reports whether the value matches the canonical transfer status enum.
func (s TransferStatus) IsValid() bool {
	for _, candidate := range validTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether status s may move to next.
func (s TransferStatus) CanTransition(next TransferStatus) bool {
	for _, candidate := range transferTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

// ParseTransferStatus converts raw input into TransferStatus.
func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range validTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}
