package assemble

// InvariantViolationError reports a post-assignment consistency check
// that failed (§7 InvariantViolation): a bug in assignment or depth
// control, not a condition a caller can recover from.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return "assemble: invariant violation: " + e.Reason
}
