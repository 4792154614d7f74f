package shared

import "fmt"

// shared error taxonomy across the application
// 1st: ValidationError for bad caller input (filters, pagination, passwords)
// 2nd: AuthenticationError for missing/invalid/expired credentials
// 3rd: SyncError for reconciliation phase failures against the store or source

// ValidationError carries structured detail back to the caller, e.g. every
// invalid filter value grouped by filter kind.
type ValidationError struct {
	Message string
	Details map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details map[string][]string) *ValidationError {
	if details == nil {
		details = map[string][]string{}
	}
	return &ValidationError{Message: message, Details: details}
}

// AuthenticationError is surfaced as a rejection and never retried.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

// SyncError names the reconciliation phase (table) that failed. The wrapped
// cause stays available for logs; callers only see the phase.
type SyncError struct {
	Phase string
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("failed to sync %s: %v", e.Phase, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(phase string, err error) *SyncError {
	return &SyncError{Phase: phase, Err: err}
}
