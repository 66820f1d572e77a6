package common

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is the reason attached to missions stopped by their context.
	ErrCancelled = errors.New("mission cancelled")
	// ErrMissionInProgress rejects a mission while another one runs on the same orchestrator.
	ErrMissionInProgress = errors.New("mission already in progress")
	ErrTaskNotFound      = errors.New("task not found")
)

// Mission phase names used in MissionExecutionError.
const (
	PhasePlanning  = "planning"
	PhaseExecution = "execution"
	PhaseSynthesis = "synthesis"
	PhaseMindMap   = "mind_map"
)

type MissionPlanningError struct {
	Reason string
	Err    error
}

func (e *MissionPlanningError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mission planning failed: %s: %v", e.Reason, e.Err)
	}
	return "mission planning failed: " + e.Reason
}

func (e *MissionPlanningError) Unwrap() error { return e.Err }

// MissionExecutionError is the single error a failed mission surfaces to its caller.
type MissionExecutionError struct {
	Phase string
	Err   error
}

func (e *MissionExecutionError) Error() string {
	return fmt.Sprintf("mission failed in %s phase: %v", e.Phase, e.Err)
}

func (e *MissionExecutionError) Unwrap() error { return e.Err }

type SynthesisError struct {
	Reason string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", e.Reason, e.Err)
	}
	return "synthesis failed: " + e.Reason
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// LoadFormatError reports a project file that cannot replace the current graph.
type LoadFormatError struct {
	Reason string
	Err    error
}

func (e *LoadFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid project file: %s: %v", e.Reason, e.Err)
	}
	return "invalid project file: " + e.Reason
}

func (e *LoadFormatError) Unwrap() error { return e.Err }

type ValidationKind string

const (
	DanglingConnection  ValidationKind = "danglingConnection"
	UnknownNode         ValidationKind = "unknownNode"
	DuplicateNode       ValidationKind = "duplicateNode"
	DuplicateConnection ValidationKind = "duplicateConnection"
	InvalidField        ValidationKind = "invalidField"
)

type ValidationError struct {
	Kind ValidationKind
	ID   string
	Err  error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation failed (%s): %s", e.Kind, e.ID)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidationKind reports whether err wraps a ValidationError of the given kind.
func IsValidationKind(err error, kind ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}
