package analysis

import (
	"encoding/json"
	"fmt"
	"time"

	"statflow/domain/core"
)

// Type identifies one of the supported analysis kinds
type Type string

const (
	TypeDescriptive Type = "descriptive"
	TypeReliability Type = "reliability"
	TypeEFA         Type = "efa"
	TypeCFA         Type = "cfa"
	TypeCorrelation Type = "correlation"
	TypeTTest       Type = "ttest"
	TypeANOVA       Type = "anova"
	TypeRegression  Type = "regression"
	TypeSEM         Type = "sem"
)

// KnownTypes lists every supported analysis type in display order
var KnownTypes = []Type{
	TypeDescriptive,
	TypeReliability,
	TypeEFA,
	TypeCFA,
	TypeCorrelation,
	TypeTTest,
	TypeANOVA,
	TypeRegression,
	TypeSEM,
}

// IsValid reports whether t is one of the known analysis types
func (t Type) IsValid() bool {
	for _, k := range KnownTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Failure is the error arm of a Result
type Failure struct {
	Message string `json:"message"`
}

// Result is the outcome of one analysis type within a job. It is a tagged
// union: exactly one of the success payload or the failure is set, enforced
// by the constructors.
type Result struct {
	analysisType Type
	payload      json.RawMessage
	failure      *Failure
	execTime     time.Duration
	executedAt   time.Time
}

// NewSuccess builds a success result carrying a structured payload
func NewSuccess(t Type, payload json.RawMessage, execTime time.Duration, at time.Time) Result {
	return Result{
		analysisType: t,
		payload:      payload,
		execTime:     execTime,
		executedAt:   at,
	}
}

// NewFailure builds an error result
func NewFailure(t Type, message string, execTime time.Duration, at time.Time) Result {
	return Result{
		analysisType: t,
		failure:      &Failure{Message: message},
		execTime:     execTime,
		executedAt:   at,
	}
}

// AnalysisType returns which analysis produced this result
func (r Result) AnalysisType() Type { return r.analysisType }

// IsError reports whether this result is the failure arm
func (r Result) IsError() bool { return r.failure != nil }

// Payload returns the success payload; nil for error results
func (r Result) Payload() json.RawMessage { return r.payload }

// Failure returns the error arm; nil for success results
func (r Result) Failure() *Failure { return r.failure }

// ExecutionTime returns the wall-clock duration of the attempt
func (r Result) ExecutionTime() time.Duration { return r.execTime }

// ExecutedAt returns when the attempt finished
func (r Result) ExecutedAt() time.Time { return r.executedAt }

// resultJSON is the wire/persistence shape of a Result
type resultJSON struct {
	AnalysisType    Type            `json:"analysis_type"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *failureJSON    `json:"error,omitempty"`
	ExecutionTimeMs int64           `json:"execution_time_ms"`
	ExecutedAt      time.Time       `json:"executed_at"`
}

type failureJSON struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// MarshalJSON emits either the result or the error arm, never both
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		AnalysisType:    r.analysisType,
		ExecutionTimeMs: r.execTime.Milliseconds(),
		ExecutedAt:      r.executedAt,
	}
	if r.failure != nil {
		out.Error = &failureJSON{Error: true, Message: r.failure.Message}
	} else {
		out.Result = r.payload
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores a Result from its wire shape
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Error != nil && in.Result != nil {
		return fmt.Errorf("analysis result for %s has both result and error arms", in.AnalysisType)
	}
	r.analysisType = in.AnalysisType
	r.execTime = time.Duration(in.ExecutionTimeMs) * time.Millisecond
	r.executedAt = in.ExecutedAt
	if in.Error != nil {
		r.failure = &Failure{Message: in.Error.Message}
		r.payload = nil
	} else {
		r.failure = nil
		r.payload = in.Result
	}
	return nil
}

// Record pairs a persisted result with its owning project
type Record struct {
	ProjectID core.ProjectID `json:"project_id"`
	Result    Result         `json:"result"`
}
