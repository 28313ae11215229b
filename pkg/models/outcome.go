package models

// FailureAction determines what the engine does with a Fail outcome.
type FailureAction string

const (
	FailureActionStop     FailureAction = "Stop"
	FailureActionContinue FailureAction = "Continue"
	FailureActionRetry    FailureAction = "Retry"
)

// Outcome is the sum type returned by every node handler's Execute. Exactly
// one of the accessor methods below applies to a given Outcome; the engine
// switches on Variant rather than doing dynamic interface assertions in its
// hot loop, per the REDESIGN FLAG in spec §9.
type Outcome struct {
	Variant OutcomeVariant

	// Continue / Branch
	Event map[string]any

	// Branch only
	BranchResult bool

	// Suspend only
	SuspendReason SuspendReason
	ResumeAt      *int64 // unix millis fire_at, for Delay/HIL-timeout
	ResumeToken   *ResumeToken

	// Fail only
	FailKind ErrorKind
	FailMsg  string
}

// OutcomeVariant discriminates the Outcome tagged union.
type OutcomeVariant string

const (
	OutcomeContinue OutcomeVariant = "Continue"
	OutcomeBranch   OutcomeVariant = "Branch"
	OutcomeSuspend  OutcomeVariant = "Suspend"
	OutcomeFail     OutcomeVariant = "Fail"
	OutcomeSkip     OutcomeVariant = "Skip"
)

// SuspendReason further discriminates a Suspend outcome.
type SuspendReason string

const (
	SuspendReasonDelay SuspendReason = "Delay"
	SuspendReasonHil   SuspendReason = "Hil"
)

// ContinueOutcome builds a Continue(output_event) outcome.
func ContinueOutcome(event map[string]any) Outcome {
	return Outcome{Variant: OutcomeContinue, Event: event}
}

// BranchOutcome builds a Branch(true|false, output_event) outcome.
func BranchOutcome(result bool, event map[string]any) Outcome {
	return Outcome{Variant: OutcomeBranch, BranchResult: result, Event: event}
}

// SuspendOutcome builds a Suspend(reason, resume_at_or_token) outcome.
func SuspendOutcome(reason SuspendReason, resumeAt *int64, token *ResumeToken) Outcome {
	return Outcome{Variant: OutcomeSuspend, SuspendReason: reason, ResumeAt: resumeAt, ResumeToken: token}
}

// FailOutcome builds a Fail(kind, message) outcome.
func FailOutcome(kind ErrorKind, msg string) Outcome {
	return Outcome{Variant: OutcomeFail, FailKind: kind, FailMsg: msg}
}

// SkipOutcome builds a Skip outcome.
func SkipOutcome() Outcome {
	return Outcome{Variant: OutcomeSkip}
}
