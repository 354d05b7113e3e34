package credential

import "time"

// ConfigState tracks whether a credential is stored.
type ConfigState string

// Config states.
const (
	ConfigUnset  ConfigState = "unset"
	ConfigSaving ConfigState = "saving"
	ConfigSaved  ConfigState = "saved"
)

// TestState tracks the last connectivity test.
type TestState string

// Test states.
const (
	TestUntested TestState = "untested"
	TestTesting  TestState = "testing"
	TestSuccess  TestState = "success"
	TestFailure  TestState = "failure"
)

// IsTerminal reports whether the test finished.
func (s TestState) IsTerminal() bool {
	return s == TestSuccess || s == TestFailure
}

// TestResult is the outcome of one connectivity test.
type TestResult struct {
	State    TestState
	Message  string
	TestedAt time.Time
}

// Succeeded builds a successful result.
func Succeeded(message string, at time.Time) TestResult {
	return TestResult{State: TestSuccess, Message: message, TestedAt: at}
}

// Failed builds a failed result.
func Failed(message string, at time.Time) TestResult {
	return TestResult{State: TestFailure, Message: message, TestedAt: at}
}

// Stored is a persisted credential together with its last test result.
type Stored struct {
	Credential Credential
	LastTest   TestResult
	UpdatedAt  time.Time
}

// Status is the masked, displayable projection of both state machines.
type Status struct {
	Config              ConfigState
	Test                TestState
	Message             string
	TestedAt            time.Time
	MaskedSecretKey     string
	MaskedWebhookSecret string
	UpdatedAt           time.Time
}

// UnsetStatus is the status when nothing is stored.
func UnsetStatus() Status {
	return Status{Config: ConfigUnset, Test: TestUntested}
}

// StatusOf projects a stored credential.
func StatusOf(s Stored) Status {
	test := s.LastTest.State
	if test == "" {
		test = TestUntested
	}
	return Status{
		Config:              ConfigSaved,
		Test:                test,
		Message:             s.LastTest.Message,
		TestedAt:            s.LastTest.TestedAt,
		MaskedSecretKey:     Mask(s.Credential.SecretKey()),
		MaskedWebhookSecret: Mask(s.Credential.WebhookSecret()),
		UpdatedAt:           s.UpdatedAt,
	}
}

// ProbeResult is the raw outcome of a provider connectivity check.
// A rejected key is a result, not an error.
type ProbeResult struct {
	OK         bool
	StatusCode int // 0 when the request never got a response
	Message    string
}

// Result turns a probe into a test result stamped at.
func (p ProbeResult) Result(at time.Time) TestResult {
	if p.OK {
		return Succeeded(p.Message, at)
	}
	return Failed(p.Message, at)
}
