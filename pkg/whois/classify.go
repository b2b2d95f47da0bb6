package whois

import (
	"strings"

	"github.com/mallocator/free-domains/pkg/registry"
)

// Verdict is the evaluation of one attempt
type Verdict int

const (
	// Final means the response can be classified as free or registered
	Final Verdict = iota
	// ShortError is an error status with a truncated body
	ShortError
	// Throttled is a response carrying the registry's connection limit message
	Throttled
)

func (v Verdict) String() string {
	switch v {
	case Final:
		return "final"
	case ShortError:
		return "short_error"
	case Throttled:
		return "throttled"
	}
	return "unknown"
}

// Transient reports whether the attempt should be retried
func (v Verdict) Transient() bool {
	return v == ShortError || v == Throttled
}

// Outcome is the result of the whole retry sequence for one domain
type Outcome int

const (
	Free Outcome = iota + 1
	Registered
	GaveUp
)

func (o Outcome) String() string {
	switch o {
	case Free:
		return "free"
	case Registered:
		return "registered"
	case GaveUp:
		return "gave_up"
	}
	return "unknown"
}

// Classify evaluates one response. An error status only counts as transient
// together with a body shorter than minLength, since some registries report
// a valid "not found" answer with a nonzero exit code. The throttling message
// is transient whatever the status.
func Classify(resp Response, profile registry.Profile, minLength int) Verdict {
	if resp.Status >= StatusError && len(resp.Output) < minLength {
		return ShortError
	}
	if profile.ConnectionLimit != "" && strings.Contains(resp.Output, profile.ConnectionLimit) {
		return Throttled
	}
	return Final
}

// Evaluate classifies a final response body. The exit status is ignored.
func Evaluate(output string, profile registry.Profile) Outcome {
	if strings.Contains(output, profile.NotFound) {
		return Free
	}
	return Registered
}
