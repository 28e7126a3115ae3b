package onboarding

import (
	"time"
)

// Signal is a single fraud indicator contributing to a risk score
type Signal string

const (
	SignalDisposableEmail      Signal = "disposable_email_domain"
	SignalProxyNetwork         Signal = "proxy_or_vpn"
	SignalKnownBadDevice       Signal = "known_bad_device"
	SignalSignupVelocity       Signal = "signup_velocity"
	SignalBillingNameMismatch  Signal = "billing_identity_mismatch"
)

// signalWeights are the additive contributions of each signal. The weights
// and thresholds are business policy, not derived constants; they are
// overridable through RiskPolicy.
var defaultSignalWeights = map[Signal]int{
	SignalDisposableEmail:     25,
	SignalProxyNetwork:        20,
	SignalKnownBadDevice:      40,
	SignalSignupVelocity:      15,
	SignalBillingNameMismatch: 30,
}

// RiskPolicy holds the tunable scoring constants
type RiskPolicy struct {
	Weights             map[Signal]int
	ElevatedThreshold   int // scores above this get closer monitoring
	ManualReviewScore   int // scores above this force manual review
}

// DefaultRiskPolicy returns the platform's default scoring policy
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		Weights:           defaultSignalWeights,
		ElevatedThreshold: 30,
		ManualReviewScore: 70,
	}
}

// SignalSet is the observed fraud indicators for one scoring pass
type SignalSet struct {
	DisposableEmailDomain   bool
	ProxyOrVPN              bool
	KnownBadDevice          bool
	SignupVelocityExceeded  bool
	BillingIdentityMismatch bool
}

// signals returns the active indicators in declaration order
func (s SignalSet) signals() []Signal {
	var active []Signal
	if s.DisposableEmailDomain {
		active = append(active, SignalDisposableEmail)
	}
	if s.ProxyOrVPN {
		active = append(active, SignalProxyNetwork)
	}
	if s.KnownBadDevice {
		active = append(active, SignalKnownBadDevice)
	}
	if s.SignupVelocityExceeded {
		active = append(active, SignalSignupVelocity)
	}
	if s.BillingIdentityMismatch {
		active = append(active, SignalBillingNameMismatch)
	}
	return active
}

// RiskAssessment is a fraud-likelihood snapshot. Computed at signup and
// recomputed on payment submission.
type RiskAssessment struct {
	Score        int       `json:"score"`
	Contributors []Signal  `json:"contributors"`
	ComputedAt   time.Time `json:"computed_at"`
}

// RequiresManualReview reports whether the score crosses the policy threshold
func (r RiskAssessment) RequiresManualReview(policy RiskPolicy) bool {
	return r.Score > policy.ManualReviewScore
}

// ScoreSignals computes a 0-100 fraud-likelihood score from the signal set.
// Pure function: same inputs always produce the same score, and adding any
// positive-weight signal never decreases it.
func ScoreSignals(set SignalSet, policy RiskPolicy) RiskAssessment {
	weights := policy.Weights
	if weights == nil {
		weights = defaultSignalWeights
	}

	score := 0
	contributors := set.signals()
	for _, sig := range contributors {
		score += weights[sig]
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return RiskAssessment{
		Score:        score,
		Contributors: contributors,
		ComputedAt:   time.Now(),
	}
}
