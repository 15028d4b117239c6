package keystore

import (
	"fmt"
	"time"
)

// Capability is a named permission granted to an API key.
type Capability string

const (
	// CapabilityBalance allows reading wallet balance information.
	CapabilityBalance Capability = "balance"
	// CapabilityReceive allows creating invoices.
	CapabilityReceive Capability = "receive"
	// CapabilitySend allows sending payments.
	CapabilitySend Capability = "send"
	// CapabilityAdmin allows managing API keys. Only the provisioning
	// path may grant it.
	CapabilityAdmin Capability = "admin"
)

// Capabilities lists every known capability.
var Capabilities = []Capability{
	CapabilityBalance,
	CapabilityReceive,
	CapabilitySend,
	CapabilityAdmin,
}

// ParseCapability converts a string into a known Capability.
func ParseCapability(s string) (Capability, error) {
	switch Capability(s) {
	case CapabilityBalance, CapabilityReceive, CapabilitySend, CapabilityAdmin:
		return Capability(s), nil
	}
	return "", fmt.Errorf("unknown capability: %q", s)
}

// Period is a recurring budget window.
type Period string

const (
	// PeriodDaily resets at midnight UTC.
	PeriodDaily Period = "daily"
	// PeriodWeekly resets at midnight UTC on Monday.
	PeriodWeekly Period = "weekly"
	// PeriodMonthly resets at midnight UTC on the 1st.
	PeriodMonthly Period = "monthly"
)

// ParsePeriod converts a string into a known Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown budget period: %q", s)
}

// Record is a stored API key. The key hash is immutable after
// creation; the only mutation a record ever sees is the active flag
// flipping to false on revocation.
type Record struct {
	ID            string
	KeyHash       string
	Name          string
	Capabilities  []Capability
	MaxAmountSats *int64
	BudgetSats    *int64
	BudgetPeriod  *Period
	Active        bool
	CreatedAt     time.Time
}

// Has reports whether the record's capability set contains c.
// Membership is exact: there is no capability hierarchy.
func (r *Record) Has(c Capability) bool {
	for _, got := range r.Capabilities {
		if got == c {
			return true
		}
	}
	return false
}

// HasBudget reports whether the record has a spending budget configured.
func (r *Record) HasBudget() bool {
	return r.BudgetSats != nil && r.BudgetPeriod != nil
}

// NewKey is the result of creating a key. Secret is the raw credential,
// shown exactly once and never persisted.
type NewKey struct {
	Record *Record
	Secret string
}
