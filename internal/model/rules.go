package model

import "strings"

// RecurrenceRule is the closed set of cadences a scheduled row can carry.
// Source rows store the rule as free text; parsing happens once at the store
// boundary so the forecast core can switch exhaustively.
type RecurrenceRule int

const (
	RuleOneOff RecurrenceRule = iota
	RuleWeekly
	RuleBiweekly
	RuleMonthly
	RuleAnnual
)

// ParseRecurrenceRule maps a stored rule string onto the enum. Unknown or
// empty strings degrade to one-off; ok reports whether the input was a
// recognized spelling so callers can surface a data-quality warning.
func ParseRecurrenceRule(s string) (rule RecurrenceRule, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ONE_OFF", "NONE":
		return RuleOneOff, true
	case "WEEKLY":
		return RuleWeekly, true
	case "BIWEEKLY":
		return RuleBiweekly, true
	case "MONTHLY", "MONTHLY_BY_DATE":
		return RuleMonthly, true
	case "ANNUAL", "YEARLY":
		return RuleAnnual, true
	default:
		return RuleOneOff, false
	}
}

func (r RecurrenceRule) String() string {
	switch r {
	case RuleWeekly:
		return "WEEKLY"
	case RuleBiweekly:
		return "BIWEEKLY"
	case RuleMonthly:
		return "MONTHLY"
	case RuleAnnual:
		return "ANNUAL"
	default:
		return "ONE_OFF"
	}
}

// ShiftPolicy controls how a scheduled date moves off weekends.
type ShiftPolicy int

const (
	AsScheduled ShiftPolicy = iota
	PrevBusinessDay
	NextBusinessDay
)

// ParseShiftPolicy maps a stored policy string onto the enum. Unknown or
// empty strings degrade to as-scheduled; ok reports whether the input was
// recognized.
func ParseShiftPolicy(s string) (policy ShiftPolicy, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "AS_SCHEDULED":
		return AsScheduled, true
	case "PREV_BUSINESS_DAY":
		return PrevBusinessDay, true
	case "NEXT_BUSINESS_DAY":
		return NextBusinessDay, true
	default:
		return AsScheduled, false
	}
}

func (p ShiftPolicy) String() string {
	switch p {
	case PrevBusinessDay:
		return "PREV_BUSINESS_DAY"
	case NextBusinessDay:
		return "NEXT_BUSINESS_DAY"
	default:
		return "AS_SCHEDULED"
	}
}
