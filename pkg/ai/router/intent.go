package router

import (
	"strings"

	"sales-copilot-be/internal/constant"
)

// Intent is the outcome of rule-based classification of user input.
type Intent string

const (
	IntentCustomerNote        Intent = "customer_note"
	IntentCustomerMeetingPrep Intent = "customer_meeting_prep"
	IntentTouchpoint          Intent = "touchpoint"
	IntentMeetingPrep         Intent = "meeting_prep"
	IntentTopCustomers        Intent = "top_customers"
	IntentCreateTouchpoint    Intent = "create_touchpoint"
	IntentNote                Intent = "note"
	IntentMeeting             Intent = "meeting"
	IntentHelp                Intent = "help"
)

// rule matches when every group has at least one keyword present.
type rule struct {
	intent Intent
	allOf  [][]string
}

// ORDER MATTERS: first match wins, and the broad keyword rules near the end
// only apply once the specific combinations above them were ruled out.
var rules = []rule{
	{IntentCustomerNote, [][]string{{"add a note"}, {"customer xyz"}}},
	{IntentCustomerMeetingPrep, [][]string{{"what should i know"}, {"customer xyz"}}},
	{IntentTouchpoint, [][]string{{"add a note", "touchpoint", "met with"}}},
	{IntentMeetingPrep, [][]string{{"heading into a meeting", "meeting prep"}}},
	{IntentTopCustomers, [][]string{{"top 3 customers", "top customers"}}},
	{IntentCreateTouchpoint, [][]string{{"create touchpoint"}}},
	{IntentNote, [][]string{{"note", "add"}}},
	{IntentMeeting, [][]string{{"meeting", "prep"}}},
}

var responses = map[Intent]string{
	IntentCustomerNote:        constant.ResponseCustomerNoteAdded,
	IntentCustomerMeetingPrep: constant.ResponseCustomerMeetingPrep,
	IntentTouchpoint:          constant.ResponseTouchpointCreated,
	IntentMeetingPrep:         constant.ResponseMeetingPrepSummary,
	IntentTopCustomers:        constant.ResponseTopCustomers,
	IntentCreateTouchpoint:    constant.ResponseTouchpointConfirmed,
	IntentNote:                constant.ResponseNoteAdded,
	IntentMeeting:             constant.ResponseMeetingPrepShort,
	IntentHelp:                constant.ResponseHelp,
}

// Classify returns the first intent whose rule matches input, case-insensitively.
func Classify(input string) Intent {
	lower := strings.ToLower(input)
	for _, r := range rules {
		if r.matches(lower) {
			return r.intent
		}
	}
	return IntentHelp
}

func (r rule) matches(lower string) bool {
	for _, group := range r.allOf {
		if !containsAny(lower, group) {
			return false
		}
	}
	return true
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// ResponseFor returns the fixed reply text for an intent.
func ResponseFor(intent Intent) string {
	if text, ok := responses[intent]; ok {
		return text
	}
	return constant.ResponseHelp
}
