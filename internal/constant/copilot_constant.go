package constant

const (
	DefaultSessionTitle = "New Session"

	// Title layout used when a session is created from the history screen.
	SessionTitleTimeLayout = "Jan 2, 2006 3:04 PM"

	QuickActionAddNote          = "Add Note"
	QuickActionPrepMeeting      = "Prep Meeting"
	QuickActionTopCustomers     = "Top Customers"
	QuickActionCreateTouchpoint = "Create Touchpoint"
)

// DefaultQuickActions returns a fresh copy of the fixed quick-action labels.
func DefaultQuickActions() []string {
	return []string{
		QuickActionAddNote,
		QuickActionPrepMeeting,
		QuickActionTopCustomers,
		QuickActionCreateTouchpoint,
	}
}

// Pipeline progress annotations
const (
	ProgressParsingInput       = "Parsing input..."
	ProgressCreatingTouchpoint = "Creating touchpoint..."
	ProgressFetchingCustomer   = "Fetching customer data..."
	ProgressProcessingRequest  = "Processing request..."
	ProgressConfirming         = "Confirming..."
)

// Mock assistant responses
const (
	ResponseCustomerNoteAdded = "Note added for Customer XYZ: They liked the new shingle promotion and will order next week. Touchpoint created and saved to session."

	ResponseCustomerMeetingPrep = "Meeting prep for Customer XYZ:\n" +
		"- Recent orders: 3 units of shingles last month\n" +
		"- Prior touchpoints: Discussed promotions in previous visit\n" +
		"- Key notes: Interested in bulk discounts, positive feedback on quality\n" +
		"- Promotions: 15% off next order, free installation consultation\n" +
		"- Outstanding items: Follow up on quote for siding upgrade"

	ResponseTouchpointCreated = "Touchpoint created successfully. Note transcribed and saved."

	ResponseMeetingPrepSummary = "Meeting preparation summary:\n" +
		"- Customer history and recent interactions\n" +
		"- Key stats and opportunities\n" +
		"- Relevant promotions and notes"

	ResponseTopCustomers = "Top 3 customers this month:\n" +
		"1. ABC Corp - $45,000 in sales\n" +
		"2. XYZ Ltd - $38,000 in sales\n" +
		"3. DEF Inc - $32,000 in sales"

	ResponseTouchpointConfirmed = "Touchpoint created. Parsed input and confirmed creation."

	ResponseNoteAdded = "Note added successfully. Touchpoint created for the customer."

	ResponseMeetingPrepShort = "Meeting preparation summary:\n" +
		"- Customer history\n" +
		"- Key stats\n" +
		"- Relevant promotions"

	ResponseHelp = "I'm your sales co-pilot. Try saying 'add a note for Customer XYZ' or 'what should I know about Customer ABC before the meeting?'"
)
