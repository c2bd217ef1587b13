package domain

// IntentKind classifies the purpose of a user utterance.
type IntentKind string

const (
	IntentGreeting           IntentKind = "greeting"
	IntentQuestion           IntentKind = "question"
	IntentComplaint          IntentKind = "complaint"
	IntentRequest            IntentKind = "request"
	IntentInformationSeeking IntentKind = "information_seeking"
	IntentFollowUp           IntentKind = "follow_up"
	IntentGratitude          IntentKind = "gratitude"
	IntentFarewell           IntentKind = "farewell"
	IntentUrgent             IntentKind = "urgent"
	IntentClarification      IntentKind = "clarification"
)

// Entity keys produced by the analyzer.
const (
	EntityOperationID   = "operation_id"
	EntityInvoiceID     = "invoice_id"
	EntityAmount        = "amount"
	EntityCurrency      = "currency"
	EntityDateMentioned = "date_mentioned"
	EntityTimeMentioned = "time_mentioned"
)

// MessageIntent is the analyzed form of a single user message. It is built
// once per turn and never mutated afterwards.
type MessageIntent struct {
	Kind                    IntentKind
	Entities                map[string]string
	Confidence              float64
	UrgencyLevel            int
	RequiresHumanEscalation bool
}

// HasEntities reports whether any entity was extracted from the message.
func (m MessageIntent) HasEntities() bool {
	return len(m.Entities) > 0
}
