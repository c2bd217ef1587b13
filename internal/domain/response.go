package domain

// Topic is the subject-matter category assigned to a generated response.
// It drives follow-up continuity across turns.
type Topic string

const (
	TopicGreeting         Topic = "greeting"
	TopicOperations       Topic = "operations"
	TopicTracking         Topic = "tracking"
	TopicInvoices         Topic = "invoices"
	TopicQuotes           Topic = "quotes"
	TopicTechnicalSupport Topic = "technical_support"
	TopicContactInfo      Topic = "contact_info"
	TopicUnknown          Topic = "unknown"
)

// Context update keys the orchestrator knows how to apply.
const (
	UpdateEscalated           = "escalated"
	UpdateUrgentCase          = "urgent_case"
	UpdateComplaintRegistered = "complaint_registered"
	UpdateMentionedOperation  = "mentioned_operation"
)

// DialogueResponse is one generated reply plus the side effects the
// orchestrator should apply to the conversation context.
type DialogueResponse struct {
	Message          string
	Topic            Topic
	Confidence       float64
	SuggestedActions []string
	RequiresFollowUp bool
	ContextUpdates   map[string]string
}
