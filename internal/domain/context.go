package domain

// AccountSnapshot holds the account facts the embedding application loads
// once when a session starts. The engine never refreshes them.
type AccountSnapshot struct {
	ClientName          string
	HasActiveOperations bool
	PendingInvoiceCount int
	OverdueInvoiceCount int
	OperationsThisMonth int
	AverageDeliveryDays float64
}

// ConversationContext is the per-session record the orchestrator owns.
// All collection fields are append-only for the life of the session.
type ConversationContext struct {
	ClientID   string
	ClientName string

	HasActiveOperations bool
	PendingInvoiceCount int
	OverdueInvoiceCount int
	OperationsThisMonth int
	AverageDeliveryDays float64

	// LastTopic is the topic of the most recent completed turn. Empty until
	// the first turn finishes.
	LastTopic Topic

	ConversationFlow      []string
	MentionedOperationIDs []string
	OpenIssues            []string
}

// NewConversationContext seeds a context from an account snapshot.
func NewConversationContext(clientID string, snap AccountSnapshot) *ConversationContext {
	return &ConversationContext{
		ClientID:            clientID,
		ClientName:          snap.ClientName,
		HasActiveOperations: snap.HasActiveOperations,
		PendingInvoiceCount: snap.PendingInvoiceCount,
		OverdueInvoiceCount: snap.OverdueInvoiceCount,
		OperationsThisMonth: snap.OperationsThisMonth,
		AverageDeliveryDays: snap.AverageDeliveryDays,
	}
}

// AppendUtterance records one user message in the transcript.
func (c *ConversationContext) AppendUtterance(text string) {
	c.ConversationFlow = append(c.ConversationFlow, text)
}

// AddMentionedOperation records an operation ID, keeping the set deduplicated.
func (c *ConversationContext) AddMentionedOperation(id string) {
	if id == "" {
		return
	}
	for _, existing := range c.MentionedOperationIDs {
		if existing == id {
			return
		}
	}
	c.MentionedOperationIDs = append(c.MentionedOperationIDs, id)
}

// AddOpenIssue appends a complaint event to the session record.
func (c *ConversationContext) AddOpenIssue(issue string) {
	c.OpenIssues = append(c.OpenIssues, issue)
}

// TurnCount is the number of user utterances recorded so far.
func (c *ConversationContext) TurnCount() int {
	return len(c.ConversationFlow)
}
