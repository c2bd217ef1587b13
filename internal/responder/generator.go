// Package responder builds dialogue responses from analyzed intents. Every
// builder is a pure function of the intent, the conversation context and
// the raw message; the only nondeterminism is the template picker, which
// is injectable so tests can pin it.
package responder

import (
	"fmt"
	"math/rand"
	"strings"

	"dialogue-agent/internal/domain"
)

// PickFunc selects an index in [0, n). It must be safe for concurrent use.
type PickFunc func(n int) int

// Generator synthesizes a DialogueResponse per turn.
type Generator struct {
	pick PickFunc
}

// NewGenerator creates a Generator. A nil picker falls back to math/rand.
func NewGenerator(pick PickFunc) *Generator {
	if pick == nil {
		pick = rand.Intn
	}
	return &Generator{pick: pick}
}

// Generate dispatches on the intent kind to the matching builder.
func (g *Generator) Generate(intent domain.MessageIntent, convCtx *domain.ConversationContext, rawText string) domain.DialogueResponse {
	lower := strings.ToLower(rawText)

	switch intent.Kind {
	case domain.IntentGreeting:
		return g.greeting(intent, convCtx)
	case domain.IntentQuestion:
		return g.question(intent, convCtx, lower)
	case domain.IntentRequest:
		return g.request(intent, lower)
	case domain.IntentComplaint:
		return g.complaint(convCtx)
	case domain.IntentGratitude:
		return g.gratitude(intent)
	case domain.IntentFarewell:
		return g.farewell(intent, convCtx)
	case domain.IntentFollowUp:
		return g.followUp(intent, convCtx)
	case domain.IntentUrgent:
		return g.urgent()
	case domain.IntentClarification:
		return g.clarification(intent)
	default:
		return g.informationSeeking(intent)
	}
}

// greeting picks the most informative branch available: account activity
// first, overdue invoices second, generic welcome last.
func (g *Generator) greeting(intent domain.MessageIntent, convCtx *domain.ConversationContext) domain.DialogueResponse {
	name := salutationName(convCtx)

	var message string
	topic := domain.TopicGreeting
	switch {
	case convCtx.HasActiveOperations && convCtx.PendingInvoiceCount > 0:
		message = fmt.Sprintf(welcomeOpsAndInvoices, name, convCtx.PendingInvoiceCount)
		topic = domain.TopicOperations
	case convCtx.HasActiveOperations:
		message = fmt.Sprintf(welcomeActiveOps, name)
		topic = domain.TopicOperations
	case convCtx.OverdueInvoiceCount > 0:
		message = fmt.Sprintf(welcomeOverdue, name, convCtx.OverdueInvoiceCount)
		topic = domain.TopicInvoices
	default:
		message = fmt.Sprintf(genericWelcome, name)
	}

	var actions []string
	if convCtx.HasActiveOperations {
		actions = append(actions, actionViewOperations)
	}
	if convCtx.PendingInvoiceCount > 0 {
		actions = append(actions, actionReviewInvoices)
	}
	actions = append(actions, actionRequestQuote)

	return domain.DialogueResponse{
		Message:          message,
		Topic:            topic,
		Confidence:       intent.Confidence,
		SuggestedActions: actions,
		RequiresFollowUp: convCtx.HasActiveOperations || convCtx.PendingInvoiceCount > 0,
	}
}

func (g *Generator) question(intent domain.MessageIntent, convCtx *domain.ConversationContext, lower string) domain.DialogueResponse {
	if opID, ok := intent.Entities[domain.EntityOperationID]; ok {
		return domain.DialogueResponse{
			Message:          fmt.Sprintf(operationGuidance, opID),
			Topic:            domain.TopicTracking,
			Confidence:       intent.Confidence,
			SuggestedActions: []string{actionOperationDetail},
			ContextUpdates:   map[string]string{domain.UpdateMentionedOperation: opID},
		}
	}

	asksWhen := strings.Contains(lower, "cuándo") || strings.Contains(lower, "cuando")
	if asksWhen && (strings.Contains(lower, "llega") || strings.Contains(lower, "entrega")) {
		message := deliveryGeneric
		if convCtx.HasActiveOperations {
			message = fmt.Sprintf(deliveryPersonal, convCtx.AverageDeliveryDays)
		}
		return domain.DialogueResponse{
			Message:    message,
			Topic:      domain.TopicTracking,
			Confidence: intent.Confidence,
		}
	}

	if containsAny(lower, "costo", "precio", "cuánto", "cuanto") {
		return domain.DialogueResponse{
			Message:          pricingGuidance,
			Topic:            domain.TopicQuotes,
			Confidence:       intent.Confidence,
			SuggestedActions: []string{actionRequestQuote},
			RequiresFollowUp: true,
		}
	}

	if containsAny(lower, "documento", "papel", "certificado") {
		return domain.DialogueResponse{
			Message:    documentGuidance,
			Topic:      domain.TopicOperations,
			Confidence: intent.Confidence,
		}
	}

	return domain.DialogueResponse{
		Message:          g.pickFrom(clarifyingPrompts),
		Topic:            domain.TopicUnknown,
		Confidence:       0.6,
		RequiresFollowUp: true,
	}
}

func (g *Generator) request(intent domain.MessageIntent, lower string) domain.DialogueResponse {
	if containsAny(lower, "cotización", "cotizacion", "cotizar") {
		return domain.DialogueResponse{
			Message:          quoteGuidance,
			Topic:            domain.TopicQuotes,
			Confidence:       intent.Confidence,
			RequiresFollowUp: true,
		}
	}

	if strings.Contains(lower, "cancelar") {
		return domain.DialogueResponse{
			Message:          cancelGuidance,
			Topic:            domain.TopicContactInfo,
			Confidence:       intent.Confidence,
			SuggestedActions: []string{actionTalkToAgent},
			RequiresFollowUp: true,
		}
	}

	return domain.DialogueResponse{
		Message:          requestSpecifics,
		Topic:            domain.TopicUnknown,
		Confidence:       intent.Confidence,
		RequiresFollowUp: true,
	}
}

func (g *Generator) complaint(convCtx *domain.ConversationContext) domain.DialogueResponse {
	return domain.DialogueResponse{
		Message:          fmt.Sprintf(complaintReply, salutationName(convCtx)),
		Topic:            domain.TopicTechnicalSupport,
		Confidence:       0.9,
		SuggestedActions: []string{actionTalkToAgent},
		RequiresFollowUp: true,
		ContextUpdates: map[string]string{
			domain.UpdateEscalated:           "true",
			domain.UpdateComplaintRegistered: "true",
		},
	}
}

func (g *Generator) gratitude(intent domain.MessageIntent) domain.DialogueResponse {
	return domain.DialogueResponse{
		Message:    g.pickFrom(gratitudeReplies),
		Topic:      domain.TopicGreeting,
		Confidence: intent.Confidence,
	}
}

func (g *Generator) farewell(intent domain.MessageIntent, convCtx *domain.ConversationContext) domain.DialogueResponse {
	template := farewellPlain
	if convCtx.HasActiveOperations {
		template = farewellWithOps
	}
	return domain.DialogueResponse{
		Message:    fmt.Sprintf(template, salutationName(convCtx)),
		Topic:      domain.TopicGreeting,
		Confidence: intent.Confidence,
	}
}

func (g *Generator) followUp(intent domain.MessageIntent, convCtx *domain.ConversationContext) domain.DialogueResponse {
	if convCtx.LastTopic == domain.TopicOperations {
		return domain.DialogueResponse{
			Message:          followUpOperations,
			Topic:            domain.TopicOperations,
			Confidence:       intent.Confidence,
			SuggestedActions: []string{actionViewOperations},
			RequiresFollowUp: true,
		}
	}
	return domain.DialogueResponse{
		Message:          followUpGeneric,
		Topic:            domain.TopicUnknown,
		Confidence:       intent.Confidence,
		RequiresFollowUp: true,
	}
}

func (g *Generator) urgent() domain.DialogueResponse {
	return domain.DialogueResponse{
		Message:          urgentReply,
		Topic:            domain.TopicContactInfo,
		Confidence:       0.95,
		SuggestedActions: []string{actionTalkToAgent},
		RequiresFollowUp: true,
		ContextUpdates: map[string]string{
			domain.UpdateUrgentCase: "true",
			domain.UpdateEscalated:  "true",
		},
	}
}

func (g *Generator) clarification(intent domain.MessageIntent) domain.DialogueResponse {
	return domain.DialogueResponse{
		Message:          clarificationMenu,
		Topic:            domain.TopicUnknown,
		Confidence:       intent.Confidence,
		RequiresFollowUp: true,
	}
}

func (g *Generator) informationSeeking(intent domain.MessageIntent) domain.DialogueResponse {
	return domain.DialogueResponse{
		Message:          capabilitiesReply,
		Topic:            domain.TopicUnknown,
		Confidence:       intent.Confidence,
		SuggestedActions: []string{actionViewOperations, actionRequestQuote},
		RequiresFollowUp: true,
	}
}

func (g *Generator) pickFrom(set []string) string {
	idx := g.pick(len(set))
	if idx < 0 || idx >= len(set) {
		idx = 0
	}
	return set[idx]
}

func salutationName(convCtx *domain.ConversationContext) string {
	if convCtx == nil || strings.TrimSpace(convCtx.ClientName) == "" {
		return ""
	}
	return " " + strings.TrimSpace(convCtx.ClientName)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
