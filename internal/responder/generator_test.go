package responder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"dialogue-agent/internal/domain"
)

// fixedPick always selects the given index, clamped by the generator.
func fixedPick(idx int) PickFunc {
	return func(int) int { return idx }
}

func intentOf(kind domain.IntentKind) domain.MessageIntent {
	return domain.MessageIntent{Kind: kind, Confidence: 0.8}
}

func contextWith(snap domain.AccountSnapshot) *domain.ConversationContext {
	return domain.NewConversationContext("client-1", snap)
}

func TestGenerate_GreetingBranches(t *testing.T) {
	g := NewGenerator(nil)

	cases := []struct {
		name      string
		snap      domain.AccountSnapshot
		wantTopic domain.Topic
		wantFrag  string
	}{
		{
			name:      "operations and pending invoices",
			snap:      domain.AccountSnapshot{ClientName: "Ana", HasActiveOperations: true, PendingInvoiceCount: 2},
			wantTopic: domain.TopicOperations,
			wantFrag:  "factura(s) pendiente(s)",
		},
		{
			name:      "operations only",
			snap:      domain.AccountSnapshot{ClientName: "Ana", HasActiveOperations: true},
			wantTopic: domain.TopicOperations,
			wantFrag:  "operaciones activas",
		},
		{
			name:      "overdue invoices",
			snap:      domain.AccountSnapshot{ClientName: "Ana", OverdueInvoiceCount: 1},
			wantTopic: domain.TopicInvoices,
			wantFrag:  "vencida(s)",
		},
		{
			name:      "generic welcome",
			snap:      domain.AccountSnapshot{ClientName: "Ana"},
			wantTopic: domain.TopicGreeting,
			wantFrag:  "asistente logístico",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := g.Generate(intentOf(domain.IntentGreeting), contextWith(tc.snap), "hola")
			require.Equal(t, tc.wantTopic, resp.Topic)
			require.Contains(t, resp.Message, tc.wantFrag)
			require.Contains(t, resp.Message, "Ana")
		})
	}
}

func TestGenerate_GreetingSuggestedActions(t *testing.T) {
	g := NewGenerator(nil)

	resp := g.Generate(intentOf(domain.IntentGreeting), contextWith(domain.AccountSnapshot{
		HasActiveOperations: true,
		PendingInvoiceCount: 3,
	}), "hola")
	require.Equal(t, []string{actionViewOperations, actionReviewInvoices, actionRequestQuote}, resp.SuggestedActions)
	require.True(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentGreeting), contextWith(domain.AccountSnapshot{}), "hola")
	require.Equal(t, []string{actionRequestQuote}, resp.SuggestedActions)
	require.False(t, resp.RequiresFollowUp)
}

func TestGenerate_QuestionWithOperationID(t *testing.T) {
	g := NewGenerator(nil)
	intent := domain.MessageIntent{
		Kind:       domain.IntentQuestion,
		Confidence: 0.8,
		Entities:   map[string]string{domain.EntityOperationID: "OP-4512"},
	}

	resp := g.Generate(intent, contextWith(domain.AccountSnapshot{}), "¿cómo va la op 4512?")
	require.Equal(t, domain.TopicTracking, resp.Topic)
	require.Contains(t, resp.Message, "OP-4512")
	require.Equal(t, "OP-4512", resp.ContextUpdates[domain.UpdateMentionedOperation])
}

func TestGenerate_QuestionDeliveryTiming(t *testing.T) {
	g := NewGenerator(nil)

	withOps := contextWith(domain.AccountSnapshot{HasActiveOperations: true, AverageDeliveryDays: 4.2})
	resp := g.Generate(intentOf(domain.IntentQuestion), withOps, "¿Cuándo llega mi envío?")
	require.Equal(t, domain.TopicTracking, resp.Topic)
	require.Contains(t, resp.Message, "4.2")

	withoutOps := contextWith(domain.AccountSnapshot{})
	resp = g.Generate(intentOf(domain.IntentQuestion), withoutOps, "¿Cuándo llega mi envío?")
	require.Equal(t, domain.TopicTracking, resp.Topic)
	require.Contains(t, resp.Message, "3 a 5 días")
}

func TestGenerate_QuestionCostAndDocuments(t *testing.T) {
	g := NewGenerator(nil)
	convCtx := contextWith(domain.AccountSnapshot{})

	resp := g.Generate(intentOf(domain.IntentQuestion), convCtx, "¿cuál es el precio del flete?")
	require.Equal(t, domain.TopicQuotes, resp.Topic)
	require.True(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentQuestion), convCtx, "¿qué documentos necesito?")
	require.Equal(t, domain.TopicOperations, resp.Topic)
	require.Contains(t, resp.Message, "carta porte")
}

func TestGenerate_QuestionOperationIDWinsOverTiming(t *testing.T) {
	g := NewGenerator(nil)
	intent := domain.MessageIntent{
		Kind:       domain.IntentQuestion,
		Confidence: 0.8,
		Entities:   map[string]string{domain.EntityOperationID: "77"},
	}

	resp := g.Generate(intent, contextWith(domain.AccountSnapshot{HasActiveOperations: true}), "¿cuándo llega la op 77?")
	require.Equal(t, domain.TopicTracking, resp.Topic)
	require.Equal(t, "77", resp.ContextUpdates[domain.UpdateMentionedOperation])
	require.Contains(t, resp.Message, "77")
}

func TestGenerate_QuestionDefaultUsesEveryPrompt(t *testing.T) {
	convCtx := contextWith(domain.AccountSnapshot{})

	for idx := range clarifyingPrompts {
		g := NewGenerator(fixedPick(idx))
		resp := g.Generate(intentOf(domain.IntentQuestion), convCtx, "¿y eso?")
		require.Equal(t, clarifyingPrompts[idx], resp.Message)
		require.Equal(t, domain.TopicUnknown, resp.Topic)
		require.InDelta(t, 0.6, resp.Confidence, 1e-9)
		require.True(t, resp.RequiresFollowUp)
	}
}

func TestGenerate_RequestBranches(t *testing.T) {
	g := NewGenerator(nil)
	convCtx := contextWith(domain.AccountSnapshot{})

	resp := g.Generate(intentOf(domain.IntentRequest), convCtx, "quiero una cotización")
	require.Equal(t, domain.TopicQuotes, resp.Topic)
	require.True(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentRequest), convCtx, "necesito cancelar un envío")
	require.Equal(t, domain.TopicContactInfo, resp.Topic)
	require.Contains(t, resp.Message, "800-555-0100")
	require.True(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentRequest), convCtx, "necesito ayuda")
	require.Equal(t, domain.TopicUnknown, resp.Topic)
}

func TestGenerate_ComplaintRegistersAndEscalates(t *testing.T) {
	g := NewGenerator(nil)

	resp := g.Generate(intentOf(domain.IntentComplaint), contextWith(domain.AccountSnapshot{}), "pésimo servicio")
	require.Equal(t, domain.TopicTechnicalSupport, resp.Topic)
	require.InDelta(t, 0.9, resp.Confidence, 1e-9)
	require.True(t, resp.RequiresFollowUp)
	require.Equal(t, "true", resp.ContextUpdates[domain.UpdateEscalated])
	require.Equal(t, "true", resp.ContextUpdates[domain.UpdateComplaintRegistered])
}

func TestGenerate_GratitudeSamplesFixedSet(t *testing.T) {
	convCtx := contextWith(domain.AccountSnapshot{})

	seen := map[string]bool{}
	for idx := range gratitudeReplies {
		g := NewGenerator(fixedPick(idx))
		resp := g.Generate(intentOf(domain.IntentGratitude), convCtx, "gracias")
		require.Contains(t, gratitudeReplies, resp.Message)
		require.False(t, resp.RequiresFollowUp)
		seen[resp.Message] = true
	}
	require.Len(t, seen, len(gratitudeReplies))
}

func TestGenerate_FarewellBranchesOnActiveOperations(t *testing.T) {
	g := NewGenerator(nil)

	resp := g.Generate(intentOf(domain.IntentFarewell), contextWith(domain.AccountSnapshot{HasActiveOperations: true}), "adiós")
	require.Contains(t, resp.Message, "operaciones activas")
	require.False(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentFarewell), contextWith(domain.AccountSnapshot{}), "adiós")
	require.NotContains(t, resp.Message, "operaciones activas")
}

func TestGenerate_FollowUpContinuesOperations(t *testing.T) {
	g := NewGenerator(nil)

	convCtx := contextWith(domain.AccountSnapshot{})
	convCtx.LastTopic = domain.TopicOperations
	resp := g.Generate(intentOf(domain.IntentFollowUp), convCtx, "también quiero saber de mi factura")
	require.Equal(t, domain.TopicOperations, resp.Topic)
	require.Equal(t, followUpOperations, resp.Message)

	convCtx.LastTopic = domain.TopicInvoices
	resp = g.Generate(intentOf(domain.IntentFollowUp), convCtx, "otra cosa")
	require.Equal(t, followUpGeneric, resp.Message)
}

func TestGenerate_UrgentEscalates(t *testing.T) {
	g := NewGenerator(nil)

	resp := g.Generate(intentOf(domain.IntentUrgent), contextWith(domain.AccountSnapshot{}), "urgente")
	require.InDelta(t, 0.95, resp.Confidence, 1e-9)
	require.Equal(t, "true", resp.ContextUpdates[domain.UpdateEscalated])
	require.Equal(t, "true", resp.ContextUpdates[domain.UpdateUrgentCase])
	require.Contains(t, resp.Message, "24/7")
}

func TestGenerate_ClarificationAndDefault(t *testing.T) {
	g := NewGenerator(nil)
	convCtx := contextWith(domain.AccountSnapshot{})

	resp := g.Generate(intentOf(domain.IntentClarification), convCtx, "no entiendo")
	require.Equal(t, clarificationMenu, resp.Message)
	require.True(t, resp.RequiresFollowUp)

	resp = g.Generate(intentOf(domain.IntentInformationSeeking), convCtx, "")
	require.Equal(t, capabilitiesReply, resp.Message)
	require.True(t, resp.RequiresFollowUp)
}

func TestGenerate_DeterministicOutsideTemplateSets(t *testing.T) {
	convCtx := contextWith(domain.AccountSnapshot{HasActiveOperations: true})

	first := NewGenerator(fixedPick(0)).Generate(intentOf(domain.IntentGreeting), convCtx, "hola")
	second := NewGenerator(fixedPick(2)).Generate(intentOf(domain.IntentGreeting), convCtx, "hola")
	require.Equal(t, first, second)
}

func TestPickFrom_OutOfRangePickerIsClamped(t *testing.T) {
	g := NewGenerator(func(int) int { return 99 })
	require.True(t, strings.HasPrefix(g.pickFrom(gratitudeReplies), gratitudeReplies[0][:3]))
}
