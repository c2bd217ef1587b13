// Package analyzer turns raw user text into a structured MessageIntent.
// Classification is rule-based: ordered keyword checks plus a handful of
// regular expressions for entity extraction. No statistical model is
// involved, so the same input always yields the same intent.
package analyzer

import (
	"regexp"
	"strings"

	"dialogue-agent/internal/domain"
)

const (
	baseConfidence  = 0.5
	entityConfBonus = 0.3
	maxUrgency      = 5
	leadingPunct    = " \t¿¡!.,;:"
)

// Pre-compiled entity patterns. Reference tokens must carry at least one
// digit so filler words after a prefix ("mi factura está...") are not
// mistaken for IDs.
var (
	operationRefPattern = regexp.MustCompile(`(?i)\b(?:operación|operacion|envío|envio|op)\b\s*[#:]?\s*([a-z0-9]*-?[0-9][a-z0-9-]*)`)
	invoiceRefPattern   = regexp.MustCompile(`(?i)\b(?:factura|fact|invoice)\b\s*[#:]?\s*([a-z0-9]*-?[0-9][a-z0-9-]*)`)
	amountPattern       = regexp.MustCompile(`(?i)(\$|\bpesos\b|\bd[oó]lares\b|\busd\b)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)
	numericDatePattern  = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	timePattern         = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}\s*(?:am|pm)?\b`)
)

// Analyzer classifies user messages into intents and extracts entities.
// It is stateless and safe for concurrent use.
type Analyzer struct {
	greetingWords      []string
	farewellWords      []string
	complaintWords     []string
	gratitudeWords     []string
	urgencyMarkers     []string
	interrogativeWords []string
	requestVerbs       []string
	followUpMarkers    []string
	clarificationWords []string
	urgentKeywords     []string
	dateWords          []string
}

// NewAnalyzer creates an Analyzer with the default Spanish keyword sets.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		greetingWords: []string{
			"hola", "buenos días", "buenos dias", "buenas tardes",
			"buenas noches", "buen día", "buen dia", "saludos",
			"qué tal", "que tal",
		},
		farewellWords: []string{
			"adiós", "adios", "hasta luego", "hasta pronto",
			"nos vemos", "bye", "chao", "gracias por todo",
		},
		complaintWords: []string{
			"queja", "reclamo", "molesto", "molesta", "enojado", "enojada",
			"pésimo", "pesimo", "terrible", "inaceptable",
			"decepcionado", "decepcionada", "mal servicio",
			"problema grave", "furioso", "indignado",
		},
		gratitudeWords: []string{
			"gracias", "agradezco", "agradecido", "agradecida",
			"muy amable", "excelente servicio",
		},
		// Messages that lead with these words escalate straight to the
		// urgent flow unless complaint wording already matched.
		urgencyMarkers: []string{"urgente", "emergencia"},
		interrogativeWords: []string{
			"qué", "que", "cómo", "como", "cuándo", "cuando",
			"dónde", "donde", "cuánto", "cuanto", "cuál", "cual",
			"quién", "quien", "por qué", "por que",
		},
		requestVerbs: []string{
			"necesito", "requiero", "solicito", "puedes", "podrías",
			"podrias", "quiero", "deseo", "me ayudas",
		},
		followUpMarkers: []string{
			"también", "tambien", "además", "ademas",
			"otra cosa", "otra pregunta",
		},
		clarificationWords: []string{
			"no entiendo", "explica", "clarifica",
			"qué significa", "que significa", "no comprendo",
		},
		urgentKeywords: []string{
			"urgente", "emergencia", "rápido", "rapido", "inmediato",
			"ya", "problema", "error", "perdido", "robado",
			"dañado", "danado", "accidente",
		},
		dateWords: []string{"hoy", "ayer", "mañana"},
	}
}

// Analyze classifies text against the conversation so far. Only the
// follow-up rule consults the context (a follow-up needs a prior turn);
// everything else depends on the text alone.
func (a *Analyzer) Analyze(text string, convCtx *domain.ConversationContext) domain.MessageIntent {
	lower := strings.ToLower(text)

	entities := a.extractEntities(text, lower)
	kind := a.classify(lower, convCtx)
	urgency := a.urgencyLevel(kind, lower)

	return domain.MessageIntent{
		Kind:                    kind,
		Entities:                entities,
		Confidence:              a.confidence(kind, lower, entities),
		UrgencyLevel:            urgency,
		RequiresHumanEscalation: a.needsEscalation(kind, lower, urgency),
	}
}

// extractEntities runs every pattern category over the message. Each
// category contributes at most one entity (first match wins); categories
// are independent of each other and of the intent outcome.
func (a *Analyzer) extractEntities(text, lower string) map[string]string {
	entities := make(map[string]string)

	if m := operationRefPattern.FindStringSubmatch(text); m != nil {
		entities[domain.EntityOperationID] = strings.ToUpper(m[1])
	}
	if m := invoiceRefPattern.FindStringSubmatch(text); m != nil {
		entities[domain.EntityInvoiceID] = strings.ToUpper(m[1])
	}
	if m := amountPattern.FindStringSubmatch(text); m != nil {
		entities[domain.EntityCurrency] = strings.ToLower(m[1])
		entities[domain.EntityAmount] = m[2]
	}
	if containsAny(lower, a.dateWords) || numericDatePattern.MatchString(lower) {
		entities[domain.EntityDateMentioned] = "true"
	}
	if timePattern.MatchString(lower) {
		entities[domain.EntityTimeMentioned] = "true"
	}

	if len(entities) == 0 {
		return nil
	}
	return entities
}

// classify walks the decision list in priority order; the first rule that
// matches wins. Order matters: a farewell containing a question mark is
// still a farewell, and "también quiero..." is a follow-up, not a request.
func (a *Analyzer) classify(lower string, convCtx *domain.ConversationContext) domain.IntentKind {
	switch {
	case containsAny(lower, a.greetingWords):
		return domain.IntentGreeting
	case containsAny(lower, a.farewellWords):
		return domain.IntentFarewell
	case containsAny(lower, a.complaintWords):
		return domain.IntentComplaint
	case containsAny(lower, a.gratitudeWords):
		return domain.IntentGratitude
	case containsAny(lower, a.urgencyMarkers):
		return domain.IntentUrgent
	case a.isQuestion(lower):
		return domain.IntentQuestion
	case containsAny(lower, a.followUpMarkers) && convCtx != nil && len(convCtx.ConversationFlow) > 0:
		return domain.IntentFollowUp
	case containsAny(lower, a.requestVerbs):
		return domain.IntentRequest
	case containsAny(lower, a.clarificationWords):
		return domain.IntentClarification
	default:
		return domain.IntentInformationSeeking
	}
}

func (a *Analyzer) isQuestion(lower string) bool {
	if strings.Contains(lower, "?") {
		return true
	}
	trimmed := strings.TrimLeft(lower, leadingPunct)
	for _, w := range a.interrogativeWords {
		if strings.HasPrefix(trimmed, w+" ") || trimmed == w {
			return true
		}
	}
	return false
}

// urgencyLevel starts from the intent's base urgency and adds one point
// per distinct urgent keyword present, clamped to [1,5]. Repeating the
// same keyword does not raise the score further.
func (a *Analyzer) urgencyLevel(kind domain.IntentKind, lower string) int {
	var level int
	switch kind {
	case domain.IntentUrgent:
		level = 5
	case domain.IntentComplaint:
		level = 4
	case domain.IntentRequest:
		level = 3
	case domain.IntentQuestion:
		level = 2
	default:
		level = 1
	}

	for _, kw := range a.urgentKeywords {
		if strings.Contains(lower, kw) {
			level++
		}
	}
	if level > maxUrgency {
		level = maxUrgency
	}
	return level
}

func (a *Analyzer) confidence(kind domain.IntentKind, lower string, entities map[string]string) float64 {
	conf := baseConfidence
	if len(entities) > 0 {
		conf += entityConfBonus
	}

	switch kind {
	case domain.IntentGreeting, domain.IntentFarewell, domain.IntentGratitude:
		conf += 0.4
	case domain.IntentQuestion:
		if strings.Contains(lower, "?") {
			conf += 0.3
		} else {
			conf += 0.1
		}
	case domain.IntentRequest:
		conf += 0.2
	default:
		conf += 0.1
	}

	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

// needsEscalation decides whether a human should take over. Any single
// condition is enough.
func (a *Analyzer) needsEscalation(kind domain.IntentKind, lower string, urgency int) bool {
	if urgency >= 4 {
		return true
	}
	if kind == domain.IntentComplaint {
		return true
	}
	if strings.Contains(lower, "hablar con") && strings.Contains(lower, "persona") {
		return true
	}
	if strings.Contains(lower, "gerente") || strings.Contains(lower, "supervisor") {
		return true
	}
	if strings.Contains(lower, "cancelar") && strings.Contains(lower, "servicio") {
		return true
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
