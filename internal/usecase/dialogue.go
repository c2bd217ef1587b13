// Package usecase orchestrates dialogue sessions: it owns the conversation
// contexts, sequences turns, simulates typing latency and raises
// escalation notices when a turn needs a human.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dialogue-agent/internal/domain"
	"dialogue-agent/internal/integrations/accounts"
	"dialogue-agent/internal/repository"
)

const (
	defaultTypingBaseDelay = 800 * time.Millisecond
	defaultEscalationDelay = 2 * time.Second
	defaultMaxMessageLen   = 2000

	fallbackMessage = "Algo salió mal al procesar tu mensaje. ¿Lo intentas de nuevo, por favor?"
)

// Analyzer classifies one user message against the conversation so far.
type Analyzer interface {
	Analyze(text string, convCtx *domain.ConversationContext) domain.MessageIntent
}

// Generator builds the reply for an analyzed message.
type Generator interface {
	Generate(intent domain.MessageIntent, convCtx *domain.ConversationContext, rawText string) domain.DialogueResponse
}

// SessionStore is the session registry consumed by the service.
type SessionStore interface {
	Create(sess *repository.Session) error
	Get(id string) (*repository.Session, error)
	Touch(id string) error
	Delete(id string) error
}

// EscalationNotice is the secondary emission that follows an escalated
// turn. It is tagged with the originating message, not with whatever turn
// is current when the notice fires.
type EscalationNotice struct {
	ID         string
	SessionID  string
	ClientID   string
	CaseRef    string
	Message    string
	Turn       int
	OccurredAt time.Time
}

// EscalationListener receives escalation notices asynchronously.
type EscalationListener interface {
	EscalationRaised(notice EscalationNotice)
}

// EscalationListenerFunc adapts a function to the EscalationListener
// interface.
type EscalationListenerFunc func(notice EscalationNotice)

func (f EscalationListenerFunc) EscalationRaised(notice EscalationNotice) { f(notice) }

// Config tunes the orchestrator. Zero fields fall back to defaults.
type Config struct {
	TypingBaseDelay time.Duration
	EscalationDelay time.Duration
	MaxMessageLen   int
}

// Service is the dialogue session orchestrator.
type Service struct {
	accounts  accounts.Provider
	sessions  SessionStore
	analyzer  Analyzer
	generator Generator
	logger    *zap.Logger
	config    Config

	listenerMu sync.RWMutex
	listener   EscalationListener

	timerMu sync.Mutex
	timers  map[string]*time.Timer
	closed  bool

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	jitter func() float64
}

// NewService creates the orchestrator.
func NewService(provider accounts.Provider, sessions SessionStore, analyzer Analyzer, generator Generator, logger *zap.Logger, config Config) (*Service, error) {
	if provider == nil {
		return nil, errors.New("usecase: account provider must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if analyzer == nil {
		return nil, errors.New("usecase: analyzer must not be nil")
	}
	if generator == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TypingBaseDelay <= 0 {
		config.TypingBaseDelay = defaultTypingBaseDelay
	}
	if config.EscalationDelay <= 0 {
		config.EscalationDelay = defaultEscalationDelay
	}
	if config.MaxMessageLen <= 0 {
		config.MaxMessageLen = defaultMaxMessageLen
	}

	return &Service{
		accounts:  provider,
		sessions:  sessions,
		analyzer:  analyzer,
		generator: generator,
		logger:    logger,
		config:    config,
		timers:    make(map[string]*time.Timer),
		now:       time.Now,
		sleep:     sleepFor,
		jitter:    typingJitter,
	}, nil
}

// SetEscalationListener registers the receiver for escalation notices.
// Without a listener, notices are logged and dropped.
func (s *Service) SetEscalationListener(l EscalationListener) {
	s.listenerMu.Lock()
	s.listener = l
	s.listenerMu.Unlock()
}

type StartSessionInput struct {
	ClientID string
}

type StartSessionOutput struct {
	SessionID string
	Greeting  domain.DialogueResponse
}

// StartSession loads the account snapshot once, creates the conversation
// context and returns a personalized greeting without waiting for user
// input.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (StartSessionOutput, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return StartSessionOutput{}, newError(ErrorInvalidInput, "empty_client_id", nil)
	}

	snap, err := s.accounts.LoadAccountSnapshot(ctx, clientID)
	if err != nil {
		return StartSessionOutput{}, newError(ErrorInternal, "account_snapshot_error", err)
	}

	convCtx := domain.NewConversationContext(clientID, snap)
	sess := &repository.Session{
		ID:       newUUID(),
		ClientID: clientID,
		Context:  convCtx,
	}
	if err := s.sessions.Create(sess); err != nil {
		return StartSessionOutput{}, newError(ErrorInternal, "session_create_error", err)
	}

	seed := domain.MessageIntent{Kind: domain.IntentGreeting, Confidence: 0.9, UrgencyLevel: 1}
	greeting := s.generator.Generate(seed, convCtx, "")

	s.logger.Info("session started",
		zap.String("session_id", sess.ID),
		zap.String("client_id", clientID),
		zap.Bool("active_operations", snap.HasActiveOperations))

	return StartSessionOutput{SessionID: sess.ID, Greeting: greeting}, nil
}

type HandleMessageInput struct {
	SessionID string
	Text      string
}

type HandleMessageOutput struct {
	Response  domain.DialogueResponse
	Intent    domain.MessageIntent
	Escalated bool
}

// HandleMessage runs one turn: analyze, generate, simulate typing, apply
// the turn to the context and, if needed, schedule the escalation notice.
// Turns within a session are strictly serialized; concurrent sessions do
// not affect each other.
func (s *Service) HandleMessage(ctx context.Context, in HandleMessageInput) (HandleMessageOutput, error) {
	sess, err := s.sessions.Get(strings.TrimSpace(in.SessionID))
	if err != nil {
		return HandleMessageOutput{}, newError(ErrorSessionNotFound, "unknown_session", err)
	}
	if len(in.Text) > s.config.MaxMessageLen {
		return HandleMessageOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	sess.TurnMu.Lock()
	defer sess.TurnMu.Unlock()

	intent, response := s.runTurn(sess.Context, in.Text)
	s.simulateTyping(ctx, in.Text, intent)
	s.applyTurn(sess, in.Text, response)

	if intent.RequiresHumanEscalation {
		s.scheduleEscalation(sess, in.Text, sess.Context.TurnCount())
	}

	return HandleMessageOutput{
		Response:  response,
		Intent:    intent,
		Escalated: intent.RequiresHumanEscalation,
	}, nil
}

type SelectActionInput struct {
	SessionID   string
	ActionLabel string
}

// SelectSuggestedAction turns a tapped suggestion into a regular message.
func (s *Service) SelectSuggestedAction(ctx context.Context, in SelectActionInput) (HandleMessageOutput, error) {
	label := strings.TrimSpace(in.ActionLabel)
	if label == "" {
		return HandleMessageOutput{}, newError(ErrorInvalidInput, "empty_action", nil)
	}
	return s.HandleMessage(ctx, HandleMessageInput{
		SessionID: in.SessionID,
		Text:      "Quiero " + label,
	})
}

// EndSession discards the session and its context.
func (s *Service) EndSession(_ context.Context, sessionID string) error {
	if err := s.sessions.Delete(strings.TrimSpace(sessionID)); err != nil {
		return newError(ErrorSessionNotFound, "unknown_session", err)
	}
	return nil
}

// Close cancels pending escalation notices. Sessions themselves stay in
// the store; the owner decides their fate.
func (s *Service) Close() {
	s.timerMu.Lock()
	s.closed = true
	timers := s.timers
	s.timers = make(map[string]*time.Timer)
	s.timerMu.Unlock()

	for _, t := range timers {
		t.Stop()
	}
}

// runTurn calls the analyzer and generator behind a panic guard: whatever
// happens inside them, the caller gets a well-formed response.
func (s *Service) runTurn(convCtx *domain.ConversationContext, text string) (intent domain.MessageIntent, response domain.DialogueResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("turn processing failed", zap.Any("panic", r))
			intent = domain.MessageIntent{Kind: domain.IntentInformationSeeking, Confidence: 0.1, UrgencyLevel: 1}
			response = domain.DialogueResponse{
				Message:          fallbackMessage,
				Topic:            domain.TopicUnknown,
				Confidence:       0.1,
				RequiresFollowUp: true,
			}
		}
	}()

	intent = s.analyzer.Analyze(text, convCtx)
	response = s.generator.Generate(intent, convCtx, text)
	return intent, response
}

// simulateTyping pauses the turn so replies feel typed rather than
// instantaneous. Urgent turns respond faster; turns that extracted
// entities or carry long messages take longer.
func (s *Service) simulateTyping(ctx context.Context, text string, intent domain.MessageIntent) {
	multiplier := 1.0
	switch {
	case intent.UrgencyLevel >= 4:
		multiplier = 0.5
	case intent.HasEntities():
		multiplier = 1.5
	case len(text) > 100:
		multiplier = 1.3
	}

	delay := time.Duration(float64(s.config.TypingBaseDelay) * multiplier * s.jitter())
	s.sleep(ctx, delay)
}

// applyTurn records the utterance and applies the response's context
// updates. This is the only place the conversation context is mutated.
func (s *Service) applyTurn(sess *repository.Session, text string, response domain.DialogueResponse) {
	convCtx := sess.Context
	convCtx.AppendUtterance(text)
	convCtx.LastTopic = response.Topic

	if opID, ok := response.ContextUpdates[domain.UpdateMentionedOperation]; ok {
		convCtx.AddMentionedOperation(opID)
	}
	if response.ContextUpdates[domain.UpdateComplaintRegistered] == "true" {
		convCtx.AddOpenIssue(text)
	}
	if response.ContextUpdates[domain.UpdateEscalated] == "true" {
		s.logger.Info("turn escalated", zap.String("session_id", sess.ID))
	}
	if response.ContextUpdates[domain.UpdateUrgentCase] == "true" {
		s.logger.Warn("urgent case registered", zap.String("session_id", sess.ID))
	}

	if err := s.sessions.Touch(sess.ID); err != nil {
		s.logger.Warn("failed to touch session", zap.String("session_id", sess.ID), zap.Error(err))
	}
}

// scheduleEscalation arms a one-shot timer that delivers the notice after
// the configured delay. Delivery failures are logged and dropped; they
// never affect the primary turn.
func (s *Service) scheduleEscalation(sess *repository.Session, text string, turn int) {
	now := s.now()
	notice := EscalationNotice{
		ID:         newUUID(),
		SessionID:  sess.ID,
		ClientID:   sess.ClientID,
		CaseRef:    caseReference(now),
		Message:    text,
		Turn:       turn,
		OccurredAt: now,
	}

	s.timerMu.Lock()
	if s.closed {
		s.timerMu.Unlock()
		s.logger.Warn("escalation dropped, service closed", zap.String("session_id", sess.ID))
		return
	}
	id := notice.ID
	s.timers[id] = time.AfterFunc(s.config.EscalationDelay, func() {
		s.timerMu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.timerMu.Unlock()
		if live {
			s.deliverEscalation(notice)
		}
	})
	s.timerMu.Unlock()

	s.logger.Info("escalation scheduled",
		zap.String("session_id", sess.ID),
		zap.String("case_ref", notice.CaseRef),
		zap.Int("turn", turn))
}

func (s *Service) deliverEscalation(notice EscalationNotice) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("escalation listener panicked", zap.Any("panic", r))
		}
	}()

	s.listenerMu.RLock()
	listener := s.listener
	s.listenerMu.RUnlock()

	if listener == nil {
		s.logger.Warn("escalation dropped, no listener",
			zap.String("session_id", notice.SessionID),
			zap.String("case_ref", notice.CaseRef))
		return
	}
	listener.EscalationRaised(notice)
}

// caseReference derives a short human-readable reference from the turn
// timestamp (last six digits of its unix-milli value).
func caseReference(ts time.Time) string {
	return fmt.Sprintf("CASO-%06d", ts.UnixMilli()%1_000_000)
}

func sleepFor(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// typingJitter returns a factor in [0.8, 1.2).
func typingJitter() float64 {
	return 0.8 + rand.Float64()*0.4
}

var newUUID = func() string {
	return uuid.NewString()
}
