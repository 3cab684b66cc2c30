package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/travel-ai-concierge/internal/archive"
	"github.com/wolfman30/travel-ai-concierge/internal/events"
	"github.com/wolfman30/travel-ai-concierge/internal/leads"
	"github.com/wolfman30/travel-ai-concierge/internal/observability/metrics"
	"github.com/wolfman30/travel-ai-concierge/internal/session"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

var engineTracer = otel.Tracer("travel.internal.conversation.engine")

const (
	defaultMaxTokens    = 600
	defaultTemperature  = 0.8
	defaultLLMTimeout   = 60 * time.Second
	defaultHistoryLimit = 20
)

// LeadSink receives the per-turn lead snapshot.
type LeadSink interface {
	Upsert(ctx context.Context, lead *leads.Lead) error
}

// EventPublisher announces escalations and finished chats.
type EventPublisher interface {
	PublishLeadEscalated(ctx context.Context, evt events.LeadEscalatedV1) error
	PublishConversationEnded(ctx context.Context, evt events.ConversationEndedV1) error
}

// TranscriptArchiver stores finished transcripts. It returns the object key.
type TranscriptArchiver interface {
	ArchiveTranscript(ctx context.Context, record *archive.TranscriptRecord) (string, error)
}

type StartRequest struct {
	Scenario  string
	SessionID string
}

type StartResult struct {
	ConversationID string `json:"conversation_id"`
	SessionID      string `json:"session_id,omitempty"`
	Greeting       string `json:"greeting"`
}

type TurnRequest struct {
	ConversationID string
	SessionID      string
	Message        string
	// Scenario is only used when ConversationID has no stored state yet.
	Scenario string
}

// TurnResult is what the transport shows for one user message.
type TurnResult struct {
	ConversationID string        `json:"conversation_id"`
	SessionID      string        `json:"session_id,omitempty"`
	Reply          string        `json:"reply"`
	Followup       string        `json:"followup,omitempty"`
	Scheduling     string        `json:"scheduling,omitempty"`
	Booster        string        `json:"booster,omitempty"`
	Stage          Stage         `json:"stage"`
	Qualification  Qualification `json:"qualification"`
	Score          LeadScore     `json:"score"`
	Objectives     Objectives    `json:"objectives"`
	Fallback       bool          `json:"fallback"`
}

// Text joins the reply and its extras the way the widget displays them.
func (r *TurnResult) Text() string {
	parts := []string{r.Reply}
	for _, extra := range []string{r.Followup, r.Scheduling, r.Booster} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	return strings.Join(parts, "\n\n")
}

type EndResult struct {
	ConversationID string `json:"conversation_id"`
	ArchiveKey     string `json:"archive_key,omitempty"`
	MessageCount   int    `json:"message_count"`
}

// Option configures an Engine.
type Option func(*Engine)

func WithStateStore(store StateStore) Option {
	return func(e *Engine) { e.states = store }
}

func WithSessionStore(store session.Store) Option {
	return func(e *Engine) { e.sessions = store }
}

func WithTranscripts(store Transcripts) Option {
	return func(e *Engine) { e.transcripts = store }
}

// WithLeadRepository enables the per-turn analytics snapshot.
func WithLeadRepository(repo LeadSink) Option {
	return func(e *Engine) { e.leads = repo }
}

// WithEventPublisher enables sales escalation and end-of-chat events.
func WithEventPublisher(pub EventPublisher) Option {
	return func(e *Engine) { e.events = pub }
}

func WithArchiver(archiver TranscriptArchiver) Option {
	return func(e *Engine) { e.archiver = archiver }
}

func WithMetrics(m *metrics.ChatMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithModel sets the model id and sampling limits sent with every request.
func WithModel(model string, maxTokens int32, temperature float32) Option {
	return func(e *Engine) {
		e.model = model
		if maxTokens > 0 {
			e.maxTokens = maxTokens
		}
		if temperature >= 0 {
			e.temperature = temperature
		}
	}
}

func WithLLMTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithValuePropositions toggles the business wording pass of the formatter.
func WithValuePropositions(enabled bool) Option {
	return func(e *Engine) { e.formatter = NewReplyFormatter(enabled) }
}

// Engine runs chat turns: extraction, scoring, stage advance, the model call
// and the reply decorations. Turns of one conversation are serialized.
type Engine struct {
	llm         LLMClient
	states      StateStore
	sessions    session.Store
	transcripts Transcripts
	leads       LeadSink
	events      EventPublisher
	archiver    TranscriptArchiver
	metrics     *metrics.ChatMetrics
	logger      *logging.Logger
	now         func() time.Time

	prompts   *PromptBuilder
	formatter *ReplyFormatter

	model        string
	maxTokens    int32
	temperature  float32
	timeout      time.Duration
	historyLimit int

	locks *keyedMutex
}

// NewEngine returns an engine backed by in-memory state unless options say otherwise.
func NewEngine(llm LLMClient, opts ...Option) *Engine {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	e := &Engine{
		llm:          llm,
		formatter:    NewReplyFormatter(true),
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
		timeout:      defaultLLMTimeout,
		historyLimit: defaultHistoryLimit,
		locks:        newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.states == nil {
		e.states = NewMemoryStateStore()
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	e.prompts = NewPromptBuilder(e.now)
	return e
}

// Scenarios lists the chats a customer can open.
func (e *Engine) Scenarios() []Scenario {
	return Scenarios()
}

// Start opens a conversation and returns its greeting. The greeting is
// personalized when the session holds a valid trip.
func (e *Engine) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	scenario, ok := LookupScenario(req.Scenario)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, req.Scenario)
	}

	ctx, span := engineTracer.Start(ctx, "conversation.start")
	defer span.End()

	conversationID := newConversationID()
	span.SetAttributes(
		attribute.String("travel.conversation_id", conversationID),
		attribute.String("travel.scenario", scenario.ID),
	)

	sess := e.loadSession(ctx, req.SessionID)
	greeting := Greeting(scenario.ID, sess)

	state := &State{
		Context:   NewContext(scenario.ID),
		History:   []ChatMessage{{Role: ChatRoleAssistant, Content: greeting}},
		SessionID: req.SessionID,
		StartedAt: e.now(),
	}
	if err := e.states.Save(ctx, conversationID, state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: save new conversation: %w", err)
	}
	e.recordTranscript(ctx, conversationID, state, LeadScore{Qualification: QualificationCold}, state.History)

	e.logger.Info("conversation started",
		"conversation_id", conversationID,
		"scenario", scenario.ID,
		"personalized", sess.Valid(),
	)
	return &StartResult{ConversationID: conversationID, SessionID: req.SessionID, Greeting: greeting}, nil
}

// HandleMessage runs one user turn. It always produces a reply: model
// failures fall back to canned text and store failures are logged.
func (e *Engine) HandleMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = newConversationID()
	}

	unlock := e.locks.Lock(conversationID)
	defer unlock()

	ctx, span := engineTracer.Start(ctx, "conversation.turn")
	defer span.End()
	span.SetAttributes(attribute.String("travel.conversation_id", conversationID))

	state, err := e.states.Load(ctx, conversationID)
	if err != nil {
		if !errors.Is(err, ErrUnknownConversation) {
			e.logger.Warn("failed to load conversation state, starting fresh",
				"conversation_id", conversationID, "error", err)
		}
		state = &State{Context: NewContext(req.Scenario), StartedAt: e.now()}
	}
	if req.SessionID != "" {
		state.SessionID = req.SessionID
	}

	c := state.Context
	previousStage := c.Stage
	c.MessageCount++
	c = Extract(c, message)
	score := ScoreLead(c)
	c.Qualification = score.Qualification
	c = AdvanceStage(c)
	if c.Stage != previousStage {
		e.metrics.ObserveStageTransition(c.Scenario, string(previousStage), string(c.Stage))
		e.logger.Info("conversation stage advanced",
			"conversation_id", conversationID,
			"scenario", c.Scenario,
			"from", previousStage,
			"to", c.Stage,
		)
	}
	span.SetAttributes(
		attribute.String("travel.scenario", c.Scenario),
		attribute.String("travel.stage", string(c.Stage)),
		attribute.Int("travel.score", score.Score),
	)

	userMsg := ChatMessage{Role: ChatRoleUser, Content: message}
	state.History = append(state.History, userMsg)

	sess := e.loadSession(ctx, state.SessionID)
	systemPrompt := e.prompts.Build(c, sess)
	if systemPrompt == "" {
		systemPrompt = GenericSystemPrompt
	}

	result := &TurnResult{ConversationID: conversationID}
	reply, err := e.complete(ctx, systemPrompt, state.History)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "llm unavailable")
		e.logger.Error("LLM unavailable, using fallback reply",
			"conversation_id", conversationID,
			"scenario", c.Scenario,
			"stage", c.Stage,
			"error", err,
		)
		e.metrics.ObserveFallback(c.Scenario, string(c.Stage))
		result.Reply = FallbackReply(c)
		result.Fallback = true
	} else {
		c = MarkFromReply(c, reply)
		result.Reply = e.formatter.Format(reply, c.Stage, c.Scenario)
	}

	followup := NextFollowup(c, result.Reply)
	if followup.Service != "" {
		c = c.WithProposed(followup.Service).WithObjectives(Objectives{UpsellPresented: true})
	}
	result.Followup = followup.Text
	if c.Objectives.ContactCollected && !c.Objectives.FollowupScheduled {
		result.Scheduling = SchedulingPrompt(c, e.now())
		c = c.WithObjectives(Objectives{FollowupScheduled: true})
	}
	if result.Followup == "" {
		result.Booster = UrgencyBooster(c)
	}

	assistantMsg := ChatMessage{Role: ChatRoleAssistant, Content: result.Text()}
	state.History = append(state.History, assistantMsg)

	state.SessionID = e.saveSession(ctx, c.Scenario, state)

	if !c.Escalated && ShouldEscalateToSales(score) {
		c.Escalated = e.escalate(ctx, conversationID, c, score)
	}

	state.Context = c
	if err := e.states.Save(ctx, conversationID, state); err != nil {
		e.logger.Error("failed to save conversation state", "conversation_id", conversationID, "error", err)
	}
	e.upsertLead(ctx, conversationID, state, score)
	e.recordTranscript(ctx, conversationID, state, score, []ChatMessage{userMsg, assistantMsg})
	e.metrics.ObserveTurn(c.Scenario, string(c.Stage), string(c.Qualification))

	result.SessionID = state.SessionID
	result.Stage = c.Stage
	result.Qualification = c.Qualification
	result.Score = score
	result.Objectives = c.Objectives
	return result, nil
}

// History returns the messages of a conversation, falling back to the
// transcript store once the live state has expired.
func (e *Engine) History(ctx context.Context, conversationID string) ([]ChatMessage, error) {
	state, err := e.states.Load(ctx, conversationID)
	if err == nil {
		return state.History, nil
	}
	if !errors.Is(err, ErrUnknownConversation) || e.transcripts == nil {
		return nil, err
	}

	stored, listErr := e.transcripts.ListMessages(ctx, conversationID)
	if listErr != nil {
		return nil, listErr
	}
	if len(stored) == 0 {
		return nil, ErrUnknownConversation
	}
	out := make([]ChatMessage, 0, len(stored))
	for _, msg := range stored {
		out = append(out, ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return out, nil
}

// End archives the transcript and forgets the live state.
func (e *Engine) End(ctx context.Context, conversationID string) (*EndResult, error) {
	unlock := e.locks.Lock(conversationID)
	defer unlock()

	ctx, span := engineTracer.Start(ctx, "conversation.end")
	defer span.End()

	state, err := e.states.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	c := state.Context
	score := ScoreLead(c)
	endedAt := e.now()

	result := &EndResult{ConversationID: conversationID, MessageCount: c.MessageCount}
	if e.archiver != nil {
		key, err := e.archiver.ArchiveTranscript(ctx, transcriptRecord(conversationID, state, score))
		if err != nil {
			span.RecordError(err)
			e.logger.Error("failed to archive transcript", "conversation_id", conversationID, "error", err)
		}
		result.ArchiveKey = key
	}
	if e.transcripts != nil {
		if err := e.transcripts.MarkEnded(ctx, conversationID, endedAt); err != nil {
			e.logger.Warn("failed to mark conversation ended", "conversation_id", conversationID, "error", err)
		}
	}
	if e.events != nil {
		evt := events.ConversationEndedV1{
			ConversationID: conversationID,
			Scenario:       c.Scenario,
			Stage:          string(c.Stage),
			Qualification:  string(c.Qualification),
			MessageCount:   c.MessageCount,
			ArchiveKey:     result.ArchiveKey,
			EndedAt:        endedAt,
		}
		if err := e.events.PublishConversationEnded(ctx, evt); err != nil {
			e.logger.Warn("failed to publish conversation ended", "conversation_id", conversationID, "error", err)
		}
	}
	if err := e.states.Delete(ctx, conversationID); err != nil {
		e.logger.Warn("failed to delete conversation state", "conversation_id", conversationID, "error", err)
	}

	e.logger.Info("conversation ended",
		"conversation_id", conversationID,
		"scenario", c.Scenario,
		"stage", c.Stage,
		"qualification", c.Qualification,
		"archive_key", result.ArchiveKey,
	)
	return result, nil
}

// Trip returns the stored vacation session.
func (e *Engine) Trip(ctx context.Context, sessionID string) (*session.VacationSession, error) {
	if e.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return nil, session.ErrNoSession
	}
	return e.sessions.Load(ctx, sessionID)
}

// ClearTrip forgets the vacation session.
func (e *Engine) ClearTrip(ctx context.Context, sessionID string) error {
	if e.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return e.sessions.Clear(ctx, sessionID)
}

func (e *Engine) complete(ctx context.Context, systemPrompt string, history []ChatMessage) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if len(history) > e.historyLimit {
		history = history[len(history)-e.historyLimit:]
	}

	req := LLMRequest{
		Model:       e.model,
		System:      []string{systemPrompt},
		Messages:    history,
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	}
	started := time.Now()
	resp, err := e.llm.Complete(ctx, req)
	elapsed := time.Since(started).Seconds()
	if err != nil {
		e.metrics.ObserveLLMCall(e.model, false, elapsed, 0, 0)
		return "", err
	}
	e.metrics.ObserveLLMCall(e.model, true, elapsed, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", errors.New("conversation: empty LLM reply")
	}
	return text, nil
}

func (e *Engine) loadSession(ctx context.Context, sessionID string) *session.VacationSession {
	if e.sessions == nil || sessionID == "" {
		return nil
	}
	sess, err := e.sessions.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			e.logger.Warn("failed to load session", "session_id", sessionID, "error", err)
		}
		return nil
	}
	return sess
}

// saveSession folds the planning chat into the trip record and returns the
// session id to carry forward.
func (e *Engine) saveSession(ctx context.Context, scenario string, state *State) string {
	if e.sessions == nil || scenario != ScenarioVacationPlanning {
		return state.SessionID
	}
	var userMessages []string
	for _, msg := range state.History {
		if msg.Role == ChatRoleUser {
			userMessages = append(userMessages, msg.Content)
		}
	}
	details := SessionDetails(userMessages)
	if details.Empty() {
		return state.SessionID
	}
	saved, err := e.sessions.Save(ctx, state.SessionID, details)
	if err != nil {
		e.logger.Warn("failed to save session", "session_id", state.SessionID, "error", err)
		return state.SessionID
	}
	return saved.ID
}

// escalate reports whether the sales desk has been told about the lead.
func (e *Engine) escalate(ctx context.Context, conversationID string, c Context, score LeadScore) bool {
	e.metrics.ObserveEscalation(c.Scenario, string(score.Qualification))
	if e.events == nil {
		return true
	}
	info := c.Customer
	evt := events.LeadEscalatedV1{
		ConversationID: conversationID,
		Scenario:       c.Scenario,
		Stage:          string(c.Stage),
		Score:          score.Score,
		Qualification:  string(score.Qualification),
		Reasons:        score.Reasons,
		NextActions:    score.NextActions,
		Destination:    info.Destination,
		Dates:          info.Dates,
		Travelers:      info.Travelers,
		ContactName:    info.Contact.Name,
		Phone:          info.Contact.Phone,
		Email:          info.Contact.Email,
		OccurredAt:     e.now(),
	}
	if err := e.events.PublishLeadEscalated(ctx, evt); err != nil {
		e.logger.Error("failed to publish lead escalation", "conversation_id", conversationID, "error", err)
		return false
	}
	e.logger.Info("lead escalated to sales",
		"conversation_id", conversationID,
		"scenario", c.Scenario,
		"qualification", score.Qualification,
		"score", score.Score,
	)
	return true
}

func (e *Engine) upsertLead(ctx context.Context, conversationID string, state *State, score LeadScore) {
	if e.leads == nil {
		return
	}
	c := state.Context
	info := c.Customer
	lead := &leads.Lead{
		ID:            conversationID,
		Scenario:      c.Scenario,
		Stage:         string(c.Stage),
		Score:         score.Score,
		Qualification: string(score.Qualification),
		Reasons:       score.Reasons,
		NextActions:   score.NextActions,
		Destination:   info.Destination,
		Dates:         info.Dates,
		Travelers:     info.Travelers,
		Budget:        string(info.Budget),
		ContactName:   info.Contact.Name,
		Phone:         info.Contact.Phone,
		Email:         info.Contact.Email,
		MessageCount:  c.MessageCount,
		Escalated:     c.Escalated,
		CreatedAt:     state.StartedAt,
		UpdatedAt:     e.now(),
	}
	if err := e.leads.Upsert(ctx, lead); err != nil {
		e.logger.Warn("failed to upsert lead snapshot", "conversation_id", conversationID, "error", err)
	}
}

func (e *Engine) recordTranscript(ctx context.Context, conversationID string, state *State, score LeadScore, msgs []ChatMessage) {
	if e.transcripts == nil {
		return
	}
	c := state.Context
	rec := ConversationRecord{
		ID:               conversationID,
		Scenario:         c.Scenario,
		SessionID:        state.SessionID,
		Stage:            c.Stage,
		Qualification:    score.Qualification,
		Score:            score.Score,
		ProposedServices: c.ProposedServices,
		StartedAt:        state.StartedAt,
	}
	if err := e.transcripts.UpsertConversation(ctx, rec); err != nil {
		e.logger.Warn("failed to record conversation", "conversation_id", conversationID, "error", err)
		return
	}
	now := e.now()
	out := make([]TranscriptMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, TranscriptMessage{ConversationID: conversationID, Role: msg.Role, Content: msg.Content, CreatedAt: now})
	}
	if err := e.transcripts.AppendMessages(ctx, conversationID, out); err != nil {
		e.logger.Warn("failed to append transcript", "conversation_id", conversationID, "error", err)
	}
}

func transcriptRecord(conversationID string, state *State, score LeadScore) *archive.TranscriptRecord {
	c := state.Context
	msgs := make([]archive.Message, 0, len(state.History))
	for _, msg := range state.History {
		msgs = append(msgs, archive.Message{Role: msg.Role, Content: msg.Content})
	}
	return &archive.TranscriptRecord{
		ConversationID: conversationID,
		Scenario:       c.Scenario,
		SessionID:      state.SessionID,
		PhoneHash:      archive.HashPhone(c.Customer.Contact.Phone),
		StartedAt:      state.StartedAt,
		Outcome: archive.Outcome{
			Stage:            string(c.Stage),
			Qualification:    string(score.Qualification),
			Score:            score.Score,
			Destination:      c.Customer.Destination,
			ProposedServices: c.ProposedServices,
			ContactCollected: c.Objectives.ContactCollected,
			Escalated:        c.Escalated,
		},
		Messages: msgs,
	}
}

func newConversationID() string {
	return "chat:" + uuid.NewString()
}
