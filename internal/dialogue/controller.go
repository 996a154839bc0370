// Package dialogue runs the per-owner report drafting conversation: it
// classifies each turn, opens or replaces drafts, confirms or cancels them,
// and answers informational questions without touching drafts.
package dialogue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/civic-report/report-assistant/internal/draft"
	"github.com/civic-report/report-assistant/internal/extract"
	"github.com/civic-report/report-assistant/internal/intent"
	"github.com/civic-report/report-assistant/internal/lexicon"
	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/internal/reports"
	"github.com/civic-report/report-assistant/pkg/metrics"
)

const (
	defaultCreateTimeout  = 15 * time.Second
	defaultPublishTimeout = 2 * time.Second
	defaultStatusLimit    = 3
)

// ReportCreator persists a confirmed draft.
type ReportCreator interface {
	CreateReport(ctx context.Context, req model.CreateReportRequest) (*model.CreatedReport, error)
}

// ReportLookup answers status and statistics questions.
type ReportLookup interface {
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]model.ReportSummary, error)
	AreaStats(ctx context.Context, area string) (*model.AreaStats, error)
}

// Generator writes free-form replies when no rule applies.
type Generator interface {
	Available() bool
	Complete(ctx context.Context, turns []model.ConversationTurn) (string, error)
}

// EventPublisher records draft lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.DialogueEvent) error
}

// Deps are the collaborators of a Controller. Store and Creator are required.
type Deps struct {
	Store      draft.Store
	Creator    ReportCreator
	Lookup     ReportLookup
	Generator  Generator
	Events     EventPublisher
	Classifier *intent.Classifier
	Extractor  *extract.Extractor
	Logger     *zap.Logger
}

// Config tunes a Controller.
type Config struct {
	DraftTTL      time.Duration
	CreateTimeout time.Duration
	StatusLimit   int
}

// Controller handles chat turns. It is safe for concurrent use; turns from
// the same owner are serialized.
type Controller struct {
	store      draft.Store
	locks      *draft.OwnerLocks
	creator    ReportCreator
	lookup     ReportLookup
	generator  Generator
	events     EventPublisher
	classifier *intent.Classifier
	extractor  *extract.Extractor
	logger     *zap.Logger
	tracer     trace.Tracer
	cfg        Config
}

// New creates a Controller.
func New(deps Deps, cfg Config) *Controller {
	if deps.Classifier == nil {
		deps.Classifier = intent.New()
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = draft.DefaultTTL
	}
	if cfg.CreateTimeout <= 0 {
		cfg.CreateTimeout = defaultCreateTimeout
	}
	if cfg.StatusLimit <= 0 {
		cfg.StatusLimit = defaultStatusLimit
	}

	return &Controller{
		store:      deps.Store,
		locks:      draft.NewOwnerLocks(),
		creator:    deps.Creator,
		lookup:     deps.Lookup,
		generator:  deps.Generator,
		events:     deps.Events,
		classifier: deps.Classifier,
		extractor:  deps.Extractor,
		logger:     deps.Logger,
		tracer:     otel.Tracer("report-assistant/dialogue"),
		cfg:        cfg,
	}
}

// turn is the state of one chat turn being handled.
type turn struct {
	caller    model.CallerContext
	turns     []model.ConversationTurn
	history   []model.ConversationTurn
	utterance string
	text      string
	result    intent.Result
	draft     *model.Draft
	logger    *zap.Logger
}

// HandleTurn answers the last user message in turns. It never fails: every
// error is logged and turned into a reply.
func (c *Controller) HandleTurn(ctx context.Context, caller model.CallerContext, turns []model.ConversationTurn) *model.ChatResponse {
	ctx, span := c.tracer.Start(ctx, "dialogue.HandleTurn")
	defer span.End()

	t := &turn{
		caller: caller,
		turns:  turns,
		logger: c.logger.With(zap.String("user_id", caller.UserID)),
	}
	t.utterance, t.history = splitLast(turns)
	t.text = lexicon.Normalize(t.utterance)
	if t.text == "" {
		return &model.ChatResponse{Reply: helpMenu}
	}

	t.result = c.classifier.Classify(t.utterance)
	metrics.RecordIntent(string(t.result.Intent), t.result.Confidence)
	span.SetAttributes(
		attribute.String("dialogue.intent", string(t.result.Intent)),
		attribute.String("dialogue.rule", t.result.Rule),
	)
	t.logger = t.logger.With(zap.String("intent", string(t.result.Intent)))
	t.logger.Debug("classified turn",
		zap.String("rule", t.result.Rule),
		zap.Float64("confidence", t.result.Confidence),
	)

	unlock := c.locks.Lock(caller.UserID)
	defer unlock()

	d, err := c.store.Get(ctx, caller.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "draft lookup failed")
		t.logger.Error("failed to load draft", zap.Error(err))
		return &model.ChatResponse{Reply: retryReply}
	}
	t.draft = d

	if d != nil {
		span.SetAttributes(attribute.Bool("dialogue.draft_pending", true))
		t.logger = t.logger.With(zap.String("draft_id", d.ID))
		return c.handlePending(ctx, t)
	}
	return c.handleIdle(ctx, t)
}

func (c *Controller) handlePending(ctx context.Context, t *turn) *model.ChatResponse {
	switch {
	case t.result.Intent.Informational():
		return c.answer(ctx, t)
	case lexicon.IsCancellation(t.text):
		return c.cancel(ctx, t)
	case t.result.Intent == intent.PreviewReport:
		return previewResponse(t.draft, draftPreview(t.draft, false, c.ttlMinutes()))
	case confirms(t):
		return c.confirm(ctx, t)
	case t.result.Intent == intent.CreateReport:
		return c.openDraft(ctx, t)
	default:
		return &model.ChatResponse{Reply: pendingReminder}
	}
}

func (c *Controller) handleIdle(ctx context.Context, t *turn) *model.ChatResponse {
	switch {
	case t.result.Intent.Informational():
		return c.answer(ctx, t)
	case t.result.Intent == intent.CreateReport:
		return c.openDraft(ctx, t)
	case lexicon.IsCancellation(t.text):
		return &model.ChatResponse{Reply: nothingToCancelReply}
	case acceptsOffer(t):
		return c.openDraft(ctx, t)
	case lexicon.IsConfirmation(t.text):
		return &model.ChatResponse{Reply: nothingToSendReply}
	case t.result.Intent == intent.PreviewReport:
		return &model.ChatResponse{Reply: previewIdleReply}
	case lexicon.IsAcknowledgment(t.text):
		return &model.ChatResponse{Reply: closingReply}
	default:
		return c.fallback(ctx, t)
	}
}

// confirms reports whether the utterance approves the pending draft: an
// explicit, non-negated confirmation cue, or a bare "yes" answering the
// preview the assistant just showed.
func confirms(t *turn) bool {
	if lexicon.HasProblem(t.text) {
		return false
	}
	if lexicon.IsConfirmation(t.text) {
		return true
	}
	if len(t.history) == 0 || !lexicon.IsApproval(t.text) {
		return false
	}
	last := t.history[len(t.history)-1]
	return last.Role == model.RoleAssistant && lexicon.AskedForReview(last.Content)
}

// acceptsOffer reports whether the utterance says yes to a draft the
// assistant offered in its previous reply.
func acceptsOffer(t *turn) bool {
	if len(t.history) == 0 {
		return false
	}
	last := t.history[len(t.history)-1]
	if last.Role != model.RoleAssistant || !lexicon.OfferedDraft(last.Content) {
		return false
	}
	return lexicon.IsAffirmative(t.text) || lexicon.ContinuationTriggers.Match(t.text)
}

// openDraft extracts fields and stores them as the owner's draft, replacing
// any previous one.
func (c *Controller) openDraft(ctx context.Context, t *turn) *model.ChatResponse {
	a := c.extractor.Extract(ctx, t.utterance, t.history, t.caller.AreaLabel)
	if a.Underflow {
		t.logger.Debug("not enough detail to draft a report")
		return &model.ChatResponse{Reply: clarifyReply}
	}

	d, err := c.store.Put(ctx, t.caller.UserID, a.Fields)
	if err != nil {
		t.logger.Error("failed to store draft", zap.Error(err))
		return &model.ChatResponse{Reply: retryReply}
	}

	replaced := t.draft != nil
	action, eventType := "opened", model.EventTypeDraftOpened
	if replaced {
		action, eventType = "replaced", model.EventTypeDraftReplaced
	}
	metrics.RecordDraft(action)
	t.logger.Info("draft "+action,
		zap.String("draft_id", d.ID),
		zap.String("category", string(d.Fields.Category)),
		zap.String("urgency", string(d.Fields.Urgency)),
		zap.Bool("used_history", a.UsedHistory),
	)
	c.publish(ctx, t, eventType, d.ID, "")

	return previewResponse(d, draftPreview(d, replaced, c.ttlMinutes()))
}

// confirm hands the pending draft to the report backend. The draft is only
// deleted once the backend accepted it.
func (c *Controller) confirm(ctx context.Context, t *turn) *model.ChatResponse {
	d := t.draft

	createCtx, cancel := context.WithTimeout(ctx, c.cfg.CreateTimeout)
	defer cancel()

	created, err := c.creator.CreateReport(createCtx, model.CreateReportRequest{
		OwnerID: t.caller.UserID,
		DraftID: d.ID,
		Fields:  d.Fields,
	})
	if err != nil {
		t.logger.Warn("report creation failed, keeping draft", zap.Error(err))
		c.publish(ctx, t, model.EventTypeReportFailed, d.ID, err.Error())

		reply := createFailedReply
		if errors.Is(err, reports.ErrRejected) {
			reply = "The report service could not accept this draft. You can describe the problem again " +
				"to update it, or say \"cancel\" to discard it."
		}
		return previewResponse(d, reply)
	}

	if _, err := c.store.Delete(ctx, t.caller.UserID); err != nil {
		t.logger.Error("failed to delete confirmed draft", zap.Error(err))
	}
	metrics.RecordDraft("confirmed")
	t.logger.Info("report created", zap.String("report_id", created.ID))
	c.publish(ctx, t, model.EventTypeDraftConfirmed, d.ID, "")

	return &model.ChatResponse{
		Reply:         createdReply(created),
		ReportCreated: true,
		ReportID:      created.ID,
		Report:        created,
	}
}

func (c *Controller) cancel(ctx context.Context, t *turn) *model.ChatResponse {
	if _, err := c.store.Delete(ctx, t.caller.UserID); err != nil {
		t.logger.Error("failed to delete draft", zap.Error(err))
		return &model.ChatResponse{Reply: retryReply}
	}
	metrics.RecordDraft("cancelled")
	t.logger.Info("draft cancelled")
	c.publish(ctx, t, model.EventTypeDraftCancelled, t.draft.ID, "user")
	return &model.ChatResponse{Reply: cancelledReply}
}

// answer replies to an informational intent. It never touches the draft store.
func (c *Controller) answer(ctx context.Context, t *turn) *model.ChatResponse {
	switch t.result.Intent {
	case intent.Negation:
		if t.draft != nil {
			return &model.ChatResponse{Reply: negationPendingReply}
		}
		return &model.ChatResponse{Reply: negationIdleReply}
	case intent.CheckStatus:
		return &model.ChatResponse{Reply: c.status(ctx, t)}
	case intent.AskStats:
		return &model.ChatResponse{Reply: c.stats(ctx, t)}
	case intent.AskFaq:
		return &model.ChatResponse{Reply: faqAnswer(t.text)}
	default:
		reply := capabilityReply
		if t.draft != nil {
			reply += " " + pendingReminder
		} else if mentionsProblem(t) {
			reply += " " + lexicon.OfferPrompt
		}
		return &model.ChatResponse{Reply: reply}
	}
}

// mentionsProblem reports whether the utterance or a recent user turn
// describes a problem worth offering a draft for.
func mentionsProblem(t *turn) bool {
	if lexicon.HasProblem(t.text) {
		return true
	}
	for i, seen := len(t.history)-1, 0; i >= 0 && seen < extract.DefaultContextTurns; i, seen = i-1, seen+1 {
		h := t.history[i]
		if h.Role == model.RoleAssistant && lexicon.ClosesTopic(h.Content) {
			return false
		}
		if h.Role == model.RoleUser && lexicon.HasProblem(lexicon.Normalize(h.Content)) {
			return true
		}
	}
	return false
}

func (c *Controller) status(ctx context.Context, t *turn) string {
	if c.lookup == nil {
		return statusUnavailableReply
	}
	list, err := c.lookup.ListByOwner(ctx, t.caller.UserID, c.cfg.StatusLimit)
	if err != nil {
		t.logger.Warn("status lookup failed", zap.Error(err))
		return statusUnavailableReply
	}
	return statusReply(list)
}

func (c *Controller) stats(ctx context.Context, t *turn) string {
	if c.lookup == nil {
		return statsUnavailableReply
	}
	s, err := c.lookup.AreaStats(ctx, t.caller.AreaLabel)
	if err != nil {
		t.logger.Warn("stats lookup failed", zap.Error(err))
		return statsUnavailableReply
	}
	return statsReply(s)
}

// fallback asks the generator for a reply, or returns the help menu.
func (c *Controller) fallback(ctx context.Context, t *turn) *model.ChatResponse {
	if c.generator == nil || !c.generator.Available() {
		return &model.ChatResponse{Reply: helpMenu}
	}
	reply, err := c.generator.Complete(ctx, t.turns)
	if err != nil {
		t.logger.Warn("generator failed, using help menu", zap.Error(err))
		return &model.ChatResponse{Reply: helpMenu}
	}
	return &model.ChatResponse{Reply: reply}
}

// CurrentDraft returns the owner's live draft, or nil.
func (c *Controller) CurrentDraft(ctx context.Context, ownerID string) (*model.Draft, error) {
	return c.store.Get(ctx, ownerID)
}

// Cancel discards the owner's draft and reports whether one existed.
func (c *Controller) Cancel(ctx context.Context, ownerID string) (bool, error) {
	unlock := c.locks.Lock(ownerID)
	defer unlock()

	d, err := c.store.Get(ctx, ownerID)
	if err != nil || d == nil {
		return false, err
	}
	if _, err := c.store.Delete(ctx, ownerID); err != nil {
		return false, err
	}
	metrics.RecordDraft("cancelled")
	t := &turn{caller: model.CallerContext{UserID: ownerID}, logger: c.logger.With(zap.String("user_id", ownerID))}
	c.publish(ctx, t, model.EventTypeDraftCancelled, d.ID, "api")
	return true, nil
}

func (c *Controller) publish(ctx context.Context, t *turn, eventType model.EventType, draftID, reason string) {
	if c.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	err := c.events.Publish(ctx, &model.DialogueEvent{
		ID:        uuid.NewString(),
		OwnerID:   t.caller.UserID,
		DraftID:   draftID,
		Type:      eventType,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.logger.Warn("failed to publish dialogue event",
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
	}
}

func (c *Controller) ttlMinutes() int {
	return int(c.cfg.DraftTTL / time.Minute)
}

func previewResponse(d *model.Draft, reply string) *model.ChatResponse {
	fields := d.Fields
	return &model.ChatResponse{
		Reply:                reply,
		ReportData:           &fields,
		PreviewMode:          true,
		AwaitingConfirmation: true,
	}
}

// splitLast returns the last user message and the turns before it.
func splitLast(turns []model.ConversationTurn) (string, []model.ConversationTurn) {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == model.RoleUser {
			return turns[i].Content, turns[:i]
		}
	}
	return "", turns
}
