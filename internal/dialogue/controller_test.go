package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-report/report-assistant/internal/draft"
	"github.com/civic-report/report-assistant/internal/lexicon"
	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/internal/reports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeCreator struct {
	mu    sync.Mutex
	calls []model.CreateReportRequest
	err   error
	delay time.Duration
}

func (f *fakeCreator) CreateReport(_ context.Context, req model.CreateReportRequest) (*model.CreatedReport, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &model.CreatedReport{
		ID:       fmt.Sprintf("R-%d", len(f.calls)),
		Title:    req.Fields.Title,
		Location: req.Fields.Location,
		Category: req.Fields.Category,
		Urgency:  req.Fields.Urgency,
		Status:   "open",
	}, nil
}

func (f *fakeCreator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeLookup struct {
	reports []model.ReportSummary
	stats   *model.AreaStats
	err     error
	area    string
}

func (f *fakeLookup) ListByOwner(_ context.Context, _ string, limit int) ([]model.ReportSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.reports) > limit {
		return f.reports[:limit], nil
	}
	return f.reports, nil
}

func (f *fakeLookup) AreaStats(_ context.Context, area string) (*model.AreaStats, error) {
	f.area = area
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakeGenerator struct {
	available bool
	reply     string
	err       error
	calls     int
}

func (f *fakeGenerator) Available() bool { return f.available }

func (f *fakeGenerator) Complete(_ context.Context, _ []model.ConversationTurn) (string, error) {
	f.calls++
	return f.reply, f.err
}

type recordingEvents struct {
	mu     sync.Mutex
	events []model.EventType
}

func (r *recordingEvents) Publish(_ context.Context, e *model.DialogueEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
	return nil
}

type harness struct {
	ctrl    *Controller
	store   *draft.MemoryStore
	clock   *fakeClock
	creator *fakeCreator
	lookup  *fakeLookup
	gen     *fakeGenerator
	events  *recordingEvents
	caller  model.CallerContext
	turns   []model.ConversationTurn
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	store, err := draft.NewMemoryStore(draft.MemoryConfig{Now: clock.Now})
	require.NoError(t, err)

	h := &harness{
		store:   store,
		clock:   clock,
		creator: &fakeCreator{},
		lookup:  &fakeLookup{},
		gen:     &fakeGenerator{},
		events:  &recordingEvents{},
		caller:  model.CallerContext{UserID: "u1", Role: "citizen", AreaLabel: "RW 07"},
	}
	h.ctrl = New(Deps{
		Store:     store,
		Creator:   h.creator,
		Lookup:    h.lookup,
		Generator: h.gen,
		Events:    h.events,
	}, Config{})
	return h
}

// say sends a user message with the conversation so far and records the reply.
func (h *harness) say(text string) *model.ChatResponse {
	h.turns = append(h.turns, model.ConversationTurn{Role: model.RoleUser, Content: text})
	resp := h.ctrl.HandleTurn(context.Background(), h.caller, h.turns)
	h.turns = append(h.turns, model.ConversationTurn{Role: model.RoleAssistant, Content: resp.Reply})
	return resp
}

func (h *harness) current(t *testing.T) *model.Draft {
	t.Helper()
	d, err := h.store.Get(context.Background(), h.caller.UserID)
	require.NoError(t, err)
	return d
}

func TestCreateAndConfirm(t *testing.T) {
	h := newHarness(t)

	resp := h.say("lamp is dead at block C")
	require.NotNil(t, resp.ReportData)
	assert.True(t, resp.PreviewMode)
	assert.True(t, resp.AwaitingConfirmation)
	assert.False(t, resp.ReportCreated)
	assert.Equal(t, model.CategoryInfrastructure, resp.ReportData.Category)
	assert.Equal(t, model.UrgencyMedium, resp.ReportData.Urgency)
	assert.Equal(t, "Block C", resp.ReportData.Location)
	assert.Contains(t, resp.ReportData.Title, "Lamp")
	require.NotNil(t, h.current(t))

	pending := h.current(t)
	resp = h.say("send it")
	assert.True(t, resp.ReportCreated)
	assert.Equal(t, "R-1", resp.ReportID)
	require.NotNil(t, resp.Report)
	assert.Contains(t, resp.Reply, "R-1")
	assert.Nil(t, resp.ReportData)

	require.Equal(t, 1, h.creator.count())
	assert.Equal(t, pending.ID, h.creator.calls[0].DraftID)
	assert.Equal(t, "u1", h.creator.calls[0].OwnerID)
	assert.Equal(t, pending.Fields, h.creator.calls[0].Fields)
	assert.Nil(t, h.current(t))

	assert.Equal(t, []model.EventType{model.EventTypeDraftOpened, model.EventTypeDraftConfirmed}, h.events.events)
}

func TestConfirmationCues(t *testing.T) {
	for _, cue := range []string{"looks good", "go ahead", "yes", "submit it", "kirim"} {
		t.Run(cue, func(t *testing.T) {
			h := newHarness(t)
			h.say("the drain near the market is clogged")
			resp := h.say(cue)
			assert.True(t, resp.ReportCreated)
			assert.Equal(t, 1, h.creator.count())
		})
	}
}

func TestHeldBackConfirmationNeverSends(t *testing.T) {
	for _, text := range []string{
		"don't send it yet",
		"don't send it",
		"no, don't send it",
		"let me review first before you send it",
		"wait for my approval before you submit it",
		"don't do it",
	} {
		t.Run(text, func(t *testing.T) {
			h := newHarness(t)
			h.say("lamp is dead at block C")
			before := h.current(t)
			require.NotNil(t, before)

			resp := h.say(text)
			assert.False(t, resp.ReportCreated)
			assert.Zero(t, h.creator.count())

			after := h.current(t)
			require.NotNil(t, after)
			assert.Equal(t, before.ID, after.ID)
		})
	}
}

func TestLooseAcknowledgmentDoesNotSend(t *testing.T) {
	for _, text := range []string{"ok", "sure", "okay thanks"} {
		t.Run(text, func(t *testing.T) {
			h := newHarness(t)
			h.say("lamp is dead at block C")

			resp := h.say(text)
			assert.Equal(t, pendingReminder, resp.Reply)
			assert.Zero(t, h.creator.count())
			assert.NotNil(t, h.current(t))
		})
	}
}

func TestBareYesOnlyAnswersPreview(t *testing.T) {
	h := newHarness(t)
	h.say("lamp is dead at block C")
	h.say("are reports anonymous")

	resp := h.say("yes")
	assert.False(t, resp.ReportCreated)
	assert.Zero(t, h.creator.count())
	require.NotNil(t, h.current(t))

	h.say("show me the draft")
	resp = h.say("yes")
	assert.True(t, resp.ReportCreated)
	assert.Equal(t, 1, h.creator.count())
}

func TestCapabilityQuestionNeverDrafts(t *testing.T) {
	for _, q := range []string{
		"can you create reports automatically?",
		"can you create a report about broken lamps?",
		"what can you do?",
		"is it possible to report a pothole on jl. merdeka?",
	} {
		t.Run(q, func(t *testing.T) {
			h := newHarness(t)
			resp := h.say(q)
			assert.Nil(t, resp.ReportData)
			assert.False(t, resp.ReportCreated)
			assert.Nil(t, h.current(t))
			assert.Zero(t, h.creator.count())
		})
	}
}

func TestInformationalIntentsKeepPendingDraft(t *testing.T) {
	for _, q := range []string{
		"I didn't ask to create anything",
		"not yet",
		"can you send it now?",
		"what's the status of my report?",
		"how many reports are there in my area?",
		"are reports anonymous",
	} {
		t.Run(q, func(t *testing.T) {
			h := newHarness(t)
			h.say("the lamp is dead at block C")
			before := h.current(t)
			require.NotNil(t, before)

			resp := h.say(q)
			assert.Nil(t, resp.ReportData)
			assert.False(t, resp.ReportCreated)
			assert.Zero(t, h.creator.count())

			after := h.current(t)
			require.NotNil(t, after)
			assert.Equal(t, before.ID, after.ID)
		})
	}
}

func TestNegationWhilePendingExplainsHowToCancel(t *testing.T) {
	h := newHarness(t)
	h.say("the lamp is dead at block C")

	resp := h.say("I didn't ask to create anything")
	assert.Equal(t, negationPendingReply, resp.Reply)
	assert.NotNil(t, h.current(t))

	resp = h.say("cancel")
	assert.Equal(t, cancelledReply, resp.Reply)
	assert.Nil(t, h.current(t))
}

func TestCancelIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.say("there's a fallen tree near the basketball court")
	require.NotNil(t, h.current(t))

	resp := h.say("never mind")
	assert.Equal(t, cancelledReply, resp.Reply)
	assert.Nil(t, h.current(t))

	resp = h.say("never mind")
	assert.Equal(t, nothingToCancelReply, resp.Reply)
	assert.Nil(t, h.current(t))
	assert.Zero(t, h.creator.count())
	assert.Equal(t, []model.EventType{model.EventTypeDraftOpened, model.EventTypeDraftCancelled}, h.events.events)
}

func TestConfirmWithoutDraft(t *testing.T) {
	h := newHarness(t)
	resp := h.say("send it")
	assert.Equal(t, nothingToSendReply, resp.Reply)
	assert.False(t, resp.ReportCreated)
	assert.Zero(t, h.creator.count())
}

func TestExpiredDraftCannotBeSent(t *testing.T) {
	h := newHarness(t)
	h.say("the lamp is dead at block C")
	require.NotNil(t, h.current(t))

	h.clock.Advance(11 * time.Minute)
	assert.Nil(t, h.current(t))

	resp := h.say("send it")
	assert.Equal(t, nothingToSendReply, resp.Reply)
	assert.Zero(t, h.creator.count())
}

func TestNewProblemReplacesDraft(t *testing.T) {
	h := newHarness(t)
	h.say("the lamp is dead at block C")
	first := h.current(t)

	resp := h.say("also the drain at RT 3 is clogged")
	require.NotNil(t, resp.ReportData)
	assert.True(t, strings.HasPrefix(resp.Reply, "I've updated your draft"))
	second := h.current(t)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "Clogged Drain — RT 3", second.Fields.Title)
	assert.NotContains(t, second.Fields.Description, "lamp")
}

func TestCreationFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.creator.err = fmt.Errorf("dial: %w", reports.ErrUnavailable)
	h.say("the lamp is dead at block C")
	pending := h.current(t)

	resp := h.say("send it")
	assert.False(t, resp.ReportCreated)
	assert.Equal(t, createFailedReply, resp.Reply)
	assert.True(t, resp.AwaitingConfirmation)
	require.NotNil(t, h.current(t))
	assert.Equal(t, pending.ID, h.current(t).ID)

	h.creator.err = nil
	resp = h.say("send it")
	assert.True(t, resp.ReportCreated)
	assert.Equal(t, 2, h.creator.count())
	assert.Equal(t, pending.ID, h.creator.calls[1].DraftID)
	assert.Nil(t, h.current(t))
}

func TestCreationRejectedKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.creator.err = &reports.Error{StatusCode: 422, Message: "invalid location"}
	h.say("the lamp is dead at block C")

	resp := h.say("send it")
	assert.False(t, resp.ReportCreated)
	assert.Contains(t, resp.Reply, "could not accept")
	assert.NotNil(t, h.current(t))
}

func TestConcurrentConfirmationsCreateOnce(t *testing.T) {
	h := newHarness(t)
	h.creator.delay = 20 * time.Millisecond
	h.say("the lamp is dead at block C")
	turns := append([]model.ConversationTurn(nil), h.turns...)
	turns = append(turns, model.ConversationTurn{Role: model.RoleUser, Content: "send it"})

	var created int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.ctrl.HandleTurn(context.Background(), h.caller, turns).ReportCreated {
				atomic.AddInt32(&created, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created)
	assert.Equal(t, 1, h.creator.count())
	assert.Nil(t, h.current(t))
}

func TestDraftsAreIsolatedPerOwner(t *testing.T) {
	h := newHarness(t)
	h.say("the lamp is dead at block C")

	other := model.CallerContext{UserID: "u2"}
	resp := h.ctrl.HandleTurn(context.Background(), other, []model.ConversationTurn{
		{Role: model.RoleUser, Content: "send it"},
	})
	assert.Equal(t, nothingToSendReply, resp.Reply)
	assert.NotNil(t, h.current(t))
}

func TestAcknowledgmentNeverDrafts(t *testing.T) {
	for _, text := range []string{"ok", "thanks!", "yes"} {
		t.Run(text, func(t *testing.T) {
			h := newHarness(t)
			resp := h.say(text)
			assert.Equal(t, closingReply, resp.Reply)
			assert.Nil(t, h.current(t))
		})
	}
}

func TestAffirmativeAfterOfferBuildsDraft(t *testing.T) {
	h := newHarness(t)
	h.turns = []model.ConversationTurn{
		{Role: model.RoleUser, Content: "the drain near the market is clogged"},
		{Role: model.RoleAssistant, Content: "That sounds unpleasant. " + lexicon.OfferPrompt},
	}

	resp := h.say("yes")
	require.NotNil(t, resp.ReportData)
	assert.Equal(t, "Clogged Drain — Market", resp.ReportData.Title)
	assert.Equal(t, "the drain near the market is clogged", resp.ReportData.Description)
	assert.NotNil(t, h.current(t))
}

func TestCapabilityReplyOffersDraftForRecentProblem(t *testing.T) {
	h := newHarness(t)
	h.turns = []model.ConversationTurn{
		{Role: model.RoleUser, Content: "the drain near the market is clogged"},
		{Role: model.RoleAssistant, Content: "I see."},
	}
	resp := h.say("what can you do?")
	assert.Contains(t, resp.Reply, lexicon.OfferPrompt)
	assert.Nil(t, h.current(t))

	resp = h.say("ok, create it")
	require.NotNil(t, resp.ReportData)
	assert.Equal(t, "Clogged Drain — Market", resp.ReportData.Title)
}

func TestHandoffIgnoresClosedTopics(t *testing.T) {
	h := newHarness(t)
	h.say("the road near the school has a huge pothole")
	h.say("cancel")
	h.say("there is garbage piling up at the village hall")
	h.say("never mind")

	// The cancelled topics are closed, so a bare handoff needs more detail.
	resp := h.say("please create the report")
	assert.Equal(t, clarifyReply, resp.Reply)
	assert.Nil(t, h.current(t))
}

func TestUnderflowAsksForDetail(t *testing.T) {
	h := newHarness(t)
	resp := h.say("I want to report something")
	assert.Equal(t, clarifyReply, resp.Reply)
	assert.Nil(t, h.current(t))
}

func TestPreview(t *testing.T) {
	h := newHarness(t)
	resp := h.say("show me the draft")
	assert.Equal(t, previewIdleReply, resp.Reply)

	h.say("the lamp is dead at block C")
	resp = h.say("let me review it first")
	require.NotNil(t, resp.ReportData)
	assert.True(t, resp.AwaitingConfirmation)
	assert.Zero(t, h.creator.count())
}

func TestStatusAndStats(t *testing.T) {
	h := newHarness(t)
	h.lookup.reports = []model.ReportSummary{
		{ID: "R-9", Title: "Street Lamp Out — Block C", Status: "in_progress"},
	}
	h.lookup.stats = &model.AreaStats{Area: "RW 07", Total: 12, ByStatus: map[string]int{"resolved": 7, "open": 5}}

	resp := h.say("what's the status of my report?")
	assert.Contains(t, resp.Reply, "R-9: Street Lamp Out — Block C (in progress)")

	resp = h.say("how many reports are there in my area?")
	assert.Equal(t, "There are 12 reports for RW 07: 5 open, 7 resolved.", resp.Reply)
	assert.Equal(t, "RW 07", h.lookup.area)

	h.lookup.err = errors.New("timeout")
	resp = h.say("what's the status of my report?")
	assert.Equal(t, statusUnavailableReply, resp.Reply)
}

func TestFAQ(t *testing.T) {
	h := newHarness(t)
	resp := h.say("how long does it take to get a response?")
	assert.Contains(t, resp.Reply, "working days")
	resp = h.say("are reports anonymous")
	assert.Contains(t, resp.Reply, "not shown publicly")
}

func TestFallback(t *testing.T) {
	h := newHarness(t)
	resp := h.say("good morning, nice weather today")
	assert.Equal(t, helpMenu, resp.Reply)
	assert.Zero(t, h.gen.calls)

	h.gen.available = true
	h.gen.reply = "Good morning! How can I help?"
	resp = h.say("good morning, nice weather today")
	assert.Equal(t, "Good morning! How can I help?", resp.Reply)

	h.gen.err = errors.New("quota exceeded")
	resp = h.say("good morning, nice weather today")
	assert.Equal(t, helpMenu, resp.Reply)
	assert.Nil(t, h.current(t))
}

func TestEmptyConversation(t *testing.T) {
	h := newHarness(t)
	resp := h.ctrl.HandleTurn(context.Background(), h.caller, nil)
	assert.Equal(t, helpMenu, resp.Reply)

	resp = h.ctrl.HandleTurn(context.Background(), h.caller, []model.ConversationTurn{
		{Role: model.RoleAssistant, Content: "Hi! How can I help?"},
	})
	assert.Equal(t, helpMenu, resp.Reply)
}

func TestCancelAPI(t *testing.T) {
	h := newHarness(t)
	h.say("the lamp is dead at block C")

	d, err := h.ctrl.CurrentDraft(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, d)

	existed, err := h.ctrl.Cancel(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = h.ctrl.Cancel(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, existed)
}

type failingStore struct{ draft.Store }

func (failingStore) Get(context.Context, string) (*model.Draft, error) {
	return nil, errors.New("connection refused")
}

func TestStoreFailureRepliesRetry(t *testing.T) {
	ctrl := New(Deps{Store: failingStore{}, Creator: &fakeCreator{}}, Config{})
	resp := ctrl.HandleTurn(context.Background(), model.CallerContext{UserID: "u1"}, []model.ConversationTurn{
		{Role: model.RoleUser, Content: "the lamp is dead at block C"},
	})
	assert.Equal(t, retryReply, resp.Reply)
}
