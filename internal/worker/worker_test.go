package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/domain/conversation"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/domain/llm"
	"homehub/assistant-api/internal/domain/turn"
	"homehub/assistant-api/internal/worker"
)

// MockJobQueue is a mock implementation of job.Queue.
type MockJobQueue struct {
	EnqueueFunc       func(ctx context.Context, j *job.TurnJob) error
	DequeueFunc       func(ctx context.Context) (*job.TurnJob, error)
	MarkCompletedFunc func(ctx context.Context, publicID, resultText string) error
	MarkFailedFunc    func(ctx context.Context, publicID, errMsg string) error
	RequeueStaleFunc  func(ctx context.Context, olderThan time.Duration, maxAttempts int) (int, error)
	PurgeTerminalFunc func(ctx context.Context, olderThan time.Duration) (int, error)
	DepthFunc         func(ctx context.Context) (int64, error)
}

func (m *MockJobQueue) Enqueue(ctx context.Context, j *job.TurnJob) error {
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, j)
	}
	return nil
}

func (m *MockJobQueue) Dequeue(ctx context.Context) (*job.TurnJob, error) {
	if m.DequeueFunc != nil {
		return m.DequeueFunc(ctx)
	}
	return nil, nil
}

func (m *MockJobQueue) MarkCompleted(ctx context.Context, publicID, resultText string) error {
	if m.MarkCompletedFunc != nil {
		return m.MarkCompletedFunc(ctx, publicID, resultText)
	}
	return nil
}

func (m *MockJobQueue) MarkFailed(ctx context.Context, publicID, errMsg string) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, publicID, errMsg)
	}
	return nil
}

func (m *MockJobQueue) RequeueStale(ctx context.Context, olderThan time.Duration, maxAttempts int) (int, error) {
	if m.RequeueStaleFunc != nil {
		return m.RequeueStaleFunc(ctx, olderThan, maxAttempts)
	}
	return 0, nil
}

func (m *MockJobQueue) PurgeTerminal(ctx context.Context, olderThan time.Duration) (int, error) {
	if m.PurgeTerminalFunc != nil {
		return m.PurgeTerminalFunc(ctx, olderThan)
	}
	return 0, nil
}

func (m *MockJobQueue) Depth(ctx context.Context) (int64, error) {
	if m.DepthFunc != nil {
		return m.DepthFunc(ctx)
	}
	return 0, nil
}

// MockTurnService is a mock implementation of turn.Service.
type MockTurnService struct {
	RunFunc func(ctx context.Context, params turn.RunParams) (*turn.Result, error)
}

func (m *MockTurnService) Run(ctx context.Context, params turn.RunParams) (*turn.Result, error) {
	if m.RunFunc != nil {
		return m.RunFunc(ctx, params)
	}
	return nil, nil
}

// MockSessions is a mock implementation of conversation.Service. The worker
// only resolves the channel conversation; the rest return zero values.
type MockSessions struct {
	ResolveForChannelFunc func(ctx context.Context, userID, channel string) (*conversation.Conversation, error)
}

func (m *MockSessions) ResolveOrCreate(ctx context.Context, publicID, userID, channel string) (*conversation.Conversation, error) {
	return nil, nil
}

func (m *MockSessions) ResolveForChannel(ctx context.Context, userID, channel string) (*conversation.Conversation, error) {
	if m.ResolveForChannelFunc != nil {
		return m.ResolveForChannelFunc(ctx, userID, channel)
	}
	return &conversation.Conversation{ID: 1, PublicID: "conv_slack"}, nil
}

func (m *MockSessions) GetOwned(ctx context.Context, publicID, userID string) (*conversation.Conversation, error) {
	return nil, nil
}

func (m *MockSessions) AppendMessage(ctx context.Context, conversationID uint, msg conversation.Message) (*conversation.Message, error) {
	return &msg, nil
}

func (m *MockSessions) AppendMessages(ctx context.Context, conversationID uint, msgs []conversation.Message) error {
	return nil
}

func (m *MockSessions) LoadWindow(ctx context.Context, conversationID uint, maxMessages int) ([]conversation.Message, error) {
	return nil, nil
}

func (m *MockSessions) UpdateSummary(ctx context.Context, conversationID uint, summary string) error {
	return nil
}

func (m *MockSessions) RecordAction(ctx context.Context, action *conversation.Action) error {
	return nil
}

func (m *MockSessions) ListConversations(ctx context.Context, userID string, p conversation.Pagination) ([]conversation.Conversation, error) {
	return nil, nil
}

func (m *MockSessions) ListMessages(ctx context.Context, conversationID uint) ([]conversation.Message, error) {
	return nil, nil
}

func (m *MockSessions) ListActions(ctx context.Context, conversationID uint) ([]conversation.Action, error) {
	return nil, nil
}

// MockNotifier is a mock implementation of webhook.Notifier.
type MockNotifier struct {
	NotifyResultFunc  func(ctx context.Context, callbackURL, text string) error
	NotifyFailureFunc func(ctx context.Context, callbackURL, message string) error
}

func (m *MockNotifier) NotifyResult(ctx context.Context, callbackURL, text string) error {
	if m.NotifyResultFunc != nil {
		return m.NotifyResultFunc(ctx, callbackURL, text)
	}
	return nil
}

func (m *MockNotifier) NotifyFailure(ctx context.Context, callbackURL, message string) error {
	if m.NotifyFailureFunc != nil {
		return m.NotifyFailureFunc(ctx, callbackURL, message)
	}
	return nil
}

// singleJobQueue hands out the job exactly once.
func singleJobQueue(j *job.TurnJob) *MockJobQueue {
	var mu sync.Mutex
	delivered := false
	return &MockJobQueue{
		DequeueFunc: func(ctx context.Context) (*job.TurnJob, error) {
			mu.Lock()
			defer mu.Unlock()
			if delivered {
				return nil, nil
			}
			delivered = true
			return j, nil
		},
	}
}

func waitFor(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestWorker_ProcessesJobSuccessfully(t *testing.T) {
	j := job.NewTurnJob("user-1", "slack", "Give me an overview of my tasks.", "https://hooks.slack.com/commands/T01/42/abc")

	queue := singleJobQueue(j)
	var completedID, completedText string
	queue.MarkCompletedFunc = func(ctx context.Context, publicID, resultText string) error {
		completedID = publicID
		completedText = resultText
		return nil
	}

	var runParams turn.RunParams
	turns := &MockTurnService{
		RunFunc: func(ctx context.Context, params turn.RunParams) (*turn.Result, error) {
			runParams = params
			return &turn.Result{
				ResponseText:         "Three tasks open, one due today.",
				ConversationPublicID: "conv_slack",
				Tier:                 llm.TierFast,
			}, nil
		},
	}

	done := make(chan struct{})
	var notifiedURL, notifiedText string
	notifier := &MockNotifier{
		NotifyResultFunc: func(ctx context.Context, callbackURL, text string) error {
			notifiedURL = callbackURL
			notifiedText = text
			close(done)
			return nil
		},
	}

	w := worker.NewWorker(1, queue, turns, &MockSessions{}, notifier,
		time.Second, 5*time.Millisecond, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(context.Background())
	}()

	waitFor(t, done, "the deferred turn to complete")
	w.Stop()
	wg.Wait()

	if runParams.ConversationPublicID != "conv_slack" {
		t.Errorf("turn ConversationPublicID = %q, want conv_slack", runParams.ConversationPublicID)
	}
	if runParams.Channel != "slack" || runParams.UserID != "user-1" {
		t.Errorf("turn params = %+v", runParams)
	}
	if runParams.Message != "Give me an overview of my tasks." {
		t.Errorf("turn Message = %q", runParams.Message)
	}

	if completedID != j.PublicID {
		t.Errorf("completed job = %q, want %q", completedID, j.PublicID)
	}
	if completedText != "Three tasks open, one due today." {
		t.Errorf("completed result text = %q", completedText)
	}

	if notifiedURL != j.CallbackURL {
		t.Errorf("callback URL = %q, want %q", notifiedURL, j.CallbackURL)
	}
	if notifiedText != "Three tasks open, one due today." {
		t.Errorf("callback text = %q", notifiedText)
	}
}

func TestWorker_MarksFailedAndNotifies(t *testing.T) {
	j := job.NewTurnJob("user-1", "slack", "break please", "https://hooks.slack.com/commands/T01/42/abc")

	queue := singleJobQueue(j)
	var failedID, failedMsg string
	queue.MarkFailedFunc = func(ctx context.Context, publicID, errMsg string) error {
		failedID = publicID
		failedMsg = errMsg
		return nil
	}

	turns := &MockTurnService{
		RunFunc: func(ctx context.Context, params turn.RunParams) (*turn.Result, error) {
			return nil, errors.New("model call failed")
		},
	}

	done := make(chan struct{})
	resultNotified := false
	var failureText string
	notifier := &MockNotifier{
		NotifyResultFunc: func(ctx context.Context, callbackURL, text string) error {
			resultNotified = true
			return nil
		},
		NotifyFailureFunc: func(ctx context.Context, callbackURL, message string) error {
			failureText = message
			close(done)
			return nil
		},
	}

	w := worker.NewWorker(1, queue, turns, &MockSessions{}, notifier,
		time.Second, 5*time.Millisecond, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Start(context.Background())
	}()

	waitFor(t, done, "the failure callback")
	w.Stop()
	wg.Wait()

	if failedID != j.PublicID {
		t.Errorf("failed job = %q, want %q", failedID, j.PublicID)
	}
	if failedMsg != "model call failed" {
		t.Errorf("failure message = %q", failedMsg)
	}
	if failureText != worker.FailureNotice {
		t.Errorf("failure notice = %q, want %q", failureText, worker.FailureNotice)
	}
	if resultNotified {
		t.Error("NotifyResult must not run for a failed turn")
	}
}

func TestWorker_StopEndsPolling(t *testing.T) {
	w := worker.NewWorker(1, &MockJobQueue{}, &MockTurnService{}, &MockSessions{},
		&MockNotifier{}, time.Second, 5*time.Millisecond, zerolog.Nop())

	stopped := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(stopped)
	}()

	time.Sleep(20 * time.Millisecond)
	w.Stop()
	waitFor(t, stopped, "the worker to stop")
}

func TestPool_RunsWorkersToCompletion(t *testing.T) {
	j := job.NewTurnJob("user-1", "slack", "overview", "https://hooks.slack.com/commands/T01/42/abc")
	queue := singleJobQueue(j)

	done := make(chan struct{})
	notifier := &MockNotifier{
		NotifyResultFunc: func(ctx context.Context, callbackURL, text string) error {
			close(done)
			return nil
		},
	}
	turns := &MockTurnService{
		RunFunc: func(ctx context.Context, params turn.RunParams) (*turn.Result, error) {
			return &turn.Result{ResponseText: "done", ConversationPublicID: "conv_slack"}, nil
		},
	}

	pool := worker.NewPool(queue, turns, &MockSessions{}, notifier, worker.Config{
		WorkerCount:  2,
		TaskTimeout:  time.Second,
		PollInterval: 5 * time.Millisecond,
	}, zerolog.Nop())

	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, done, "the pool to process the job")
	pool.Stop()
}
