package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/notify"
)

func TestSweep_RemindsTomorrowOnce(t *testing.T) {
	f := newFixture(t)
	sr := createBooking(t, f)

	later := bookingRequest()
	later.PreferredDate = "2026-03-14"
	_, err := f.requests.Create(context.Background(), later, "public")
	require.NoError(t, err)
	f.sent(t)

	res, err := f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{Candidates: 1, Sent: 1}, res)
	assert.Equal(t, []string{customerEmail}, f.sent(t))

	stored, err := f.store.GetByID(context.Background(), sr.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReminderSentAt)
	assert.Len(t, f.store.historyFor(sr.ID, models.HistoryActionReminder), 1)

	res, err = f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{}, res)
	assert.Empty(t, f.sent(t))
}

func TestSweep_FailedSendIsRetried(t *testing.T) {
	f := newFixture(t)
	sr := createBooking(t, f)

	f.sender.Fail = func(string) bool { return true }
	res, err := f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{Candidates: 1, Failed: 1}, res)

	stored, err := f.store.GetByID(context.Background(), sr.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReminderSentAt)

	f.sender.Fail = nil
	res, err = f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{Candidates: 1, Sent: 1}, res)
}

func TestSweep_SkipsClosedRequests(t *testing.T) {
	f := newFixture(t)
	sr := createBooking(t, f)

	_, err := f.requests.Update(context.Background(), sr.ID, statusPtr(models.RequestStatusInProgress), "admin", "")
	require.NoError(t, err)
	f.sent(t)

	res, err := f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Candidates)
}

func TestSweep_MarkFailureCountsAsFailed(t *testing.T) {
	f := newFixture(t)
	createBooking(t, f)
	f.store.markErr = errors.New("connection reset")

	res, err := f.reminders.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ReminderSweepResult{Candidates: 1, Failed: 1}, res)
}

func TestRun_DisabledAndCancelled(t *testing.T) {
	f := newFixture(t)

	done := make(chan struct{})
	go func() {
		f.reminders.Run(context.Background(), 0)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweep did not return")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done = make(chan struct{})
	go func() {
		f.reminders.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep loop ignored cancellation")
	}
}

// gatedSender holds every send until release is closed
type gatedSender struct {
	entered chan string
	release chan struct{}

	mu   sync.Mutex
	sent []string
}

func (g *gatedSender) Send(ctx context.Context, to, _, _ string) bool {
	g.entered <- to
	select {
	case <-g.release:
	case <-ctx.Done():
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, to)
	return true
}

func TestSweep_ConcurrentSweepsSendOnce(t *testing.T) {
	f := newFixture(t)
	createBooking(t, f)

	gate := &gatedSender{entered: make(chan string, 4), release: make(chan struct{})}
	composer, err := notify.NewComposer(notify.Branding{Brand: "HomeSwift", AdminEmail: adminEmail})
	require.NoError(t, err)
	svc := NewReminderService(f.store, f.calc, composer, notify.NewDispatcher(gate, quietLogger(), 5*time.Second), quietLogger())
	svc.now = func() time.Time { return fixedNow }

	var wg sync.WaitGroup
	results := make([]models.ReminderSweepResult, 2)
	sweep := func(i int) {
		defer wg.Done()
		res, err := svc.Sweep(context.Background())
		assert.NoError(t, err)
		results[i] = res
	}

	wg.Add(1)
	go sweep(0)
	select {
	case <-gate.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first sweep never sent")
	}

	wg.Add(1)
	go sweep(1)
	select {
	case to := <-gate.entered:
		t.Fatalf("second sweep sent to %s while the first was in flight", to)
	case <-time.After(100 * time.Millisecond):
	}

	close(gate.release)
	wg.Wait()

	assert.Equal(t, []string{customerEmail}, gate.sent)
	assert.Equal(t, 1, results[0].Sent+results[1].Sent)
	assert.Len(t, f.store.historyFor(1, models.HistoryActionReminder), 1)
}
