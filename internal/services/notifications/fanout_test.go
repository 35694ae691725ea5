package notifications

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"firewatch-go/internal/config"
	"firewatch-go/internal/jobs"
	"firewatch-go/internal/models"
)

// inlineQueue runs every enqueued job synchronously.
type inlineQueue struct {
	names []string
}

func (q *inlineQueue) Enqueue(job jobs.Job) bool {
	q.names = append(q.names, job.Name)
	job.Run(context.Background())
	return true
}

// deferredQueue holds jobs until the test releases them.
type deferredQueue struct {
	jobs []jobs.Job
}

func (q *deferredQueue) Enqueue(job jobs.Job) bool {
	q.jobs = append(q.jobs, job)
	return true
}

func (q *deferredQueue) runAll() {
	for _, job := range q.jobs {
		job.Run(context.Background())
	}
}

type fakeBroadcaster struct {
	calls int
	err   error
}

func (b *fakeBroadcaster) PublishAlertCreated(alert *models.Alert) error {
	b.calls++
	return b.err
}

type fakeMailer struct {
	calls int
	image *InlineImage
}

func (m *fakeMailer) SendAlertEmail(ctx context.Context, alert *models.Alert, image *InlineImage) error {
	m.calls++
	m.image = image
	return nil
}

type fakeChat struct {
	calls      int
	sourceName string
}

func (c *fakeChat) Send(ctx context.Context, alert *models.Alert, sourceName string) {
	c.calls++
	c.sourceName = sourceName
}

func TestDispatchDeliversOnAllChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.jpg")
	if err := os.WriteFile(path, []byte("frame"), 0o644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	queue := &inlineQueue{}
	broadcaster := &fakeBroadcaster{}
	mailer := &fakeMailer{}
	chat := &fakeChat{}

	fanout := NewFanout(&config.Config{}, queue, broadcaster, mailer, chat)
	alert := &models.Alert{ID: 1, ViaEmail: true}
	fanout.Dispatch(alert, "Gate A", path)

	if broadcaster.calls != 1 || mailer.calls != 1 || chat.calls != 1 {
		t.Fatalf("expected one delivery per channel, got broadcast=%d email=%d chat=%d",
			broadcaster.calls, mailer.calls, chat.calls)
	}
	if chat.sourceName != "Gate A" {
		t.Fatalf("source name not propagated, got %q", chat.sourceName)
	}
	if mailer.image == nil || !bytes.Equal(mailer.image.Data, []byte("frame")) {
		t.Fatal("snapshot content not handed to the mail channel")
	}
	if len(queue.names) != 3 {
		t.Fatalf("expected 3 independent jobs, got %v", queue.names)
	}
}

func TestDispatchCapturesImageBeforeFileReclaim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.jpg")
	if err := os.WriteFile(path, []byte("frame"), 0o644); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}

	queue := &deferredQueue{}
	mailer := &fakeMailer{}
	fanout := NewFanout(&config.Config{}, queue, &fakeBroadcaster{}, mailer, &fakeChat{})

	fanout.Dispatch(&models.Alert{ID: 5, ViaEmail: true}, "Gate A", path)

	// The scan task reclaims its temporary snapshot before delivery runs.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove snapshot: %v", err)
	}
	queue.runAll()

	if mailer.calls != 1 {
		t.Fatalf("expected one mail delivery, got %d", mailer.calls)
	}
	if mailer.image == nil || !bytes.Equal(mailer.image.Data, []byte("frame")) {
		t.Fatal("inline image must survive reclaim of the source file")
	}
	if mailer.image.Name != "snap.jpg" {
		t.Fatalf("unexpected image name %q", mailer.image.Name)
	}
}

func TestLoadInlineImageMissingFile(t *testing.T) {
	if img := LoadInlineImage(""); img != nil {
		t.Fatal("empty path must yield no image")
	}
	if img := LoadInlineImage(filepath.Join(t.TempDir(), "missing.jpg")); img != nil {
		t.Fatal("unreadable file must yield no image, not an error")
	}
}

func TestDispatchSkipsEmailWhenDisabled(t *testing.T) {
	queue := &inlineQueue{}
	mailer := &fakeMailer{}

	fanout := NewFanout(&config.Config{}, queue, &fakeBroadcaster{}, mailer, &fakeChat{})
	fanout.Dispatch(&models.Alert{ID: 2, ViaEmail: false}, "Sensor 9", "")

	if mailer.calls != 0 {
		t.Fatal("email channel must be skipped when via_email is off")
	}
	if len(queue.names) != 2 {
		t.Fatalf("expected 2 jobs without email, got %v", queue.names)
	}
}

func TestDispatchBroadcastFailureDoesNotBlockOthers(t *testing.T) {
	queue := &inlineQueue{}
	mailer := &fakeMailer{}
	chat := &fakeChat{}

	fanout := NewFanout(&config.Config{}, queue,
		&fakeBroadcaster{err: errors.New("nats down")}, mailer, chat)
	fanout.Dispatch(&models.Alert{ID: 3, ViaEmail: true}, "Gate A", "")

	if mailer.calls != 1 || chat.calls != 1 {
		t.Fatal("a failed broadcast must not prevent the other channels")
	}
}
