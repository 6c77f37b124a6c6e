package publisher_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"permasnap/internal/publisher"
	"permasnap/internal/services"
	"permasnap/internal/tags"
)

type scriptedTransport struct {
	mu        sync.Mutex
	rejects   int
	id        string
	err       error
	calls     int
	tickets   []publisher.Ticket
	onAttempt func(int)
}

func (s *scriptedTransport) Send(_ context.Context, ticket publisher.Ticket) (publisher.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.tickets = append(s.tickets, ticket)
	if s.onAttempt != nil {
		s.onAttempt(s.calls)
	}
	if s.err != nil {
		return publisher.Response{}, s.err
	}
	if s.calls <= s.rejects {
		return publisher.Response{Success: false, Message: "try again"}, nil
	}
	return publisher.Response{Success: true, TransactionID: s.id}, nil
}

func TestPublishRetriesRejectionsUntilAccepted(t *testing.T) {
	transport := &scriptedTransport{rejects: 3, id: "tx-1"}
	client := publisher.NewClient(transport)
	set := tags.Identity()
	cred := publisher.Credential{IDToken: "jwt"}

	id, err := client.Publish(context.Background(), []byte("payload"), set, cred)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if id != "tx-1" {
		t.Fatalf("unexpected id %q", id)
	}
	if transport.calls != 4 {
		t.Fatalf("expected exactly 4 attempts, got %d", transport.calls)
	}
	for i, ticket := range transport.tickets {
		if string(ticket.Data) != "payload" || ticket.Credential != cred || !slices.Equal(ticket.Tags, set) {
			t.Fatalf("attempt %d sent a different ticket: %+v", i+1, ticket)
		}
	}
}

func TestPublishDoesNotRetryTransportErrors(t *testing.T) {
	transport := &scriptedTransport{err: services.Wrap(services.ErrTransport, "publish", "upload", "", errors.New("connection refused"))}
	client := publisher.NewClient(transport)

	_, err := client.Publish(context.Background(), []byte("x"), nil, publisher.Credential{})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", transport.calls)
	}
}

func TestPublishTreatsEmptyIDAsMalformed(t *testing.T) {
	transport := &scriptedTransport{id: ""}
	client := publisher.NewClient(transport)
	_, err := client.Publish(context.Background(), []byte("x"), nil, publisher.Credential{})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error for empty id, got %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", transport.calls)
	}
}

func TestPublishHonoursAttemptCap(t *testing.T) {
	transport := &scriptedTransport{rejects: 100, id: "never"}
	client := publisher.NewClient(transport, publisher.WithMaxAttempts(3))

	_, err := client.Publish(context.Background(), []byte("x"), nil, publisher.Credential{})
	if !errors.Is(err, services.ErrPublishRejected) {
		t.Fatalf("expected ErrPublishRejected, got %v", err)
	}
	if transport.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", transport.calls)
	}
}

func TestPublishStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	transport := &scriptedTransport{rejects: 1 << 30, onAttempt: func(n int) {
		if n == 5 {
			cancel()
		}
	}}
	client := publisher.NewClient(transport)

	_, err := client.Publish(ctx, []byte("x"), nil, publisher.Credential{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if !errors.Is(err, services.ErrPublishRejected) {
		t.Fatalf("expected rejection marker, got %v", err)
	}
	if transport.calls != 5 {
		t.Fatalf("expected loop to stop after 5 attempts, got %d", transport.calls)
	}
}

func TestPublishBackoffGrowsAndCaps(t *testing.T) {
	transport := &scriptedTransport{rejects: 5, id: "tx"}
	var delays []time.Duration
	client := publisher.NewClient(transport,
		publisher.WithRetryBackoff(100*time.Millisecond, 500*time.Millisecond),
		publisher.WithSleeper(func(d time.Duration) { delays = append(delays, d) }),
	)

	if _, err := client.Publish(context.Background(), []byte("x"), nil, publisher.Credential{}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		500 * time.Millisecond,
		500 * time.Millisecond,
	}
	if !slices.Equal(delays, want) {
		t.Fatalf("unexpected delays %v", delays)
	}
}

func TestPublishWithoutBackoffNeverSleeps(t *testing.T) {
	transport := &scriptedTransport{rejects: 2, id: "tx"}
	slept := false
	client := publisher.NewClient(transport, publisher.WithSleeper(func(time.Duration) { slept = true }))
	if _, err := client.Publish(context.Background(), []byte("x"), nil, publisher.Credential{}); err != nil {
		t.Fatal(err)
	}
	if slept {
		t.Fatal("expected immediate retries by default")
	}
}
