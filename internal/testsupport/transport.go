package testsupport

import (
	"context"
	"fmt"
	"sync"

	"permasnap/internal/publisher"
	"permasnap/internal/tags"
)

// StubTransport records tickets and answers with scripted responses. Each
// ticket is keyed by its Content-Type tag so tests can reject one artifact
// kind a fixed number of times.
type StubTransport struct {
	// RejectFirst maps a Content-Type to the number of leading rejections.
	RejectFirst map[string]int
	// Err, when set, is returned for tickets with the given Content-Type.
	Err map[string]error

	mu      sync.Mutex
	tickets []publisher.Ticket
	seen    map[string]int
	issued  int
}

// NewStubTransport returns a transport that accepts every ticket.
func NewStubTransport() *StubTransport {
	return &StubTransport{RejectFirst: map[string]int{}, Err: map[string]error{}}
}

// Send implements publisher.Transport.
func (s *StubTransport) Send(_ context.Context, ticket publisher.Ticket) (publisher.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tickets = append(s.tickets, ticket)
	contentType, _ := ticket.Tags.Get(tags.NameContentType)
	if err := s.Err[contentType]; err != nil {
		return publisher.Response{}, err
	}
	if s.seen == nil {
		s.seen = map[string]int{}
	}
	s.seen[contentType]++
	if s.seen[contentType] <= s.RejectFirst[contentType] {
		return publisher.Response{Success: false, Message: "not yet"}, nil
	}
	s.issued++
	return publisher.Response{Success: true, TransactionID: fmt.Sprintf("tx-%d", s.issued)}, nil
}

// Tickets returns every ticket sent so far.
func (s *StubTransport) Tickets() []publisher.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]publisher.Ticket(nil), s.tickets...)
}

// Attempts returns how many tickets carried the given Content-Type.
func (s *StubTransport) Attempts(contentType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, ticket := range s.tickets {
		if value, _ := ticket.Tags.Get(tags.NameContentType); value == contentType {
			count++
		}
	}
	return count
}
