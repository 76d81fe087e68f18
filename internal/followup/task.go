package followup

import "context"

// Task is one background decision call with an explicit join point. The
// caller observes the result only after Wait returns, so no lock guards
// the fields.
type Task struct {
	index    int
	answer   string
	done     chan struct{}
	decision Decision
	err      error
}

// Start launches the decision call for the given question index in a
// background goroutine. Cancellation is not supported once started; the
// caller's fallback policy is the only mitigation for a failed call.
func (s *Service) Start(ctx context.Context, index int, questionText, answerText string) *Task {
	t := &Task{
		index:  index,
		answer: answerText,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		t.decision, t.err = s.Decide(ctx, questionText, answerText)
	}()

	return t
}

// Index returns the question index this task generates for.
func (t *Task) Index() int { return t.index }

// Answer returns the primary answer the generation was requested for.
// Gate code compares it against the current response to detect staleness.
func (t *Task) Answer() string { return t.answer }

// InFlight reports whether the call has not yet finished.
func (t *Task) InFlight() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Wait joins the background call and returns its result.
func (t *Task) Wait() (Decision, error) {
	<-t.done
	return t.decision, t.err
}
