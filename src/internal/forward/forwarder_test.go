// FILE: hooklog/src/internal/forward/forwarder_test.go
package forward

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hooklog/src/internal/core"
	"hooklog/src/internal/queue"
	"hooklog/src/internal/webhook"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// fakeSink records deliveries; results are consumed in order, then succeed
type fakeSink struct {
	mu      sync.Mutex
	latency time.Duration
	results []func() (*core.Message, error)
	got     []string
	active  int
	overlap bool
}

func (s *fakeSink) Deliver(ctx context.Context, content string, wait bool) (*core.Message, error) {
	s.mu.Lock()
	s.active++
	if s.active > 1 {
		s.overlap = true
	}
	var result func() (*core.Message, error)
	if len(s.results) > 0 {
		result, s.results = s.results[0], s.results[1:]
	}
	s.mu.Unlock()

	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	s.mu.Lock()
	s.got = append(s.got, content)
	s.active--
	s.mu.Unlock()

	if result != nil {
		return result()
	}
	if wait {
		return &core.Message{ID: "1", ChannelID: "2", Content: content}, nil
	}
	return nil, nil
}

func (s *fakeSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func fail(kind webhook.Kind) func() (*core.Message, error) {
	return func() (*core.Message, error) {
		return nil, &webhook.SinkError{Kind: kind, Err: errors.New(kind.String())}
	}
}

func identity(f core.Fragment) string {
	return f.Text
}

func waitDone(t *testing.T, f *Forwarder) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.Wait(ctx))
}

func TestForwarder_OrderUnderLatency(t *testing.T) {
	sink := &fakeSink{latency: 20 * time.Millisecond}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{Transform: identity})
	require.NoError(t, f.Start(context.Background()))

	for _, text := range []string{"a", "b", "c"} {
		require.NoError(t, p.Send(core.NewFragment(text, false)))
	}
	p.Close()

	waitDone(t, f)
	assert.Equal(t, []string{"a", "b", "c"}, sink.delivered())
	assert.False(t, sink.overlap, "deliveries must not overlap")
}

func TestForwarder_FailuresDoNotStopLoop(t *testing.T) {
	sink := &fakeSink{
		results: []func() (*core.Message, error){
			fail(webhook.KindAuthInvalid),
			fail(webhook.KindPayloadMalformed),
			fail(webhook.KindResponseUndecodable),
			func() (*core.Message, error) { return nil, errors.New("connection reset") },
		},
	}
	q, p := queue.New[core.Fragment](queue.Options{})

	var mu sync.Mutex
	var outcomes []Outcome
	f := New(sink, q, newTestLogger(), Options{
		Transform: identity,
		OnOutcome: func(o Outcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		},
	})
	require.NoError(t, f.Start(context.Background()))

	for _, text := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, p.Send(core.NewFragment(text, true)))
	}
	p.Close()
	waitDone(t, f)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, sink.delivered())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 5)
	assert.Equal(t, webhook.KindAuthInvalid, outcomes[0].Kind)
	assert.Equal(t, webhook.KindPayloadMalformed, outcomes[1].Kind)
	assert.Equal(t, webhook.KindResponseUndecodable, outcomes[2].Kind)
	assert.Equal(t, webhook.KindUnclassified, outcomes[3].Kind)
	for _, o := range outcomes[:4] {
		assert.False(t, o.OK())
		assert.Nil(t, o.Message)
	}
	assert.True(t, outcomes[4].OK())
	require.NotNil(t, outcomes[4].Message)
	assert.Equal(t, "5", outcomes[4].Message.Content)

	stats := f.GetStats()
	assert.Equal(t, uint64(5), stats.TotalProcessed)
	assert.Equal(t, uint64(1), stats.TotalDelivered)
	assert.Equal(t, uint64(4), stats.TotalFailed)
	assert.Equal(t, uint64(1), stats.FailuresByKind["auth_invalid"])
	assert.Equal(t, uint64(1), stats.FailuresByKind["unclassified"])
	assert.False(t, stats.Running)
}

func TestForwarder_RecoversPanickingSink(t *testing.T) {
	sink := &fakeSink{
		results: []func() (*core.Message, error){
			func() (*core.Message, error) { panic("boom") },
		},
	}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{Transform: identity})
	require.NoError(t, f.Start(context.Background()))

	require.NoError(t, p.Send(core.NewFragment("first", false)))
	require.NoError(t, p.Send(core.NewFragment("second", false)))
	p.Close()
	waitDone(t, f)

	stats := f.GetStats()
	assert.Equal(t, uint64(1), stats.FailuresByKind["unclassified"])
	assert.Equal(t, uint64(1), stats.TotalDelivered)
	assert.Contains(t, stats.LastError, "panicked")
}

func TestForwarder_TerminatesAfterLastProducer(t *testing.T) {
	sink := &fakeSink{}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{})
	require.NoError(t, f.Start(context.Background()))

	clone, err := p.Clone()
	require.NoError(t, err)
	p.Close()

	select {
	case <-f.Done():
		t.Fatal("forwarder stopped while a producer is live")
	case <-time.After(50 * time.Millisecond):
	}

	clone.Close()
	waitDone(t, f)
}

func TestForwarder_StartTwice(t *testing.T) {
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(&fakeSink{}, q, newTestLogger(), Options{})
	require.NoError(t, f.Start(context.Background()))
	assert.Error(t, f.Start(context.Background()))
	p.Close()
	waitDone(t, f)
}

func TestForwarder_WaitTimeout(t *testing.T) {
	sink := &fakeSink{latency: 200 * time.Millisecond}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{Transform: identity})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.Start(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.Send(core.NewFragment("slow", false)))
	}
	p.Close()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer waitCancel()
	err := f.Wait(waitCtx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Cancelling abandons the rest
	cancel()
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("forwarder did not stop after cancel")
	}
	assert.Less(t, len(sink.delivered()), 5)
}

func TestForwarder_DefaultTransformAndLimiter(t *testing.T) {
	sink := &fakeSink{}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{
		Limiter: rate.NewLimiter(rate.Inf, 1),
	})
	require.NoError(t, f.Start(context.Background()))

	require.NoError(t, p.Send(core.NewFragment("INFO\tstarted\n", false)))
	p.Close()
	waitDone(t, f)

	assert.Equal(t, []string{"`INFO\tstarted`"}, sink.delivered())
}

func TestWrap(t *testing.T) {
	testCases := []struct {
		name     string
		wrapper  string
		maxLen   int
		input    string
		expected string
	}{
		{name: "TrimsNewline", wrapper: "`", maxLen: 2000, input: "hello\r\n", expected: "`hello`"},
		{name: "NoWrapper", wrapper: "", maxLen: 0, input: "hello", expected: "hello"},
		{name: "CodeBlock", wrapper: "```", maxLen: 2000, input: "x", expected: "```x```"},
		{name: "Truncates", wrapper: "`", maxLen: 8, input: "abcdefghij", expected: "`abcde…`"},
		{name: "RuneAware", wrapper: "", maxLen: 3, input: "ééééé", expected: "éé…"},
		{name: "ExactFit", wrapper: "`", maxLen: 7, input: "abcde", expected: "`abcde`"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := Wrap(tc.wrapper, tc.maxLen)(core.NewFragment(tc.input, false))
			assert.Equal(t, tc.expected, out)
		})
	}

	t.Run("DefaultLimit", func(t *testing.T) {
		out := Wrap("`", 2000)(core.NewFragment(strings.Repeat("x", 5000), false))
		assert.Equal(t, 2000, len([]rune(out)))
		assert.True(t, strings.HasPrefix(out, "`"))
		assert.True(t, strings.HasSuffix(out, "…`"))
	})
}

type prefixFilter string

func (p prefixFilter) Apply(f core.Fragment) bool {
	return !strings.HasPrefix(f.Text, string(p))
}

func TestForwarder_FilterSkipsFragments(t *testing.T) {
	sink := &fakeSink{}
	q, p := queue.New[core.Fragment](queue.Options{})
	f := New(sink, q, newTestLogger(), Options{
		Transform: identity,
		Filter:    prefixFilter("DEBUG"),
	})
	require.NoError(t, f.Start(context.Background()))

	for _, text := range []string{"INFO a", "DEBUG b", "WARN c"} {
		require.NoError(t, p.Send(core.NewFragment(text, false)))
	}
	p.Close()
	waitDone(t, f)

	assert.Equal(t, []string{"INFO a", "WARN c"}, sink.delivered())
	stats := f.GetStats()
	assert.Equal(t, uint64(1), stats.TotalFiltered)
	assert.Equal(t, uint64(2), stats.TotalProcessed)
}

type upperFormatter struct{ fail bool }

func (u upperFormatter) Format(f core.Fragment) ([]byte, error) {
	if u.fail {
		return nil, errors.New("format failed")
	}
	return []byte(strings.ToUpper(f.Text) + "\n"), nil
}

func TestFormatted(t *testing.T) {
	fragment := core.NewFragment("quiet", false)

	out := Formatted(upperFormatter{}, Wrap("`", 2000))(fragment)
	assert.Equal(t, "`QUIET`", out)
	assert.Equal(t, "quiet", fragment.Text, "fragment is not mutated")

	out = Formatted(upperFormatter{fail: true}, Wrap("`", 2000))(fragment)
	assert.Equal(t, "`quiet`", out)
}
