package sampler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/telearchive/indexbot/internal/database"
)

// mapSource serves records from a fixed id map.
type mapSource struct {
	records map[int64]*database.Message
}

func (m *mapSource) Lookup(_ context.Context, id int64) (*database.Message, error) {
	return m.records[id], nil
}

// scriptedRand replays a fixed sequence of draws.
type scriptedRand struct {
	values []int64
	pos    int
}

func (r *scriptedRand) next() int64 {
	if r.pos >= len(r.values) {
		return 0
	}
	v := r.values[r.pos]
	r.pos++
	return v
}

func (r *scriptedRand) Int63n(n int64) int64 { return r.next() % n }
func (r *scriptedRand) Intn(n int) int       { return int(r.next()) % n }

func defaultConfig() Config {
	return Config{
		RandomAttempts:   10,
		QuestionAttempts: 100,
		AnswerAttempts:   20,
		WrongAnswerCount: 4,
		MinTextLength:    8,
		Cooldown:         time.Minute,
	}
}

func record(id, fromID int64, fromName, text string) *database.Message {
	return &database.Message{
		ID:       id,
		Date:     time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC),
		FromName: fromName,
		FromID:   fromID,
		Text:     text,
	}
}

func TestRandomQuote(t *testing.T) {
	t.Parallel()

	src := &mapSource{records: map[int64]*database.Message{
		7: record(7, 1, "Alice", "a quote"),
	}}
	s := New(src, nil, defaultConfig())

	// First two draws hit gaps, the third hits the record.
	s.quoteRand = &scriptedRand{values: []int64{3, 5, 7}}

	got, err := s.RandomQuote(context.Background(), 100)
	if err != nil {
		t.Fatalf("RandomQuote failed: %v", err)
	}
	if got.ID != 7 {
		t.Errorf("expected record 7, got %d", got.ID)
	}
}

func TestRandomQuoteExhausted(t *testing.T) {
	t.Parallel()

	s := New(&mapSource{records: map[int64]*database.Message{}}, nil, defaultConfig())
	s.quoteRand = &scriptedRand{values: make([]int64, 10)}

	_, err := s.RandomQuote(context.Background(), 100)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestRandomQuoteAttemptBudget(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.RandomAttempts = 3

	s := New(&mapSource{records: map[int64]*database.Message{}}, nil, cfg)
	rnd := &scriptedRand{values: make([]int64, 100)}
	s.quoteRand = rnd

	if _, err := s.RandomQuote(context.Background(), 100); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
	if rnd.pos != 3 {
		t.Errorf("expected exactly 3 draws, got %d", rnd.pos)
	}
}

func TestQuizEligible(t *testing.T) {
	t.Parallel()

	s := New(nil, nil, defaultConfig())

	tests := []struct {
		name   string
		record *database.Message
		want   bool
	}{
		{name: "missing record", record: nil, want: false},
		{name: "good record", record: record(1, 1, "Alice", "a perfectly fine quote"), want: true},
		{name: "too short", record: record(1, 1, "Alice", "short"), want: false},
		{name: "forwarded", record: &database.Message{FromName: "Alice", Text: "a perfectly fine quote", ForwardedFrom: "Bob"}, want: false},
		{name: "placeholder", record: record(1, 1, "Alice", "[Photo] and more text"), want: false},
		{name: "command", record: record(1, 1, "Alice", "/search something"), want: false},
		{name: "mention", record: record(1, 1, "Alice", "@someone hello there"), want: false},
		{name: "deleted account", record: record(1, 1, database.DeletedAccountName, "a perfectly fine quote"), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := s.quizEligible(tc.record); got != tc.want {
				t.Errorf("quizEligible(%+v) = %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}

func TestQuiz(t *testing.T) {
	t.Parallel()

	src := &mapSource{records: map[int64]*database.Message{
		1: record(1, 101, "Alice", "the memorable quote here"),
		2: record(2, 102, "Bob", "whatever"),
		3: record(3, 103, "Carol", "whatever"),
		4: record(4, 104, "Dave", "whatever"),
		5: record(5, 105, "Eve", "whatever"),
	}}

	s := New(src, nil, defaultConfig())
	s.seedFunc = func(int64) Rand {
		// question draw, four distractor draws, placement draw
		return &scriptedRand{values: []int64{1, 2, 3, 4, 5, 2}}
	}

	quiz, err := s.Quiz(context.Background(), 100)
	if err != nil {
		t.Fatalf("Quiz failed: %v", err)
	}

	if quiz.Question.ID != 1 {
		t.Errorf("expected question record 1, got %d", quiz.Question.ID)
	}
	if len(quiz.Options) != 5 {
		t.Fatalf("expected 5 options, got %d", len(quiz.Options))
	}
	if quiz.CorrectIndex != 2 {
		t.Errorf("expected correct index 2, got %d", quiz.CorrectIndex)
	}
	if quiz.Options[quiz.CorrectIndex] != "Alice" {
		t.Errorf("expected correct option to be the author, got %q", quiz.Options[quiz.CorrectIndex])
	}

	seen := make(map[string]bool)
	for _, name := range quiz.Options {
		if seen[name] {
			t.Errorf("duplicate option %q", name)
		}
		seen[name] = true
	}
}

func TestQuizRejectsBadDistractors(t *testing.T) {
	t.Parallel()

	src := &mapSource{records: map[int64]*database.Message{
		1: record(1, 101, "Alice", "the memorable quote here"),
		2: record(2, 101, "Alice", "same author"),
		3: record(3, 103, database.DeletedAccountName, "gone"),
		4: record(4, 104, "Bob", "whatever"),
		5: record(5, 104, "Bob", "duplicate name"),
		6: record(6, 106, "Carol", "whatever"),
		7: record(7, 107, "Dave", "whatever"),
		8: record(8, 108, "Eve", "whatever"),
	}}

	s := New(src, nil, defaultConfig())
	s.seedFunc = func(int64) Rand {
		// 2 same-author, 3 deleted, 5 duplicates Bob's name after 4.
		return &scriptedRand{values: []int64{1, 2, 3, 4, 5, 6, 7, 8, 0}}
	}

	quiz, err := s.Quiz(context.Background(), 100)
	if err != nil {
		t.Fatalf("Quiz failed: %v", err)
	}

	want := map[string]bool{"Bob": true, "Carol": true, "Dave": true, "Eve": true, "Alice": true}
	for _, name := range quiz.Options {
		if !want[name] {
			t.Errorf("unexpected option %q in %v", name, quiz.Options)
		}
	}
}

func TestQuizNotEnoughAnswers(t *testing.T) {
	t.Parallel()

	// Only one other author exists, so distractor selection must run out.
	src := &mapSource{records: map[int64]*database.Message{
		1: record(1, 101, "Alice", "the memorable quote here"),
		2: record(2, 102, "Bob", "whatever"),
	}}

	s := New(src, nil, defaultConfig())
	s.seedFunc = func(int64) Rand {
		values := make([]int64, 30)
		values[0] = 1
		for i := 1; i < len(values); i++ {
			values[i] = 2
		}
		return &scriptedRand{values: values}
	}

	_, err := s.Quiz(context.Background(), 100)
	if !errors.Is(err, ErrNotEnoughAnswers) {
		t.Errorf("expected ErrNotEnoughAnswers, got %v", err)
	}
}

func TestQuizCooldown(t *testing.T) {
	t.Parallel()

	src := &mapSource{records: map[int64]*database.Message{}}
	s := New(src, nil, defaultConfig())
	s.seedFunc = func(int64) Rand {
		return &scriptedRand{values: make([]int64, 200)}
	}

	// First call misses the cooldown gate and fails on the empty archive,
	// but still arms the cooldown.
	if _, err := s.Quiz(context.Background(), 100); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	if _, err := s.Quiz(context.Background(), 100); !errors.Is(err, ErrCooldown) {
		t.Errorf("expected ErrCooldown, got %v", err)
	}

	// An expired window admits the next request.
	s.lastQuiz = time.Now().Add(-2 * time.Minute)
	if _, err := s.Quiz(context.Background(), 100); errors.Is(err, ErrCooldown) {
		t.Error("expected cooldown to have expired")
	}
}
