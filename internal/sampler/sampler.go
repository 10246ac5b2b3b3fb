// Package sampler implements bounded-retry random sampling over the message
// archive: random quotes and "who said this" quiz generation with distractor
// answers.
package sampler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/telearchive/indexbot/internal/database"
)

var (
	// ErrExhausted is returned when the attempt budget runs out before a
	// suitable record is found. Retryable, not fatal.
	ErrExhausted = errors.New("sampling attempts exhausted")

	// ErrNotEnoughAnswers is returned when distractor selection cannot
	// collect enough distinct author names within its attempt budget.
	ErrNotEnoughAnswers = errors.New("could not generate enough answers")

	// ErrCooldown is returned when a quiz is requested before the cooldown
	// window from the previous quiz has elapsed.
	ErrCooldown = errors.New("quiz cooldown in effect")
)

// Rand is the source of randomness used by the sampler. *rand.Rand satisfies
// it; tests may supply a scripted sequence instead.
type Rand interface {
	Int63n(n int64) int64
	Intn(n int) int
}

// RecordSource resolves record ids; satisfied by *search.Engine.
type RecordSource interface {
	Lookup(ctx context.Context, id int64) (*database.Message, error)
}

// Config tunes the sampler's attempt budgets and the quiz shape.
type Config struct {
	RandomAttempts   int
	QuestionAttempts int
	AnswerAttempts   int
	WrongAnswerCount int
	MinTextLength    int
	Cooldown         time.Duration
}

// Quiz is a generated "who said this" question: the quoted record, the full
// option list, and the index of the correct author within it. Discarded
// after rendering.
type Quiz struct {
	Question     database.Message
	Options      []string
	CorrectIndex int
}

// Sampler draws random records from the archive. Ids are sampled uniformly
// from [0, upperBound) where upperBound is the id of the triggering message,
// so sampling never reaches into the future.
type Sampler struct {
	src    RecordSource
	logger *slog.Logger
	cfg    Config

	// quoteRand backs random quotes and is deliberately unseeded; quizzes
	// use a fresh generator seeded from the triggering message id so a
	// given trigger reproduces the same question.
	quoteRand Rand
	seedFunc  func(seed int64) Rand

	lastQuiz time.Time
}

// New creates a sampler over the given record source.
func New(src RecordSource, logger *slog.Logger, cfg Config) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sampler{
		src:       src,
		logger:    logger.With("component", "sampler"),
		cfg:       cfg,
		quoteRand: rand.New(rand.NewSource(time.Now().UnixNano())),
		seedFunc: func(seed int64) Rand {
			return rand.New(rand.NewSource(seed))
		},
	}
}

// RandomQuote picks a random existing record with id below upperBound.
// Returns ErrExhausted if no record is hit within the attempt budget.
func (s *Sampler) RandomQuote(ctx context.Context, upperBound int64) (*database.Message, error) {
	if upperBound <= 0 {
		return nil, ErrExhausted
	}

	for i := 0; i < s.cfg.RandomAttempts; i++ {
		id := s.quoteRand.Int63n(upperBound)

		record, err := s.src.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if record != nil {
			return record, nil
		}
	}

	s.logger.DebugContext(ctx, "Random quote sampling exhausted",
		"attempts", s.cfg.RandomAttempts, "upper_bound", upperBound)
	return nil, ErrExhausted
}

// quizEligible reports whether a record makes a fair quiz question: long
// enough, authored (not forwarded), not a placeholder, command or mention,
// and not from a deleted account.
func (s *Sampler) quizEligible(record *database.Message) bool {
	if record == nil {
		return false
	}
	if record.ForwardedFrom != "" {
		return false
	}
	if utf8.RuneCountInString(record.Text) < s.cfg.MinTextLength {
		return false
	}
	if strings.HasPrefix(record.Text, "[") ||
		strings.HasPrefix(record.Text, "/") ||
		strings.HasPrefix(record.Text, "@") {
		return false
	}
	return record.FromName != database.DeletedAccountName
}

// Quiz generates a "who said this" question seeded from triggerID. A request
// inside the cooldown window returns ErrCooldown; callers are expected to
// ignore it silently. The cooldown is process-wide, not per user.
func (s *Sampler) Quiz(ctx context.Context, triggerID int64) (*Quiz, error) {
	if time.Since(s.lastQuiz) < s.cfg.Cooldown {
		return nil, ErrCooldown
	}
	s.lastQuiz = time.Now()

	if triggerID <= 0 {
		return nil, ErrExhausted
	}

	rnd := s.seedFunc(triggerID)

	question, err := s.pickQuestion(ctx, rnd, triggerID)
	if err != nil {
		return nil, err
	}

	options, err := s.pickDistractors(ctx, rnd, triggerID, question)
	if err != nil {
		return nil, err
	}

	// The placement index reuses the question's seeded generator, uniform
	// over all len(options)+1 slots including the last.
	correct := rnd.Intn(len(options) + 1)
	options = append(options, "")
	copy(options[correct+1:], options[correct:])
	options[correct] = question.FromName

	return &Quiz{
		Question:     *question,
		Options:      options,
		CorrectIndex: correct,
	}, nil
}

func (s *Sampler) pickQuestion(ctx context.Context, rnd Rand, upperBound int64) (*database.Message, error) {
	for i := 0; i < s.cfg.QuestionAttempts; i++ {
		id := rnd.Int63n(upperBound)

		record, err := s.src.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.quizEligible(record) {
			return record, nil
		}
	}

	s.logger.DebugContext(ctx, "Quiz question sampling exhausted",
		"attempts", s.cfg.QuestionAttempts, "upper_bound", upperBound)
	return nil, ErrExhausted
}

// pickDistractors collects WrongAnswerCount distinct author names, rejecting
// the correct author, duplicates, and the deleted-account sentinel. The
// attempt budget is shared across all candidates.
func (s *Sampler) pickDistractors(ctx context.Context, rnd Rand, upperBound int64, question *database.Message) ([]string, error) {
	options := make([]string, 0, s.cfg.WrongAnswerCount)

	tries := 0
	for len(options) < s.cfg.WrongAnswerCount {
		tries++
		if tries >= s.cfg.AnswerAttempts {
			s.logger.DebugContext(ctx, "Distractor sampling exhausted",
				"attempts", s.cfg.AnswerAttempts, "collected", len(options))
			return nil, ErrNotEnoughAnswers
		}

		id := rnd.Int63n(upperBound)

		record, err := s.src.Lookup(ctx, id)
		if err != nil {
			return nil, err
		}
		if record == nil ||
			record.FromID == question.FromID ||
			record.FromName == database.DeletedAccountName ||
			contains(options, record.FromName) {
			continue
		}

		options = append(options, record.FromName)
	}

	return options, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
