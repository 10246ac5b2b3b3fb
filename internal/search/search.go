// Package search implements the archive's query layer: strategy selection
// between full-text and substring matching, paged execution, direct id
// lookup, and result page rendering.
package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/telearchive/indexbot/internal/database"
)

// PageSize is the fixed number of results per page.
const PageSize = 10

// Strategy identifies which query plan a search term is routed to.
type Strategy int

const (
	// StrategyFullText is the ranked FTS5 match, ordered by relevance then
	// recency.
	StrategyFullText Strategy = iota
	// StrategySubstring is the case-insensitive LIKE match, ordered by
	// recency only.
	StrategySubstring
)

func (s Strategy) String() string {
	switch s {
	case StrategyFullText:
		return "fts5"
	case StrategySubstring:
		return "like"
	default:
		return "unknown"
	}
}

// The FTS5 query parser chokes on punctuation, so only terms made of ASCII
// letters and digits are safe to hand to MATCH without quoting.
var alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9]*$`)

// ChooseStrategy routes a raw term to a query strategy. An explicit override
// always wins over the heuristic; the substring override is checked first
// because it is the safer fallback.
func ChooseStrategy(term string, forceFullText, forceSubstring bool) Strategy {
	switch {
	case forceSubstring:
		return StrategySubstring
	case forceFullText:
		return StrategyFullText
	case alphanumeric.MatchString(term):
		return StrategyFullText
	default:
		return StrategySubstring
	}
}

// ParseTerm extracts the search term and strategy override flags from a
// /search command message. Pagination is stateless, so the same parse runs
// over the original request text each time a paging control fires.
func ParseTerm(text, botName string) (term string, forceFullText, forceSubstring bool) {
	forceFullText = strings.HasPrefix(text, "/searchfts5")
	forceSubstring = strings.HasPrefix(text, "/searchlike")

	term = strings.NewReplacer(
		"/searchlike", "",
		"/searchfts5", "",
		"/search", "",
		botName, "",
	).Replace(text)

	return strings.TrimSpace(term), forceFullText, forceSubstring
}

// ResultPage holds one page of search results together with the parameters
// that produced it. It is rebuilt per request and never persisted.
type ResultPage struct {
	Term     string
	PageNum  int
	Strategy Strategy
	Entries  []database.Message
}

// HasNext reports whether a "next page" control should be offered. A full
// page implies more results may follow; a result count that is an exact
// multiple of PageSize therefore offers one extra, empty page.
func (p *ResultPage) HasNext() bool {
	return len(p.Entries) >= PageSize
}

// RenderHTML formats the page as a numbered list of escaped one-line
// summaries. An empty page renders a "no more results" marker.
func (p *ResultPage) RenderHTML() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>Results</b> <code>(Page %d)</code>\n", p.PageNum+1)

	for i := range p.Entries {
		fmt.Fprintf(&sb, "<b>%d.</b> %s\n", i+1, p.Entries[i].SearchListItem())
	}

	if len(p.Entries) == 0 {
		sb.WriteString("<code>No more results</code>\n")
	}

	return sb.String()
}

// Engine executes searches and direct lookups against the Store.
type Engine struct {
	store  database.Store
	logger *slog.Logger
}

// NewEngine creates a search engine over the given store.
func NewEngine(store database.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		store:  store,
		logger: logger.With("component", "search"),
	}
}

// Search runs one page of a search. A storage failure is logged here and
// returned as an error so callers can distinguish "search failed" from an
// empty page.
func (e *Engine) Search(ctx context.Context, term string, pageNum int, forceFullText, forceSubstring bool) (*ResultPage, error) {
	strategy := ChooseStrategy(term, forceFullText, forceSubstring)
	offset := pageNum * PageSize

	var (
		entries []database.Message
		err     error
	)
	switch strategy {
	case StrategyFullText:
		entries, err = e.store.SearchText(ctx, term, offset, PageSize)
	default:
		entries, err = e.store.SearchLike(ctx, term, offset, PageSize)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "Search failed",
			"term", term, "page", pageNum, "strategy", strategy.String(), "error", err)
		return nil, fmt.Errorf("search for %q (page %d, %s) failed: %w", term, pageNum, strategy, err)
	}

	e.logger.DebugContext(ctx, "Search executed",
		"term", term, "page", pageNum, "strategy", strategy.String(), "hits", len(entries))

	return &ResultPage{
		Term:     term,
		PageNum:  pageNum,
		Strategy: strategy,
		Entries:  entries,
	}, nil
}

// Lookup retrieves a single record by id. Returns nil, nil when no record
// with that id exists.
func (e *Engine) Lookup(ctx context.Context, id int64) (*database.Message, error) {
	return e.store.GetMessageByID(ctx, id)
}
