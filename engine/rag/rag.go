package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/chocoworld/chocochat/engine/domain"
	"github.com/chocoworld/chocochat/engine/semantic"
	"github.com/chocoworld/chocochat/pkg/fn"
	"github.com/chocoworld/chocochat/pkg/resilience"
)

// noBrandsMessage is returned when the index has no brand units at all.
const noBrandsMessage = "⚠️ 등록된 브랜드 정보를 찾을 수 없습니다."

// Embedder embeds a single query.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatModel completes a rendered prompt.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes retrieval depth and model-call behaviour.
type Options struct {
	// GeneralTopK is the retrieval depth for prose answers.
	GeneralTopK int
	// ProductListTopK is the wide retrieval depth for names-only answers.
	ProductListTopK int
	// EmbedTimeout bounds one embedding call.
	EmbedTimeout time.Duration
	// ChatTimeout bounds one completion call.
	ChatTimeout time.Duration
	// Retry governs model-call retries inside the breaker.
	Retry fn.RetryOpts
}

// DefaultOptions mirror the retrieval depths the answering paths were tuned
// with.
var DefaultOptions = Options{
	GeneralTopK:     15,
	ProductListTopK: 100,
	EmbedTimeout:    10 * time.Second,
	ChatTimeout:     60 * time.Second,
	Retry: fn.RetryOpts{
		MaxAttempts: 2,
		InitialWait: time.Second,
		MaxWait:     5 * time.Second,
		Jitter:      true,
	},
}

// Answer is a routed, answered question.
type Answer struct {
	Text      string
	Strategy  Strategy
	Retrieved int
}

// Service answers questions over a searcher using external models guarded by
// a circuit breaker.
type Service struct {
	searcher semantic.Searcher
	embedder Embedder
	chat     ChatModel
	breaker  *resilience.Breaker
	opts     Options
	log      *slog.Logger
}

// NewService wires the answering service. Zero option fields fall back to
// DefaultOptions.
func NewService(searcher semantic.Searcher, embedder Embedder, chat ChatModel, breaker *resilience.Breaker, opts Options, log *slog.Logger) *Service {
	if opts.GeneralTopK <= 0 {
		opts.GeneralTopK = DefaultOptions.GeneralTopK
	}
	if opts.ProductListTopK <= 0 {
		opts.ProductListTopK = DefaultOptions.ProductListTopK
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = DefaultOptions.EmbedTimeout
	}
	if opts.ChatTimeout <= 0 {
		opts.ChatTimeout = DefaultOptions.ChatTimeout
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultOptions.Retry
	}
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.DefaultBreakerOpts)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		searcher: searcher,
		embedder: embedder,
		chat:     chat,
		breaker:  breaker,
		opts:     opts,
		log:      log,
	}
}

// Ask routes the question and produces an answer. Brand-list questions are
// answered from the index alone; the other strategies retrieve context and
// call the chat model.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	strategy := Route(question)
	s.log.Info("rag: question routed", "strategy", strategy.String())

	if strategy == StrategyBrandList {
		text, err := s.listBrands(ctx)
		if err != nil {
			return Answer{}, err
		}
		return Answer{Text: text, Strategy: strategy}, nil
	}
	return s.answer(ctx, question, strategy)
}

// listBrands enumerates distinct brand names from the index. Names are
// trimmed and deduplicated; the sentinel never counts as a brand.
func (s *Service) listBrands(ctx context.Context) (string, error) {
	units, err := s.searcher.ListByKind(ctx, domain.KindBrand)
	if err != nil {
		return "", fmt.Errorf("rag: list brands: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, u := range units {
		name := strings.TrimSpace(u.Attr(domain.AttrBrandName))
		if name == "" || name == domain.Sentinel || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return noBrandsMessage, nil
	}
	sort.Strings(names)
	return fmt.Sprintf("현재 등록된 브랜드는 총 %d개입니다:\n- %s", len(names), strings.Join(names, "\n- ")), nil
}

// answer runs the retrieve-then-generate path.
func (s *Service) answer(ctx context.Context, question string, strategy Strategy) (Answer, error) {
	count, err := s.searcher.Count(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("rag: count: %w", err)
	}
	if count == 0 {
		return Answer{}, domain.ErrCorpusEmpty
	}

	vector, err := s.callEmbed(ctx, question)
	if err != nil {
		return Answer{}, err
	}

	topK := s.opts.GeneralTopK
	prompt := generalPrompt
	if strategy == StrategyProductNames {
		topK = s.opts.ProductListTopK
		prompt = productNamesPrompt
	}

	results, err := s.searcher.Search(ctx, vector, topK)
	if err != nil {
		return Answer{}, fmt.Errorf("rag: search: %w", err)
	}

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Unit.Text
	}
	rendered := prompt.Render(strings.Join(texts, "\n\n"), question)

	text, err := s.callChat(ctx, rendered)
	if err != nil {
		return Answer{}, err
	}
	return Answer{Text: text, Strategy: strategy, Retrieved: len(results)}, nil
}

// callEmbed runs the embedding call under the breaker, with timeout and
// retry. Failures are classified as upstream errors.
func (s *Service) callEmbed(ctx context.Context, text string) ([]float32, error) {
	r := resilience.CallResult(s.breaker, ctx, func(ctx context.Context) fn.Result[[]float32] {
		return fn.Retry(ctx, s.opts.Retry, func(ctx context.Context) fn.Result[[]float32] {
			ctx, cancel := context.WithTimeout(ctx, s.opts.EmbedTimeout)
			defer cancel()
			return fn.FromPair(s.embedder.Embed(ctx, text))
		})
	})
	vector, err := r.Unwrap()
	if err != nil {
		return nil, &domain.UpstreamError{Op: "embed", Err: err}
	}
	return vector, nil
}

// callChat runs the completion call under the breaker, with timeout and
// retry.
func (s *Service) callChat(ctx context.Context, prompt string) (string, error) {
	r := resilience.CallResult(s.breaker, ctx, func(ctx context.Context) fn.Result[string] {
		return fn.Retry(ctx, s.opts.Retry, func(ctx context.Context) fn.Result[string] {
			ctx, cancel := context.WithTimeout(ctx, s.opts.ChatTimeout)
			defer cancel()
			return fn.FromPair(s.chat.Complete(ctx, prompt))
		})
	})
	text, err := r.Unwrap()
	if err != nil {
		return "", &domain.UpstreamError{Op: "chat", Err: err}
	}
	return text, nil
}
