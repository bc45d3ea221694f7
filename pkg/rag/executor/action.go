// Package executor runs a tool plan and gathers the document and web context.
package executor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rag-chatbot-be/internal/entity"
	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/docstore"
	"rag-chatbot-be/pkg/rag"
	"rag-chatbot-be/pkg/search"
)

const module = "Executor"

var tracer = otel.Tracer("rag-chatbot-be/pkg/rag/executor")

// Retriever is the document side of the executor, implemented by *docstore.Store.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]docstore.Hit, error)
}

// Output is what a plan produced.
type Output struct {
	DocContext     string
	WebContext     string
	DocCitations   []entity.DocumentCitation
	WebCitations   []entity.WebCitation
	Failures       int
	RetrievalUsed  bool
	RetrievedCount int
}

// Executor runs plan steps one after another. A failing step is logged and
// skipped; it never aborts the plan.
type Executor struct {
	retriever Retriever
	searcher  search.Provider
	topK      int
	logger    logger.ILogger
}

func NewExecutor(retriever Retriever, searcher search.Provider, topK int, log logger.ILogger) *Executor {
	if topK <= 0 {
		topK = 4
	}
	return &Executor{
		retriever: retriever,
		searcher:  searcher,
		topK:      topK,
		logger:    log,
	}
}

func (e *Executor) Execute(ctx context.Context, plan rag.Plan) Output {
	acc := newAccumulator()
	acc.out.RetrievalUsed = plan.UsesRetrieval()

	for i, step := range plan {
		if err := e.runStep(ctx, i, step, acc); err != nil {
			acc.out.Failures++
			e.logger.Error(module, "Tool step failed", map[string]interface{}{
				"step":  i,
				"tool":  string(step.Tool),
				"query": step.Query,
				"error": err,
			})
		}
	}

	return acc.finish()
}

func (e *Executor) runStep(ctx context.Context, i int, step rag.Step, acc *accumulator) (err error) {
	ctx, span := tracer.Start(ctx, "rag.tool."+string(step.Tool),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("step.index", i),
			attribute.String("step.query", step.Query),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	switch step.Tool {
	case rag.ToolRetrieve:
		if e.retriever == nil {
			return fmt.Errorf("document retrieval is not configured")
		}
		hits, err := e.retriever.Search(ctx, step.Query, e.topK)
		if err != nil {
			return fmt.Errorf("retrieve %q: %w", step.Query, err)
		}
		span.SetAttributes(attribute.Int("step.results", len(hits)))
		acc.addHits(hits)
		return nil

	case rag.ToolWeb, rag.ToolAcademic, rag.ToolSocial:
		if e.searcher == nil {
			return fmt.Errorf("web search is not configured")
		}
		mode, _ := step.Tool.SearchMode()
		results, err := e.searcher.Search(ctx, step.Query, mode)
		if err != nil {
			return fmt.Errorf("%s search %q: %w", mode, step.Query, err)
		}
		span.SetAttributes(attribute.Int("step.results", len(results)))
		acc.addResults(results)
		return nil

	default:
		return fmt.Errorf("unknown tool %q", step.Tool)
	}
}

type accumulator struct {
	out      Output
	docs     []string
	web      []string
	pages    map[string]map[int]struct{}
	order    []string
	seenURLs map[string]struct{}
}

func newAccumulator() *accumulator {
	return &accumulator{
		pages:    make(map[string]map[int]struct{}),
		seenURLs: make(map[string]struct{}),
	}
}

func (a *accumulator) addHits(hits []docstore.Hit) {
	for _, h := range hits {
		a.docs = append(a.docs, h.Content)
		a.out.RetrievedCount++

		set, ok := a.pages[h.Source]
		if !ok {
			set = make(map[int]struct{})
			a.pages[h.Source] = set
			a.order = append(a.order, h.Source)
		}
		set[h.Page] = struct{}{}
	}
}

func (a *accumulator) addResults(results []search.Result) {
	for _, r := range results {
		if r.Content != "" {
			a.web = append(a.web, r.Content)
		}
		if r.URL == "" {
			continue
		}
		if _, dup := a.seenURLs[r.URL]; dup {
			continue
		}
		a.seenURLs[r.URL] = struct{}{}
		a.out.WebCitations = append(a.out.WebCitations, entity.WebCitation{Title: r.Title, URL: r.URL})
	}
}

func (a *accumulator) finish() Output {
	a.out.DocContext = strings.Join(a.docs, "\n")
	a.out.WebContext = strings.Join(a.web, "\n")

	for _, source := range a.order {
		pages := make([]int, 0, len(a.pages[source]))
		for p := range a.pages[source] {
			pages = append(pages, p)
		}
		sort.Ints(pages)
		a.out.DocCitations = append(a.out.DocCitations, entity.DocumentCitation{Document: source, Pages: pages})
	}
	return a.out
}
