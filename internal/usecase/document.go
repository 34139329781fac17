package usecase

import (
	"context"
	"errors"

	"docgen/internal/adapter/cache"
	"docgen/internal/adapter/inserter"
	"docgen/internal/adapter/llm"
	"docgen/internal/adapter/prompt"
	"docgen/internal/domain"
	"docgen/internal/port"
)

// Options filters which entities of a file get documented.
type Options struct {
	FunctionsOnly bool
	ClassesOnly   bool
	// SelectIDs restricts processing to the listed entity IDs
	// ("function:add", "class:Calculator"). Empty selects everything.
	SelectIDs []string
	// OnEntity, when set, is called once per entity with its result.
	OnEntity func(domain.DocstringResult)
}

func (o Options) selected(e domain.CodeEntity) bool {
	if o.FunctionsOnly && e.Kind != domain.KindFunction {
		return false
	}
	if o.ClassesOnly && e.Kind != domain.KindClass {
		return false
	}
	if len(o.SelectIDs) == 0 {
		return true
	}
	for _, id := range o.SelectIDs {
		if id == e.ID() {
			return true
		}
	}
	return false
}

// Result is the outcome of documenting one source file.
type Result struct {
	Unit      *domain.SourceUnit
	NewSource string
	Results   []domain.DocstringResult
	Generated int
	Skipped   int
	Cached    int
}

// DocumentUseCase drives the per-file pipeline: extract, filter, prompt,
// generate, sanitize, insert. Entity failures never abort the file.
type DocumentUseCase struct {
	extractor port.Extractor
	prompts   *prompt.Builder
	generator port.Generator
	cache     port.Cache
}

// NewDocumentUseCase wires the pipeline. cache may be nil to disable
// caching.
func NewDocumentUseCase(extractor port.Extractor, prompts *prompt.Builder, generator port.Generator, c port.Cache) *DocumentUseCase {
	return &DocumentUseCase{
		extractor: extractor,
		prompts:   prompts,
		generator: generator,
		cache:     c,
	}
}

// Provider returns the resolved provider name of this pipeline.
func (u *DocumentUseCase) Provider() string {
	return u.generator.Provider()
}

// Document extracts the entities of source, generates a docstring for each
// selected entity, and returns the patched source. The input text is never
// mutated; on any per-entity failure the entity's span stays untouched.
func (u *DocumentUseCase) Document(ctx context.Context, path, source string, opts Options) (*Result, error) {
	unit, err := u.extractor.Extract(ctx, path, source)
	if err != nil {
		return nil, err
	}

	res := &Result{Unit: unit, NewSource: source}

	for _, entity := range unit.Entities {
		if !opts.selected(entity) {
			continue
		}

		r := u.generateOne(ctx, entity)
		res.Results = append(res.Results, r)
		if opts.OnEntity != nil {
			opts.OnEntity(r)
		}

		if r.Skipped() {
			res.Skipped++
			continue
		}
		if r.Cached {
			res.Cached++
		}
		res.Generated++

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	newSource, insertSkipped := inserter.InsertAll(source, res.Results)
	res.NewSource = newSource
	res.Generated -= len(insertSkipped)
	res.Skipped += len(insertSkipped)
	for i := range res.Results {
		for _, id := range insertSkipped {
			if res.Results[i].Entity.ID() == id {
				res.Results[i].Err = "docstring could not be inserted"
			}
		}
	}

	return res, nil
}

func (u *DocumentUseCase) generateOne(ctx context.Context, entity domain.CodeEntity) domain.DocstringResult {
	r := domain.DocstringResult{
		Entity:   entity,
		Provider: u.generator.Provider(),
		Model:    u.generator.ModelName(),
	}

	key := cache.Key(entity.Snippet, string(entity.Kind), r.Provider, r.Model)
	if u.cache != nil {
		if doc, ok := u.cache.Get(key); ok {
			r.Docstring = doc
			r.Cached = true
			return r
		}
	}

	p, err := u.prompts.Render(entity)
	if err != nil {
		r.Err = err.Error()
		return r
	}

	resp, err := u.generator.Generate(ctx, domain.GenerationRequest{
		Prompt: p,
		Kind:   entity.Kind,
		Entity: entity,
	})
	if err != nil {
		r.Err = err.Error()
		return r
	}

	r.Docstring = llm.Sanitize(resp.Text)
	if r.Docstring == "" {
		r.Err = "provider returned empty docstring"
		return r
	}

	if u.cache != nil {
		// Cache failures are not worth failing the entity over.
		_ = u.cache.Put(key, r.Docstring)
	}
	return r
}

// Analyze returns the metrics and entity listing for source without
// generating anything.
func (u *DocumentUseCase) Analyze(ctx context.Context, path, source string) (*domain.SourceUnit, domain.Metrics, error) {
	unit, err := u.extractor.Extract(ctx, path, source)
	if err != nil {
		return nil, domain.Metrics{}, err
	}
	metrics, err := u.extractor.Analyze(ctx, source)
	if err != nil {
		return nil, domain.Metrics{}, err
	}
	return unit, metrics, nil
}

// IsParseError reports whether err is a per-file syntax failure, which
// batch runs report and continue past.
func IsParseError(err error) bool {
	var pe *domain.ParseError
	return errors.As(err, &pe)
}
