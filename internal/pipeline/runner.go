package pipeline

import (
	"context"
	"sync"

	"github.com/vnexsus/datesift/domain"
)

// ProcessAll runs independent cases concurrently under the configured
// bound. Results and errors are positional: results[i] and errs[i]
// belong to inputs[i], and exactly one of the two is set per case.
func (p *Pipeline) ProcessAll(ctx context.Context, inputs []domain.CaseInput) ([]*domain.CaseResult, []error) {
	results := make([]*domain.CaseResult, len(inputs))
	errs := make([]error, len(inputs))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, in domain.CaseInput) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			results[idx], errs[idx] = p.Process(ctx, in)
		}(i, input)
	}

	wg.Wait()
	return results, errs
}
