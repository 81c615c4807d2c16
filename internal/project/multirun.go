package project

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunMany runs fn over each project concurrently, per spec.md §5's
// allowance that independent Project instances may run in parallel
// provided they share no state. Each Project itself remains single-
// threaded cooperative; RunMany only parallelizes across projects.
func RunMany(ctx context.Context, projects []*Project, fn func(context.Context, *Project) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, proj := range projects {
		proj := proj
		g.Go(func() error {
			return fn(gctx, proj)
		})
	}
	return g.Wait()
}

// ParseAndResolveAll is the common fn passed to RunMany: parse every
// discovered file, then resolve every reference.
func ParseAndResolveAll(ctx context.Context, p *Project) error {
	if err := p.ParseAllFiles(ctx); err != nil {
		return err
	}
	p.ResolveAll()
	return nil
}
