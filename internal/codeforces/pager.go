package codeforces

import (
	"context"
	"fmt"
)

// SubmissionLister is the part of Client a Pager needs.
type SubmissionLister interface {
	UserStatus(ctx context.Context, handle string, from, count int) ([]Submission, error)
}

// Pager walks a user's submission history one page at a time, starting at
// offset 1 and advancing by the page size.
type Pager struct {
	lister   SubmissionLister
	handle   string
	pageSize int

	from int
	done bool
}

func NewPager(lister SubmissionLister, handle string, pageSize int) *Pager {
	return &Pager{
		lister:   lister,
		handle:   handle,
		pageSize: pageSize,
		from:     1,
	}
}

// Next returns the next page. An empty page means the history is exhausted;
// once that happens Next keeps returning empty pages without calling the API.
func (p *Pager) Next(ctx context.Context) ([]Submission, error) {
	if p.done {
		return nil, nil
	}
	if p.pageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", p.pageSize)
	}

	page, err := p.lister.UserStatus(ctx, p.handle, p.from, p.pageSize)
	if err != nil {
		return nil, err
	}
	if len(page) == 0 {
		p.done = true
		return nil, nil
	}
	p.from += p.pageSize
	return page, nil
}

// Offset is the 1-based offset the next call to Next will request.
func (p *Pager) Offset() int { return p.from }
