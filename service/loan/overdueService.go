package loansvc

import (
	"context"

	loanrepo "github.com/hikmatyar22/193-BilboTechDigitalLibrarySystem-DocumentArchitecture/repository/loan"
)

// Sweeper moves active loans past their due date to overdue. The serve
// command runs it once at startup and then daily.
type Sweeper interface {
	MarkOverdue(ctx context.Context) (int64, error)
}

type sweeper struct {
	r loanrepo.Repo
}

func NewSweeper(r loanrepo.Repo) Sweeper { return &sweeper{r: r} }

func (s *sweeper) MarkOverdue(ctx context.Context) (int64, error) {
	return s.r.MarkOverdue(ctx, Today())
}
