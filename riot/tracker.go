package riot

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ProgressFetcher interface {
	FetchProgress(ctx context.Context, creds Credentials, contractID string, allowRetry bool) (Contract, bool, error)
}

var _ ProgressFetcher = (*Client)(nil)

// Tracker ties credential resolution to the contract fetch.
type Tracker struct {
	resolver *Resolver
	fetcher  ProgressFetcher
	log      *logrus.Logger
}

func NewTracker(resolver *Resolver, fetcher ProgressFetcher, log *logrus.Logger) *Tracker {
	return &Tracker{
		resolver: resolver,
		fetcher:  fetcher,
		log:      log,
	}
}

// Progress resolves credentials and fetches the battlepass contract. A
// missing contract means the cached credentials are probably stale: the cache
// is cleared, credentials resolved again and the fetch retried exactly once.
// The credentials that produced the contract are returned with it.
func (t *Tracker) Progress(ctx context.Context, contractID string) (Credentials, Contract, error) {
	creds, err := t.resolver.Resolve(ctx)
	if err != nil {
		return Credentials{}, Contract{}, err
	}

	contract, found, err := t.fetcher.FetchProgress(ctx, creds, contractID, true)
	if err != nil {
		return Credentials{}, Contract{}, err
	}

	if found {
		return creds, contract, nil
	}

	t.log.Warn("Retrying...")

	creds, err = t.resolver.Invalidate(ctx)
	if err != nil {
		return Credentials{}, Contract{}, err
	}

	contract, _, err = t.fetcher.FetchProgress(ctx, creds, contractID, false)
	if err != nil {
		return Credentials{}, Contract{}, err
	}

	return creds, contract, nil
}
