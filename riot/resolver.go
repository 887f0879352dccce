package riot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// fieldResolver fills one credential. Resolvers run in table order, so a
// lookup may use any field resolved before it.
type fieldResolver struct {
	name   string
	field  func(*Credentials) *string
	lookup func(context.Context, Lookups, Credentials) (string, error)
}

var fieldResolvers = []fieldResolver{
	{
		name:  "client_version",
		field: func(c *Credentials) *string { return &c.ClientVersion },
		lookup: func(ctx context.Context, l Lookups, _ Credentials) (string, error) {
			return l.ClientVersion(ctx)
		},
	},
	{
		name:  "shard",
		field: func(c *Credentials) *string { return &c.Shard },
		lookup: func(ctx context.Context, l Lookups, _ Credentials) (string, error) {
			return l.Shard(ctx)
		},
	},
	{
		name:  "session_id",
		field: func(c *Credentials) *string { return &c.SessionID },
		lookup: func(ctx context.Context, l Lookups, _ Credentials) (string, error) {
			return l.SessionID(ctx)
		},
	},
	{
		name:  "access_token",
		field: func(c *Credentials) *string { return &c.AccessToken },
		lookup: func(ctx context.Context, l Lookups, c Credentials) (string, error) {
			return l.AccessToken(ctx, c.SessionID)
		},
	},
	{
		name:  "player_id",
		field: func(c *Credentials) *string { return &c.PlayerID },
		lookup: func(ctx context.Context, l Lookups, c Credentials) (string, error) {
			return l.PlayerID(ctx, c.AccessToken)
		},
	},
	{
		name:  "entitlements_token",
		field: func(c *Credentials) *string { return &c.EntitlementsToken },
		lookup: func(ctx context.Context, l Lookups, c Credentials) (string, error) {
			return l.EntitlementsToken(ctx, c.AccessToken)
		},
	},
}

// Resolver assembles Credentials from the cache, looking up whatever the
// cache does not hold.
type Resolver struct {
	store   *CacheStore
	lookups Lookups
	log     *logrus.Logger
}

func NewResolver(store *CacheStore, lookups Lookups, log *logrus.Logger) *Resolver {
	return &Resolver{
		store:   store,
		lookups: lookups,
		log:     log,
	}
}

// Resolve returns a fully populated bundle or an error. The cache is written
// after every successful resolution and left untouched on failure.
func (r *Resolver) Resolve(ctx context.Context) (Credentials, error) {
	creds, found, err := r.store.Load()
	if err != nil {
		return Credentials{}, err
	}

	if !found {
		r.log.WithField("cache", r.store.Path()).Debug("no cached credentials")
	}

	resolved := 0

	for _, fr := range fieldResolvers {
		value := fr.field(&creds)
		if *value != "" {
			continue
		}

		v, err := fr.lookup(ctx, r.lookups, creds)
		if err != nil {
			return Credentials{}, fmt.Errorf("resolve %s: %w", fr.name, err)
		}

		r.log.WithField("field", fr.name).Debug("credential resolved")

		*value = v
		resolved++
	}

	creds.ClientPlatform = ClientPlatform

	r.log.WithField("resolved", resolved).Debug("credentials ready")

	if err := r.store.Save(creds); err != nil {
		return Credentials{}, err
	}

	return creds, nil
}

// Invalidate drops the cached record and resolves everything again.
func (r *Resolver) Invalidate(ctx context.Context) (Credentials, error) {
	if err := r.store.Clear(); err != nil {
		return Credentials{}, err
	}

	return r.Resolve(ctx)
}
