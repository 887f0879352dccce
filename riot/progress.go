package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
)

// FetchProgress looks up the contract with the given definition id. When it
// is missing and allowRetry is set the caller gets found=false and decides
// what to do; otherwise ErrProgressNotFound is returned.
//
// A non-2xx answer is treated like an empty contract list, stale credentials
// are the usual cause.
func (c *Client) FetchProgress(ctx context.Context, creds Credentials, contractID string, allowRetry bool) (Contract, bool, error) {
	uri := fmt.Sprintf("%s/contracts/v1/contracts/%s", shardURL(c.endpoints.PD, creds.Shard), creds.PlayerID)

	req, err := c.newRequest(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Contract{}, false, err
	}

	setGameHeaders(req, creds)

	var contracts contractsT

	err = c.doJSON(req, &contracts)

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		c.log.WithField("status", statusErr.Code).Info("contracts request rejected")
	} else if err != nil {
		return Contract{}, false, err
	}

	for _, contract := range contracts.Contracts {
		if contract.ContractDefinitionID == contractID {
			return contract, true, nil
		}
	}

	if allowRetry {
		return Contract{}, false, nil
	}

	return Contract{}, false, fmt.Errorf("%w: no contract %s for player %s", ErrProgressNotFound, contractID, creds.PlayerID)
}

// FetchActiveSeasonEnd returns the active act with its end time parsed.
func (c *Client) FetchActiveSeasonEnd(ctx context.Context, creds Credentials) (Season, error) {
	uri := shardURL(c.endpoints.Shared, creds.Shard) + "/content-service/v3/content"

	req, err := c.newRequest(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Season{}, err
	}

	setGameHeaders(req, creds)

	var content contentT

	if err := c.doJSON(req, &content); err != nil {
		return Season{}, err
	}

	for _, season := range content.Seasons {
		if !season.IsActive || season.Type != SeasonTypeAct {
			continue
		}

		end, err := dateparse.ParseIn(season.EndTime, time.UTC)
		if err != nil {
			return Season{}, fmt.Errorf("%w: act %s end time %q: %v", ErrUpstreamData, season.Name, season.EndTime, err)
		}

		season.End = end.UTC()

		return season, nil
	}

	return Season{}, ErrSeasonNotFound
}
