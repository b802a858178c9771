// Package resilience holds the retry and backoff policy shared by the
// discovery backends and the remote printer client.
//
//	cfg := resilience.DefaultRetryConfig()
//	body, err := resilience.Retry(ctx, cfg, func(ctx context.Context) ([]byte, error) {
//	    return fetch(ctx)
//	})
package resilience
