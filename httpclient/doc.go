// Package httpclient is the outbound HTTP client used to reach remote
// inventory providers. It applies the shared TLS settings, classifies
// response status codes into typed errors and retries transient failures.
//
//	client, err := httpclient.New(httpclient.Config{
//	    Timeout: 5 * time.Second,
//	    Retry:   httpclient.DefaultRetryConfig(),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    URL:    "http://host-1:8080/inventory/printers/bundles",
//	    Query:  map[string]string{"mode": "json"},
//	})
package httpclient
