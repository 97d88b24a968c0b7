/*
Package executor executes request descriptors over HTTP.

# Overview

An Executor holds one *http.Client and turns a types.RequestDescriptor
into a types.Outcome:
  - The full URL is the configured base URL followed by the descriptor path
  - Headers and the optional body are sent as-is
  - Network failures become OutcomeTransportError carrying the error text
  - Any completed response is OutcomeOK; OK is true only for 2xx
  - The body is parsed as JSON when possible, raw bytes are kept either way

Nothing is retried. The client has no timeout of its own; pass a context
with a deadline to bound a request.

# TLS Configuration

TLS support includes:
  - Custom CA certificates
  - Client certificates (mTLS)
  - InsecureSkipVerify for development

# Example Usage

	exec, err := executor.New(nil)
	if err != nil {
		return err
	}

	desc, err := builder.Build("GET", "/products?q=shoe", nil, token)
	if err != nil {
		return err
	}

	outcome := exec.Execute(ctx, desc, types.Config{BaseURL: "http://localhost:5000/api"})
	fmt.Println(outcome.Status, outcome.OK)

# Thread Safety

Execute is safe to call concurrently. Concurrent calls are independent and
complete in no particular order.
*/
package executor
