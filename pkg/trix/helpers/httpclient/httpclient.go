package httpclient

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound integrations. Tests swap it for a test
// server's client.
var HTTPClient = &http.Client{Timeout: 30 * time.Second}

// InferenceClient has no client-side timeout; inference calls are bounded
// per request by the caller's context.
var InferenceClient = &http.Client{}
