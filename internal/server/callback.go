package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/NinoBlz/dzx/internal/shared"
)

// CallbackResult carries the outcome of an OAuth redirect: either an
// authorization code or a failure reason. Token exchange is the caller's
// responsibility; the listener only captures the redirect.
type CallbackResult struct {
	Code string
	err  error
}

func (c CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the OAuth redirect for an authorization-code flow.
//
// The authorization code (or denial) is written exactly once into a one-shot
// buffered channel that the flow awaits with a timeout, so no mutable state is
// shared with the waiter beyond the channel itself. Implements [Handler] for
// registration with a [Router].
type CallbackHandler struct {
	path        string
	state       string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a callback handler for the given redirect path.
//
// If state is non-empty, the redirect's state query parameter must match it
// (CSRF protection); platforms that don't echo a state pass "".
func NewCallbackHandler(path, state string) *CallbackHandler {
	return &CallbackHandler{
		path:       path,
		state:      state,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP handles the OAuth redirect request.
//
// A request carrying a code responds 200 with a confirmation page; one
// carrying an error reason responds 400. Either way the result is sent
// through the one-shot channel. Only the first callback is processed.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	query := r.URL.Query()

	if h.state != "" && query.Get("state") != h.state {
		h.Send(CallbackResult{err: fmt.Errorf("%w: invalid state parameter", shared.ErrAuthFailed)})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		reason := query.Get("error_reason")
		if reason == "" {
			reason = query.Get("error")
		}
		if reason == "" {
			reason = "no authorization code received"
		}
		h.Send(CallbackResult{err: fmt.Errorf("%w: %s", shared.ErrAuthDenied, reason)})

		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, errorPage, reason)
		return
	}

	h.Send(CallbackResult{Code: code})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`

const errorPage = `
<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body>
    <h2>Authorization failed: %s</h2>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`
