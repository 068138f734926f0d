package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// Hooks observe requests as they pass through the client. Any field may be nil.
type Hooks struct {
	OnRequest  func(req *http.Request)
	OnResponse func(req *http.Request, resp *http.Response, elapsed time.Duration)
	OnError    func(req *http.Request, err error)
}

// LoggingHooks logs every request and response. Headers are never logged,
// so the bearer token stays out of the output.
func LoggingHooks(logger *slog.Logger) Hooks {
	if logger == nil {
		logger = slog.Default()
	}

	return Hooks{
		OnRequest: func(req *http.Request) {
			logger.Debug("API request", "method", req.Method, "path", req.URL.Path)
		},
		OnResponse: func(req *http.Request, resp *http.Response, elapsed time.Duration) {
			level := slog.LevelDebug
			if resp.StatusCode >= http.StatusBadRequest {
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "API response",
				"method", req.Method,
				"path", req.URL.Path,
				"status", resp.StatusCode,
				"elapsed", elapsed.Round(time.Millisecond))
		},
		OnError: func(req *http.Request, err error) {
			logger.Warn("API request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		},
	}
}

func (h Hooks) request(req *http.Request) {
	if h.OnRequest != nil {
		h.OnRequest(req)
	}
}

func (h Hooks) response(req *http.Request, resp *http.Response, elapsed time.Duration) {
	if h.OnResponse != nil {
		h.OnResponse(req, resp, elapsed)
	}
}

func (h Hooks) failure(req *http.Request, err error) {
	if h.OnError != nil {
		h.OnError(req, err)
	}
}
