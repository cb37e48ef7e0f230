package llm

import (
	"net/http"
	"net/http/httputil"
	"regexp"
	"time"

	"github.com/voxa-project/voxa-agent/logger"
)

const dumpLimit = 4096

var (
	authRe = regexp.MustCompile(`(?i)(Authorization: Bearer |x-goog-api-key: |key=)[^\s&"]+`)
)

// loggingTransport dumps provider traffic at debug level with
// credentials redacted. Wraps http.DefaultTransport when next is nil.
type loggingTransport struct {
	next http.RoundTripper
	log  *logger.Logger
}

func newLoggingTransport(next http.RoundTripper) *loggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, log: logger.New("llm.http")}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, true); err == nil {
		t.log.Debug("request:\n%s", redact(string(dump)))
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.log.Debug("transport error after %s: %v", time.Since(start), err)
		return nil, err
	}

	if dump, err := httputil.DumpResponse(resp, true); err == nil {
		t.log.WithField("elapsed", time.Since(start).String()).
			Debug("response:\n%s", redact(string(dump)))
	}
	return resp, nil
}

func redact(s string) string {
	s = authRe.ReplaceAllString(s, "${1}[REDACTED]")
	if len(s) > dumpLimit {
		s = s[:dumpLimit] + "... (truncated)"
	}
	return s
}
