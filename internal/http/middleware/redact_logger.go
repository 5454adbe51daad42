// Access logging with scrubbing. Login and register requests carry email
// addresses, the Authorization header carries session tokens, and the
// recognition endpoints may carry upstream API tokens in query strings, so
// the plain Logger middleware is not enough for this surface. Bodies are
// never logged.
package middleware

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Compiled once. The UUID pattern runs before the email pattern so request
// ids embedded in values are labeled as ids, not half-matched as addresses.
var (
	redactUUID  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmail = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
)

// Query parameters whose values are secrets regardless of shape.
var secretParams = map[string]struct{}{
	"api_token":    {},
	"access_token": {},
	"token":        {},
}

// RedactOptions configures extra scrub behavior for RedactingLogger.
//
// MaskHeaders lists additional header names whose values are replaced with
// "[REDACTED]" wholesale. Matching is case-insensitive and merged with the
// built-in set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = redactUUID.ReplaceAllString(s, "[REDACTED:id]")
	return redactEmail.ReplaceAllString(s, "[REDACTED:email]")
}

// scrubQuery masks secret parameter values outright and scrubs the rest.
// A query string that fails to parse is scrubbed as an opaque blob.
func scrubQuery(raw string) string {
	if raw == "" {
		return raw
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return scrub(raw)
	}
	for k := range vals {
		if _, secret := secretParams[strings.ToLower(k)]; secret {
			vals[k] = []string{"[REDACTED]"}
			continue
		}
		for i, v := range vals[k] {
			vals[k][i] = scrub(v)
		}
	}
	return vals.Encode()
}

// RedactingLogger returns the access-log middleware. It records method,
// route, query, status, response size and latency as structured JSON, with
// header and query values scrubbed first. Severity follows the status code:
// info, warn for 4xx, error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		query := scrubQuery(c.Request.URL.RawQuery)

		headers := make(map[string]string, len(c.Request.Header))
		for name, vals := range c.Request.Header {
			if _, hide := masked[strings.ToLower(name)]; hide {
				headers[name] = "[REDACTED]"
				continue
			}
			headers[name] = scrub(strings.Join(vals, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		rid := c.Writer.Header().Get(requestIDHeader)
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
