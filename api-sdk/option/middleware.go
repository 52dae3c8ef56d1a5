package option

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/tidwall/gjson"
)

// identity payloads carry the user's email
var emailFieldRegex = regexp.MustCompile(`"email"\s*:\s*"[^"]*"`)

func redactBody(body []byte) string {
	if len(body) == 0 {
		return "-"
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err == nil {
		body = compact.Bytes()
	}
	return emailFieldRegex.ReplaceAllString(string(body), `"email":"[REDACTED]"`)
}

// requestLabel names a command request by its type and user, and any other
// request by method and path.
func requestLabel(r *http.Request, body []byte) string {
	label := r.Method + " " + r.URL.Path
	if command := gjson.GetBytes(body, "type"); command.Exists() {
		label += " " + command.String()
		if user := gjson.GetBytes(body, "userId"); user.String() != "" {
			label += " user=" + user.String()
		}
	}
	return label
}

func readRequestBody(r *http.Request) []byte {
	if r.GetBody == nil {
		return nil
	}
	rc, err := r.GetBody()
	if err != nil {
		return nil
	}
	defer rc.Close()

	body, _ := io.ReadAll(rc)
	return body
}

// WithDebugLog logs every attempt: the command and its payload, then the
// status, the elapsed time and the envelope that came back.
func WithDebugLog(logger *log.Logger) RequestOption {
	if logger == nil {
		logger = log.Default()
	}

	return WithMiddleware(func(r *http.Request, next MiddlewareNext) (*http.Response, error) {
		reqBody := readRequestBody(r)
		label := requestLabel(r, reqBody)
		logger.Printf("-> %s %s", label, redactBody(reqBody))

		start := time.Now()
		resp, err := next(r)
		elapsed := time.Since(start).Round(time.Millisecond)

		if err != nil {
			logger.Printf("<- %s failed after %s: %v", label, elapsed, err)
			return resp, err
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
		if readErr != nil {
			logger.Printf("<- %s %d after %s: reading body: %v", label, resp.StatusCode, elapsed, readErr)
			return resp, nil
		}

		logger.Printf("<- %s %d after %s %s", label, resp.StatusCode, elapsed, redactBody(respBody))
		return resp, nil
	})
}
