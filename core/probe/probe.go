// Package probe issues a single bounded GET against a local endpoint and
// fingerprints the response.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/schema"
)

// MaxBodyBytes caps how much of the response body is read for fingerprinting.
const MaxBodyBytes = 2 << 20

// Performance band upper bounds.
const (
	ExcellentLatency  = 100 * time.Millisecond
	GoodLatency       = 500 * time.Millisecond
	AcceptableLatency = 2000 * time.Millisecond
)

// Performance labels.
const (
	PerfExcellent  = "excellent"
	PerfGood       = "good"
	PerfAcceptable = "acceptable"
	PerfSlow       = "slow"
)

// Probe sends exactly one GET to http://host:port/path. Redirects are not
// followed and the whole exchange is bounded by timeout. Failures are
// reported through the State field, never as an error.
func Probe(ctx context.Context, host string, port int, path string, timeout time.Duration) schema.EndpointReport {
	if host == "" {
		host = contract.DefaultHost
	}
	if path == "" {
		path = contract.DefaultURLPath
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if timeout <= 0 {
		timeout = contract.DefaultTimeout
	}

	url := "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + path
	report := schema.EndpointReport{URL: url, Host: host, Port: port, Path: path}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		report.State = schema.Unexpected
		report.Error = err.Error()
		return report
	}
	req.Header.Set("User-Agent", "qascope-probe")

	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		report.Latency = time.Since(start)
		classifyError(&report, err, timeout)
		return report
	}
	defer func() { _ = resp.Body.Close() }()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	report.Latency = time.Since(start)
	if readErr != nil {
		contract.Logger().Debug("partial probe body", "url", url, "error", readErr)
	}

	report.StatusCode = resp.StatusCode
	report.ContentType = resp.Header.Get("Content-Type")
	report.ContentLength = len(body)
	report.Performance = PerformanceBand(report.Latency)
	Fingerprint(&report, body, resp.Header)

	if resp.StatusCode >= 500 {
		report.State = schema.Unexpected
		report.Error = fmt.Sprintf("server returned %s", resp.Status)
		return report
	}
	report.State = schema.Accessible
	return report
}

// PerformanceBand maps a latency to its label.
func PerformanceBand(latency time.Duration) string {
	switch {
	case latency < ExcellentLatency:
		return PerfExcellent
	case latency < GoodLatency:
		return PerfGood
	case latency < AcceptableLatency:
		return PerfAcceptable
	default:
		return PerfSlow
	}
}

func classifyError(report *schema.EndpointReport, err error, timeout time.Duration) {
	var netErr net.Error
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		report.State = schema.ConnectionRefused
		report.Error = "connection refused"
		report.Hints = []string{
			fmt.Sprintf("nothing is listening on port %d", report.Port),
			"start the development server and retry",
			"check that the server binds to " + report.Host,
		}
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		report.State = schema.Timeout
		report.Error = fmt.Sprintf("no response within %s", timeout)
		report.Hints = []string{
			"the server accepted the connection but did not answer in time",
			"check for blocking startup work or a long first compile",
			"raise --timeout if the endpoint is known to be slow",
		}
	default:
		report.State = schema.Unexpected
		report.Error = err.Error()
	}
}
