package analyzer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/helmcode/sitecritic/pkg/llm"
)

// ErrorKind categorizes a failed analysis.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRateLimited
	KindInvalidCredential
	KindMalformedRequest
	KindUnsupportedMedia
	KindRemoteServerError
	KindNetworkError
	KindTimeout
	KindUnexpectedResponse
	// KindInputUnavailable means the screenshot could not be read.
	KindInputUnavailable
	// KindCanceled means the caller abandoned the operation.
	KindCanceled
)

var kindNames = map[ErrorKind]string{
	KindUnknown:            "Unknown",
	KindRateLimited:        "RateLimited",
	KindInvalidCredential:  "InvalidCredential",
	KindMalformedRequest:   "MalformedRequest",
	KindUnsupportedMedia:   "UnsupportedMedia",
	KindRemoteServerError:  "RemoteServerError",
	KindNetworkError:       "NetworkError",
	KindTimeout:            "Timeout",
	KindUnexpectedResponse: "UnexpectedResponse",
	KindInputUnavailable:   "InputUnavailable",
	KindCanceled:           "Canceled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Retryable reports whether another attempt may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimited, KindRemoteServerError, KindNetworkError, KindTimeout:
		return true
	default:
		return false
	}
}

// Hint is the stable, user-facing explanation of a kind.
func (k ErrorKind) Hint() string {
	switch k {
	case KindRateLimited:
		return "The API rate limit was exceeded. Wait a moment and try again."
	case KindInvalidCredential:
		return "The API key was rejected. Check the key for the selected provider."
	case KindMalformedRequest:
		return "The API rejected the request as malformed. Try a different model or a smaller screenshot."
	case KindUnsupportedMedia:
		return "The API does not accept this image format."
	case KindRemoteServerError:
		return "The API is having server problems. Try again later."
	case KindNetworkError:
		return "Could not reach the API. Check your internet connection."
	case KindTimeout:
		return "The API did not answer in time. Try again or raise --timeout."
	case KindUnexpectedResponse:
		return "The API answered without any critique text."
	case KindInputUnavailable:
		return "Could not read the screenshot."
	case KindCanceled:
		return "The analysis was canceled."
	default:
		return "The analysis failed for an unknown reason."
	}
}

// ExitCode is the process exit status for a kind.
func (k ErrorKind) ExitCode() int {
	switch k {
	case KindRateLimited:
		return 10
	case KindInvalidCredential:
		return 11
	case KindMalformedRequest:
		return 12
	case KindUnsupportedMedia:
		return 13
	case KindRemoteServerError:
		return 14
	case KindNetworkError:
		return 15
	case KindTimeout:
		return 16
	case KindUnexpectedResponse:
		return 17
	case KindInputUnavailable:
		return 18
	case KindCanceled:
		return 130
	default:
		return 19
	}
}

// Error is the only error type Analyze and Review return.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, status int, err error) *Error {
	return &Error{
		Kind:       kind,
		Message:    message,
		StatusCode: status,
		Retryable:  kind.Retryable(),
		Err:        err,
	}
}

// signal is a failure reduced to the facts classification depends on.
type signal struct {
	status  int
	network bool
	timeout bool
	empty   bool
}

func normalize(err error, timedOut bool) signal {
	s := signal{timeout: timedOut}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) {
		s.status = statusErr.StatusCode
	}
	if errors.Is(err, llm.ErrEmptyResponse) {
		s.empty = true
	}
	if s.status == 0 && !s.timeout {
		s.network = isNetworkError(err)
	}
	return s
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var (
		dnsErr  *net.DNSError
		opErr   *net.OpError
		urlErr  *url.Error
		netErr  net.Error
		certErr *tls.CertificateVerificationError
		unkAuth x509.UnknownAuthorityError
		hostErr x509.HostnameError
	)
	if errors.As(err, &dnsErr) ||
		errors.As(err, &opErr) ||
		errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.As(err, &certErr) ||
		errors.As(err, &unkAuth) ||
		errors.As(err, &hostErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	// Errors that lost their type on the way up, e.g. from an SDK.
	msg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "no such host", "unexpected eof", "tls handshake", "network is unreachable"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// Classify maps one failed attempt to an Error. timedOut reports that the
// attempt's own deadline fired. It is pure and total.
func Classify(err error, timedOut bool) *Error {
	if err == nil {
		return newError(KindUnknown, "no error", 0, nil)
	}

	s := normalize(err, timedOut)
	msg := err.Error()

	switch {
	case s.timeout:
		return newError(KindTimeout, "request timed out", 0, err)
	case s.status == 429:
		return newError(KindRateLimited, msg, s.status, err)
	case s.status == 401, s.status == 403:
		return newError(KindInvalidCredential, msg, s.status, err)
	case s.status == 400:
		return newError(KindMalformedRequest, msg, s.status, err)
	case s.status == 415:
		return newError(KindUnsupportedMedia, msg, s.status, err)
	case s.status >= 500 && s.status <= 599:
		return newError(KindRemoteServerError, msg, s.status, err)
	case s.status != 0:
		return newError(KindUnknown, msg, s.status, err)
	case s.empty:
		return newError(KindUnexpectedResponse, msg, 0, err)
	case s.network:
		return newError(KindNetworkError, msg, 0, err)
	default:
		return newError(KindUnknown, msg, 0, err)
	}
}
