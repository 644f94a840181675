package goPoP

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// RequestData snapshots an http.Request into [HTTPRequestData].
//
// Header names are sorted before conversion: Go's header map has no stable
// iteration order, and the canonical order of the h claim must be
// deterministic for the same logical request. Name casing and values are
// preserved as-is.
//
// The body is read through GetBody when available so the request stays
// replayable; otherwise Body is consumed and replaced with an equivalent
// reader.
func RequestData(req *http.Request) (HTTPRequestData, error) {
	if req == nil {
		return HTTPRequestData{}, fmt.Errorf("%w: nil request", ErrInvalidArgument)
	}

	data := HTTPRequestData{
		Method: req.Method,
		URL:    req.URL,
	}

	names := make([]string, 0, len(req.Header))
	for name := range req.Header {
		names = append(names, name)
	}
	sort.Strings(names)

	data.Headers = make([]HeaderField, 0, len(names))
	for _, name := range names {
		values := make([]string, len(req.Header[name]))
		copy(values, req.Header[name])
		data.Headers = append(data.Headers, HeaderField{Name: name, Values: values})
	}

	body, err := snapshotBody(req)
	if err != nil {
		return HTTPRequestData{}, err
	}
	data.Body = body

	return data, nil
}

func snapshotBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// SignRequest mints a PoP token binding accessToken to req and attaches it
// under the configured header, "Authorization: PoP {token}" by default.
//
// The request URL, not the Host header, names the host; the authorization
// header itself is always excluded from the h claim, so attaching the token
// does not invalidate what was signed.
func (e *Engine) SignRequest(ctx context.Context, req *http.Request, accessToken string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if req == nil {
		return ErrNilDescriptor
	}

	data, err := RequestData(req)
	if err != nil {
		return err
	}

	token, err := e.Issue(ctx, &CreationDescriptor{
		AccessToken: accessToken,
		Request:     data,
	})
	if err != nil {
		return err
	}

	value := token
	if scheme := e.config.Request.Scheme; scheme != "" {
		value = scheme + " " + token
	}
	req.Header.Set(e.config.Request.HeaderName, value)

	e.metricInc(MetricRequestSigned)
	e.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditRequestSigned,
		Success:   true,
	})
	return nil
}
