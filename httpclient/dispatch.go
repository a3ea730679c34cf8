package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/webrequest/logger"
	"github.com/kbukum/webrequest/observability"
)

const readChunkSize = 32 * 1024

// exchange is the untyped outcome of one request.
type exchange struct {
	opts *Options
	req  *http.Request
	resp *http.Response
	raw  []byte
}

// dispatch runs the request behind h and settles its typed result.
func dispatch[T any](ctx context.Context, c *Client, h *Handle[T]) (*Response[T], error) {
	ex, err := c.execute(ctx, h.ID, h.Options, h.stream)
	if err != nil {
		return nil, err
	}

	body, decodeErr := decodeContent[T](ex.raw, ex.resp.Header, ex.opts.Encoding, ex.opts.JSON)
	resp := &Response[T]{
		ID:      h.ID,
		Options: h.Options,
		Message: ex.resp,
		body:    body,
		raw:     ex.raw,
	}
	if ex.opts.Jar != nil {
		resp.jar = ex.opts.Jar
		resp.requestURL = ex.req.URL
	}

	if code, failed := ClassifyStatusCode(resp.StatusCode()); failed && c.strictFor(ex.opts) {
		c.log.Debug("response rejected", logger.Fields(
			logger.FieldRequestID, h.ID,
			logger.FieldStatus, resp.StatusCode(),
			logger.FieldErrorCode, code.String(),
		))
		return nil, &ResponseError{Code: code, Response: resp}
	}
	if decodeErr != nil {
		return nil, c.requestError(ErrCodeDecode, h.ID, h.Options, ex, decodeErr)
	}
	return resp, nil
}

// execute sends the request and reads the full body.
func (c *Client) execute(ctx context.Context, id string, given *Options, s *Stream) (ex *exchange, err error) {
	opts := mergeOptions(c.baseline(), given)
	if opts.HAR != nil {
		opts.HAR.apply(opts)
	}
	opts.Method = strings.ToUpper(opts.Method)
	if opts.Method == "" {
		opts.Method = http.MethodGet
	}
	if opts.UseJar && opts.Jar == nil {
		opts.Jar = NewJar()
	}
	ex = &exchange{opts: opts}

	if err := opts.validate(); err != nil {
		return ex, c.requestError(ErrCodeValidation, id, given, ex, err)
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := buildRequest(ctx, opts, s.upload())
	if err != nil {
		return ex, c.requestError(ErrCodeValidation, id, given, ex, err)
	}
	hc, cleanup, err := c.httpClientFor(opts)
	if err != nil {
		return ex, c.requestError(ErrCodeValidation, id, given, ex, err)
	}
	defer cleanup()

	ctx, span := observability.StartClientSpan(ctx, c.tracer, req.Method, req.URL.String())
	defer span.End()
	span.SetAttributes(attribute.String(observability.AttrRequestID, id))
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	ex.req = req

	log := c.log.WithFields(logger.Fields(
		logger.FieldRequestID, id,
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.Redacted(),
	))
	log.Debug("request dispatched")

	start := time.Now()
	c.metrics.RecordStart(ctx)
	defer func() {
		status, outcome := 0, "ok"
		if ex.resp != nil {
			status = ex.resp.StatusCode
		}
		if err != nil {
			outcome = errorCode(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			log.Debug("request failed", logger.MergeWithDuration(logger.Fields(
				logger.FieldError, err.Error(),
				logger.FieldErrorCode, outcome,
			), time.Since(start)))
		} else {
			span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, status))
			if status >= 400 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			log.Debug("request completed", logger.MergeWithDuration(logger.Fields(
				logger.FieldStatus, status,
				logger.FieldBytes, len(ex.raw),
			), time.Since(start)))
		}
		c.metrics.RecordEnd(ctx, req.Method, req.URL.Host, outcome, status, int64(len(ex.raw)), time.Since(start))
	}()

	s.emitRequest(req)
	resp, err := hc.Do(req)
	if err != nil {
		return ex, c.requestError(classifyTransport(ctx, err), id, given, ex, err)
	}
	defer func() { _ = resp.Body.Close() }()
	ex.resp = resp
	s.emitResponse(resp)

	body, closeBody, err := contentDecoder(resp, opts.Gzip)
	if err != nil {
		return ex, c.requestError(ErrCodeDecode, id, given, ex, err)
	}
	defer func() { _ = closeBody() }()

	raw, err := readBody(ctx, s, body)
	ex.raw = raw
	if err != nil {
		return ex, c.requestError(classifyTransport(ctx, err), id, given, ex, err)
	}
	s.emitComplete(resp, raw)
	return ex, nil
}

// readBody reads r to EOF, honoring pause and emitting each chunk.
func readBody(ctx context.Context, s *Stream, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		if err := s.waitResumed(ctx); err != nil {
			return buf.Bytes(), err
		}
		n, err := r.Read(chunk)
		if n > 0 {
			data := bytes.Clone(chunk[:n])
			buf.Write(data)
			s.emitData(data)
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return buf.Bytes(), err
		}
	}
}

func (c *Client) requestError(code ErrorCode, id string, given *Options, ex *exchange, err error) *RequestError {
	e := &RequestError{Code: code, ID: id, Options: given, Err: err}
	switch {
	case ex.req != nil:
		e.Request = ex.req
		e.Method = ex.req.Method
		e.URL = ex.req.URL.Redacted()
	case ex.opts != nil:
		e.Method = ex.opts.Method
		e.URL = ex.opts.URL
	}
	return e
}

func errorCode(err error) ErrorCode {
	if code, ok := requestCode(err); ok {
		return code
	}
	code, _ := responseCode(err)
	return code
}
