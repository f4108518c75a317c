// Package mgmt pkg/mgmt/client.go
package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	maxResponseBytes   = 1 << 20 // 1MB
	okStatus           = 200
)

// ReadError wraps a failed attribute read with the object and attribute
// names for logging.
type ReadError struct {
	Object  string
	Attr    string
	Wrapped error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s %s: %v", e.Object, e.Attr, e.Wrapped)
}

func (e *ReadError) Unwrap() error {
	return e.Wrapped
}

// httpReader reads management attributes over the node's HTTP/JSON bridge.
// One reader per negotiated candidate address.
type httpReader struct {
	baseURL string
	client  *http.Client
}

// NewHTTPReader returns an AttributeReader speaking the HTTP/JSON bridge
// protocol rooted at baseURL (e.g. "http://10.0.0.1:8778/jolokia").
func NewHTTPReader(baseURL string) AttributeReader {
	return &httpReader{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: defaultHTTPTimeout,
		},
	}
}

type readRequest struct {
	Type      string `json:"type"`
	MBean     string `json:"mbean"`
	Attribute string `json:"attribute"`
}

type readResponse struct {
	Value  json.RawMessage `json:"value"`
	Status int             `json:"status"`
	Error  string          `json:"error,omitempty"`
}

// ReadAttribute implements AttributeReader.
func (r *httpReader) ReadAttribute(ctx context.Context, object, attr string) (Value, error) {
	body, err := json.Marshal(readRequest{
		Type:      "read",
		MBean:     object,
		Attribute: attr,
	})
	if err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			_ = err // nothing useful to do on close failure
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return AbsentValue(), &ReadError{
			Object:  object,
			Attr:    attr,
			Wrapped: fmt.Errorf("%w: HTTP %d", ErrAttributeStatus, resp.StatusCode),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}

	var parsed readResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}

	if parsed.Status != okStatus {
		return AbsentValue(), &ReadError{
			Object:  object,
			Attr:    attr,
			Wrapped: fmt.Errorf("%w: status=%d error=%s", ErrAttributeStatus, parsed.Status, parsed.Error),
		}
	}

	value, err := decodeValue(parsed.Value)
	if err != nil {
		return AbsentValue(), &ReadError{Object: object, Attr: attr, Wrapped: err}
	}

	return value, nil
}

// decodeValue converts the bridge's JSON payload into a tagged Value. The
// remote side wraps numbers in several foreign shapes (integer, long,
// float) which all surface as JSON numbers here; structured records such as
// memory usage surface as objects with named numeric sub-fields.
func decodeValue(raw json.RawMessage) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return AbsentValue(), err
	}

	switch payload := v.(type) {
	case json.Number:
		f, err := payload.Float64()
		if err != nil {
			return AbsentValue(), fmt.Errorf("%w: %v", ErrUnexpectedPayload, err)
		}

		return NumberValue(f), nil
	case map[string]interface{}:
		fields := make(map[string]float64, len(payload))

		for name, field := range payload {
			num, ok := field.(json.Number)
			if !ok {
				// Composite records may carry non-numeric metadata;
				// only named numeric sub-fields are extractable.
				continue
			}

			f, err := num.Float64()
			if err != nil {
				continue
			}

			fields[name] = f
		}

		if len(fields) == 0 {
			return AbsentValue(), fmt.Errorf("%w: composite with no numeric fields", ErrUnexpectedPayload)
		}

		return CompositeValue(fields), nil
	case nil:
		return AbsentValue(), fmt.Errorf("%w: null value", ErrUnexpectedPayload)
	default:
		return AbsentValue(), fmt.Errorf("%w: %T", ErrUnexpectedPayload, v)
	}
}
