package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartBody represents a multipart/form-data request body.
type MultipartBody struct {
	// Fields are simple key-value form fields.
	Fields map[string]string
	// Files are file upload fields.
	Files []FileField
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "file", "avatar").
	FieldName string
	// FileName is the file name sent to the server.
	FileName string
	// ContentType is the MIME type. If empty, uses application/octet-stream.
	ContentType string
	// Data is the file content. Used if Reader is nil.
	Data []byte
	// Reader is an alternative to Data for large files.
	Reader io.Reader
}

// Part is one entry of a multipart/related body.
type Part struct {
	// Headers are the part headers, e.g. Content-Type.
	Headers map[string]string
	// Body is a string, []byte or io.Reader.
	Body any
}

// encode builds the form-data body and returns the reader and content type.
func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	// Sorted for a stable wire order.
	for _, k := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		var part io.Writer
		var err error

		if f.ContentType != "" {
			header := make(textproto.MIMEHeader)
			header.Set("Content-Disposition",
				`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(f.FileName)+`"`)
			header.Set("Content-Type", f.ContentType)
			part, err = w.CreatePart(header)
		} else {
			part, err = w.CreateFormFile(f.FieldName, f.FileName)
		}
		if err != nil {
			return nil, "", err
		}

		if f.Data != nil {
			if _, err := part.Write(f.Data); err != nil {
				return nil, "", err
			}
		} else if f.Reader != nil {
			if _, err := io.Copy(part, f.Reader); err != nil {
				return nil, "", err
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// encodeRelated builds a multipart/related body from parts.
func encodeRelated(parts []Part) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for i, p := range parts {
		header := make(textproto.MIMEHeader, len(p.Headers))
		for k, v := range p.Headers {
			header.Set(k, v)
		}
		pw, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if err := writePartBody(pw, p.Body); err != nil {
			return nil, "", fmt.Errorf("part %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, "multipart/related; boundary=" + w.Boundary(), nil
}

func writePartBody(w io.Writer, body any) error {
	switch v := body.(type) {
	case nil:
		return nil
	case string:
		_, err := io.WriteString(w, v)
		return err
	case []byte:
		_, err := w.Write(v)
		return err
	case io.Reader:
		_, err := io.Copy(w, v)
		return err
	default:
		return errors.New("part body must be a string, []byte or io.Reader")
	}
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
