// Package submit posts portal forms and reports the outcome as toasts.
package submit

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field is a single name/value pair of a form.
type Field struct {
	Name  string
	Value string
}

// File is a file input. Content is copied into the request unchanged.
type File struct {
	Field       string `validate:"required"`
	Filename    string `validate:"required"`
	ContentType string
	Content     io.Reader `validate:"required"`
}

// Form describes a form as declared in a page: where it posts, how, and
// its field values in document order.
type Form struct {
	Action string  `validate:"required,url"`
	Method string  `validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Fields []Field `validate:"dive"`
	Files  []File  `validate:"dive"`
}

var validate = validator.New()

// Validate checks the form declaration.
func (f Form) Validate() error {
	f.Method = strings.ToUpper(strings.TrimSpace(f.Method))
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("submit: invalid form: %w", err)
	}
	return nil
}

// method returns the declared method, defaulting to POST.
func (f Form) method() string {
	m := strings.ToUpper(strings.TrimSpace(f.Method))
	if m == "" {
		return http.MethodPost
	}
	return m
}

// newRequest serialises the form. GET forms carry fields in the query
// string; everything else is sent as multipart/form-data.
func (f Form) newRequest(ctx context.Context) (*http.Request, error) {
	method := f.method()
	if method == http.MethodGet {
		u, err := url.Parse(f.Action)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		for _, field := range f.Fields {
			q.Add(field.Name, field.Value)
		}
		u.RawQuery = q.Encode()
		return http.NewRequestWithContext(ctx, method, u.String(), nil)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, field := range f.Fields {
		if err := mw.WriteField(field.Name, field.Value); err != nil {
			return nil, err
		}
	}
	for _, file := range f.Files {
		part, err := mw.CreatePart(filePartHeader(file))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, fmt.Errorf("submit: read file %s: %w", file.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, f.Action, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(file File) map[string][]string {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename))},
		"Content-Type": {contentType},
	}
}
