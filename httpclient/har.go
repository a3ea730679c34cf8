package httpclient

import (
	"net/url"
	"strings"
)

// HARRequest is the request entry of an HTTP Archive (HAR 1.2) log.
type HARRequest struct {
	Method      string         `json:"method"`
	URL         string         `json:"url"`
	HTTPVersion string         `json:"httpVersion,omitempty"`
	Headers     []HARNameValue `json:"headers,omitempty"`
	QueryString []HARNameValue `json:"queryString,omitempty"`
	Cookies     []HARNameValue `json:"cookies,omitempty"`
	PostData    *HARPostData   `json:"postData,omitempty"`
}

// HARNameValue is a header, query or cookie pair.
type HARNameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARPostData is the request body of a HAR entry.
type HARPostData struct {
	MimeType string     `json:"mimeType"`
	Text     string     `json:"text,omitempty"`
	Params   []HARParam `json:"params,omitempty"`
}

// HARParam is a form parameter. FileName marks a file upload.
type HARParam struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// apply overwrites opts with the fields the entry sets.
func (h *HARRequest) apply(opts *Options) {
	if h.Method != "" {
		opts.Method = h.Method
	}
	if h.URL != "" {
		opts.URL = h.URL
	}
	if len(h.Headers) > 0 {
		if opts.Headers == nil {
			opts.Headers = make(map[string]string, len(h.Headers))
		}
		for _, nv := range h.Headers {
			setHeader(opts.Headers, nv.Name, nv.Value, true)
		}
	}
	if len(h.QueryString) > 0 {
		if opts.Query == nil {
			opts.Query = make(url.Values)
		}
		for _, nv := range h.QueryString {
			opts.Query.Add(nv.Name, nv.Value)
		}
	}
	if len(h.Cookies) > 0 {
		pairs := make([]string, 0, len(h.Cookies))
		for _, c := range h.Cookies {
			pairs = append(pairs, c.Name+"="+c.Value)
		}
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		setHeader(opts.Headers, "Cookie", strings.Join(pairs, "; "), true)
	}
	if h.PostData != nil {
		h.PostData.apply(opts)
	}
}

func (p *HARPostData) apply(opts *Options) {
	clearBody(opts)
	mediaType, _ := ParseContentType(p.MimeType)

	switch {
	case mediaType == "application/x-www-form-urlencoded" && len(p.Params) > 0:
		form := make(url.Values, len(p.Params))
		for _, param := range p.Params {
			form.Add(param.Name, param.Value)
		}
		opts.Form = form
	case mediaType == "multipart/form-data" && len(p.Params) > 0:
		body := &MultipartBody{Fields: make(map[string]string)}
		for _, param := range p.Params {
			if param.FileName == "" {
				body.Fields[param.Name] = param.Value
				continue
			}
			body.Files = append(body.Files, FileField{
				FieldName:   param.Name,
				FileName:    param.FileName,
				ContentType: param.ContentType,
				Data:        []byte(param.Value),
			})
		}
		opts.FormData = body
	default:
		opts.Body = p.Text
		if p.MimeType != "" {
			if opts.Headers == nil {
				opts.Headers = make(map[string]string)
			}
			setHeader(opts.Headers, "Content-Type", p.MimeType, true)
		}
	}
}
