package echoserver

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/net/html/charset"
)

// Echo is the JSON document returned by /anything.
type Echo struct {
	Method    string              `json:"method"`
	URL       string              `json:"url"`
	Path      string              `json:"path"`
	Proto     string              `json:"proto"`
	Headers   map[string]string   `json:"headers"`
	Query     map[string][]string `json:"query"`
	Form      map[string][]string `json:"form,omitempty"`
	Files     map[string]string   `json:"files,omitempty"`
	Body      string              `json:"body"`
	RequestID string              `json:"request_id"`
}

// EncodingSample is the text served by /encoding/:charset.
const EncodingSample = "café crème brûlée"

func (s *Server) routes() {
	e := s.engine
	e.Any("/anything", s.anything)
	e.Any("/anything/*path", s.anything)
	e.Any("/status/:code", s.status)
	e.GET("/redirect/:n", s.redirect)
	e.Any("/redirect-to", s.redirectTo)
	e.GET("/cookies", s.cookies)
	e.GET("/cookies/set", s.setCookies)
	e.GET("/gzip", s.compressed("gzip"))
	e.GET("/deflate", s.compressed("deflate"))
	e.GET("/delay/:duration", s.delay)
	e.GET("/bytes/:n", s.sizedBytes)
	e.GET("/stream/:n", s.stream)
	e.GET("/encoding/:charset", s.encoding)
	e.GET("/response-headers", s.responseHeaders)
	e.GET("/basic-auth/:user/:pass", s.basicAuth)
	e.GET("/bearer", s.bearer)
}

func (s *Server) echo(c *gin.Context) (Echo, error) {
	r := c.Request
	out := Echo{
		Method:    r.Method,
		URL:       r.URL.String(),
		Path:      r.URL.Path,
		Proto:     r.Proto,
		Headers:   make(map[string]string, len(r.Header)),
		Query:     r.URL.Query(),
		RequestID: c.GetString("request_id"),
	}
	for k := range r.Header {
		out.Headers[k] = r.Header.Get(k)
	}

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(s.config.MaxBodySize); err != nil {
			return out, err
		}
		out.Form = r.MultipartForm.Value
		out.Files = make(map[string]string)
		for name, files := range r.MultipartForm.File {
			f, err := files[0].Open()
			if err != nil {
				return out, err
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return out, err
			}
			out.Files[name] = string(data)
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return out, err
		}
		out.Form = r.PostForm
	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return out, err
		}
		out.Body = string(data)
	}
	return out, nil
}

func (s *Server) anything(c *gin.Context) {
	out, err := s.echo(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 599 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status code"})
		return
	}
	if code >= 300 && code < 400 {
		c.Header("Location", "/anything")
	}
	c.String(code, http.StatusText(code))
}

func (s *Server) redirect(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid redirect count"})
		return
	}
	if n == 1 {
		c.Redirect(http.StatusFound, "/anything")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/redirect/%d", n-1))
}

func (s *Server) redirectTo(c *gin.Context) {
	target := c.Query("url")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	code := http.StatusFound
	if v := c.Query("status"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 300 && n < 400 {
			code = n
		}
	}
	c.Header("Location", target)
	c.Status(code)
}

func (s *Server) cookies(c *gin.Context) {
	out := make(map[string]string)
	for _, ck := range c.Request.Cookies() {
		out[ck.Name] = ck.Value
	}
	c.JSON(http.StatusOK, gin.H{"cookies": out})
}

func (s *Server) setCookies(c *gin.Context) {
	out := make(map[string]string)
	for name, values := range c.Request.URL.Query() {
		http.SetCookie(c.Writer, &http.Cookie{Name: name, Value: values[0], Path: "/"})
		out[name] = values[0]
	}
	c.JSON(http.StatusOK, gin.H{"cookies": out})
}

func (s *Server) compressed(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := s.echo(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var plain bytes.Buffer
		fmt.Fprintf(&plain, `{"%s":true,"method":%q}`, kind, out.Method)

		var buf bytes.Buffer
		var w io.WriteCloser
		if kind == "gzip" {
			w = gzip.NewWriter(&buf)
		} else {
			w = zlib.NewWriter(&buf)
		}
		if _, err := w.Write(plain.Bytes()); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		if err := w.Close(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Header("Content-Encoding", kind)
		c.Data(http.StatusOK, "application/json", buf.Bytes())
	}
}

func (s *Server) delay(c *gin.Context) {
	d, err := time.ParseDuration(c.Param("duration"))
	if err != nil || d < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
		return
	}
	if s.config.MaxDelay > 0 && d > s.config.MaxDelay {
		d = s.config.MaxDelay
	}
	select {
	case <-time.After(d):
	case <-c.Request.Context().Done():
		return
	}
	s.anything(c)
}

func (s *Server) sizedBytes(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 || int64(n) > s.config.MaxBodySize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
		return
	}
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 256)
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

func (s *Server) stream(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 || n > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid line count"})
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	for i := 0; i < n; i++ {
		fmt.Fprintf(c.Writer, "line %d\n", i)
		c.Writer.Flush()
	}
}

func (s *Server) encoding(c *gin.Context) {
	name := c.Param("charset")
	enc, canonical := charset.Lookup(name)
	if enc == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown charset"})
		return
	}
	data, err := enc.NewEncoder().Bytes([]byte(EncodingSample))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if c.Query("omit_charset") != "" {
		c.Data(http.StatusOK, "text/plain", data)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset="+canonical, data)
}

func (s *Server) responseHeaders(c *gin.Context) {
	for name, values := range c.Request.URL.Query() {
		for _, v := range values {
			c.Writer.Header().Add(name, v)
		}
	}
	c.Status(http.StatusOK)
	_, _ = io.WriteString(c.Writer, c.Query("body"))
}

func (s *Server) basicAuth(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != c.Param("user") || pass != c.Param("pass") {
		c.Header("WWW-Authenticate", `Basic realm="echo"`)
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

func (s *Server) bearer(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "token": token})
}
