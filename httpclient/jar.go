package httpclient

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// CookieJar is an http.CookieJar with string-based helpers.
type CookieJar interface {
	http.CookieJar
	// SetCookie stores a Set-Cookie line for rawURL.
	SetCookie(cookie, rawURL string) error
	// GetCookieString returns the Cookie header value sent to rawURL.
	GetCookieString(rawURL string) (string, error)
	// GetCookies returns the cookies sent to rawURL.
	GetCookies(rawURL string) ([]*http.Cookie, error)
}

type jar struct {
	*cookiejar.Jar
}

// NewJar returns an in-memory cookie jar using the public suffix list.
func NewJar() CookieJar {
	// cookiejar.New never fails.
	j, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	return &jar{Jar: j}
}

func (j *jar) SetCookie(cookie, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse cookie url: %w", err)
	}
	c, err := http.ParseSetCookie(cookie)
	if err != nil {
		return fmt.Errorf("parse cookie: %w", err)
	}
	j.SetCookies(u, []*http.Cookie{c})
	return nil
}

func (j *jar) GetCookies(rawURL string) ([]*http.Cookie, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse cookie url: %w", err)
	}
	return j.Cookies(u), nil
}

func (j *jar) GetCookieString(rawURL string) (string, error) {
	cookies, err := j.GetCookies(rawURL)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; "), nil
}
