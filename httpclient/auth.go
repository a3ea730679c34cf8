package httpclient

import "net/http"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer sends Authorization: Bearer <token>.
	AuthBearer
	// AuthBasic sends HTTP Basic credentials.
	AuthBasic
	// AuthAPIKey sends a key in a header or query parameter.
	AuthAPIKey
	// AuthCustom runs a request modifier. Signing schemes such as OAuth 1.0,
	// AWS SigV4 or Hawk plug in here.
	AuthCustom
)

func (t AuthType) String() string {
	switch t {
	case AuthBearer:
		return "bearer"
	case AuthBasic:
		return "basic"
	case AuthAPIKey:
		return "api_key"
	case AuthCustom:
		return "custom"
	default:
		return "none"
	}
}

const defaultAPIKeyName = "X-API-Key"

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Token is the bearer token.
	Token string
	// Username and Password are the basic credentials.
	Username string
	Password string
	// Key is the API key value.
	Key string
	// In is "header" (default) or "query".
	In string
	// Name is the header or query parameter name. Defaults to X-API-Key.
	Name string
	// Apply modifies the request for AuthCustom.
	Apply func(*http.Request)
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent in the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: defaultAPIKeyName}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent as a query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates an auth config from a request modifier.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// credentialsAuth picks bearer auth when a token is given, else basic.
func credentialsAuth(user, pass, bearer string) *AuthConfig {
	if bearer != "" {
		return BearerAuth(bearer)
	}
	return BasicAuth(user, pass)
}

// apply writes credentials onto req. A nil config is a no-op.
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil {
		return
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = defaultAPIKeyName
		}
		if a.In != "query" {
			req.Header.Set(name, a.Key)
			return
		}
		q := req.URL.Query()
		q.Set(name, a.Key)
		req.URL.RawQuery = q.Encode()
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}
