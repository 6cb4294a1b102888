package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

type config struct {
	header    string
	generate  func() string
	trustPeer bool
}

type Option func(*config)

// WithHeader reads and echoes the ID under a different header name.
func WithHeader(name string) Option {
	return func(c *config) {
		if name != "" {
			c.header = name
		}
	}
}

// WithGenerator replaces the UUIDv7 generator.
func WithGenerator(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.generate = fn
		}
	}
}

// WithoutIncoming ignores IDs sent by the client. Use it when the service
// is exposed directly rather than behind a proxy that sets the header.
func WithoutIncoming() Option {
	return func(c *config) { c.trustPeer = false }
}

func newID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// Middleware assigns every request an ID, reusing a well-formed incoming
// header value. The ID is stored in the context and echoed in the response.
func Middleware(opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{header: Header, generate: newID, trustPeer: true}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cfg.trustPeer {
				id = r.Header.Get(cfg.header)
			}
			if !valid(id) {
				id = cfg.generate()
			}
			w.Header().Set(cfg.header, id)
			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
		})
	}
}

func valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
