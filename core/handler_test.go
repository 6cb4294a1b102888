package core_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentdesk/ats/core"
)

type greetRequest struct {
	Name string `json:"name"`
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.ErrBadRequest
	}
	return nil
}

func TestWrap(t *testing.T) {
	t.Parallel()

	h := func(r *http.Request, req greetRequest) core.Response {
		return core.JSON(map[string]string{"greeting": "hello " + req.Name})
	}

	t.Run("binds and renders", func(t *testing.T) {
		t.Parallel()
		handler := core.Wrap(h, core.WithBinders[greetRequest](decodeJSON))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"acme"}`))
		handler(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hello acme")
	})

	t.Run("binder error uses error handler", func(t *testing.T) {
		t.Parallel()
		handler := core.Wrap(h, core.WithBinders[greetRequest](decodeJSON))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		handler(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "BAD_REQUEST")
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		var got error
		handler := core.Wrap(
			func(*http.Request, struct{}) core.Response { return nil },
			core.WithErrorHandler[struct{}](func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusTeapot)
			}),
		)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.ErrorIs(t, got, core.ErrNilResponse)
		assert.Equal(t, http.StatusTeapot, w.Code)
	})

	t.Run("decorators run outermost first", func(t *testing.T) {
		t.Parallel()
		var order []string
		mark := func(name string) core.Decorator[struct{}] {
			return func(next core.HandlerFunc[struct{}]) core.HandlerFunc[struct{}] {
				return func(r *http.Request, req struct{}) core.Response {
					order = append(order, name)
					return next(r, req)
				}
			}
		}
		handler := core.Wrap(
			func(*http.Request, struct{}) core.Response { return core.NoContent() },
			core.WithDecorators(mark("outer"), mark("inner")),
		)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, []string{"outer", "inner"}, order)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("default error handler hides internal errors", func(t *testing.T) {
		t.Parallel()
		handler := core.Wrap(
			func(*http.Request, struct{}) core.Response { return failing{} },
		)

		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})
}

type failing struct{}

func (failing) Render(http.ResponseWriter, *http.Request) error {
	return errors.New("secret failure")
}
