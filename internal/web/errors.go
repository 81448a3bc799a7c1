package web

// errors.go renders failures for the site.
//
// Handlers call respondError with the technical error. It is logged with the
// request ID, wrapped in a core.UserError, and shown as a JSON body or a
// full error page depending on the client.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/JonMunkholm/portfolio/internal/core"
	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/JonMunkholm/portfolio/internal/web/templates"
)

var (
	errNotFound         = errors.New("file not found: no such page")
	errMethodNotAllowed = errors.New("method not allowed")
	errRateLimited      = errors.New("rate limit exceeded")
	errInternal         = errors.New("internal error")
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a user-friendly error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	ue := core.NewUserError(err)
	userMsg := ue.User

	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", ue.Technical.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, statusCode)
		return
	}

	if statusCode == http.StatusNotFound {
		userMsg = core.UserMessage{Message: "The page you are looking for does not exist."}
	} else if statusCode >= 500 && !core.IsUserFacing(err) {
		userMsg.Action = "Please try again later."
	}
	s.render(w, r, statusCode, templates.ErrorPage(s.basePage("Error"), statusCode, userMsg))
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.URL.Path == "/healthz"
}

// recoverer turns panics into a logged 500 page.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logging.FromContext(r.Context()).Error("panic recovered",
				"path", r.URL.Path,
				"panic", rvr,
				"stack", string(debug.Stack()),
			)
			if r.Header.Get("Connection") != "Upgrade" {
				s.respondError(w, r, errInternal, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, errNotFound, http.StatusNotFound)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, errMethodNotAllowed, http.StatusMethodNotAllowed)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.respondError(w, r, errRateLimited, http.StatusTooManyRequests)
}
