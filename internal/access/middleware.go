package access

import (
	"net/http"

	"github.com/opicamp/opicamp/internal/platform/httpx"
	"github.com/opicamp/opicamp/internal/shared"
)

// StatusFromSession maps the request session onto guard inputs. Server-side
// there is no pending state: a loaded session is either anonymous or bound
// to a user.
func StatusFromSession(sess *shared.Session) (SessionStatus, Claims) {
	if sess == nil || sess.User() == "" {
		return StatusUnauthenticated, Claims{}
	}
	return StatusAuthenticated, Claims{UserID: sess.User(), Type: sess.UserType()}
}

// RequireAdmin gates a route subtree behind the guard. Browser requests get
// the decision's redirect plus a flash notice; API requests get the error
// envelope so the client can perform the navigation itself.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		status, claims := StatusFromSession(sess)
		decision := g.Authorize(r.Context(), status, claims)
		if decision.Allowed() {
			next.ServeHTTP(w, r)
			return
		}
		if wantsJSON(r) {
			code := http.StatusForbidden
			if decision.Reason == DenyLoginRequired {
				code = http.StatusUnauthorized
			}
			httpx.Error(w, code, decision.Notice)
			return
		}
		if sess != nil && decision.Notice != "" {
			sess.AddFlash(shared.FlashMessage{Kind: "error", Message: decision.Notice})
		}
		http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
	})
}

func wantsJSON(r *http.Request) bool {
	if r.Header.Get("Accept") == "application/json" {
		return true
	}
	return len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/"
}
