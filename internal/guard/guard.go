// Package guard decides whether a navigation target may be entered based on
// the current session. Protected routes redirect unauthenticated visitors to
// the home path, carrying the requested path so it can be resumed after login.
package guard

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/filmsage/filmsage/internal/models"
	"github.com/filmsage/filmsage/internal/session"
)

// HomePath is where denied navigations land. Login happens from the home
// screen, so there is no separate login route to send visitors to.
const HomePath = "/"

// Decision is the outcome of evaluating a rule against a session.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Allow is the decision that lets a navigation proceed.
var Allow = Decision{Allowed: true}

// Redirect builds a denial that sends the visitor to target, recording the
// originally requested path in the redirect query parameter.
func Redirect(target, requested string) Decision {
	if requested != "" && requested != target {
		target += "?redirect=" + url.QueryEscape(requested)
	}
	return Decision{RedirectTo: target}
}

// Rule evaluates a session against the requirements of a route.
type Rule func(sess session.Session, requested string) Decision

// AllowAll admits any visitor.
func AllowAll() Rule {
	return func(session.Session, string) Decision {
		return Allow
	}
}

// RequireAuthenticated admits only visitors with an active session.
func RequireAuthenticated() Rule {
	return func(sess session.Session, requested string) Decision {
		if !sess.Authenticated {
			return Redirect(HomePath, requested)
		}
		return Allow
	}
}

// RequireRole admits only authenticated visitors holding the given role.
// Unauthenticated visitors and wrong-role visitors are both sent home, so a
// probe cannot distinguish a protected route from a missing one.
func RequireRole(role string) Rule {
	return func(sess session.Session, requested string) Decision {
		if !sess.Authenticated || sess.User == nil || sess.User.Role != role {
			return Redirect(HomePath, requested)
		}
		return Allow
	}
}

// RequireAdmin admits only administrators.
func RequireAdmin() Rule {
	return RequireRole(models.RoleAdmin)
}

// Route couples a path pattern with the rule protecting it. Pattern segments
// starting with a colon match any single segment and are captured as params.
type Route struct {
	Name    string
	Pattern string
	Rule    Rule
}

// match reports whether path fits the route's pattern and returns captured
// parameters.
func (r Route) match(path string) (map[string]string, bool) {
	patternParts := splitPath(r.Pattern)
	pathParts := splitPath(path)

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	var params map[string]string
	for i, part := range patternParts {
		if strings.HasPrefix(part, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[part[1:]] = pathParts[i]
			continue
		}
		if part != pathParts[i] {
			return nil, false
		}
	}

	return params, true
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Resolution describes where a navigation ended up.
type Resolution struct {
	Route  *Route
	Params map[string]string
	Decision
}

// SessionSource supplies the current session, refreshed from durable storage.
// Implemented by [session.Manager].
type SessionSource interface {
	Restore()
	Current() session.Session
}

// Navigator evaluates navigations against a route table. Session state is
// re-read from storage before every evaluation so that changes made elsewhere
// (another window, an expired token) take effect on the next navigation.
type Navigator struct {
	routes   []Route
	sessions SessionSource
	logger   *log.Logger
}

// NewNavigator creates a navigator over the given route table.
func NewNavigator(routes []Route, sessions SessionSource, logger *log.Logger) *Navigator {
	if logger == nil {
		logger = log.Default()
	}
	return &Navigator{routes: routes, sessions: sessions, logger: logger}
}

// Navigate resolves path against the route table and evaluates the matched
// route's rule. Unknown paths are an error, not a denial.
func (n *Navigator) Navigate(path string) (*Resolution, error) {
	requested := path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	n.sessions.Restore()

	for i := range n.routes {
		route := &n.routes[i]
		params, ok := route.match(path)
		if !ok {
			continue
		}

		decision := Allow
		if route.Rule != nil {
			decision = route.Rule(n.sessions.Current(), requested)
		}

		if !decision.Allowed {
			n.logger.Debug("navigation denied", "route", route.Name, "redirect", decision.RedirectTo)
		}

		return &Resolution{Route: route, Params: params, Decision: decision}, nil
	}

	return nil, fmt.Errorf("no route matches %q", path)
}

// DefaultRoutes is the application route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "home", Pattern: "/", Rule: AllowAll()},
		{Name: "profile", Pattern: "/profile", Rule: RequireAuthenticated()},
		{Name: "search", Pattern: "/search", Rule: RequireAuthenticated()},
		{Name: "favorites", Pattern: "/favorites", Rule: RequireAuthenticated()},
		{Name: "movie-detail", Pattern: "/movie/:id", Rule: AllowAll()},
		{Name: "recommendations", Pattern: "/recommendations", Rule: RequireAuthenticated()},
		{Name: "admin-dashboard", Pattern: "/admin", Rule: RequireAdmin()},
		{Name: "user-reviews", Pattern: "/user/:userId/reviews", Rule: RequireAuthenticated()},
		{Name: "create-review", Pattern: "/review/create/:movieId", Rule: RequireAuthenticated()},
		{Name: "contact", Pattern: "/contact", Rule: AllowAll()},
	}
}
