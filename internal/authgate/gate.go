// Package authgate decides, before a view is rendered, whether the visitor
// should be sent elsewhere.  The decision only looks at whether a session
// token is present; it never asks the API whether the token is still valid.
package authgate

import "strings"

// View identifies a page of the dashboard.
type View int

const (
    Other View = iota
    Root
    Login
    Register
    Dashboard
)

// Paths of the gated views.
const (
    RootPath      = "/"
    LoginPath     = "/login"
    RegisterPath  = "/register"
    DashboardPath = "/dashboard"
)

func (v View) String() string {
    switch v {
    case Root:
        return "root"
    case Login:
        return "login"
    case Register:
        return "register"
    case Dashboard:
        return "dashboard"
    }
    return "other"
}

// Path returns the URL path of v ("" for Other).
func (v View) Path() string {
    switch v {
    case Root:
        return RootPath
    case Login:
        return LoginPath
    case Register:
        return RegisterPath
    case Dashboard:
        return DashboardPath
    }
    return ""
}

// ViewOf maps a request path onto a View.  Everything under /dashboard is
// the dashboard.
func ViewOf(path string) View {
    p := strings.TrimSuffix(path, "/")
    switch {
    case path == RootPath || p == "":
        return Root
    case p == LoginPath:
        return Login
    case p == RegisterPath:
        return Register
    case p == DashboardPath || strings.HasPrefix(p, DashboardPath+"/"):
        return Dashboard
    }
    return Other
}

// RequiresAuth reports whether v needs a session token.
func (v View) RequiresAuth() bool {
    return v == Root || v == Dashboard
}

// Decision is either Allow or a redirect to RedirectTo.
type Decision struct {
    Allow      bool
    RedirectTo View
}

// Decide returns what to do with a visitor heading for target.
func Decide(hasToken bool, target View) Decision {
    switch {
    case !hasToken && target.RequiresAuth():
        return Decision{RedirectTo: Login}
    case hasToken && (target == Login || target == Root):
        return Decision{RedirectTo: Dashboard}
    }
    return Decision{Allow: true}
}
