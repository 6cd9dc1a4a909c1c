package session

// Route is a landing destination the client should navigate to after the
// session is resolved.
type Route string

const (
	RouteLogin           Route = "login"
	RouteAdminDesktop    Route = "admin-desktop"
	RouteAdminMobile     Route = "admin-mobile"
	RouteKitchen         Route = "kitchen-dashboard"
	RouteCashier         Route = "cashier-dashboard"
	RouteCourseSelection Route = "course-selection"
	RouteMenu            Route = "menu"
)

// RouteInput is everything route resolution depends on. Resolution is a pure
// function of these four values.
type RouteInput struct {
	HasToken         bool
	Role             string
	HasDefaultCourse bool
	DesktopViewport  bool
}

// ResolveRoute picks the single landing route for a session. First match
// wins:
//  1. no token -> login
//  2. superuser/admin -> admin view, desktop or mobile by viewport
//  3. kitchen/cashier -> their dashboard, or course selection without a
//     default course
//  4. everyone else -> menu, or course selection without a default course
func ResolveRoute(in RouteInput) Route {
	if !in.HasToken {
		return RouteLogin
	}
	switch in.Role {
	case RoleSuperuser, RoleAdmin:
		if in.DesktopViewport {
			return RouteAdminDesktop
		}
		return RouteAdminMobile
	case RoleKitchen:
		if !in.HasDefaultCourse {
			return RouteCourseSelection
		}
		return RouteKitchen
	case RoleCashier:
		if !in.HasDefaultCourse {
			return RouteCourseSelection
		}
		return RouteCashier
	}
	if !in.HasDefaultCourse {
		return RouteCourseSelection
	}
	return RouteMenu
}
