package router

import "strings"

// Well-known locations.
const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
	NotFoundPath = "/404"

	// RedirectParam carries the originally requested location on login
	// redirects.
	RedirectParam = "redirect"
)

// Requirement is the access policy attached to a route.
type Requirement struct {
	RequireAuth  bool
	RequireAdmin bool
}

func (r Requirement) merge(o Requirement) Requirement {
	return Requirement{
		RequireAuth:  r.RequireAuth || o.RequireAuth,
		RequireAdmin: r.RequireAdmin || o.RequireAdmin,
	}
}

// Route is one screen. Children patterns are relative to the parent and
// inherit its Requirement.
type Route struct {
	Name        string
	Pattern     string
	Title       string
	Redirect    string
	Requirement Requirement
	Children    []Route
}

// Flatten expands a route tree into absolute patterns with inherited
// requirements. Parents are kept in front of their children.
func Flatten(routes []Route) []Route {
	var out []Route
	var walk func(prefix string, inherited Requirement, rs []Route)
	walk = func(prefix string, inherited Requirement, rs []Route) {
		for _, r := range rs {
			flat := r
			flat.Pattern = joinPattern(prefix, r.Pattern)
			flat.Requirement = inherited.merge(r.Requirement)
			flat.Children = nil
			out = append(out, flat)
			walk(flat.Pattern, flat.Requirement, r.Children)
		}
	}
	walk("", Requirement{}, routes)
	return out
}

func joinPattern(prefix, p string) string {
	if strings.HasPrefix(p, "/") || prefix == "" {
		return p
	}
	return strings.TrimSuffix(prefix, "/") + "/" + p
}

// DefaultRoutes is the marketplace route table.
func DefaultRoutes() []Route {
	auth := Requirement{RequireAuth: true}
	admin := Requirement{RequireAuth: true, RequireAdmin: true}

	return []Route{
		{Name: "Home", Pattern: HomePath, Title: "Home"},
		{Name: "ProductDetail", Pattern: "/product/{id}", Title: "Product details"},
		{Name: "ProductList", Pattern: "/products", Title: "Products"},
		{Name: "SearchResults", Pattern: "/search", Title: "Search results"},
		{Name: "SellerProfile", Pattern: "/seller/{id}", Title: "Seller"},
		{Name: "Login", Pattern: LoginPath, Title: "Log in"},
		{Name: "Register", Pattern: RegisterPath, Title: "Register"},
		{Name: "NotFound", Pattern: NotFoundPath, Title: "Page not found"},
		{Name: "CatchAll", Pattern: "/*", Redirect: NotFoundPath},
		{
			Name: "UserCenter", Pattern: "/user", Title: "My account", Redirect: "/user/profile", Requirement: auth,
			Children: []Route{
				{Name: "UserProfile", Pattern: "profile", Title: "Profile"},
				{Name: "UserFavorites", Pattern: "favorites", Title: "Favorites"},
				{Name: "UserProducts", Pattern: "products", Title: "My listings"},
				{Name: "PublishProduct", Pattern: "publish", Title: "Publish a product"},
				{Name: "EditProduct", Pattern: "edit-product/{id}", Title: "Edit product"},
				{Name: "UserOrders", Pattern: "orders", Title: "My orders"},
				{Name: "UserOrderDetail", Pattern: "order/{id}", Title: "Order details"},
				{Name: "UserSelling", Pattern: "selling", Title: "Sold items"},
				{Name: "UserSellingDetail", Pattern: "selling/{id}", Title: "Sale details"},
				{Name: "UserAddress", Pattern: "address", Title: "Addresses"},
				{Name: "UserMessages", Pattern: "messages", Title: "Messages"},
				{Name: "UserChat", Pattern: "chat/{id}", Title: "Chat"},
				{Name: "UserNotifications", Pattern: "notifications", Title: "Notifications"},
			},
		},
		{Name: "Checkout", Pattern: "/checkout/{id}", Title: "Checkout", Requirement: auth},
		{
			Name: "Admin", Pattern: "/admin", Title: "Administration", Redirect: "/admin/dashboard", Requirement: admin,
			Children: []Route{
				{Name: "AdminDashboard", Pattern: "dashboard", Title: "Dashboard"},
				{Name: "AdminUsers", Pattern: "users", Title: "Users"},
				{Name: "AdminProducts", Pattern: "products", Title: "Products"},
				{Name: "AdminProductDetail", Pattern: "product/{id}", Title: "Product details"},
				{Name: "AdminOrders", Pattern: "orders", Title: "Orders"},
				{Name: "AdminOrderDetail", Pattern: "order/{id}", Title: "Order details"},
				{Name: "AdminCategories", Pattern: "categories", Title: "Categories"},
				{Name: "AdminNotifications", Pattern: "notifications", Title: "System notifications"},
				{Name: "AdminStatistics", Pattern: "statistics", Title: "Statistics"},
				{Name: "AdminSettings", Pattern: "settings", Title: "Settings"},
			},
		},
	}
}
