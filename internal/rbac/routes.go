package rbac

import (
	"sort"
	"strings"
)

// BootstrapPath is the login-activity checkpoint. It requires no permission
// and is reachable regardless of the session flag.
const BootstrapPath = "/login-activity"

// LoginPath is where unauthenticated actors are sent.
const LoginPath = "/login"

const reportSuffix = "-report"

// routePermissions maps console route segments to the permission their
// guard requires.
var routePermissions = map[string]Permission{
	"orders":            PermOrders,
	"pos":               PermPOS,
	"dashboard":         PermOverview,
	"delivery":          PermDelivery,
	"customer-menu":     PermCustomerMenu,
	"restaurants":       PermRestaurants,
	"purchaseanalytics": PermPurchaseAnalytics,
	"delivery-timing":   PermDeliveryTiming,
	"supplier":          PermInventory,
	"permission":        PermPermission,
	"customerloyality":  PermCustomerLoyality,
	"salesanalytics":    PermSalesAnalytics,
	"qr-code":           PermQRCode,
	"category":          PermCategory,
	"subCategory":       PermSubCategory,
	"stock":             PermInventory,
	"menu":              PermMenu,
	"banners":           PermBanners,
	"customers":         PermCustomers,
	"transactions":      PermTransactions,
	"account":           PermSettings,
	"feedback":          PermFeedbacks,
	"reservations":      PermReservations,
	"dues":              PermDues,
	"help":              PermHelp,
	"license":           PermLicense,
	"downloads":         PermDownloads,
}

// ReportRoutes are the report screens guarded by PermReports.
var ReportRoutes = []string{
	"daily-report",
	"customer-report",
	"dashboard-statistics-report",
	"hourly-report",
	"items-report",
	"payment-type-report",
	"table-report",
	"tax-report",
	"transaction-report",
}

// RouteRequirement resolves the permission for a route segment or path. The
// second result is false when the route is not a guarded console screen.
func RouteRequirement(route string) (Permission, bool) {
	segment := firstSegment(route)
	if segment == "" {
		return "", false
	}
	if p, ok := routePermissions[segment]; ok {
		return p, true
	}
	if strings.HasSuffix(segment, reportSuffix) && len(segment) > len(reportSuffix) {
		return PermReports, true
	}
	return "", false
}

// RouteTable returns every guarded route with its permission, report routes
// included, sorted by route.
func RouteTable() []RouteEntry {
	entries := make([]RouteEntry, 0, len(routePermissions)+len(ReportRoutes))
	for route, p := range routePermissions {
		entries = append(entries, RouteEntry{Route: route, Permission: p})
	}
	for _, route := range ReportRoutes {
		entries = append(entries, RouteEntry{Route: route, Permission: PermReports})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Route < entries[j].Route })
	return entries
}

// RouteEntry pairs a route segment with its required permission.
type RouteEntry struct {
	Route      string     `json:"route"`
	Permission Permission `json:"permission"`
}

func firstSegment(route string) string {
	route = strings.TrimPrefix(strings.TrimSpace(route), "/")
	if idx := strings.IndexByte(route, '/'); idx >= 0 {
		route = route[:idx]
	}
	return route
}
