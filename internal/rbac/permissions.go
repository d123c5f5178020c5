package rbac

import "errors"

var (
	// ErrUnknownPermission indicates a capability name outside the catalogue.
	ErrUnknownPermission = errors.New("rbac: unknown permission")
	// ErrUnknownRole indicates a role tag outside the catalogue.
	ErrUnknownRole = errors.New("rbac: unknown role")
)

// Console permissions. The values are the names shown in the navigation menu
// and stored in the user directory.
const (
	PermOverview          Permission = "Overview"
	PermOrders            Permission = "Orders"
	PermPOS               Permission = "POS"
	PermDelivery          Permission = "Delivery"
	PermDeliveryTiming    Permission = "Delivery Timing"
	PermCustomerMenu      Permission = "Customer Menu"
	PermRestaurants       Permission = "Restaurants"
	PermPurchaseAnalytics Permission = "Purchase Analytics"
	PermSalesAnalytics    Permission = "Sales Analytics"
	PermInventory         Permission = "Inventory"
	PermPermission        Permission = "Permission"
	PermCustomerLoyality  Permission = "Customer Loyality"
	PermQRCode            Permission = "QR Code"
	PermCategory          Permission = "Category"
	PermSubCategory       Permission = "SubCategory"
	PermMenu              Permission = "Menu"
	PermBanners           Permission = "Banners"
	PermCustomers         Permission = "Customers"
	PermTransactions      Permission = "Transactions"
	PermSettings          Permission = "Settings"
	PermReports           Permission = "Reports"
	PermFeedbacks         Permission = "Feedbacks"
	PermReservations      Permission = "Reservations"
	PermDues              Permission = "Dues"
	PermHelp              Permission = "Help"
	PermLicense           Permission = "License"
	PermDownloads         Permission = "Downloads"
)

// AllPermissions lists every capability known to the console.
func AllPermissions() []Permission {
	return []Permission{
		PermOverview,
		PermOrders,
		PermPOS,
		PermDelivery,
		PermDeliveryTiming,
		PermCustomerMenu,
		PermRestaurants,
		PermPurchaseAnalytics,
		PermSalesAnalytics,
		PermInventory,
		PermPermission,
		PermCustomerLoyality,
		PermQRCode,
		PermCategory,
		PermSubCategory,
		PermMenu,
		PermBanners,
		PermCustomers,
		PermTransactions,
		PermSettings,
		PermReports,
		PermFeedbacks,
		PermReservations,
		PermDues,
		PermHelp,
		PermLicense,
		PermDownloads,
	}
}

var permissionIndex = func() map[Permission]struct{} {
	idx := make(map[Permission]struct{})
	for _, p := range AllPermissions() {
		idx[p] = struct{}{}
	}
	return idx
}()
