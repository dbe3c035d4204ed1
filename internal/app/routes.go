package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all endpoints. Public routes are registered before
// the /api subrouter so they match without a session token.
func RegisterRoutes(r *mux.Router, deps *Dependencies) *mux.Router {

	// Sign up
	r.HandleFunc("/signup", deps.SignupHandler.Form).Methods("GET")
	r.HandleFunc("/signup", deps.SignupHandler.SignUp).Methods("POST")

	// Session
	r.HandleFunc("/api/auth/refresh", deps.AuthHandler.Refresh).Methods("POST")

	// Market data webhook
	r.HandleFunc("/api/market/ticks", deps.MarketHandler.Ticks).Methods("POST")

	// Google OAuth callback
	r.HandleFunc("/api/integrations/google/auth/callback", deps.GoogleAuth.OAuthCallback).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/logout", deps.AuthHandler.Logout).Methods("POST")

	// User management
	api.HandleFunc("/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	api.HandleFunc("/user/current", deps.UserHandler.UpdateUser).Methods("PUT")
	api.HandleFunc("/user/current", deps.UserHandler.DeleteUser).Methods("DELETE")

	// Profile
	api.HandleFunc("/profile", deps.ProfileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", deps.ProfileHandler.SaveProfile).Methods("PUT")
	api.HandleFunc("/profile", deps.ProfileHandler.DeleteProfile).Methods("DELETE")
	api.HandleFunc("/profile/summary", deps.ProfileHandler.GetSummary).Methods("GET")
	api.HandleFunc("/profile/onboarding/complete", deps.ProfileHandler.CompleteOnboarding).Methods("POST")
	api.HandleFunc("/profile/goals", deps.ProfileHandler.SaveGoals).Methods("PUT")
	api.HandleFunc("/profile/investments", deps.ProfileHandler.SaveInvestments).Methods("PUT")
	api.HandleFunc("/profile/debts", deps.ProfileHandler.SaveDebts).Methods("PUT")

	// Expense items
	api.HandleFunc("/expenses/items", deps.MonthlyHandler.CreateItem).Methods("POST")
	api.HandleFunc("/expenses/items/{itemId}", deps.MonthlyHandler.UpdateItem).Methods("PUT")
	api.HandleFunc("/expenses/items/{itemId}", deps.MonthlyHandler.DeleteItem).Methods("DELETE")
	api.HandleFunc("/expenses/{year:[0-9]+}/items", deps.MonthlyHandler.ListItems).Methods("GET")
	api.HandleFunc("/expenses/{year:[0-9]+}/categories", deps.MonthlyHandler.GetCategoryTotals).Methods("GET")

	// Monthly savings and expenses
	api.HandleFunc("/{kind:savings|expenses}/{year:[0-9]+}", deps.MonthlyHandler.GetYear).Methods("GET")
	api.HandleFunc("/{kind:savings|expenses}/{year:[0-9]+}", deps.MonthlyHandler.SaveSummary).Methods("PUT")
	api.HandleFunc("/{kind:savings|expenses}/{year:[0-9]+}/stats", deps.MonthlyHandler.GetStats).Methods("GET")
	api.HandleFunc("/{kind:savings|expenses}/{year:[0-9]+}/csv", deps.MonthlyHandler.GetCsv).Methods("GET")

	// Google integration
	api.HandleFunc("/integrations/google/auth/login", deps.GoogleAuth.OAuthLogin).Methods("GET")
	api.HandleFunc("/integrations/google/auth/logout", deps.GoogleAuth.OAuthLogout).Methods("DELETE")
	api.HandleFunc("/integrations/google/export/{year:[0-9]+}", deps.GoogleHandler.ExportYear).Methods("POST")

	return api
}
