package routes

import (
	"net/http"
	"time"

	"github.com/Henryno111/deposit-stx/controllers/admins"
	"github.com/Henryno111/deposit-stx/controllers/auth"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/services"

	"github.com/gorilla/mux"
)

func SetAdminRoutes(api *mux.Router, svc *services.Services) {
	// Rate limiter for admin login: 5 attempts per IP per minute
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)

	login := admins.NewAuthController(svc.Guard.Owner())

	// Public admin routes
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(login.Login))).Methods(http.MethodPost)

	// Protected admin routes
	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)

	pool := admins.NewPoolController(svc.Pool)
	tasks := admins.NewTaskController(svc.Tasks, svc.Workflow)
	rewards := admins.NewRewardController(svc.Rewards)
	trail := admins.NewAuditController(svc.Store, svc.Reconciler)
	dashboard := admins.NewDashboardController(svc)

	// Admin profile
	adminRouter.HandleFunc("/profile", admins.GetAdminProfile).Methods(http.MethodGet)
	adminRouter.HandleFunc("/password", admins.UpdateAdminPassword).Methods(http.MethodPut)
	adminRouter.HandleFunc("/logout", auth.LogoutHandler).Methods(http.MethodPost)

	// Dashboard
	adminRouter.HandleFunc("/dashboard", dashboard.GetDashboardStats).Methods(http.MethodGet)

	// Deposit pool
	adminRouter.HandleFunc("/deposits", pool.ListDepositors).Methods(http.MethodGet)
	adminRouter.HandleFunc("/pool/lock", pool.SetLock).Methods(http.MethodPut)
	adminRouter.HandleFunc("/pool/minimum", pool.SetMinimum).Methods(http.MethodPut)

	// Tasks
	adminRouter.HandleFunc("/tasks", tasks.Create).Methods(http.MethodPost)
	adminRouter.HandleFunc("/tasks/{id:[0-9]+}/submissions", tasks.ListSubmissions).Methods(http.MethodGet)
	adminRouter.HandleFunc("/tasks/{id:[0-9]+}/approve", tasks.Approve).Methods(http.MethodPut)
	adminRouter.HandleFunc("/tasks/{id:[0-9]+}/reject", tasks.Reject).Methods(http.MethodPut)
	adminRouter.HandleFunc("/tasks/{id:[0-9]+}/cancel", tasks.Cancel).Methods(http.MethodPut)
	adminRouter.HandleFunc("/tasks/{id:[0-9]+}/complete", tasks.Complete).Methods(http.MethodPut)

	// Rewards
	adminRouter.HandleFunc("/rewards", rewards.Distribute).Methods(http.MethodPost)
	adminRouter.HandleFunc("/rewards/batch", rewards.Batch).Methods(http.MethodPost)
	adminRouter.HandleFunc("/rewards/fee", rewards.SetFee).Methods(http.MethodPut)
	adminRouter.HandleFunc("/rewards/emergency-withdraw", rewards.EmergencyWithdraw).Methods(http.MethodPost)

	// Audit trail and reconciliation
	adminRouter.HandleFunc("/audit", trail.Recent).Methods(http.MethodGet)
}
