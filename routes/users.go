package routes

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/controllers/auth"
	"github.com/Henryno111/deposit-stx/controllers/users"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/services"

	"github.com/gorilla/mux"
)

// UsersRoutes registers the principal-facing ledger routes.
func UsersRoutes(api *mux.Router, svc *services.Services, publicLimiter *middleware.IPRateLimiter) {
	// 120 reads, 60 writes per principal per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)
	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(userLimiter.Middleware(h))
	}
	public := func(h http.HandlerFunc) http.Handler {
		return publicLimiter.Middleware(h)
	}

	deposits := users.NewDepositController(svc.Pool)
	tasks := users.NewTaskController(svc.Tasks)
	rewards := users.NewRewardController(svc.Rewards)

	api.Handle("/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)

	// Deposit pool
	api.Handle("/deposits", authed(deposits.Deposit)).Methods(http.MethodPost)
	api.Handle("/deposits/withdraw", authed(deposits.Withdraw)).Methods(http.MethodPost)
	api.Handle("/deposits/{principal}", public(deposits.GetDeposit)).Methods(http.MethodGet)

	// Tasks
	api.Handle("/tasks/{id:[0-9]+}", public(tasks.GetTask)).Methods(http.MethodGet)
	api.Handle("/tasks/{id:[0-9]+}/submissions", authed(tasks.Submit)).Methods(http.MethodPost)
	api.Handle("/tasks/{id:[0-9]+}/submissions/{principal}", public(tasks.GetSubmission)).Methods(http.MethodGet)

	// Rewards
	api.Handle("/rewards/fee", public(rewards.CalculateFee)).Methods(http.MethodGet)
	api.Handle("/rewards/claims/{id:[0-9]+}/{principal}", public(rewards.GetClaim)).Methods(http.MethodGet)
	api.Handle("/rewards/paid/{principal}", public(rewards.GetTotalPaid)).Methods(http.MethodGet)
}
