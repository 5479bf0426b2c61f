package main

import (
	"net/http"

	"github.com/josh-kwaku/hotel-booking/docs"
	"github.com/josh-kwaku/hotel-booking/internal/auth"
	"github.com/josh-kwaku/hotel-booking/internal/handler"
	"github.com/josh-kwaku/hotel-booking/internal/middleware"
)

type routeDeps struct {
	health   *handler.HealthHandler
	auth     *handler.AuthHandler
	hotels   *handler.HotelHandler
	bookings *handler.BookingHandler
	wallet   *handler.WalletHandler
	logs     *handler.LogsHandler
	tokens   *auth.Tokens

	rateLimit   func(http.Handler) http.Handler
	idempotency func(http.Handler) http.Handler // nil without Redis
}

type chain []func(http.Handler) http.Handler

func (c chain) then(h http.HandlerFunc) http.Handler {
	var out http.Handler = h
	for i := len(c) - 1; i >= 0; i-- {
		if c[i] != nil {
			out = c[i](out)
		}
	}
	return out
}

func routes(d routeDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", d.health.Liveness)
	mux.HandleFunc("GET /health/ready", d.health.Readiness)
	mux.HandleFunc("GET /docs", handler.ServeDocs())
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(docs.OpenAPISpec))

	public := chain{middleware.Logging, d.rateLimit}
	authed := chain{middleware.Auth(d.tokens), middleware.Logging, d.rateLimit}
	mutating := append(authed[:len(authed):len(authed)], d.idempotency)

	mux.Handle("POST /api/v1/auth/login", public.then(d.auth.Login))
	mux.Handle("GET /api/v1/hotels/{id}/available-rooms", public.then(d.hotels.AvailableRooms))

	mux.Handle("GET /api/v1/auth/profile", authed.then(d.auth.Profile))

	mux.Handle("POST /api/v1/bookings", mutating.then(d.bookings.Create))
	mux.Handle("GET /api/v1/bookings/{id}", authed.then(d.bookings.Get))
	mux.Handle("DELETE /api/v1/bookings/{id}", mutating.then(d.bookings.Cancel))
	mux.Handle("GET /api/v1/user/bookings", authed.then(d.bookings.ListMine))
	mux.Handle("GET /api/v1/hotels/{id}/bookings", authed.then(d.bookings.ListForHotel))

	mux.Handle("GET /api/v1/wallet/balance", authed.then(d.wallet.Balance))
	mux.Handle("POST /api/v1/wallet/deposit", mutating.then(d.wallet.Deposit))
	mux.Handle("POST /api/v1/wallet/withdraw", mutating.then(d.wallet.Withdraw))
	mux.Handle("POST /api/v1/wallet/transfer", mutating.then(d.wallet.Transfer))
	mux.Handle("GET /api/v1/wallet/transactions", authed.then(d.wallet.Transactions))

	mux.Handle("GET /api/v1/logs", authed.then(d.logs.List))
	mux.Handle("GET /api/v1/logs/stats", authed.then(d.logs.Stats))

	return middleware.Recovery(middleware.Tracing(mux))
}
