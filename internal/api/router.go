package api

import (
	"database/sql"
	"net/http"

	"github.com/laurenmk/stockdock/internal/model"
	"github.com/laurenmk/stockdock/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	catalogHandler := &CatalogHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	scanHandler := &ScanHandler{DB: db, Sessions: workflow.NewRegistry()}
	trucksHandler := &TrucksHandler{DB: db}
	analyticsHandler := &AnalyticsHandler{DB: db}
	labelsHandler := &LabelsHandler{}

	authMW := AuthMiddleware(jwtSecret)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Catalog whitelist: read (all roles), write (admin).
	mux.Handle("GET /api/catalog", authMW(http.HandlerFunc(catalogHandler.List)))
	mux.Handle("POST /api/catalog", authMW(requireAdmin(http.HandlerFunc(catalogHandler.Add))))
	mux.Handle("DELETE /api/catalog", authMW(requireAdmin(http.HandlerFunc(catalogHandler.Delete))))

	// Inventory: read (all roles), destructive ops (admin).
	mux.Handle("GET /api/inventory", authMW(http.HandlerFunc(inventoryHandler.List)))
	mux.Handle("GET /api/inventory/instock", authMW(http.HandlerFunc(inventoryHandler.InStock)))
	mux.Handle("GET /api/inventory/summary", authMW(requireAdmin(http.HandlerFunc(inventoryHandler.Summary))))
	mux.Handle("POST /api/inventory/emergency", authMW(http.HandlerFunc(inventoryHandler.EmergencyAdd)))
	mux.Handle("DELETE /api/inventory", authMW(requireAdmin(http.HandlerFunc(inventoryHandler.Clear))))

	// User-mode scan workflow (all roles).
	mux.Handle("POST /api/scan", authMW(http.HandlerFunc(scanHandler.Scan)))
	mux.Handle("POST /api/scan/{session}/status", authMW(http.HandlerFunc(scanHandler.SetStatus)))
	mux.Handle("POST /api/scan/{session}/cancel", authMW(http.HandlerFunc(scanHandler.Cancel)))

	// Label reprints (all roles).
	mux.Handle("GET /api/labels/{label}", authMW(http.HandlerFunc(labelsHandler.Get)))

	// Trucks: scanning (all roles), manifest management (admin).
	mux.Handle("GET /api/trucks", authMW(http.HandlerFunc(trucksHandler.List)))
	mux.Handle("POST /api/trucks", authMW(requireAdmin(http.HandlerFunc(trucksHandler.Create))))
	mux.Handle("GET /api/trucks/{id}", authMW(http.HandlerFunc(trucksHandler.Get)))
	mux.Handle("GET /api/trucks/{id}/summary", authMW(http.HandlerFunc(trucksHandler.Summary)))
	mux.Handle("GET /api/trucks/{id}/labels", authMW(http.HandlerFunc(trucksHandler.Labels)))
	mux.Handle("POST /api/trucks/{id}/scan", authMW(http.HandlerFunc(trucksHandler.Scan)))
	mux.Handle("POST /api/trucks/{id}/close", authMW(requireAdmin(http.HandlerFunc(trucksHandler.Close))))
	mux.Handle("DELETE /api/trucks/{id}", authMW(requireAdmin(http.HandlerFunc(trucksHandler.Delete))))

	// Analytics (admin only).
	mux.Handle("GET /api/analytics/trucks/{id}", authMW(requireAdmin(http.HandlerFunc(analyticsHandler.TruckHistory))))
	mux.Handle("GET /api/analytics/lifespan", authMW(requireAdmin(http.HandlerFunc(analyticsHandler.Lifespans))))
	mux.Handle("GET /api/analytics/depletion", authMW(requireAdmin(http.HandlerFunc(analyticsHandler.Depletion))))

	return mux
}
