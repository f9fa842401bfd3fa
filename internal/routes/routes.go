package routes

import (
	"net/http"

	"github.com/filevault/filevault/internal/app"
	"github.com/filevault/filevault/internal/handler"
	"github.com/filevault/filevault/internal/middleware"
)

func SetupRoutes(a *app.App) http.Handler {
	// Handlers
	appHandler := handler.NewAppHandler(a.StatusService)
	user := handler.NewUserHandler(a.UserService)
	auth := handler.NewAuthHandler(a.AuthService)
	file := handler.NewFileHandler(a.FileService)

	mux := http.NewServeMux()

	// Operational
	mux.HandleFunc("GET /status", appHandler.Status)
	mux.HandleFunc("GET /stats", appHandler.Stats)

	// Users and sessions
	mux.HandleFunc("POST /users", user.Register)
	mux.HandleFunc("GET /users/me", user.Me)
	mux.HandleFunc("GET /connect", auth.Connect)
	mux.HandleFunc("GET /disconnect", auth.Disconnect)

	// Files
	mux.HandleFunc("POST /files", file.Create)
	mux.HandleFunc("GET /files/{id}", file.Show)
	mux.HandleFunc("PUT /files/{id}/publish", file.Publish)
	mux.HandleFunc("PUT /files/{id}/unpublish", file.Unpublish)
	mux.HandleFunc("GET /files/{id}/data", file.Data)

	var h http.Handler = mux
	h = middleware.Auth(a.AuthService)(h)
	h = middleware.Logging(h)
	h = middleware.Recover(h)

	return h
}
