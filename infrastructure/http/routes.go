package http

import (
	"github.com/go-chi/chi/v5"

	batchespage "tradedocs/frontend/batches"
	catalogpage "tradedocs/frontend/catalog"
	"tradedocs/frontend/login"
	settingspage "tradedocs/frontend/settings"
)

// RegisterLoginRoutes registers login/logout routes.
func (s *Server) RegisterLoginRoutes() {
	s.router.Get("/login", login.GetLoginScreenHandler)
	s.router.Post("/login", login.CreateLoginHandler(s.DB, s.Sessions))
	s.router.Post("/logout", login.LogoutHandler(s.Sessions))
}

// RegisterFrontendRoutes registers authenticated routes.
func (s *Server) RegisterFrontendRoutes(r chi.Router) chi.Router {
	s.RegisterBatchRoutes(r)
	s.RegisterCatalogRoutes(r)
	s.RegisterSettingsRoutes(r)
	return r
}

func (s *Server) RegisterBatchRoutes(r chi.Router) {
	r.Get("/batches", batchespage.BatchesPageQueryHandler(s.DB))
	r.Post("/batches", batchespage.CreateBatchCommandHandler(s.DB, s.Audit))
	r.Get("/batches/{id}", batchespage.BatchPageQueryHandler(s.DB))
	r.Post("/batches/{id}", batchespage.UpdateBatchCommandHandler(s.DB, s.Audit))
	r.Post("/batches/{id}/delete", batchespage.DeleteBatchCommandHandler(s.DB, s.Audit))
	r.Get("/batches/{id}/documents/{variant}", batchespage.DocumentDownloadHandler(s.DB, s.Audit))
	r.Get("/batches/{id}/broker.csv", batchespage.BrokerCSVHandler(s.DB, s.Audit))
	r.Get("/batches/{id}/documents.zip", batchespage.DocumentsZipHandler(s.DB, s.Audit))
}

func (s *Server) RegisterCatalogRoutes(r chi.Router) {
	r.Get("/catalog", catalogpage.CatalogPageQueryHandler(s.DB))
	r.Post("/catalog/import", catalogpage.CatalogImportCommandHandler(s.DB, s.Audit))
	r.Get("/catalog/export.csv", catalogpage.CatalogExportCSVHandler(s.DB))
	r.Post("/catalog/delete/{id}", catalogpage.CatalogDeleteItemCommandHandler(s.DB, s.Audit))
}

func (s *Server) RegisterSettingsRoutes(r chi.Router) {
	r.Get("/settings", settingspage.SettingsPageHandler(s.DB))
	r.Post("/settings", settingspage.SettingsUpdateHandler(s.DB, s.Audit))
	r.Post("/settings/signature", settingspage.SignatureUploadHandler(s.DB, s.Audit))
	r.Post("/settings/password", settingspage.PasswordUpdateHandler(s.DB, s.Audit))
}
