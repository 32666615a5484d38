package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aeriesbridge/internal/handlers"
	"aeriesbridge/internal/middleware"
)

func RegisterRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.CORSMiddleware)
	r.Use(middleware.LoggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	r.Post("/token/", handlers.LoginForAccessToken)

	// Shared document links carry their own token in the query string
	r.Get("/docs/shared/{id}/{sq}/", handlers.GetSharedDocument)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/users/me/", handlers.ReadUsersMe)

		r.Get("/schools/", handlers.AllSchools)
		r.Get("/schools/{sc}/", handlers.SingleSchool)

		r.Get("/students/{id}/", handlers.GetStudent)
		r.Get("/students/{id}/details/", handlers.StudentDetails)
		r.Post("/students/lookup/", handlers.SearchStudents)

		r.Get("/suia/", handlers.AllSUIA)
		r.Get("/suia/{id}/", handlers.StudentSUIA)
		r.Post("/suia/", handlers.CreateSUIA)
		r.Put("/suia/", handlers.UpdateSUIA)
		r.Delete("/suia/", handlers.DeleteSUIA)

		r.Get("/discipline/ADS_next_IID/", handlers.NextADSIID)
		r.Get("/discipline/ADS/{id}/", handlers.StudentADS)
		r.Post("/discipline/ADS/", handlers.CreateADS)
		r.Post("/discipline/DSP/", handlers.CreateDSP)

		r.Get("/docs/categories/", handlers.DocumentCategories)
		r.Get("/docs/student/{id}/documents/", handlers.StudentDocuments)
		r.Get("/docs/{id}/{sq}/", handlers.DownloadDocument)
		r.Post("/docs/uploadGeneral/", handlers.UploadGeneralDocument)
		r.Post("/docs/uploadReclassification/", handlers.UploadReclassification)
		r.Post("/docs/generate-share-link/", handlers.GenerateDocumentShareLink)
		r.Post("/docs/share/qrcode/", handlers.DocumentShareQRCode)

		r.Post("/sped/uploadIepAtAGlance/", handlers.UploadIepAtAGlance)
		r.Post("/sped/processIepFromFolder/", handlers.ProcessIepFromFolder)
	})
	return r
}
