package web

import (
	"io"
	"net/http"

	"github.com/Declyn50s/Traine-Savates/pkg/apperr"
	"github.com/Declyn50s/Traine-Savates/pkg/metrics"
)

// uploadedFile opens the "file" part of a multipart form, capped at
// maxUploadBytes.
func uploadedFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<10)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", apperr.Invalid("file", "the image must be smaller than 5 MB")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", apperr.Invalid("file", "required")
	}
	return file, header.Filename, nil
}

func (s *Server) handleSponsorLogo(w http.ResponseWriter, r *http.Request) {
	file, name, err := uploadedFile(w, r)
	if err == nil {
		defer file.Close()
		_, err = s.admin.UploadSponsorLogo(r.Context(), r.PathValue("id"), name, file)
	}
	if err == nil {
		metrics.Record(metrics.EventAssetUploaded)
	}
	done(w, r, "/admin/sponsors", "Logo enregistré.", err)
}

func (s *Server) handleMemberPhoto(w http.ResponseWriter, r *http.Request) {
	file, name, err := uploadedFile(w, r)
	if err == nil {
		defer file.Close()
		_, err = s.admin.UploadCommitteePhoto(r.Context(), r.PathValue("id"), name, file)
	}
	if err == nil {
		metrics.Record(metrics.EventAssetUploaded)
	}
	done(w, r, "/admin/club", "Photo enregistrée.", err)
}

func (s *Server) handleRouteMapUpload(w http.ResponseWriter, r *http.Request) {
	file, name, err := uploadedFile(w, r)
	target := "/admin/editions"
	if err == nil {
		defer file.Close()
		race, uerr := s.admin.UploadRouteMap(r.Context(), r.PathValue("id"), name, file)
		if race.EditionID != "" {
			target = "/admin/editions/" + race.EditionID
		}
		err = uerr
	}
	if err == nil {
		metrics.Record(metrics.EventAssetUploaded)
	}
	done(w, r, target, "Plan du parcours enregistré.", err)
}
