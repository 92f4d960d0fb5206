package slidesets

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// maxBody bounds the size of a published deck.
const maxBody = 8 << 20

// RegisterRoutes mounts the storage service at the root of r.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing slide set id", http.StatusBadRequest)
	})
	r.Get("/{id}", handleGet(svc))
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, fmt.Sprintf("unknown slide set id %q", strings.TrimPrefix(r.URL.Path, "/")), http.StatusBadRequest)
	})
	r.Post("/", handlePublish(svc))
	r.Options("/*", handleOptions)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func handleGet(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idFromPath(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		data, err := svc.Get(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			svc.logger.Error("fetching slide set", "id", id, "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func handlePublish(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, created, err := svc.Publish(r.Context(), body)
		switch {
		case errors.Is(err, ErrMalformed):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, ErrUnauthorized):
			http.Error(w, "Unauthorized", http.StatusForbidden)
			return
		case err != nil:
			svc.logger.Error("publishing slide set", "error", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeText(w, status, id)
	}
}

// handleOptions answers preflight requests. CORS middleware in front of the
// router may already have filled in the headers.
func handleOptions(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	setDefault(h, "Access-Control-Allow-Origin", "*")
	setDefault(h, "Access-Control-Allow-Methods", "GET, POST")
	setDefault(h, "Access-Control-Allow-Headers", "Content-Type")
	setDefault(h, "Access-Control-Max-Age", "3600")
	w.WriteHeader(http.StatusNoContent)
}

func setDefault(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}

// idFromPath decodes the first path segment. The escaped path is used so an
// id containing %2F or %40 survives routing intact.
func idFromPath(r *http.Request) (string, error) {
	segment := strings.TrimPrefix(r.URL.EscapedPath(), "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	return url.PathUnescape(segment)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, text)
}
