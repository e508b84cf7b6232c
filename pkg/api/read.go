package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/bellavista/menu-api/pkg/responder"
)

// Conditional-request and response headers for fingerprinted resources.
const (
	headerETag         = "ETag"
	headerIfNoneMatch  = "If-None-Match"
	headerMenuVersion  = "X-Menu-Version"
	headerResourceType = "X-Resource-Type"
	headerCacheControl = "Cache-Control"
)

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	sel := responder.Selector{
		Resource:   responder.ResourceItems,
		CategoryID: r.URL.Query().Get("category"),
		Query:      r.URL.Query().Get("q"),
	}
	s.respond(w, r, sel)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, responder.Selector{Resource: responder.ResourceCategories})
}

func (s *Server) handleModifiers(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, responder.Selector{Resource: responder.ResourceModifiers})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, responder.Selector{Resource: responder.ResourceVersion})
}

// respond runs the conditional read flow for a fingerprinted resource.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sel responder.Selector) {
	res, err := s.responder.Respond(r.Context(), sel, r.Header.Get(headerIfNoneMatch))
	if err != nil {
		s.logger.Error().Err(err).Str("resource", string(sel.Resource)).Msg("Read failed")
		s.writeError(w, http.StatusInternalServerError, "menu read failed")
		return
	}

	h := w.Header()
	h.Set(headerETag, res.Fingerprint)
	h.Set(headerMenuVersion, strconv.FormatInt(res.Version, 10))
	h.Set(headerResourceType, string(res.Resource))
	h.Set(headerCacheControl, fmt.Sprintf("public, max-age=%d", int(edgeCacheMaxAge.Seconds())))

	if res.NotModified {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	s.writeJSON(w, http.StatusOK, res.Payload)
}

// handleAnnouncements serves the live announcements. Announcements sit
// outside the version/fingerprint scheme: short edge lifetime, no ETag.
func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	anns, err := s.repo.ActiveAnnouncements(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Announcements read failed")
		s.writeError(w, http.StatusInternalServerError, "announcements read failed")
		return
	}

	w.Header().Set(headerCacheControl, "public, max-age=60")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"announcements": anns,
		"count":         len(anns),
	})
}
