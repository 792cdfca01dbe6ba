// internal/httpserver/routes_daily.go
//
// HTTP route for the daily article.
//   - POST /daily/new → start a session on today's article
//
// Everyone playing on the same UTC day gets the same title, chosen from the
// curated list by date + salt. The session itself is an ordinary game
// session, played through the /game endpoints.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// dailyReq is the optional payload for /daily/new.
type dailyReq struct {
	Lang string `json:"lang"`
}

func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
	})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	if s.opts.Titles == nil {
		writeError(w, http.StatusServiceUnavailable, "no_titles")
		return
	}
	var req dailyReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	lang := req.Lang
	if lang == "" {
		lang = s.opts.DefaultLang
	}
	date, title := s.opts.Titles.Daily(s.now(), s.opts.DailySalt)
	s.startGame(w, r, lang, title, date)
}
