// internal/httpserver/routes_game.go
//
// Game endpoints:
//   - POST /game/new     → fetch an article (random when no title) and start a session
//   - POST /game/guess   → register a guess
//   - POST /game/select  → toggle the highlighted guess
//   - GET  /game/{id}    → current masked view
//   - DELETE /game/{id}  → end the game and drop the session
//
// Every response carries the masked view; hidden words never leave the server.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/redactle/internal/game"
	"github.com/robalobadob/redactle/internal/render"
	"github.com/robalobadob/redactle/internal/store"
	"github.com/robalobadob/redactle/internal/wiki"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.Post("/game/guess", s.handleGuess)
	r.Post("/game/select", s.handleSelect)
	r.Get("/game/{id}", s.handleGetGame)
	r.Delete("/game/{id}", s.handleEndGame)
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Lang  string `json:"lang"`  // edition; server default when empty
	Title string `json:"title"` // random article when empty
}
type gameRes struct {
	GameID string      `json:"gameId"`
	Token  string      `json:"token,omitempty"`
	Lang   string      `json:"lang"`
	Date   string      `json:"date,omitempty"`
	View   render.View `json:"view"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeOptional(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	lang := req.Lang
	if strings.TrimSpace(lang) == "" {
		lang = s.opts.DefaultLang
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		t, err := s.opts.Fetcher.FetchRandomTitle(r.Context(), lang)
		if err != nil {
			if s.opts.Titles == nil {
				writeFetchError(w, err)
				return
			}
			t = s.opts.Titles.Random()
			log.Warn().Err(err).Str("lang", lang).Str("title", t).Msg("random title unavailable; using curated list")
		}
		title = t
	}
	s.startGame(w, r, lang, title, "")
}

// startGame fetches title, loads it into a fresh session and replies with
// the session token and initial view.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, lang, title, date string) {
	a, err := s.opts.Fetcher.FetchArticle(r.Context(), lang, title)
	if err != nil {
		writeFetchError(w, err)
		return
	}
	lang, _ = wiki.NormalizeLanguage(lang)

	sess := game.NewSession(lang)
	var view render.View
	sess.Do(func(e *game.Engine) {
		e.Load(a.Parse())
		view = render.Build(e)
	})
	if err := s.opts.Store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signSession(sess)
	if err != nil {
		log.Error().Err(err).Msg("sign session token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setSessionCookie(w, tok, exp)
	log.Info().Str("gameId", sess.ID).Str("lang", lang).Str("title", a.Title).Msg("game started")
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Token: tok, Lang: lang, Date: date, View: view})
}

// guessReq is the payload for POST /game/guess and POST /game/select.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Guess       string      `json:"guess"`
	Added       bool        `json:"added"`
	Occurrences int         `json:"occurrences"`
	View        render.View `json:"view"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.authorizedSession(w, r, req.GameID)
	if !ok {
		return
	}
	var res guessRes
	sess.Do(func(e *game.Engine) {
		res.Guess, res.Added = e.RegisterGuess(req.Guess)
		res.Occurrences, _ = e.CountOccurrences(res.Guess)
		res.View = render.Build(e)
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, ok := s.authorizedSession(w, r, req.GameID)
	if !ok {
		return
	}
	var view render.View
	sess.Do(func(e *game.Engine) {
		e.ToggleSelection(req.Guess)
		view = render.Build(e)
	})
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Lang: sess.Lang, View: view})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authorizedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var view render.View
	sess.Do(func(e *game.Engine) { view = render.Build(e) })
	writeJSON(w, http.StatusOK, gameRes{GameID: sess.ID, Lang: sess.Lang, View: view})
}

// handleEndGame discards the session and clears the cookie. The token
// stops working because its session is gone.
func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.authorizedSession(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := s.opts.Store.Delete(r.Context(), sess.ID); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("delete session")
		writeError(w, http.StatusInternalServerError, "delete_failed")
		return
	}
	s.setSessionCookie(w, "", time.Unix(0, 0))
	log.Info().Str("gameId", sess.ID).Msg("game ended")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// authorizedSession checks the request's token names id and loads the
// session. It writes the error response and returns false on failure.
func (s *Server) authorizedSession(w http.ResponseWriter, r *http.Request, id string) (*game.Session, bool) {
	sub, err := s.sessionFromToken(bearerOrCookie(r))
	if err != nil || sub != id {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return nil, false
	}
	sess, err := s.opts.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "game_not_found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("gameId", id).Msg("load session")
		writeError(w, http.StatusInternalServerError, "load_failed")
		return nil, false
	}
	return sess, true
}

// decodeOptional decodes a JSON body, treating an empty body as zero values.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
