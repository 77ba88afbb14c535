package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/washb22/gunghabnote/internal/auth"
	"github.com/washb22/gunghabnote/internal/community"
)

func author(session *auth.Session) community.Author {
	return community.Author{ID: session.User.UserID(), Name: session.User.Name}
}

func (h *Handler) respondBoardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, community.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case isAny(err,
		community.ErrMissingTitleOrContent,
		community.ErrMissingComment,
		community.ErrInvalidCategory,
		community.ErrInvalidEmotion,
	):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.internalError(w, "board operation failed", err)
	}
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.board.ListPosts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "posts": posts})
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var in community.NewPost
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	post, err := h.board.CreatePost(r.Context(), author(session), in)
	if err != nil {
		h.respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "post": post})
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.board.ViewPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
}

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	res, err := h.board.ToggleLike(r.Context(), mux.Vars(r)["id"], session.User.UserID())
	if err != nil {
		h.respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "likes": res.Likes, "liked": res.Liked})
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var in community.NewComment
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, msgBadJSON)
		return
	}

	comment, err := h.board.AddComment(r.Context(), mux.Vars(r)["id"], author(session), in)
	if err != nil {
		h.respondBoardError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": comment})
}
