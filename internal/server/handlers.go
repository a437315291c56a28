package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/learnify/learnify/internal/identity"
	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/store"
)

type createSubjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type visibilityRequest struct {
	IsPublic *bool `json:"is_public"`
}

type addTopicRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type moveTopicRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type edgeRequest struct {
	ParentID string `json:"parent_id" form:"parent_id"`
	ChildID  string `json:"child_id" form:"child_id"`
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

type profileResponse struct {
	*store.Profile
	HasAPIKey bool `json:"has_api_key"`
}

type unlockedResponse struct {
	Unlocked []string `json:"unlocked"`
}

func userID(c *gin.Context) string {
	return identity.UserFrom(c.Request.Context())
}

func unlocked(ids []string) unlockedResponse {
	if ids == nil {
		ids = []string{}
	}
	return unlockedResponse{Unlocked: ids}
}

func subjectList(subjects []store.Subject) gin.H {
	if subjects == nil {
		subjects = []store.Subject{}
	}
	return gin.H{"subjects": subjects}
}

// GET /api/v1/subjects
func (s *Server) listSubjects(c *gin.Context) {
	subjects, err := s.svc.ListSubjects(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjectList(subjects))
}

// GET /api/v1/public/subjects
func (s *Server) listPublicSubjects(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	subjects, err := s.svc.ListPublicSubjects(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjectList(subjects))
}

// POST /api/v1/subjects
func (s *Server) createSubject(c *gin.Context) {
	var req createSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	subject, err := s.svc.CreateSubject(c.Request.Context(), userID(c), req.Title, req.Description, req.IsPublic)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// POST /api/v1/subjects/generate
func (s *Server) generateSubject(c *gin.Context) {
	var req lifecycle.GraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	graph, err := s.svc.GenerateSubjectGraph(c.Request.Context(), userID(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, graph)
}

// GET /api/v1/subjects/:id and GET /api/v1/public/subjects/:id
func (s *Server) getSubjectGraph(c *gin.Context) {
	graph, err := s.svc.GetSubjectGraph(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, graph)
}

// PATCH /api/v1/subjects/:id
func (s *Server) setSubjectVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsPublic == nil {
		badRequest(c, "is_public is required")
		return
	}
	if err := s.svc.SetSubjectVisibility(c.Request.Context(), userID(c), c.Param("id"), *req.IsPublic); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/v1/subjects/:id
func (s *Server) deleteSubject(c *gin.Context) {
	if err := s.svc.DeleteSubject(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/subjects/:id/unlock
func (s *Server) unlockSubject(c *gin.Context) {
	ids, err := s.svc.UnlockReachableTopics(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlocked(ids))
}

// POST /api/v1/subjects/:id/topics
func (s *Server) addTopic(c *gin.Context) {
	var req addTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	topic, err := s.svc.AddTopic(c.Request.Context(), userID(c), c.Param("id"), req.Title, req.Description)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// POST /api/v1/topics/:id/generate
func (s *Server) generateTopic(c *gin.Context) {
	content, err := s.svc.GenerateTopicContent(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// GET /api/v1/topics/:id/content
func (s *Server) getTopicContent(c *gin.Context) {
	content, err := s.svc.GetTopicContent(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// POST /api/v1/topics/:id/complete
func (s *Server) completeTopic(c *gin.Context) {
	ids, err := s.svc.CompleteTopic(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlocked(ids))
}

// PATCH /api/v1/topics/:id/position
func (s *Server) moveTopic(c *gin.Context) {
	var req moveTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.X == nil || req.Y == nil {
		badRequest(c, "x and y are required")
		return
	}
	if err := s.svc.MoveTopic(c.Request.Context(), userID(c), c.Param("id"), *req.X, *req.Y); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindEdge(c *gin.Context) (edgeRequest, bool) {
	var req edgeRequest
	var err error
	if c.Request.ContentLength > 0 {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBindQuery(&req)
	}
	if err != nil || req.ParentID == "" || req.ChildID == "" {
		badRequest(c, "parent_id and child_id are required")
		return req, false
	}
	return req, true
}

// POST /api/v1/edges
func (s *Server) linkTopics(c *gin.Context) {
	req, ok := bindEdge(c)
	if !ok {
		return
	}
	if err := s.svc.LinkTopics(c.Request.Context(), userID(c), req.ParentID, req.ChildID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/v1/edges
func (s *Server) unlinkTopics(c *gin.Context) {
	req, ok := bindEdge(c)
	if !ok {
		return
	}
	ids, err := s.svc.UnlinkTopics(c.Request.Context(), userID(c), req.ParentID, req.ChildID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, unlocked(ids))
}

// GET /api/v1/profile
func (s *Server) getProfile(c *gin.Context) {
	p, err := s.svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{Profile: p, HasAPIKey: p.HasAPIKey()})
}

// PUT /api/v1/profile
func (s *Server) updateProfile(c *gin.Context) {
	var req lifecycle.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := s.svc.UpdateProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{Profile: p, HasAPIKey: p.HasAPIKey()})
}

// PUT /api/v1/profile/api-key
func (s *Server) setAPIKey(c *gin.Context) {
	var req apiKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := s.svc.SetAPIKey(c.Request.Context(), userID(c), req.APIKey); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/v1/profile/api-key
func (s *Server) clearAPIKey(c *gin.Context) {
	if err := s.svc.ClearAPIKey(c.Request.Context(), userID(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
