package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/ident"
	"github.com/stemmahq/stemma/internal/model"
)

type documentMetadataResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	AuthorID  string `json:"authorId"`
	Timestamp string `json:"timestamp"`
}

func toMetadataResponse(meta model.DocumentMetadata) documentMetadataResponse {
	return documentMetadataResponse{
		ID:        meta.ID.String(),
		Title:     meta.Title,
		AuthorID:  ident.EncodeUUID(meta.AuthorID),
		Timestamp: meta.Timestamp.Format("2006-01-02T15:04:05"),
	}
}

// documentID falsifies then decodes the :id path segment. The falsification
// pass keeps junk input away from the decoder and the database.
func (s *Server) documentID(c *gin.Context) (ident.Sum, bool) {
	raw := c.Param("id")
	if ident.LooksInvalid(raw) {
		s.log.Warn("document id rejected", zap.String("peer", c.ClientIP()))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: errs.ErrInvalidID.Error()})
		return ident.Sum{}, false
	}
	id, err := ident.FromString(raw)
	if err != nil {
		writeError(c, err)
		return ident.Sum{}, false
	}
	return id, true
}

func (s *Server) getDocumentBody(c *gin.Context) {
	id, ok := s.documentID(c)
	if !ok {
		return
	}
	body, err := s.docs.Body(c.Request.Context(), id, false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(body))
}

func (s *Server) getDocumentMetadata(c *gin.Context) {
	id, ok := s.documentID(c)
	if !ok {
		return
	}
	meta, err := s.docs.Metadata(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMetadataResponse(*meta))
}

func (s *Server) getDescendants(c *gin.Context) {
	id, ok := s.documentID(c)
	if !ok {
		return
	}
	descendants, err := s.docs.Descendants(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if descendants == nil {
		descendants = []ident.Sum{}
	}
	c.JSON(http.StatusOK, descendants)
}

func (s *Server) getFamily(c *gin.Context) {
	id, ok := s.documentID(c)
	if !ok {
		return
	}
	family, err := s.docs.Family(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if family == nil {
		family = []model.Relation{}
	}
	c.JSON(http.StatusOK, family)
}

type historyResponse struct {
	Relations    []model.Relation `json:"relations"`
	Ancestors    []ident.Sum      `json:"ancestors"`
	Contributors []string         `json:"contributors"`
	Tips         []ident.Sum      `json:"tips"`
}

func (s *Server) getHistory(c *gin.Context) {
	id, ok := s.documentID(c)
	if !ok {
		return
	}
	hist, err := s.docs.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := historyResponse{
		Relations:    hist.Relations,
		Ancestors:    hist.Ancestors,
		Contributors: make([]string, 0, len(hist.Contributors)),
		Tips:         hist.Tips,
	}
	if resp.Relations == nil {
		resp.Relations = []model.Relation{}
	}
	if resp.Tips == nil {
		resp.Tips = []ident.Sum{}
	}
	for _, contributor := range hist.Contributors {
		resp.Contributors = append(resp.Contributors, ident.EncodeUUID(contributor))
	}
	c.JSON(http.StatusOK, resp)
}

type documentSubmission struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	AntecedentIDs []string `json:"antecedentIds"`
}

func (s *Server) postDocument(c *gin.Context) {
	author, ok := authorID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "no authenticated author"})
		return
	}

	var sub documentSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "malformed submission"})
		return
	}

	antecedents := make([]ident.Sum, 0, len(sub.AntecedentIDs))
	for _, raw := range sub.AntecedentIDs {
		if ident.LooksInvalid(raw) {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: errs.ErrInvalidID.Error()})
			return
		}
		ante, err := ident.FromString(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		antecedents = append(antecedents, ante)
	}

	id, err := s.docs.Add(c.Request.Context(), author, sub.Title, sub.Body, antecedents)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String()})
}
