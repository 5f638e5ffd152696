package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/stemmahq/stemma/internal/crypto"
	"github.com/stemmahq/stemma/internal/errs"
	"github.com/stemmahq/stemma/internal/ident"
)

// accountID falsifies then decodes an account id path segment; account ids
// share the 22-character wire form with document ids.
func (s *Server) accountID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	if ident.LooksInvalid(raw) {
		s.log.Warn("account id rejected", zap.String("peer", c.ClientIP()))
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: errs.ErrInvalidID.Error()})
		return uuid.Nil, false
	}
	id, err := ident.DecodeUUID(raw)
	if err != nil {
		writeError(c, err)
		return uuid.Nil, false
	}
	return id, true
}

type accountMetadataResponse struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	GravatarHash string `json:"gravatarHash"`
}

func (s *Server) getAccountMetadata(c *gin.Context) {
	id, ok := s.accountID(c)
	if !ok {
		return
	}
	a, err := s.accounts.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountMetadataResponse{
		ID:           ident.EncodeUUID(a.ID),
		DisplayName:  a.DisplayName,
		GravatarHash: crypto.GravatarHash(a.Email),
	})
}

func (s *Server) getAccountDocuments(c *gin.Context) {
	id, ok := s.accountID(c)
	if !ok {
		return
	}
	ids, err := s.docs.ByAuthor(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if ids == nil {
		ids = []ident.Sum{}
	}
	c.JSON(http.StatusOK, ids)
}

type registrationSubmission struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

func (s *Server) postAccount(c *gin.Context) {
	var sub registrationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "malformed registration"})
		return
	}
	a, err := s.accounts.Register(c.Request.Context(), sub.DisplayName, sub.Email, sub.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ident.EncodeUUID(a.ID)})
}

type sessionSubmission struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) postSession(c *gin.Context) {
	var sub sessionSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{Error: "malformed login"})
		return
	}
	a, err := s.accounts.Authenticate(c.Request.Context(), sub.Email, sub.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, exp, err := s.issueToken(a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": exp,
		"accountId": ident.EncodeUUID(a.ID),
	})
}
