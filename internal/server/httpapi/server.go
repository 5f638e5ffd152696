// Package httpapi exposes the document and account services over HTTP/JSON.
// Identifiers cross this boundary as 22-character base64url strings and are
// falsified cheaply before any decode or database work.
package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stemmahq/stemma/internal/service"
)

// Server wires services into HTTP handlers.
type Server struct {
	docs      service.DocumentService
	accounts  service.AccountService
	signKey   []byte
	accessTTL time.Duration
	log       *zap.Logger
}

// New constructs a Server with injected services.
func New(docs service.DocumentService, accounts service.AccountService, signKey []byte, accessTTL time.Duration, log *zap.Logger) *Server {
	return &Server{
		docs:      docs,
		accounts:  accounts,
		signKey:   signKey,
		accessTTL: accessTTL,
		log:       log,
	}
}

// Router builds the gin engine with logging and recovery middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLog(), s.recovery())

	api := r.Group("/api")
	{
		docs := api.Group("/documents")
		docs.GET("/:id", s.getDocumentBody)
		docs.GET("/:id/metadata", s.getDocumentMetadata)
		docs.GET("/:id/descendants", s.getDescendants)
		docs.GET("/:id/family", s.getFamily)
		docs.GET("/:id/history", s.getHistory)
		docs.POST("", s.requireAuth(), s.postDocument)

		accounts := api.Group("/accounts")
		accounts.GET("/:id/metadata", s.getAccountMetadata)
		accounts.GET("/:id/documents", s.getAccountDocuments)
		accounts.POST("", s.postAccount)

		api.POST("/sessions", s.postSession)
	}

	r.GET("/sitemap.xml", s.getSitemap)
	r.GET("/robots.txt", s.getRobots)

	return r
}
