package httpapi

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxSitemapRecords caps one sitemap file, per the sitemap protocol.
const maxSitemapRecords = 50000

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	LastMod    string `xml:"lastmod"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// getSitemap streams every document as a sitemap entry. Documents are
// immutable, so lastmod is the creation timestamp and changefreq is never.
func (s *Server) getSitemap(c *gin.Context) {
	cursor, err := s.docs.MetadataStream(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	defer cursor.Close()

	set := sitemapURLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for len(set.URLs) < maxSitemapRecords && cursor.Next() {
		meta, err := cursor.Current()
		if err != nil {
			writeError(c, err)
			return
		}
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        fmt.Sprintf("http://%s/api/documents/%s", c.Request.Host, meta.ID),
			ChangeFreq: "never",
			LastMod:    meta.Timestamp.Format("2006-01-02T15:04:05"),
		})
	}
	if err := cursor.Err(); err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Writer.WriteHeader(http.StatusOK)
	if _, err := c.Writer.WriteString(xml.Header); err != nil {
		return
	}
	if err := xml.NewEncoder(c.Writer).Encode(set); err != nil {
		s.log.Error("sitemap encode", zap.Error(err))
	}
}

func (s *Server) getRobots(c *gin.Context) {
	c.String(http.StatusOK, "User-agent: *\nSitemap: http://%s/sitemap.xml", c.Request.Host)
}
