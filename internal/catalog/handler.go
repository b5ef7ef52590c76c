package catalog

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	_ "embed"

	"github.com/gin-gonic/gin"

	"cardmirror/pkg/models"
)

//go:embed templates/index.html
var indexHTML string

// StatusSource exposes the ingestion status record to the read path.
type StatusSource interface {
	Snapshot() models.Status
}

// ImageSource returns the raw image bytes for a card id.
type ImageSource interface {
	Get(ctx context.Context, id int64) ([]byte, error)
}

type Handler struct {
	Repo   *Repo
	Status StatusSource
	Images ImageSource
}

func NewHandler(repo *Repo, status StatusSource, images ImageSource) *Handler {
	return &Handler{Repo: repo, Status: status, Images: images}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("index.html").Parse(indexHTML)))

	r.GET("/", h.index)
	r.GET("/db-status", h.dbStatus)
	r.GET("/search", h.search)
	r.GET("/card/:id", h.cardImage)
}

func (h *Handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Status": h.Status.Snapshot(),
	})
}

func (h *Handler) dbStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Status.Snapshot())
}

// gate rejects read queries until ingestion completes. Readers must never
// touch the store before the ready transition: with a single writer and a
// shared-memory store, a mid-run read could observe a partial mirror.
func (h *Handler) gate(c *gin.Context) bool {
	st := h.Status.Snapshot()
	if st.State != models.StateReady {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "card store is not ready yet",
			"status":  st.State,
			"message": st.Message,
		})
		return false
	}
	return true
}

func (h *Handler) search(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	query := strings.TrimSpace(c.Query("query"))
	cards, err := h.Repo.Search(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handler) cardImage(c *gin.Context) {
	if !h.gate(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, "Card not found")
		return
	}

	data, err := h.Images.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.String(http.StatusNotFound, "Card not found")
			return
		}
		c.String(http.StatusNotFound, "Image not found")
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}
