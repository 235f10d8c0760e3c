package handler

import (
	"net/http"
	"strconv"

	"sound-service/configs/middleware"
	"sound-service/internal/models"
	"sound-service/internal/service"
	"sound-service/pkg/apperr"

	"github.com/gin-gonic/gin"
)

type SoundHandler struct {
	soundService *service.SoundService
}

func NewSoundHandler(soundService *service.SoundService) *SoundHandler {
	return &SoundHandler{soundService: soundService}
}

// @Summary Upload a sound clip
// @Tags sounds
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Clip title"
// @Param premium formData bool false "Premium-gated clip"
// @Param file formData file true "Audio file"
// @Success 201 {object} models.SoundResponse
// @Router /sounds [post]
func (h *SoundHandler) Upload(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	title := c.PostForm("title")
	premium := c.PostForm("premium") == "true"

	sound, err := h.soundService.Upload(c.Request.Context(), userID, title, premium, file)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sound)
}

// @Summary Browse sound clips
// @Tags sounds
// @Produce json
// @Param search query string false "Title search"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /sounds [get]
func (h *SoundHandler) List(c *gin.Context) {
	search := c.Query("search")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	sounds, total, err := h.soundService.ListPage(c.Request.Context(), search, page, limit)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalItem": total,
		"page":      page,
		"limit":     limit,
		"data":      sounds,
	})
}

func (h *SoundHandler) Mine(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	sounds, err := h.soundService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sounds)
}

func (h *SoundHandler) Get(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	soundID, err := parseIDParam(c, "soundId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sound ID format"})
		return
	}

	sound, err := h.soundService.Get(c.Request.Context(), soundID, userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sound)
}

// @Summary Play a sound clip
// @Description Returns the playback URL; premium clips require a premium listener
// @Tags sounds
// @Produce json
// @Param soundId path int true "Sound ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /sounds/{soundId}/play [post]
func (h *SoundHandler) Play(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	soundID, err := parseIDParam(c, "soundId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sound ID format"})
		return
	}

	url, err := h.soundService.Play(c.Request.Context(), soundID, userID)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *SoundHandler) Update(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	soundID, err := parseIDParam(c, "soundId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sound ID format"})
		return
	}

	var req models.UpdateSoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sound, err := h.soundService.Update(c.Request.Context(), soundID, userID, &req)
	if err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sound)
}

func (h *SoundHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	soundID, err := parseIDParam(c, "soundId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sound ID format"})
		return
	}

	if err := h.soundService.Delete(c.Request.Context(), soundID, userID); err != nil {
		c.JSON(apperr.Status(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sound deleted"})
}

// Register routes
func (h *SoundHandler) RegisterRoutes(r *gin.RouterGroup) {
	sounds := r.Group("/sounds")
	{
		sounds.Use(middleware.Auth())
		sounds.POST("", h.Upload)
		sounds.GET("", h.List)
		sounds.GET("/mine", h.Mine)
		sounds.GET("/:soundId", h.Get)
		sounds.POST("/:soundId/play", h.Play)
		sounds.PATCH("/:soundId", h.Update)
		sounds.DELETE("/:soundId", h.Delete)
	}
}
