package handler

import (
	"errors"
	"net/http"
	"strconv"

	"putping/internal/middleware"
	"putping/internal/models"
	"putping/internal/repository"
	"putping/internal/session"
	"putping/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GalleryHandler manages the ordered gallery (up to 9 images, first one is
// the profile photo).
type GalleryHandler struct {
	galleryRepo *repository.GalleryRepository
	profileRepo *repository.ProfileRepository
	sessions    *session.Manager
	cloud       cloudinary.Client
}

func NewGalleryHandler(galleryRepo *repository.GalleryRepository, profileRepo *repository.ProfileRepository, sessions *session.Manager, cloud cloudinary.Client) *GalleryHandler {
	return &GalleryHandler{
		galleryRepo: galleryRepo,
		profileRepo: profileRepo,
		sessions:    sessions,
		cloud:       cloud,
	}
}

func (h *GalleryHandler) List(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	imgs, err := h.galleryRepo.List(identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"images": imgs})
}

func (h *GalleryHandler) Upload(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()
	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), file, "gallery/"+identity, uuid.NewString())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	img := &models.GalleryImage{Identity: identity, URL: url, ThumbURL: thumb}
	if err := h.galleryRepo.Add(img); err != nil {
		if errors.Is(err, repository.ErrGalleryFull) {
			c.JSON(http.StatusConflict, gin.H{"error": "gallery is full"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	if img.Position == 0 {
		h.syncProfilePhoto(identity)
	}
	c.JSON(http.StatusOK, img)
}

// ReorderRequest carries the full new order; the write replaces the order
// wholesale (last writer wins).
func (h *GalleryHandler) Reorder(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.galleryRepo.Reorder(identity, req.IDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reorder failed"})
		return
	}
	h.syncProfilePhoto(identity)
	imgs, _ := h.galleryRepo.List(identity)
	c.JSON(http.StatusOK, gin.H{"images": imgs})
}

func (h *GalleryHandler) Delete(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.galleryRepo.Delete(identity, uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	h.syncProfilePhoto(identity)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// syncProfilePhoto mirrors the first gallery image into the profile photo
// and the live presence record.
func (h *GalleryHandler) syncProfilePhoto(identity string) {
	first, err := h.galleryRepo.First(identity)
	if err != nil {
		return
	}
	url := ""
	if first != nil {
		url = first.URL
	}
	_ = h.profileRepo.SetPhotoURL(identity, url)
	if s, ok := h.sessions.Get(identity); ok {
		if profile, err := h.profileRepo.GetByIdentity(identity); err == nil {
			s.UpdateProfile(profile.Name, profile.Gender, url)
		}
	}
}
