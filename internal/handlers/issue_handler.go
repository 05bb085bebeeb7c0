package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/campus-connect/internal/middleware"
	"github.com/arzan03/campus-connect/internal/models"
	"github.com/arzan03/campus-connect/internal/services"
	"github.com/arzan03/campus-connect/internal/storage"
)

// imageURLPrefix is the server-relative path issue images are served under.
const imageURLPrefix = "/uploads/issue-images/"

type IssueHandler struct {
	svc    *services.IssueService
	images models.ImageStore
}

func NewIssueHandler(svc *services.IssueService, images models.ImageStore) *IssueHandler {
	return &IssueHandler{svc: svc, images: images}
}

// Create accepts a multipart form with title, description, category,
// optional department and an optional image file.
func (h *IssueHandler) Create(c *fiber.Ctx) error {
	input := services.CreateIssueInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    models.Category(c.FormValue("category")),
		Department:  c.FormValue("department"),
	}

	fileHeader, err := c.FormFile("image")
	if err == nil && fileHeader != nil {
		if fileHeader.Size > storage.MaxImageSize {
			return fiber.NewError(fiber.StatusBadRequest, "Image exceeds the 5MB limit")
		}
		contentType := fileHeader.Header.Get("Content-Type")
		if !storage.AllowedImage(fileHeader.Filename, contentType) {
			return fiber.NewError(fiber.StatusBadRequest, "Only image files are allowed")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Failed to read uploaded image")
		}
		defer file.Close()

		objectName := storage.ObjectName(fileHeader.Filename)
		if err := h.images.Save(c.Context(), objectName, file, fileHeader.Size, contentType); err != nil {
			return fmt.Errorf("failed to store image: %w", err)
		}
		input.ImageURL = imageURLPrefix + objectName
	}

	issue, err := h.svc.Create(c.Context(), middleware.CurrentUser(c), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Issue created",
		"issue":   issue,
	})
}

// List returns issues visible to the caller, with optional status, category
// and department filters.
func (h *IssueHandler) List(c *fiber.Ctx) error {
	filters := services.ListFilters{
		Status:     models.Status(c.Query("status")),
		Category:   models.Category(c.Query("category")),
		Department: c.Query("department"),
	}

	issues, err := h.svc.List(c.Context(), middleware.CurrentUser(c), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"issues": issues})
}

// ListMine returns the caller's own issues.
func (h *IssueHandler) ListMine(c *fiber.Ctx) error {
	issues, err := h.svc.ListMine(c.Context(), middleware.CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"issues": issues})
}

func (h *IssueHandler) Get(c *fiber.Ctx) error {
	issue, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"issue": issue})
}

// UpdateStatus changes an issue's status; authority-only route.
func (h *IssueHandler) UpdateStatus(c *fiber.Ctx) error {
	var request struct {
		Status models.Status `json:"status"`
	}
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	issue, err := h.svc.UpdateStatus(c.Context(), middleware.CurrentUser(c), c.Params("id"), request.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Status updated",
		"issue":   issue,
	})
}

// AddComment appends a comment and returns the full updated issue.
func (h *IssueHandler) AddComment(c *fiber.Ctx) error {
	var request struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	issue, err := h.svc.AddComment(c.Context(), middleware.CurrentUser(c), c.Params("id"), request.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Comment added",
		"issue":   issue,
	})
}

// Delete removes an issue; authority-only route.
func (h *IssueHandler) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Issue deleted successfully"})
}

// ListComments serves the legacy standalone comments sub-resource.
func (h *IssueHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.svc.LegacyComments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// DeleteComment removes a comment from the legacy collection.
func (h *IssueHandler) DeleteComment(c *fiber.Ctx) error {
	if err := h.svc.DeleteLegacyComment(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

// ServeImage streams an uploaded issue image from object storage. The URL
// shape matches the static uploads directory older deployments used.
func (h *IssueHandler) ServeImage(c *fiber.Ctx) error {
	object := c.Params("object")
	reader, contentType, err := h.images.Open(c.Context(), object)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Image not found")
	}
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.SendStream(reader)
}
