package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/arzan03/campus-connect/internal/middleware"
	"github.com/arzan03/campus-connect/internal/services"
)

type AuthHandler struct {
	svc        *services.AuthService
	production bool
}

func NewAuthHandler(svc *services.AuthService, production bool) *AuthHandler {
	return &AuthHandler{svc: svc, production: production}
}

// SendOTP stages a registration and mails a verification code.
func (h *AuthHandler) SendOTP(c *fiber.Ctx) error {
	var request services.RegistrationInput
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	code, err := h.svc.SendOTP(c.Context(), request)
	if err != nil {
		return err
	}

	response := fiber.Map{"message": "OTP sent to your email"}
	if !h.production {
		// Debug preview so development setups without a mailbox can register.
		response["debug"] = fiber.Map{"otp": code}
	}
	return c.JSON(response)
}

// VerifyOTP consumes the code and finalizes the registration.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var request struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.svc.VerifyOTP(c.Context(), request.Email, request.OTP)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Registration complete",
		"token":   token,
		"user":    user,
	})
}

// Register is the legacy direct registration path.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var request services.RegistrationInput
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.svc.Register(c.Context(), request)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	token, user, err := h.svc.Login(c.Context(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	user.Password = ""
	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfile updates the authenticated user's own profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var request services.ProfileUpdate
	if err := c.BodyParser(&request); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, err := h.svc.UpdateProfile(c.Context(), middleware.CurrentUser(c), request)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated",
		"user":    user,
	})
}
