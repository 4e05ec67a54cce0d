package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ewen-lbh/loca7/internal/auth"
	"github.com/ewen-lbh/loca7/internal/database/users"
	"github.com/ewen-lbh/loca7/internal/entities"
	"github.com/ewen-lbh/loca7/internal/importer"
	"github.com/ewen-lbh/loca7/internal/tasks"
)

// AccountsController serves registration, login and the account
// recovery flows.
type AccountsController struct {
	users       *users.Repository
	sessions    *auth.SessionManager
	taskClient  *tasks.Client
	bcryptCost  int
	tokenExpiry time.Duration
	publicURL   string
}

func NewAccountsController(cfg RouterConfig) *AccountsController {
	return &AccountsController{
		users:       cfg.Users,
		sessions:    cfg.Sessions,
		taskClient:  cfg.TaskClient,
		bcryptCost:  cfg.BcryptCost,
		tokenExpiry: cfg.TokenExpiry,
		publicURL:   cfg.PublicURL,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
}

// Register creates a new account and sends the address validation link.
func (ctl *AccountsController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and lastName are required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := ctl.users.EmailExists(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "an account already uses this address"})
		return
	}

	hash, err := auth.HashPassword(req.Password, ctl.bcryptCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
	}
	if err := ctl.users.Create(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}

	ctl.sendValidationMail(user)

	if err := ctl.sessions.CreateSession(c.Request, user); err != nil {
		log.Printf("failed to open session for %s: %v", user.Email, err)
	}
	c.JSON(http.StatusCreated, user)
}

func (ctl *AccountsController) sendValidationMail(user *entities.User) {
	validation, err := ctl.users.CreateEmailValidation(user.ID, ctl.tokenExpiry)
	if err != nil {
		log.Printf("failed to issue email validation for %s: %v", user.Email, err)
		return
	}
	ctl.notify("validate-email", user.Email, "Vérifiez votre adresse email", map[string]any{
		"Name": user.Name(),
		"URL":  ctl.publicURL + "/validate-email/" + validation.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login opens a session. Invalid addresses and wrong passwords get the
// same answer so addresses cannot be enumerated.
func (ctl *AccountsController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := ctl.users.GetByEmail(req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if err := auth.CheckPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := ctl.sessions.CreateSession(c.Request, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout destroys the current session.
func (ctl *AccountsController) Logout(c *gin.Context) {
	if err := ctl.sessions.DestroySession(c.Request); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"loggedOut": true})
}

// ValidateEmail redeems an address validation token.
func (ctl *AccountsController) ValidateEmail(c *gin.Context) {
	user, err := ctl.users.ConsumeEmailValidation(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired validation link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": user.Email, "validated": true})
}

type passwordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset mails a reset link. The response is the same
// whether or not the address belongs to an account.
func (ctl *AccountsController) RequestPasswordReset(c *gin.Context) {
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	user, err := ctl.users.GetByEmail(req.Email)
	if err == nil {
		reset, err := ctl.users.CreatePasswordReset(user.ID, ctl.tokenExpiry)
		if err != nil {
			log.Printf("failed to issue password reset for %s: %v", user.Email, err)
		} else {
			ctl.notify("reset-password", user.Email, "Réinitialisation de votre mot de passe", map[string]any{
				"Name": user.Name(),
				"URL":  ctl.publicURL + "/reset-password/" + reset.ID,
			})
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": true})
}

type newPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ConsumePasswordReset redeems a reset token and stores the new
// password. This is also how imported owners claim their account.
func (ctl *AccountsController) ConsumePasswordReset(c *gin.Context) {
	var req newPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	hash, err := auth.HashPassword(req.Password, ctl.bcryptCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ctl.users.ConsumePasswordReset(c.Param("token"), hash)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired reset link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": user.Email, "reset": true})
}

// AdminEmails lists the addresses of owners who have not claimed their
// imported account yet, one per line. Placeholder addresses generated
// during the import are skipped since nobody reads them.
func (ctl *AccountsController) AdminEmails(c *gin.Context) {
	emails, err := ctl.users.ListEmailsWithoutCredentials()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}

	reachable := make([]string, 0, len(emails))
	for _, email := range emails {
		if importer.IsGhostEmail(email) {
			continue
		}
		reachable = append(reachable, email)
	}
	c.String(http.StatusOK, strings.Join(reachable, "\n"))
}

func (ctl *AccountsController) notify(template, to, subject string, data map[string]any) {
	if ctl.taskClient == nil || to == "" {
		return
	}
	task := tasks.SendMailTask{Template: template, To: to, Subject: subject, Data: data}
	if _, err := ctl.taskClient.Add(task).Save(); err != nil {
		log.Printf("failed to enqueue %s mail for %s: %v", template, to, err)
	}
}
