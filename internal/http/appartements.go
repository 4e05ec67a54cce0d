package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ewen-lbh/loca7/internal/auth"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/entities"
	"github.com/ewen-lbh/loca7/internal/tasks"
)

// AppartementsController serves the listing endpoints.
type AppartementsController struct {
	repo       *appartments.Repository
	taskClient *tasks.Client
	publicURL  string
}

func NewAppartementsController(cfg RouterConfig) *AppartementsController {
	return &AppartementsController{
		repo:       cfg.Appartments,
		taskClient: cfg.TaskClient,
		publicURL:  cfg.PublicURL,
	}
}

// Search returns live listings matching the query criteria.
func (ctl *AppartementsController) Search(c *gin.Context) {
	criteria, err := parseSearchCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := ctl.repo.Search(criteria)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appartements": results, "count": len(results)})
}

func parseSearchCriteria(c *gin.Context) (appartments.SearchCriteria, error) {
	var criteria appartments.SearchCriteria

	if raw := c.Query("loyer_max"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return criteria, errors.New("invalid loyer_max")
		}
		criteria.MaxRent = &v
	}
	if raw := c.Query("surface_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return criteria, errors.New("invalid surface_min")
		}
		criteria.MinSurface = &v
	}
	if raw := c.Query("chambres_min"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, errors.New("invalid chambres_min")
		}
		criteria.MinRooms = &v
	}
	for _, raw := range c.QueryArray("type") {
		kind := entities.AppartmentKind(raw)
		if _, ok := entities.DisplayAppartmentKind[kind]; !ok {
			return criteria, errors.New("unknown listing type " + raw)
		}
		criteria.Kinds = append(criteria.Kinds, kind)
	}

	var err error
	if criteria.HasFurniture, err = ternaryQuery(c, "meuble"); err != nil {
		return criteria, err
	}
	if criteria.HasParking, err = ternaryQuery(c, "parking"); err != nil {
		return criteria, err
	}
	return criteria, nil
}

// ternaryQuery parses a three-state filter: absent means "don't care".
func ternaryQuery(c *gin.Context, name string) (*bool, error) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, nil
	}
	switch raw {
	case "1", "true":
		v := true
		return &v, nil
	case "0", "false":
		v := false
		return &v, nil
	default:
		return nil, errors.New("invalid value for " + name)
	}
}

// lookup finds a listing by id, falling back to the legacy numeric id
// so links from the old site keep working.
func (ctl *AppartementsController) lookup(param string) (*entities.Appartment, error) {
	appartment, err := ctl.repo.GetByID(param)
	if err == nil {
		return appartment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	number, convErr := strconv.Atoi(param)
	if convErr != nil {
		return nil, gorm.ErrRecordNotFound
	}
	return ctl.repo.GetByNumber(number)
}

// Show returns one listing. Pending or archived listings are only
// visible to their owner and to administrators.
func (ctl *AppartementsController) Show(c *gin.Context) {
	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if !appartment.AccessibleBy(auth.CurrentUser(c)) {
		// Indistinguishable from a missing listing on purpose.
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, appartment)
}

// requireOwnership loads the listing and checks the requester may
// manage it.
func (ctl *AppartementsController) requireOwnership(c *gin.Context) (*entities.Appartment, *entities.User, bool) {
	user := auth.CurrentUser(c)
	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return nil, nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, nil, false
	}
	if user.ID != appartment.OwnerID && !user.Admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
		return nil, nil, false
	}
	return appartment, user, true
}

// Publish puts a listing back online. Admins publish directly; owners
// put it back into the moderation queue. Users who liked the listing
// are told it is available again.
func (ctl *AppartementsController) Publish(c *gin.Context) {
	appartment, user, ok := ctl.requireOwnership(c)
	if !ok {
		return
	}

	if err := ctl.repo.SetArchived(appartment.ID, false); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	approved := appartment.Approved
	if user.Admin {
		approved = true
		if err := ctl.repo.SetApproved(appartment.ID, true); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}

	ctl.notify("announcement-published", appartment.Owner.Email,
		"Votre annonce est en ligne", map[string]any{
			"Title": appartment.Title(),
			"URL":   ctl.publicURL + "/appartements/" + appartment.ID,
		})

	likers, err := ctl.repo.Likers(appartment.ID)
	if err == nil {
		for _, liker := range likers {
			ctl.notify("liked-appartment-back-online", liker.Email,
				"Une annonce que vous suivez est de nouveau disponible", map[string]any{
					"Title": appartment.Title(),
					"URL":   ctl.publicURL + "/appartements/" + appartment.ID,
				})
		}
	}

	c.JSON(http.StatusOK, gin.H{"archived": false, "approved": approved})
}

// Archive takes a listing offline.
func (ctl *AppartementsController) Archive(c *gin.Context) {
	appartment, _, ok := ctl.requireOwnership(c)
	if !ok {
		return
	}
	if err := ctl.repo.SetArchived(appartment.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": true})
}

type reportRequest struct {
	Reason  entities.ReportReason `json:"reason" binding:"required"`
	Message string                `json:"message"`
}

// Report files a complaint against a listing.
func (ctl *AppartementsController) Report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason is required"})
		return
	}
	if _, ok := entities.DisplayReportReason[req.Reason]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown report reason"})
		return
	}

	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	report := &entities.Report{
		AppartmentID: appartment.ID,
		AuthorID:     auth.CurrentUser(c).ID,
		Reason:       req.Reason,
		Message:      req.Message,
	}
	if err := ctl.repo.CreateReport(report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusCreated, report)
}

// Approve is the moderation step making a pending listing public.
func (ctl *AppartementsController) Approve(c *gin.Context) {
	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	if err := ctl.repo.SetApproved(appartment.ID, true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}

	ctl.notify("announcement-approved", appartment.Owner.Email,
		"Votre annonce a été validée", map[string]any{
			"Title": appartment.Title(),
			"URL":   ctl.publicURL + "/appartements/" + appartment.ID,
		})

	c.JSON(http.StatusOK, gin.H{"approved": true})
}

// Mine lists the requester's own listings, archived ones included.
func (ctl *AppartementsController) Mine(c *gin.Context) {
	results, err := ctl.repo.ListByOwner(auth.CurrentUser(c).ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appartements": results, "count": len(results)})
}

// PendingApproval lists the moderation queue.
func (ctl *AppartementsController) PendingApproval(c *gin.Context) {
	results, err := ctl.repo.ListPendingApproval()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"appartements": results, "count": len(results)})
}

// Like saves a listing so the user hears about it coming back online.
func (ctl *AppartementsController) Like(c *gin.Context) {
	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if err := ctl.repo.Like(appartment.ID, auth.CurrentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "like failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// Unlike removes a saved listing.
func (ctl *AppartementsController) Unlike(c *gin.Context) {
	appartment, err := ctl.lookup(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if err := ctl.repo.Unlike(appartment.ID, auth.CurrentUser(c).ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unlike failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// notify enqueues a notification email, best effort: a full mail queue
// never fails the originating request.
func (ctl *AppartementsController) notify(template, to, subject string, data map[string]any) {
	if ctl.taskClient == nil || to == "" {
		return
	}
	task := tasks.SendMailTask{Template: template, To: to, Subject: subject, Data: data}
	if _, err := ctl.taskClient.Add(task).Save(); err != nil {
		log.Printf("failed to enqueue %s mail for %s: %v", template, to, err)
	}
}
