package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/services"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
	"github.com/ocserv-tools/ocserv-panel/internal/validation"
)

// expireDateLayout is the wire format for user expiration dates.
const expireDateLayout = "2006-01-02"

// CreateOcservUserRequest is the payload for creating a VPN user.
type CreateOcservUserRequest struct {
	Username    string  `json:"username" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	Group       string  `json:"group"`
	ExpireDate  string  `json:"expire_date"`
	TrafficType string  `json:"traffic_type"`
	TrafficGB   int     `json:"traffic_gb"`
	Description *string `json:"description"`
}

// UpdateOcservUserRequest is the payload for patching a VPN user.
// Omitted fields stay unchanged.
type UpdateOcservUserRequest struct {
	Password    *string `json:"password"`
	Group       *string `json:"group"`
	ExpireDate  *string `json:"expire_date"`
	TrafficType *string `json:"traffic_type"`
	TrafficGB   *int    `json:"traffic_gb"`
	Description *string `json:"description"`
}

// ListOcservUsers returns a page of VPN users with their online state.
func (h *Handlers) ListOcservUsers(c *gin.Context) {
	query := "SELECT * FROM ocserv_users"
	countQuery := "SELECT COUNT(*) FROM ocserv_users"
	args := []interface{}{}
	whereClauses := []string{}

	if group := c.Query("group"); group != "" {
		whereClauses = append(whereClauses, "group_name = ?")
		args = append(args, group)
	}
	if active := c.Query("active"); active != "" {
		whereClauses = append(whereClauses, "active = ?")
		args = append(args, active == "true")
	}

	if len(whereClauses) > 0 {
		whereClause := " WHERE " + strings.Join(whereClauses, " AND ")
		query += whereClause
		countQuery += whereClause
	}
	query += " ORDER BY username ASC"

	col := utils.QueryCollection[models.OcservUser]{
		DB:         h.db,
		Query:      query,
		CountQuery: countQuery,
		Args:       args,
	}

	ctx := c.Request.Context()
	result, err := utils.Paginate(ctx, col, utils.PageRequestFromQuery(c), func(users []models.OcservUser) any {
		return h.userSvc.MarkOnline(ctx, users)
	})
	if err != nil {
		utils.HandleDBError(c, err, "User")
		return
	}
	utils.Paginated(c, result)
}

// GetOcservUser returns a single VPN user.
func (h *Handlers) GetOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.Success(c, user)
}

// CreateOcservUser creates a VPN user and its ocserv credential.
func (h *Handlers) CreateOcservUser(c *gin.Context) {
	var req CreateOcservUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if result := validation.New().
		CheckUsername("username", req.Username).
		CheckPassword("password", req.Password, 4).
		CheckTrafficType("traffic_type", req.TrafficType); result.HasErrors() {
		handleServiceError(c, result.ToError(), "User")
		return
	}

	expire, ok := parseExpireDate(c, req.ExpireDate)
	if !ok {
		return
	}

	user, err := h.userSvc.Create(c.Request.Context(), services.CreateUserRequest{
		Username:    req.Username,
		Password:    req.Password,
		Group:       req.Group,
		ExpireDate:  expire,
		TrafficType: req.TrafficType,
		TrafficGB:   req.TrafficGB,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.Created(c, user)
}

// UpdateOcservUser patches a VPN user; credential changes are resynced.
func (h *Handlers) UpdateOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	var req UpdateOcservUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	result := validation.New()
	if req.Password != nil {
		result.CheckPassword("password", *req.Password, 4)
	}
	if req.TrafficType != nil {
		result.CheckTrafficType("traffic_type", *req.TrafficType)
	}
	if result.HasErrors() {
		handleServiceError(c, result.ToError(), "User")
		return
	}

	var expire *time.Time
	if req.ExpireDate != nil {
		parsed, ok := parseExpireDate(c, *req.ExpireDate)
		if !ok {
			return
		}
		expire = parsed
	}

	user, err := h.userSvc.Update(c.Request.Context(), id, services.UpdateUserRequest{
		Password:    req.Password,
		Group:       req.Group,
		ExpireDate:  expire,
		TrafficType: req.TrafficType,
		TrafficGB:   req.TrafficGB,
		Description: req.Description,
	})
	if err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.Success(c, user)
}

// DeleteOcservUser removes a VPN user, its credential and any active session.
func (h *Handlers) DeleteOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.NoContent(c)
}

// LockOcservUser deactivates a user and drops its session.
func (h *Handlers) LockOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Lock(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.NoContent(c)
}

// UnlockOcservUser reactivates a locked user.
func (h *Handlers) UnlockOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Unlock(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.NoContent(c)
}

// DisconnectOcservUser drops the user's active VPN session.
func (h *Handlers) DisconnectOcservUser(c *gin.Context) {
	id, ok := utils.GetIDParam(c)
	if !ok {
		return
	}

	if err := h.userSvc.Disconnect(c.Request.Context(), id); err != nil {
		handleServiceError(c, err, "User")
		return
	}
	utils.NoContent(c)
}

// parseExpireDate parses an expire date in 2006-01-02 form. An empty string
// clears the expiration.
func parseExpireDate(c *gin.Context, raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(expireDateLayout, raw)
	if err != nil {
		utils.ProblemBadRequest(c, "expire_date must be formatted as YYYY-MM-DD")
		return nil, false
	}
	return &parsed, true
}
