package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ocserv-tools/ocserv-panel/internal/models"
	"github.com/ocserv-tools/ocserv-panel/internal/utils"
)

// GroupRequest is the payload for creating or updating a group.
type GroupRequest struct {
	Name   string           `json:"name"`
	Config models.ConfigMap `json:"config"`
}

// ListGroups returns a page of ocserv groups.
func (h *Handlers) ListGroups(c *gin.Context) {
	col := utils.QueryCollection[models.OcservGroup]{
		DB:         h.db,
		Query:      "SELECT * FROM ocserv_groups ORDER BY name ASC",
		CountQuery: "SELECT COUNT(*) FROM ocserv_groups",
	}

	result, err := utils.Paginate[models.OcservGroup](c.Request.Context(), col, utils.PageRequestFromQuery(c), nil)
	if err != nil {
		utils.HandleDBError(c, err, "Group")
		return
	}
	utils.Paginated(c, result)
}

// ListGroupNames returns all group names for selection lists.
func (h *Handlers) ListGroupNames(c *gin.Context) {
	names, err := h.groupSvc.ListNames(c.Request.Context())
	if err != nil {
		handleServiceError(c, err, "Group")
		return
	}
	utils.Success(c, names)
}

// GetGroup returns a single group by name.
func (h *Handlers) GetGroup(c *gin.Context) {
	name, ok := utils.GetNameParam(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Get(c.Request.Context(), name)
	if err != nil {
		handleServiceError(c, err, "Group")
		return
	}
	utils.Success(c, group)
}

// CreateGroup registers a group and writes its ocserv config file.
func (h *Handlers) CreateGroup(c *gin.Context) {
	var req GroupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), req.Name, req.Config)
	if err != nil {
		handleServiceError(c, err, "Group")
		return
	}
	utils.Created(c, group)
}

// UpdateGroup replaces a group's configuration.
func (h *Handlers) UpdateGroup(c *gin.Context) {
	name, ok := utils.GetNameParam(c)
	if !ok {
		return
	}

	var req GroupRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), name, req.Config)
	if err != nil {
		handleServiceError(c, err, "Group")
		return
	}
	utils.Success(c, group)
}

// GroupDefaultsRequest is the payload for rewriting the defaults group file.
type GroupDefaultsRequest struct {
	Config models.ConfigMap `json:"config" binding:"required"`
}

// UpdateGroupDefaults rewrites the defaults file applied to users without
// a group and reloads ocserv.
func (h *Handlers) UpdateGroupDefaults(c *gin.Context) {
	var req GroupDefaultsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.groupSvc.WriteDefaults(c.Request.Context(), req.Config); err != nil {
		handleServiceError(c, err, "Group defaults")
		return
	}
	utils.Success(c, gin.H{"config": req.Config})
}

// DeleteGroup removes a group and its config file.
func (h *Handlers) DeleteGroup(c *gin.Context) {
	name, ok := utils.GetNameParam(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), name); err != nil {
		handleServiceError(c, err, "Group")
		return
	}
	utils.NoContent(c)
}
