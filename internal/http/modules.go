package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/catalog"
)

type createModuleRequest struct {
	Title string `json:"title" binding:"required,min=3,max=255"`
}

type updateModuleRequest struct {
	Title *string `json:"title" binding:"omitempty,min=3,max=255"`
}

// ModulesController serves both the global /api/modules routes and the
// routes nested under a course.
type ModulesController struct {
	store        ModuleStore
	defaultLimit int
}

func NewModulesController(store ModuleStore, defaultLimit int) *ModulesController {
	return &ModulesController{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// GET /api/modules
// GET /api/courses/:courseId/modules
func (mc *ModulesController) List(c *gin.Context) {
	courseID, ok := parseScopeParam(c, "courseId")
	if !ok {
		return
	}
	modules, err := mc.store.ListAll(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := pageParams(c, mc.defaultLimit)
	c.JSON(http.StatusOK, paginate(modules, page, limit))
}

// GET /api/modules/:moduleId
// GET /api/courses/:courseId/modules/:moduleId
func (mc *ModulesController) Get(c *gin.Context) {
	courseID, ok := parseScopeParam(c, "courseId")
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId")
	if !ok {
		return
	}
	module, err := mc.store.GetByID(c.Request.Context(), courseID, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

// POST /api/courses/:courseId/modules
func (mc *ModulesController) Create(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	var req createModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	module, err := mc.store.Create(c.Request.Context(), catalog.ModulePatch{Title: &req.Title}, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, module)
}

// PUT /api/courses/:courseId/modules/:moduleId
func (mc *ModulesController) Update(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId")
	if !ok {
		return
	}
	var req updateModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	module, err := mc.store.Update(c.Request.Context(), moduleID, catalog.ModulePatch{Title: req.Title}, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, module)
}

// DELETE /api/courses/:courseId/modules/:moduleId
func (mc *ModulesController) Delete(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	moduleID, ok := parseIDParam(c, "moduleId")
	if !ok {
		return
	}
	if err := mc.store.Delete(c.Request.Context(), courseID, moduleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
