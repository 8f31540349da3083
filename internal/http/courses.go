package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/catalog"
)

type createCourseRequest struct {
	Title       string `json:"title" binding:"required,min=5,max=100"`
	Description string `json:"description" binding:"required,min=10,max=500"`
}

type updateCourseRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=5,max=100"`
	Description *string `json:"description" binding:"omitempty,min=10,max=500"`
}

type CoursesController struct {
	store        CourseStore
	defaultLimit int
}

func NewCoursesController(store CourseStore, defaultLimit int) *CoursesController {
	return &CoursesController{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// GET /api/courses
func (cc *CoursesController) List(c *gin.Context) {
	courses, err := cc.store.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := pageParams(c, cc.defaultLimit)
	c.JSON(http.StatusOK, paginate(courses, page, limit))
}

// GET /api/courses/:courseId
func (cc *CoursesController) Get(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	course, err := cc.store.GetByID(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// POST /api/courses
func (cc *CoursesController) Create(c *gin.Context) {
	var req createCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := cc.store.Create(c.Request.Context(), catalog.CoursePatch{
		Title:       &req.Title,
		Description: &req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// PUT /api/courses/:courseId
func (cc *CoursesController) Update(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	var req updateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := cc.store.Update(c.Request.Context(), courseID, catalog.CoursePatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// DELETE /api/courses/:courseId
func (cc *CoursesController) Delete(c *gin.Context) {
	courseID, ok := parseIDParam(c, "courseId")
	if !ok {
		return
	}
	if err := cc.store.Delete(c.Request.Context(), courseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
