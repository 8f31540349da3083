package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/coursecatalog/internal/catalog"
	"github.com/mrlokans/coursecatalog/internal/entities"
)

type contentRequest struct {
	Type string `json:"type" binding:"required,oneof=text video audio"`
	Data string `json:"data" binding:"required"`
}

type createLessonRequest struct {
	Title       string           `json:"title" binding:"required,min=5,max=100"`
	Description string           `json:"description" binding:"required,min=10,max=500"`
	Topics      []string         `json:"topics" binding:"required"`
	Content     []contentRequest `json:"content" binding:"required,dive"`
}

type updateLessonRequest struct {
	Title       *string          `json:"title" binding:"omitempty,min=5,max=100"`
	Description *string          `json:"description" binding:"omitempty,min=10,max=500"`
	Topics      []string         `json:"topics"`
	Content     []contentRequest `json:"content" binding:"omitempty,dive"`
}

func toContent(in []contentRequest) []entities.Content {
	if in == nil {
		return nil
	}
	out := make([]entities.Content, len(in))
	for i, c := range in {
		out[i] = entities.Content{Type: entities.ContentType(c.Type), Data: c.Data}
	}
	return out
}

// LessonsController serves the global /api/lessons routes and the routes
// nested under a course module.
type LessonsController struct {
	store        LessonStore
	defaultLimit int
}

func NewLessonsController(store LessonStore, defaultLimit int) *LessonsController {
	return &LessonsController{
		store:        store,
		defaultLimit: defaultLimit,
	}
}

// scope parses the optional course and module ids of the nested routes.
func scope(c *gin.Context) (courseID, moduleID int, ok bool) {
	if courseID, ok = parseScopeParam(c, "courseId"); !ok {
		return 0, 0, false
	}
	if moduleID, ok = parseScopeParam(c, "moduleId"); !ok {
		return 0, 0, false
	}
	return courseID, moduleID, true
}

// GET /api/lessons
// GET /api/courses/:courseId/modules/:moduleId/lessons
func (lc *LessonsController) List(c *gin.Context) {
	courseID, moduleID, ok := scope(c)
	if !ok {
		return
	}
	lessons, err := lc.store.ListAll(c.Request.Context(), moduleID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	page, limit := pageParams(c, lc.defaultLimit)
	c.JSON(http.StatusOK, paginate(lessons, page, limit))
}

// GET /api/lessons/:lessonId
// GET /api/courses/:courseId/modules/:moduleId/lessons/:lessonId
func (lc *LessonsController) Get(c *gin.Context) {
	courseID, moduleID, ok := scope(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}
	lesson, err := lc.store.GetByID(c.Request.Context(), lessonID, moduleID, courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// POST /api/courses/:courseId/modules/:moduleId/lessons
func (lc *LessonsController) Create(c *gin.Context) {
	courseID, moduleID, ok := scope(c)
	if !ok {
		return
	}
	var req createLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := lc.store.Create(c.Request.Context(), catalog.LessonPatch{
		Title:       &req.Title,
		Description: &req.Description,
		Topics:      req.Topics,
		Content:     toContent(req.Content),
	}, courseID, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

// PUT /api/courses/:courseId/modules/:moduleId/lessons/:lessonId
func (lc *LessonsController) Update(c *gin.Context) {
	courseID, moduleID, ok := scope(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}
	var req updateLessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := lc.store.Update(c.Request.Context(), catalog.LessonPatch{
		Title:       req.Title,
		Description: req.Description,
		Topics:      req.Topics,
		Content:     toContent(req.Content),
	}, lessonID, courseID, moduleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// DELETE /api/courses/:courseId/modules/:moduleId/lessons/:lessonId
func (lc *LessonsController) Delete(c *gin.Context) {
	courseID, moduleID, ok := scope(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lessonId")
	if !ok {
		return
	}
	if err := lc.store.Delete(c.Request.Context(), lessonID, courseID, moduleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
