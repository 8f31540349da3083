package entities

type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
)

// Valid reports whether t is one of the supported content kinds.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeText, ContentTypeVideo, ContentTypeAudio:
		return true
	}
	return false
}

type Content struct {
	Type ContentType `json:"type"`
	Data string      `json:"data"`
}

type Lesson struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Topics      []string  `json:"topics"`
	Content     []Content `json:"content"`
	ModuleID    int       `json:"moduleId"`
}

// Module is stored twice: in the flat modules file and embedded in its course.
type Module struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Lessons   []Lesson `json:"lessons"`
	LessonsID []int    `json:"lessonsId"`
	CourseID  int      `json:"courseId,omitempty"`
}

// Course owns its modules by value (Modules) and by reference (ModulesID).
type Course struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules"`
	ModulesID   []int    `json:"modulesId"`
}

// Normalize replaces nil collections with empty ones so records always
// serialize child arrays as [] and compare equal after a disk round trip.
func (l *Lesson) Normalize() {
	if l.Topics == nil {
		l.Topics = []string{}
	}
	if l.Content == nil {
		l.Content = []Content{}
	}
}

func (m *Module) Normalize() {
	if m.Lessons == nil {
		m.Lessons = []Lesson{}
	}
	if m.LessonsID == nil {
		m.LessonsID = []int{}
	}
	for i := range m.Lessons {
		m.Lessons[i].Normalize()
	}
}

func (c *Course) Normalize() {
	if c.Modules == nil {
		c.Modules = []Module{}
	}
	if c.ModulesID == nil {
		c.ModulesID = []int{}
	}
	for i := range c.Modules {
		c.Modules[i].Normalize()
	}
}

// Identifiable is implemented by every record kept in a flat store.
type Identifiable interface {
	GetID() int
}

func (l Lesson) GetID() int { return l.ID }
func (m Module) GetID() int { return m.ID }
func (c Course) GetID() int { return c.ID }
