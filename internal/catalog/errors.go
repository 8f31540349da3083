package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/mrlokans/coursecatalog/internal/jsonstore"
)

var (
	// ErrNotFound matches every *NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")
	// ErrStorage matches every *StorageError via errors.Is.
	ErrStorage = errors.New("storage failure")
)

// ScopeGlobalModules is the NotFoundError scope used when a module embedded
// in its course has no flat copy. The course has already been written when
// this error is returned.
const ScopeGlobalModules = "global modules"

// ScopeGlobalLessons is the NotFoundError scope used when a lesson is missing
// from the flat lessons file during an update.
const ScopeGlobalLessons = "global lessons"

// StatusCoder is implemented by errors that carry an HTTP-like status.
type StatusCoder interface {
	StatusCode() int
}

// NotFoundError reports an id missing from a collection. Scope names the
// collection that was searched when it is not the obvious one, e.g.
// "course ID [3]" or "global modules".
type NotFoundError struct {
	Resource string
	ID       int
	Scope    string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s ID [%d] not found", e.Resource, e.ID)
	if e.Scope != "" {
		msg += " in " + e.Scope
	}
	return msg
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// StorageError reports a failed read or write of one of the collection files.
type StorageError struct {
	File string
	Op   jsonstore.Op
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("could not %s %s: %v", e.Op, e.File, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func (e *StorageError) StatusCode() int { return http.StatusInternalServerError }

func courseNotFound(id int) error {
	return &NotFoundError{Resource: "Course", ID: id}
}

func moduleNotFound(id int) error {
	return &NotFoundError{Resource: "Module", ID: id}
}

func moduleNotInCourse(moduleID, courseID int) error {
	return &NotFoundError{Resource: "Module", ID: moduleID, Scope: fmt.Sprintf("course ID [%d]", courseID)}
}

func moduleNotInGlobal(moduleID int) error {
	return &NotFoundError{Resource: "Module", ID: moduleID, Scope: ScopeGlobalModules}
}

func lessonNotFound(id int) error {
	return &NotFoundError{Resource: "Lesson", ID: id}
}

func lessonNotInModule(lessonID, moduleID int) error {
	return &NotFoundError{Resource: "Lesson", ID: lessonID, Scope: fmt.Sprintf("module ID [%d]", moduleID)}
}

func lessonNotInGlobal(lessonID int) error {
	return &NotFoundError{Resource: "Lesson", ID: lessonID, Scope: ScopeGlobalLessons}
}

// asStorageError converts a jsonstore failure into a *StorageError.
func asStorageError(err error) error {
	var fileErr *jsonstore.Error
	if errors.As(err, &fileErr) {
		return &StorageError{File: filepath.Base(fileErr.Path), Op: fileErr.Op, Err: fileErr.Err}
	}
	return err
}
