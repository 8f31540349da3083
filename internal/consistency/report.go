package consistency

import (
	"fmt"
	"strings"
	"time"
)

type Severity string

const (
	// SeverityError marks a violated duplication invariant.
	SeverityError Severity = "error"
	// SeverityInfo marks records left behind by a non-cascading delete.
	SeverityInfo Severity = "info"
)

type Kind string

const (
	KindDuplicateID     Kind = "duplicate_id"
	KindIDListMismatch  Kind = "id_list_mismatch"
	KindDanglingID      Kind = "dangling_id"
	KindParentMismatch  Kind = "parent_mismatch"
	KindMissingFlatCopy Kind = "missing_flat_copy"
	KindDivergedCopy    Kind = "diverged_copy"
	KindNotEmbedded     Kind = "not_embedded"
	KindOrphan          Kind = "orphan"
)

// Issue is one finding of a check. Zero ids mean "not applicable".
type Issue struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	File     string   `json:"file"`
	CourseID int      `json:"courseId,omitempty"`
	ModuleID int      `json:"moduleId,omitempty"`
	LessonID int      `json:"lessonId,omitempty"`
	Message  string   `json:"message"`
}

// Report is the outcome of one consistency check.
type Report struct {
	CheckedAt time.Time `json:"checkedAt"`
	Courses   int       `json:"courses"`
	Modules   int       `json:"modules"`
	Lessons   int       `json:"lessons"`
	Issues    []Issue   `json:"issues"`
}

// Errors counts the issues of SeverityError.
func (r *Report) Errors() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Consistent reports whether no invariant is violated. Orphans do not count.
func (r *Report) Consistent() bool {
	return r.Errors() == 0
}

func (r *Report) add(issue Issue) {
	r.Issues = append(r.Issues, issue)
}

// Summary renders the report for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "checked %d courses, %d modules, %d lessons at %s\n",
		r.Courses, r.Modules, r.Lessons, r.CheckedAt.Format(time.RFC3339))
	if len(r.Issues) == 0 {
		b.WriteString("no issues found\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d issues (%d errors)\n", len(r.Issues), r.Errors())
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  [%s] %s %s: %s\n", issue.Severity, issue.Kind, issue.File, issue.Message)
	}
	return b.String()
}

// RepairResult lists what Repair changed.
type RepairResult struct {
	CoursesFixed      int      `json:"coursesFixed"`
	ModulesRestored   int      `json:"modulesRestored"`
	ModulesUpdated    int      `json:"modulesUpdated"`
	LessonsRestored   int      `json:"lessonsRestored"`
	LessonsUpdated    int      `json:"lessonsUpdated"`
	ModulesRemoved    int      `json:"modulesRemoved"`
	LessonsRemoved    int      `json:"lessonsRemoved"`
	DuplicatesRemoved int      `json:"duplicatesRemoved"`
	FilesWritten      []string `json:"filesWritten"`
	Backup            string   `json:"backup,omitempty"`
}

// Changed reports whether any file was rewritten.
func (r *RepairResult) Changed() bool {
	return len(r.FilesWritten) > 0
}

func (r *RepairResult) Summary() string {
	if !r.Changed() {
		return "nothing to repair\n"
	}
	return fmt.Sprintf("rewrote %s: %d courses fixed, %d modules restored, %d modules updated, "+
		"%d modules removed, %d lessons restored, %d lessons updated, %d lessons removed, "+
		"%d duplicates removed\n",
		strings.Join(r.FilesWritten, ", "), r.CoursesFixed, r.ModulesRestored, r.ModulesUpdated,
		r.ModulesRemoved, r.LessonsRestored, r.LessonsUpdated, r.LessonsRemoved, r.DuplicatesRemoved)
}
