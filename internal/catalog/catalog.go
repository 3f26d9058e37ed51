// Package catalog holds the built-in course catalog: lesson tracks and the
// quiz tracks that gate on them.
package catalog

import (
	"fmt"
	"slices"

	"github.com/abhisek/edulearn/internal/progress"
	"github.com/abhisek/edulearn/internal/quiz"
	"github.com/abhisek/edulearn/internal/unlock"
)

// Card is one titled block of lesson content.
type Card struct {
	Title string
	Body  string
}

// Lesson is a single lesson unit.
type Lesson struct {
	Title  string
	Desc   string
	Module string // set when flattened
	Cards  []Card
}

// Module groups lessons within a course.
type Module struct {
	Name    string
	Lessons []Lesson
}

// Course is a lesson track.
type Course struct {
	ID      string
	Title   string
	Modules []Module
}

// FlatLessons returns the course lessons in order with Module filled in.
// Lesson indices in progress keys refer to positions in this slice.
func (c Course) FlatLessons() []Lesson {
	var out []Lesson
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			l.Module = m.Name
			out = append(out, l)
		}
	}
	return out
}

// LessonCount returns the number of lessons across all modules.
func (c Course) LessonCount() int {
	n := 0
	for _, m := range c.Modules {
		n += len(m.Lessons)
	}
	return n
}

// QuizDef is a quiz in a quiz track.
type QuizDef struct {
	Title     string
	Module    string
	Duration  string
	Questions []quiz.Question
}

// QuizTrack is the ordered list of quizzes for a course.
type QuizTrack struct {
	ID      string // matches the lesson Course.ID
	Title   string
	Quizzes []QuizDef
}

// catalogData holds the seeded catalog with indices.
type catalogData struct {
	courses []Course
	tracks  []QuizTrack
	byID    map[string]int
	trackOf map[string]int
}

// c is the package-level catalog, set by init() in seed.go.
var c *catalogData

func build(courses []Course, tracks []QuizTrack) *catalogData {
	cd := &catalogData{
		courses: courses,
		tracks:  tracks,
		byID:    make(map[string]int, len(courses)),
		trackOf: make(map[string]int, len(tracks)),
	}
	for i, course := range courses {
		cd.byID[course.ID] = i
	}
	for i, t := range tracks {
		cd.trackOf[t.ID] = i
	}
	return cd
}

// Courses returns every lesson track in display order.
func Courses() []Course {
	return slices.Clone(c.courses)
}

// CourseAt returns the course at position i, clamped into range.
func CourseAt(i int) Course {
	if i < 0 {
		i = 0
	}
	if i >= len(c.courses) {
		i = len(c.courses) - 1
	}
	return c.courses[i]
}

// GetCourse returns a course by ID.
func GetCourse(id string) (Course, error) {
	i, ok := c.byID[id]
	if !ok {
		return Course{}, fmt.Errorf("course not found: %q", id)
	}
	return c.courses[i], nil
}

// QuizTracks returns every quiz track in display order.
func QuizTracks() []QuizTrack {
	return slices.Clone(c.tracks)
}

// TotalLessons counts lessons across the whole catalog.
func TotalLessons() int {
	n := 0
	for _, course := range c.courses {
		n += course.LessonCount()
	}
	return n
}

// QuizzesFor returns the track's quizzes ready for a quiz session, keyed
// "{courseId}:{index}".
func QuizzesFor(t QuizTrack) []quiz.Quiz {
	out := make([]quiz.Quiz, len(t.Quizzes))
	for i, def := range t.Quizzes {
		out[i] = quiz.Quiz{
			Key:          progress.Key(t.ID, i),
			CourseID:     t.ID,
			Index:        i,
			Title:        def.Title,
			LessonTitle:  def.Module,
			PassingScore: quiz.DefaultPassingScore,
			Questions:    slices.Clone(def.Questions),
		}
	}
	return out
}

// AllQuizzes returns every catalog quiz across all tracks.
func AllQuizzes() []quiz.Quiz {
	var out []quiz.Quiz
	for _, t := range c.tracks {
		out = append(out, QuizzesFor(t)...)
	}
	return out
}

// PolicyFor returns the lesson-count gate for a quiz track. The lesson
// total comes from the lesson course with the same ID.
func PolicyFor(t QuizTrack) unlock.Policy {
	units := 0
	if i, ok := c.byID[t.ID]; ok {
		units = c.courses[i].LessonCount()
	}
	return unlock.Policy{
		Mode:       unlock.GateByLessons,
		CourseID:   t.ID,
		TotalUnits: units,
		TotalGates: len(t.Quizzes),
	}
}
