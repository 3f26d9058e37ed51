// Package lesson tracks a learner's position and completion within the
// lesson tracks of the catalog.
package lesson

import (
	"context"

	"github.com/abhisek/edulearn/internal/catalog"
	"github.com/abhisek/edulearn/internal/progress"
)

// Tracker moves through lessons and records completion. Navigation and
// completion are separate: Next never marks a lesson complete and
// MarkComplete never moves.
type Tracker struct {
	store   *progress.Store
	key     string
	courses []catalog.Course
}

// NewTracker creates a Tracker persisting to key in store.
func NewTracker(store *progress.Store, key string, courses []catalog.Course) *Tracker {
	if key == "" {
		key = progress.LessonsKey
	}
	return &Tracker{store: store, key: key, courses: courses}
}

// Position is the selected course and lesson.
type Position struct {
	CourseIndex int
	LessonIndex int
	Course      catalog.Course
	Lesson      catalog.Lesson
	Lessons     []catalog.Lesson
}

// Current returns the saved position, clamped to the catalog.
func (t *Tracker) Current(ctx context.Context) Position {
	rec := t.store.Load(ctx, t.key)
	return t.position(rec)
}

func (t *Tracker) position(rec progress.Record) Position {
	ci := clamp(rec.CourseIndex, len(t.courses))
	course := t.courses[ci]
	lessons := course.FlatLessons()
	li := clamp(rec.CurrentIndex, len(lessons))
	p := Position{CourseIndex: ci, LessonIndex: li, Course: course, Lessons: lessons}
	if len(lessons) > 0 {
		p.Lesson = lessons[li]
	}
	return p
}

// Select switches to course i and starts at its first lesson.
func (t *Tracker) Select(ctx context.Context, i int) Position {
	rec := t.store.Load(ctx, t.key)
	rec.CourseIndex = clamp(i, len(t.courses))
	rec.CurrentIndex = 0
	t.store.Save(ctx, t.key, rec)
	return t.position(rec)
}

// Goto moves to lesson i in the selected course, clamped into range.
func (t *Tracker) Goto(ctx context.Context, i int) Position {
	rec := t.store.Load(ctx, t.key)
	cur := t.position(rec)
	rec.CurrentIndex = clamp(i, len(cur.Lessons))
	rec.CourseIndex = cur.CourseIndex
	t.store.Save(ctx, t.key, rec)
	return t.position(rec)
}

// Next moves forward one lesson.
func (t *Tracker) Next(ctx context.Context) Position {
	return t.Goto(ctx, t.Current(ctx).LessonIndex+1)
}

// Prev moves back one lesson.
func (t *Tracker) Prev(ctx context.Context) Position {
	return t.Goto(ctx, t.Current(ctx).LessonIndex-1)
}

// MarkComplete marks the current lesson complete and persists.
func (t *Tracker) MarkComplete(ctx context.Context) Position {
	rec := t.store.Load(ctx, t.key)
	cur := t.position(rec)
	rec.MarkCompleted(progress.Key(cur.Course.ID, cur.LessonIndex))
	t.store.Save(ctx, t.key, rec)
	return cur
}

// IsCompleted reports whether lesson i of the selected course is done.
func (t *Tracker) IsCompleted(ctx context.Context, i int) bool {
	rec := t.store.Load(ctx, t.key)
	return rec.IsCompleted(progress.Key(t.position(rec).Course.ID, i))
}

// Percent returns the completion percentage of the selected course.
func (t *Tracker) Percent(ctx context.Context) int {
	rec := t.store.Load(ctx, t.key)
	return CoursePercent(rec, t.position(rec).Course)
}

// Upcoming returns up to n lessons after the current one.
func (t *Tracker) Upcoming(ctx context.Context, n int) []catalog.Lesson {
	cur := t.Current(ctx)
	start := cur.LessonIndex + 1
	if start >= len(cur.Lessons) || n <= 0 {
		return nil
	}
	end := min(start+n, len(cur.Lessons))
	return cur.Lessons[start:end]
}

// Record returns the raw lesson progress record.
func (t *Tracker) Record(ctx context.Context) progress.Record {
	return t.store.Load(ctx, t.key)
}

// CoursePercent returns round(100*completed/total) for course, counting
// only keys that belong to course.
func CoursePercent(rec progress.Record, course catalog.Course) int {
	return progress.Percent(rec.CompletedWithPrefix(course.ID), course.LessonCount())
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
