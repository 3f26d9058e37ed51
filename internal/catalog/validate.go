package catalog

import (
	"fmt"
	"strings"
)

// validate checks structural rules on the catalog and returns every
// problem found.
func validate(courses []Course, tracks []QuizTrack) error {
	var errs []string

	ids := make(map[string]bool, len(courses))
	for _, course := range courses {
		if course.ID == "" {
			errs = append(errs, fmt.Sprintf("course %q has no ID", course.Title))
		}
		if strings.Contains(course.ID, ":") {
			errs = append(errs, fmt.Sprintf("course ID %q must not contain ':'", course.ID))
		}
		if ids[course.ID] {
			errs = append(errs, fmt.Sprintf("duplicate course ID: %q", course.ID))
		}
		ids[course.ID] = true
		if course.LessonCount() == 0 {
			errs = append(errs, fmt.Sprintf("course %q has no lessons", course.ID))
		}
	}

	trackIDs := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if trackIDs[t.ID] {
			errs = append(errs, fmt.Sprintf("duplicate quiz track ID: %q", t.ID))
		}
		trackIDs[t.ID] = true
		if !ids[t.ID] {
			errs = append(errs, fmt.Sprintf("quiz track %q has no matching course", t.ID))
		}
		if len(t.Quizzes) == 0 {
			errs = append(errs, fmt.Sprintf("quiz track %q has no quizzes", t.ID))
		}
		for i, def := range t.Quizzes {
			if len(def.Questions) == 0 {
				errs = append(errs, fmt.Sprintf("quiz %s:%d has no questions", t.ID, i))
			}
			for j, q := range def.Questions {
				if err := q.Validate(); err != nil {
					errs = append(errs, fmt.Sprintf("quiz %s:%d question %d: %v", t.ID, i, j, err))
				}
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
