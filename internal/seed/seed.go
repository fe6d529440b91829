// Package seed loads the demo course catalogue.
package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/unistud/internal/app/models"
	appRepos "github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/apperrors"
)

// DefaultCourses is the demo catalogue. MaxCapacity 0 is unlimited.
var DefaultCourses = []appModels.Course{
	{Title: "Algorithms", MaxCapacity: 2},
	{Title: "Databases", MaxCapacity: 30},
	{Title: "Open Seminar", MaxCapacity: 0},
}

// CreateDefaultData creates the demo courses whose titles do not exist yet.
// It keeps going after a failure and returns every error it collected.
func CreateDefaultData(ctx context.Context, courses appRepos.CourseStore, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default courses...")
	var finalErr error
	created := 0

	for _, def := range DefaultCourses {
		exists, err := courses.TitleExists(ctx, def.Title, 0)
		if err != nil {
			lgr.Error().Err(err).Str("title", def.Title).Msg("Error checking course title")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if exists {
			continue
		}

		course := def
		if err := courses.Create(ctx, &course); err != nil {
			// another instance seeding concurrently
			if errors.Is(err, apperrors.ErrCourseTitleExists) {
				continue
			}
			lgr.Error().Err(err).Str("title", def.Title).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		created++
		lgr.Debug().Int64("courseID", course.ID).Str("title", course.Title).Msg("Default course created")
	}

	lgr.Info().Int("created", created).Msg("Default data check/creation finished.")
	return finalErr
}
