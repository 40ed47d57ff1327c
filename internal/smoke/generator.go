package smoke

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/mergington/pkg/logger"
)

const emailDomain = "mergington.edu"

// generateStudents creates n unique student emails.
func generateStudents(ctx context.Context, n int, stats *Stats) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: no free spots to fill", ErrVerification)
	}

	students := make([]string, n)
	for i := range students {
		students[i] = studentEmail()
	}

	stats.StudentsGenerated = n
	logger.Get().Info(ctx, "generated students", logger.Int("count", n))
	return students, nil
}

// studentEmail returns an address that cannot collide with seeded students.
func studentEmail() string {
	return "smoke-" + uuid.NewString() + "@" + emailDomain
}
