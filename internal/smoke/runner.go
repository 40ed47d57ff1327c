package smoke

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
)

// Run executes the complete smoke run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting signup smoke run",
		logger.String("baseURL", config.BaseURL),
		logger.String("activity", config.Activity),
		logger.Int("students", config.Students),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Bool("verbose", config.Verbose))

	if config.Workers < 1 {
		config.Workers = 1
	}
	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, err
	}

	// Step 2: Snapshot the activity
	before, err := activity(ctx, client, config.Activity)
	if err != nil {
		return stats, err
	}

	// Step 3: Generate students, unless there is nothing left to fill
	requested := config.Students
	if requested < 1 {
		requested = before.SpotsLeft()
	}
	var students []string
	if requested > 0 {
		students, err = generateStudents(ctx, requested, stats)
		if err != nil {
			return stats, err
		}
	} else {
		logger.Get().Info(ctx, "activity already full; skipping signups",
			logger.Int("participants", len(before.Participants)))
	}

	// Step 4: Sign everyone up concurrently
	var accepted []string
	if len(students) > 0 {
		accepted = signupAll(ctx, config, client, students, stats)
	}
	cleaned := false
	defer func() {
		if !cleaned && len(accepted) > 0 {
			logger.Get().Warn(ctx, "removing generated students after failure", logger.Int("students", len(accepted)))
			unregisterAll(context.WithoutCancel(ctx), config, client, accepted, stats)
		}
	}()

	// Step 5: Verify the roster, capacity and duplicate rules
	filled, err := activity(ctx, client, config.Activity)
	if err != nil {
		return stats, err
	}
	if err := verifyFilled(ctx, before, filled, requested, accepted); err != nil {
		return stats, err
	}
	if err := checkOverflow(ctx, client, config.Activity, filled); err != nil {
		return stats, err
	}
	if duplicate, ok := duplicateCandidate(accepted, filled); ok {
		resp, err := client.Signup(ctx, config.Activity, duplicate)
		if err != nil {
			return stats, err
		}
		if err := verifyRejection("duplicate signup", resp, http.StatusBadRequest, detailAlreadySignedUp); err != nil {
			return stats, err
		}
	}

	// Step 6: Unregister everyone and verify the original roster is back
	unregisterAll(ctx, config, client, accepted, stats)
	cleaned = true
	if stats.UnregisterFailed > 0 {
		return stats, fmt.Errorf("%w: %d unregistrations failed", ErrVerification, stats.UnregisterFailed)
	}
	restored, err := activity(ctx, client, config.Activity)
	if err != nil {
		return stats, err
	}
	if err := verifyRestored(ctx, before, restored, accepted); err != nil {
		return stats, err
	}
	if len(accepted) > 0 {
		resp, err := client.Unregister(ctx, config.Activity, accepted[0])
		if err != nil {
			return stats, err
		}
		if err := verifyRejection("repeat unregister", resp, http.StatusNotFound, detailNotRegistered); err != nil {
			return stats, err
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// duplicateCandidate picks a registered student for the duplicate signup
// check, preferring one the run added itself.
func duplicateCandidate(accepted []string, roster model.Activity) (string, bool) { //nolint:gocritic // hugeParam: snapshot
	if len(accepted) > 0 {
		return accepted[0], true
	}
	if len(roster.Participants) > 0 {
		return roster.Participants[0], true
	}
	return "", false
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")

	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// activity fetches one activity from the listing.
func activity(ctx context.Context, client *HTTPClient, name string) (model.Activity, error) {
	activities, err := client.Activities(ctx)
	if err != nil {
		return model.Activity{}, err
	}
	a, ok := activities[name]
	if !ok {
		return model.Activity{}, fmt.Errorf("%w: %q", ErrNoActivity, name)
	}
	return a, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var acceptRate, requestsPerSecond float64

	if stats.StudentsGenerated > 0 {
		acceptRate = float64(stats.SignupsAccepted) / float64(stats.StudentsGenerated) * PercentageMultiplier
	}

	requests := stats.SignupsAccepted + stats.SignupsFull + stats.SignupsFailed + stats.Unregistered + stats.UnregisterFailed
	if stats.Duration > 0 {
		requestsPerSecond = float64(requests) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("studentsGenerated", stats.StudentsGenerated),
		logger.Int("signupsAccepted", stats.SignupsAccepted),
		logger.Int("signupsFull", stats.SignupsFull),
		logger.Int("signupsFailed", stats.SignupsFailed),
		logger.Int("unregistered", stats.Unregistered),
		logger.Int("unregisterFailed", stats.UnregisterFailed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
