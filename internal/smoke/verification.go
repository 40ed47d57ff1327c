package smoke

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
)

// Detail fragments the service is expected to return.
const (
	detailFull            = "Activity is full"
	detailAlreadySignedUp = "already signed up"
	detailNotRegistered   = "Student is not registered"
)

// verifyFilled checks the roster after the signup wave.
func verifyFilled(ctx context.Context, before, after model.Activity, requested int, accepted []string) error { //nolint:gocritic // hugeParam: snapshots
	logger.Get().Info(ctx, "verifying filled roster")

	if len(after.Participants) > after.MaxParticipants {
		return fmt.Errorf("%w: %d participants exceed capacity %d",
			ErrVerification, len(after.Participants), after.MaxParticipants)
	}

	want := min(requested, before.SpotsLeft())
	if len(accepted) != want {
		return fmt.Errorf("%w: %d signups accepted, expected %d", ErrVerification, len(accepted), want)
	}

	for _, email := range accepted {
		if !slices.Contains(after.Participants, email) {
			return fmt.Errorf("%w: accepted student %s missing from roster", ErrVerification, email)
		}
	}

	for _, email := range before.Participants {
		if !slices.Contains(after.Participants, email) {
			return fmt.Errorf("%w: existing participant %s disappeared", ErrVerification, email)
		}
	}

	logger.Get().Info(ctx, "roster verified",
		logger.Int("participants", len(after.Participants)),
		logger.Int("maxParticipants", after.MaxParticipants))
	return nil
}

// verifyRejection checks that a roster call failed with the expected status and detail.
func verifyRejection(name string, resp rosterResponse, status int, detail string) error {
	if resp.Status != status {
		return fmt.Errorf("%w: %s returned status %d, expected %d", ErrVerification, name, resp.Status, status)
	}
	if !strings.Contains(resp.Detail, detail) {
		return fmt.Errorf("%w: %s detail %q does not mention %q", ErrVerification, name, resp.Detail, detail)
	}
	return nil
}

// verifyRestored checks that every generated student is gone and the
// original roster is intact.
func verifyRestored(ctx context.Context, before, after model.Activity, removed []string) error { //nolint:gocritic // hugeParam: snapshots
	logger.Get().Info(ctx, "verifying restored roster")

	for _, email := range removed {
		if slices.Contains(after.Participants, email) {
			return fmt.Errorf("%w: student %s still registered", ErrVerification, email)
		}
	}
	if !slices.Equal(before.Participants, after.Participants) {
		return fmt.Errorf("%w: roster %v differs from original %v", ErrVerification, after.Participants, before.Participants)
	}
	return nil
}

// checkOverflow signs up one more student when the activity is full.
func checkOverflow(ctx context.Context, client *HTTPClient, activity string, roster model.Activity) error { //nolint:gocritic // hugeParam: snapshot
	if !roster.Full() {
		logger.Get().Info(ctx, "activity not full; skipping overflow check")
		return nil
	}
	resp, err := client.Signup(ctx, activity, studentEmail())
	if err != nil {
		return err
	}
	return verifyRejection("overflow signup", resp, http.StatusBadRequest, detailFull)
}
