package catalogue_test

import (
	"errors"
	"testing"

	"github.com/okian/mergington/internal/domain/catalogue"
	"github.com/okian/mergington/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the built-in catalogue", t, func() {
		activities := catalogue.Default()

		Convey("Then it should contain the seeded activities", func() {
			So(activities, ShouldContainKey, "Chess Club")
			So(activities, ShouldContainKey, "Programming Class")
			So(activities, ShouldContainKey, "Gym Class")
			So(len(activities), ShouldEqual, 9)
		})

		Convey("And it should pass validation", func() {
			So(catalogue.Validate(activities), ShouldBeNil)
		})

		Convey("And every call should return an independent copy", func() {
			chess := activities["Chess Club"]
			chess.Participants[0] = "changed@mergington.edu"
			So(catalogue.Default()["Chess Club"].Participants[0], ShouldEqual, "michael@mergington.edu")
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given catalogue validation", t, func() {
		Convey("When the catalogue is empty", func() {
			err := catalogue.Validate(map[string]model.Activity{})
			So(errors.Is(err, catalogue.ErrEmpty), ShouldBeTrue)
		})

		Convey("When an activity has no capacity", func() {
			err := catalogue.Validate(map[string]model.Activity{"Zero Club": {MaxParticipants: 0}})
			So(errors.Is(err, catalogue.ErrInvalidActivity), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "max_participants must be positive")
		})

		Convey("When seed participants exceed capacity", func() {
			err := catalogue.Validate(map[string]model.Activity{
				"Tiny Club": {MaxParticipants: 1, Participants: []string{"a@mergington.edu", "b@mergington.edu"}},
			})
			So(errors.Is(err, catalogue.ErrInvalidActivity), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "exceed capacity")
		})

		Convey("When a participant is listed twice", func() {
			err := catalogue.Validate(map[string]model.Activity{
				"Echo Club": {MaxParticipants: 5, Participants: []string{"a@mergington.edu", "a@mergington.edu"}},
			})
			So(errors.Is(err, catalogue.ErrInvalidActivity), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "duplicate participant")
		})

		Convey("When an activity name is blank", func() {
			err := catalogue.Validate(map[string]model.Activity{" ": {MaxParticipants: 5}})
			So(errors.Is(err, catalogue.ErrInvalidActivity), ShouldBeTrue)
		})
	})
}
