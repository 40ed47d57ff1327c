package model_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/mergington/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestActivity(t *testing.T) {
	convey.Convey("Given an activity with two participants", t, func() {
		a := model.Activity{
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 3,
			Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
		}

		convey.Convey("Then membership and capacity helpers should agree", func() {
			convey.So(a.HasParticipant("michael@mergington.edu"), convey.ShouldBeTrue)
			convey.So(a.HasParticipant("nobody@mergington.edu"), convey.ShouldBeFalse)
			convey.So(a.Full(), convey.ShouldBeFalse)
			convey.So(a.SpotsLeft(), convey.ShouldEqual, 1)
		})

		convey.Convey("When the roster reaches capacity", func() {
			a.Participants = append(a.Participants, "emma@mergington.edu")

			convey.Convey("Then it should be full with no spots left", func() {
				convey.So(a.Full(), convey.ShouldBeTrue)
				convey.So(a.SpotsLeft(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When cloning", func() {
			c := a.Clone()
			c.Participants[0] = "changed@mergington.edu"

			convey.Convey("Then the original roster should be untouched", func() {
				convey.So(a.Participants[0], convey.ShouldEqual, "michael@mergington.edu")
			})
		})
	})

	convey.Convey("Given an activity without participants", t, func() {
		a := model.Activity{MaxParticipants: 5}

		convey.Convey("When encoding a clone as JSON", func() {
			raw, err := json.Marshal(a.Clone())

			convey.Convey("Then participants should be an empty array", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(raw), convey.ShouldContainSubstring, `"participants":[]`)
				convey.So(string(raw), convey.ShouldContainSubstring, `"max_participants":5`)
			})
		})
	})
}
