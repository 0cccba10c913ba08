package staging

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDecodePayload(t *testing.T) {
	Convey("Given staged payload JSON", t, func() {
		Convey("When the payload is well-formed", func() {
			p := decodePayload(`{"Date":"2024-03-05","Full Name":"Ana Reyes","Kiosk Name":null}`)

			Convey("Then string values should survive and nulls should read as absent", func() {
				So(p, ShouldNotBeNil)
				So(p["Date"], ShouldEqual, "2024-03-05")
				So(p["Full Name"], ShouldEqual, "Ana Reyes")
				_, ok := p["Kiosk Name"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the payload carries non-string values", func() {
			p := decodePayload(`{"Date":"2024-03-05","Duration":28800}`)

			Convey("Then only string values should be kept", func() {
				So(p["Date"], ShouldEqual, "2024-03-05")
				_, ok := p["Duration"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the payload is not valid JSON", func() {
			Convey("Then it should read as a missing payload", func() {
				So(decodePayload(`{"Date":`), ShouldBeNil)
			})
		})

		Convey("When the payload is the JSON null literal", func() {
			Convey("Then it should read as a missing payload, not an empty one", func() {
				So(decodePayload(`null`), ShouldBeNil)
			})
		})
	})
}
