package status

import (
	"net/http/httptest"
	"testing"

	apperr "github.com/rolevate/roomgo/internal/pkg/err"
	"github.com/rolevate/roomgo/internal/app/status/api"

	. "github.com/smartystreets/goconvey/convey"
)

func TestWrongPath(t *testing.T) {
	Convey("Given a HTTP request for /invalid", t, func() {
		req := httptest.NewRequest("GET", "/invalid", nil)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(&ServiceData{}).ServeHTTP(resp, req)

			Convey("Then the response should be a 404", func() {
				So(resp.Code, ShouldEqual, 404)
			})
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given a status request", t, func() {
		data := &ServiceData{StatusProvider: &providerFake{
			res: &api.SessionStatus{Local: api.LocalStatus{RoomName: "r1", Status: "ACTIVE", Used: true},
				Reconciled: true}}}
		req := httptest.NewRequest("GET", "/session/r1/status", nil)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the status pair is returned", func() {
				So(resp.Code, ShouldEqual, 200)
				So(resp.Body.String(), ShouldContainSubstring, `"local":`)
				So(resp.Body.String(), ShouldContainSubstring, `"roomName":"r1"`)
				So(resp.Body.String(), ShouldContainSubstring, `"used":true`)
				So(resp.Body.String(), ShouldContainSubstring, `"reconciled":true`)
			})
		})
	})
}

func TestStatus_NoRoom(t *testing.T) {
	Convey("Given a status request for an unknown room", t, func() {
		data := &ServiceData{StatusProvider: &providerFake{err: apperr.NotFoundf("No room r1")}}
		req := httptest.NewRequest("GET", "/session/r1/status", nil)
		resp := httptest.NewRecorder()

		Convey("When the request is handled by the Router", func() {
			NewRouter(data).ServeHTTP(resp, req)

			Convey("Then the response should be a 404", func() {
				So(resp.Code, ShouldEqual, 404)
			})
		})
	})
}
