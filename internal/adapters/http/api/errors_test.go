package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	service "github.com/channxy/ai-credit-assessment/internal/app"

	"github.com/channxy/ai-credit-assessment/internal/domain/scoring"
	"github.com/channxy/ai-credit-assessment/internal/domain/simulation"
	"github.com/channxy/ai-credit-assessment/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestErrors(t *testing.T) {
	Convey("Given API error helpers", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("When wrapping with a kind", func() {
			err := WrapKind("api.assess", ErrBadRequest, cause)

			Convey("Then both the kind and the cause match", func() {
				So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.assess: unexpected EOF")
			})
		})

		Convey("When creating a bare kind", func() {
			err := NewKind("api.history", ErrBadRequest)
			So(err.Error(), ShouldEqual, "api.history: bad request")
			status, code := statusFor(err)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(code, ShouldEqual, "bad_request")
		})

		Convey("When wrapping a domain error", func() {
			err := Wrap("api.simulate", simulation.ErrInsufficientFunds)
			status, code := statusFor(err)
			So(status, ShouldEqual, http.StatusUnprocessableEntity)
			So(code, ShouldEqual, "insufficient_funds")
			So(Wrap("op", nil), ShouldBeNil)
		})

		Convey("When the service rejects a request", func() {
			err := Wrap("api.history", fmt.Errorf("%w: user_id is required", service.ErrInvalidRequest))
			status, code := statusFor(err)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(code, ShouldEqual, "bad_request")
		})

		Convey("When the cause is unclassified", func() {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations/u1", nil)
			fail(w, r, "api.recommendations", errors.New("pq: relation \"secret_table\" does not exist"))

			Convey("Then a generic internal error is returned without the cause", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				var body errorResponse
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body.Code, ShouldEqual, "internal_error")
				So(body.Message, ShouldEqual, "api.recommendations: internal error")
				So(body.Message, ShouldNotContainSubstring, "secret_table")
			})
		})

		Convey("When the profile error is structured", func() {
			err := Wrap("api.put_profile", &scoring.ProfileError{Field: "personal.age", Reason: "missing required field"})
			_, code := statusFor(err)
			So(code, ShouldEqual, "invalid_profile")
		})
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(422), ShouldEqual, "unprocessable")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(503), ShouldEqual, "unavailable")
		So(getErrorType(504), ShouldEqual, "timeout")
	})
}
