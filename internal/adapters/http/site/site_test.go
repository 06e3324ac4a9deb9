package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/okian/homeval/internal/adapters/artifact"
	service "github.com/okian/homeval/internal/app"
	"github.com/okian/homeval/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newService(files fstest.MapFS) *service.Service {
	store, err := artifact.New(artifact.WithBaseDir("/srv/homeval"), artifact.WithFS(files))
	if err != nil {
		panic(err)
	}
	return service.New(service.WithStore(store))
}

func fixture() fstest.MapFS {
	return fstest.MapFS{
		artifact.DefaultModelFile:  {Data: []byte(`{"kind":"constant","n_features":8,"constant":2.0,"description":"Random Forest model"}`)},
		artifact.DefaultSchemaFile: {Data: []byte(`["MedInc","HouseAge","AveRooms","AveBedrms","Population","AveOccup","Latitude","Longitude"]`)},
	}
}

func submit(mux http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSiteHandler(t *testing.T) {
	Convey("Given the page registered over a working model", t, func() {
		ctx := context.Background()
		mux := http.NewServeMux()
		So(Register(ctx, mux, newService(fixture())), ShouldBeNil)

		Convey("When opening /", func() {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			body := w.Body.String()

			Convey("Then the idle form renders", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				So(body, ShouldContainSubstring, "<title>House Price Predictor</title>")
				So(body, ShouldContainSubstring, "California House Price Predictor")
				So(body, ShouldContainSubstring, "Random Forest model (R² = N/A)")
				So(body, ShouldContainSubstring, `name="MedInc" value="3.0"`)
				So(body, ShouldContainSubstring, "Predict Price")
				So(body, ShouldNotContainSubstring, "Predicted House Value")
			})
		})

		Convey("When Predict Price is pressed", func() {
			w := submit(mux, url.Values{"MedInc": {"3.0"}})

			Convey("Then the metric shows and is carried forward", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Predicted House Value")
				So(w.Body.String(), ShouldContainSubstring, "$200,000")
				So(w.Body.String(), ShouldContainSubstring, `name="last" value="2"`)
			})
		})

		Convey("When a field is invalid after a prior prediction", func() {
			w := submit(mux, url.Values{"AveRooms": {"five"}, "last": {"1.25"}})

			Convey("Then the banner shows next to the prior result", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "Please enter VALID numerical values.")
				So(w.Body.String(), ShouldContainSubstring, "$125,000")
				So(w.Body.String(), ShouldContainSubstring, `value="five"`)
			})
		})

		Convey("When /predict is fetched with GET", func() {
			req := httptest.NewRequest(http.MethodGet, "/predict", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusSeeOther)
		})

		Convey("When an unknown path is requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/nope", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the stylesheet is requested", func() {
			req := httptest.NewRequest(http.MethodGet, "/static/style.css", http.NoBody)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
		})
	})

	Convey("Given a missing model", t, func() {
		files := fixture()
		delete(files, artifact.DefaultModelFile)
		mux := http.NewServeMux()
		So(Register(context.Background(), mux, newService(files)), ShouldBeNil)

		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		Convey("Then only the load error renders", func() {
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "Model not found at ")
			So(w.Body.String(), ShouldNotContainSubstring, "<form")
		})
	})
}

func TestSiteErrors(t *testing.T) {
	Convey("Given site error constants", t, func() {
		So(ErrTemplate.Error(), ShouldEqual, "page template failed")
		So(ErrServe.Error(), ShouldEqual, "page serve failed")
		So(ErrTemplate, ShouldNotEqual, ErrServe)
	})
}

func TestSiteHandlerWithNilMux(t *testing.T) {
	Convey("Given a nil mux", t, func() {
		So(func() { _ = Register(context.Background(), nil, nil) }, ShouldPanic)
	})
}
