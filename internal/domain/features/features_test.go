package features_test

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/url"
	"strconv"
	"testing"

	"github.com/okian/homeval/internal/domain/features"
	. "github.com/smartystreets/goconvey/convey"
)

func mustSchema(names ...string) features.Schema {
	s, err := features.NewSchema(names)
	if err != nil {
		panic(err)
	}
	return s
}

func TestParseMode(t *testing.T) {
	Convey("Given mode names", t, func() {
		m, err := features.ParseMode("")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, features.ModeFreeText)

		m, err = features.ParseMode(" Bounded_Widget ")
		So(err, ShouldBeNil)
		So(m, ShouldEqual, features.ModeBoundedWidget)

		_, err = features.ParseMode("slider")
		So(errors.Is(err, features.ErrUnknownMode), ShouldBeTrue)
	})
}

func TestBoundsClamp(t *testing.T) {
	Convey("Given widget bounds", t, func() {
		b := features.Bounds{Min: 0.5, Max: 15.0, Step: 0.1}

		Convey("Then values outside the range are pinned", func() {
			So(b.Clamp(-3), ShouldEqual, 0.5)
			So(b.Clamp(99), ShouldEqual, 15.0)
		})

		Convey("And values are snapped to the step grid", func() {
			So(b.Clamp(3.04), ShouldEqual, 3.0)
			So(b.Clamp(3.06), ShouldEqual, 3.1)
		})

		Convey("And negative ranges snap correctly", func() {
			lon := features.Bounds{Min: -124.5, Max: -114.0, Step: 0.1}
			So(lon.Clamp(-118.0), ShouldEqual, -118.0)
			So(lon.Clamp(-200), ShouldEqual, -124.5)
		})

		Convey("And integer steps report zero decimals", func() {
			So(features.Bounds{Min: 100, Max: 10000, Step: 100}.Decimals(), ShouldEqual, 0)
			So(b.Decimals(), ShouldEqual, 1)
		})
	})
}

func TestDefaultFields(t *testing.T) {
	Convey("Given the default housing fields", t, func() {
		fields := features.DefaultFields()

		Convey("Then all eight inputs are present in display order", func() {
			So(features.FieldNames(fields), ShouldResemble, []string{
				"MedInc", "HouseAge", "AveRooms", "AveBedrms",
				"Population", "AveOccup", "Latitude", "Longitude",
			})
		})

		Convey("And widget defaults sit on the step grid", func() {
			for _, f := range fields {
				d := f.Default(features.ModeBoundedWidget)
				So(d, ShouldEqual, f.Bounds.Clamp(d))
			}
			So(fields[4].Default(features.ModeBoundedWidget), ShouldEqual, 1400)
			So(fields[4].Default(features.ModeFreeText), ShouldEqual, 1425)
		})
	})
}

func TestSchema(t *testing.T) {
	Convey("Given schema construction", t, func() {
		Convey("Then empty, blank and duplicate names are rejected", func() {
			_, err := features.NewSchema(nil)
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			_, err = features.NewSchema([]string{"a", " "})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			_, err = features.NewSchema([]string{"a", "a"})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("And Matches compares as a set", func() {
			s := mustSchema("b", "a")
			So(s.Matches([]string{"a", "b"}), ShouldBeNil)
			err := s.Matches([]string{"a", "c"})
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "missing [c]")
			So(err.Error(), ShouldContainSubstring, "unexpected [b]")
		})
	})
}

func TestCollectorFreeText(t *testing.T) {
	Convey("Given a free-text collector", t, func() {
		c := features.NewCollector(features.ModeFreeText, features.DefaultFields())

		Convey("When nothing was submitted", func() {
			raw := c.Defaults()

			Convey("Then every field carries its default text", func() {
				So(len(raw), ShouldEqual, 8)
				So(raw["Population"].Text, ShouldEqual, "1425")
				So(raw["Longitude"].Text, ShouldEqual, "-118.0")
				So(raw["MedInc"].Numeric, ShouldBeFalse)
			})
		})

		Convey("When text is submitted", func() {
			raw := c.Collect(features.FromValues(url.Values{"MedInc": {"abc"}}))

			Convey("Then it is kept verbatim for the builder", func() {
				So(raw["MedInc"].Text, ShouldEqual, "abc")
				So(raw["HouseAge"].Text, ShouldEqual, "20")
			})
		})
	})
}

func TestCollectorBoundedWidget(t *testing.T) {
	Convey("Given a widget collector", t, func() {
		c := features.NewCollector(features.ModeBoundedWidget, features.DefaultFields())

		Convey("When values are garbage or out of range", func() {
			raw := c.Collect(features.FromMap(map[string]string{
				"MedInc":     "lots",
				"HouseAge":   "500",
				"Population": "1234",
			}))

			Convey("Then capture still yields numbers inside the bounds", func() {
				So(raw["MedInc"].Numeric, ShouldBeTrue)
				So(raw["MedInc"].Number, ShouldEqual, 3.0)
				So(raw["HouseAge"].Number, ShouldEqual, 52)
				So(raw["Population"].Number, ShouldEqual, 1200)
				So(raw["Population"].Text, ShouldEqual, "1200")
			})
		})
	})
}

func TestBuild(t *testing.T) {
	Convey("Given the eight collected fields", t, func() {
		fields := features.DefaultFields()
		names := features.FieldNames(fields)

		Convey("When the schema order differs from the form order", func() {
			schema := mustSchema("Longitude", "Latitude", "AveOccup", "Population", "AveBedrms", "AveRooms", "HouseAge", "MedInc")
			raw := features.NewCollector(features.ModeFreeText, fields).Defaults()
			rec, err := features.Build(raw, schema)

			Convey("Then the record follows the schema", func() {
				So(err, ShouldBeNil)
				So(rec.Names(), ShouldResemble, schema.Names())
				So(rec.Row(), ShouldResemble, []float64{-118.0, 34.0, 3.0, 1425, 1.2, 5.5, 20, 3.0})
			})

			Convey("And JSON keys keep schema order", func() {
				b, err := json.Marshal(rec)
				So(err, ShouldBeNil)
				So(string(b), ShouldStartWith, `{"Longitude":-118,"Latitude":34,`)
			})
		})

		Convey("When random values, in or out of bounds, are typed", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 50; i++ {
				perm := rng.Perm(len(names))
				shuffled := make([]string, len(names))
				for j, p := range perm {
					shuffled[j] = names[p]
				}
				submitted := make(map[string]string, len(names))
				for _, n := range names {
					submitted[n] = strconv.FormatFloat(rng.NormFloat64()*1e4, 'g', -1, 64)
				}
				raw := features.NewCollector(features.ModeFreeText, fields).Collect(features.FromMap(submitted))
				rec, err := features.Build(raw, mustSchema(shuffled...))
				So(err, ShouldBeNil)
				So(rec.Names(), ShouldResemble, shuffled)
				for _, n := range shuffled {
					v, ok := rec.Value(n)
					So(ok, ShouldBeTrue)
					want, _ := strconv.ParseFloat(submitted[n], 64)
					So(v, ShouldEqual, want)
				}
			}
		})

		Convey("When any single field is not numeric", func() {
			schema := mustSchema(names...)
			for _, bad := range []string{"", "abc", "3,5", "1.2.3", "NaN", "inf"} {
				for _, n := range names {
					raw := features.NewCollector(features.ModeFreeText, fields).Collect(features.FromMap(map[string]string{n: bad}))
					rec, err := features.Build(raw, schema)
					So(errors.Is(err, features.ErrInvalidNumericInput), ShouldBeTrue)
					So(rec.Len(), ShouldEqual, 0)
				}
			}
		})

		Convey("When whitespace surrounds a number", func() {
			raw := features.NewCollector(features.ModeFreeText, fields).Collect(features.FromMap(map[string]string{"MedInc": " 4.25 "}))
			rec, err := features.Build(raw, mustSchema(names...))
			So(err, ShouldBeNil)
			v, _ := rec.Value("MedInc")
			So(v, ShouldEqual, 4.25)
		})

		Convey("When widget values are submitted in any position", func() {
			c := features.NewCollector(features.ModeBoundedWidget, fields)
			schema := mustSchema(names...)
			for _, s := range []string{"-1e9", "1e9", "x", "", "0"} {
				submitted := map[string]string{}
				for _, n := range names {
					submitted[n] = s
				}
				_, err := features.Build(c.Collect(features.FromMap(submitted)), schema)
				So(err, ShouldBeNil)
			}
		})

		Convey("When the schema names a feature the form lacks", func() {
			schema := mustSchema(append(names, "Extra")...)
			raw := features.NewCollector(features.ModeFreeText, fields).Defaults()
			_, err := features.Build(raw, schema)
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Extra")
		})

		Convey("When the form has a feature the schema lacks", func() {
			schema := mustSchema(names[1:]...)
			raw := features.NewCollector(features.ModeFreeText, fields).Defaults()
			_, err := features.Build(raw, schema)
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "MedInc")
		})
	})
}
