package artifact_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/okian/homeval/internal/adapters/artifact"
	"github.com/okian/homeval/internal/domain/estimator"
	"github.com/okian/homeval/internal/domain/features"
	"github.com/okian/homeval/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const (
	modelDoc  = `{"kind":"constant","n_features":8,"constant":2.0,"description":"Random Forest model"}`
	schemaDoc = `["MedInc","HouseAge","AveRooms","AveBedrms","Population","AveOccup","Latitude","Longitude"]`
)

// countingFS counts every file opened through it.
type countingFS struct {
	fs.FS
	opens atomic.Int64
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens.Add(1)
	return c.FS.Open(name)
}

func fixture() fstest.MapFS {
	return fstest.MapFS{
		artifact.DefaultModelFile:  {Data: []byte(modelDoc)},
		artifact.DefaultSchemaFile: {Data: []byte(schemaDoc)},
		artifact.DefaultMetricFile: {Data: []byte(" 0.8123\n")},
	}
}

func newStore(fsys fs.FS, opts ...artifact.Option) *artifact.Store {
	opts = append([]artifact.Option{artifact.WithBaseDir("/srv/homeval"), artifact.WithFS(fsys)}, opts...)
	s, err := artifact.New(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func TestStoreLoad(t *testing.T) {
	Convey("Given a complete artifact directory", t, func() {
		ctx := context.Background()
		store := newStore(fixture(), artifact.WithExpectedFeatures(features.FieldNames(features.DefaultFields())))

		Convey("When loading", func() {
			b, err := store.Load(ctx)

			Convey("Then the bundle carries the model, schema and label", func() {
				So(err, ShouldBeNil)
				So(b.Estimator.Describe(), ShouldEqual, "Random Forest model")
				So(b.Schema.Len(), ShouldEqual, 8)
				So(b.Schema.Names()[0], ShouldEqual, "MedInc")
				So(b.Accuracy, ShouldEqual, "0.8123")
				So(b.Dir, ShouldEqual, filepath.Join("/srv/homeval", "notebooks", "models"))
			})
		})
	})
}

func TestStoreMemoizes(t *testing.T) {
	Convey("Given a store over a counting filesystem", t, func() {
		ctx := context.Background()
		cfs := &countingFS{FS: fixture()}
		store := newStore(cfs)

		Convey("When Load is called twice", func() {
			first, err := store.Load(ctx)
			So(err, ShouldBeNil)
			opensAfterFirst := cfs.opens.Load()
			second, err := store.Load(ctx)
			So(err, ShouldBeNil)

			Convey("Then the same bundle is returned without touching disk", func() {
				So(second, ShouldPointTo, first)
				So(cfs.opens.Load(), ShouldEqual, opensAfterFirst)
				So(store.Loads(), ShouldEqual, 1)
			})

			Convey("And Reset forces a fresh read", func() {
				store.Reset()
				third, err := store.Load(ctx)
				So(err, ShouldBeNil)
				So(third, ShouldNotPointTo, first)
				So(store.Loads(), ShouldEqual, 2)
			})
		})

		Convey("When many callers race on the first load", func() {
			var wg sync.WaitGroup
			bundles := make([]*artifact.Bundle, 16)
			for i := range bundles {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					bundles[i], _ = store.Load(ctx)
				}(i)
			}
			wg.Wait()

			Convey("Then only one read happens", func() {
				So(store.Loads(), ShouldEqual, 1)
				for _, b := range bundles {
					So(b, ShouldPointTo, bundles[0])
				}
			})
		})
	})
}

func TestStoreMissingModel(t *testing.T) {
	Convey("Given a directory without the estimator", t, func() {
		fsys := fixture()
		delete(fsys, artifact.DefaultModelFile)
		store := newStore(fsys)

		Convey("Then Load fails with a missing-artifact error naming the path", func() {
			b, err := store.Load(context.Background())
			So(b, ShouldBeNil)
			So(errors.Is(err, artifact.ErrMissingArtifact), ShouldBeTrue)
			var le *artifact.LoadError
			So(errors.As(err, &le), ShouldBeTrue)
			So(le.Path, ShouldEqual, filepath.Join("/srv/homeval", "notebooks", "models", "best_model.json"))
		})

		Convey("And failures are not cached", func() {
			_, _ = store.Load(context.Background())
			fsys[artifact.DefaultModelFile] = &fstest.MapFile{Data: []byte(modelDoc)}
			b, err := store.Load(context.Background())
			So(err, ShouldBeNil)
			So(b, ShouldNotBeNil)
			So(store.Loads(), ShouldEqual, 2)
		})
	})
}

func TestStoreMissingMetric(t *testing.T) {
	Convey("Given a directory without the accuracy metric", t, func() {
		fsys := fixture()
		delete(fsys, artifact.DefaultMetricFile)

		Convey("Then Load succeeds with the N/A label", func() {
			b, err := newStore(fsys).Load(context.Background())
			So(err, ShouldBeNil)
			So(b.Accuracy, ShouldEqual, artifact.NotAvailable)
		})
	})
}

func TestStoreCorrupt(t *testing.T) {
	Convey("Given damaged artifacts", t, func() {
		cases := map[string]func(fstest.MapFS){
			"unparsable model":   func(m fstest.MapFS) { m[artifact.DefaultModelFile] = &fstest.MapFile{Data: []byte("{oops")} },
			"unknown model kind": func(m fstest.MapFS) { m[artifact.DefaultModelFile] = &fstest.MapFile{Data: []byte(`{"kind":"svm"}`)} },
			"missing schema":     func(m fstest.MapFS) { delete(m, artifact.DefaultSchemaFile) },
			"unparsable schema":  func(m fstest.MapFS) { m[artifact.DefaultSchemaFile] = &fstest.MapFile{Data: []byte(`"MedInc"`)} },
			"short schema":       func(m fstest.MapFS) { m[artifact.DefaultSchemaFile] = &fstest.MapFile{Data: []byte(`["MedInc"]`)} },
		}
		for name, damage := range cases {
			fsys := fixture()
			damage(fsys)
			_, err := newStore(fsys).Load(context.Background())

			Convey("Then "+name+" is reported as corrupt", func() {
				So(errors.Is(err, artifact.ErrCorruptArtifact), ShouldBeTrue)
				So(errors.Is(err, artifact.ErrMissingArtifact), ShouldBeFalse)
			})
		}

		Convey("And a short schema reports the feature count", func() {
			fsys := fixture()
			fsys[artifact.DefaultSchemaFile] = &fstest.MapFile{Data: []byte(`["MedInc"]`)}
			_, err := newStore(fsys).Load(context.Background())
			So(errors.Is(err, estimator.ErrFeatureCount), ShouldBeTrue)
		})
	})
}

func TestStoreSchemaConsistency(t *testing.T) {
	Convey("Given a schema naming a feature the form does not collect", t, func() {
		fsys := fixture()
		fsys[artifact.DefaultSchemaFile] = &fstest.MapFile{Data: []byte(`["MedInc","HouseAge","AveRooms","AveBedrms","Population","AveOccup","Latitude","Elevation"]`)}
		expected := features.FieldNames(features.DefaultFields())

		Convey("Then a strict store rejects it at load time", func() {
			_, err := newStore(fsys, artifact.WithExpectedFeatures(expected)).Load(context.Background())
			So(errors.Is(err, artifact.ErrCorruptArtifact), ShouldBeTrue)
			So(errors.Is(err, features.ErrSchemaMismatch), ShouldBeTrue)
		})

		Convey("And a lenient store trusts it", func() {
			_, err := newStore(fsys).Load(context.Background())
			So(err, ShouldBeNil)
		})
	})
}

func TestStoreOnDisk(t *testing.T) {
	Convey("Given artifacts written to a real directory", t, func() {
		base := t.TempDir()
		dir := filepath.Join(base, "notebooks", "models")
		So(os.MkdirAll(dir, 0o755), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "best_model.json"), []byte(modelDoc), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "feature_names.json"), []byte(schemaDoc), 0o600), ShouldBeNil)

		store, err := artifact.New(artifact.WithBaseDir(base))
		So(err, ShouldBeNil)

		Convey("Then the store resolves and reads them", func() {
			So(store.Dir(), ShouldEqual, dir)
			b, err := store.Load(context.Background())
			So(err, ShouldBeNil)
			So(b.Accuracy, ShouldEqual, artifact.NotAvailable)
		})
	})

	Convey("Given no base directory", t, func() {
		store, err := artifact.New()
		So(err, ShouldBeNil)

		Convey("Then the directory sits next to the executable", func() {
			exe, _ := os.Executable()
			if resolved, err := filepath.EvalSymlinks(exe); err == nil {
				exe = resolved
			}
			So(store.Dir(), ShouldEqual, filepath.Join(filepath.Dir(exe), "notebooks", "models"))
		})
	})
}

func TestStoreCanceledContext(t *testing.T) {
	Convey("Given a canceled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		store := newStore(fixture())

		Convey("Then the first load is abandoned", func() {
			_, err := store.Load(ctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(store.Loads(), ShouldEqual, 0)
		})
	})
}
