package where

import (
	"path/filepath"
	"testing"

	"github.com/reprise-cli/reprise/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Datasets() lives under Config()", func() {
			path := Datasets()
			So(filepath.Dir(path), ShouldEqual, Config())
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Index() and History() are files in Config()", func() {
			So(filepath.Dir(Index()), ShouldEqual, Config())
			So(filepath.Dir(History()), ShouldEqual, Config())
			So(Index(), ShouldNotEqual, History())
		})

		Convey("Logs()", func() {
			So(lo.Must(filesystem.API().IsDir(Logs())), ShouldBeTrue)
		})

		Convey("REPRISE_CONFIG_PATH overrides the config directory", func() {
			t.Setenv(EnvConfigPath, "/custom/reprise")
			So(Config(), ShouldEqual, "/custom/reprise")
			So(lo.Must(filesystem.API().IsDir("/custom/reprise")), ShouldBeTrue)
		})
	})
}
