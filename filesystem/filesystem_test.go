package filesystem

import (
	"os"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestWriteAtomic(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		SetMemMapFs()
		lo.Must0(API().MkdirAll("/data", os.ModePerm))

		Convey("When writing a file atomically", func() {
			So(WriteAtomic("/data/a.txt", []byte("first")), ShouldBeNil)
			So(WriteAtomic("/data/a.txt", []byte("second")), ShouldBeNil)

			Convey("Then the last content wins and no temp file is left", func() {
				So(string(lo.Must(API().ReadFile("/data/a.txt"))), ShouldEqual, "second")
				So(lo.Must(API().Exists("/data/a.txt.tmp")), ShouldBeFalse)
			})
		})

		Convey("The gache adapter should create directories on the active backend", func() {
			So(GacheFs{}.MkdirAll("/cache/nested", os.ModePerm), ShouldBeNil)
			So(lo.Must(API().IsDir("/cache/nested")), ShouldBeTrue)
		})
	})
}
