package icon

import (
	"testing"

	"github.com/reprise-cli/reprise/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Every registered icon", t, func() {
		for i := range icons {
			for _, variant := range AvailableVariants() {
				viper.Set(key.IconsVariant, variant)
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})

	Convey("Given a registered icon", t, func() {
		Convey("plain renders ASCII", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(Known), ShouldEqual, "+")
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(Known), ShouldBeEmpty)
		})

		Convey("An unregistered icon is empty", func() {
			viper.Set(key.IconsVariant, emoji)
			So(Get(Icon(0)), ShouldBeEmpty)
		})
	})
}
