package osmwrangle

var Version string

// buildVersion gets replaced while building with
// go build -ldflags "-X github.com/smartdatalake/osmwrangle.buildVersion=1234"
var buildVersion string

func init() {
	Version = "0.4.0"
	Version += buildVersion
}
