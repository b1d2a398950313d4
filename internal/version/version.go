package version

// Version is the chatwheel release version. Overridable at build time:
//
//	go build -ldflags "-X chatwheel/internal/version.Version=v1.2.3"
var Version = "0.1.0"
