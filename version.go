package marquee

// Version is the release version, overridable at build time with
// -ldflags "-X github.com/marquee-kit/marquee.Version=v1.2.3".
var Version = "0.1.0"
