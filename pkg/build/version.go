package build

// Version is the release of this build, set with
// -ldflags "-X github.com/resizeto/resizeto/pkg/build.Version=v1.2.3".
var Version = "v0.0.0-dev"
