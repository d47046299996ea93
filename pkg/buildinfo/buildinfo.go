package buildinfo

// Multiarch is filled in by the Debian build system, eg with
// -ldflags "-X github.com/cyclopcam/ovdetect/pkg/buildinfo.Multiarch=x86_64-linux-gnu".
// It's the directory you see in /usr/lib/XXX, such as /usr/lib/x86_64-linux-gnu, or /usr/lib/aarch64-linux-gnu.
// When packaged, we look for libonnxruntime.so inside it.
// If the value of Multiarch is "unknown", then we ignore this path.
var Multiarch = "unknown"
