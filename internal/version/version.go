package version

// AppVersion is overridden at build time via
// -ldflags "-X sessiondeck/internal/version.AppVersion=v0.1.0".
var AppVersion = "dev"
