package cmd

// Version is overridable at build time with -ldflags.
var Version = "v0.1.0"
