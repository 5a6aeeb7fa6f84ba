// Package buildinfo provides build information for respkv.
//
// Values are injected at build time via ldflags and fall back to what the
// Go toolchain embeds in the binary:
//
//   - Version: semantic version (e.g., "1.0.0")
//   - Commit: git commit hash (falls back to vcs.revision)
//   - BuildTime: build timestamp (falls back to vcs.time)
//   - GoVersion: Go compiler version (falls back to runtime.Version)
//
// Usage:
//
//	go build -ldflags "-X github.com/yndnr/respkv/internal/infra/buildinfo.Version=1.0.0"
//
// The values are reported by --version and by the INFO server section.
package buildinfo
