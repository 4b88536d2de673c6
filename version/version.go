// Package version holds build-time identity, overridden via -ldflags.
package version

var (
	name    = "mdfdiff" //nolint:gochecknoglobals
	version = "dev"     //nolint:gochecknoglobals
	commit  = "none"    //nolint:gochecknoglobals
)

func Name() string {
	return name
}

func Version() string {
	return version
}

func Commit() string {
	return commit
}
