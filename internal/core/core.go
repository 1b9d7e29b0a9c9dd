package core

import (
	"github.com/zhouchenh/rdapct/internal/common"
	"os"
	"path/filepath"
	"runtime"
)

var (
	name    = "rdapct"
	version = "0.4.0"
	build   = ""
	intro   = "Checks RDAP servers against the RDAP profile and technical implementation guide."
)

func Name() string {
	return name
}

func Version() string {
	return version
}

// UserAgent is sent with every query whose configuration names none.
func UserAgent() string {
	return common.Concatenate(Name(), "/", Version(), " (", runtime.GOOS, "/", runtime.GOARCH, ")")
}

func VersionStatement() []string {
	return []string{
		common.Concatenate(Name(), " ", Version(), " ", build, "(", runtime.GOOS, "/", runtime.GOARCH, ")"),
		intro,
	}
}

// EnvKey returns the environment variable name of key, e.g. RDAPCT_CUSTOM_DNS
// for "custom_dns".
func EnvKey(key ...interface{}) string {
	var args []interface{}
	args = append(args, Name())
	args = append(args, key...)
	return common.UpperString(common.SnakeCaseConcatenate(args...))
}

// OpenFile opens path, falling back to the configuration directory named by
// RDAPCT_CONFIG_DIR_PATH for relative paths.
func OpenFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err == nil || filepath.IsAbs(path) {
		return file, err
	}
	if dir := os.Getenv(EnvKey("config", "dir", "path")); dir != "" {
		if file, dirErr := os.Open(filepath.Join(dir, path)); dirErr == nil {
			return file, nil
		}
	}
	return nil, err
}
