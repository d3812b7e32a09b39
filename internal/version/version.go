package version

import "fmt"

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/unieats/internal/version.version=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

func GetVersion() string { return version }

func GetCommit() string { return commit }

func GetDate() string { return date }

// UserAgent: значение заголовка User-Agent для запросов к бэкенду.
func UserAgent() string {
	return "unieats-client/" + version
}

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}
