// Package version отдает метаданные сборки для /version и лога старта.
// Номер сборки - число дней от эпохи проекта до даты сборки: монотонный,
// человекочитаемый и не требующий счетчика в CI.
package version

import (
	"fmt"
	"time"
)

// Заполняются линкером через -ldflags -X.
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
)

// Эпоха проекта: дата первого боевого деплоя.
var buildEpoch = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

// VersionInfo - метаданные сборки в структурированном виде.
type VersionInfo struct {
	BuildID    int    `json:"buildId"`
	BuildDate  string `json:"buildDate"`
	Commit     string `json:"commit,omitempty"`
	Calculated bool   `json:"calculated"`
	Error      string `json:"error,omitempty"`
}

// CalculateBuildID возвращает число дней от эпохи до даты сборки.
func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", BuildDate, err)
	}

	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before epoch", BuildDate)
	}

	// Часы вместо календарных суток: обе даты в UTC, DST не мешает
	days := int(t.Sub(buildEpoch).Hours() / 24)
	return days, nil
}

// Info собирает метаданные сборки. Безопасно звать в любой момент:
// бинарь без ldflags получит Calculated=false и текст ошибки.
func Info() VersionInfo {
	id, err := CalculateBuildID()

	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
	}

	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

// String - человекочитаемая строка сборки для лога старта.
func String() string {
	info := Info()

	if !info.Calculated {
		return fmt.Sprintf("Build unknown (%s)", info.Error)
	}

	return fmt.Sprintf("Build %d (%s) commit[%s]",
		info.BuildID, info.BuildDate, coalesce(info.Commit, "unknown"))
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
