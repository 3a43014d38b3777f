package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"releasewatch/internal/authors"
	"releasewatch/internal/config"
	"releasewatch/internal/history"
)

const sourceCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckAuthors loads and validates the authors file. A file with no active
// authors fails because a cycle would check nothing.
func CheckAuthors(path string) Result {
	const name = "Authors"
	all, err := authors.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	active := len(authors.Active(all))
	if active == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%d configured, none active", len(all))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d configured, %d active", len(all), active)}
}

// CheckHistory opens the run ledger, creating it when absent.
func CheckHistory(ctx context.Context, path string) Result {
	const name = "Run history"
	store, err := history.Open(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()
	if _, err := store.Recent(ctx, 1); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckNotifications verifies the selected transport has its settings.
func CheckNotifications(cfg *config.Config) Result {
	const name = "Notifications"
	if err := cfg.ValidateNotifications(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if cfg.Notifications.Transport == config.TransportNone {
		return Result{Name: name, Passed: true, Detail: "disabled (transport none)"}
	}
	return Result{Name: name, Passed: true, Detail: cfg.Notifications.Transport + " configured"}
}

// CheckSource verifies the author page site answers. Any status below 500 is
// treated as reachable.
func CheckSource(ctx context.Context, baseURL, userAgent string) Result {
	const name = "Source site"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, sourceCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: sourceCheckTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s answered %d", base, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable", base)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (site unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (site unreachable)"
	}
	return err.Error()
}
