package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// FetchTool retrieves a page over HTTP. Bodies larger than maxSize are cut.
func FetchTool(client *http.Client, timeout time.Duration, maxSize int64) Tool {
	if client == nil {
		client = &http.Client{}
	}
	if maxSize <= 0 {
		maxSize = 1 << 20
	}

	return ToolFunc{
		ToolName: FetchURL,
		Fn: func(ctx context.Context, in Input) Result {
			target := strings.TrimSpace(in.Text)
			u, err := url.Parse(target)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return Fail(FetchURL, ReasonBadInput, fmt.Errorf("invalid url %q", target))
			}

			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return Fail(FetchURL, ReasonBadInput, err)
			}
			resp, err := client.Do(req)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return Fail(FetchURL, ReasonCancelled, err)
				}
				return Fail(FetchURL, ReasonProvider, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 {
				return Fail(FetchURL, ReasonProvider, fmt.Errorf("status %d", resp.StatusCode))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, maxSize))
			if err != nil {
				return Fail(FetchURL, ReasonProvider, err)
			}

			page := Page{
				URL:         u.String(),
				Content:     string(body),
				ContentType: resp.Header.Get("Content-Type"),
			}
			if m := titlePattern.FindSubmatch(body); m != nil {
				page.Title = strings.TrimSpace(string(m[1]))
			}
			return Success(page)
		},
	}
}
