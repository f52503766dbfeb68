package video

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/network"
	"golang.org/x/net/html"
)

// maxPageBytes bounds how much of a page is scanned for its <title>.
const maxPageBytes = 512 << 10

// PageTitle fetches an HTML page and returns the text of its <title> element.
func PageTitle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := network.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &network.StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	title, err := scanTitle(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("title of %s: %w", pageURL, err)
	}

	return title, nil
}

func scanTitle(r io.Reader) (string, error) {
	tokenizer := html.NewTokenizer(r)
	inTitle := false

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != io.EOF {
				return "", err
			}
			return "", fmt.Errorf("no <title> element")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "head" {
				return "", fmt.Errorf("no <title> element")
			}
			inTitle = false
		case html.TextToken:
			if inTitle {
				if title := strings.Join(strings.Fields(string(tokenizer.Text())), " "); title != "" {
					return title, nil
				}
			}
		}
	}
}
